// Package server provides HTTP routing, middleware, and the JSON API of the
// curation service.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] with method-qualified patterns.
//
// # API Handler
//
// [API] serves the curation endpoints and the OAuth flow:
//
//	POST /api/search    → artist search, resets any previous curation
//	POST /api/curate    → build pools and draw the playlist
//	GET  /api/playlist  → the session's curated playlist
//	POST /api/export    → publish to the user's account (401 + auth URL when unauthenticated)
//	GET  /auth/login    → start the authorization-code flow
//	GET  /callback      → complete it (state validation, code exchange)
//	POST /auth/logout   → delete the session
//
// All state lives in a [session.Store] keyed by the session cookie; the
// handlers themselves hold nothing between requests. An export attempted
// without a valid delegated credential answers 401 with the authorization
// URL and records the pending export, which the callback replays.
package server

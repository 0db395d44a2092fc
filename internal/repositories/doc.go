// Package repositories implements SQLite persistence for session state.
//
// [SessionRepository] implements session.Store over a sessions table holding
// the JSON-serialized state per session id. It is the production backing for
// the per-browser-session key-value contract; tests and local development
// use session.MemoryStore instead.
//
// Schema management lives in shared.RunMigrations with embedded, versioned
// up/down SQL files.
package repositories

// Package services wraps the Spotify Web API.
//
// # Token lifecycle
//
// [TokenManager] owns both OAuth grant types:
//
//   - Service credentials come from a client-credentials exchange
//     ([TokenManager.Service]) and authorize read-only catalog queries.
//     They are acquired fresh on demand; callers cache one per request.
//   - Delegated credentials come from the authorization-code flow
//     ([TokenManager.AuthURL] + [TokenManager.Exchange]) and authorize
//     writes to the end-user's account.
//
// # Catalog access
//
// [CatalogClient] issues typed requests against the documented endpoints
// (artist search, album listing, album tracks, track detail, profile,
// playlist creation, track insertion). Every endpoint decodes into an
// explicit response struct with field-presence validation; missing required
// fields surface [shared.ErrSchema] at the client boundary.
//
// All requests pass through a [rate.Limiter] since a single pool build
// issues O(albums x tracks) calls.
package services

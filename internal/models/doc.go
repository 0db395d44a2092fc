// Package models defines the data model for the playlist curation service.
//
// Core types:
//   - [Credential] : OAuth access credential, either service-level (read-only
//     catalog queries) or delegated (per-user write access)
//   - [ArtistRef] : artist search result consumed by the pool builder
//   - [Track] : catalog track with popularity and canonical URI
//   - [CuratedPlaylist] : final size-bounded, deduplicated track sequence
//   - [ExportRecord] : idempotency marker for a published remote playlist
//
// Track deduplication uses [Track.Identity]: the Spotify URI when present,
// otherwise a normalized title|artists|album tuple.
package models

// Package tasks implements the playlist curation and export pipeline.
//
// # Core Operations
//
//  1. [PoolBuilder.Build] : candidate pool per artist
//     - Walks the artist's albums across all release groups (first page,
//       capped), then each album's tracks, then per-track detail
//     - Detail fetches fan out through an errgroup with a bounded worker
//       count; catalog failures degrade per item and never abort the build
//     - Keeps tracks inside the exclusive popularity band
//
//  2. [Curator.Curate] : balanced selection across artist pools
//     - Picks a target size uniformly from the configured range
//     - Draws a per-artist quota without replacement, then fills leftover
//       slots from a mixed pool of the remaining tracks
//     - Deduplicates by canonical track identity while sampling and
//       shuffles the final sequence
//
//  3. [Exporter.Export] : idempotent chunked publish
//     - Creates the remote playlist at most once per session; the persisted
//       ExportRecord short-circuits retries before any remote call
//     - Inserts tracks in provider-maximum batches, in order, failing the
//       whole export on the first rejected batch
//
// # Progress Reporting
//
// Long-running operations emit [ProgressUpdate] values through an optional
// channel. Sends use select with default so reporting never blocks the
// pipeline.
//
// [Engine] ties the read-side operations together behind a single service
// credential acquired once per request.
package tasks

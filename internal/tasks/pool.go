package tasks

import (
	"context"
	"sync"

	"github.com/hazelrye/deepcuts/internal/models"
	"github.com/hazelrye/deepcuts/internal/shared"
	"golang.org/x/sync/errgroup"
)

// CatalogAPI is the read surface of the catalog client used by the
// pipeline. The abstraction keeps the engine testable without HTTP.
type CatalogAPI interface {
	SearchArtists(ctx context.Context, cred models.Credential, query string, limit int) ([]models.ArtistRef, error)
	ArtistAlbums(ctx context.Context, cred models.Credential, artistID string, limit int) ([]string, error)
	AlbumTracks(ctx context.Context, cred models.Credential, albumID string) ([]string, error)
	TrackDetail(ctx context.Context, cred models.Credential, trackID string) (models.Track, error)
}

// PopularityBand is an exclusive popularity range: a track is kept when
// Min < popularity < Max. Excluding both the obscure and the already-famous
// is what makes the result a discovery playlist.
type PopularityBand struct {
	Min int
	Max int
}

// Contains reports whether popularity lies strictly inside the band.
func (b PopularityBand) Contains(popularity int) bool {
	return popularity > b.Min && popularity < b.Max
}

// PoolBuilder gathers the popularity-filtered candidate tracks of one
// artist. Catalog failures below the artist level degrade to "no data" for
// that item; a bad album or track never aborts the build.
type PoolBuilder struct {
	catalog    CatalogAPI
	band       PopularityBand
	albumLimit int
	workers    int
}

// NewPoolBuilder creates a PoolBuilder from the curation configuration.
// Zero config values fall back to the embedded defaults.
func NewPoolBuilder(catalog CatalogAPI, cfg shared.CurationConfig) *PoolBuilder {
	band := PopularityBand{Min: cfg.MinPopularity, Max: cfg.MaxPopularity}
	if band.Max <= band.Min {
		band = PopularityBand{Min: 30, Max: 80}
	}

	albumLimit := cfg.AlbumLimit
	if albumLimit <= 0 {
		albumLimit = 15
	}

	return &PoolBuilder{
		catalog:    catalog,
		band:       band,
		albumLimit: albumLimit,
		workers:    4,
	}
}

// Build walks the artist's albums, lists their tracks, fetches per-track
// detail, and returns the tracks inside the popularity band. The returned
// order carries no meaning; the curator treats the pool as unordered.
func (b *PoolBuilder) Build(ctx context.Context, cred models.Credential, artistID string, progress chan<- ProgressUpdate) ([]models.Track, error) {
	albumIDs, err := b.catalog.ArtistAlbums(ctx, cred, artistID, b.albumLimit)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		// Catalog data is best-effort: an artist whose albums cannot be
		// listed contributes an empty pool, not a failed curation.
		return nil, nil
	}

	sendProgress(progress, fetchAlbumsUpdate(artistID, len(albumIDs)))

	// Duplicate album ids must not be fetched twice.
	seenAlbums := make(map[string]bool, len(albumIDs))
	seenTracks := make(map[string]bool)
	var trackIDs []string

	for i, albumID := range albumIDs {
		if seenAlbums[albumID] {
			continue
		}
		seenAlbums[albumID] = true

		sendProgress(progress, fetchTracksUpdate(i+1, len(albumIDs), albumID))

		ids, err := b.catalog.AlbumTracks(ctx, cred, albumID)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			continue
		}

		for _, id := range ids {
			if !seenTracks[id] {
				seenTracks[id] = true
				trackIDs = append(trackIDs, id)
			}
		}
	}

	sendProgress(progress, fetchDetailsUpdate(len(trackIDs)))

	details := make([]models.Track, len(trackIDs))
	fetched := make([]bool, len(trackIDs))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)

	for i, trackID := range trackIDs {
		g.Go(func() error {
			track, err := b.catalog.TrackDetail(gctx, cred, trackID)
			if err != nil {
				// Degrade per track; only cancellation stops the build.
				return gctx.Err()
			}
			mu.Lock()
			details[i] = track
			fetched[i] = true
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	pool := make([]models.Track, 0, len(trackIDs))
	for i, track := range details {
		if fetched[i] && b.band.Contains(track.Popularity) {
			pool = append(pool, track)
		}
	}

	sendProgress(progress, poolReadyUpdate(artistID, len(pool), len(trackIDs)))
	return pool, nil
}

package tasks

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/hazelrye/deepcuts/internal/models"
	"github.com/hazelrye/deepcuts/internal/shared"
)

// TokenSource acquires the service credential used for read-only catalog
// queries.
type TokenSource interface {
	Service(ctx context.Context) (models.Credential, error)
}

// Engine ties the read-side pipeline together: artist search and the full
// pool-build + curation run. One service credential is acquired per call
// and shared across every downstream catalog request, avoiding redundant
// token exchanges inside a single curation.
type Engine struct {
	tokens  TokenSource
	catalog CatalogAPI
	builder *PoolBuilder
	curator *Curator
}

// NewEngine creates an Engine. A nil rng leaves the curator time-seeded.
func NewEngine(tokens TokenSource, catalog CatalogAPI, cfg shared.CurationConfig, rng *rand.Rand) *Engine {
	return &Engine{
		tokens:  tokens,
		catalog: catalog,
		builder: NewPoolBuilder(catalog, cfg),
		curator: NewCurator(rng, cfg),
	}
}

// Search queries the catalog for artists matching the query.
func (e *Engine) Search(ctx context.Context, query string, progress chan<- ProgressUpdate) ([]models.ArtistRef, error) {
	if query == "" {
		return nil, fmt.Errorf("search query must not be empty")
	}

	cred, err := e.tokens.Service(ctx)
	if err != nil {
		return nil, err
	}

	sendProgress(progress, searchUpdate(query))
	return e.catalog.SearchArtists(ctx, cred, query, 0)
}

// Curate builds one candidate pool per requested artist, in the order
// supplied, and draws the balanced playlist from them. Artists whose pools
// come back empty still count toward the per-artist quota divisor.
func (e *Engine) Curate(ctx context.Context, artistIDs []string, progress chan<- ProgressUpdate) (models.CuratedPlaylist, error) {
	if len(artistIDs) == 0 {
		return models.CuratedPlaylist{}, fmt.Errorf("no artists selected")
	}

	cred, err := e.tokens.Service(ctx)
	if err != nil {
		return models.CuratedPlaylist{}, err
	}

	pools := make([]Pool, 0, len(artistIDs))
	for _, artistID := range artistIDs {
		tracks, err := e.builder.Build(ctx, cred, artistID, progress)
		if err != nil {
			return models.CuratedPlaylist{}, err
		}
		pools = append(pools, Pool{ArtistID: artistID, Tracks: tracks})
	}

	return e.curator.Curate(pools, progress), nil
}

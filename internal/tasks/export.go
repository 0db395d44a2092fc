package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/hazelrye/deepcuts/internal/models"
	"github.com/hazelrye/deepcuts/internal/session"
	"github.com/hazelrye/deepcuts/internal/shared"
)

// ExportAPI is the write surface of the catalog client used by the exporter.
type ExportAPI interface {
	CurrentUser(ctx context.Context, cred models.Credential) (models.UserProfile, error)
	CreatePlaylist(ctx context.Context, cred models.Credential, userID, name, description string, public bool) (id, url string, err error)
	AddTracks(ctx context.Context, cred models.Credential, playlistID string, uris []string) error
}

// Exporter publishes a curated playlist to the user's account.
//
// Creation is idempotent per session: the ExportRecord is persisted to the
// session store immediately after the remote playlist exists, before any
// tracks are added, so a retry after a failed batch reuses the same remote
// playlist instead of creating duplicates.
type Exporter struct {
	catalog   ExportAPI
	store     session.Store
	batchSize int
	now       func() time.Time
}

// NewExporter creates an Exporter with the provider's batch maximum.
func NewExporter(catalog ExportAPI, store session.Store) *Exporter {
	return &Exporter{
		catalog:   catalog,
		store:     store,
		batchSize: 100,
		now:       time.Now,
	}
}

// Export publishes the session's curated playlist and returns its remote
// URL. The session state is mutated (export record) and persisted through
// the store. No automatic retries: every failure is surfaced typed and
// retry is user-initiated.
func (e *Exporter) Export(ctx context.Context, state *session.State, progress chan<- ProgressUpdate) (string, error) {
	if state.Playlist == nil || len(state.Playlist.Tracks) == 0 {
		return "", shared.ErrNoPlaylist
	}

	now := e.now()
	if !state.Authenticated(now) {
		return "", shared.ErrNotAuthenticated
	}
	cred := *state.UserCredential

	// Idempotent short-circuit: an existing record means the playlist was
	// already created for this curation; reuse it with zero remote calls.
	if state.Export != nil {
		return state.Export.URL, nil
	}

	profile, err := e.catalog.CurrentUser(ctx, cred)
	if err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrProfileFetch, err)
	}

	name := fmt.Sprintf("deepcuts %s", now.Format("2006-01-02 15:04"))
	sendProgress(progress, createPlaylistUpdate(name))

	playlistID, playlistURL, err := e.catalog.CreatePlaylist(ctx, cred, profile.ID, name, "Curated by deepcuts", false)
	if err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrPlaylistCreate, err)
	}

	// Persist before adding tracks so a retry after a batch failure reuses
	// this playlist.
	state.Export = &models.ExportRecord{
		PlaylistID: playlistID,
		URL:        playlistURL,
		CreatedAt:  now.UTC(),
	}
	if err := e.store.Put(ctx, state); err != nil {
		return "", fmt.Errorf("failed to persist export record: %w", err)
	}

	uris := state.Playlist.ExportableURIs()
	if len(uris) == 0 {
		return "", shared.ErrNoExportableTracks
	}

	batches := (len(uris) + e.batchSize - 1) / e.batchSize
	for i := 0; i < len(uris); i += e.batchSize {
		end := i + e.batchSize
		if end > len(uris) {
			end = len(uris)
		}
		batch := uris[i:end]

		sendProgress(progress, addTracksUpdate(i/e.batchSize+1, batches, len(batch)))

		if err := e.catalog.AddTracks(ctx, cred, playlistID, batch); err != nil {
			// Tracks from earlier batches stay on the remote playlist.
			return "", fmt.Errorf("%w: batch %d of %d: %v", shared.ErrTrackInsert, i/e.batchSize+1, batches, err)
		}
	}

	return playlistURL, nil
}

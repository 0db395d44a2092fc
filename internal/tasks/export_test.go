package tasks

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/hazelrye/deepcuts/internal/models"
	"github.com/hazelrye/deepcuts/internal/session"
	"github.com/hazelrye/deepcuts/internal/shared"
)

// fakeExportAPI counts remote calls so idempotency can be asserted exactly.
type fakeExportAPI struct {
	profileCalls int
	createCalls  int
	addCalls     int
	batches      [][]string

	profileErr error
	createErr  error
	failBatch  int // 1-based index of the AddTracks call that fails; 0 = never
}

func (f *fakeExportAPI) CurrentUser(_ context.Context, _ models.Credential) (models.UserProfile, error) {
	f.profileCalls++
	if f.profileErr != nil {
		return models.UserProfile{}, f.profileErr
	}
	return models.UserProfile{ID: "user1", DisplayName: "Listener"}, nil
}

func (f *fakeExportAPI) CreatePlaylist(_ context.Context, _ models.Credential, userID, name, _ string, public bool) (string, string, error) {
	f.createCalls++
	if f.createErr != nil {
		return "", "", f.createErr
	}
	if userID != "user1" {
		return "", "", fmt.Errorf("unexpected user id %q", userID)
	}
	if public {
		return "", "", errors.New("playlist must be private")
	}
	return "pl1", "https://open.spotify.com/playlist/pl1", nil
}

func (f *fakeExportAPI) AddTracks(_ context.Context, _ models.Credential, playlistID string, uris []string) error {
	f.addCalls++
	if playlistID != "pl1" {
		return fmt.Errorf("unexpected playlist id %q", playlistID)
	}
	if f.failBatch > 0 && f.addCalls == f.failBatch {
		return errors.New("upstream 502")
	}
	f.batches = append(f.batches, uris)
	return nil
}

func curatedTracks(n int) []models.Track {
	tracks := make([]models.Track, n)
	for i := range tracks {
		tracks[i] = models.Track{
			Title:      fmt.Sprintf("song %d", i),
			Artists:    []string{"artist"},
			Popularity: 50,
			URI:        fmt.Sprintf("spotify:track:%04d", i),
		}
	}
	return tracks
}

func exportState(trackCount int) *session.State {
	state := session.NewState()
	state.UserCredential = &models.Credential{
		Kind:        models.DelegatedCredential,
		AccessToken: "user-token",
		ExpiresAt:   time.Now().Add(time.Hour),
	}
	state.Playlist = &models.CuratedPlaylist{
		Tracks:    curatedTracks(trackCount),
		Target:    trackCount,
		CreatedAt: time.Now().UTC(),
	}
	return state
}

func TestExport(t *testing.T) {
	ctx := context.Background()

	t.Run("happy path", func(t *testing.T) {
		api := &fakeExportAPI{}
		store := session.NewMemoryStore()
		state := exportState(25)

		url, err := NewExporter(api, store).Export(ctx, state, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if url != "https://open.spotify.com/playlist/pl1" {
			t.Errorf("unexpected url %q", url)
		}
		if api.createCalls != 1 || api.addCalls != 1 {
			t.Errorf("expected 1 create and 1 add, got %d and %d", api.createCalls, api.addCalls)
		}
		if state.Export == nil || state.Export.PlaylistID != "pl1" {
			t.Errorf("expected a persisted export record, got %+v", state.Export)
		}

		persisted, err := store.Get(ctx, state.ID)
		if err != nil {
			t.Fatalf("failed to load persisted session: %v", err)
		}
		if persisted.Export == nil || persisted.Export.PlaylistID != "pl1" {
			t.Errorf("expected the export record in the store, got %+v", persisted.Export)
		}
	})

	t.Run("no curated playlist", func(t *testing.T) {
		state := session.NewState()
		state.UserCredential = &models.Credential{
			Kind:        models.DelegatedCredential,
			AccessToken: "user-token",
			ExpiresAt:   time.Now().Add(time.Hour),
		}

		_, err := NewExporter(&fakeExportAPI{}, session.NewMemoryStore()).Export(ctx, state, nil)
		if !errors.Is(err, shared.ErrNoPlaylist) {
			t.Errorf("expected ErrNoPlaylist, got %v", err)
		}
	})

	t.Run("not authenticated", func(t *testing.T) {
		state := exportState(25)
		state.UserCredential = nil

		_, err := NewExporter(&fakeExportAPI{}, session.NewMemoryStore()).Export(ctx, state, nil)
		if !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
	})

	t.Run("expired credential", func(t *testing.T) {
		state := exportState(25)
		state.UserCredential.ExpiresAt = time.Now().Add(-time.Minute)

		_, err := NewExporter(&fakeExportAPI{}, session.NewMemoryStore()).Export(ctx, state, nil)
		if !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
	})

	t.Run("second export issues zero remote calls", func(t *testing.T) {
		api := &fakeExportAPI{}
		store := session.NewMemoryStore()
		state := exportState(25)
		exporter := NewExporter(api, store)

		first, err := exporter.Export(ctx, state, nil)
		if err != nil {
			t.Fatalf("first export failed: %v", err)
		}

		profileBefore, createBefore, addBefore := api.profileCalls, api.createCalls, api.addCalls

		second, err := exporter.Export(ctx, state, nil)
		if err != nil {
			t.Fatalf("second export failed: %v", err)
		}
		if second != first {
			t.Errorf("expected the same url, got %q and %q", first, second)
		}
		if api.profileCalls != profileBefore || api.createCalls != createBefore || api.addCalls != addBefore {
			t.Error("expected zero additional remote calls on the second export")
		}
	})

	t.Run("tracks are added in order in batches of 100", func(t *testing.T) {
		api := &fakeExportAPI{}
		state := exportState(250)

		if _, err := NewExporter(api, session.NewMemoryStore()).Export(ctx, state, nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(api.batches) != 3 {
			t.Fatalf("expected 3 batches, got %d", len(api.batches))
		}
		for i, want := range []int{100, 100, 50} {
			if len(api.batches[i]) != want {
				t.Errorf("batch %d: expected %d uris, got %d", i+1, want, len(api.batches[i]))
			}
		}

		// Concatenated batches must reproduce the playlist order exactly.
		var flat []string
		for _, batch := range api.batches {
			flat = append(flat, batch...)
		}
		for i, track := range state.Playlist.Tracks {
			if flat[i] != track.URI {
				t.Fatalf("order diverged at %d: expected %q, got %q", i, track.URI, flat[i])
			}
		}
	})

	t.Run("batch failure keeps the record for retry", func(t *testing.T) {
		api := &fakeExportAPI{failBatch: 2}
		store := session.NewMemoryStore()
		state := exportState(250)
		exporter := NewExporter(api, store)

		_, err := exporter.Export(ctx, state, nil)
		if !errors.Is(err, shared.ErrTrackInsert) {
			t.Fatalf("expected ErrTrackInsert, got %v", err)
		}
		if len(api.batches) != 1 {
			t.Errorf("expected exactly the first batch applied, got %d", len(api.batches))
		}

		// The record was persisted before any batch, so a retry reuses the
		// playlist instead of creating a second one.
		persisted, err := store.Get(ctx, state.ID)
		if err != nil {
			t.Fatalf("failed to load persisted session: %v", err)
		}
		if persisted.Export == nil {
			t.Fatal("expected the export record to survive the batch failure")
		}

		url, err := exporter.Export(ctx, state, nil)
		if err != nil {
			t.Fatalf("retry failed: %v", err)
		}
		if url != state.Export.URL {
			t.Errorf("expected the retry to reuse %q, got %q", state.Export.URL, url)
		}
		if api.createCalls != 1 {
			t.Errorf("expected no second playlist creation, got %d", api.createCalls)
		}
	})

	t.Run("profile failure is typed", func(t *testing.T) {
		api := &fakeExportAPI{profileErr: errors.New("upstream 503")}
		_, err := NewExporter(api, session.NewMemoryStore()).Export(ctx, exportState(25), nil)
		if !errors.Is(err, shared.ErrProfileFetch) {
			t.Errorf("expected ErrProfileFetch, got %v", err)
		}
	})

	t.Run("creation failure is typed and leaves no record", func(t *testing.T) {
		api := &fakeExportAPI{createErr: errors.New("upstream 503")}
		state := exportState(25)

		_, err := NewExporter(api, session.NewMemoryStore()).Export(ctx, state, nil)
		if !errors.Is(err, shared.ErrPlaylistCreate) {
			t.Errorf("expected ErrPlaylistCreate, got %v", err)
		}
		if state.Export != nil {
			t.Errorf("expected no export record, got %+v", state.Export)
		}
	})

	t.Run("playlist name carries the export timestamp", func(t *testing.T) {
		api := &fakeExportAPI{}
		exporter := NewExporter(api, session.NewMemoryStore())
		exporter.now = func() time.Time {
			return time.Date(2025, 6, 15, 14, 30, 0, 0, time.UTC)
		}

		progress := make(chan ProgressUpdate, 16)
		if _, err := exporter.Export(ctx, exportState(25), progress); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		close(progress)

		var message string
		for update := range progress {
			if update.Phase == CreatePlaylist {
				message = update.Message
			}
		}
		if !strings.Contains(message, "deepcuts 2025-06-15 14:30") {
			t.Errorf("expected the timestamped name in %q", message)
		}
	})
}

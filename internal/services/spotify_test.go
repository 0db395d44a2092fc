package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hazelrye/deepcuts/internal/models"
	"github.com/hazelrye/deepcuts/internal/shared"
	"golang.org/x/time/rate"
)

func serviceCred() models.Credential {
	return models.Credential{
		Kind:        models.ServiceCredential,
		AccessToken: "svc_token",
		ExpiresAt:   time.Now().Add(time.Hour),
	}
}

// catalogServer runs an httptest server and returns a client pointed at it.
func catalogServer(t *testing.T, handler http.Handler) *CatalogClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := NewCatalogClient(srv.Client(), rate.NewLimiter(rate.Inf, 0))
	client.SetBaseURL(srv.URL)
	return client
}

func TestSearchArtists(t *testing.T) {
	t.Run("parses results and query params", func(t *testing.T) {
		client := catalogServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/search" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			if got := r.URL.Query().Get("type"); got != "artist" {
				t.Errorf("expected type=artist, got %s", got)
			}
			if got := r.URL.Query().Get("limit"); got != "5" {
				t.Errorf("expected limit=5, got %s", got)
			}
			if auth := r.Header.Get("Authorization"); auth != "Bearer svc_token" {
				t.Errorf("expected bearer header, got %s", auth)
			}
			fmt.Fprint(w, `{"artists":{"items":[
				{"id":"a1","name":"First","images":[{"url":"http://img/1"}]},
				{"id":"a2","name":"Second","images":[]}
			]}}`)
		}))

		artists, err := client.SearchArtists(context.Background(), serviceCred(), "first", 0)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if len(artists) != 2 {
			t.Fatalf("expected 2 artists, got %d", len(artists))
		}
		if artists[0].ID != "a1" || artists[0].Name != "First" {
			t.Errorf("unexpected first artist: %+v", artists[0])
		}
		if artists[0].ImageURL != "http://img/1" {
			t.Errorf("expected first image url, got %s", artists[0].ImageURL)
		}
		if artists[1].ImageURL != "" {
			t.Error("expected empty image url when artist has no images")
		}
	})

	t.Run("item missing id is a schema error", func(t *testing.T) {
		client := catalogServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"artists":{"items":[{"name":"Nameless"}]}}`)
		}))

		_, err := client.SearchArtists(context.Background(), serviceCred(), "x", 5)
		if !errors.Is(err, shared.ErrSchema) {
			t.Errorf("expected ErrSchema, got %v", err)
		}
	})

	t.Run("missing credential", func(t *testing.T) {
		client := NewCatalogClient(nil, nil)
		_, err := client.SearchArtists(context.Background(), models.Credential{}, "x", 5)
		if !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
	})
}

func TestArtistAlbums(t *testing.T) {
	t.Run("requests all release groups with page cap", func(t *testing.T) {
		client := catalogServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/artists/a1/albums" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			if got := r.URL.Query().Get("include_groups"); got != "album,single,appears_on,compilation" {
				t.Errorf("unexpected include_groups %s", got)
			}
			if got := r.URL.Query().Get("limit"); got != "15" {
				t.Errorf("expected limit=15, got %s", got)
			}
			fmt.Fprint(w, `{"items":[{"id":"al1"},{"id":"al2"},{"id":""}]}`)
		}))

		ids, err := client.ArtistAlbums(context.Background(), serviceCred(), "a1", 0)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if len(ids) != 2 {
			t.Fatalf("expected 2 album ids (blank dropped), got %d", len(ids))
		}
	})

	t.Run("non-success status propagates", func(t *testing.T) {
		client := catalogServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))

		_, err := client.ArtistAlbums(context.Background(), serviceCred(), "missing", 15)
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest, got %v", err)
		}
	})
}

func TestAlbumTracks(t *testing.T) {
	client := catalogServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/albums/al1/tracks" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		fmt.Fprint(w, `{"items":[{"id":"t1"},{"id":"t2"}]}`)
	}))

	ids, err := client.AlbumTracks(context.Background(), serviceCred(), "al1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(ids) != 2 || ids[0] != "t1" {
		t.Errorf("unexpected track ids: %v", ids)
	}
}

func TestTrackDetail(t *testing.T) {
	t.Run("full detail", func(t *testing.T) {
		client := catalogServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/tracks/t1" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			fmt.Fprint(w, `{
				"name":"Deep Cut",
				"artists":[{"id":"a1","name":"First"},{"id":"a2","name":"Second"}],
				"album":{"name":"The Album","images":[{"url":"http://img/cover"}]},
				"popularity":55,
				"uri":"spotify:track:t1"
			}`)
		}))

		track, err := client.TrackDetail(context.Background(), serviceCred(), "t1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if track.Title != "Deep Cut" {
			t.Errorf("expected title 'Deep Cut', got %s", track.Title)
		}
		if len(track.Artists) != 2 || track.Artists[1] != "Second" {
			t.Errorf("unexpected artists: %v", track.Artists)
		}
		if track.Album != "The Album" || track.Popularity != 55 {
			t.Errorf("unexpected track: %+v", track)
		}
		if track.URI != "spotify:track:t1" {
			t.Errorf("expected canonical uri, got %s", track.URI)
		}
		if track.ImageURL != "http://img/cover" {
			t.Errorf("expected album image, got %s", track.ImageURL)
		}
	})

	t.Run("missing name is a schema error", func(t *testing.T) {
		client := catalogServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"popularity":55}`)
		}))

		_, err := client.TrackDetail(context.Background(), serviceCred(), "t1")
		if !errors.Is(err, shared.ErrSchema) {
			t.Errorf("expected ErrSchema, got %v", err)
		}
	})
}

func TestCurrentUser(t *testing.T) {
	t.Run("resolves profile", func(t *testing.T) {
		client := catalogServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/me" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			fmt.Fprint(w, `{"id":"user1","display_name":"Listener"}`)
		}))

		profile, err := client.CurrentUser(context.Background(), serviceCred())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if profile.ID != "user1" || profile.DisplayName != "Listener" {
			t.Errorf("unexpected profile: %+v", profile)
		}
	})

	t.Run("missing id is a schema error", func(t *testing.T) {
		client := catalogServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"display_name":"Listener"}`)
		}))

		_, err := client.CurrentUser(context.Background(), serviceCred())
		if !errors.Is(err, shared.ErrSchema) {
			t.Errorf("expected ErrSchema, got %v", err)
		}
	})
}

func TestCreatePlaylist(t *testing.T) {
	client := catalogServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/users/user1/playlists" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		fmt.Fprint(w, `{"id":"pl1","external_urls":{"spotify":"https://open.spotify.com/playlist/pl1"}}`)
	}))

	id, playlistURL, err := client.CreatePlaylist(context.Background(), serviceCred(), "user1", "deepcuts", "generated", false)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if id != "pl1" {
		t.Errorf("expected playlist id 'pl1', got %s", id)
	}
	if playlistURL != "https://open.spotify.com/playlist/pl1" {
		t.Errorf("unexpected playlist url %s", playlistURL)
	}
}

func TestAddTracks(t *testing.T) {
	t.Run("rejects oversized batches locally", func(t *testing.T) {
		client := NewCatalogClient(nil, nil)

		uris := make([]string, MaxTracksPerAdd+1)
		for i := range uris {
			uris[i] = fmt.Sprintf("spotify:track:%d", i)
		}

		if err := client.AddTracks(context.Background(), serviceCred(), "pl1", uris); err == nil {
			t.Error("expected error for oversized batch")
		}
	})

	t.Run("rejects empty batches locally", func(t *testing.T) {
		client := NewCatalogClient(nil, nil)
		if err := client.AddTracks(context.Background(), serviceCred(), "pl1", nil); err == nil {
			t.Error("expected error for empty batch")
		}
	})

	t.Run("posts uris", func(t *testing.T) {
		client := catalogServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost || r.URL.Path != "/playlists/pl1/tracks" {
				t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			}
			fmt.Fprint(w, `{"snapshot_id":"snap"}`)
		}))

		err := client.AddTracks(context.Background(), serviceCred(), "pl1", []string{"spotify:track:1"})
		if err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})
}

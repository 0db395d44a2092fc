// Package session defines the per-browser-session state of the curation
// pipeline and the key-value store contract it is persisted through.
//
// No component touches process-global state: every call receives the
// [State] it operates on, loaded from a [Store] implementation (in-memory
// map for tests, SQLite in production).
package session

import (
	"context"
	"time"

	"github.com/hazelrye/deepcuts/internal/models"
	"github.com/hazelrye/deepcuts/internal/shared"
)

// State holds everything the pipeline keeps between requests for one
// browser session: credentials, the last search, the curated playlist,
// and the export idempotency marker.
type State struct {
	ID string `json:"id"`

	ServiceCredential *models.Credential `json:"service_credential,omitempty"`
	UserCredential    *models.Credential `json:"user_credential,omitempty"`

	SearchResults []models.ArtistRef      `json:"search_results,omitempty"`
	Playlist      *models.CuratedPlaylist `json:"playlist,omitempty"`
	Export        *models.ExportRecord    `json:"export,omitempty"`

	// AuthState is the CSRF token for an in-flight authorization redirect.
	AuthState string `json:"auth_state,omitempty"`
	// ReturnPath is where the user lands after completing authorization.
	ReturnPath string `json:"return_path,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewState creates a State with a fresh session id.
func NewState() *State {
	now := time.Now().UTC()
	return &State{
		ID:        shared.GenerateID(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ResetCuration clears the curated playlist and its export record.
// Called when a new top-level search or curation begins; a stale export
// marker must never survive a playlist change.
func (s *State) ResetCuration() {
	s.Playlist = nil
	s.Export = nil
}

// Authenticated reports whether the session carries a valid delegated
// credential at the given time.
func (s *State) Authenticated(now time.Time) bool {
	return s.UserCredential != nil && s.UserCredential.Valid(now)
}

// Store is the session persistence contract: get/put/delete by session id,
// scoped per browser session, durable across requests within a session
// lifetime. Implementations must return value copies from Get so callers
// can mutate freely before Put.
type Store interface {
	Get(ctx context.Context, id string) (*State, error) // shared.ErrSessionNotFound when absent
	Put(ctx context.Context, state *State) error
	Delete(ctx context.Context, id string) error
}

package models

import (
	"strings"
	"time"
)

// CredentialKind distinguishes the two OAuth grant types the service uses.
type CredentialKind string

const (
	// ServiceCredential is an app-level token from a client-credentials
	// exchange. Carries no user identity and no refresh token.
	ServiceCredential CredentialKind = "service"
	// DelegatedCredential is an end-user-authorized token from an
	// authorization-code exchange. Required for write operations.
	DelegatedCredential CredentialKind = "delegated"
)

// Credential is an OAuth access credential with its expiry timestamp.
//
// Service credentials are re-acquired from scratch on expiry. Delegated
// credentials carry a refresh token, but refresh is not implemented; an
// expired delegated credential sends the user back through authorization.
type Credential struct {
	Kind         CredentialKind `json:"kind"`
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token,omitempty"`
	ExpiresAt    time.Time      `json:"expires_at"`
}

// Expired reports whether the credential's expiry has passed at the given time.
func (c Credential) Expired(now time.Time) bool {
	return !c.ExpiresAt.After(now)
}

// Valid reports whether the credential carries a token and is not expired.
func (c Credential) Valid(now time.Time) bool {
	return c.AccessToken != "" && !c.Expired(now)
}

// ArtistRef is an artist search result. Immutable once returned.
type ArtistRef struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ImageURL string `json:"image_url,omitempty"`
}

// Track is a catalog track. URI is required for export; tracks without one
// are retained for display but excluded from export-eligible pools.
type Track struct {
	Title      string   `json:"title"`
	Artists    []string `json:"artists"`
	Album      string   `json:"album"`
	ImageURL   string   `json:"image_url,omitempty"`
	Popularity int      `json:"popularity"`
	URI        string   `json:"uri,omitempty"`
}

// Identity returns the canonical identity used to decide whether two tracks
// are the same song. The URI wins when present; otherwise a lowercase
// title|artists|album tuple is used.
func (t Track) Identity() string {
	if t.URI != "" {
		return t.URI
	}
	return strings.ToLower(t.Title + "|" + strings.Join(t.Artists, ",") + "|" + t.Album)
}

// ArtistLine renders the ordered artist list as a display string.
func (t Track) ArtistLine() string {
	return strings.Join(t.Artists, ", ")
}

// CuratedPlaylist is the final curated track sequence. Target is the
// randomized size bound N chosen for this curation run; len(Tracks) never
// exceeds it and no two entries share an identity.
type CuratedPlaylist struct {
	Tracks    []Track   `json:"tracks"`
	Target    int       `json:"target"`
	CreatedAt time.Time `json:"created_at"`
}

// ExportableURIs returns the canonical URIs of all tracks carrying one,
// in playlist order.
func (p CuratedPlaylist) ExportableURIs() []string {
	uris := make([]string, 0, len(p.Tracks))
	for _, t := range p.Tracks {
		if t.URI != "" {
			uris = append(uris, t.URI)
		}
	}
	return uris
}

// ExportRecord marks a playlist as already published. Its presence
// short-circuits re-export within the same session.
type ExportRecord struct {
	PlaylistID string    `json:"playlist_id"`
	URL        string    `json:"url"`
	CreatedAt  time.Time `json:"created_at"`
}

// UserProfile identifies the acting user for delegated write operations.
type UserProfile struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name,omitempty"`
}

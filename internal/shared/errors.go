package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Authentication errors
	ErrAuthFailed       = fmt.Errorf("authentication failed")
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrTokenExpired     = fmt.Errorf("access token expired")

	// Catalog read errors
	ErrAPIRequest = fmt.Errorf("API request failed")
	ErrSchema     = fmt.Errorf("malformed API response")

	// Curation and export errors
	ErrNoPlaylist         = fmt.Errorf("no curated playlist in session")
	ErrNoExportableTracks = fmt.Errorf("no exportable tracks in playlist")
	ErrProfileFetch       = fmt.Errorf("profile lookup failed")
	ErrPlaylistCreate     = fmt.Errorf("playlist creation failed")
	ErrTrackInsert        = fmt.Errorf("track insertion failed")

	// Session errors
	ErrSessionNotFound = fmt.Errorf("session not found")
)

package tasks

import "fmt"

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or web layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data
}

// Operation phase enumeration
type Phase int

const (
	SearchArtists Phase = iota
	FetchAlbums
	FetchTracks
	FetchDetails
	DrawTracks
	CreatePlaylist
	AddTracks
)

func (p Phase) String() string {
	switch p {
	case SearchArtists:
		return "search_artists"
	case FetchAlbums:
		return "fetch_albums"
	case FetchTracks:
		return "fetch_tracks"
	case FetchDetails:
		return "fetch_details"
	case DrawTracks:
		return "draw_tracks"
	case CreatePlaylist:
		return "create_playlist"
	case AddTracks:
		return "add_tracks"
	default:
		return ""
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default so progress reporting never stalls the pipeline.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

func searchUpdate(query string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SearchArtists,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Searching artists matching %q...", query),
	}
}

func fetchAlbumsUpdate(artistID string, count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchAlbums,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Found %d albums for artist %s", count, artistID),
	}
}

func fetchTracksUpdate(step, total int, albumID string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Listing tracks of album %s...", step, total, albumID),
	}
}

func fetchDetailsUpdate(total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchDetails,
		Step:    0,
		Total:   total,
		Message: fmt.Sprintf("Fetching detail for %d tracks...", total),
	}
}

func poolReadyUpdate(artistID string, kept, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchDetails,
		Step:    total,
		Total:   total,
		Message: fmt.Sprintf("Pool for %s: kept %d of %d tracks", artistID, kept, total),
	}
}

func drawUpdate(step, total int, artistID string, drawn int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   DrawTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Drew %d tracks from %s", step, total, drawn, artistID),
	}
}

func createPlaylistUpdate(name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CreatePlaylist,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Creating playlist %q...", name),
	}
}

func addTracksUpdate(step, total, size int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   AddTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Adding batch of %d tracks...", step, total, size),
	}
}

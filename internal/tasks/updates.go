package tasks

import (
	"fmt"

	"github.com/desertthunder/encore/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchSetlist Phase = iota
	MatchSongs
	CreatePlaylist
	InsertVideos
)

func (p Phase) String() string {
	switch p {
	case FetchSetlist:
		return "fetch_setlist"
	case MatchSongs:
		return "match_songs"
	case CreatePlaylist:
		return "create_playlist"
	case InsertVideos:
		return "insert_videos"
	default:
		return ""
	}
}

func fetchSetlistUpdate(step, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchSetlist,
		Step:    step,
		Total:   total,
		Message: "Fetching setlist from setlist.fm...",
	}
}

func foundSetlistUpdate(step, total int, setlist *models.Setlist) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchSetlist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Found setlist: %s at %s (%d songs)", setlist.Artist, setlist.Venue, len(setlist.Songs)),
		Data:    setlist,
	}
}

func matchSongUpdate(step, total int, song models.Song) ProgressUpdate {
	return ProgressUpdate{
		Phase:   MatchSongs,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s - %s", step, total, song.Artist, song.Title),
	}
}

func songMatchedUpdate(step, total int, result models.MatchResult) ProgressUpdate {
	message := fmt.Sprintf("[%d/%d] ✗ %s: no video found", step, total, result.Song.Title)
	if result.Matched() {
		message = fmt.Sprintf("[%d/%d] ✓ %s (%s)", step, total, result.Song.Title, result.Confidence)
	}
	return ProgressUpdate{
		Phase:   MatchSongs,
		Step:    step,
		Total:   total,
		Message: message,
		Data:    result,
	}
}

func createPlaylistUpdate(step, total int, title string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CreatePlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Creating playlist: %s", title),
	}
}

func playlistCreatedUpdate(step, total int, playlistID string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CreatePlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Playlist created (ID: %s)", playlistID),
		Data:    playlistID,
	}
}

func insertVideoUpdate(step, total int, videoID string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   InsertVideos,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Adding video %s", step, total, videoID),
	}
}

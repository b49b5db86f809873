// package services defines interfaces for the external HTTP collaborators
//
// setlist.fm (setlist source), YouTube Data API (search + playlists)
package services

import (
	"context"

	"github.com/desertthunder/encore/internal/models"
)

// SetlistSource fetches and parses setlists from a setlist provider.
type SetlistSource interface {
	// FetchSetlist resolves a public setlist URL into a parsed Setlist.
	// Tape-only and untitled entries are filtered here so the matching
	// core only ever sees real songs.
	FetchSetlist(ctx context.Context, url string) (*models.Setlist, error)

	// Name returns the name of the source (e.g., "setlist.fm")
	Name() string
}

// VideoSearcher runs video searches against a video platform.
type VideoSearcher interface {
	// Search returns the ordered hits for a single query string.
	Search(ctx context.Context, query string) ([]models.SearchHit, error)
}

// PlaylistService creates playlists and appends videos to them.
type PlaylistService interface {
	// CreatePlaylist creates an empty playlist and returns its ID.
	CreatePlaylist(ctx context.Context, spec models.PlaylistSpec) (string, error)

	// AddVideo appends a video to a playlist at the given 0-based position.
	// Insertion order equals final playlist order.
	AddVideo(ctx context.Context, playlistID, videoID string, position int) error
}

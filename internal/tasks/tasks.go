// package tasks implements the setlist to playlist conversion pipeline.
//
// The core abstraction is ConvertEngine, which orchestrates fetching a
// setlist, matching each song to a video, and assembling the playlist.
// Operations emit progress updates via channels for non-blocking status
// reporting to CLI/UI layers.
package tasks

import (
	"context"
	"fmt"

	"github.com/desertthunder/encore/internal/match"
	"github.com/desertthunder/encore/internal/models"
	"github.com/desertthunder/encore/internal/services"
	"github.com/desertthunder/encore/internal/shared"
)

// VideoCacher provides a persistent cache of song-to-video matches keyed by
// shared.CacheKey. Implemented by repositories.VideoCacheAdapter.
type VideoCacher interface {
	// Lookup returns the cached match for a cache key, or false on a miss.
	Lookup(key string) (*models.CachedVideo, bool)

	// Store persists a match result under a cache key.
	Store(key string, hit models.SearchHit, matchedQuery string, confidence models.Confidence) error
}

// QuotaRecorder records billable YouTube Data API calls in the quota ledger.
// Implemented by repositories.QuotaRepository.
type QuotaRecorder interface {
	Create(entry *models.QuotaEntry) error
}

// ConvertOptions configures a single conversion run.
type ConvertOptions struct {
	Privacy  models.Privacy // Playlist visibility, defaults to private
	DryRun   bool           // Match songs but skip playlist creation
	UseCache bool           // Consult and populate the video match cache
}

// ConversionResult contains all data from a full conversion run.
type ConversionResult struct {
	Setlist         *models.Setlist      // Fetched source setlist
	Matches         []models.MatchResult // Per-song match outcomes, in setlist order
	VideoIDs        []string             // Matched video IDs, in setlist order
	PlaylistID      string               // Created playlist ID (empty on dry run)
	PlaylistURL     string               // Public playlist URL (empty on dry run)
	MatchedCount    int                  // Number of songs with a video
	FailedCount     int                  // Number of songs without a video
	TotalSongs      int                  // Total songs processed
	MatchPercentage float64              // Success rate as percentage
	CacheHits       int                  // Matches served from the cache
	DryRun          bool                 // Whether playlist creation was skipped
}

// ConvertEngine orchestrates the conversion pipeline.
//
// The cache and quota collaborators are optional: a nil cache disables
// caching and a nil recorder disables ledger writes, neither affects the
// conversion outcome.
type ConvertEngine struct {
	source    services.SetlistSource
	searcher  services.VideoSearcher
	playlists services.PlaylistService
	cache     VideoCacher
	quota     QuotaRecorder
}

// NewConvertEngine creates a ConvertEngine with the provided collaborators.
func NewConvertEngine(source services.SetlistSource, searcher services.VideoSearcher, playlists services.PlaylistService, cache VideoCacher, quota QuotaRecorder) *ConvertEngine {
	return &ConvertEngine{
		source:    source,
		searcher:  searcher,
		playlists: playlists,
		cache:     cache,
		quota:     quota,
	}
}

// PlaylistTitle formats the playlist title for a setlist.
func PlaylistTitle(setlist *models.Setlist) string {
	return fmt.Sprintf("%s - %s (%s)", setlist.Artist, setlist.Venue, setlist.Date)
}

// PlaylistDescription formats the playlist description, embedding the source
// URL so the playlist links back to the setlist it was built from.
func PlaylistDescription(setlist *models.Setlist) string {
	return fmt.Sprintf("Setlist from %s at %s, %s (%s)\nSource: %s",
		setlist.Artist, setlist.Venue, setlist.City, setlist.Date, setlist.URL)
}

// EstimateQuota returns the expected YouTube quota units a conversion of
// songCount songs burns: one search per song (the first ladder rung usually
// hits), the playlist insert, and one item insert per song.
func EstimateQuota(songCount int) int {
	return songCount*services.QuotaCostSearch + services.QuotaCostPlaylistInsert + songCount*services.QuotaCostPlaylistItem
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *ConvertEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
		// Sent successfully
	default:
		// Channel full or closed, skip this update
	}
}

// recordQuota appends a ledger entry, ignoring ledger failures: the ledger
// is advisory and must never fail a conversion.
func (e *ConvertEngine) recordQuota(operation string, units int) {
	if e.quota == nil {
		return
	}
	_ = e.quota.Create(models.NewQuotaEntry(operation, units))
}

// Run performs a full setlist.fm to YouTube playlist conversion.
//
// Songs are matched strictly in setlist order and the playlist is assembled
// with one create call followed by one insert per matched video, also in
// order. A search failure aborts the run immediately with partial results;
// an unmatched song is skipped and the conversion continues.
func (e *ConvertEngine) Run(ctx context.Context, setlistURL string, opts ConvertOptions, progress chan<- ProgressUpdate) (*ConversionResult, error) {
	if e.source == nil {
		return nil, fmt.Errorf("%w: setlist source not initialized", shared.ErrServiceUnavailable)
	}
	if e.searcher == nil {
		return nil, fmt.Errorf("%w: video searcher not initialized", shared.ErrServiceUnavailable)
	}
	if !opts.DryRun && e.playlists == nil {
		return nil, fmt.Errorf("%w: playlist service not initialized", shared.ErrServiceUnavailable)
	}

	if opts.Privacy == "" {
		opts.Privacy = models.PrivacyPrivate
	}

	result := &ConversionResult{DryRun: opts.DryRun}

	e.sendProgress(progress, fetchSetlistUpdate(1, 1))

	setlist, err := e.source.FetchSetlist(ctx, setlistURL)
	if err != nil {
		return nil, err
	}
	if len(setlist.Songs) == 0 {
		return nil, fmt.Errorf("%w: %s", shared.ErrEmptySetlist, setlistURL)
	}

	result.Setlist = setlist
	result.TotalSongs = len(setlist.Songs)
	e.sendProgress(progress, foundSetlistUpdate(1, 1, setlist))

	if err := e.matchSongs(ctx, setlist, opts, result, progress); err != nil {
		return result, err
	}

	if result.MatchedCount == 0 {
		return result, fmt.Errorf("no songs were matched - cannot create empty playlist")
	}

	if opts.DryRun {
		return result, nil
	}

	if err := e.assemblePlaylist(ctx, setlist, opts, result, progress); err != nil {
		return result, err
	}

	return result, nil
}

// matchSongs resolves each song to a video, in setlist order.
func (e *ConvertEngine) matchSongs(ctx context.Context, setlist *models.Setlist, opts ConvertOptions, result *ConversionResult, progress chan<- ProgressUpdate) error {
	total := len(setlist.Songs)
	result.Matches = make([]models.MatchResult, 0, total)

	for i, song := range setlist.Songs {
		e.sendProgress(progress, matchSongUpdate(i+1, total, song))

		matched, fromCache, err := e.matchSong(ctx, song, opts)
		if err != nil {
			return err
		}
		if fromCache {
			result.CacheHits++
		}

		result.Matches = append(result.Matches, matched)
		if matched.Matched() {
			result.MatchedCount++
			result.VideoIDs = append(result.VideoIDs, matched.VideoID)
		} else {
			result.FailedCount++
		}

		e.sendProgress(progress, songMatchedUpdate(i+1, total, matched))
	}

	if result.TotalSongs > 0 {
		result.MatchPercentage = float64(result.MatchedCount) / float64(result.TotalSongs) * 100
	}

	return nil
}

// matchSong resolves one song, consulting the cache before searching.
func (e *ConvertEngine) matchSong(ctx context.Context, song models.Song, opts ConvertOptions) (models.MatchResult, bool, error) {
	key := shared.CacheKey(song.Title, song.Artist)

	if opts.UseCache && e.cache != nil {
		if cached, ok := e.cache.Lookup(key); ok {
			return models.MatchResult{
				Song:         song,
				VideoID:      cached.VideoID,
				MatchedQuery: cached.MatchedQuery,
				Confidence:   cached.Confidence,
			}, true, nil
		}
	}

	var topHit models.SearchHit
	search := func(q models.QueryCandidate) ([]models.SearchHit, error) {
		hits, err := e.searcher.Search(ctx, q.Text)
		e.recordQuota("search.list", services.QuotaCostSearch)
		if err != nil {
			return nil, err
		}
		if len(hits) > 0 {
			topHit = hits[0]
		}
		return hits, nil
	}

	matched, err := match.Select(song, match.Queries(song), search)
	if err != nil {
		return matched, false, err
	}

	if matched.Matched() && opts.UseCache && e.cache != nil {
		_ = e.cache.Store(key, topHit, matched.MatchedQuery, matched.Confidence)
	}

	return matched, false, nil
}

// assemblePlaylist creates the playlist and inserts the matched videos
// sequentially. A failed insert aborts immediately, leaving a partial
// playlist rather than a misordered one.
func (e *ConvertEngine) assemblePlaylist(ctx context.Context, setlist *models.Setlist, opts ConvertOptions, result *ConversionResult, progress chan<- ProgressUpdate) error {
	spec := models.PlaylistSpec{
		Title:       PlaylistTitle(setlist),
		Description: PlaylistDescription(setlist),
		Privacy:     opts.Privacy,
		VideoIDs:    result.VideoIDs,
	}

	e.sendProgress(progress, createPlaylistUpdate(1, 1, spec.Title))

	playlistID, err := e.playlists.CreatePlaylist(ctx, spec)
	e.recordQuota("playlists.insert", services.QuotaCostPlaylistInsert)
	if err != nil {
		return fmt.Errorf("failed to create playlist: %w", err)
	}

	result.PlaylistID = playlistID
	result.PlaylistURL = services.PlaylistURL(playlistID)
	e.sendProgress(progress, playlistCreatedUpdate(1, 1, playlistID))

	total := len(spec.VideoIDs)
	for i, videoID := range spec.VideoIDs {
		e.sendProgress(progress, insertVideoUpdate(i+1, total, videoID))

		err := e.playlists.AddVideo(ctx, playlistID, videoID, i)
		e.recordQuota("playlistItems.insert", services.QuotaCostPlaylistItem)
		if err != nil {
			return fmt.Errorf("failed to add video %s at position %d: %w", videoID, i, err)
		}
	}

	return nil
}

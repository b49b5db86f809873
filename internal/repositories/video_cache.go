package repositories

import (
	"fmt"

	"github.com/desertthunder/encore/internal/models"
)

// VideoCacheAdapter implements tasks.VideoCacher using VideoRepository.
//
// Repository errors on lookup are treated as cache misses: a broken or stale
// cache should degrade to fresh searches, never fail a conversion.
type VideoCacheAdapter struct {
	repo *VideoRepository
}

// NewVideoCacheAdapter creates a new VideoCacheAdapter with the given repository
func NewVideoCacheAdapter(repo *VideoRepository) *VideoCacheAdapter {
	return &VideoCacheAdapter{repo: repo}
}

// Lookup returns the cached match for a cache key, or false on a miss.
func (a *VideoCacheAdapter) Lookup(key string) (*models.CachedVideo, bool) {
	video, err := a.repo.GetByKey(key)
	if err != nil {
		return nil, false
	}

	return video, true
}

// Store persists a match result under a cache key. Unmatched results are not
// cached: a miss today may be a hit after the official upload lands.
func (a *VideoCacheAdapter) Store(key string, hit models.SearchHit, matchedQuery string, confidence models.Confidence) error {
	if confidence == models.MatchNone {
		return nil
	}

	video := models.NewCachedVideo(key, hit, matchedQuery, confidence)
	if err := a.repo.Create(video); err != nil {
		return fmt.Errorf("failed to cache video match: %w", err)
	}

	return nil
}

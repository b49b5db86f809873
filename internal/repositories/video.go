package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/encore/internal/models"
	"github.com/desertthunder/encore/internal/shared"
)

// VideoCacheTTL is how long a cached match stays valid. Search results drift
// as uploads appear and disappear, so entries older than this are treated as
// misses and pruned.
const VideoCacheTTL = 7 * 24 * time.Hour

// VideoRepository implements models.Repository[*models.CachedVideo] for the
// video match cache.
//
// Cached matches are keyed by the normalized "title|artist" cache key and
// save a full query ladder's worth of search quota on repeat conversions.
type VideoRepository struct {
	db  *sql.DB
	ttl time.Duration
}

// NewVideoRepository creates a new VideoRepository with the given database connection.
func NewVideoRepository(db *sql.DB) *VideoRepository {
	return &VideoRepository{db: db, ttl: VideoCacheTTL}
}

// Create inserts a new [models.CachedVideo] with generated ID and sequence.
//
// A duplicate cache key overwrites the existing entry rather than erroring:
// re-converting a setlist refreshes the cache.
func (r *VideoRepository) Create(video *models.CachedVideo) error {
	sequence, err := NextSequence(r.db, "videos")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	video.SetID(id)
	video.SetSequence(sequence)

	if err := video.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO videos (id, sequence, cache_key, video_id, video_title, channel, matched_query, confidence, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(cache_key) DO UPDATE SET
			video_id = excluded.video_id,
			video_title = excluded.video_title,
			channel = excluded.channel,
			matched_query = excluded.matched_query,
			confidence = excluded.confidence,
			updated_at = excluded.updated_at
	`

	_, err = r.db.Exec(query,
		id,
		sequence,
		video.Key,
		video.VideoID,
		video.VideoTitle,
		video.Channel,
		video.MatchedQuery,
		video.Confidence.String(),
		video.CreatedAt(),
		video.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert cached video: %w", err)
	}

	return nil
}

// Get retrieves a cached video by ID.
func (r *VideoRepository) Get(id string) (*models.CachedVideo, error) {
	query := `
		SELECT id, sequence, cache_key, video_id, video_title, channel, matched_query, confidence, created_at, updated_at
		FROM videos
		WHERE id = ?
	`

	return r.scanOne(r.db.QueryRow(query, id))
}

// GetByKey retrieves a fresh cached video by its cache key.
//
// An entry older than the TTL is deleted and reported as a miss, so callers
// only ever see entries they can trust.
func (r *VideoRepository) GetByKey(key string) (*models.CachedVideo, error) {
	query := `
		SELECT id, sequence, cache_key, video_id, video_title, channel, matched_query, confidence, created_at, updated_at
		FROM videos
		WHERE cache_key = ?
	`

	video, err := r.scanOne(r.db.QueryRow(query, key))
	if err != nil {
		return nil, err
	}

	if time.Since(video.UpdatedAt()) > r.ttl {
		if err := r.Delete(video.ID()); err != nil {
			return nil, fmt.Errorf("failed to prune stale cache entry: %w", err)
		}
		return nil, fmt.Errorf("cached video expired for key %q", key)
	}

	return video, nil
}

// Update modifies an existing cached video.
func (r *VideoRepository) Update(video *models.CachedVideo) error {
	if err := video.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	video.SetUpdatedAt(now)

	query := `
		UPDATE videos
		SET video_id = ?, video_title = ?, channel = ?, matched_query = ?, confidence = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.Exec(query,
		video.VideoID,
		video.VideoTitle,
		video.Channel,
		video.MatchedQuery,
		video.Confidence.String(),
		now,
		video.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update cached video: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("cached video not found: %s", video.ID())
	}

	return nil
}

// Delete removes a cached video by ID.
func (r *VideoRepository) Delete(id string) error {
	result, err := r.db.Exec("DELETE FROM videos WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete cached video: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("cached video not found: %s", id)
	}

	return nil
}

// List retrieves cached videos matching the given criteria.
func (r *VideoRepository) List(criteria map[string]any) ([]*models.CachedVideo, error) {
	query := `
		SELECT id, sequence, cache_key, video_id, video_title, channel, matched_query, confidence, created_at, updated_at
		FROM videos
		WHERE 1 = 1
	`

	args := []any{}

	if confidence, ok := criteria["confidence"].(string); ok && confidence != "" {
		query += " AND confidence = ?"
		args = append(args, confidence)
	}

	if keyPrefix, ok := criteria["key_prefix"].(string); ok && keyPrefix != "" {
		query += " AND cache_key LIKE ?"
		args = append(args, keyPrefix+"%")
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query cached videos: %w", err)
	}
	defer rows.Close()

	var videos []*models.CachedVideo
	for rows.Next() {
		video, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		videos = append(videos, video)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return videos, nil
}

// CacheStats summarizes the state of the video cache.
type CacheStats struct {
	Total   int
	Fresh   int
	Expired int
	Exact   int
	Fuzzy   int
}

// Stats counts cache entries by freshness and confidence.
func (r *VideoRepository) Stats() (CacheStats, error) {
	var stats CacheStats
	cutoff := time.Now().Add(-r.ttl)

	query := `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN updated_at > ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN confidence = 'exact' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN confidence = 'fuzzy' THEN 1 ELSE 0 END), 0)
		FROM videos
	`

	err := r.db.QueryRow(query, cutoff).Scan(&stats.Total, &stats.Fresh, &stats.Exact, &stats.Fuzzy)
	if err != nil {
		return stats, fmt.Errorf("failed to query cache stats: %w", err)
	}

	stats.Expired = stats.Total - stats.Fresh
	return stats, nil
}

// Clear deletes every cache entry and returns how many were removed.
func (r *VideoRepository) Clear() (int, error) {
	result, err := r.db.Exec("DELETE FROM videos")
	if err != nil {
		return 0, fmt.Errorf("failed to clear video cache: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}

	return int(rows), nil
}

// scanOne scans a single [sql.Row] into a [models.CachedVideo].
func (r *VideoRepository) scanOne(row *sql.Row) (*models.CachedVideo, error) {
	var (
		id           string
		sequence     int
		key          string
		videoID      string
		videoTitle   string
		channel      string
		matchedQuery string
		confidence   string
		createdAt    time.Time
		updatedAt    time.Time
	)

	err := row.Scan(&id, &sequence, &key, &videoID, &videoTitle, &channel, &matchedQuery, &confidence, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("cached video not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan cached video: %w", err)
	}

	return buildCachedVideo(id, sequence, key, videoID, videoTitle, channel, matchedQuery, confidence, createdAt, updatedAt), nil
}

// scanRow scans a row from [sql.Rows] into a [models.CachedVideo].
func (r *VideoRepository) scanRow(rows *sql.Rows) (*models.CachedVideo, error) {
	var (
		id           string
		sequence     int
		key          string
		videoID      string
		videoTitle   string
		channel      string
		matchedQuery string
		confidence   string
		createdAt    time.Time
		updatedAt    time.Time
	)

	err := rows.Scan(&id, &sequence, &key, &videoID, &videoTitle, &channel, &matchedQuery, &confidence, &createdAt, &updatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to scan cached video: %w", err)
	}

	return buildCachedVideo(id, sequence, key, videoID, videoTitle, channel, matchedQuery, confidence, createdAt, updatedAt), nil
}

func buildCachedVideo(id string, sequence int, key, videoID, videoTitle, channel, matchedQuery, confidence string, createdAt, updatedAt time.Time) *models.CachedVideo {
	hit := models.SearchHit{VideoID: videoID, Title: videoTitle, ChannelTitle: channel}
	video := models.NewCachedVideo(key, hit, matchedQuery, models.ParseConfidence(confidence))
	video.SetID(id)
	video.SetSequence(sequence)
	video.SetCreatedAt(createdAt)
	video.SetUpdatedAt(updatedAt)
	return video
}

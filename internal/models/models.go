// package models defines the data model for setlist conversion
package models

import (
	"fmt"
	"time"
)

// Model defines the base interface for all persistent models.
// Implementations include CachedVideo and QuotaEntry.
type Model interface {
	ID() string           // ID returns the unique identifier for this model
	CreatedAt() time.Time // CreatedAt returns when this model was created
	UpdatedAt() time.Time // UpdatedAt returns when this model was last updated
	Validate() error      // Validate checks if the model's data is valid and returns an error if not
}

// Repository defines the interface for data access operations.
// Implementations handle database interactions for specific model types.
type Repository[T Model] interface {
	Create(model T) error                      // Create inserts a new model into the database
	Get(id string) (T, error)                  // Get retrieves a model by its ID
	Update(model T) error                      // Update modifies an existing model in the database
	Delete(id string) error                    // Delete removes a model from the database by its ID
	List(criteria map[string]any) ([]T, error) // List retrieves all models matching the given criteria
}

// Song represents a single entry in a setlist.
//
// Artist is the performing (show) artist. OriginalArtist is set only when
// the song is a cover, in which case Cover is true. Position is 1-based
// setlist order and is preserved end-to-end into the final playlist.
type Song struct {
	Title          string
	Artist         string
	OriginalArtist string
	Cover          bool
	Tape           bool
	Position       int
}

// Setlist represents a parsed setlist.fm setlist.
//
// The order of Songs is semantically meaningful: it is the final playlist
// order and must never be rearranged.
type Setlist struct {
	URL    string
	Artist string
	Venue  string
	City   string
	Date   string
	Songs  []Song
}

// QueryCandidate is a single search string with its try-order rank (lower is tried first).
type QueryCandidate struct {
	Text string
	Rank int
}

// Confidence is the categorical quality label assigned to a chosen video match.
type Confidence int

const (
	MatchNone Confidence = iota
	MatchFuzzy
	MatchExact
)

func (c Confidence) String() string {
	switch c {
	case MatchExact:
		return "exact"
	case MatchFuzzy:
		return "fuzzy"
	default:
		return "none"
	}
}

// ParseConfidence converts a stored confidence label back to its enum value.
func ParseConfidence(s string) Confidence {
	switch s {
	case "exact":
		return MatchExact
	case "fuzzy":
		return MatchFuzzy
	default:
		return MatchNone
	}
}

// MatchResult records the outcome of matching one song against YouTube.
// Produced once per song and never mutated afterwards.
type MatchResult struct {
	Song         Song
	VideoID      string
	MatchedQuery string
	Confidence   Confidence
}

// Matched reports whether the song found any video at all.
func (m MatchResult) Matched() bool {
	return m.Confidence != MatchNone
}

// SearchHit is a single video returned by the search collaborator.
type SearchHit struct {
	VideoID      string
	Title        string
	ChannelTitle string
}

// Privacy is the visibility of the created playlist.
type Privacy string

const (
	PrivacyPrivate  Privacy = "private"
	PrivacyUnlisted Privacy = "unlisted"
	PrivacyPublic   Privacy = "public"
)

// ParsePrivacy validates a privacy flag value.
func ParsePrivacy(s string) (Privacy, error) {
	switch Privacy(s) {
	case PrivacyPrivate, PrivacyUnlisted, PrivacyPublic:
		return Privacy(s), nil
	default:
		return "", fmt.Errorf("invalid privacy %q (must be private, unlisted, or public)", s)
	}
}

// PlaylistSpec describes the playlist to create.
//
// VideoIDs is an order-preserving subsequence of the setlist's songs
// filtered to matched songs: no reordering, no duplicates, no placeholders
// for unmatched entries.
type PlaylistSpec struct {
	Title       string
	Description string
	Privacy     Privacy
	VideoIDs    []string
}

// CachedVideo is a persisted search result keyed by normalized title|artist.
type CachedVideo struct {
	id           string
	sequence     int
	Key          string
	VideoID      string
	VideoTitle   string
	Channel      string
	MatchedQuery string
	Confidence   Confidence
	createdAt    time.Time
	updatedAt    time.Time
}

// NewCachedVideo builds a CachedVideo from a cache key and the chosen hit.
func NewCachedVideo(key string, hit SearchHit, matchedQuery string, confidence Confidence) *CachedVideo {
	now := time.Now()
	return &CachedVideo{
		Key:          key,
		VideoID:      hit.VideoID,
		VideoTitle:   hit.Title,
		Channel:      hit.ChannelTitle,
		MatchedQuery: matchedQuery,
		Confidence:   confidence,
		createdAt:    now,
		updatedAt:    now,
	}
}

func (v *CachedVideo) ID() string           { return v.id }
func (v *CachedVideo) CreatedAt() time.Time { return v.createdAt }
func (v *CachedVideo) UpdatedAt() time.Time { return v.updatedAt }

func (v *CachedVideo) SetID(id string)          { v.id = id }
func (v *CachedVideo) SetSequence(seq int)      { v.sequence = seq }
func (v *CachedVideo) Sequence() int            { return v.sequence }
func (v *CachedVideo) SetCreatedAt(t time.Time) { v.createdAt = t }
func (v *CachedVideo) SetUpdatedAt(t time.Time) { v.updatedAt = t }

// Validate checks required fields before persistence.
func (v *CachedVideo) Validate() error {
	if v.Key == "" {
		return fmt.Errorf("cached video requires a cache key")
	}
	if v.VideoID == "" {
		return fmt.Errorf("cached video requires a video ID")
	}
	return nil
}

// QuotaEntry is one recorded YouTube Data API call and its unit cost.
type QuotaEntry struct {
	id        string
	sequence  int
	Operation string
	Units     int
	createdAt time.Time
	updatedAt time.Time
}

// NewQuotaEntry builds a QuotaEntry for a named API operation.
func NewQuotaEntry(operation string, units int) *QuotaEntry {
	now := time.Now()
	return &QuotaEntry{
		Operation: operation,
		Units:     units,
		createdAt: now,
		updatedAt: now,
	}
}

func (q *QuotaEntry) ID() string           { return q.id }
func (q *QuotaEntry) CreatedAt() time.Time { return q.createdAt }
func (q *QuotaEntry) UpdatedAt() time.Time { return q.updatedAt }

func (q *QuotaEntry) SetID(id string)          { q.id = id }
func (q *QuotaEntry) SetSequence(seq int)      { q.sequence = seq }
func (q *QuotaEntry) Sequence() int            { return q.sequence }
func (q *QuotaEntry) SetCreatedAt(t time.Time) { q.createdAt = t }

// Validate checks required fields before persistence.
func (q *QuotaEntry) Validate() error {
	if q.Operation == "" {
		return fmt.Errorf("quota entry requires an operation name")
	}
	if q.Units <= 0 {
		return fmt.Errorf("quota entry requires a positive unit cost")
	}
	return nil
}

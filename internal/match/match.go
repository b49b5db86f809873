// Package match implements the song-to-video matching core.
//
// The package is pure: [Queries] turns a song into a ranked ladder of
// search strings, and [Select] picks a video from supplied search results.
// Neither function performs network calls, which keeps the matching
// behavior deterministic and testable in isolation.
package match

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/desertthunder/encore/internal/models"
)

// variants are the per-artist query shapes, in try order.
var variants = []string{
	"%s %s",
	"%s - %s",
	"%s %s official",
	"%s %s official audio",
}

// Queries builds the ordered search ladder for a song.
//
// For covers, every query derived from the original artist ranks strictly
// ahead of every query derived from the performing artist: YouTube catalog
// coverage favors the canonical recording. Identical strings are
// deduplicated case-insensitively, keeping the first-seen rank. Placeholder
// titles ("Intro", "Tuning") are not filtered here; that is the setlist
// source's concern.
func Queries(song models.Song) []models.QueryCandidate {
	artists := make([]string, 0, 2)
	if song.Cover && song.OriginalArtist != "" {
		artists = append(artists, song.OriginalArtist)
	}
	artists = append(artists, song.Artist)

	seen := make(map[string]bool)
	var candidates []models.QueryCandidate

	for _, artist := range artists {
		for _, variant := range variants {
			text := fmt.Sprintf(variant, song.Title, artist)
			key := strings.ToLower(text)
			if seen[key] {
				continue
			}
			seen[key] = true
			candidates = append(candidates, models.QueryCandidate{
				Text: text,
				Rank: len(candidates),
			})
		}
	}

	return candidates
}

// SearchFunc runs one search query and returns its ordered hits.
// Implementations belong to the search collaborator (YouTube client, cache,
// or a test stub).
type SearchFunc func(models.QueryCandidate) ([]models.SearchHit, error)

// Select picks the best video for a song from the given query ladder.
//
// Candidates are tried in ascending rank order; the first query returning at
// least one hit wins and only its top hit is evaluated. There is no
// cross-query score comparison and no scanning past the first hit, trading
// recall for predictability. A normalized substring test on the hit title
// decides exact vs fuzzy confidence. When no query yields a hit the result
// carries [models.MatchNone].
//
// A failed search (quota, network) is returned to the caller immediately;
// this layer never retries.
func Select(song models.Song, candidates []models.QueryCandidate, search SearchFunc) (models.MatchResult, error) {
	result := models.MatchResult{Song: song, Confidence: models.MatchNone}

	for _, candidate := range candidates {
		hits, err := search(candidate)
		if err != nil {
			return result, fmt.Errorf("search %q failed: %w", candidate.Text, err)
		}
		if len(hits) == 0 {
			continue
		}

		top := hits[0]
		result.VideoID = top.VideoID
		result.MatchedQuery = candidate.Text
		if TitleContains(top.Title, song.Title) {
			result.Confidence = models.MatchExact
		} else {
			result.Confidence = models.MatchFuzzy
		}
		return result, nil
	}

	return result, nil
}

// TitleContains reports whether the normalized video title contains the
// normalized song title as a substring.
func TitleContains(videoTitle, songTitle string) bool {
	return strings.Contains(Normalize(videoTitle), Normalize(songTitle))
}

// Normalize case-folds a title and strips punctuation, keeping only letters,
// digits, and single spaces. "Hallelujah (Live) - Leonard Cohen" becomes
// "hallelujah live leonard cohen".
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}

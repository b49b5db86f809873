package match

import (
	"errors"
	"strings"
	"testing"

	"github.com/desertthunder/encore/internal/models"
)

func TestQueries(t *testing.T) {
	t.Run("cover prioritizes original artist", func(t *testing.T) {
		song := models.Song{
			Title:          "Hallelujah",
			Artist:         "Jeff Buckley",
			OriginalArtist: "Leonard Cohen",
			Cover:          true,
		}

		queries := Queries(song)
		if len(queries) == 0 {
			t.Fatal("expected queries to be generated")
		}

		if queries[0].Text != "Hallelujah Leonard Cohen" {
			t.Errorf("expected first query 'Hallelujah Leonard Cohen', got %q", queries[0].Text)
		}

		// Every original-artist query must outrank every performing-artist query.
		lastOriginal := -1
		firstPerforming := len(queries)
		for _, q := range queries {
			switch {
			case strings.Contains(q.Text, "Leonard Cohen"):
				if q.Rank > lastOriginal {
					lastOriginal = q.Rank
				}
			case strings.Contains(q.Text, "Jeff Buckley"):
				if q.Rank < firstPerforming {
					firstPerforming = q.Rank
				}
			}
		}
		if lastOriginal >= firstPerforming {
			t.Errorf("expected all original-artist queries before performing-artist queries (last original %d, first performing %d)", lastOriginal, firstPerforming)
		}
	})

	t.Run("non-cover uses performing artist only", func(t *testing.T) {
		song := models.Song{Title: "Intro", Artist: "Band X"}

		queries := Queries(song)
		if len(queries) != 4 {
			t.Fatalf("expected 4 queries, got %d", len(queries))
		}
		for _, q := range queries {
			if !strings.Contains(q.Text, "Band X") {
				t.Errorf("expected query to use performing artist, got %q", q.Text)
			}
		}
	})

	t.Run("variant order is fixed", func(t *testing.T) {
		queries := Queries(models.Song{Title: "Song", Artist: "Artist"})

		want := []string{
			"Song Artist",
			"Song - Artist",
			"Song Artist official",
			"Song Artist official audio",
		}
		for i, text := range want {
			if queries[i].Text != text {
				t.Errorf("query %d: expected %q, got %q", i, text, queries[i].Text)
			}
		}
	})

	t.Run("deduplicates case-insensitively", func(t *testing.T) {
		// Same artist for cover and performance collapses the ladder.
		song := models.Song{
			Title:          "Song",
			Artist:         "the band",
			OriginalArtist: "The Band",
			Cover:          true,
		}

		queries := Queries(song)
		seen := make(map[string]bool)
		for _, q := range queries {
			key := strings.ToLower(q.Text)
			if seen[key] {
				t.Errorf("duplicate query %q", q.Text)
			}
			seen[key] = true
		}
		if len(queries) != 4 {
			t.Errorf("expected 4 deduplicated queries, got %d", len(queries))
		}
		// First-seen casing wins.
		if queries[0].Text != "Song The Band" {
			t.Errorf("expected first-seen casing to be kept, got %q", queries[0].Text)
		}
	})

	t.Run("ranks are consecutive from zero", func(t *testing.T) {
		song := models.Song{
			Title:          "Hurt",
			Artist:         "Johnny Cash",
			OriginalArtist: "Nine Inch Nails",
			Cover:          true,
		}
		for i, q := range Queries(song) {
			if q.Rank != i {
				t.Errorf("expected rank %d, got %d", i, q.Rank)
			}
		}
	})

	t.Run("never empty for non-empty title and artist", func(t *testing.T) {
		if len(Queries(models.Song{Title: "Tuning", Artist: "Band"})) == 0 {
			t.Error("expected queries even for placeholder titles")
		}
	})
}

func TestSelect(t *testing.T) {
	song := models.Song{
		Title:          "Hallelujah",
		Artist:         "Jeff Buckley",
		OriginalArtist: "Leonard Cohen",
		Cover:          true,
	}

	t.Run("top hit of first successful query", func(t *testing.T) {
		var searched []string
		search := func(q models.QueryCandidate) ([]models.SearchHit, error) {
			searched = append(searched, q.Text)
			if len(searched) < 3 {
				return nil, nil
			}
			return []models.SearchHit{
				{VideoID: "vid1", Title: "some upload"},
				{VideoID: "vid2", Title: "Hallelujah"},
			}, nil
		}

		result, err := Select(song, Queries(song), search)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if result.VideoID != "vid1" {
			t.Errorf("expected top hit vid1, got %s", result.VideoID)
		}
		if result.MatchedQuery != searched[2] {
			t.Errorf("expected matched query %q, got %q", searched[2], result.MatchedQuery)
		}
		if len(searched) != 3 {
			t.Errorf("expected search to stop at first successful query, ran %d", len(searched))
		}
	})

	t.Run("normalized substring yields exact confidence", func(t *testing.T) {
		search := func(q models.QueryCandidate) ([]models.SearchHit, error) {
			return []models.SearchHit{{VideoID: "vid1", Title: "Hallelujah (Live) - Leonard Cohen"}}, nil
		}

		result, err := Select(song, Queries(song), search)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if result.Confidence != models.MatchExact {
			t.Errorf("expected exact confidence, got %s", result.Confidence)
		}
	})

	t.Run("non-matching title yields fuzzy confidence", func(t *testing.T) {
		search := func(q models.QueryCandidate) ([]models.SearchHit, error) {
			return []models.SearchHit{{VideoID: "vid1", Title: "unrelated video"}}, nil
		}

		result, err := Select(song, Queries(song), search)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if result.Confidence != models.MatchFuzzy {
			t.Errorf("expected fuzzy confidence, got %s", result.Confidence)
		}
	})

	t.Run("no hits anywhere yields none", func(t *testing.T) {
		search := func(q models.QueryCandidate) ([]models.SearchHit, error) {
			return nil, nil
		}

		result, err := Select(song, Queries(song), search)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if result.Confidence != models.MatchNone {
			t.Errorf("expected none confidence, got %s", result.Confidence)
		}
		if result.VideoID != "" {
			t.Errorf("expected no video ID, got %s", result.VideoID)
		}
	})

	t.Run("search error propagates without retry", func(t *testing.T) {
		wantErr := errors.New("quota exceeded")
		calls := 0
		search := func(q models.QueryCandidate) ([]models.SearchHit, error) {
			calls++
			return nil, wantErr
		}

		result, err := Select(song, Queries(song), search)
		if !errors.Is(err, wantErr) {
			t.Fatalf("expected wrapped search error, got %v", err)
		}
		if calls != 1 {
			t.Errorf("expected a single search attempt, got %d", calls)
		}
		if result.Confidence != models.MatchNone {
			t.Errorf("expected none confidence on error, got %s", result.Confidence)
		}
	})
}

func TestNormalize(t *testing.T) {
	tc := []struct {
		name string
		in   string
		want string
	}{
		{name: "lowercases", in: "HalleluJAH", want: "hallelujah"},
		{name: "strips punctuation", in: "Hallelujah (Live) - Leonard Cohen", want: "hallelujah live leonard cohen"},
		{name: "collapses whitespace", in: "  a   b  ", want: "a b"},
		{name: "keeps digits", in: "Track 01!", want: "track 01"},
		{name: "keeps unicode letters", in: "Señorita!", want: "señorita"},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

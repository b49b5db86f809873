// package formatter renders setlists and conversion reports to various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/desertthunder/encore/internal/models"
)

// SetlistToText converts a setlist to a numbered plain text track listing.
func SetlistToText(setlist *models.Setlist) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("%s\n", setlist.Artist))
	buf.WriteString(fmt.Sprintf("%s, %s (%s)\n", setlist.Venue, setlist.City, setlist.Date))
	buf.WriteString(fmt.Sprintf("Songs: %d\n\n", len(setlist.Songs)))

	for _, song := range setlist.Songs {
		buf.WriteString(fmt.Sprintf("%d. %s%s\n", song.Position, song.Title, coverSuffix(song)))
	}

	return buf.Bytes()
}

// SetlistToMarkdown converts a setlist to Markdown.
func SetlistToMarkdown(setlist *models.Setlist) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", setlist.Artist))
	buf.WriteString(fmt.Sprintf("**Venue**: %s, %s\n", setlist.Venue, setlist.City))
	buf.WriteString(fmt.Sprintf("**Date**: %s\n", setlist.Date))
	buf.WriteString(fmt.Sprintf("**Songs**: %d\n\n", len(setlist.Songs)))

	buf.WriteString("## Songs\n\n")
	for _, song := range setlist.Songs {
		buf.WriteString(fmt.Sprintf("%d. %s%s\n", song.Position, song.Title, coverSuffix(song)))
	}

	if setlist.URL != "" {
		buf.WriteString(fmt.Sprintf("\n[Source](%s)\n", setlist.URL))
	}

	return buf.Bytes()
}

// ReportToText renders per-song match outcomes as a plain text report.
//
// Matched songs get a ✓ with the chosen video, unmatched songs a ✗, so the
// terminal output doubles as a conversion audit trail.
func ReportToText(matches []models.MatchResult) []byte {
	var buf bytes.Buffer

	for _, result := range matches {
		if result.Matched() {
			buf.WriteString(fmt.Sprintf("✓ %2d. %s (%s, via %q)\n",
				result.Song.Position, result.Song.Title, result.Confidence, result.MatchedQuery))
		} else {
			buf.WriteString(fmt.Sprintf("✗ %2d. %s (no video found)\n",
				result.Song.Position, result.Song.Title))
		}
	}

	return buf.Bytes()
}

// ReportToCSV renders match outcomes as CSV with columns: Position, Title, Artist, VideoID, Confidence, MatchedQuery
func ReportToCSV(matches []models.MatchResult) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Position", "Title", "Artist", "VideoID", "Confidence", "MatchedQuery"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, result := range matches {
		record := []string{
			strconv.Itoa(result.Song.Position),
			result.Song.Title,
			result.Song.Artist,
			result.VideoID,
			result.Confidence.String(),
			result.MatchedQuery,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// WriteToFile writes rendered output to a file, creating parent directories.
func WriteToFile(data []byte, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	return nil
}

func coverSuffix(song models.Song) string {
	if song.Cover && song.OriginalArtist != "" {
		return fmt.Sprintf(" (%s cover)", song.OriginalArtist)
	}
	return ""
}

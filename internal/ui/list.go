package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/encore/internal/models"
)

var (
	_ list.Item = songItem{}
)

// songItem wraps [models.Song] to implement [list.Item].
type songItem struct {
	song models.Song
}

func (i songItem) FilterValue() string { return i.song.Title }
func (i songItem) Title() string {
	return fmt.Sprintf("%d. %s", i.song.Position, i.song.Title)
}
func (i songItem) Description() string {
	if i.song.Cover && i.song.OriginalArtist != "" {
		return fmt.Sprintf("%s cover", i.song.OriginalArtist)
	}
	return i.song.Artist
}

package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/ytid/internal/models"
)

var (
	_ list.Item = songItem{}
)

// songItem wraps [models.Song] to implement [list.Item].
type songItem struct {
	position int
	song     models.Song
}

func (i songItem) FilterValue() string { return i.song.Label() }
func (i songItem) Title() string       { return fmt.Sprintf("%d. %s", i.position, i.song.Label()) }
func (i songItem) Description() string {
	desc := "pending"
	if i.song.Failed {
		desc = "failed"
	}
	if i.song.Album != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.song.Album)
	}
	return desc
}

// unresolvedItems lists every song in c without a video ID, in catalog order.
func unresolvedItems(c *models.Catalog) []list.Item {
	if c == nil {
		return nil
	}
	var items []list.Item
	for i, song := range c.Songs {
		if song.Resolved() {
			continue
		}
		items = append(items, songItem{position: i + 1, song: song})
	}
	return items
}

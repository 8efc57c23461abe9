package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/rotor/internal/models"
)

var (
	_ list.Item = playlistItem{}
	_ list.Item = slotItem{}
)

// playlistItem wraps [models.PersistedPlaylist] to implement [list.Item].
type playlistItem struct {
	playlist *models.PersistedPlaylist
}

func (i playlistItem) FilterValue() string { return i.playlist.Name() }
func (i playlistItem) Title() string       { return i.playlist.Name() }
func (i playlistItem) Description() string {
	return fmt.Sprintf("%d slots • %s",
		i.playlist.SlotCount(),
		i.playlist.CreatedAt().Format("2006-01-02 15:04"))
}

// slotItem is one playlist entry joined with its catalog track, implementing [list.Item].
type slotItem struct {
	entry models.PlaylistEntry
	track models.Track
	found bool
}

func (i slotItem) FilterValue() string {
	if i.found {
		return i.track.Artist + " " + i.track.Title
	}
	return i.entry.TrackID
}

func (i slotItem) Title() string {
	if i.found {
		return fmt.Sprintf("%d. %s - %s", i.entry.Position+1, i.track.Artist, i.track.Title)
	}
	return fmt.Sprintf("%d. %s", i.entry.Position+1, i.entry.TrackID)
}

func (i slotItem) Description() string {
	if i.entry.TrackCategory != "" && i.entry.TrackCategory != i.entry.SlotCategory {
		return fmt.Sprintf("%s • filled from %s", i.entry.SlotCategory, i.entry.TrackCategory)
	}
	return i.entry.SlotCategory
}

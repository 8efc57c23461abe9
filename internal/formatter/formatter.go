// Package formatter renders generated playlists for files, pipes, and the
// sync payload. Every renderer works from a RunExport, the playlist joined
// with the catalog tracks it references.
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/desertthunder/rotor/internal/models"
)

// Format identifies an export encoding.
type Format string

const (
	FormatCSV      Format = "csv"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
	FormatText     Format = "text"
)

// ParseFormat resolves a user-supplied format name, accepting common aliases.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "text", "txt", "plain":
		return FormatText, nil
	default:
		return "", fmt.Errorf("unknown export format %q", s)
	}
}

// Ext returns the file extension for the format, without the dot.
func (f Format) Ext() string {
	if f == FormatMarkdown {
		return "md"
	}
	if f == FormatText {
		return "txt"
	}
	return string(f)
}

// RunExport joins a persisted playlist with the catalog tracks its entries
// reference. Entries whose track has since been deleted render with the bare
// track ID.
type RunExport struct {
	Playlist *models.PersistedPlaylist
	Tracks   map[string]models.Track
}

// NewRunExport builds a RunExport, indexing the given tracks by ID.
func NewRunExport(playlist *models.PersistedPlaylist, tracks []models.Track) *RunExport {
	index := make(map[string]models.Track, len(tracks))
	for _, track := range tracks {
		index[track.ID] = track
	}
	return &RunExport{Playlist: playlist, Tracks: index}
}

func (e *RunExport) track(id string) (models.Track, bool) {
	track, ok := e.Tracks[id]
	return track, ok
}

// substituted reports whether recovery filled the slot from a different
// category than the schedule required.
func substituted(entry models.PlaylistEntry) bool {
	return entry.TrackCategory != "" && entry.TrackCategory != entry.SlotCategory
}

// Export renders the playlist in the requested format.
func Export(export *RunExport, format Format) ([]byte, error) {
	switch format {
	case FormatCSV:
		return ExportToCSV(export)
	case FormatJSON:
		return ExportToJSON(export)
	case FormatMarkdown:
		return ExportToMarkdown(export)
	case FormatText:
		return ExportToText(export)
	default:
		return nil, fmt.Errorf("unknown export format %q", format)
	}
}

// ExportToCSV renders the playlist as CSV with one row per slot.
func ExportToCSV(export *RunExport) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"position", "artist", "title", "slot_category", "track_category", "track_id"}); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, entry := range export.Playlist.Entries() {
		artist, title := entry.TrackID, ""
		if track, ok := export.track(entry.TrackID); ok {
			artist, title = track.Artist, track.Title
		}
		row := []string{
			fmt.Sprintf("%d", entry.Position),
			artist,
			title,
			entry.SlotCategory,
			entry.TrackCategory,
			entry.TrackID,
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush CSV: %w", err)
	}

	return buf.Bytes(), nil
}

// jsonEntry is one slot in the JSON payload, with track attribution inlined.
type jsonEntry struct {
	Position      int    `json:"position"`
	Artist        string `json:"artist"`
	Title         string `json:"title"`
	SlotCategory  string `json:"slot_category"`
	TrackCategory string `json:"track_category"`
	TrackID       string `json:"track_id"`
}

// jsonPayload is the full JSON document. The sync service sends this same
// shape to the listening-station proxy.
type jsonPayload struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	SlotCount int             `json:"slot_count"`
	CreatedAt time.Time       `json:"created_at"`
	Stats     models.RunStats `json:"stats"`
	Entries   []jsonEntry     `json:"entries"`
}

// ExportToJSON renders the playlist as an indented JSON document.
func ExportToJSON(export *RunExport) ([]byte, error) {
	playlist := export.Playlist
	payload := jsonPayload{
		ID:        playlist.ID(),
		Name:      playlist.Name(),
		SlotCount: playlist.SlotCount(),
		CreatedAt: playlist.CreatedAt(),
		Stats:     playlist.Stats(),
		Entries:   make([]jsonEntry, 0, len(playlist.Entries())),
	}

	for _, entry := range playlist.Entries() {
		je := jsonEntry{
			Position:      entry.Position,
			SlotCategory:  entry.SlotCategory,
			TrackCategory: entry.TrackCategory,
			TrackID:       entry.TrackID,
		}
		if track, ok := export.track(entry.TrackID); ok {
			je.Artist = track.Artist
			je.Title = track.Title
		}
		payload.Entries = append(payload.Entries, je)
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal playlist: %w", err)
	}
	return data, nil
}

// ExportToMarkdown renders the playlist as a Markdown document with a
// category distribution table and the ordered track list.
func ExportToMarkdown(export *RunExport) ([]byte, error) {
	var buf bytes.Buffer
	playlist := export.Playlist
	stats := playlist.Stats()

	buf.WriteString(fmt.Sprintf("# %s\n\n", playlist.Name()))
	buf.WriteString(fmt.Sprintf("**Generated**: %s\n", playlist.CreatedAt().Format("2006-01-02 15:04")))
	buf.WriteString(fmt.Sprintf("**Slots**: %d\n\n", playlist.SlotCount()))

	if len(stats.Realized) > 0 {
		buf.WriteString("## Distribution\n\n")
		buf.WriteString("| Category | Slots |\n|---|---|\n")
		for _, category := range sortedCategories(stats.Realized) {
			buf.WriteString(fmt.Sprintf("| %s | %d |\n", category, stats.Realized[category]))
		}
		buf.WriteString("\n")
	}

	buf.WriteString("## Tracks\n\n")
	for _, entry := range playlist.Entries() {
		line := entry.TrackID
		if track, ok := export.track(entry.TrackID); ok {
			line = fmt.Sprintf("%s - %s", track.Artist, track.Title)
		}
		note := ""
		if substituted(entry) {
			note = fmt.Sprintf(" *(from %s)*", entry.TrackCategory)
		}
		buf.WriteString(fmt.Sprintf("%d. %s [%s]%s\n", entry.Position+1, line, entry.SlotCategory, note))
	}

	if stats.Resets > 0 || stats.Fallbacks > 0 || stats.ForcedSpacing > 0 {
		buf.WriteString(fmt.Sprintf("\n*Recovery: %d resets, %d fallbacks, %d forced spacing.*\n",
			stats.Resets, stats.Fallbacks, stats.ForcedSpacing))
	}

	return buf.Bytes(), nil
}

// ExportToText renders the playlist as plain text, one slot per line.
func ExportToText(export *RunExport) ([]byte, error) {
	var buf bytes.Buffer
	playlist := export.Playlist

	buf.WriteString(fmt.Sprintf("Playlist: %s\n", playlist.Name()))
	buf.WriteString(fmt.Sprintf("Generated: %s\n", playlist.CreatedAt().Format("2006-01-02 15:04")))
	buf.WriteString(fmt.Sprintf("Slots: %d\n\n", playlist.SlotCount()))

	for _, entry := range playlist.Entries() {
		line := entry.TrackID
		if track, ok := export.track(entry.TrackID); ok {
			line = fmt.Sprintf("%s - %s", track.Artist, track.Title)
		}
		buf.WriteString(fmt.Sprintf("%d. %s [%s]\n", entry.Position+1, line, entry.SlotCategory))
	}

	return buf.Bytes(), nil
}

// WriteExport renders the playlist and writes it to path. An empty path
// derives a filename from the playlist name and generation time, in the
// current directory. Returns the path written.
func WriteExport(export *RunExport, format Format, path string) (string, error) {
	data, err := Export(export, format)
	if err != nil {
		return "", err
	}

	if path == "" {
		base := strings.ReplaceAll(strings.ToLower(export.Playlist.Name()), " ", "_")
		if base == "" {
			base = export.Playlist.ID()
		}
		path = fmt.Sprintf("%s_%s.%s", base, export.Playlist.CreatedAt().Format("20060102_1504"), format.Ext())
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}
	return path, nil
}

func sortedCategories(realized map[string]int) []string {
	categories := make([]string, 0, len(realized))
	for category := range realized {
		categories = append(categories, category)
	}
	sort.Strings(categories)
	return categories
}

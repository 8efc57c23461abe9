package formatter

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/rotor/internal/models"
)

func testExport(t *testing.T) *RunExport {
	t.Helper()

	entries := []models.PlaylistEntry{
		{Position: 0, TrackID: "t-1", SlotCategory: "discovery", TrackCategory: "discovery"},
		{Position: 1, TrackID: "t-2", SlotCategory: "rotation", TrackCategory: "rotation"},
		{Position: 2, TrackID: "t-3", SlotCategory: "discovery", TrackCategory: "fresh"},
	}
	stats := models.RunStats{
		Realized:  map[string]int{"discovery": 2, "rotation": 1},
		Fallbacks: 1,
	}
	playlist := models.NewPersistedPlaylist(1, "morning drive", entries, stats)
	playlist.SetID("pl-1")

	tracks := []models.Track{
		{ID: "t-1", Artist: "Stereolab", Title: "Metronomic Underground", Category: "discovery"},
		{ID: "t-2", Artist: "Broadcast", Title: "Black Cat", Category: "rotation"},
		{ID: "t-3", Artist: "Can", Title: "Halleluhwah", Category: "fresh"},
	}

	return NewRunExport(playlist, tracks)
}

func TestParseFormat(t *testing.T) {
	cases := map[string]Format{
		"csv":      FormatCSV,
		"JSON":     FormatJSON,
		"md":       FormatMarkdown,
		"markdown": FormatMarkdown,
		"txt":      FormatText,
		"plain":    FormatText,
	}
	for input, want := range cases {
		got, err := ParseFormat(input)
		if err != nil {
			t.Errorf("ParseFormat(%q) failed: %v", input, err)
		}
		if got != want {
			t.Errorf("ParseFormat(%q) = %q, want %q", input, got, want)
		}
	}

	if _, err := ParseFormat("yaml"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestExportToCSV(t *testing.T) {
	data, err := ExportToCSV(testExport(t))
	if err != nil {
		t.Fatalf("CSV export failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header plus 3 rows, got %d lines", len(lines))
	}
	if lines[0] != "position,artist,title,slot_category,track_category,track_id" {
		t.Errorf("unexpected header: %s", lines[0])
	}
	if !strings.Contains(lines[1], "Stereolab") {
		t.Errorf("first row missing artist: %s", lines[1])
	}
	if !strings.Contains(lines[3], "fresh") {
		t.Errorf("substituted row missing track category: %s", lines[3])
	}
}

func TestExportToJSON(t *testing.T) {
	data, err := ExportToJSON(testExport(t))
	if err != nil {
		t.Fatalf("JSON export failed: %v", err)
	}

	var payload struct {
		ID        string          `json:"id"`
		Name      string          `json:"name"`
		SlotCount int             `json:"slot_count"`
		Stats     models.RunStats `json:"stats"`
		Entries   []struct {
			Position     int    `json:"position"`
			Artist       string `json:"artist"`
			SlotCategory string `json:"slot_category"`
		} `json:"entries"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		t.Fatalf("payload does not parse: %v", err)
	}

	if payload.ID != "pl-1" || payload.Name != "morning drive" {
		t.Errorf("unexpected identity: %s %s", payload.ID, payload.Name)
	}
	if payload.SlotCount != 3 || len(payload.Entries) != 3 {
		t.Errorf("expected 3 entries, got %d/%d", payload.SlotCount, len(payload.Entries))
	}
	if payload.Entries[0].Artist != "Stereolab" {
		t.Errorf("expected track attribution, got %q", payload.Entries[0].Artist)
	}
	if payload.Stats.Fallbacks != 1 {
		t.Errorf("expected stats in payload, got %+v", payload.Stats)
	}
}

func TestExportToMarkdown(t *testing.T) {
	data, err := ExportToMarkdown(testExport(t))
	if err != nil {
		t.Fatalf("Markdown export failed: %v", err)
	}
	text := string(data)

	if !strings.HasPrefix(text, "# morning drive") {
		t.Error("missing title heading")
	}
	if !strings.Contains(text, "| discovery | 2 |") {
		t.Error("missing distribution row")
	}
	if !strings.Contains(text, "1. Stereolab - Metronomic Underground [discovery]") {
		t.Error("missing first track line")
	}
	if !strings.Contains(text, "*(from fresh)*") {
		t.Error("missing substitution marker")
	}
	if !strings.Contains(text, "1 fallbacks") {
		t.Error("missing recovery summary")
	}
}

func TestExportToText(t *testing.T) {
	data, err := ExportToText(testExport(t))
	if err != nil {
		t.Fatalf("text export failed: %v", err)
	}
	text := string(data)

	if !strings.Contains(text, "Playlist: morning drive") {
		t.Error("missing playlist header")
	}
	if !strings.Contains(text, "3. Can - Halleluhwah [discovery]") {
		t.Error("missing third track line")
	}
}

func TestExportMissingTrack(t *testing.T) {
	export := testExport(t)
	delete(export.Tracks, "t-2")

	data, err := ExportToText(export)
	if err != nil {
		t.Fatalf("text export failed: %v", err)
	}
	if !strings.Contains(string(data), "2. t-2 [rotation]") {
		t.Error("expected bare track ID for missing catalog track")
	}
}

func TestWriteExport(t *testing.T) {
	dir := t.TempDir()

	t.Run("ExplicitPath", func(t *testing.T) {
		path := filepath.Join(dir, "run.csv")
		written, err := WriteExport(testExport(t), FormatCSV, path)
		if err != nil {
			t.Fatalf("write failed: %v", err)
		}
		if written != path {
			t.Errorf("expected %s, got %s", path, written)
		}
		if _, err := os.Stat(path); err != nil {
			t.Errorf("file not written: %v", err)
		}
	})

	t.Run("DerivedFilename", func(t *testing.T) {
		export := testExport(t)

		cwd, err := os.Getwd()
		if err != nil {
			t.Fatal(err)
		}
		if err := os.Chdir(dir); err != nil {
			t.Fatal(err)
		}
		defer os.Chdir(cwd)

		written, err := WriteExport(export, FormatMarkdown, "")
		if err != nil {
			t.Fatalf("write failed: %v", err)
		}
		stamp := export.Playlist.CreatedAt().Format("20060102_1504")
		want := "morning_drive_" + stamp + ".md"
		if written != want {
			t.Errorf("expected derived name %s, got %s", want, written)
		}
	})
}

func TestFormatExt(t *testing.T) {
	if FormatMarkdown.Ext() != "md" || FormatText.Ext() != "txt" || FormatCSV.Ext() != "csv" {
		t.Error("unexpected extension mapping")
	}
}

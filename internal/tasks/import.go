package tasks

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/rotor/internal/models"
	"github.com/desertthunder/rotor/internal/shared"
)

// TrackCreator is the write-side catalog boundary for imports.
// Implemented by repositories.TrackRepository.
type TrackCreator interface {
	Create(track *models.PersistedTrack) error
}

// ImportResult summarizes a catalog import.
type ImportResult struct {
	Imported int
	Skipped  int
	Errors   []string
}

// csvColumns is the expected header of a catalog CSV:
// artist, title, category, play_count, date_added, last_played, available.
var csvColumns = []string{"artist", "title", "category", "play_count", "date_added", "last_played", "available"}

// ImportCSV reads catalog tracks from CSV and inserts them through the store.
// Rows that fail to parse or insert are collected as errors and skipped; the
// import itself only fails on malformed CSV structure or a cancelled context.
func (e *Engine) ImportCSV(ctx context.Context, progress chan<- ProgressUpdate, r io.Reader, store TrackCreator) (*ImportResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = len(csvColumns)

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	for i, col := range csvColumns {
		if !strings.EqualFold(strings.TrimSpace(header[i]), col) {
			return nil, fmt.Errorf("%w: expected column %q, got %q", shared.ErrInvalidInput, col, header[i])
		}
	}

	result := &ImportResult{}
	line := 1

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row: %w", err)
		}
		line++

		track, err := parseTrackRecord(record)
		if err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: %v", line, err))
			continue
		}

		if err := store.Create(track); err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: %v", line, err))
			continue
		}

		result.Imported++
		if result.Imported%100 == 0 {
			e.sendProgress(progress, importUpdate(result.Imported, 0))
		}
	}

	e.sendProgress(progress, importUpdate(result.Imported, result.Imported))
	e.logger.Info("catalog import finished", "imported", result.Imported, "skipped", result.Skipped)

	return result, nil
}

// parseTrackRecord converts one CSV row into a catalog track.
func parseTrackRecord(record []string) (*models.PersistedTrack, error) {
	for i := range record {
		record[i] = strings.TrimSpace(record[i])
	}

	playCount := 0
	if record[3] != "" {
		n, err := strconv.Atoi(record[3])
		if err != nil {
			return nil, fmt.Errorf("invalid play count %q", record[3])
		}
		playCount = n
	}

	dateAdded, err := parseDate(record[4])
	if err != nil {
		return nil, fmt.Errorf("invalid date added %q", record[4])
	}

	var lastPlayed *time.Time
	if record[5] != "" {
		ts, err := parseDate(record[5])
		if err != nil {
			return nil, fmt.Errorf("invalid last played %q", record[5])
		}
		lastPlayed = &ts
	}

	available := true
	if record[6] != "" {
		v, err := strconv.ParseBool(record[6])
		if err != nil {
			return nil, fmt.Errorf("invalid available flag %q", record[6])
		}
		available = v
	}

	return models.NewPersistedTrack(0, models.Track{
		Artist:     record[0],
		Title:      record[1],
		Category:   record[2],
		PlayCount:  playCount,
		DateAdded:  dateAdded,
		LastPlayed: lastPlayed,
		Available:  available,
	}), nil
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

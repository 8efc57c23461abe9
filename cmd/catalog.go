package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
)

// CatalogImport loads tracks into the catalog from a CSV file.
func (r *Runner) CatalogImport(ctx context.Context, cmd *cli.Command) error {
	config := r.resolveConfig(cmd)

	db, err := r.openDB(config)
	if err != nil {
		return err
	}
	defer db.Close()

	engine, tracks, _ := r.newEngine(db, config)

	path := cmd.String("file")
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open import file: %w", err)
	}
	defer f.Close()

	result, err := engine.ImportCSV(ctx, nil, f, tracks)
	if err != nil {
		return err
	}

	r.writePlain("Imported %d tracks from %s\n", result.Imported, path)
	if result.Skipped > 0 {
		r.writePlain("Skipped %d rows:\n", result.Skipped)
		for _, msg := range result.Errors {
			r.writePlain("  %s\n", msg)
		}
	}
	return nil
}

// CatalogList prints catalog tracks, optionally filtered by category.
func (r *Runner) CatalogList(ctx context.Context, cmd *cli.Command) error {
	config := r.resolveConfig(cmd)

	db, err := r.openDB(config)
	if err != nil {
		return err
	}
	defer db.Close()

	_, tracks, _ := r.newEngine(db, config)

	criteria := map[string]any{}
	if category := cmd.String("category"); category != "" {
		criteria["category"] = category
	}

	all, err := tracks.List(criteria)
	if err != nil {
		return fmt.Errorf("failed to list tracks: %w", err)
	}

	if cmd.Bool("json") {
		snapshots := make([]any, 0, len(all))
		for _, track := range all {
			snapshots = append(snapshots, track.Snapshot())
		}
		return r.writeJSON(snapshots, true)
	}

	for _, track := range all {
		plays := fmt.Sprintf("%d plays", track.PlayCount())
		if track.LastPlayed() == nil {
			plays = "never played"
		}
		r.writePlain("%-10s %s - %s (%s)\n", track.Category(), track.Artist(), track.Title(), plays)
	}
	r.writePlain("%d tracks\n", len(all))
	return nil
}

package main

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/desertthunder/rotor/internal/models"
	"github.com/desertthunder/rotor/internal/rotation"
	"github.com/urfave/cli/v3"
)

// Generate runs a full generation: classify, assemble, persist, and
// optionally push the result to the sync proxy.
func (r *Runner) Generate(ctx context.Context, cmd *cli.Command) error {
	config := r.resolveConfig(cmd)

	db, err := r.openDB(config)
	if err != nil {
		return err
	}
	defer db.Close()

	engine, tracks, playlists := r.newEngine(db, config)

	report, err := engine.Run(ctx, nil, cmd.String("name"), cmd.Int("slots"))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		if err := r.writeJSON(report, true); err != nil {
			return err
		}
	} else {
		r.writePlain("Generated '%s': %d slots from %d catalog tracks\n",
			report.Name, report.SlotCount, report.CatalogSize)
		if report.AppliedChanges > 0 {
			r.writePlain("Applied %d category migrations\n", report.AppliedChanges)
		}
		r.printDistribution(report.Stats.Realized)
		if report.Stats.Resets > 0 || report.Stats.Fallbacks > 0 || report.Stats.ForcedSpacing > 0 {
			r.writePlain("Recovery: %d resets, %d fallbacks, %d forced spacing\n",
				report.Stats.Resets, report.Stats.Fallbacks, report.Stats.ForcedSpacing)
		}
	}

	if cmd.Bool("push") {
		playlist, err := playlists.Get(report.PlaylistID)
		if err != nil {
			return fmt.Errorf("failed to reload playlist for push: %w", err)
		}
		snapshot, err := tracks.Snapshot()
		if err != nil {
			return fmt.Errorf("failed to load catalog for push: %w", err)
		}
		if err := r.push(ctx, config, playlist, snapshot); err != nil {
			return err
		}
	}

	return nil
}

// Classify proposes lifecycle migrations for the catalog, applying them only
// when --apply is set.
func (r *Runner) Classify(ctx context.Context, cmd *cli.Command) error {
	config := r.resolveConfig(cmd)

	db, err := r.openDB(config)
	if err != nil {
		return err
	}
	defer db.Close()

	_, tracks, _ := r.newEngine(db, config)

	rcfg, err := rotation.FromShared(config.Rotation)
	if err != nil {
		return err
	}

	snapshot, err := tracks.Snapshot()
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}

	classifier := rotation.NewClassifier(rcfg, config.Rotation.RecentPlayFloor, config.Rotation.MaxDiscoveryAge)
	proposed := classifier.Plan(snapshot, time.Now())

	if cmd.Bool("json") {
		if err := r.writeJSON(proposed, true); err != nil {
			return err
		}
	} else if len(proposed) == 0 {
		r.writePlain("No migrations proposed\n")
	} else {
		index := trackIndex(snapshot)
		for _, m := range proposed {
			label := m.TrackID
			if track, ok := index[m.TrackID]; ok {
				label = fmt.Sprintf("%s - %s", track.Artist, track.Title)
			}
			r.writePlain("%s: %s -> %s\n", label, m.From, m.To)
		}
	}

	if !cmd.Bool("apply") {
		if len(proposed) > 0 {
			r.writePlainln("Dry run, pass --apply to persist %d migrations", len(proposed))
		}
		return nil
	}

	changes := make([]models.CategoryChange, 0, len(proposed))
	for _, m := range proposed {
		changes = append(changes, models.CategoryChange{
			TrackID: m.TrackID,
			From:    string(m.From),
			To:      string(m.To),
		})
	}

	applied, err := tracks.ApplyMigrations(changes)
	if err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	r.writePlain("Applied %d of %d migrations\n", applied, len(proposed))
	return nil
}

func (r *Runner) printDistribution(realized map[rotation.Category]int) {
	categories := make([]string, 0, len(realized))
	for category := range realized {
		categories = append(categories, string(category))
	}
	sort.Strings(categories)
	for _, category := range categories {
		r.writePlain("  %-12s %d\n", category, realized[rotation.Category(category)])
	}
}

func trackIndex(snapshot []models.Track) map[string]models.Track {
	index := make(map[string]models.Track, len(snapshot))
	for _, track := range snapshot {
		index[track.ID] = track
	}
	return index
}

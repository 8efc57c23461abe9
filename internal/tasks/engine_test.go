package tasks

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/desertthunder/rotor/internal/models"
	"github.com/desertthunder/rotor/internal/repositories"
	"github.com/desertthunder/rotor/internal/shared"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

func seedCatalog(t *testing.T, repo *repositories.TrackRepository) {
	t.Helper()

	now := time.Now()
	id := 0
	for _, category := range []string{"discovery", "fresh", "rotation", "deep", "archive"} {
		for i := 0; i < 10; i++ {
			track := models.NewPersistedTrack(0, models.Track{
				Artist:    fmt.Sprintf("%s artist %d", category, i),
				Title:     fmt.Sprintf("song %d", id),
				Category:  category,
				PlayCount: 5 + i,
				DateAdded: now.AddDate(0, -1, -i),
				Available: true,
			})
			if err := repo.Create(track); err != nil {
				t.Fatalf("failed to seed track: %v", err)
			}
			id++
		}
	}
}

func testEngine(t *testing.T, db *sql.DB) (*Engine, *repositories.TrackRepository, *repositories.PlaylistRepository) {
	t.Helper()

	tracks := repositories.NewTrackRepository(db)
	playlists := repositories.NewPlaylistRepository(db)
	logger := shared.NewLogger(io.Discard)
	engine := NewEngine(tracks, playlists, shared.DefaultConfig(), logger)
	return engine, tracks, playlists
}

func TestEngineRun(t *testing.T) {
	t.Run("FullRun", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		engine, _, playlists := testEngine(t, db)
		seedCatalog(t, repositories.NewTrackRepository(db))

		report, err := engine.Run(context.Background(), nil, "evening", 20)
		if err != nil {
			t.Fatalf("run failed: %v", err)
		}

		if report.SlotCount != 20 {
			t.Errorf("expected 20 slots, got %d", report.SlotCount)
		}
		if report.CatalogSize != 50 {
			t.Errorf("expected catalog size 50, got %d", report.CatalogSize)
		}

		total := 0
		for _, n := range report.Stats.Realized {
			total += n
		}
		if total != 20 {
			t.Errorf("realized counts sum to %d, want 20", total)
		}

		persisted, err := playlists.GetLatestByName("evening")
		if err != nil {
			t.Fatalf("persisted playlist not found: %v", err)
		}
		if persisted.SlotCount() != 20 {
			t.Errorf("persisted slot count %d, want 20", persisted.SlotCount())
		}
		for i, entry := range persisted.Entries() {
			if entry.Position != i {
				t.Errorf("entry %d has position %d", i, entry.Position)
			}
		}
	})

	t.Run("AppliesClassifierMigrations", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		engine, tracks, _ := testEngine(t, db)
		seedCatalog(t, tracks)

		// An underplayed fresh track returns to discovery before the run.
		underplayed := models.NewPersistedTrack(0, models.Track{
			Artist:    "late bloomer",
			Title:     "slow burn",
			Category:  "fresh",
			PlayCount: 0,
			DateAdded: time.Now().AddDate(0, -2, 0),
			Available: true,
		})
		if err := tracks.Create(underplayed); err != nil {
			t.Fatalf("failed to create track: %v", err)
		}

		report, err := engine.Run(context.Background(), nil, "rotation", 15)
		if err != nil {
			t.Fatalf("run failed: %v", err)
		}

		if report.ProposedChanges == 0 || report.AppliedChanges == 0 {
			t.Errorf("expected classifier migrations, got proposed=%d applied=%d",
				report.ProposedChanges, report.AppliedChanges)
		}

		migrated, err := tracks.Get(underplayed.ID())
		if err != nil {
			t.Fatalf("failed to reload track: %v", err)
		}
		if migrated.Category() != "discovery" {
			t.Errorf("expected migration to discovery, got %q", migrated.Category())
		}
	})

	t.Run("EmitsProgress", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		engine, tracks, _ := testEngine(t, db)
		seedCatalog(t, tracks)

		progress := make(chan ProgressUpdate, 64)
		if _, err := engine.Run(context.Background(), progress, "rotation", 10); err != nil {
			t.Fatalf("run failed: %v", err)
		}
		close(progress)

		phases := make(map[Phase]bool)
		for update := range progress {
			phases[update.Phase] = true
		}
		for _, phase := range []Phase{Classify, ApplyChanges, Snapshot, Assemble, Persist} {
			if !phases[phase] {
				t.Errorf("expected a %s update", phase)
			}
		}
	})

	t.Run("EmptyCatalog", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		engine, _, _ := testEngine(t, db)

		if _, err := engine.Run(context.Background(), nil, "rotation", 10); err == nil {
			t.Fatal("expected precondition error for empty catalog")
		}
	})

	t.Run("CancelledContext", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		engine, tracks, _ := testEngine(t, db)
		seedCatalog(t, tracks)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		if _, err := engine.Run(ctx, nil, "rotation", 10); err == nil {
			t.Fatal("expected error from cancelled context")
		}
	})

	t.Run("DerivesSlotCountFromConfig", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		cfg := shared.DefaultConfig()
		cfg.Rotation.TargetMinutes = 40
		cfg.Rotation.AvgTrackMinutes = 4.0

		tracks := repositories.NewTrackRepository(db)
		playlists := repositories.NewPlaylistRepository(db)
		engine := NewEngine(tracks, playlists, cfg, shared.NewLogger(io.Discard))
		seedCatalog(t, tracks)

		report, err := engine.Run(context.Background(), nil, "short", 0)
		if err != nil {
			t.Fatalf("run failed: %v", err)
		}
		if report.SlotCount != 10 {
			t.Errorf("expected 10 derived slots, got %d", report.SlotCount)
		}
	})
}

package rotation

import (
	"testing"
	"time"

	"github.com/desertthunder/rotor/internal/models"
)

func classifierUnderTest(t *testing.T) Classifier {
	t.Helper()
	cfg := mustConfig(t, testSpecs())
	return NewClassifier(cfg, 3, 6)
}

func TestClassify(t *testing.T) {
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	c := classifierUnderTest(t)

	cases := []struct {
		name     string
		track    models.Track
		wantTo   Category
		wantMove bool
	}{
		{
			name:     "FreshUnderplayedReturnsToDiscovery",
			track:    models.Track{ID: "t1", Category: "fresh", PlayCount: 2, DateAdded: now.AddDate(0, -1, 0)},
			wantTo:   "discovery",
			wantMove: true,
		},
		{
			name:     "FreshAtFloorStays",
			track:    models.Track{ID: "t2", Category: "fresh", PlayCount: 3, DateAdded: now.AddDate(0, -1, 0)},
			wantMove: false,
		},
		{
			name:     "StaleDiscoveryMovesToBulk",
			track:    models.Track{ID: "t3", Category: "discovery", PlayCount: 10, DateAdded: now.AddDate(0, -7, 0)},
			wantTo:   "rotation",
			wantMove: true,
		},
		{
			name:     "YoungDiscoveryStays",
			track:    models.Track{ID: "t4", Category: "discovery", PlayCount: 0, DateAdded: now.AddDate(0, -5, 0)},
			wantMove: false,
		},
		{
			name:     "OtherTiersNeverMigrate",
			track:    models.Track{ID: "t5", Category: "archive", PlayCount: 0, DateAdded: now.AddDate(-10, 0, 0)},
			wantMove: false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			to, moved := c.Classify(tc.track, now)
			if moved != tc.wantMove {
				t.Fatalf("Classify moved=%v, want %v", moved, tc.wantMove)
			}
			if moved && to != tc.wantTo {
				t.Errorf("Classify migrated to %q, want %q", to, tc.wantTo)
			}
		})
	}
}

func TestClassifierPriority(t *testing.T) {
	// An underplayed fresh track returns to discovery even when it is old
	// enough that the age rule would apply after the move.
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	c := classifierUnderTest(t)

	track := models.Track{ID: "t1", Category: "fresh", PlayCount: 0, DateAdded: now.AddDate(-1, 0, 0)}
	to, moved := c.Classify(track, now)
	if !moved || to != "discovery" {
		t.Errorf("expected migration to discovery, got (%q, %v)", to, moved)
	}
}

func TestPlan(t *testing.T) {
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	c := classifierUnderTest(t)

	tracks := []models.Track{
		{ID: "a", Category: "fresh", PlayCount: 1, DateAdded: now.AddDate(0, -2, 0)},
		{ID: "b", Category: "rotation", PlayCount: 50, DateAdded: now.AddDate(-3, 0, 0)},
		{ID: "c", Category: "discovery", PlayCount: 4, DateAdded: now.AddDate(0, -8, 0)},
	}

	migrations := c.Plan(tracks, now)
	if len(migrations) != 2 {
		t.Fatalf("expected 2 migrations, got %d", len(migrations))
	}

	if migrations[0].TrackID != "a" || migrations[0].To != "discovery" {
		t.Errorf("unexpected first migration: %+v", migrations[0])
	}
	if migrations[1].TrackID != "c" || migrations[1].To != "rotation" {
		t.Errorf("unexpected second migration: %+v", migrations[1])
	}
}

func TestInertClassifier(t *testing.T) {
	cfg := mustConfig(t, []CategorySpec{
		{Name: "a", Percent: 60, Spacing: 1},
		{Name: "b", Percent: 40, Spacing: 1},
	})

	c := NewClassifier(cfg, 3, 6)
	now := time.Now()

	if _, moved := c.Classify(models.Track{Category: "a", DateAdded: now.AddDate(-2, 0, 0)}, now); moved {
		t.Error("classifier with two tiers should propose nothing")
	}
	if got := c.Plan([]models.Track{{Category: "b"}}, now); got != nil {
		t.Errorf("expected nil plan, got %v", got)
	}
}

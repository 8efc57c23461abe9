package rotation

import (
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/desertthunder/rotor/internal/models"
	"github.com/desertthunder/rotor/internal/shared"
)

var testEpoch = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

// catalogTrack builds a snapshot track with a distinct artist unless one is given.
func catalogTrack(id int, category, artist string) models.Track {
	if artist == "" {
		artist = fmt.Sprintf("artist-%d", id)
	}
	return models.Track{
		ID:        fmt.Sprintf("track-%d", id),
		Artist:    artist,
		ArtistKey: models.NormalizeArtist(artist),
		Title:     fmt.Sprintf("title-%d", id),
		Category:  category,
		PlayCount: id % 7,
		DateAdded: testEpoch.AddDate(0, 0, -id),
		Available: true,
	}
}

// buildCatalog creates count tracks per category, each with its own artist.
func buildCatalog(countPerCategory int, categories ...string) []models.Track {
	var tracks []models.Track
	id := 0
	for _, cat := range categories {
		for i := 0; i < countPerCategory; i++ {
			tracks = append(tracks, catalogTrack(id, cat, ""))
			id++
		}
	}
	return tracks
}

func quietAssembler(t *testing.T, specs []CategorySpec) *Assembler {
	t.Helper()
	logger := shared.NewLogger(io.Discard)
	return NewAssembler(mustConfig(t, specs), logger)
}

func TestGeneratePreconditions(t *testing.T) {
	a := quietAssembler(t, testSpecs())

	t.Run("EmptyCatalog", func(t *testing.T) {
		if _, err := a.Generate(nil, 10); !errors.Is(err, shared.ErrEmptyCatalog) {
			t.Errorf("expected ErrEmptyCatalog, got %v", err)
		}
	})

	t.Run("ZeroSlots", func(t *testing.T) {
		catalog := buildCatalog(5, "discovery")
		if _, err := a.Generate(catalog, 0); !errors.Is(err, shared.ErrNoSlots) {
			t.Errorf("expected ErrNoSlots, got %v", err)
		}
	})
}

func TestGenerateProperties(t *testing.T) {
	specs := []CategorySpec{
		{Name: "a", Percent: 60, Spacing: 2},
		{Name: "b", Percent: 30, Spacing: 1},
		{Name: "c", Percent: 10, Spacing: 1},
	}
	a := quietAssembler(t, specs)
	catalog := buildCatalog(40, "a", "b", "c")

	result, err := a.Generate(catalog, 10)
	if err != nil {
		t.Fatalf("generation failed: %v", err)
	}

	t.Run("ContiguousPositions", func(t *testing.T) {
		if len(result.Slots) != 10 {
			t.Fatalf("expected 10 slots, got %d", len(result.Slots))
		}
		for i, slot := range result.Slots {
			if slot.Position != i {
				t.Errorf("slot %d has position %d", i, slot.Position)
			}
		}
	})

	t.Run("RealizedCountsMatchQuotas", func(t *testing.T) {
		if result.Stats.Realized["a"] != 6 || result.Stats.Realized["b"] != 3 || result.Stats.Realized["c"] != 1 {
			t.Errorf("expected {a:6 b:3 c:1}, got %v", result.Stats.Realized)
		}

		counted := make(map[Category]int)
		for _, slot := range result.Slots {
			counted[slot.Category]++
		}
		for cat, n := range result.Stats.Realized {
			if counted[cat] != n {
				t.Errorf("category %q realized %d but %d slots carry it", cat, n, counted[cat])
			}
		}
	})

	t.Run("NoDuplicateTracks", func(t *testing.T) {
		seen := make(map[string]int)
		for _, slot := range result.Slots {
			if prev, dup := seen[slot.TrackID]; dup {
				t.Errorf("track %s at positions %d and %d", slot.TrackID, prev, slot.Position)
			}
			seen[slot.TrackID] = slot.Position
		}
	})

	t.Run("NoRecoveryNeeded", func(t *testing.T) {
		if result.Stats.Resets != 0 || result.Stats.Fallbacks != 0 || result.Stats.ForcedSpacing != 0 {
			t.Errorf("ample catalog should not trigger recovery: %+v", result.Stats)
		}
	})
}

func TestGenerateArtistSpacing(t *testing.T) {
	specs := []CategorySpec{
		{Name: "a", Percent: 70, Spacing: 3},
		{Name: "b", Percent: 30, Spacing: 2},
	}
	a := quietAssembler(t, specs)

	// Four artists per category owning several tracks each, so spacing has to
	// do real work but never needs to be forced.
	var catalog []models.Track
	for i := 0; i < 24; i++ {
		catalog = append(catalog, catalogTrack(i, "a", fmt.Sprintf("alpha-%d", i%4)))
	}
	for i := 24; i < 48; i++ {
		catalog = append(catalog, catalogTrack(i, "b", fmt.Sprintf("beta-%d", i%4)))
	}

	result, err := a.Generate(catalog, 20)
	if err != nil {
		t.Fatalf("generation failed: %v", err)
	}

	if result.Stats.ForcedSpacing != 0 {
		t.Fatalf("expected no forced violations, got %d", result.Stats.ForcedSpacing)
	}

	byID := make(map[string]models.Track)
	for _, track := range catalog {
		byID[track.ID] = track
	}
	cfg := mustConfig(t, specs)

	lastByArtist := make(map[string]int)
	for _, slot := range result.Slots {
		key := byID[slot.TrackID].ArtistKey
		if prev, seen := lastByArtist[key]; seen {
			spacing := cfg.Spacing(slot.Category)
			if slot.Position-prev < spacing {
				t.Errorf("artist %q at %d and %d violates spacing %d for %q",
					key, prev, slot.Position, spacing, slot.Category)
			}
		}
		lastByArtist[key] = slot.Position
	}
}

func TestGenerateResetRecovery(t *testing.T) {
	// Two distinct tracks planned for six slots at spacing zero: the reset path
	// re-admits them and the run still fills every slot.
	specs := []CategorySpec{
		{Name: "a", Percent: 60, Spacing: 0},
		{Name: "b", Percent: 40, Spacing: 1},
	}
	a := quietAssembler(t, specs)

	catalog := []models.Track{
		catalogTrack(0, "a", ""),
		catalogTrack(1, "a", ""),
	}
	catalog = append(catalog, buildCatalog(10, "b")...)
	// Renumber the b tracks after the two a tracks.
	for i := 2; i < len(catalog); i++ {
		catalog[i].ID = fmt.Sprintf("track-b-%d", i)
	}

	result, err := a.Generate(catalog, 10)
	if err != nil {
		t.Fatalf("generation failed: %v", err)
	}

	if got := result.Stats.Realized["a"]; got != 6 {
		t.Errorf("expected 6 a-slots, got %d", got)
	}
	if result.Stats.Resets == 0 {
		t.Error("expected a nonzero reset count")
	}

	aTracks := make(map[string]bool)
	for _, slot := range result.Slots {
		if slot.Category == "a" {
			aTracks[slot.TrackID] = true
		}
	}
	if len(aTracks) != 2 {
		t.Errorf("expected the 2 a-tracks to repeat, saw %d distinct", len(aTracks))
	}
}

func TestGenerateForcedSpacing(t *testing.T) {
	// One artist owns every track in the majority category and no fallback is
	// configured; spacing cannot hold, but the run must still complete.
	specs := []CategorySpec{
		{Name: "a", Percent: 60, Spacing: 9},
		{Name: "b", Percent: 40, Spacing: 1},
	}
	a := quietAssembler(t, specs)

	var catalog []models.Track
	for i := 0; i < 12; i++ {
		catalog = append(catalog, catalogTrack(i, "a", "the one artist"))
	}
	for i := 12; i < 24; i++ {
		catalog = append(catalog, catalogTrack(i, "b", ""))
	}

	result, err := a.Generate(catalog, 10)
	if err != nil {
		t.Fatalf("generation failed: %v", err)
	}

	if len(result.Slots) != 10 {
		t.Fatalf("expected 10 slots, got %d", len(result.Slots))
	}
	if result.Stats.ForcedSpacing == 0 {
		t.Error("expected at least one forced spacing violation")
	}
	for _, slot := range result.Slots {
		if slot.Category == "a" && slot.TrackCategory != "a" {
			t.Errorf("forced recovery changed category membership at %d", slot.Position)
		}
	}
}

func TestGenerateFallbackSubstitution(t *testing.T) {
	// Category a has no tracks at all; its slots are filled from the fallback
	// pool while the slot category stays what the schedule demanded.
	specs := []CategorySpec{
		{Name: "a", Percent: 50, Spacing: 1, Fallback: "b"},
		{Name: "b", Percent: 50, Spacing: 1},
	}
	a := quietAssembler(t, specs)
	catalog := buildCatalog(20, "b")

	result, err := a.Generate(catalog, 10)
	if err != nil {
		t.Fatalf("generation failed: %v", err)
	}

	if result.Stats.Fallbacks == 0 {
		t.Error("expected fallback substitutions")
	}
	if got := result.Stats.Realized["a"]; got != 5 {
		t.Errorf("expected 5 a-slots realized, got %d", got)
	}
	for _, slot := range result.Slots {
		if slot.Category == "a" && slot.TrackCategory != "b" {
			t.Errorf("a-slot at %d filled from %q, expected fallback pool", slot.Position, slot.TrackCategory)
		}
	}
}

func TestGenerateFallbackSpacing(t *testing.T) {
	// A substituted slot keeps the schedule's category, so the substitution
	// must honor that category's spacing even when the fallback's own spacing
	// is looser.
	specs := []CategorySpec{
		{Name: "a", Percent: 50, Spacing: 5, Fallback: "b"},
		{Name: "b", Percent: 50, Spacing: 1},
	}

	t.Run("HeldAcrossSubstitution", func(t *testing.T) {
		a := quietAssembler(t, specs)

		// No a-tracks; six artists share the fallback pool, enough that every
		// substituted slot can keep five positions from an artist's last use.
		var catalog []models.Track
		for i := 0; i < 24; i++ {
			catalog = append(catalog, catalogTrack(i, "b", fmt.Sprintf("artist-%d", i%6)))
		}

		result, err := a.Generate(catalog, 10)
		if err != nil {
			t.Fatalf("generation failed: %v", err)
		}
		if result.Stats.Fallbacks == 0 {
			t.Fatal("expected fallback substitutions")
		}
		if result.Stats.ForcedSpacing != 0 {
			t.Fatalf("expected spacing to hold, got %d forced violations", result.Stats.ForcedSpacing)
		}

		keys := make(map[string]string, len(catalog))
		for _, track := range catalog {
			keys[track.ID] = track.ArtistKey
		}
		artistAt := make(map[int]string, len(result.Slots))
		for _, slot := range result.Slots {
			artistAt[slot.Position] = keys[slot.TrackID]
		}
		spacing := map[Category]int{"a": 5, "b": 1}
		for _, slot := range result.Slots {
			for back := 1; back < spacing[slot.Category]; back++ {
				prev := slot.Position - back
				if prev >= 0 && artistAt[prev] == artistAt[slot.Position] {
					t.Errorf("artist %q repeated %d slots before position %d",
						artistAt[slot.Position], back, slot.Position)
				}
			}
		}
	})

	t.Run("ImpossibleSpacingIsRecorded", func(t *testing.T) {
		a := quietAssembler(t, specs)

		// One artist owns the whole fallback pool; the spacing cannot hold and
		// every shortfall must show up in the forced counter.
		var catalog []models.Track
		for i := 0; i < 20; i++ {
			catalog = append(catalog, catalogTrack(i, "b", "the one artist"))
		}

		result, err := a.Generate(catalog, 10)
		if err != nil {
			t.Fatalf("generation failed: %v", err)
		}
		if len(result.Slots) != 10 {
			t.Fatalf("expected 10 slots, got %d", len(result.Slots))
		}
		if result.Stats.ForcedSpacing == 0 {
			t.Error("expected forced spacing violations to be recorded")
		}
	})
}

func TestGenerateDeterministic(t *testing.T) {
	a := quietAssembler(t, testSpecs())
	catalog := buildCatalog(30, "discovery", "fresh", "rotation", "deep", "archive")

	first, err := a.Generate(catalog, 60)
	if err != nil {
		t.Fatalf("generation failed: %v", err)
	}

	again, err := a.Generate(catalog, 60)
	if err != nil {
		t.Fatalf("second generation failed: %v", err)
	}

	for i := range first.Slots {
		if first.Slots[i] != again.Slots[i] {
			t.Fatalf("runs diverge at position %d: %+v vs %+v", i, first.Slots[i], again.Slots[i])
		}
	}
}

func TestResetCategoryCounting(t *testing.T) {
	cfg := mustConfig(t, []CategorySpec{{Name: "a", Percent: 100, Spacing: 2}})
	rs := newRunState(buildCatalog(3, "a"), cfg)

	rs.resetCategory("a")
	if rs.stats.Resets != 0 {
		t.Errorf("clearing an already clear pool should not count, got %d", rs.stats.Resets)
	}

	rs.used[0] = true
	rs.resetCategory("a")
	if rs.used[0] {
		t.Error("expected usage mark cleared")
	}
	if rs.stats.Resets != 1 {
		t.Errorf("expected one counted reset, got %d", rs.stats.Resets)
	}

	rs.resetCategory("missing")
	if rs.stats.Resets != 1 {
		t.Errorf("resetting an empty pool should not count, got %d", rs.stats.Resets)
	}
}

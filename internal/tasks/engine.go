package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/rotor/internal/models"
	"github.com/desertthunder/rotor/internal/rotation"
	"github.com/desertthunder/rotor/internal/shared"
)

// CatalogStore is the catalog boundary the engine reads from and proposes
// mutations to. Implemented by repositories.TrackRepository.
type CatalogStore interface {
	// Snapshot loads every live track as engine-facing values in catalog order.
	Snapshot() ([]models.Track, error)

	// ApplyMigrations applies classifier category proposals and returns the
	// number actually applied.
	ApplyMigrations(changes []models.CategoryChange) (int, error)
}

// PlaylistStore persists completed runs. Implemented by repositories.PlaylistRepository.
type PlaylistStore interface {
	Create(playlist *models.PersistedPlaylist) error
}

// RunReport contains everything a completed generation run produced.
type RunReport struct {
	PlaylistID      string                 // Persisted playlist identity
	Name            string                 // Playlist name
	SlotCount       int                    // Slots filled
	CatalogSize     int                    // Tracks in the generation snapshot
	ProposedChanges int                    // Classifier migrations proposed
	AppliedChanges  int                    // Classifier migrations applied
	Slots           []rotation.Slot        // The ordered sequence
	Stats           rotation.Stats         // Recovery statistics
	Entries         []models.PlaylistEntry // Persistence-shaped slots
	Elapsed         time.Duration          // Wall-clock run time
}

// Engine orchestrates generation runs against the catalog and playlist stores.
//
// Each Run builds its own rotation state from a fresh snapshot, so a single
// Engine may serve concurrent runs for different playlist names.
type Engine struct {
	catalog   CatalogStore
	playlists PlaylistStore
	cfg       *shared.Config
	logger    *log.Logger
}

// NewEngine creates an Engine with the provided stores and configuration.
func NewEngine(catalog CatalogStore, playlists PlaylistStore, cfg *shared.Config, logger *log.Logger) *Engine {
	if cfg == nil {
		cfg = shared.DefaultConfig()
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Engine{catalog: catalog, playlists: playlists, cfg: cfg, logger: logger}
}

// Run performs a full generation: classify, apply migrations, snapshot,
// assemble, persist. A slot count of zero derives the count from the
// configured target run length. Progress is reported on the optional channel;
// the channel is never blocked on.
func (e *Engine) Run(ctx context.Context, progress chan<- ProgressUpdate, name string, slotCount int) (*RunReport, error) {
	started := time.Now()

	if name == "" {
		name = e.cfg.Rotation.PlaylistName
	}
	if name == "" {
		return nil, fmt.Errorf("%w: playlist name", shared.ErrMissingArgument)
	}

	rcfg, err := rotation.FromShared(e.cfg.Rotation)
	if err != nil {
		return nil, err
	}

	if slotCount <= 0 {
		slotCount = rotation.SlotCount(e.cfg.Rotation.TargetMinutes, e.cfg.Rotation.AvgTrackMinutes)
	}
	if slotCount <= 0 {
		return nil, shared.ErrNoSlots
	}

	// Classification runs over its own snapshot; the generation snapshot is
	// re-read after migrations land so the run observes them.
	preRun, err := e.catalog.Snapshot()
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	e.sendProgress(progress, classifyUpdate(len(preRun)))

	classifier := rotation.NewClassifier(rcfg, e.cfg.Rotation.RecentPlayFloor, e.cfg.Rotation.MaxDiscoveryAge)
	proposed := classifier.Plan(preRun, time.Now())

	applied := 0
	if len(proposed) > 0 {
		changes := make([]models.CategoryChange, 0, len(proposed))
		for _, m := range proposed {
			changes = append(changes, models.CategoryChange{
				TrackID: m.TrackID,
				From:    string(m.From),
				To:      string(m.To),
			})
		}
		if applied, err = e.catalog.ApplyMigrations(changes); err != nil {
			return nil, fmt.Errorf("failed to apply category migrations: %w", err)
		}
	}
	e.sendProgress(progress, applyChangesUpdate(applied, len(proposed)))

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	snapshot, err := e.catalog.Snapshot()
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot catalog: %w", err)
	}
	e.sendProgress(progress, snapshotUpdate(len(snapshot)))

	e.sendProgress(progress, assembleUpdate(slotCount))
	assembler := rotation.NewAssembler(rcfg, shared.WithLogger(e.logger, "playlist", name))
	result, err := assembler.Generate(snapshot, slotCount)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries := make([]models.PlaylistEntry, 0, len(result.Slots))
	for _, slot := range result.Slots {
		entries = append(entries, models.PlaylistEntry{
			Position:      slot.Position,
			TrackID:       slot.TrackID,
			SlotCategory:  string(slot.Category),
			TrackCategory: string(slot.TrackCategory),
		})
	}

	e.sendProgress(progress, persistUpdate(name))
	playlist := models.NewPersistedPlaylist(0, name, entries, runStats(result.Stats))
	if err := e.playlists.Create(playlist); err != nil {
		return nil, fmt.Errorf("failed to persist playlist: %w", err)
	}

	report := &RunReport{
		PlaylistID:      playlist.ID(),
		Name:            name,
		SlotCount:       len(result.Slots),
		CatalogSize:     len(snapshot),
		ProposedChanges: len(proposed),
		AppliedChanges:  applied,
		Slots:           result.Slots,
		Stats:           result.Stats,
		Entries:         entries,
		Elapsed:         time.Since(started),
	}

	e.logger.Info("generation run complete",
		"playlist", name,
		"slots", report.SlotCount,
		"catalog", report.CatalogSize,
		"migrations", applied,
		"elapsed", report.Elapsed,
	)

	return report, nil
}

// runStats converts engine statistics into the persistence shape.
func runStats(stats rotation.Stats) models.RunStats {
	realized := make(map[string]int, len(stats.Realized))
	for cat, n := range stats.Realized {
		realized[string(cat)] = n
	}
	return models.RunStats{
		Realized:      realized,
		Resets:        stats.Resets,
		Fallbacks:     stats.Fallbacks,
		ForcedSpacing: stats.ForcedSpacing,
		SpacingSkips:  stats.SpacingSkips,
	}
}

// sendProgress delivers an update without blocking; a nil or full channel
// drops the update.
func (e *Engine) sendProgress(ch chan<- ProgressUpdate, update ProgressUpdate) {
	if ch == nil {
		return
	}
	select {
	case ch <- update:
	default:
	}
}

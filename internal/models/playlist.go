package models

import (
	"fmt"
	"time"
)

// PlaylistEntry is one ordered slot of a generated playlist. SlotCategory is the
// category the schedule required at that position; TrackCategory is the lifecycle
// label of the track that filled it. The two differ only when exhaustion recovery
// substituted a fallback pool.
type PlaylistEntry struct {
	Position      int    `json:"position"`
	TrackID       string `json:"track_id"`
	SlotCategory  string `json:"slot_category"`
	TrackCategory string `json:"track_category"`
}

// RunStats summarizes recovery activity during one generation run.
type RunStats struct {
	Realized      map[string]int `json:"realized"` // slots per category actually assigned
	Resets        int            `json:"resets"`
	Fallbacks     int            `json:"fallbacks"`
	ForcedSpacing int            `json:"forced_spacing"`
	SpacingSkips  int            `json:"spacing_skips"` // candidates excluded only by artist spacing
}

// PersistedPlaylist is a database-backed generated playlist implementing [Model].
// Entries are stored alongside the playlist row and loaded with it.
type PersistedPlaylist struct {
	id        string
	sequence  int
	name      string
	slotCount int
	stats     RunStats
	entries   []PlaylistEntry
	createdAt time.Time
	updatedAt time.Time
	deletedAt *time.Time
}

// NewPersistedPlaylist creates a playlist record for a completed run.
func NewPersistedPlaylist(sequence int, name string, entries []PlaylistEntry, stats RunStats) *PersistedPlaylist {
	now := time.Now()
	return &PersistedPlaylist{
		sequence:  sequence,
		name:      name,
		slotCount: len(entries),
		stats:     stats,
		entries:   entries,
		createdAt: now,
		updatedAt: now,
	}
}

func (p *PersistedPlaylist) ID() string               { return p.id }
func (p *PersistedPlaylist) Sequence() int            { return p.sequence }
func (p *PersistedPlaylist) Name() string             { return p.name }
func (p *PersistedPlaylist) SlotCount() int           { return p.slotCount }
func (p *PersistedPlaylist) Stats() RunStats          { return p.stats }
func (p *PersistedPlaylist) Entries() []PlaylistEntry { return p.entries }
func (p *PersistedPlaylist) CreatedAt() time.Time     { return p.createdAt }
func (p *PersistedPlaylist) UpdatedAt() time.Time     { return p.updatedAt }
func (p *PersistedPlaylist) DeletedAt() *time.Time    { return p.deletedAt }

func (p *PersistedPlaylist) SetID(id string)            { p.id = id }
func (p *PersistedPlaylist) SetSequence(sequence int)   { p.sequence = sequence }
func (p *PersistedPlaylist) SetCreatedAt(ts time.Time)  { p.createdAt = ts }
func (p *PersistedPlaylist) SetUpdatedAt(ts time.Time)  { p.updatedAt = ts }
func (p *PersistedPlaylist) SetDeletedAt(ts *time.Time) { p.deletedAt = ts }
func (p *PersistedPlaylist) SetStats(stats RunStats)    { p.stats = stats }
func (p *PersistedPlaylist) SetSlotCount(n int)         { p.slotCount = n }

// SetEntries attaches the ordered slots, keeping the slot count in step. The
// per-category distribution is not stored as its own column, so a playlist
// loaded without one gets it rebuilt from the slot categories here.
func (p *PersistedPlaylist) SetEntries(e []PlaylistEntry) {
	p.entries = e
	p.slotCount = len(e)
	if p.stats.Realized == nil && len(e) > 0 {
		realized := make(map[string]int, len(e))
		for _, entry := range e {
			realized[entry.SlotCategory]++
		}
		p.stats.Realized = realized
	}
}

// Validate checks playlist integrity: a name, a positive slot count, and
// contiguous 0-based entry positions when entries are attached.
func (p *PersistedPlaylist) Validate() error {
	if p.name == "" {
		return fmt.Errorf("playlist name is required")
	}
	if p.slotCount <= 0 {
		return fmt.Errorf("playlist slot count must be positive")
	}
	if len(p.entries) > 0 {
		if len(p.entries) != p.slotCount {
			return fmt.Errorf("entry count %d does not match slot count %d", len(p.entries), p.slotCount)
		}
		for i, entry := range p.entries {
			if entry.Position != i {
				return fmt.Errorf("entry at index %d has position %d", i, entry.Position)
			}
			if entry.TrackID == "" {
				return fmt.Errorf("entry at position %d has no track", i)
			}
		}
	}
	return nil
}

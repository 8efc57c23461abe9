package rotation

import (
	"github.com/desertthunder/rotor/internal/models"
)

// Stats accumulates generation statistics for one run.
type Stats struct {
	Realized      map[Category]int // slots actually assigned per required category
	Resets        int              // pool usage-mark resets
	Fallbacks     int              // slots filled from a fallback pool
	ForcedSpacing int              // slots filled with the artist constraint relaxed
	SpacingSkips  int              // candidates excluded only by artist spacing
}

// runState is the ephemeral working set of a single generation run: the
// snapshot, per-category pools, usage marks, and artist spacing bookkeeping.
// It is created by one Generate call, mutated only by that call's slot loop,
// and discarded afterwards.
type runState struct {
	tracks     []models.Track
	pools      map[Category][]int // indexes into tracks, catalog order
	used       []bool
	artistLast map[string]int // artist key -> last assigned position
	stats      Stats
}

// newRunState snapshots the relevant track attributes into per-category pools.
// Tracks whose category is not configured are left out of every pool; the
// snapshot slice itself is borrowed, never mutated.
func newRunState(tracks []models.Track, cfg *Config) *runState {
	rs := &runState{
		tracks:     tracks,
		pools:      make(map[Category][]int, len(cfg.categories)),
		used:       make([]bool, len(tracks)),
		artistLast: make(map[string]int),
		stats:      Stats{Realized: make(map[Category]int)},
	}

	for _, spec := range cfg.categories {
		rs.pools[spec.Name] = nil
	}

	for i, track := range tracks {
		cat := Category(track.Category)
		if _, ok := rs.pools[cat]; !ok {
			continue
		}
		rs.pools[cat] = append(rs.pools[cat], i)
	}

	return rs
}

// artistKey falls back to the raw artist name when the snapshot carries no
// normalized key.
func (rs *runState) artistKey(idx int) string {
	track := rs.tracks[idx]
	if track.ArtistKey != "" {
		return track.ArtistKey
	}
	return models.NormalizeArtist(track.Artist)
}

// spacingOK reports whether assigning the track at pos keeps the required
// distance from the artist's previous assignment. Spacing is tracked across
// the whole run, not per category.
func (rs *runState) spacingOK(idx, pos, spacing int) bool {
	if spacing <= 0 {
		return true
	}
	last, seen := rs.artistLast[rs.artistKey(idx)]
	if !seen {
		return true
	}
	return pos-last >= spacing
}

// resetCategory clears the used-this-run marks for every track in the
// category's pool. Artist spacing bookkeeping is left intact. Only a reset
// that restores at least one candidate is counted; clearing an empty or
// already clear pool changes nothing.
func (rs *runState) resetCategory(cat Category) {
	cleared := false
	for _, idx := range rs.pools[cat] {
		if rs.used[idx] {
			rs.used[idx] = false
			cleared = true
		}
	}
	if cleared {
		rs.stats.Resets++
	}
}

// assign records the selection: the track is marked used, its artist's last
// position is updated, and the required category's realized count grows.
func (rs *runState) assign(idx, pos int, required Category) {
	rs.used[idx] = true
	rs.artistLast[rs.artistKey(idx)] = pos
	rs.stats.Realized[required]++
}

package rotation

import (
	"github.com/charmbracelet/log"
	"github.com/desertthunder/rotor/internal/models"
	"github.com/desertthunder/rotor/internal/shared"
)

// Slot is one filled position of the generated sequence. Category is what the
// schedule required; TrackCategory is the lifecycle label of the chosen track.
type Slot struct {
	Position      int
	TrackID       string
	Category      Category
	TrackCategory Category
}

// Result is the output of one generation run: the full ordered sequence, the
// schedule it was filled against, and the run statistics.
type Result struct {
	Slots    []Slot
	Schedule []Category
	Stats    Stats
}

// Assembler drives the slot-by-slot generation loop. It holds only immutable
// configuration; all per-run state lives in a runState owned by a single
// Generate call, so one Assembler may serve concurrent runs over separate
// snapshots.
type Assembler struct {
	cfg    *Config
	logger *log.Logger
}

// NewAssembler creates an Assembler for the validated config.
func NewAssembler(cfg *Config, logger *log.Logger) *Assembler {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Assembler{cfg: cfg, logger: logger}
}

// Generate fills n slots from the catalog snapshot.
//
// The only fatal conditions are an empty snapshot and a non-positive slot
// count, both rejected before any slot work. Exhaustion and forced spacing
// violations are recovered in-run and surface only in the statistics.
func (a *Assembler) Generate(tracks []models.Track, n int) (*Result, error) {
	if n <= 0 {
		return nil, shared.ErrNoSlots
	}
	if len(tracks) == 0 {
		return nil, shared.ErrEmptyCatalog
	}

	schedule, err := BuildSchedule(a.cfg, n)
	if err != nil {
		return nil, err
	}

	rs := newRunState(tracks, a.cfg)
	slots := make([]Slot, 0, n)

	for pos, required := range schedule {
		idx, state, err := resolve(rs, a.cfg, required, pos)
		if err != nil {
			return nil, err
		}
		if state != stateNormal {
			a.logger.Debug("slot recovered", "position", pos, "category", required, "state", state.String())
		}

		rs.assign(idx, pos, required)
		track := rs.tracks[idx]
		slots = append(slots, Slot{
			Position:      pos,
			TrackID:       track.ID,
			Category:      required,
			TrackCategory: Category(track.Category),
		})
	}

	a.logger.Info("run assembled",
		"slots", len(slots),
		"resets", rs.stats.Resets,
		"fallbacks", rs.stats.Fallbacks,
		"forced_spacing", rs.stats.ForcedSpacing,
	)

	return &Result{Slots: slots, Schedule: schedule, Stats: rs.stats}, nil
}

package rotation

import (
	"fmt"

	"github.com/desertthunder/rotor/internal/shared"
)

// recoveryState tracks how far exhaustion recovery has escalated for one slot.
// Each successfully filled slot starts the next one back at stateNormal.
type recoveryState int

const (
	stateNormal recoveryState = iota
	stateResetTried
	stateFallbackTried
	stateFailed
)

func (s recoveryState) String() string {
	switch s {
	case stateNormal:
		return "normal"
	case stateResetTried:
		return "reset_tried"
	case stateFallbackTried:
		return "fallback_tried"
	case stateFailed:
		return "failed"
	default:
		return ""
	}
}

// resolve finds the track for one slot, escalating through the recovery states
// when pools run dry:
//
//	normal         -> eligibility against the required category's pool
//	reset_tried    -> category usage marks cleared, spacing still enforced
//	fallback_tried -> the configured fallback pool, then that pool's own reset
//	failed         -> spacing relaxed, category membership never abandoned
//
// The failed branch guarantees a selection whenever any track exists in the
// catalog, so a run past its preconditions always completes.
func resolve(rs *runState, cfg *Config, required Category, pos int) (int, recoveryState, error) {
	spacing := cfg.Spacing(required)

	if candidates := rs.eligible(required, pos, spacing); len(candidates) > 0 {
		return rs.pick(candidates), stateNormal, nil
	}

	rs.resetCategory(required)
	if candidates := rs.eligible(required, pos, spacing); len(candidates) > 0 {
		return rs.pick(candidates), stateResetTried, nil
	}

	// The substituted slot keeps the required category, so the fallback pool
	// is filtered with the required category's spacing, not the fallback's.
	if fallback := cfg.Fallback(required); fallback != None {
		if candidates := rs.eligible(fallback, pos, spacing); len(candidates) > 0 {
			rs.stats.Fallbacks++
			return rs.pick(candidates), stateFallbackTried, nil
		}
		rs.resetCategory(fallback)
		if candidates := rs.eligible(fallback, pos, spacing); len(candidates) > 0 {
			rs.stats.Fallbacks++
			return rs.pick(candidates), stateFallbackTried, nil
		}
	}

	// Terminal recovery: relax spacing within the required category, then the
	// fallback, then any remaining category in declaration order. The slot's
	// category stays what the schedule demanded.
	chain := []Category{required}
	if fallback := cfg.Fallback(required); fallback != None {
		chain = append(chain, fallback)
	}
	for _, spec := range cfg.categories {
		if spec.Name != required && spec.Name != cfg.Fallback(required) {
			chain = append(chain, spec.Name)
		}
	}

	for i, cat := range chain {
		candidates := rs.unusedIgnoringSpacing(cat)
		if len(candidates) == 0 {
			rs.resetCategory(cat)
			candidates = rs.unusedIgnoringSpacing(cat)
		}
		if len(candidates) == 0 {
			continue
		}
		rs.stats.ForcedSpacing++
		if i > 0 {
			rs.stats.Fallbacks++
		}
		return rs.pick(candidates), stateFailed, nil
	}

	return -1, stateFailed, fmt.Errorf("%w: no track for position %d", shared.ErrEmptyCatalog, pos)
}

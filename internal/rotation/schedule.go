package rotation

import (
	"math"
	"sort"

	"github.com/desertthunder/rotor/internal/shared"
)

// Quotas splits n slots across the configured categories by percentage using
// the largest-remainder method, so the counts always sum to exactly n.
// Percentages are treated as weights: a table summing to less than 100 still
// fills every slot.
func (c *Config) Quotas(n int) map[Category]int {
	quotas := make(map[Category]int, len(c.categories))
	if n <= 0 {
		return quotas
	}

	total := 0.0
	for _, spec := range c.categories {
		total += spec.Percent
	}

	type remainder struct {
		order int
		frac  float64
	}

	assigned := 0
	remainders := make([]remainder, 0, len(c.categories))

	for i, spec := range c.categories {
		exact := spec.Percent / total * float64(n)
		base := int(math.Floor(exact))
		quotas[spec.Name] = base
		assigned += base
		remainders = append(remainders, remainder{order: i, frac: exact - float64(base)})
	}

	// Hand out the leftover slots to the largest fractional remainders,
	// declaration order breaking ties.
	sort.SliceStable(remainders, func(i, j int) bool {
		return remainders[i].frac > remainders[j].frac
	})

	for i := 0; i < n-assigned; i++ {
		r := remainders[i%len(remainders)]
		quotas[c.categories[r.order].Name]++
	}

	return quotas
}

// BuildSchedule computes the required category for every position 0..n-1.
//
// Interleaving uses smooth weighted round-robin: each category accumulates
// credit proportional to its quota every position, and the position goes to
// the category with the most credit that still has quota left. The schedule is
// deterministic for a given config and n; repeated calls are identical.
func BuildSchedule(cfg *Config, n int) ([]Category, error) {
	if n <= 0 {
		return nil, shared.ErrNoSlots
	}

	quotas := cfg.Quotas(n)
	specs := cfg.categories

	credit := make([]int, len(specs))
	remaining := make([]int, len(specs))
	for i, spec := range specs {
		remaining[i] = quotas[spec.Name]
	}

	schedule := make([]Category, 0, n)

	for pos := 0; pos < n; pos++ {
		pick := -1
		for i, spec := range specs {
			credit[i] += quotas[spec.Name]
			if remaining[i] <= 0 {
				continue
			}
			if pick < 0 || credit[i] > credit[pick] {
				pick = i
			}
		}
		if pick < 0 {
			// Quotas sum to n, so a slot without a pick cannot happen.
			return nil, shared.ErrNoSlots
		}

		credit[pick] -= n
		remaining[pick]--
		schedule = append(schedule, specs[pick].Name)
	}

	return schedule, nil
}

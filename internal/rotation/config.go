package rotation

import (
	"fmt"
	"math"

	"github.com/desertthunder/rotor/internal/shared"
)

// Category names a lifecycle tier. The configured order runs newest to oldest.
type Category string

// None marks the absence of a fallback category.
const None Category = ""

// CategorySpec describes one lifecycle category: its share of the generated
// playlist, the minimum number of intervening slots before the same artist may
// recur, and the category substituted when the pool runs dry.
type CategorySpec struct {
	Name     Category
	Percent  float64
	Spacing  int
	Fallback Category
}

// Config is the validated generation configuration. It is constructed once via
// [NewConfig], which rejects invalid category tables; a Config that exists is
// never re-validated mid-run.
type Config struct {
	categories []CategorySpec
	index      map[Category]int
}

// NewConfig validates the ordered category table and returns a Config.
//
// Rules: at least one category, unique non-empty names, positive percentages
// summing to at most 100, non-negative spacing, and every fallback naming
// another configured category. A spacing of zero disables the artist
// constraint for that category.
func NewConfig(specs []CategorySpec) (*Config, error) {
	if len(specs) == 0 {
		return nil, fmt.Errorf("%w: no categories configured", shared.ErrInvalidConfig)
	}

	index := make(map[Category]int, len(specs))
	total := 0.0

	for i, spec := range specs {
		if spec.Name == None {
			return nil, fmt.Errorf("%w: category %d has no name", shared.ErrInvalidConfig, i)
		}
		if _, dup := index[spec.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate category %q", shared.ErrInvalidConfig, spec.Name)
		}
		if spec.Percent <= 0 {
			return nil, fmt.Errorf("%w: category %q has non-positive percent %.2f", shared.ErrInvalidConfig, spec.Name, spec.Percent)
		}
		if spec.Spacing < 0 {
			return nil, fmt.Errorf("%w: category %q has negative spacing %d", shared.ErrInvalidConfig, spec.Name, spec.Spacing)
		}
		index[spec.Name] = i
		total += spec.Percent
	}

	if total > 100.0+1e-9 {
		return nil, fmt.Errorf("%w: category percentages sum to %.2f", shared.ErrInvalidConfig, total)
	}

	for _, spec := range specs {
		if spec.Fallback == None {
			continue
		}
		if spec.Fallback == spec.Name {
			return nil, fmt.Errorf("%w: category %q falls back to itself", shared.ErrInvalidConfig, spec.Name)
		}
		if _, ok := index[spec.Fallback]; !ok {
			return nil, fmt.Errorf("%w: category %q falls back to unknown category %q", shared.ErrInvalidConfig, spec.Name, spec.Fallback)
		}
	}

	categories := make([]CategorySpec, len(specs))
	copy(categories, specs)

	return &Config{categories: categories, index: index}, nil
}

// FromShared builds a Config from the TOML-level rotation section.
func FromShared(rc shared.RotationConfig) (*Config, error) {
	specs := make([]CategorySpec, 0, len(rc.Categories))
	for _, c := range rc.Categories {
		specs = append(specs, CategorySpec{
			Name:     Category(c.Name),
			Percent:  c.Percent,
			Spacing:  c.Spacing,
			Fallback: Category(c.Fallback),
		})
	}
	return NewConfig(specs)
}

// Categories returns the category table in declaration order.
func (c *Config) Categories() []CategorySpec {
	out := make([]CategorySpec, len(c.categories))
	copy(out, c.categories)
	return out
}

// Contains reports whether the category is configured.
func (c *Config) Contains(cat Category) bool {
	_, ok := c.index[cat]
	return ok
}

// Spec returns the CategorySpec for the named category.
func (c *Config) Spec(cat Category) (CategorySpec, bool) {
	i, ok := c.index[cat]
	if !ok {
		return CategorySpec{}, false
	}
	return c.categories[i], true
}

// Spacing returns the minimum artist spacing for the category, zero if unknown.
func (c *Config) Spacing(cat Category) int {
	if spec, ok := c.Spec(cat); ok {
		return spec.Spacing
	}
	return 0
}

// Fallback returns the configured fallback for the category, or None.
func (c *Config) Fallback(cat Category) Category {
	if spec, ok := c.Spec(cat); ok {
		return spec.Fallback
	}
	return None
}

// Tier returns the category at the given position in newest-to-oldest order.
func (c *Config) Tier(i int) (Category, bool) {
	if i < 0 || i >= len(c.categories) {
		return None, false
	}
	return c.categories[i].Name, true
}

// SlotCount derives the number of playlist slots from a target run length and
// an average track length, both in minutes. The result is never negative.
func SlotCount(targetMinutes int, avgTrackMinutes float64) int {
	if targetMinutes <= 0 || avgTrackMinutes <= 0 {
		return 0
	}
	return int(math.Round(float64(targetMinutes) / avgTrackMinutes))
}

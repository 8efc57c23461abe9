package rotation

import (
	"time"

	"github.com/desertthunder/rotor/internal/models"
)

// Migration is a proposed category change for one track. The engine never
// writes the catalog itself; the caller applies migrations before building the
// run snapshot.
type Migration struct {
	TrackID string
	From    Category
	To      Category
}

// Classifier decides lifecycle migrations from play counts and age. It is a
// pure function over track attributes; the only automatic transitions are the
// two below, everything else stays put until reassigned externally.
//
//  1. A track in the second-newest tier with fewer plays than RecentPlayFloor
//     returns to the newest tier as a fresh discovery, regardless of age.
//  2. A track in the newest tier older than MaxAgeMonths moves to the bulk tier.
type Classifier struct {
	Newest          Category
	Second          Category
	Bulk            Category
	RecentPlayFloor int
	MaxAgeMonths    int
}

// NewClassifier derives a Classifier from the config's tier order. A table with
// fewer than three categories yields an inert classifier that proposes nothing.
func NewClassifier(cfg *Config, recentPlayFloor, maxAgeMonths int) Classifier {
	newest, _ := cfg.Tier(0)
	second, _ := cfg.Tier(1)
	bulk, okBulk := cfg.Tier(2)
	if !okBulk {
		return Classifier{}
	}
	return Classifier{
		Newest:          newest,
		Second:          second,
		Bulk:            bulk,
		RecentPlayFloor: recentPlayFloor,
		MaxAgeMonths:    maxAgeMonths,
	}
}

func (c Classifier) inert() bool {
	return c.Newest == None || c.Second == None || c.Bulk == None
}

// Classify returns the category the track should migrate to and whether a
// migration applies. Rules are evaluated in fixed priority order.
func (c Classifier) Classify(track models.Track, now time.Time) (Category, bool) {
	if c.inert() {
		return None, false
	}

	current := Category(track.Category)

	if current == c.Second && track.PlayCount < c.RecentPlayFloor {
		return c.Newest, true
	}

	if current == c.Newest && c.MaxAgeMonths > 0 {
		cutoff := now.AddDate(0, -c.MaxAgeMonths, 0)
		if track.DateAdded.Before(cutoff) {
			return c.Bulk, true
		}
	}

	return None, false
}

// Plan evaluates every track in the snapshot and returns the proposed
// migrations in snapshot order.
func (c Classifier) Plan(tracks []models.Track, now time.Time) []Migration {
	if c.inert() {
		return nil
	}

	var migrations []Migration
	for _, track := range tracks {
		if to, ok := c.Classify(track, now); ok {
			migrations = append(migrations, Migration{
				TrackID: track.ID,
				From:    Category(track.Category),
				To:      to,
			})
		}
	}
	return migrations
}

package models

import (
	"testing"
	"time"
)

func TestNormalizeArtist(t *testing.T) {
	cases := []struct {
		name   string
		input  string
		expect string
	}{
		{"lowercases", "MF DOOM", "mf doom"},
		{"trims whitespace", "  Broadcast  ", "broadcast"},
		{"strips feat dot", "MF DOOM feat. Mos Def", "mf doom"},
		{"strips feat bare", "Quasimoto feat Madlib", "quasimoto"},
		{"strips ft", "Freddie Gibbs ft. Madlib", "freddie gibbs"},
		{"strips featuring", "Röyksopp featuring Robyn", "röyksopp"},
		{"strips with", "Sparks with Franz Ferdinand", "sparks"},
		{"strips x collab", "Madlib x Freddie Gibbs", "madlib"},
		{"strips ampersand", "Iggy Pop & James Williamson", "iggy pop"},
		{"strips comma list", "Herbie Hancock, Chick Corea", "herbie hancock"},
		{"strips the prefix", "The Fall", "fall"},
		{"collapses spaces", "the  velvet   underground", "velvet underground"},
		{"keeps plain names", "stereolab", "stereolab"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := NormalizeArtist(tc.input); got != tc.expect {
				t.Errorf("NormalizeArtist(%q) = %q, want %q", tc.input, got, tc.expect)
			}
		})
	}

	t.Run("aliases collapse to one key", func(t *testing.T) {
		a := NormalizeArtist("MF DOOM feat. Mos Def")
		b := NormalizeArtist("mf doom")
		if a != b {
			t.Errorf("expected same key, got %q and %q", a, b)
		}
	})
}

func TestPersistedTrack(t *testing.T) {
	base := Track{
		Artist:    "Broadcast",
		Title:     "Black Cat",
		Category:  "rotation",
		PlayCount: 3,
		DateAdded: time.Now(),
		Available: true,
	}

	t.Run("derives artist key", func(t *testing.T) {
		track := NewPersistedTrack(1, base)
		if track.ArtistKey() != "broadcast" {
			t.Errorf("expected derived key, got %q", track.ArtistKey())
		}
	})

	t.Run("keeps explicit artist key", func(t *testing.T) {
		withKey := base
		withKey.ArtistKey = "custom"
		track := NewPersistedTrack(1, withKey)
		if track.ArtistKey() != "custom" {
			t.Errorf("expected explicit key, got %q", track.ArtistKey())
		}
	})

	t.Run("snapshot carries persisted ID", func(t *testing.T) {
		track := NewPersistedTrack(1, base)
		track.SetID("t-1")

		snap := track.Snapshot()
		if snap.ID != "t-1" {
			t.Errorf("expected ID on snapshot, got %q", snap.ID)
		}
		if snap.Artist != "Broadcast" || snap.Category != "rotation" {
			t.Errorf("unexpected snapshot: %+v", snap)
		}
	})

	t.Run("validation", func(t *testing.T) {
		cases := []struct {
			name   string
			mutate func(*Track)
		}{
			{"missing artist", func(tr *Track) { tr.Artist = "" }},
			{"missing title", func(tr *Track) { tr.Title = "" }},
			{"missing category", func(tr *Track) { tr.Category = "" }},
			{"negative play count", func(tr *Track) { tr.PlayCount = -1 }},
			{"zero date added", func(tr *Track) { tr.DateAdded = time.Time{} }},
		}

		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				invalid := base
				tc.mutate(&invalid)
				if err := NewPersistedTrack(1, invalid).Validate(); err == nil {
					t.Error("expected validation error")
				}
			})
		}

		if err := NewPersistedTrack(1, base).Validate(); err != nil {
			t.Errorf("expected valid track, got %v", err)
		}
	})
}

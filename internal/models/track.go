package models

import (
	"fmt"
	"strings"
	"time"
)

// Track is the snapshot value the generation engine works with. The engine reads
// a full catalog snapshot at run start and never writes back; category changes
// and play updates travel as proposed mutations instead.
type Track struct {
	ID         string     `json:"id"`
	Artist     string     `json:"artist"`
	ArtistKey  string     `json:"artist_key"` // normalized common name, used for repeat spacing
	Title      string     `json:"title"`
	Category   string     `json:"category"`
	PlayCount  int        `json:"play_count"`
	DateAdded  time.Time  `json:"date_added"`
	LastPlayed *time.Time `json:"last_played,omitempty"`
	Available  bool       `json:"available"`
}

// CategoryChange is one proposed lifecycle migration: move the track from one
// category to another. Produced by classification, applied by the catalog
// store before a generation run reads its snapshot.
type CategoryChange struct {
	TrackID string `json:"track_id"`
	From    string `json:"from"`
	To      string `json:"to"`
}

// featureMarkers are the separators that split a credited artist string into the
// primary artist and featured guests. Matching is case-insensitive.
var featureMarkers = []string{
	" feat. ", " feat ", " ft. ", " ft ", " featuring ", " with ", " x ", " & ", ", ",
}

// NormalizeArtist reduces a credited artist string to a common-name key so that
// aliases and feature credits group under one artist for spacing purposes.
// "MF DOOM feat. Mos Def" and "mf doom" normalize to the same key.
func NormalizeArtist(artist string) string {
	key := strings.ToLower(strings.TrimSpace(artist))
	for _, marker := range featureMarkers {
		if idx := strings.Index(key, marker); idx > 0 {
			key = key[:idx]
		}
	}
	key = strings.TrimPrefix(key, "the ")
	return strings.Join(strings.Fields(key), " ")
}

// PersistedTrack is a database-backed catalog track implementing [Model].
type PersistedTrack struct {
	id        string
	sequence  int
	track     Track
	createdAt time.Time
	updatedAt time.Time
	deletedAt *time.Time
}

// NewPersistedTrack creates a PersistedTrack from a snapshot value. The artist
// key is derived when the snapshot does not carry one.
func NewPersistedTrack(sequence int, track Track) *PersistedTrack {
	if track.ArtistKey == "" {
		track.ArtistKey = NormalizeArtist(track.Artist)
	}
	now := time.Now()
	return &PersistedTrack{
		sequence:  sequence,
		track:     track,
		createdAt: now,
		updatedAt: now,
	}
}

func (t *PersistedTrack) ID() string            { return t.id }
func (t *PersistedTrack) Sequence() int         { return t.sequence }
func (t *PersistedTrack) CreatedAt() time.Time  { return t.createdAt }
func (t *PersistedTrack) UpdatedAt() time.Time  { return t.updatedAt }
func (t *PersistedTrack) DeletedAt() *time.Time { return t.deletedAt }

func (t *PersistedTrack) Artist() string         { return t.track.Artist }
func (t *PersistedTrack) ArtistKey() string      { return t.track.ArtistKey }
func (t *PersistedTrack) Title() string          { return t.track.Title }
func (t *PersistedTrack) Category() string       { return t.track.Category }
func (t *PersistedTrack) PlayCount() int         { return t.track.PlayCount }
func (t *PersistedTrack) DateAdded() time.Time   { return t.track.DateAdded }
func (t *PersistedTrack) LastPlayed() *time.Time { return t.track.LastPlayed }
func (t *PersistedTrack) Available() bool        { return t.track.Available }

func (t *PersistedTrack) SetID(id string)             { t.id = id }
func (t *PersistedTrack) SetSequence(sequence int)    { t.sequence = sequence }
func (t *PersistedTrack) SetCreatedAt(ts time.Time)   { t.createdAt = ts }
func (t *PersistedTrack) SetUpdatedAt(ts time.Time)   { t.updatedAt = ts }
func (t *PersistedTrack) SetDeletedAt(ts *time.Time)  { t.deletedAt = ts }
func (t *PersistedTrack) SetCategory(category string) { t.track.Category = category }
func (t *PersistedTrack) SetPlayCount(count int)      { t.track.PlayCount = count }
func (t *PersistedTrack) SetLastPlayed(ts *time.Time) { t.track.LastPlayed = ts }
func (t *PersistedTrack) SetAvailable(v bool)         { t.track.Available = v }

// Snapshot returns the track as an engine-facing value with the persisted ID attached.
func (t *PersistedTrack) Snapshot() Track {
	snap := t.track
	snap.ID = t.id
	return snap
}

// Validate checks required track attributes.
func (t *PersistedTrack) Validate() error {
	if t.track.Artist == "" {
		return fmt.Errorf("track artist is required")
	}
	if t.track.Title == "" {
		return fmt.Errorf("track title is required")
	}
	if t.track.Category == "" {
		return fmt.Errorf("track category is required")
	}
	if t.track.PlayCount < 0 {
		return fmt.Errorf("play count cannot be negative")
	}
	if t.track.DateAdded.IsZero() {
		return fmt.Errorf("date added is required")
	}
	return nil
}

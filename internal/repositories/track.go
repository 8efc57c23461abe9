package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/rotor/internal/models"
	"github.com/desertthunder/rotor/internal/shared"
)

// TrackRepository implements models.Repository[*models.PersistedTrack] for the catalog.
//
// Besides CRUD it serves the generation boundary: full snapshot loads at run
// start and batch application of classifier category migrations before a run.
type TrackRepository struct {
	db *sql.DB
}

// NewTrackRepository creates a new TrackRepository with the given database connection
func NewTrackRepository(db *sql.DB) *TrackRepository {
	return &TrackRepository{db: db}
}

const trackColumns = "id, sequence, artist, artist_key, title, category, play_count, date_added, last_played, available, created_at, updated_at, deleted_at"

// Create inserts a new [models.PersistedTrack] into the catalog with generated ID and sequence
func (r *TrackRepository) Create(track *models.PersistedTrack) error {
	sequence, err := NextSequence(r.db, "tracks")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	track.SetID(id)
	track.SetSequence(sequence)

	if err := track.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO tracks (id, sequence, artist, artist_key, title, category, play_count, date_added, last_played, available, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		id,
		sequence,
		track.Artist(),
		track.ArtistKey(),
		track.Title(),
		track.Category(),
		track.PlayCount(),
		track.DateAdded(),
		track.LastPlayed(),
		track.Available(),
		track.CreatedAt(),
		track.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert track: %w", err)
	}

	return nil
}

// Get retrieves a track by ID, excluding soft-deleted tracks
func (r *TrackRepository) Get(id string) (*models.PersistedTrack, error) {
	query := fmt.Sprintf(`SELECT %s FROM tracks WHERE id = ? AND deleted_at IS NULL`, trackColumns)
	return r.scanOne(r.db.QueryRow(query, id))
}

// Update modifies an existing track in the catalog
func (r *TrackRepository) Update(track *models.PersistedTrack) error {
	if err := track.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	track.SetUpdatedAt(now)

	query := `
		UPDATE tracks
		SET artist = ?, artist_key = ?, title = ?, category = ?, play_count = ?, last_played = ?, available = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query,
		track.Artist(),
		track.ArtistKey(),
		track.Title(),
		track.Category(),
		track.PlayCount(),
		track.LastPlayed(),
		track.Available(),
		now,
		track.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update track: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrTrackNotFound, track.ID())
	}

	return nil
}

// Delete soft-deletes a track by ID
func (r *TrackRepository) Delete(id string) error {
	now := time.Now()

	query := `
		UPDATE tracks
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, now, id)
	if err != nil {
		return fmt.Errorf("failed to delete track: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrTrackNotFound, id)
	}

	return nil
}

// List retrieves all tracks matching the given criteria, excluding soft-deleted tracks.
// Supported criteria: "category", "artist_key", "available".
func (r *TrackRepository) List(criteria map[string]any) ([]*models.PersistedTrack, error) {
	query := fmt.Sprintf(`SELECT %s FROM tracks WHERE deleted_at IS NULL`, trackColumns)

	args := []any{}

	if category, ok := criteria["category"].(string); ok && category != "" {
		query += " AND category = ?"
		args = append(args, category)
	}

	if artistKey, ok := criteria["artist_key"].(string); ok && artistKey != "" {
		query += " AND artist_key = ?"
		args = append(args, artistKey)
	}

	if available, ok := criteria["available"].(bool); ok {
		query += " AND available = ?"
		args = append(args, available)
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tracks: %w", err)
	}
	defer rows.Close()

	var tracks []*models.PersistedTrack
	for rows.Next() {
		track, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		tracks = append(tracks, track)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return tracks, nil
}

// Snapshot loads every live track as engine-facing values in catalog order.
// This is the point-in-time read a generation run works from; the run never
// queries the store again until its output is persisted.
func (r *TrackRepository) Snapshot() ([]models.Track, error) {
	persisted, err := r.List(nil)
	if err != nil {
		return nil, err
	}

	tracks := make([]models.Track, 0, len(persisted))
	for _, p := range persisted {
		tracks = append(tracks, p.Snapshot())
	}
	return tracks, nil
}

// ApplyMigrations applies a batch of classifier category proposals in a single
// transaction. A proposal whose track has moved since classification (category
// no longer matches From) is skipped, not failed. Returns the applied count.
func (r *TrackRepository) ApplyMigrations(migrations []models.CategoryChange) (int, error) {
	if len(migrations) == 0 {
		return 0, nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	applied := 0
	now := time.Now()

	for _, m := range migrations {
		result, err := tx.Exec(
			`UPDATE tracks SET category = ?, updated_at = ? WHERE id = ? AND category = ? AND deleted_at IS NULL`,
			m.To, now, m.TrackID, m.From,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to migrate track %s: %w", m.TrackID, err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("failed to get affected rows: %w", err)
		}
		applied += int(rows)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit migrations: %w", err)
	}

	return applied, nil
}

// RecordPlays bumps play counts and last-played timestamps for the given track
// IDs. Used by the invocation layer after a generated playlist has aired.
func (r *TrackRepository) RecordPlays(ids []string, playedAt time.Time) error {
	if len(ids) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, id := range ids {
		_, err := tx.Exec(
			`UPDATE tracks SET play_count = play_count + 1, last_played = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`,
			playedAt, playedAt, id,
		)
		if err != nil {
			return fmt.Errorf("failed to record play for %s: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit plays: %w", err)
	}

	return nil
}

// scanOne scans a single [sql.Row] into a [models.PersistedTrack]
func (r *TrackRepository) scanOne(row *sql.Row) (*models.PersistedTrack, error) {
	track, err := scanTrack(row.Scan)
	if err == sql.ErrNoRows {
		return nil, shared.ErrTrackNotFound
	}
	return track, err
}

// scanRow scans a row from [sql.Rows] into a [models.PersistedTrack]
func (r *TrackRepository) scanRow(rows *sql.Rows) (*models.PersistedTrack, error) {
	return scanTrack(rows.Scan)
}

func scanTrack(scan func(...any) error) (*models.PersistedTrack, error) {
	var (
		id         string
		sequence   int
		artist     string
		artistKey  string
		title      string
		category   string
		playCount  int
		dateAdded  time.Time
		lastPlayed sql.NullTime
		available  bool
		createdAt  time.Time
		updatedAt  time.Time
		deletedAt  sql.NullTime
	)

	err := scan(&id, &sequence, &artist, &artistKey, &title, &category, &playCount, &dateAdded, &lastPlayed, &available, &createdAt, &updatedAt, &deletedAt)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan track: %w", err)
	}

	dto := models.Track{
		Artist:    artist,
		ArtistKey: artistKey,
		Title:     title,
		Category:  category,
		PlayCount: playCount,
		DateAdded: dateAdded,
		Available: available,
	}
	if lastPlayed.Valid {
		ts := lastPlayed.Time
		dto.LastPlayed = &ts
	}

	track := models.NewPersistedTrack(sequence, dto)
	track.SetID(id)
	track.SetCreatedAt(createdAt)
	track.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		track.SetDeletedAt(&deletedAt.Time)
	}

	return track, nil
}

package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/rotor/internal/models"
	"github.com/desertthunder/rotor/internal/shared"
)

// PlaylistRepository implements models.Repository[*models.PersistedPlaylist]
// for generated playlists. A playlist row carries the run statistics; its
// ordered entries live in playlist_entries and are written and read together
// with the row.
type PlaylistRepository struct {
	db *sql.DB
}

// NewPlaylistRepository creates a new PlaylistRepository with the given database connection
func NewPlaylistRepository(db *sql.DB) *PlaylistRepository {
	return &PlaylistRepository{db: db}
}

// Create inserts a generated playlist and its entries in one transaction.
func (r *PlaylistRepository) Create(playlist *models.PersistedPlaylist) error {
	sequence, err := NextSequence(r.db, "playlists")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	playlist.SetID(id)
	playlist.SetSequence(sequence)

	if err := playlist.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stats := playlist.Stats()
	_, err = tx.Exec(`
		INSERT INTO playlists (id, sequence, name, slot_count, resets, fallbacks, forced_spacing, spacing_skips, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		id,
		sequence,
		playlist.Name(),
		playlist.SlotCount(),
		stats.Resets,
		stats.Fallbacks,
		stats.ForcedSpacing,
		stats.SpacingSkips,
		playlist.CreatedAt(),
		playlist.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert playlist: %w", err)
	}

	for _, entry := range playlist.Entries() {
		_, err = tx.Exec(`
			INSERT INTO playlist_entries (id, playlist_id, position, track_id, slot_category, track_category)
			VALUES (?, ?, ?, ?, ?, ?)
		`,
			shared.GenerateID(),
			id,
			entry.Position,
			entry.TrackID,
			entry.SlotCategory,
			entry.TrackCategory,
		)
		if err != nil {
			return fmt.Errorf("failed to insert entry %d: %w", entry.Position, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit playlist: %w", err)
	}

	return nil
}

// Get retrieves a playlist and its ordered entries by ID, excluding soft-deleted playlists
func (r *PlaylistRepository) Get(id string) (*models.PersistedPlaylist, error) {
	query := `
		SELECT id, sequence, name, slot_count, resets, fallbacks, forced_spacing, spacing_skips, created_at, updated_at, deleted_at
		FROM playlists
		WHERE id = ? AND deleted_at IS NULL
	`

	playlist, err := r.scanOne(r.db.QueryRow(query, id))
	if err != nil {
		return nil, err
	}

	entries, err := r.entries(playlist.ID())
	if err != nil {
		return nil, err
	}
	playlist.SetEntries(entries)

	return playlist, nil
}

// GetLatestByName retrieves the most recently generated playlist with the given name.
func (r *PlaylistRepository) GetLatestByName(name string) (*models.PersistedPlaylist, error) {
	query := `
		SELECT id, sequence, name, slot_count, resets, fallbacks, forced_spacing, spacing_skips, created_at, updated_at, deleted_at
		FROM playlists
		WHERE name = ? AND deleted_at IS NULL
		ORDER BY sequence DESC
		LIMIT 1
	`

	playlist, err := r.scanOne(r.db.QueryRow(query, name))
	if err != nil {
		return nil, err
	}

	entries, err := r.entries(playlist.ID())
	if err != nil {
		return nil, err
	}
	playlist.SetEntries(entries)

	return playlist, nil
}

// Update modifies the playlist row. Entries are immutable once generated; only
// the name and statistics columns are touched.
func (r *PlaylistRepository) Update(playlist *models.PersistedPlaylist) error {
	if err := playlist.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	playlist.SetUpdatedAt(now)

	stats := playlist.Stats()
	result, err := r.db.Exec(`
		UPDATE playlists
		SET name = ?, resets = ?, fallbacks = ?, forced_spacing = ?, spacing_skips = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`,
		playlist.Name(),
		stats.Resets,
		stats.Fallbacks,
		stats.ForcedSpacing,
		stats.SpacingSkips,
		now,
		playlist.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update playlist: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, playlist.ID())
	}

	return nil
}

// Delete soft-deletes a playlist by ID
func (r *PlaylistRepository) Delete(id string) error {
	now := time.Now()

	result, err := r.db.Exec(`
		UPDATE playlists
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`, now, id)
	if err != nil {
		return fmt.Errorf("failed to delete playlist: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, id)
	}

	return nil
}

// List retrieves playlist rows matching the given criteria without their
// entries, excluding soft-deleted playlists. Supported criteria: "name".
func (r *PlaylistRepository) List(criteria map[string]any) ([]*models.PersistedPlaylist, error) {
	query := `
		SELECT id, sequence, name, slot_count, resets, fallbacks, forced_spacing, spacing_skips, created_at, updated_at, deleted_at
		FROM playlists
		WHERE deleted_at IS NULL
	`

	args := []any{}

	if name, ok := criteria["name"].(string); ok && name != "" {
		query += " AND name = ?"
		args = append(args, name)
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query playlists: %w", err)
	}
	defer rows.Close()

	var playlists []*models.PersistedPlaylist
	for rows.Next() {
		playlist, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		playlists = append(playlists, playlist)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return playlists, nil
}

// entries loads the ordered slot rows for a playlist.
func (r *PlaylistRepository) entries(playlistID string) ([]models.PlaylistEntry, error) {
	rows, err := r.db.Query(`
		SELECT position, track_id, slot_category, track_category
		FROM playlist_entries
		WHERE playlist_id = ?
		ORDER BY position ASC
	`, playlistID)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	var entries []models.PlaylistEntry
	for rows.Next() {
		var entry models.PlaylistEntry
		if err := rows.Scan(&entry.Position, &entry.TrackID, &entry.SlotCategory, &entry.TrackCategory); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return entries, nil
}

func (r *PlaylistRepository) scanOne(row *sql.Row) (*models.PersistedPlaylist, error) {
	playlist, err := scanPlaylist(row.Scan)
	if err == sql.ErrNoRows {
		return nil, shared.ErrPlaylistNotFound
	}
	return playlist, err
}

func (r *PlaylistRepository) scanRow(rows *sql.Rows) (*models.PersistedPlaylist, error) {
	return scanPlaylist(rows.Scan)
}

func scanPlaylist(scan func(...any) error) (*models.PersistedPlaylist, error) {
	var (
		id            string
		sequence      int
		name          string
		slotCount     int
		resets        int
		fallbacks     int
		forcedSpacing int
		spacingSkips  int
		createdAt     time.Time
		updatedAt     time.Time
		deletedAt     sql.NullTime
	)

	err := scan(&id, &sequence, &name, &slotCount, &resets, &fallbacks, &forcedSpacing, &spacingSkips, &createdAt, &updatedAt, &deletedAt)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan playlist: %w", err)
	}

	playlist := models.NewPersistedPlaylist(sequence, name, nil, models.RunStats{
		Resets:        resets,
		Fallbacks:     fallbacks,
		ForcedSpacing: forcedSpacing,
		SpacingSkips:  spacingSkips,
	})
	playlist.SetID(id)
	playlist.SetSlotCount(slotCount)
	playlist.SetCreatedAt(createdAt)
	playlist.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		playlist.SetDeletedAt(&deletedAt.Time)
	}

	return playlist, nil
}

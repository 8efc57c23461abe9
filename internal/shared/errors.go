package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Generation preconditions
	ErrEmptyCatalog = fmt.Errorf("catalog has no tracks")
	ErrNoSlots      = fmt.Errorf("slot count must be positive")

	// Catalog and playlist errors
	ErrTrackNotFound    = fmt.Errorf("track not found")
	ErrPlaylistNotFound = fmt.Errorf("playlist not found")
	ErrDuplicateTrack   = fmt.Errorf("track already in catalog")

	// Sync errors
	ErrSyncUnavailable = fmt.Errorf("sync service unavailable")
	ErrSyncRejected    = fmt.Errorf("sync service rejected playlist")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)

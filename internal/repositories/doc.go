// Package repositories implements SQLite persistence for the track catalog and
// generated playlists.
//
// Each repository handles CRUD operations with atomic sequence generation for human-readable ordering.
// All repositories support soft deletes via deleted_at timestamps and exclude deleted records from queries by default.
//
// Key Implementations:
//   - [TrackRepository] : catalog persistence with category lookups, snapshot
//     loading for generation runs, and batch application of classifier migrations
//   - [PlaylistRepository] : generated playlists with their ordered entries and
//     run statistics
//
// Sequence numbers provide stable, human-readable ordering (e.g., track #42, playlist #15) independent of UUIDs and creation timestamps.
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
package repositories

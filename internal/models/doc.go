// Package models defines domain entities and persistence interfaces for the rotor playlist generator.
//
// The package contains two categories of types:
//
// 1. Snapshot values: plain structs handed to the generation engine
//   - [Track] : Catalog track attributes used by classification and selection
//   - [PlaylistEntry] : One ordered slot of a generated playlist
//
// 2. Persistent entities: database-backed models with full lifecycle management
//   - [PersistedTrack] : Catalog tracks with play counts and lifecycle categories
//   - [PersistedPlaylist] : Generated playlists with their run statistics
//
// All persistent entities implement the Model interface providing ID generation, timestamps, validation, and soft delete support.
// The Repository[T] interface defines standard CRUD operations for database access.
package models

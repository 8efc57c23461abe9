// Package tasks implements the long-running operations around playlist
// generation.
//
// The core abstraction is [Engine], which orchestrates a full generation run:
// classify the catalog, apply the proposed category migrations, snapshot,
// assemble the sequence, and persist the result. Catalog import from CSV lives
// here too. Operations emit progress updates via channels for non-blocking
// status reporting to CLI/UI layers.
package tasks

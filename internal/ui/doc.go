// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow over generated playlists:
//  1. [PlaylistListView] : Browse saved generation runs
//  2. [SlotListView] : Inspect the ordered slots of a run, with recovery stats
//  3. [GenerateView] : Monitor a new generation run in progress
//  4. [ResultView] : Display the finished run's summary
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern.
// Progress updates flow through a channel from the generation Engine, providing
// non-blocking status reporting while a run assembles.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, g, q) with
// contextual help displayed via charmbracelet/bubbles/help.
package ui

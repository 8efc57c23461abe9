package ui

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/rotor/internal/models"
	"github.com/desertthunder/rotor/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	PlaylistListView ViewState = iota
	SlotListView
	GenerateView
	ResultView
)

// PlaylistBrowser is the read side of the playlist store the TUI browses.
// Implemented by repositories.PlaylistRepository.
type PlaylistBrowser interface {
	List(criteria map[string]any) ([]*models.PersistedPlaylist, error)
	Get(id string) (*models.PersistedPlaylist, error)
}

// CatalogReader loads catalog tracks for slot attribution.
// Implemented by repositories.TrackRepository.
type CatalogReader interface {
	Snapshot() ([]models.Track, error)
}

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	view         ViewState
	playlists    PlaylistBrowser
	catalog      CatalogReader
	engine       *tasks.Engine
	width        int
	height       int
	playlistList list.Model
	slotList     list.Model
	selected     *models.PersistedPlaylist
	tracks       map[string]models.Track
	progressChan chan tasks.ProgressUpdate
	done         chan generationCompleteMsg
	progress     tasks.ProgressUpdate
	report       *tasks.RunReport
	err          error
	help         help.Model
	keys         keyMap
}

type playlistsFetchedMsg struct {
	playlists []*models.PersistedPlaylist
	tracks    map[string]models.Track
	err       error
}

type slotsLoadedMsg struct {
	playlist *models.PersistedPlaylist
	err      error
}

type progressUpdateMsg tasks.ProgressUpdate

type generationCompleteMsg struct {
	report *tasks.RunReport
	err    error
}

// NewModel creates a new TUI model with the provided dependencies. The engine
// may be nil, which disables the generate binding.
func NewModel(ctx context.Context, playlists PlaylistBrowser, catalog CatalogReader, engine *tasks.Engine) *Model {
	return &Model{
		ctx:       ctx,
		view:      PlaylistListView,
		playlists: playlists,
		catalog:   catalog,
		engine:    engine,
		help:      help.New(),
		keys:      newKeyMap(),
	}
}

// Init initializes the TUI by loading saved playlists and the catalog.
func (m *Model) Init() tea.Cmd {
	return m.fetchPlaylists()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.playlistList.Width() == 0 {
			m.playlistList.SetSize(msg.Width-4, msg.Height-8)
		}
		if m.slotList.Width() == 0 {
			m.slotList.SetSize(msg.Width-4, msg.Height-10)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case PlaylistListView:
			return m.handlePlaylistListKeys(msg)
		case SlotListView:
			return m.handleSlotListKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		}

	case playlistsFetchedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		m.tracks = msg.tracks
		items := make([]list.Item, len(msg.playlists))
		for i, pl := range msg.playlists {
			items[i] = playlistItem{playlist: pl}
		}
		m.playlistList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.playlistList.Title = "Generated Playlists"
		m.playlistList.SetSize(m.width-4, m.height-8)
		return m, nil

	case slotsLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.view = PlaylistListView
			return m, nil
		}
		m.selected = msg.playlist
		entries := msg.playlist.Entries()
		items := make([]list.Item, len(entries))
		for i, entry := range entries {
			track, found := m.tracks[entry.TrackID]
			items[i] = slotItem{entry: entry, track: track, found: found}
		}
		m.slotList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.slotList.Title = fmt.Sprintf("Slots in '%s'", msg.playlist.Name())
		m.slotList.SetSize(m.width-4, m.height-10)
		m.view = SlotListView
		return m, nil

	case progressUpdateMsg:
		m.progress = tasks.ProgressUpdate(msg)
		return m, m.waitForProgress()

	case generationCompleteMsg:
		m.report = msg.report
		m.err = msg.err
		m.view = ResultView
		m.progressChan = nil
		return m, nil
	}

	return m.updateLists(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil && m.view != ResultView {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case PlaylistListView:
		return m.renderPlaylistList()
	case SlotListView:
		return m.renderSlotList()
	case GenerateView:
		return m.renderGenerate()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handlePlaylistListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "g":
		if m.engine != nil {
			m.view = GenerateView
			return m, m.startGeneration()
		}
	case "enter":
		selected := m.playlistList.SelectedItem()
		if selected != nil {
			if pl, ok := selected.(playlistItem); ok {
				return m, m.loadSlots(pl.playlist.ID())
			}
		}
	}

	var cmd tea.Cmd
	m.playlistList, cmd = m.playlistList.Update(msg)
	return m, cmd
}

func (m *Model) handleSlotListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.view = PlaylistListView
		m.selected = nil
		return m, nil
	}

	var cmd tea.Cmd
	m.slotList, cmd = m.slotList.Update(msg)
	return m, cmd
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "r":
		m.view = PlaylistListView
		m.report = nil
		m.err = nil
		return m, m.fetchPlaylists()
	}
	return m, nil
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case PlaylistListView:
		m.playlistList, cmd = m.playlistList.Update(msg)
	case SlotListView:
		m.slotList, cmd = m.slotList.Update(msg)
	}
	return m, cmd
}

func (m *Model) fetchPlaylists() tea.Cmd {
	return func() tea.Msg {
		playlists, err := m.playlists.List(nil)
		if err != nil {
			return playlistsFetchedMsg{err: err}
		}

		tracks := map[string]models.Track{}
		if m.catalog != nil {
			snapshot, err := m.catalog.Snapshot()
			if err != nil {
				return playlistsFetchedMsg{err: err}
			}
			for _, track := range snapshot {
				tracks[track.ID] = track
			}
		}

		return playlistsFetchedMsg{playlists: playlists, tracks: tracks}
	}
}

func (m *Model) loadSlots(playlistID string) tea.Cmd {
	return func() tea.Msg {
		playlist, err := m.playlists.Get(playlistID)
		return slotsLoadedMsg{playlist: playlist, err: err}
	}
}

func (m *Model) startGeneration() tea.Cmd {
	progress := make(chan tasks.ProgressUpdate, 50)
	m.progressChan = progress
	done := make(chan generationCompleteMsg, 1)

	go func() {
		report, err := m.engine.Run(m.ctx, progress, "", 0)
		done <- generationCompleteMsg{report: report, err: err}
		close(progress)
	}()

	m.done = done
	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	return func() tea.Msg {
		if m.progressChan == nil {
			return generationCompleteMsg{report: m.report, err: m.err}
		}

		update, ok := <-m.progressChan
		if !ok {
			return <-m.done
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) renderPlaylistList() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.generate, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.playlistList.View(), helpView)
}

func (m *Model) renderSlotList() string {
	helpKeys := []key.Binding{m.keys.back, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n%s\n\n%s", m.slotList.View(), m.renderStatsFooter(), helpView)
}

// renderStatsFooter summarizes the selected run's category distribution and
// recovery counters in one line.
func (m *Model) renderStatsFooter() string {
	if m.selected == nil {
		return ""
	}
	stats := m.selected.Stats()

	categories := make([]string, 0, len(stats.Realized))
	for category := range stats.Realized {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	parts := make([]string, 0, len(categories))
	for _, category := range categories {
		parts = append(parts, fmt.Sprintf("%s %d", category, stats.Realized[category]))
	}
	line := strings.Join(parts, " • ")

	if stats.Resets > 0 || stats.Fallbacks > 0 || stats.ForcedSpacing > 0 {
		line += styles.warn.Render(fmt.Sprintf("  (resets %d, fallbacks %d, forced %d)",
			stats.Resets, stats.Fallbacks, stats.ForcedSpacing))
	}

	return styles.help.Render(line)
}

func (m *Model) renderGenerate() string {
	title := styles.title.Render("Generating Playlist")

	var phase string
	switch m.progress.Phase {
	case tasks.Classify:
		phase = "Classifying catalog..."
	case tasks.ApplyChanges:
		phase = "Applying category migrations..."
	case tasks.Snapshot:
		phase = "Snapshotting catalog..."
	case tasks.Assemble:
		phase = "Filling slots..."
	case tasks.Persist:
		phase = "Saving playlist..."
	default:
		phase = "Working..."
	}

	return fmt.Sprintf("%s\n\n%s\n%s", title, phase, m.progress.Message)
}

func (m *Model) renderResult() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Generation failed: %v\n\nPress r to go back, q to quit", m.err))
	}

	if m.report == nil {
		return styles.err.Render("No result available\n\nPress r to go back, q to quit")
	}

	title := styles.ok.Render("✓ Run Complete")
	info := fmt.Sprintf(
		"\nPlaylist: %s\nSlots: %d\nCatalog: %d tracks\nMigrations applied: %d\nElapsed: %s",
		m.report.Name,
		m.report.SlotCount,
		m.report.CatalogSize,
		m.report.AppliedChanges,
		m.report.Elapsed.Round(0),
	)

	var recovery string
	if m.report.Stats.Resets > 0 || m.report.Stats.Fallbacks > 0 || m.report.Stats.ForcedSpacing > 0 {
		recovery = fmt.Sprintf("\n\n%s", styles.warn.Render(fmt.Sprintf(
			"Recovery used: %d resets, %d fallbacks, %d forced spacing",
			m.report.Stats.Resets, m.report.Stats.Fallbacks, m.report.Stats.ForcedSpacing)))
	}

	helpKeys := []key.Binding{m.keys.restart, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s%s\n\n%s", title, info, recovery, helpView)
}

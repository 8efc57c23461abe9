package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/rotor/internal/shared"
	"github.com/desertthunder/rotor/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive terminal UI over the playlist store.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	config := r.resolveConfig(cmd)

	db, err := r.openDB(config)
	if err != nil {
		return err
	}
	defer db.Close()

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/rotor-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.logger = fileLogger

	engine, tracks, playlists := r.newEngine(db, config)

	model := ui.NewModel(ctx, playlists, tracks, engine)
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}

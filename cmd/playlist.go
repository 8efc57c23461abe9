package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/rotor/internal/formatter"
	"github.com/desertthunder/rotor/internal/models"
	"github.com/desertthunder/rotor/internal/repositories"
	"github.com/desertthunder/rotor/internal/shared"
	"github.com/urfave/cli/v3"
)

// resolvePlaylist loads the playlist named by --id or --name, defaulting to
// the latest run of the configured playlist name.
func (r *Runner) resolvePlaylist(cmd *cli.Command, config *shared.Config, playlists *repositories.PlaylistRepository) (*models.PersistedPlaylist, error) {
	if id := cmd.String("id"); id != "" {
		return playlists.Get(id)
	}

	name := cmd.String("name")
	if name == "" {
		name = config.Rotation.PlaylistName
	}
	if name == "" {
		return nil, fmt.Errorf("%w: playlist name or id", shared.ErrMissingArgument)
	}
	return playlists.GetLatestByName(name)
}

// PlaylistShow prints a generated playlist with track attribution.
func (r *Runner) PlaylistShow(ctx context.Context, cmd *cli.Command) error {
	config := r.resolveConfig(cmd)

	db, err := r.openDB(config)
	if err != nil {
		return err
	}
	defer db.Close()

	_, tracks, playlists := r.newEngine(db, config)

	playlist, err := r.resolvePlaylist(cmd, config, playlists)
	if err != nil {
		return err
	}

	snapshot, err := tracks.Snapshot()
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}
	export := formatter.NewRunExport(playlist, snapshot)

	format := formatter.FormatText
	if cmd.Bool("json") {
		format = formatter.FormatJSON
	}

	data, err := formatter.Export(export, format)
	if err != nil {
		return err
	}
	return r.writePlain("%s", data)
}

// PlaylistExport writes a generated playlist to a file in the chosen format.
func (r *Runner) PlaylistExport(ctx context.Context, cmd *cli.Command) error {
	config := r.resolveConfig(cmd)

	db, err := r.openDB(config)
	if err != nil {
		return err
	}
	defer db.Close()

	_, tracks, playlists := r.newEngine(db, config)

	playlist, err := r.resolvePlaylist(cmd, config, playlists)
	if err != nil {
		return err
	}

	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidFlag, err)
	}

	snapshot, err := tracks.Snapshot()
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}

	path, err := formatter.WriteExport(formatter.NewRunExport(playlist, snapshot), format, cmd.String("output"))
	if err != nil {
		return err
	}
	r.writePlain("Exported '%s' to %s\n", playlist.Name(), path)
	return nil
}

// PlaylistPush uploads a generated playlist to the sync proxy.
func (r *Runner) PlaylistPush(ctx context.Context, cmd *cli.Command) error {
	config := r.resolveConfig(cmd)

	db, err := r.openDB(config)
	if err != nil {
		return err
	}
	defer db.Close()

	_, tracks, playlists := r.newEngine(db, config)

	playlist, err := r.resolvePlaylist(cmd, config, playlists)
	if err != nil {
		return err
	}

	snapshot, err := tracks.Snapshot()
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}

	return r.push(ctx, config, playlist, snapshot)
}

// push renders the sync payload and delivers it to the proxy.
func (r *Runner) push(ctx context.Context, config *shared.Config, playlist *models.PersistedPlaylist, snapshot []models.Track) error {
	payload, err := formatter.ExportToJSON(formatter.NewRunExport(playlist, snapshot))
	if err != nil {
		return err
	}

	receipt, err := r.newSync(config).Push(ctx, payload)
	if err != nil {
		return err
	}

	if receipt.RemoteID != "" {
		r.writePlain("Pushed '%s' (remote %s)\n", playlist.Name(), receipt.RemoteID)
	} else {
		r.writePlain("Pushed '%s'\n", playlist.Name())
	}
	return nil
}

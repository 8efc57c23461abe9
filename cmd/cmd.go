// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// configFlag is shared by every command that touches the database or config.
func configFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

// setupCommand initializes configuration and the database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "setup",
		Usage:  "Create config.toml and initialize the database",
		Flags:  []cli.Flag{configFlag()},
		Action: r.Setup,
	}
}

// generateCommand runs a full playlist generation.
func generateCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "generate",
		Aliases: []string{"gen"},
		Usage:   "Generate a playlist from the catalog",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:    "name",
				Aliases: []string{"n"},
				Usage:   "Playlist name (defaults to the configured name)",
			},
			&cli.IntFlag{
				Name:    "slots",
				Aliases: []string{"s"},
				Usage:   "Slot count (0 derives from target run length)",
			},
			&cli.BoolFlag{
				Name:  "push",
				Usage: "Push the generated playlist to the sync proxy",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output the run report as JSON",
			},
		},
		Action: r.Generate,
	}
}

// classifyCommand proposes and optionally applies category migrations.
func classifyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "classify",
		Usage: "Propose lifecycle category migrations for the catalog",
		Flags: []cli.Flag{
			configFlag(),
			&cli.BoolFlag{
				Name:  "apply",
				Usage: "Apply the proposed migrations instead of only printing them",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output proposals as JSON",
			},
		},
		Action: r.Classify,
	}
}

// catalogCommand manages the track catalog.
func catalogCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "catalog",
		Usage: "Track catalog operations",
		Commands: []*cli.Command{
			{
				Name:  "import",
				Usage: "Import tracks from a CSV file",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:     "file",
						Aliases:  []string{"f"},
						Usage:    "CSV file to import",
						Required: true,
					},
				},
				Action: r.CatalogImport,
			},
			{
				Name:  "list",
				Usage: "List catalog tracks",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:  "category",
						Usage: "Only show tracks in this category",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.CatalogList,
			},
		},
	}
}

// playlistCommand inspects and exports generated playlists.
func playlistCommand(r *Runner) *cli.Command {
	selectionFlags := func() []cli.Flag {
		return []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:    "name",
				Aliases: []string{"n"},
				Usage:   "Playlist name (latest run is used)",
			},
			&cli.StringFlag{
				Name:  "id",
				Usage: "Playlist ID",
			},
		}
	}

	return &cli.Command{
		Name:  "playlist",
		Usage: "Generated playlist operations",
		Commands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Print a generated playlist",
				Flags: append(selectionFlags(),
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				),
				Action: r.PlaylistShow,
			},
			{
				Name:  "export",
				Usage: "Write a generated playlist to a file",
				Flags: append(selectionFlags(),
					&cli.StringFlag{
						Name:  "format",
						Usage: "Export format: csv, json, markdown, text",
						Value: "csv",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path",
					},
				),
				Action: r.PlaylistExport,
			},
			{
				Name:   "push",
				Usage:  "Push a generated playlist to the sync proxy",
				Flags:  selectionFlags(),
				Action: r.PlaylistPush,
			},
		},
	}
}

// serveCommand runs the local playlist API.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve generated playlists over a local HTTP API",
		Flags: []cli.Flag{
			configFlag(),
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to listen on",
				Value:   7070,
			},
		},
		Action: r.Serve,
	}
}

// tuiCommand launches the interactive terminal UI.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "tui",
		Usage:  "Browse generated playlists interactively",
		Flags:  []cli.Flag{configFlag()},
		Action: r.TUI,
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/desertthunder/rotor/internal/repositories"
	"github.com/desertthunder/rotor/internal/server"
	"github.com/urfave/cli/v3"
)

// Serve runs the local read-only playlist API until the context is cancelled.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	config := r.resolveConfig(cmd)

	db, err := r.openDB(config)
	if err != nil {
		return err
	}
	defer db.Close()

	tracks := repositories.NewTrackRepository(db)
	playlists := repositories.NewPlaylistRepository(db)

	router := server.NewRouter()
	router.Use(server.WithLogging(r.logger))
	router.Handler(server.NewPlaylistHandler(playlists, tracks))

	addr := fmt.Sprintf(":%d", cmd.Int("port"))
	srv := &http.Server{Addr: addr, Handler: router}

	go func() {
		<-ctx.Done()
		srv.Shutdown(context.Background())
	}()

	r.logger.Info("serving playlists", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

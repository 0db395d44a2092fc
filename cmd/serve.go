package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/hazelrye/deepcuts/internal/repositories"
	"github.com/hazelrye/deepcuts/internal/server"
	"github.com/hazelrye/deepcuts/internal/services"
	"github.com/hazelrye/deepcuts/internal/shared"
	"github.com/hazelrye/deepcuts/internal/tasks"
	"github.com/urfave/cli/v3"
)

func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the curation HTTP service",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Bind address (overrides config)",
			},
			&cli.IntFlag{
				Name:  "port",
				Usage: "Listen port (overrides config)",
			},
			&cli.BoolFlag{
				Name:  "open",
				Usage: "Open the service in the default browser after startup",
			},
		},
		Action: r.Serve,
	}
}

// Serve wires the full service and runs the HTTP server until interrupted.
//
// Sessions are persisted to the configured SQLite database; migrations run
// at startup so a fresh install works without a prior setup command.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	host := r.config.Server.Host
	if flagHost := cmd.String("host"); flagHost != "" {
		host = flagHost
	}
	port := r.config.Server.Port
	if flagPort := cmd.Int("port"); flagPort != 0 {
		port = int(flagPort)
	}

	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)
	if err := shared.RunMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	store := repositories.NewSessionRepository(db)

	tokens, err := services.NewTokenManager(r.config.Credentials.Spotify)
	if err != nil {
		return err
	}
	tokens.SetHTTPClient(r.httpClient)

	catalog := services.NewCatalogClient(r.httpClient, nil)
	engine := tasks.NewEngine(tokens, catalog, r.config.Curation, nil)
	exporter := tasks.NewExporter(catalog, store)

	api := server.NewAPI(r.logger, store, tokens, engine, exporter)

	router := server.NewBasicRouter()
	router.Use(server.Recover(r.logger), server.RequestLogger(r.logger))
	router.Handler(api)

	addr := fmt.Sprintf("%s:%d", host, port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Sweep sessions that have been idle for more than a day.
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				removed, err := store.DeleteIdle(ctx, time.Now().Add(-24*time.Hour))
				if err != nil {
					r.logger.Warn("session sweep failed", "error", err)
				} else if removed > 0 {
					r.logger.Info("swept idle sessions", "removed", removed)
				}
			}
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		r.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	if cmd.Bool("open") {
		if err := shared.OpenBrowser(fmt.Sprintf("http://%s/api/playlist", addr)); err != nil {
			r.logger.Warn("failed to open browser", "error", err)
		}
	}

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	r.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}
	return nil
}

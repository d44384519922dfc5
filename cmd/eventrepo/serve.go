package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/jensholdgaard/eventrepo/internal/clock"
	"github.com/jensholdgaard/eventrepo/internal/health"
	"github.com/jensholdgaard/eventrepo/internal/store"
	"github.com/jensholdgaard/eventrepo/internal/telemetry"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Open the store and serve health endpoints until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd)
		},
	}
}

func runServe(cmd *cobra.Command) error {
	ctx := cmd.Context()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	local := newLogger(cmd, cfg)
	slog.SetDefault(local)

	// Setup telemetry.
	tp, err := telemetry.Setup(ctx, cfg.Telemetry, local.Handler())
	if err != nil {
		slog.Warn("telemetry setup failed, continuing without OTEL export", slog.Any("error", err))
		tp = telemetry.NewNopProvider()
	}
	defer func() {
		if shutdownErr := tp.Shutdown(context.Background()); shutdownErr != nil {
			slog.Error("telemetry shutdown error", slog.Any("error", shutdownErr))
		}
	}()

	logger := tp.Logger
	clk := clock.Real{}

	repos, err := store.Open(ctx, cfg.Store, clk)
	if err != nil {
		return fmt.Errorf("opening store (driver=%s): %w", cfg.Store.Driver, err)
	}
	defer repos.Close()

	repo, err := telemetry.Instrument(repos.Events, tp, logger)
	if err != nil {
		return fmt.Errorf("instrumenting repository: %w", err)
	}
	logger.InfoContext(ctx, "store opened", slog.String("driver", cfg.Store.Driver))

	healthHandler := health.NewHandler(clk, cfg.Store.Driver,
		health.PingChecker(repos.Ping),
		health.RepositoryChecker(repo),
	)

	mux := http.NewServeMux()
	healthHandler.Register(mux)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.InfoContext(ctx, "starting health server", slog.Int("port", cfg.Server.Port))
		if listenErr := httpServer.ListenAndServe(); listenErr != nil && !errors.Is(listenErr, http.ErrServerClosed) {
			serveErr <- listenErr
		}
		close(serveErr)
	}()

	healthHandler.SetReady(true)
	logger.InfoContext(ctx, "eventrepo is running", slog.String("version", version))

	select {
	case <-ctx.Done():
		logger.Info("shutting down...")
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("health server: %w", err)
		}
	}
	healthHandler.SetReady(false)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", slog.Any("error", err))
	}

	logger.Info("shutdown complete")
	return nil
}

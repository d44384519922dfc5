package pebblestore

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"

	"github.com/jensholdgaard/eventrepo/internal/clock"
	"github.com/jensholdgaard/eventrepo/internal/config"
	"github.com/jensholdgaard/eventrepo/internal/store"
)

func init() {
	store.Register("pebble", openPebble)
}

// openPebble is the store.Driver for the "pebble" backend.
func openPebble(_ context.Context, cfg config.StoreConfig, clk clock.Clock) (*store.Repositories, error) {
	mode, err := ParseFsyncMode(cfg.Pebble.Fsync)
	if err != nil {
		return nil, err
	}
	metrics, err := NewOTelMetrics(otel.Meter("github.com/jensholdgaard/eventrepo/internal/store/pebble"))
	if err != nil {
		return nil, fmt.Errorf("creating metrics: %w", err)
	}

	db, err := OpenDB(Options{
		DataDir:       cfg.Pebble.DataDir,
		Fsync:         mode,
		FsyncInterval: cfg.Pebble.FsyncInterval,
		Metrics:       metrics,
	})
	if err != nil {
		return nil, fmt.Errorf("opening pebble at %s: %w", cfg.Pebble.DataDir, err)
	}

	repo, err := NewRepository(db, clk)
	if err != nil {
		db.Close()
		return nil, err
	}
	return &store.Repositories{
		Events: repo,
		Closer: db,
		Ping:   store.NopPing,
	}, nil
}

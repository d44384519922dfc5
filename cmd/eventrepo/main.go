package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	// Register store drivers so they are available via store.Open.
	_ "github.com/jensholdgaard/eventrepo/internal/store/pebble"
	_ "github.com/jensholdgaard/eventrepo/internal/store/redis"
	_ "github.com/jensholdgaard/eventrepo/internal/store/sqlstore"
)

var version = "dev"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		slog.Error("fatal error", slog.Any("error", err))
		cancel()
		os.Exit(1)
	}
}

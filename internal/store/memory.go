package store

import (
	"context"

	"github.com/jensholdgaard/eventrepo/internal/clock"
	"github.com/jensholdgaard/eventrepo/internal/config"
	"github.com/jensholdgaard/eventrepo/internal/memory"
)

func init() {
	Register("memory", openMemory)
}

// openMemory is the store.Driver for the in-process backend. Nothing
// survives the process.
func openMemory(_ context.Context, _ config.StoreConfig, clk clock.Clock) (*Repositories, error) {
	return &Repositories{
		Events: memory.New(clk),
		Ping:   NopPing,
	}, nil
}

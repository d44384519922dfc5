package redisstore

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/jensholdgaard/eventrepo/internal/clock"
	"github.com/jensholdgaard/eventrepo/internal/config"
	"github.com/jensholdgaard/eventrepo/internal/store"
)

func init() {
	store.Register("redis", openRedis)
}

// openRedis is the store.Driver for the "redis" backend.
func openRedis(ctx context.Context, cfg config.StoreConfig, clk clock.Clock) (*store.Repositories, error) {
	// Cluster ignores an empty hash tag, which would scatter the keys a
	// script touches across slots.
	if cfg.Redis.Prefix == "" {
		return nil, fmt.Errorf("redis prefix must not be empty")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("pinging redis at %s: %w", cfg.Redis.Addr, err)
	}

	return &store.Repositories{
		Events: New(client, cfg.Redis.Prefix, clk),
		Closer: client,
		Ping: func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		},
	}, nil
}

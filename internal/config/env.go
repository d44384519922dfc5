package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// FromEnv overlays EVENTREPO_* environment variables onto cfg. Unset
// variables leave the current value alone; malformed ones are an error.
func FromEnv(cfg *Config) error {
	strs := map[string]*string{
		"EVENTREPO_STORE_DRIVER":      &cfg.Store.Driver,
		"EVENTREPO_PEBBLE_DATA_DIR":   &cfg.Store.Pebble.DataDir,
		"EVENTREPO_PEBBLE_FSYNC":      &cfg.Store.Pebble.Fsync,
		"EVENTREPO_POSTGRES_HOST":     &cfg.Store.Postgres.Host,
		"EVENTREPO_POSTGRES_USER":     &cfg.Store.Postgres.User,
		"EVENTREPO_POSTGRES_PASSWORD": &cfg.Store.Postgres.Password,
		"EVENTREPO_POSTGRES_DBNAME":   &cfg.Store.Postgres.DBName,
		"EVENTREPO_POSTGRES_SSLMODE":  &cfg.Store.Postgres.SSLMode,
		"EVENTREPO_SQLITE_PATH":       &cfg.Store.SQLite.Path,
		"EVENTREPO_REDIS_ADDR":        &cfg.Store.Redis.Addr,
		"EVENTREPO_REDIS_PASSWORD":    &cfg.Store.Redis.Password,
		"EVENTREPO_REDIS_PREFIX":      &cfg.Store.Redis.Prefix,
		"EVENTREPO_OTLP_ENDPOINT":     &cfg.Telemetry.OTLPEndpoint,
		"EVENTREPO_LOG_LEVEL":         &cfg.Log.Level,
	}
	for key, dst := range strs {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	ints := map[string]*int{
		"EVENTREPO_POSTGRES_PORT": &cfg.Store.Postgres.Port,
		"EVENTREPO_REDIS_DB":      &cfg.Store.Redis.DB,
		"EVENTREPO_SERVER_PORT":   &cfg.Server.Port,
	}
	for key, dst := range ints {
		if v := os.Getenv(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			*dst = n
		}
	}

	if v := os.Getenv("EVENTREPO_PEBBLE_FSYNC_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("EVENTREPO_PEBBLE_FSYNC_INTERVAL: %w", err)
		}
		cfg.Store.Pebble.FsyncInterval = d
	}
	if v := os.Getenv("EVENTREPO_TELEMETRY_INSECURE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("EVENTREPO_TELEMETRY_INSECURE: %w", err)
		}
		cfg.Telemetry.Insecure = b
	}
	return nil
}

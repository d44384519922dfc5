package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store"`
	Server    ServerConfig    `yaml:"server"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Log       LogConfig       `yaml:"log"`
}

// StoreConfig selects the storage medium and holds its settings. Only the
// section matching Driver is read.
type StoreConfig struct {
	Driver   string         `yaml:"driver"` // memory, pebble, postgres, sqlite or redis
	Pebble   PebbleConfig   `yaml:"pebble"`
	Postgres PostgresConfig `yaml:"postgres"`
	SQLite   SQLiteConfig   `yaml:"sqlite"`
	Redis    RedisConfig    `yaml:"redis"`
}

// PebbleConfig holds settings for the embedded Pebble store.
type PebbleConfig struct {
	DataDir string `yaml:"data_dir"`
	// Fsync is "always", "interval" or "never".
	Fsync         string        `yaml:"fsync"`
	FsyncInterval time.Duration `yaml:"fsync_interval"`
}

// PostgresConfig holds database connection settings.
type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// DSN returns the Postgres connection string.
func (d PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// SQLiteConfig holds settings for the SQLite store.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// RedisConfig holds settings for the Redis store.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	// Prefix namespaces every key so several repositories can share a server.
	Prefix string `yaml:"prefix"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// TelemetryConfig holds OpenTelemetry settings.
type TelemetryConfig struct {
	ServiceName    string `yaml:"service_name"`
	ServiceVersion string `yaml:"service_version"`
	OTLPEndpoint   string `yaml:"otlp_endpoint"`
	Insecure       bool   `yaml:"insecure"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn or error
}

// SlogLevel returns the configured level, defaulting to info.
func (l LogConfig) SlogLevel() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(l.Level)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Store: StoreConfig{
			Driver: "memory",
			Pebble: PebbleConfig{
				DataDir:       "data",
				Fsync:         "always",
				FsyncInterval: 5 * time.Millisecond,
			},
			Postgres: PostgresConfig{
				Host:    "localhost",
				Port:    5432,
				DBName:  "eventrepo",
				SSLMode: "disable",
			},
			SQLite: SQLiteConfig{
				Path: "eventrepo.db",
			},
			Redis: RedisConfig{
				Addr:   "localhost:6379",
				Prefix: "eventrepo",
			},
		},
		Server: ServerConfig{
			Port:            8080,
			ShutdownTimeout: 15 * time.Second,
		},
		Telemetry: TelemetryConfig{
			ServiceName:    "eventrepo",
			ServiceVersion: "0.1.0",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads a YAML configuration file from the given path over the
// defaults, then applies EVENTREPO_* environment overrides. An empty path
// skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(filepath.Clean(path))
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := FromEnv(cfg); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	switch c.Store.Driver {
	case "memory", "postgres":
	case "redis":
		if c.Store.Redis.Prefix == "" {
			return fmt.Errorf("redis store requires a non-empty prefix")
		}
	case "pebble":
		if c.Store.Pebble.DataDir == "" {
			return fmt.Errorf("pebble store requires data_dir")
		}
		switch c.Store.Pebble.Fsync {
		case "always", "never":
		case "interval":
			if c.Store.Pebble.FsyncInterval <= 0 {
				return fmt.Errorf("pebble fsync_interval must be positive, got %s", c.Store.Pebble.FsyncInterval)
			}
		default:
			return fmt.Errorf("unsupported pebble fsync mode %q: must be \"always\", \"interval\" or \"never\"", c.Store.Pebble.Fsync)
		}
	case "sqlite":
		if c.Store.SQLite.Path == "" {
			return fmt.Errorf("sqlite store requires path")
		}
	default:
		return fmt.Errorf("unsupported store driver %q: must be one of memory, pebble, postgres, sqlite, redis", c.Store.Driver)
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server port %d out of range", c.Server.Port)
	}
	return nil
}

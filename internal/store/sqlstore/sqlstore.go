// Package sqlstore provides store.Drivers backed by SQL databases: Postgres
// through lib/pq and SQLite through modernc.org/sqlite. Both share one sqlx
// implementation instrumented with otelsql; queries are written with ?
// placeholders and rebound per dialect.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/XSAM/otelsql"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // postgres driver
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	_ "modernc.org/sqlite" // sqlite driver

	"github.com/jensholdgaard/eventrepo/internal/clock"
	"github.com/jensholdgaard/eventrepo/internal/config"
	"github.com/jensholdgaard/eventrepo/internal/store"
)

func init() {
	store.Register("postgres", openPostgres)
	store.Register("sqlite", openSQLite)
}

// openPostgres is the store.Driver for the "postgres" backend.
func openPostgres(ctx context.Context, cfg config.StoreConfig, clk clock.Clock) (*store.Repositories, error) {
	db, err := otelsql.Open("postgres", cfg.Postgres.DSN(),
		otelsql.WithAttributes(semconv.DBSystemPostgreSQL),
	)
	if err != nil {
		return nil, fmt.Errorf("opening postgres database: %w", err)
	}
	return open(ctx, db, Postgres, clk)
}

// openSQLite is the store.Driver for the "sqlite" backend.
func openSQLite(ctx context.Context, cfg config.StoreConfig, clk clock.Clock) (*store.Repositories, error) {
	db, err := otelsql.Open("sqlite", SQLiteDSN(cfg.SQLite.Path),
		otelsql.WithAttributes(semconv.DBSystemSqlite),
	)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1)
	return open(ctx, db, SQLite, clk)
}

// SQLiteDSN returns the connection string for the database file at path.
func SQLiteDSN(path string) string {
	return "file:" + path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

func open(ctx context.Context, db *sql.DB, d Dialect, clk clock.Clock) (*store.Repositories, error) {
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging %s database: %w", d.Name, err)
	}

	xdb := sqlx.NewDb(db, d.Name)
	repo := New(xdb, d, clk)
	if err := repo.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return &store.Repositories{
		Events: repo,
		Closer: xdb,
		Ping:   xdb.PingContext,
	}, nil
}

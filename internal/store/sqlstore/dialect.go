package sqlstore

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

//go:embed migrations/*.sql
var migrations embed.FS

// appendLockKey is the Postgres advisory lock serializing appends.
const appendLockKey int64 = 0x6576656e7473

// Dialect captures what differs between the SQL media.
type Dialect struct {
	// Name is the sqlx driver name used for placeholder rebinding.
	Name string
	// Precision is the timestamp resolution of the medium.
	Precision time.Duration
	// ReadOptions are the transaction options of a read.
	ReadOptions *sql.TxOptions

	schema          string
	lock            func(ctx context.Context, tx *sqlx.Tx) error
	encodeTime      func(time.Time) any
	uniqueViolation func(error) bool
}

// Postgres stores events in PostgreSQL. Appends serialize on a
// transaction-scoped advisory lock; reads run in a read-only repeatable read
// transaction.
var Postgres = Dialect{
	Name:        "postgres",
	Precision:   time.Microsecond,
	ReadOptions: &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true},
	schema:      "migrations/postgres.sql",
	lock: func(ctx context.Context, tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, appendLockKey)
		return err
	},
	encodeTime: func(t time.Time) any { return t },
	uniqueViolation: func(err error) bool {
		var pqErr *pq.Error
		return errors.As(err, &pqErr) && pqErr.Code == "23505"
	},
}

// SQLite stores events in a SQLite file. The pool holds a single connection,
// so transactions are serialized by the pool itself.
var SQLite = Dialect{
	Name:       "sqlite3",
	schema:     "migrations/sqlite.sql",
	lock:       func(context.Context, *sqlx.Tx) error { return nil },
	encodeTime: func(t time.Time) any { return t.Format(time.RFC3339Nano) },
	uniqueViolation: func(err error) bool {
		var sqliteErr *sqlite.Error
		if !errors.As(err, &sqliteErr) {
			return false
		}
		code := sqliteErr.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	},
}

// statements splits the embedded schema into executable statements.
func (d Dialect) statements() ([]string, error) {
	raw, err := migrations.ReadFile(d.schema)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", d.schema, err)
	}
	var out []string
	for _, stmt := range strings.Split(string(raw), ";") {
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			out = append(out, stmt)
		}
	}
	return out, nil
}

// timestamp scans the created_at column of either medium.
type timestamp struct {
	time.Time
}

func (t *timestamp) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		t.Time = v.UTC()
	case string:
		return t.parse(v)
	case []byte:
		return t.parse(string(v))
	default:
		return fmt.Errorf("unsupported created_at type %T", src)
	}
	return nil
}

func (t *timestamp) parse(s string) error {
	parsed, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return fmt.Errorf("parsing created_at: %w", err)
	}
	t.Time = parsed.UTC()
	return nil
}

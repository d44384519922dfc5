package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"

	"github.com/jmoiron/sqlx"

	"github.com/jensholdgaard/eventrepo/internal/clock"
	"github.com/jensholdgaard/eventrepo/internal/event"
)

var _ event.Repository = (*Repository)(nil)

const eventColumns = `e.position, e.event_id, e.event_type, e.stream, e.data, e.metadata, e.created_at`

// row is the scanned form of an events row.
type row struct {
	Position  int64     `db:"position"`
	ID        string    `db:"event_id"`
	Type      string    `db:"event_type"`
	Stream    string    `db:"stream"`
	Data      string    `db:"data"`
	Metadata  string    `db:"metadata"`
	CreatedAt timestamp `db:"created_at"`
}

func (r row) event() event.Event {
	return event.Event{
		ID:        r.ID,
		Type:      r.Type,
		Data:      []byte(r.Data),
		Metadata:  []byte(r.Metadata),
		Stream:    r.Stream,
		Position:  uint64(r.Position),
		CreatedAt: r.CreatedAt.Time,
	}
}

// Repository implements event.Repository on a SQL database.
type Repository struct {
	db      *sqlx.DB
	dialect Dialect
	clock   clock.Clock
}

// New returns a Repository on db. Call Migrate before first use on a fresh
// database.
func New(db *sqlx.DB, d Dialect, clk clock.Clock) *Repository {
	return &Repository{db: db, dialect: d, clock: clk}
}

// Migrate applies the embedded schema. It is idempotent.
func (r *Repository) Migrate(ctx context.Context) error {
	stmts, err := r.dialect.statements()
	if err != nil {
		return err
	}
	for _, stmt := range stmts {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("applying %s schema: %w", r.dialect.Name, err)
		}
	}
	return nil
}

func (r *Repository) Create(ctx context.Context, e event.Event, stream string) (event.Event, error) {
	if err := event.ValidateStream(stream); err != nil {
		return event.Event{}, err
	}
	e, err := event.Normalize(e)
	if err != nil {
		return event.Event{}, err
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return event.Event{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := r.dialect.lock(ctx, tx); err != nil {
		return event.Event{}, fmt.Errorf("acquiring append lock: %w", err)
	}

	var exists bool
	if err := tx.GetContext(ctx, &exists,
		tx.Rebind(`SELECT EXISTS (SELECT 1 FROM events WHERE event_id = ?)`), e.ID); err != nil {
		return event.Event{}, fmt.Errorf("checking identity %s: %w", e.ID, err)
	}
	if exists {
		return event.Event{}, event.DuplicateError(e.ID)
	}

	var last int64
	if err := tx.GetContext(ctx, &last, `SELECT COALESCE(MAX(position), 0) FROM events`); err != nil {
		return event.Event{}, fmt.Errorf("reading sequence: %w", err)
	}

	e.Stream = stream
	e.Position = uint64(last + 1)
	e.CreatedAt = r.clock.Now().UTC().Truncate(r.dialect.Precision)

	if _, err := tx.ExecContext(ctx, tx.Rebind(
		`INSERT INTO events (position, event_id, event_type, stream, data, metadata, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`),
		last+1, e.ID, e.Type, stream, string(e.Data), string(e.Metadata), r.dialect.encodeTime(e.CreatedAt),
	); err != nil {
		if r.dialect.uniqueViolation(err) {
			return event.Event{}, fmt.Errorf("%w: %v", event.DuplicateError(e.ID), err)
		}
		return event.Event{}, fmt.Errorf("inserting event %s: %w", e.ID, err)
	}
	if _, err := tx.ExecContext(ctx, tx.Rebind(
		`INSERT INTO stream_events (stream, position) VALUES (?, ?)`), stream, last+1,
	); err != nil {
		return event.Event{}, fmt.Errorf("indexing event %s in %s: %w", e.ID, stream, err)
	}

	if err := tx.Commit(); err != nil {
		return event.Event{}, fmt.Errorf("committing event %s: %w", e.ID, err)
	}
	return e, nil
}

func (r *Repository) HasEvent(ctx context.Context, id string) (bool, error) {
	var exists bool
	if err := r.db.GetContext(ctx, &exists,
		r.db.Rebind(`SELECT EXISTS (SELECT 1 FROM events WHERE event_id = ?)`), id); err != nil {
		return false, fmt.Errorf("checking identity %s: %w", id, err)
	}
	return exists, nil
}

func (r *Repository) LastStreamEvent(ctx context.Context, stream string) (event.Event, bool, error) {
	events, err := r.readStream(ctx, stream, event.Head(), 1, event.Backward)
	if err != nil {
		return event.Event{}, false, err
	}
	if len(events) == 0 {
		return event.Event{}, false, nil
	}
	return events[0], true, nil
}

func (r *Repository) DeleteStream(ctx context.Context, stream string) error {
	if err := event.ValidateStream(stream); err != nil {
		return err
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := r.dialect.lock(ctx, tx); err != nil {
		return fmt.Errorf("acquiring append lock: %w", err)
	}
	if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM stream_events WHERE stream = ?`), stream); err != nil {
		return fmt.Errorf("deleting stream %s: %w", stream, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing delete of %s: %w", stream, err)
	}
	return nil
}

func (r *Repository) ReadAllStreamsForward(ctx context.Context, from event.Position, count int) ([]event.Event, error) {
	return r.readAll(ctx, from, count, event.Forward)
}

func (r *Repository) ReadAllStreamsBackward(ctx context.Context, from event.Position, count int) ([]event.Event, error) {
	return r.readAll(ctx, from, count, event.Backward)
}

func (r *Repository) ReadEventsForward(ctx context.Context, stream string, from event.Position, count int) ([]event.Event, error) {
	return r.readStream(ctx, stream, from, count, event.Forward)
}

func (r *Repository) ReadEventsBackward(ctx context.Context, stream string, from event.Position, count int) ([]event.Event, error) {
	return r.readStream(ctx, stream, from, count, event.Backward)
}

func (r *Repository) ReadStreamEventsForward(ctx context.Context, stream string) ([]event.Event, error) {
	return r.readStream(ctx, stream, event.Head(), event.Unbounded, event.Forward)
}

func (r *Repository) ReadStreamEventsBackward(ctx context.Context, stream string) ([]event.Event, error) {
	return r.readStream(ctx, stream, event.Head(), event.Unbounded, event.Backward)
}

// window returns the comparison, order and head bound of a read in dir.
func window(dir event.Direction) (cmp, order string, head int64) {
	if dir == event.Backward {
		return "<", "DESC", math.MaxInt64
	}
	return ">", "ASC", 0
}

func (r *Repository) readAll(ctx context.Context, from event.Position, count int, dir event.Direction) ([]event.Event, error) {
	if err := event.ValidateCount(count); err != nil {
		return nil, err
	}
	cmp, order, bound := window(dir)

	var rows []row
	err := r.readTx(ctx, func(tx *sqlx.Tx) error {
		if !from.IsHead() {
			err := tx.GetContext(ctx, &bound,
				tx.Rebind(`SELECT position FROM events WHERE event_id = ?`), from.EventID())
			if errors.Is(err, sql.ErrNoRows) {
				return event.CursorError("", from)
			}
			if err != nil {
				return fmt.Errorf("resolving cursor %s: %w", from, err)
			}
		}
		query := tx.Rebind(`SELECT ` + eventColumns + ` FROM events e
			WHERE e.position ` + cmp + ` ? ORDER BY e.position ` + order + ` LIMIT ?`)
		if err := tx.SelectContext(ctx, &rows, query, bound, int64(count)); err != nil {
			return fmt.Errorf("reading global order: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toEvents(rows), nil
}

func (r *Repository) readStream(ctx context.Context, stream string, from event.Position, count int, dir event.Direction) ([]event.Event, error) {
	if err := event.ValidateStream(stream); err != nil {
		return nil, err
	}
	if err := event.ValidateCount(count); err != nil {
		return nil, err
	}
	cmp, order, bound := window(dir)

	var rows []row
	err := r.readTx(ctx, func(tx *sqlx.Tx) error {
		if !from.IsHead() {
			err := tx.GetContext(ctx, &bound, tx.Rebind(
				`SELECT se.position FROM stream_events se
				 JOIN events e ON e.position = se.position
				 WHERE se.stream = ? AND e.event_id = ?`), stream, from.EventID())
			if errors.Is(err, sql.ErrNoRows) {
				return event.CursorError(stream, from)
			}
			if err != nil {
				return fmt.Errorf("resolving cursor %s: %w", from, err)
			}
		}
		query := tx.Rebind(`SELECT ` + eventColumns + ` FROM stream_events se
			JOIN events e ON e.position = se.position
			WHERE se.stream = ? AND se.position ` + cmp + ` ?
			ORDER BY se.position ` + order + ` LIMIT ?`)
		if err := tx.SelectContext(ctx, &rows, query, stream, bound, int64(count)); err != nil {
			return fmt.Errorf("reading stream %s: %w", stream, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toEvents(rows), nil
}

// readTx runs fn in a read transaction so the cursor lookup and the window
// see the same snapshot.
func (r *Repository) readTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, r.dialect.ReadOptions)
	if err != nil {
		return fmt.Errorf("beginning read transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func toEvents(rows []row) []event.Event {
	out := make([]event.Event, len(rows))
	for i, r := range rows {
		out[i] = r.event()
	}
	return out
}

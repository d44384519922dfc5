// Package redisstore is an event repository kept in Redis. Creates and reads
// run as Lua scripts, so each is atomic with respect to every other command
// on the server.
package redisstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/jensholdgaard/eventrepo/internal/clock"
	"github.com/jensholdgaard/eventrepo/internal/event"
)

var _ event.Repository = (*Repository)(nil)

// Repository implements event.Repository on a Redis server. Every key lives
// under one hash tag so the whole repository maps to a single cluster slot.
type Repository struct {
	client redis.UniversalClient
	prefix string
	clock  clock.Clock
}

// New returns a Repository storing its keys under prefix.
func New(client redis.UniversalClient, prefix string, clk clock.Clock) *Repository {
	return &Repository{client: client, prefix: "{" + prefix + "}:", clock: clk}
}

func (r *Repository) keyEvents() string            { return r.prefix + "events" }
func (r *Repository) keyGlobal() string            { return r.prefix + "global" }
func (r *Repository) keyGlobalPos() string         { return r.prefix + "gpos" }
func (r *Repository) keyStream(name string) string { return r.prefix + "stream:" + name }
func (r *Repository) keyStreamPos(name string) string {
	return r.prefix + "spos:" + name
}

func (r *Repository) Create(ctx context.Context, e event.Event, stream string) (event.Event, error) {
	if err := event.ValidateStream(stream); err != nil {
		return event.Event{}, err
	}
	e, err := event.Normalize(e)
	if err != nil {
		return event.Event{}, err
	}
	e.Stream = stream
	e.CreatedAt = r.clock.Now().UTC()

	rec, err := encode(e)
	if err != nil {
		return event.Event{}, fmt.Errorf("encoding event %s: %w", e.ID, err)
	}

	keys := []string{r.keyEvents(), r.keyGlobalPos(), r.keyGlobal(), r.keyStream(stream), r.keyStreamPos(stream)}
	pos, err := createScript.Run(ctx, r.client, keys, e.ID, rec).Int64()
	if err != nil {
		if isReply(err, "DUPLICATE") {
			return event.Event{}, event.DuplicateError(e.ID)
		}
		return event.Event{}, fmt.Errorf("appending event %s: %w", e.ID, err)
	}
	e.Position = uint64(pos)
	return e, nil
}

func (r *Repository) HasEvent(ctx context.Context, id string) (bool, error) {
	ok, err := r.client.HExists(ctx, r.keyEvents(), id).Result()
	if err != nil {
		return false, fmt.Errorf("checking identity %s: %w", id, err)
	}
	return ok, nil
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
	if err := r.client.Del(ctx, r.keyStream(stream), r.keyStreamPos(stream)).Err(); err != nil {
		return fmt.Errorf("deleting stream %s: %w", stream, err)
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

func (r *Repository) readAll(ctx context.Context, from event.Position, count int, dir event.Direction) ([]event.Event, error) {
	if err := event.ValidateCount(count); err != nil {
		return nil, err
	}
	keys := []string{r.keyGlobal(), r.keyGlobalPos(), r.keyEvents(), r.keyGlobalPos()}
	out, err := r.read(ctx, keys, from, count, dir)
	if isReply(err, "CURSOR_NOT_FOUND") {
		return nil, event.CursorError("", from)
	}
	return out, err
}

func (r *Repository) readStream(ctx context.Context, stream string, from event.Position, count int, dir event.Direction) ([]event.Event, error) {
	if err := event.ValidateStream(stream); err != nil {
		return nil, err
	}
	if err := event.ValidateCount(count); err != nil {
		return nil, err
	}
	keys := []string{r.keyStream(stream), r.keyStreamPos(stream), r.keyEvents(), r.keyGlobalPos()}
	out, err := r.read(ctx, keys, from, count, dir)
	if isReply(err, "CURSOR_NOT_FOUND") {
		return nil, event.CursorError(stream, from)
	}
	return out, err
}

func (r *Repository) read(ctx context.Context, keys []string, from event.Position, count int, dir event.Direction) ([]event.Event, error) {
	d := "f"
	if dir == event.Backward {
		d = "b"
	}
	res, err := readScript.Run(ctx, r.client, keys, from.EventID(), d, count).StringSlice()
	if err != nil {
		if isReply(err, "CURSOR_NOT_FOUND") {
			return nil, err
		}
		return nil, fmt.Errorf("reading window: %w", err)
	}
	if len(res)%2 != 0 {
		return nil, fmt.Errorf("reading window: odd reply length %d", len(res))
	}

	out := make([]event.Event, 0, len(res)/2)
	for i := 0; i < len(res); i += 2 {
		e, err := decode(res[i])
		if err != nil {
			return nil, fmt.Errorf("decoding event: %w", err)
		}
		pos, err := strconv.ParseUint(res[i+1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("decoding position of %s: %w", e.ID, err)
		}
		e.Position = pos
		out = append(out, e)
	}
	return out, nil
}

// isReply reports whether err is the script error reply msg.
func isReply(err error, msg string) bool {
	var rerr redis.Error
	return errors.As(err, &rerr) && strings.HasPrefix(rerr.Error(), msg)
}

// encode writes e as JSON without HTML escaping, so payload bytes are stored
// exactly as canonicalized.
func encode(e event.Event) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(e); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

func decode(s string) (event.Event, error) {
	var e event.Event
	if err := json.Unmarshal([]byte(s), &e); err != nil {
		return event.Event{}, err
	}
	e.CreatedAt = e.CreatedAt.UTC()
	return e, nil
}

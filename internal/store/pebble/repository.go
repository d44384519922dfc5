package pebblestore

import (
	"context"
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/cockroachdb/pebble"

	"github.com/jensholdgaard/eventrepo/internal/clock"
	"github.com/jensholdgaard/eventrepo/internal/event"
)

var _ event.Repository = (*Repository)(nil)

// Repository is an event.Repository stored in Pebble.
//
// Writers (create and delete) are serialized by mu and commit one batch
// each. Readers never take mu; they scan a snapshot, so every read sees the
// repository as of one committed batch.
type Repository struct {
	db    *DB
	clock clock.Clock

	mu      sync.Mutex
	lastSeq uint64
}

// NewRepository opens the event repository stored in db.
func NewRepository(db *DB, clk clock.Clock) (*Repository, error) {
	r := &Repository{db: db, clock: clk}
	v, ok, err := db.get(db.inner, keyMeta)
	if err != nil {
		return nil, fmt.Errorf("reading sequence: %w", err)
	}
	if ok {
		if len(v) != 8 {
			return nil, fmt.Errorf("reading sequence: %w", errCorruptRecord)
		}
		r.lastSeq = binary.BigEndian.Uint64(v)
	}
	return r, nil
}

func (r *Repository) Create(_ context.Context, e event.Event, stream string) (event.Event, error) {
	if err := event.ValidateStream(stream); err != nil {
		return event.Event{}, err
	}
	e, err := event.Normalize(e)
	if err != nil {
		return event.Event{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	_, exists, err := r.db.get(r.db.inner, keyIdentity(e.ID))
	if err != nil {
		return event.Event{}, fmt.Errorf("checking identity %s: %w", e.ID, err)
	}
	if exists {
		return event.Event{}, event.DuplicateError(e.ID)
	}

	seq := r.lastSeq + 1
	e.Stream = stream
	e.Position = seq
	e.CreatedAt = r.clock.Now().UTC()

	b := r.db.NewBatch()
	defer b.Close()
	var seqBuf [8]byte
	binary.BigEndian.PutUint64(seqBuf[:], seq)
	for _, kv := range [][2][]byte{
		{keyGlobal(seq), encodeRecord(e)},
		{keyIdentity(e.ID), seqBuf[:]},
		{keyStreamEntry(stream, seq), nil},
		{keyMeta, seqBuf[:]},
	} {
		if err := b.Set(kv[0], kv[1], nil); err != nil {
			return event.Event{}, fmt.Errorf("staging event %s: %w", e.ID, err)
		}
	}
	if err := r.db.CommitBatch(b); err != nil {
		return event.Event{}, fmt.Errorf("committing event %s: %w", e.ID, err)
	}
	r.lastSeq = seq
	return e, nil
}

func (r *Repository) HasEvent(_ context.Context, id string) (bool, error) {
	_, ok, err := r.db.get(r.db.inner, keyIdentity(id))
	if err != nil {
		return false, fmt.Errorf("checking identity %s: %w", id, err)
	}
	return ok, nil
}

func (r *Repository) LastStreamEvent(_ context.Context, stream string) (event.Event, bool, error) {
	if err := event.ValidateStream(stream); err != nil {
		return event.Event{}, false, err
	}
	snap := r.db.NewSnapshot()
	defer snap.Close()

	events, err := r.scanStream(snap, stream, event.Head(), 1, event.Backward)
	if err != nil {
		return event.Event{}, false, err
	}
	if len(events) == 0 {
		return event.Event{}, false, nil
	}
	return events[0], true, nil
}

func (r *Repository) DeleteStream(_ context.Context, stream string) error {
	if err := event.ValidateStream(stream); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	prefix := keyStreamPrefix(stream)
	b := r.db.NewBatch()
	defer b.Close()
	if err := b.DeleteRange(prefix, prefixEnd(prefix), nil); err != nil {
		return fmt.Errorf("staging delete of stream %s: %w", stream, err)
	}
	if err := r.db.CommitBatch(b); err != nil {
		return fmt.Errorf("deleting stream %s: %w", stream, err)
	}
	return nil
}

func (r *Repository) ReadAllStreamsForward(_ context.Context, from event.Position, count int) ([]event.Event, error) {
	return r.readAll(from, count, event.Forward)
}

func (r *Repository) ReadAllStreamsBackward(_ context.Context, from event.Position, count int) ([]event.Event, error) {
	return r.readAll(from, count, event.Backward)
}

func (r *Repository) ReadEventsForward(_ context.Context, stream string, from event.Position, count int) ([]event.Event, error) {
	return r.readStream(stream, from, count, event.Forward)
}

func (r *Repository) ReadEventsBackward(_ context.Context, stream string, from event.Position, count int) ([]event.Event, error) {
	return r.readStream(stream, from, count, event.Backward)
}

func (r *Repository) ReadStreamEventsForward(_ context.Context, stream string) ([]event.Event, error) {
	return r.readStream(stream, event.Head(), event.Unbounded, event.Forward)
}

func (r *Repository) ReadStreamEventsBackward(_ context.Context, stream string) ([]event.Event, error) {
	return r.readStream(stream, event.Head(), event.Unbounded, event.Backward)
}

func (r *Repository) readAll(from event.Position, count int, dir event.Direction) ([]event.Event, error) {
	if err := event.ValidateCount(count); err != nil {
		return nil, err
	}
	snap := r.db.NewSnapshot()
	defer snap.Close()

	var start []byte
	if !from.IsHead() {
		seq, ok, err := r.lookup(snap, from.EventID())
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, event.CursorError("", from)
		}
		start = keyGlobal(seq)
	}

	iter, err := snap.NewIter(&pebble.IterOptions{LowerBound: globalPrefix, UpperBound: prefixEnd(globalPrefix)})
	if err != nil {
		return nil, fmt.Errorf("opening iterator: %w", err)
	}
	defer iter.Close()

	var out []event.Event
	for valid := seek(iter, start, dir); valid && len(out) < count; valid = step(iter, dir) {
		e, err := decodeRecord(iter.Value(), seqSuffix(iter.Key()))
		if err != nil {
			return nil, fmt.Errorf("decoding %x: %w", iter.Key(), err)
		}
		out = append(out, e)
	}
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("scanning global order: %w", err)
	}
	return orEmpty(out), nil
}

func (r *Repository) readStream(stream string, from event.Position, count int, dir event.Direction) ([]event.Event, error) {
	if err := event.ValidateStream(stream); err != nil {
		return nil, err
	}
	if err := event.ValidateCount(count); err != nil {
		return nil, err
	}
	snap := r.db.NewSnapshot()
	defer snap.Close()
	return r.scanStream(snap, stream, from, count, dir)
}

// scanStream walks the stream index of stream inside snap and loads each
// referenced record.
func (r *Repository) scanStream(snap *pebble.Snapshot, stream string, from event.Position, count int, dir event.Direction) ([]event.Event, error) {
	var start []byte
	if !from.IsHead() {
		seq, ok, err := r.lookup(snap, from.EventID())
		if err != nil {
			return nil, err
		}
		if ok {
			start = keyStreamEntry(stream, seq)
			_, ok, err = r.db.get(snap, start)
			if err != nil {
				return nil, fmt.Errorf("checking cursor: %w", err)
			}
		}
		if !ok {
			return nil, event.CursorError(stream, from)
		}
	}

	prefix := keyStreamPrefix(stream)
	iter, err := snap.NewIter(&pebble.IterOptions{LowerBound: prefix, UpperBound: prefixEnd(prefix)})
	if err != nil {
		return nil, fmt.Errorf("opening iterator: %w", err)
	}
	defer iter.Close()

	var out []event.Event
	for valid := seek(iter, start, dir); valid && len(out) < count; valid = step(iter, dir) {
		seq := seqSuffix(iter.Key())
		rec, ok, err := r.db.get(snap, keyGlobal(seq))
		if err != nil {
			return nil, fmt.Errorf("loading event %d: %w", seq, err)
		}
		if !ok {
			return nil, fmt.Errorf("loading event %d: %w", seq, errCorruptRecord)
		}
		e, err := decodeRecord(rec, seq)
		if err != nil {
			return nil, fmt.Errorf("decoding event %d: %w", seq, err)
		}
		out = append(out, e)
	}
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("scanning stream %s: %w", stream, err)
	}
	return orEmpty(out), nil
}

// lookup resolves an event id to its global sequence.
func (r *Repository) lookup(snap *pebble.Snapshot, id string) (uint64, bool, error) {
	v, ok, err := r.db.get(snap, keyIdentity(id))
	if err != nil {
		return 0, false, fmt.Errorf("resolving cursor %s: %w", id, err)
	}
	if !ok {
		return 0, false, nil
	}
	if len(v) != 8 {
		return 0, false, fmt.Errorf("resolving cursor %s: %w", id, errCorruptRecord)
	}
	return binary.BigEndian.Uint64(v), true, nil
}

// seek positions iter on the first key of a window. A nil start means head;
// otherwise the key start itself is skipped.
func seek(iter *pebble.Iterator, start []byte, dir event.Direction) bool {
	if dir == event.Backward {
		if start == nil {
			return iter.Last()
		}
		return iter.SeekLT(start)
	}
	if start == nil {
		return iter.First()
	}
	if !iter.SeekGE(start) {
		return false
	}
	if string(iter.Key()) == string(start) {
		return iter.Next()
	}
	return true
}

func step(iter *pebble.Iterator, dir event.Direction) bool {
	if dir == event.Backward {
		return iter.Prev()
	}
	return iter.Next()
}

func orEmpty(events []event.Event) []event.Event {
	if events == nil {
		return []event.Event{}
	}
	return events
}

package memory

import (
	"context"
	"sync"

	"github.com/jensholdgaard/eventrepo/internal/clock"
	"github.com/jensholdgaard/eventrepo/internal/event"
)

var _ event.Repository = (*Repository)(nil)

// Repository is an event.Repository held entirely in process memory.
type Repository struct {
	mu      sync.RWMutex
	seq     *sequencer
	streams *streamIndex
	clock   clock.Clock
}

// New returns an empty Repository that stamps events with clk.
func New(clk clock.Clock) *Repository {
	return &Repository{
		seq:     newSequencer(),
		streams: newStreamIndex(),
		clock:   clk,
	}
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

	e.Stream = stream
	e.CreatedAt = r.clock.Now()
	off, stored, err := r.seq.append(e)
	if err != nil {
		return event.Event{}, err
	}
	r.streams.append(stream, off)
	return stored, nil
}

func (r *Repository) HasEvent(_ context.Context, id string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.seq.has(id), nil
}

func (r *Repository) LastStreamEvent(_ context.Context, stream string) (event.Event, bool, error) {
	if err := event.ValidateStream(stream); err != nil {
		return event.Event{}, false, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	off, ok := r.streams.last(stream)
	if !ok {
		return event.Event{}, false, nil
	}
	return r.seq.at(off), true, nil
}

func (r *Repository) DeleteStream(_ context.Context, stream string) error {
	if err := event.ValidateStream(stream); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.streams.delete(stream)
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
	r.mu.RLock()
	defer r.mu.RUnlock()

	index, ok := r.seq.resolve(from, dir)
	if !ok {
		return nil, event.CursorError("", from)
	}
	if dir == event.Backward {
		return r.seq.windowBackward(index, count), nil
	}
	return r.seq.windowForward(index, count), nil
}

func (r *Repository) readStream(stream string, from event.Position, count int, dir event.Direction) ([]event.Event, error) {
	if err := event.ValidateStream(stream); err != nil {
		return nil, err
	}
	if err := event.ValidateCount(count); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out, ok := r.streams.read(r.seq, stream, from, count, dir)
	if !ok {
		return nil, event.CursorError(stream, from)
	}
	return out, nil
}

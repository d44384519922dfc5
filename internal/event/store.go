package event

import "context"

// Repository is an append-only store of events grouped into named streams.
//
// Every event has a position in the global order and, while its stream has
// not been deleted, a position in that stream's order. Reads take a Position
// cursor and a positive count and return at most count events.
type Repository interface {
	// Create appends e to the global order and to stream, returning the
	// stored event with Stream, Position and CreatedAt populated.
	Create(ctx context.Context, e Event, stream string) (Event, error)

	// HasEvent reports whether an event with id was ever created.
	HasEvent(ctx context.Context, id string) (bool, error)
	// LastStreamEvent returns the most recent event of stream. The boolean
	// is false when the stream is empty, deleted or was never written.
	LastStreamEvent(ctx context.Context, stream string) (Event, bool, error)
	// DeleteStream removes the stream's index. Events stay in the global
	// order and their identifiers stay taken.
	DeleteStream(ctx context.Context, stream string) error

	ReadAllStreamsForward(ctx context.Context, from Position, count int) ([]Event, error)
	ReadAllStreamsBackward(ctx context.Context, from Position, count int) ([]Event, error)

	// ReadEventsForward and ReadEventsBackward scan one stream from a cursor.
	ReadEventsForward(ctx context.Context, stream string, from Position, count int) ([]Event, error)
	ReadEventsBackward(ctx context.Context, stream string, from Position, count int) ([]Event, error)

	// ReadStreamEventsForward and ReadStreamEventsBackward read a whole stream.
	ReadStreamEventsForward(ctx context.Context, stream string) ([]Event, error)
	ReadStreamEventsBackward(ctx context.Context, stream string) ([]Event, error)
}

// Unbounded is the window size used for whole-stream reads.
const Unbounded = int(^uint(0) >> 1)

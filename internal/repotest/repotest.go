// Package repotest is a conformance suite for event.Repository
// implementations. Every backend runs the same cases through Run.
package repotest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/jensholdgaard/eventrepo/internal/clock"
	"github.com/jensholdgaard/eventrepo/internal/event"
)

// Factory returns a fresh, empty repository that stamps events with clk.
// Cleanup belongs to the factory, usually through t.Cleanup.
type Factory func(t *testing.T, clk clock.Clock) event.Repository

// Epoch is the first timestamp handed out by the suite clock. It is whole
// seconds so every medium stores it without truncation.
var Epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

const testType = "TestDomainEvent"

// Run executes the suite against repositories built by newRepo.
func Run(t *testing.T, newRepo Factory) {
	cases := []struct {
		name string
		fn   func(t *testing.T, r event.Repository)
	}{
		{"just created is empty", testEmpty},
		{"created event is stored in given stream", testCreateStores},
		{"create assigns stream position and time", testCreateAssigns},
		{"create canonicalizes payload", testCreateCanonical},
		{"create keeps number literals", testCreateKeepsNumbers},
		{"returned events are detached from storage", testDetached},
		{"create generates missing id", testCreateGeneratesID},
		{"create rejects invalid arguments", testCreateInvalid},
		{"does not have deleted streams", testDeleteStream},
		{"delete stream keeps other streams", testDeleteIsLocal},
		{"delete stream keeps identities", testDeleteKeepsIdentity},
		{"has or has not domain event", testHasEvent},
		{"knows last event in stream", testLastStreamEvent},
		{"duplicate identity leaves no trace", testDuplicate},
		{"reads batch of events from stream forward and backward", testReadEvents},
		{"reads all stream events forward and backward", testReadStreamEvents},
		{"reads batch of events from all streams forward and backward", testReadAllStreams},
		{"unbounded backward read is reversed forward read", testReverseSymmetry},
		{"cursor symmetry", testCursorSymmetry},
		{"cursor not found", testCursorNotFound},
		{"read rejects invalid arguments", testReadInvalid},
		{"concurrent creates are totally ordered", testConcurrentCreate},
		{"concurrent duplicates admit one", testConcurrentDuplicate},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			clk := &clock.Step{Start: Epoch, Interval: time.Second}
			tc.fn(t, newRepo(t, clk))
		})
	}
}

func newStream() string { return uuid.NewString() }

func testEvent(id string) event.Event {
	return event.Event{ID: id, Type: testType}
}

func create(t *testing.T, r event.Repository, stream string, ids ...string) []event.Event {
	t.Helper()
	out := make([]event.Event, 0, len(ids))
	for _, id := range ids {
		e, err := r.Create(context.Background(), testEvent(id), stream)
		require.NoError(t, err, "create %s in %s", id, stream)
		out = append(out, e)
	}
	return out
}

func numbered(n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = strconv.Itoa(i + 1)
	}
	return ids
}

func reversed(ids []string) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[len(ids)-1-i] = id
	}
	return out
}

func testEmpty(t *testing.T, r event.Repository) {
	ctx := context.Background()

	got, err := r.ReadAllStreamsForward(ctx, event.Head(), 1)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = r.ReadAllStreamsBackward(ctx, event.Head(), 1)
	require.NoError(t, err)
	assert.Empty(t, got)

	_, ok, err := r.LastStreamEvent(ctx, newStream())
	require.NoError(t, err)
	assert.False(t, ok)

	got, err = r.ReadStreamEventsForward(ctx, newStream())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func testCreateStores(t *testing.T, r event.Repository) {
	ctx := context.Background()
	stream, other := newStream(), newStream()

	created, err := r.Create(ctx, event.Event{Type: testType}, stream)
	require.NoError(t, err)
	assert.Equal(t, testType, created.Type)
	assert.JSONEq(t, `{}`, string(created.Data))

	all, err := r.ReadAllStreamsForward(ctx, event.Head(), 1)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, created, all[0])

	got, err := r.ReadStreamEventsForward(ctx, stream)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, created, got[0])

	got, err = r.ReadStreamEventsForward(ctx, other)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func testCreateAssigns(t *testing.T, r event.Repository) {
	stream := newStream()
	got := create(t, r, stream, "a", "b")

	for i, e := range got {
		assert.Equal(t, stream, e.Stream)
		assert.Equal(t, uint64(i+1), e.Position)
		assert.True(t, e.CreatedAt.Equal(Epoch.Add(time.Duration(i)*time.Second)),
			"created_at = %v", e.CreatedAt)
	}

	last, ok, err := r.LastStreamEvent(context.Background(), stream)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, got[1], last)
}

func testCreateCanonical(t *testing.T, r event.Repository) {
	ctx := context.Background()
	stream := newStream()

	in := event.Event{
		ID:       "canon",
		Type:     testType,
		Data:     json.RawMessage(`{ "b": [1, 2], "a": "x" }`),
		Metadata: json.RawMessage(`{"z":true,"k":null}`),
	}
	_, err := r.Create(ctx, in, stream)
	require.NoError(t, err)

	got, err := r.ReadStreamEventsForward(ctx, stream)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, `{"a":"x","b":[1,2]}`, string(got[0].Data))
	assert.Equal(t, `{"k":null,"z":true}`, string(got[0].Metadata))
}

func testCreateKeepsNumbers(t *testing.T, r event.Repository) {
	ctx := context.Background()
	stream := newStream()

	in := event.Event{
		ID:       "numbers",
		Type:     testType,
		Data:     json.RawMessage(`{"n":12345678901234567890,"amount":0.1000000000000000055511151231257827}`),
		Metadata: json.RawMessage(`{"big":1e400}`),
	}
	created, err := r.Create(ctx, in, stream)
	require.NoError(t, err)
	assert.Equal(t, `{"amount":0.1000000000000000055511151231257827,"n":12345678901234567890}`, string(created.Data))

	got, err := r.ReadStreamEventsForward(ctx, stream)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, string(created.Data), string(got[0].Data))
	assert.Equal(t, `{"big":1e400}`, string(got[0].Metadata))
}

func testDetached(t *testing.T, r event.Repository) {
	ctx := context.Background()
	stream := newStream()

	created, err := r.Create(ctx, event.Event{ID: "detached", Type: testType, Data: json.RawMessage(`{"k":"v"}`)}, stream)
	require.NoError(t, err)
	created.Data[6] = 'X'

	got, err := r.ReadStreamEventsForward(ctx, stream)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, `{"k":"v"}`, string(got[0].Data))
	got[0].Data[6] = 'Y'
	got[0].Metadata[0] = '['

	all, err := r.ReadAllStreamsBackward(ctx, event.Head(), 1)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, `{"k":"v"}`, string(all[0].Data))
	assert.Equal(t, `{}`, string(all[0].Metadata))

	last, ok, err := r.LastStreamEvent(ctx, stream)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `{"k":"v"}`, string(last.Data))
}

func testCreateGeneratesID(t *testing.T, r event.Repository) {
	ctx := context.Background()

	e, err := r.Create(ctx, event.Event{Type: testType}, newStream())
	require.NoError(t, err)
	require.NotEmpty(t, e.ID)

	ok, err := r.HasEvent(ctx, e.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func testCreateInvalid(t *testing.T, r event.Repository) {
	ctx := context.Background()
	tests := []struct {
		name   string
		e      event.Event
		stream string
	}{
		{"empty stream", testEvent("x1"), ""},
		{"missing type", event.Event{ID: "x2"}, newStream()},
		{"invalid data", event.Event{ID: "x3", Type: testType, Data: json.RawMessage(`{`)}, newStream()},
		{"invalid metadata", event.Event{ID: "x4", Type: testType, Metadata: json.RawMessage(`nope`)}, newStream()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Create(ctx, tt.e, tt.stream)
			require.ErrorIs(t, err, event.ErrInvalidArgument)

			ok, err := r.HasEvent(ctx, tt.e.ID)
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}

	all, err := r.ReadAllStreamsForward(ctx, event.Head(), 10)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func testDeleteStream(t *testing.T, r event.Repository) {
	ctx := context.Background()
	stream := newStream()
	create(t, r, stream, uuid.NewString())

	got, err := r.ReadStreamEventsForward(ctx, stream)
	require.NoError(t, err)
	require.Len(t, got, 1)

	require.NoError(t, r.DeleteStream(ctx, stream))

	got, err = r.ReadStreamEventsForward(ctx, stream)
	require.NoError(t, err)
	assert.Empty(t, got)

	_, ok, err := r.LastStreamEvent(ctx, stream)
	require.NoError(t, err)
	assert.False(t, ok)

	// Idempotent, and fine for streams that never existed.
	require.NoError(t, r.DeleteStream(ctx, stream))
	require.NoError(t, r.DeleteStream(ctx, newStream()))
}

func testDeleteIsLocal(t *testing.T, r event.Repository) {
	ctx := context.Background()
	a, b := newStream(), newStream()
	create(t, r, a, "1")
	create(t, r, b, "2")
	create(t, r, a, "3")
	create(t, r, b, "4")

	before, err := r.ReadAllStreamsForward(ctx, event.Head(), 100)
	require.NoError(t, err)

	require.NoError(t, r.DeleteStream(ctx, a))

	got, err := r.ReadStreamEventsForward(ctx, b)
	require.NoError(t, err)
	assert.Equal(t, []string{"2", "4"}, event.IDs(got))

	after, err := r.ReadAllStreamsForward(ctx, event.Head(), 100)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	back, err := r.ReadAllStreamsBackward(ctx, event.After("3"), 100)
	require.NoError(t, err)
	assert.Equal(t, []string{"2", "1"}, event.IDs(back))
}

func testDeleteKeepsIdentity(t *testing.T, r event.Repository) {
	ctx := context.Background()
	stream := newStream()
	create(t, r, stream, "kept")
	require.NoError(t, r.DeleteStream(ctx, stream))

	ok, err := r.HasEvent(ctx, "kept")
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = r.Create(ctx, testEvent("kept"), stream)
	require.ErrorIs(t, err, event.ErrDuplicateIdentity)
	_, err = r.Create(ctx, testEvent("kept"), newStream())
	require.ErrorIs(t, err, event.ErrDuplicateIdentity)

	got, err := r.ReadStreamEventsForward(ctx, stream)
	require.NoError(t, err)
	assert.Empty(t, got)

	// The stream can be reused with fresh identities.
	create(t, r, stream, "fresh")
	got, err = r.ReadStreamEventsForward(ctx, stream)
	require.NoError(t, err)
	assert.Equal(t, []string{"fresh"}, event.IDs(got))
}

func testHasEvent(t *testing.T, r event.Repository) {
	ctx := context.Background()
	id := uuid.NewString()
	create(t, r, newStream(), id)

	ok, err := r.HasEvent(ctx, id)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = r.HasEvent(ctx, uuid.NewString())
	require.NoError(t, err)
	assert.False(t, ok)
}

func testLastStreamEvent(t *testing.T, r event.Repository) {
	ctx := context.Background()
	stream := newStream()
	first, second := uuid.NewString(), uuid.NewString()
	create(t, r, stream, first, second)
	create(t, r, newStream(), uuid.NewString())

	last, ok, err := r.LastStreamEvent(ctx, stream)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, second, last.ID)

	_, ok, err = r.LastStreamEvent(ctx, newStream())
	require.NoError(t, err)
	assert.False(t, ok)
}

func testDuplicate(t *testing.T, r event.Repository) {
	ctx := context.Background()
	a, b := newStream(), newStream()
	create(t, r, a, "dup")

	for _, stream := range []string{a, b} {
		_, err := r.Create(ctx, testEvent("dup"), stream)
		require.ErrorIs(t, err, event.ErrDuplicateIdentity)
	}

	got, err := r.ReadStreamEventsForward(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, []string{"dup"}, event.IDs(got))

	got, err = r.ReadStreamEventsForward(ctx, b)
	require.NoError(t, err)
	assert.Empty(t, got)

	all, err := r.ReadAllStreamsForward(ctx, event.Head(), 100)
	require.NoError(t, err)
	assert.Equal(t, []string{"dup"}, event.IDs(all))

	// A rejected create does not consume a position.
	next := create(t, r, b, "next")
	assert.Equal(t, uint64(2), next[0].Position)
}

func testReadEvents(t *testing.T, r event.Repository) {
	stream := newStream()
	ids := numbered(10)
	create(t, r, stream, ids...)

	read := func(t *testing.T, dir event.Direction, from event.Position, count int) []string {
		t.Helper()
		ctx := context.Background()
		var (
			got []event.Event
			err error
		)
		if dir == event.Backward {
			got, err = r.ReadEventsBackward(ctx, stream, from, count)
		} else {
			got, err = r.ReadEventsForward(ctx, stream, from, count)
		}
		require.NoError(t, err)
		return event.IDs(got)
	}

	tests := []struct {
		dir   event.Direction
		from  event.Position
		count int
		want  []string
	}{
		{event.Forward, event.Head(), 3, []string{"1", "2", "3"}},
		{event.Forward, event.Head(), 100, ids},
		{event.Forward, event.After("5"), 4, []string{"6", "7", "8", "9"}},
		{event.Forward, event.After("5"), 100, []string{"6", "7", "8", "9", "10"}},
		{event.Forward, event.After("10"), 5, []string{}},
		{event.Backward, event.Head(), 3, []string{"10", "9", "8"}},
		{event.Backward, event.Head(), 100, reversed(ids)},
		{event.Backward, event.After("5"), 4, []string{"4", "3", "2", "1"}},
		{event.Backward, event.After("5"), 100, []string{"4", "3", "2", "1"}},
		{event.Backward, event.After("1"), 5, []string{}},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s from %s count %d", tt.dir, tt.from, tt.count), func(t *testing.T) {
			assert.Equal(t, tt.want, read(t, tt.dir, tt.from, tt.count))
		})
	}
}

func testReadStreamEvents(t *testing.T, r event.Repository) {
	ctx := context.Background()
	stream, other := newStream(), newStream()
	create(t, r, stream, "1")
	create(t, r, other, "2")
	create(t, r, stream, "3")
	create(t, r, other, "4", "5")

	got, err := r.ReadStreamEventsForward(ctx, stream)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "3"}, event.IDs(got))

	got, err = r.ReadStreamEventsBackward(ctx, stream)
	require.NoError(t, err)
	assert.Equal(t, []string{"3", "1"}, event.IDs(got))

	all, err := r.ReadAllStreamsForward(ctx, event.Head(), 100)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3", "4", "5"}, event.IDs(all))

	// Stream-local cursors skip events of other streams.
	got, err = r.ReadEventsForward(ctx, other, event.After("2"), 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"4"}, event.IDs(got))
}

func testReadAllStreams(t *testing.T, r event.Repository) {
	ids := numbered(10)
	for _, id := range ids {
		create(t, r, newStream(), id)
	}

	read := func(t *testing.T, dir event.Direction, from event.Position, count int) []string {
		t.Helper()
		ctx := context.Background()
		var (
			got []event.Event
			err error
		)
		if dir == event.Backward {
			got, err = r.ReadAllStreamsBackward(ctx, from, count)
		} else {
			got, err = r.ReadAllStreamsForward(ctx, from, count)
		}
		require.NoError(t, err)
		return event.IDs(got)
	}

	tests := []struct {
		dir   event.Direction
		from  event.Position
		count int
		want  []string
	}{
		{event.Forward, event.Head(), 3, []string{"1", "2", "3"}},
		{event.Forward, event.Head(), 100, ids},
		{event.Forward, event.After("5"), 4, []string{"6", "7", "8", "9"}},
		{event.Forward, event.After("5"), 100, []string{"6", "7", "8", "9", "10"}},
		{event.Backward, event.Head(), 3, []string{"10", "9", "8"}},
		{event.Backward, event.Head(), 100, reversed(ids)},
		{event.Backward, event.After("5"), 4, []string{"4", "3", "2", "1"}},
		{event.Backward, event.After("5"), 100, []string{"4", "3", "2", "1"}},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s from %s count %d", tt.dir, tt.from, tt.count), func(t *testing.T) {
			assert.Equal(t, tt.want, read(t, tt.dir, tt.from, tt.count))
		})
	}
}

func testReverseSymmetry(t *testing.T, r event.Repository) {
	ctx := context.Background()
	a, b := newStream(), newStream()
	for i := range 12 {
		stream := a
		if i%3 == 0 {
			stream = b
		}
		create(t, r, stream, fmt.Sprintf("e%02d", i))
	}

	for _, stream := range []string{a, b} {
		fwd, err := r.ReadEventsForward(ctx, stream, event.Head(), 100)
		require.NoError(t, err)
		bwd, err := r.ReadEventsBackward(ctx, stream, event.Head(), 100)
		require.NoError(t, err)
		assert.Equal(t, reversed(event.IDs(fwd)), event.IDs(bwd))
	}
}

func testCursorSymmetry(t *testing.T, r event.Repository) {
	ctx := context.Background()
	stream := newStream()
	ids := numbered(8)
	create(t, r, stream, ids...)

	for i, cursor := range ids[:len(ids)-1] {
		fwd, err := r.ReadEventsForward(ctx, stream, event.After(cursor), 3)
		require.NoError(t, err)
		require.NotEmpty(t, fwd)

		lastID := fwd[len(fwd)-1].ID
		bwd, err := r.ReadEventsBackward(ctx, stream, event.After(lastID), 100)
		require.NoError(t, err)

		// Walking back from the end of the forward window passes the cursor
		// and then everything strictly before it.
		back := event.IDs(bwd)
		want := reversed(ids[:i+len(fwd)])
		assert.Equal(t, want, back, "cursor %s", cursor)
	}
}

func testCursorNotFound(t *testing.T, r event.Repository) {
	ctx := context.Background()
	a, b := newStream(), newStream()
	create(t, r, a, "in-a")
	create(t, r, b, "in-b")

	_, err := r.ReadAllStreamsForward(ctx, event.After("missing"), 1)
	assert.ErrorIs(t, err, event.ErrCursorNotFound)
	_, err = r.ReadAllStreamsBackward(ctx, event.After("missing"), 1)
	assert.ErrorIs(t, err, event.ErrCursorNotFound)

	// Present globally but not in the scanned stream.
	_, err = r.ReadEventsForward(ctx, a, event.After("in-b"), 1)
	assert.ErrorIs(t, err, event.ErrCursorNotFound)
	_, err = r.ReadEventsBackward(ctx, a, event.After("in-b"), 1)
	assert.ErrorIs(t, err, event.ErrCursorNotFound)

	// Concrete cursors in an empty stream never resolve.
	_, err = r.ReadEventsForward(ctx, newStream(), event.After("in-a"), 1)
	assert.ErrorIs(t, err, event.ErrCursorNotFound)

	// A deleted stream no longer contains its events, but the global order does.
	require.NoError(t, r.DeleteStream(ctx, a))
	_, err = r.ReadEventsForward(ctx, a, event.After("in-a"), 1)
	assert.ErrorIs(t, err, event.ErrCursorNotFound)
	got, err := r.ReadAllStreamsForward(ctx, event.After("in-a"), 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"in-b"}, event.IDs(got))
}

func testReadInvalid(t *testing.T, r event.Repository) {
	ctx := context.Background()
	stream := newStream()
	create(t, r, stream, "only")

	for _, count := range []int{0, -1} {
		_, err := r.ReadAllStreamsForward(ctx, event.Head(), count)
		assert.ErrorIs(t, err, event.ErrInvalidArgument)
		_, err = r.ReadAllStreamsBackward(ctx, event.Head(), count)
		assert.ErrorIs(t, err, event.ErrInvalidArgument)
		_, err = r.ReadEventsForward(ctx, stream, event.Head(), count)
		assert.ErrorIs(t, err, event.ErrInvalidArgument)
		_, err = r.ReadEventsBackward(ctx, stream, event.Head(), count)
		assert.ErrorIs(t, err, event.ErrInvalidArgument)
	}

	// Argument checks come before cursor resolution.
	_, err := r.ReadEventsForward(ctx, stream, event.After("missing"), 0)
	assert.ErrorIs(t, err, event.ErrInvalidArgument)

	_, err = r.ReadEventsForward(ctx, "", event.Head(), 1)
	assert.ErrorIs(t, err, event.ErrInvalidArgument)
	_, err = r.ReadStreamEventsBackward(ctx, "")
	assert.ErrorIs(t, err, event.ErrInvalidArgument)
	_, _, err = r.LastStreamEvent(ctx, "")
	assert.ErrorIs(t, err, event.ErrInvalidArgument)
	assert.ErrorIs(t, r.DeleteStream(ctx, ""), event.ErrInvalidArgument)
}

func testConcurrentCreate(t *testing.T, r event.Repository) {
	const (
		writers   = 8
		perWriter = 25
	)
	ctx := context.Background()
	streams := []string{newStream(), newStream()}

	var g errgroup.Group
	for w := range writers {
		g.Go(func() error {
			for i := range perWriter {
				id := fmt.Sprintf("w%d-%d", w, i)
				if _, err := r.Create(ctx, testEvent(id), streams[(w+i)%2]); err != nil {
					return err
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	all, err := r.ReadAllStreamsForward(ctx, event.Head(), 1000)
	require.NoError(t, err)
	require.Len(t, all, writers*perWriter)
	for i, e := range all {
		assert.Equal(t, uint64(i+1), e.Position, "event %s", e.ID)
	}

	// Each stream is the subsequence of the global order carrying its name.
	for _, stream := range streams {
		var want []string
		for _, e := range all {
			if e.Stream == stream {
				want = append(want, e.ID)
			}
		}
		got, err := r.ReadStreamEventsForward(ctx, stream)
		require.NoError(t, err)
		assert.Equal(t, want, event.IDs(got))
	}
}

func testConcurrentDuplicate(t *testing.T, r event.Repository) {
	const racers = 8
	ctx := context.Background()

	var won atomic.Int32
	var g errgroup.Group
	for range racers {
		g.Go(func() error {
			_, err := r.Create(ctx, testEvent("contested"), newStream())
			switch {
			case err == nil:
				won.Add(1)
				return nil
			case errors.Is(err, event.ErrDuplicateIdentity):
				return nil
			default:
				return err
			}
		})
	}
	require.NoError(t, g.Wait())
	assert.Equal(t, int32(1), won.Load())

	all, err := r.ReadAllStreamsForward(ctx, event.Head(), 100)
	require.NoError(t, err)
	assert.Equal(t, []string{"contested"}, event.IDs(all))
}

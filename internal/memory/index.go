package memory

import (
	"sort"

	"github.com/jensholdgaard/eventrepo/internal/event"
)

// streamIndex maps a stream name to the global offsets of its events. The
// offsets of a stream are ascending because appends only ever add the
// newest global offset, which keeps every stream a subsequence of the
// global order and lets cursor lookups binary search.
type streamIndex struct {
	streams map[string][]int
}

func newStreamIndex() *streamIndex {
	return &streamIndex{streams: make(map[string][]int)}
}

func (x *streamIndex) append(stream string, off int) {
	x.streams[stream] = append(x.streams[stream], off)
}

// local returns the stream-local offset of the event at global offset off.
func (x *streamIndex) local(stream string, off int) (int, bool) {
	refs := x.streams[stream]
	i := sort.SearchInts(refs, off)
	if i < len(refs) && refs[i] == off {
		return i, true
	}
	return 0, false
}

func (x *streamIndex) last(stream string) (int, bool) {
	refs := x.streams[stream]
	if len(refs) == 0 {
		return 0, false
	}
	return refs[len(refs)-1], true
}

func (x *streamIndex) delete(stream string) {
	delete(x.streams, stream)
}

// read resolves from against the stream-local order and returns the window
// in dir order. The boolean is false when a concrete cursor is not part of
// the stream.
func (x *streamIndex) read(seq *sequencer, stream string, from event.Position, count int, dir event.Direction) ([]event.Event, bool) {
	refs := x.streams[stream]
	index, ok := resolve(from, dir, len(refs), func(id string) (int, bool) {
		off, ok := seq.offset(id)
		if !ok {
			return 0, false
		}
		return x.local(stream, off)
	})
	if !ok {
		return nil, false
	}

	lo, hi := span(index, count, len(refs), dir)
	out := make([]event.Event, 0, hi-lo)
	if dir == event.Backward {
		for i := hi - 1; i >= lo; i-- {
			out = append(out, seq.at(refs[i]))
		}
		return out, true
	}
	for i := lo; i < hi; i++ {
		out = append(out, seq.at(refs[i]))
	}
	return out, true
}

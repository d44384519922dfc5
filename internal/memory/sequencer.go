package memory

import "github.com/jensholdgaard/eventrepo/internal/event"

// sequencer holds the global order. Events are never removed from it.
type sequencer struct {
	events []event.Event
	byID   map[string]int
}

func newSequencer() *sequencer {
	return &sequencer{byID: make(map[string]int)}
}

// append stores a copy of e at the end of the global order and returns its
// offset. e.Position is set to the 1-based global position.
func (s *sequencer) append(e event.Event) (int, event.Event, error) {
	if _, ok := s.byID[e.ID]; ok {
		return 0, event.Event{}, event.DuplicateError(e.ID)
	}
	off := len(s.events)
	e.Position = uint64(off + 1)
	s.events = append(s.events, e.Clone())
	s.byID[e.ID] = off
	return off, e.Clone(), nil
}

func (s *sequencer) has(id string) bool {
	_, ok := s.byID[id]
	return ok
}

func (s *sequencer) offset(id string) (int, bool) {
	off, ok := s.byID[id]
	return off, ok
}

func (s *sequencer) len() int { return len(s.events) }

// at returns the event at off. Callers own the returned payload bytes.
func (s *sequencer) at(off int) event.Event { return s.events[off].Clone() }

func (s *sequencer) resolve(p event.Position, dir event.Direction) (int, bool) {
	return resolve(p, dir, len(s.events), s.offset)
}

// windowForward returns up to count events starting at index, ascending.
func (s *sequencer) windowForward(index, count int) []event.Event {
	lo, hi := span(index, count, len(s.events), event.Forward)
	out := make([]event.Event, 0, hi-lo)
	for i := lo; i < hi; i++ {
		out = append(out, s.at(i))
	}
	return out
}

// windowBackward returns up to count events ending at index, descending.
func (s *sequencer) windowBackward(index, count int) []event.Event {
	lo, hi := span(index, count, len(s.events), event.Backward)
	out := make([]event.Event, 0, hi-lo)
	for i := hi - 1; i >= lo; i-- {
		out = append(out, s.at(i))
	}
	return out
}

package memory

import (
	"testing"

	"github.com/jensholdgaard/eventrepo/internal/event"
)

func TestSpan(t *testing.T) {
	tests := []struct {
		name   string
		index  int
		count  int
		n      int
		dir    event.Direction
		lo, hi int
	}{
		{"forward from start", 0, 3, 10, event.Forward, 0, 3},
		{"forward clamps at end", 6, 100, 10, event.Forward, 6, 10},
		{"forward past end", 10, 3, 10, event.Forward, 10, 10},
		{"forward unbounded", 2, event.Unbounded, 10, event.Forward, 2, 10},
		{"forward empty", 0, 1, 0, event.Forward, 0, 0},
		{"backward from end", 9, 3, 10, event.Backward, 7, 10},
		{"backward clamps at start", 3, 100, 10, event.Backward, 0, 4},
		{"backward before start", -1, 3, 10, event.Backward, 0, 0},
		{"backward unbounded", 9, event.Unbounded, 10, event.Backward, 0, 10},
		{"backward empty", -1, 1, 0, event.Backward, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lo, hi := span(tt.index, tt.count, tt.n, tt.dir)
			if lo != tt.lo || hi != tt.hi {
				t.Errorf("span(%d, %d, %d, %s) = [%d, %d), want [%d, %d)",
					tt.index, tt.count, tt.n, tt.dir, lo, hi, tt.lo, tt.hi)
			}
		})
	}
}

func TestResolve(t *testing.T) {
	offsets := map[string]int{"a": 0, "b": 1, "c": 2}
	locate := func(id string) (int, bool) {
		off, ok := offsets[id]
		return off, ok
	}

	tests := []struct {
		name   string
		pos    event.Position
		dir    event.Direction
		want   int
		wantOK bool
	}{
		{"head forward", event.Head(), event.Forward, 0, true},
		{"head backward", event.Head(), event.Backward, 2, true},
		{"cursor forward", event.After("b"), event.Forward, 2, true},
		{"cursor backward", event.After("b"), event.Backward, 0, true},
		{"first backward", event.After("a"), event.Backward, -1, true},
		{"last forward", event.After("c"), event.Forward, 3, true},
		{"unknown", event.After("z"), event.Forward, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := resolve(tt.pos, tt.dir, len(offsets), locate)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("resolve(%s, %s) = %d, %v, want %d, %v", tt.pos, tt.dir, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestStreamIndexLocal(t *testing.T) {
	x := newStreamIndex()
	for _, off := range []int{1, 4, 7, 9} {
		x.append("s", off)
	}

	if got, ok := x.local("s", 7); !ok || got != 2 {
		t.Errorf("local(7) = %d, %v, want 2, true", got, ok)
	}
	if _, ok := x.local("s", 5); ok {
		t.Error("local(5) found an offset the stream does not hold")
	}
	if last, ok := x.last("s"); !ok || last != 9 {
		t.Errorf("last = %d, %v, want 9, true", last, ok)
	}

	x.delete("s")
	if _, ok := x.last("s"); ok {
		t.Error("last found an entry after delete")
	}
}

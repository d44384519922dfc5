package memory

import "github.com/jensholdgaard/eventrepo/internal/event"

// resolve converts a cursor into the offset a window starts at in an
// ordering of n elements. Forward windows start at the offset and walk up;
// backward windows start at it and walk down. locate maps a cursor event id
// to its offset in the same ordering. The cursor event itself is excluded,
// so a backward read from the first element resolves to -1 and a forward
// read from the last resolves to n.
func resolve(p event.Position, dir event.Direction, n int, locate func(id string) (int, bool)) (int, bool) {
	if p.IsHead() {
		if dir == event.Backward {
			return n - 1, true
		}
		return 0, true
	}
	off, ok := locate(p.EventID())
	if !ok {
		return 0, false
	}
	if dir == event.Backward {
		return off - 1, true
	}
	return off + 1, true
}

// span returns the half-open range [lo, hi) covered by a window of at most
// count elements starting at index and walking in dir, clamped to [0, n).
func span(index, count, n int, dir event.Direction) (lo, hi int) {
	if dir == event.Backward {
		if index < 0 {
			return 0, 0
		}
		hi = min(index+1, n)
		if count < hi {
			return hi - count, hi
		}
		return 0, hi
	}
	if index >= n {
		return n, n
	}
	if count < n-index {
		return index, index + count
	}
	return index, n
}

package clock

import (
	"sync"
	"time"
)

// Clock abstracts time operations for testability.
type Clock interface {
	Now() time.Time
}

// Real is a Clock backed by the system clock.
type Real struct{}

// Now returns the current time in UTC.
func (Real) Now() time.Time { return time.Now().UTC() }

// Mock is a Clock that always returns a fixed time.
type Mock struct {
	T time.Time
}

// Now returns the fixed time.
func (m Mock) Now() time.Time { return m.T }

// Step is a Clock that starts at Start and advances by Interval on every call.
// It gives successive events distinct, ordered timestamps in tests.
type Step struct {
	Start    time.Time
	Interval time.Duration

	mu sync.Mutex
	n  int64
}

// Now returns Start plus Interval times the number of previous calls.
func (s *Step) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.Start.Add(time.Duration(s.n) * s.Interval)
	s.n++
	return t
}

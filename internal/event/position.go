package event

import "fmt"

// Direction selects the order a read walks in.
type Direction int

const (
	// Forward reads in ascending append order.
	Forward Direction = iota
	// Backward reads in descending append order, most recent first.
	Backward
)

func (d Direction) String() string {
	switch d {
	case Forward:
		return "forward"
	case Backward:
		return "backward"
	default:
		return fmt.Sprintf("direction(%d)", int(d))
	}
}

// Position is a read cursor: either Head or the identifier of a previously
// observed event. A concrete position is an exclusive boundary, so a read
// resumes with the event after (forward) or before (backward) it.
//
// The zero value is Head.
type Position struct {
	eventID  string
	concrete bool
}

// Head is the direction-relative start: the earliest event when reading
// forward, the latest when reading backward.
func Head() Position { return Position{} }

// After returns a cursor positioned on the event with the given identifier.
func After(eventID string) Position {
	return Position{eventID: eventID, concrete: true}
}

// IsHead reports whether p is the Head sentinel.
func (p Position) IsHead() bool { return !p.concrete }

// EventID returns the cursor event identifier, or "" for Head.
func (p Position) EventID() string { return p.eventID }

func (p Position) String() string {
	if p.IsHead() {
		return "head"
	}
	return p.eventID
}

// ParsePosition turns the textual form used by configuration and the CLI
// back into a Position. "head" and "" both mean Head.
func ParsePosition(s string) Position {
	if s == "" || s == "head" {
		return Head()
	}
	return After(s)
}

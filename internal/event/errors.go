package event

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateIdentity is returned by Create when an event with the same
	// identifier already exists anywhere in the repository, including in a
	// deleted stream.
	ErrDuplicateIdentity = errors.New("duplicate event identity")

	// ErrCursorNotFound is returned by cursor reads when a concrete position
	// does not name an event in the ordering being scanned.
	ErrCursorNotFound = errors.New("cursor not found")

	// ErrInvalidArgument is returned for a non-positive count, an empty
	// stream name or an event that cannot be normalized.
	ErrInvalidArgument = errors.New("invalid argument")
)

// ValidateStream checks that a stream name is usable.
func ValidateStream(stream string) error {
	if stream == "" {
		return fmt.Errorf("%w: empty stream name", ErrInvalidArgument)
	}
	return nil
}

// ValidateCount checks a read window size.
func ValidateCount(count int) error {
	if count <= 0 {
		return fmt.Errorf("%w: count must be positive, got %d", ErrInvalidArgument, count)
	}
	return nil
}

// DuplicateError wraps ErrDuplicateIdentity for id.
func DuplicateError(id string) error {
	return fmt.Errorf("%w: %s", ErrDuplicateIdentity, id)
}

// CursorError wraps ErrCursorNotFound for a position in the named ordering.
// An empty stream names the global order.
func CursorError(stream string, p Position) error {
	if stream == "" {
		return fmt.Errorf("%w: %s in global order", ErrCursorNotFound, p)
	}
	return fmt.Errorf("%w: %s in stream %q", ErrCursorNotFound, p, stream)
}

package event

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Event is a single immutable domain event.
//
// ID, Type, Data and Metadata are supplied by the caller. Stream, Position and
// CreatedAt are assigned by the repository when the event is created.
type Event struct {
	ID        string          `json:"id" db:"event_id"`
	Type      string          `json:"type" db:"event_type"`
	Data      json.RawMessage `json:"data" db:"data"`
	Metadata  json.RawMessage `json:"metadata" db:"metadata"`
	Stream    string          `json:"stream" db:"stream"`
	Position  uint64          `json:"position" db:"position"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
}

// NewID returns a fresh event identifier. It is a variable so tests can make
// identifiers deterministic.
var NewID = uuid.NewString

// Normalize prepares a caller-supplied event for storage: it fills in a
// missing ID, checks the type tag and normalizes the JSON of Data and
// Metadata. The repository-assigned fields are cleared; backends set them on
// append.
func Normalize(e Event) (Event, error) {
	if e.ID == "" {
		e.ID = NewID()
	}
	if e.Type == "" {
		return Event{}, fmt.Errorf("%w: event %s has no type", ErrInvalidArgument, e.ID)
	}

	data, err := canonical(e.Data)
	if err != nil {
		return Event{}, fmt.Errorf("%w: event %s data: %v", ErrInvalidArgument, e.ID, err)
	}
	meta, err := canonical(e.Metadata)
	if err != nil {
		return Event{}, fmt.Errorf("%w: event %s metadata: %v", ErrInvalidArgument, e.ID, err)
	}

	return Event{ID: e.ID, Type: e.Type, Data: data, Metadata: meta}, nil
}

// canonical returns raw with object keys sorted and insignificant whitespace
// removed, or {} when raw is empty. Number literals are kept as written.
func canonical(raw json.RawMessage) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return json.RawMessage(`{}`), nil
	}
	if !json.Valid(trimmed) {
		return nil, errors.New("not valid JSON")
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return json.RawMessage(bytes.TrimSuffix(buf.Bytes(), []byte("\n"))), nil
}

// Clone returns a copy of e that shares no memory with it.
func (e Event) Clone() Event {
	e.Data = bytes.Clone(e.Data)
	e.Metadata = bytes.Clone(e.Metadata)
	return e
}

// IDs returns the identifiers of events in order.
func IDs(events []Event) []string {
	ids := make([]string, len(events))
	for i, e := range events {
		ids[i] = e.ID
	}
	return ids
}

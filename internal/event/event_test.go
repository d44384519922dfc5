package event_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/jensholdgaard/eventrepo/internal/event"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		in       event.Event
		wantData string
		wantMeta string
		wantErr  error
	}{
		{
			name:     "empty payloads become objects",
			in:       event.Event{ID: "1", Type: "Created"},
			wantData: `{}`,
			wantMeta: `{}`,
		},
		{
			name:     "keys are sorted and whitespace dropped",
			in:       event.Event{ID: "1", Type: "Created", Data: json.RawMessage(` {"b": 2, "a": [1, 2]} `)},
			wantData: `{"a":[1,2],"b":2}`,
			wantMeta: `{}`,
		},
		{
			name:     "scalars are kept",
			in:       event.Event{ID: "1", Type: "Created", Data: json.RawMessage(`"hello"`), Metadata: json.RawMessage(`42`)},
			wantData: `"hello"`,
			wantMeta: `42`,
		},
		{
			name:     "large integers keep every digit",
			in:       event.Event{ID: "1", Type: "Created", Data: json.RawMessage(`{"n": 12345678901234567890}`)},
			wantData: `{"n":12345678901234567890}`,
			wantMeta: `{}`,
		},
		{
			name:     "decimals keep their precision",
			in:       event.Event{ID: "1", Type: "Created", Data: json.RawMessage(`{"amount":0.1000000000000000055511151231257827}`)},
			wantData: `{"amount":0.1000000000000000055511151231257827}`,
			wantMeta: `{}`,
		},
		{
			name:     "numbers beyond float range are accepted",
			in:       event.Event{ID: "1", Type: "Created", Data: json.RawMessage(`[1e400, 1.0, -0]`)},
			wantData: `[1e400,1.0,-0]`,
			wantMeta: `{}`,
		},
		{
			name:     "html characters are not escaped",
			in:       event.Event{ID: "1", Type: "Created", Data: json.RawMessage(`{"q":"a<b && c>d"}`)},
			wantData: `{"q":"a<b && c>d"}`,
			wantMeta: `{}`,
		},
		{
			name:    "missing type",
			in:      event.Event{ID: "1"},
			wantErr: event.ErrInvalidArgument,
		},
		{
			name:    "invalid data",
			in:      event.Event{ID: "1", Type: "Created", Data: json.RawMessage(`{"a":`)},
			wantErr: event.ErrInvalidArgument,
		},
		{
			name:    "invalid metadata",
			in:      event.Event{ID: "1", Type: "Created", Metadata: json.RawMessage(`{'a':1}`)},
			wantErr: event.ErrInvalidArgument,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := event.Normalize(tt.in)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Normalize() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Normalize() error = %v", err)
			}
			if string(got.Data) != tt.wantData {
				t.Errorf("Data = %s, want %s", got.Data, tt.wantData)
			}
			if string(got.Metadata) != tt.wantMeta {
				t.Errorf("Metadata = %s, want %s", got.Metadata, tt.wantMeta)
			}
		})
	}
}

func TestNormalizeGeneratesID(t *testing.T) {
	orig := event.NewID
	t.Cleanup(func() { event.NewID = orig })
	event.NewID = func() string { return "generated" }

	got, err := event.Normalize(event.Event{Type: "Created"})
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if got.ID != "generated" {
		t.Errorf("ID = %q, want %q", got.ID, "generated")
	}
}

func TestNormalizeClearsAssignedFields(t *testing.T) {
	got, err := event.Normalize(event.Event{ID: "1", Type: "Created", Stream: "s", Position: 9})
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if got.Stream != "" || got.Position != 0 || !got.CreatedAt.IsZero() {
		t.Errorf("assigned fields survived: %+v", got)
	}
}

func TestValidate(t *testing.T) {
	if err := event.ValidateStream(""); !errors.Is(err, event.ErrInvalidArgument) {
		t.Errorf("ValidateStream(\"\") = %v, want ErrInvalidArgument", err)
	}
	if err := event.ValidateStream("orders"); err != nil {
		t.Errorf("ValidateStream(orders) = %v", err)
	}
	for _, n := range []int{0, -5} {
		if err := event.ValidateCount(n); !errors.Is(err, event.ErrInvalidArgument) {
			t.Errorf("ValidateCount(%d) = %v, want ErrInvalidArgument", n, err)
		}
	}
	if err := event.ValidateCount(1); err != nil {
		t.Errorf("ValidateCount(1) = %v", err)
	}
}

func TestClone(t *testing.T) {
	orig := event.Event{ID: "1", Type: "Created", Data: json.RawMessage(`{"k":"v"}`), Metadata: json.RawMessage(`{}`)}
	c := orig.Clone()
	c.Data[6] = 'X'
	c.Metadata[0] = '['

	if string(orig.Data) != `{"k":"v"}` {
		t.Errorf("Data = %s, want %s", orig.Data, `{"k":"v"}`)
	}
	if string(orig.Metadata) != `{}` {
		t.Errorf("Metadata = %s, want %s", orig.Metadata, `{}`)
	}
}

package query_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/jensholdgaard/eventrepo/internal/event"
	"github.com/jensholdgaard/eventrepo/internal/query"
)

func sample() []event.Event {
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return []event.Event{
		{ID: "1", Type: "OrderPlaced", Stream: "orders", Position: 1, CreatedAt: at,
			Data: json.RawMessage(`{"total":50}`), Metadata: json.RawMessage(`{"region":"eu"}`)},
		{ID: "2", Type: "OrderPlaced", Stream: "orders", Position: 2, CreatedAt: at.Add(time.Second),
			Data: json.RawMessage(`{"total":150}`), Metadata: json.RawMessage(`{"region":"us"}`)},
		{ID: "3", Type: "OrderShipped", Stream: "shipping", Position: 3, CreatedAt: at.Add(2 * time.Second),
			Data: json.RawMessage(`{}`), Metadata: json.RawMessage(`{}`)},
	}
}

func TestFilter(t *testing.T) {
	tests := []struct {
		name string
		expr string
		want []string
	}{
		{"empty matches all", "", []string{"1", "2", "3"}},
		{"by type", `type == "OrderPlaced"`, []string{"1", "2"}},
		{"by stream", `stream.startsWith("ship")`, []string{"3"}},
		{"by data field", `type == "OrderPlaced" && data.total > 100.0`, []string{"2"}},
		{"by metadata presence", `has(metadata.region) && metadata.region == "eu"`, []string{"1"}},
		{"by position", `position >= 2`, []string{"2", "3"}},
		{"by time", `created_at_ms > 1704067200000`, []string{"2", "3"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := query.Compile(tt.expr)
			if err != nil {
				t.Fatalf("Compile(%q) error = %v", tt.expr, err)
			}
			got, err := f.Apply(sample())
			if err != nil {
				t.Fatalf("Apply() error = %v", err)
			}
			ids := event.IDs(got)
			if len(ids) != len(tt.want) {
				t.Fatalf("got %v, want %v", ids, tt.want)
			}
			for i := range ids {
				if ids[i] != tt.want[i] {
					t.Errorf("got %v, want %v", ids, tt.want)
					break
				}
			}
		})
	}
}

func TestCompile_Errors(t *testing.T) {
	for _, expr := range []string{
		`type ==`,
		`unknown_var == 1`,
		`position + 1`,
	} {
		if _, err := query.Compile(expr); err == nil {
			t.Errorf("Compile(%q) succeeded, want error", expr)
		}
	}
}

func TestApply_MissingFieldDoesNotMatch(t *testing.T) {
	f, err := query.Compile(`data.total > 100.0`)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	// The shipped event has no total.
	got, err := f.Apply(sample())
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if ids := event.IDs(got); len(ids) != 1 || ids[0] != "2" {
		t.Errorf("got %v, want [2]", ids)
	}

	ok, err := f.Match(sample()[2])
	if err != nil || ok {
		t.Errorf("Match() = %v, %v, want false, nil", ok, err)
	}
}

func TestApply_EvaluationError(t *testing.T) {
	f, err := query.Compile(`int(data.total) / 0 == 1`)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	if _, err := f.Apply(sample()[:1]); err == nil {
		t.Error("Apply() succeeded, want division by zero error")
	}
}

func TestNilFilter(t *testing.T) {
	var f *query.Filter
	ok, err := f.Match(sample()[0])
	if err != nil || !ok {
		t.Errorf("nil Match() = %v, %v, want true, nil", ok, err)
	}
}

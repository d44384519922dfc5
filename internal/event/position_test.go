package event_test

import (
	"testing"

	"github.com/jensholdgaard/eventrepo/internal/event"
)

func TestPosition(t *testing.T) {
	var zero event.Position
	if !zero.IsHead() {
		t.Error("zero Position is not head")
	}
	if zero != event.Head() {
		t.Error("zero Position differs from Head()")
	}

	p := event.After("42")
	if p.IsHead() {
		t.Error("After(42) reports head")
	}
	if p.EventID() != "42" {
		t.Errorf("EventID() = %q, want 42", p.EventID())
	}

	// An event may be named "head"; only ParsePosition treats it specially.
	if event.After("head").IsHead() {
		t.Error(`After("head") reports head`)
	}
}

func TestParsePosition(t *testing.T) {
	tests := []struct {
		in   string
		want event.Position
	}{
		{"", event.Head()},
		{"head", event.Head()},
		{"5", event.After("5")},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := event.ParsePosition(tt.in)
			if got != tt.want {
				t.Errorf("ParsePosition(%q) = %v, want %v", tt.in, got, tt.want)
			}
			if tt.in != "" && got.String() != tt.in {
				t.Errorf("String() = %q, want %q", got.String(), tt.in)
			}
		})
	}
}

package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jensholdgaard/eventrepo/internal/event"
)

func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "store:\n  driver: sqlite\n  sqlite:\n    path: " + filepath.Join(dir, "events.db") + "\nlog:\n  level: error\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func execute(t *testing.T, cfgPath string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCommand()
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(append([]string{"--config", cfgPath}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func decodeEvents(t *testing.T, out string) []event.Event {
	t.Helper()
	var events []event.Event
	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		var e event.Event
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			t.Fatalf("decoding %q: %v", sc.Text(), err)
		}
		events = append(events, e)
	}
	return events
}

func mustCreate(t *testing.T, cfg, stream, id, typ, data string) {
	t.Helper()
	if _, err := execute(t, cfg, "create", "--stream", stream, "--id", id, "--type", typ, "--data", data); err != nil {
		t.Fatalf("create %s: %v", id, err)
	}
}

func TestCreateAndRead(t *testing.T) {
	cfg := writeConfig(t)

	out, err := execute(t, cfg, "create", "--stream", "acct-1", "--id", "e1", "--type", "Opened", "--data", `{"b":1, "a":"x"}`)
	if err != nil {
		t.Fatal(err)
	}
	created := decodeEvents(t, out)
	if len(created) != 1 {
		t.Fatalf("got %d events, want 1", len(created))
	}
	if created[0].Position != 1 || created[0].Stream != "acct-1" {
		t.Errorf("got position %d stream %q, want 1 acct-1", created[0].Position, created[0].Stream)
	}
	if string(created[0].Data) != `{"a":"x","b":1}` {
		t.Errorf("got data %s, want canonical form", created[0].Data)
	}

	mustCreate(t, cfg, "acct-2", "e2", "Opened", `{"total":50}`)
	mustCreate(t, cfg, "acct-1", "e3", "Deposited", `{"total":150}`)

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{name: "all forward", args: []string{"read", "--all"}, want: []string{"e1", "e2", "e3"}},
		{name: "all backward", args: []string{"read", "--all", "--backward"}, want: []string{"e3", "e2", "e1"}},
		{name: "stream forward", args: []string{"read", "--stream", "acct-1"}, want: []string{"e1", "e3"}},
		{name: "stream after cursor", args: []string{"read", "--stream", "acct-1", "--from", "e1"}, want: []string{"e3"}},
		{name: "all count", args: []string{"read", "--all", "--count", "2"}, want: []string{"e1", "e2"}},
		{name: "filter", args: []string{"read", "--all", "--filter", "data.total > 100.0"}, want: []string{"e3"}},
		{name: "filter on type", args: []string{"read", "--all", "--filter", `type == "Opened"`}, want: []string{"e1", "e2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, cfg, tt.args...)
			if err != nil {
				t.Fatal(err)
			}
			got := event.IDs(decodeEvents(t, out))
			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestReadErrors(t *testing.T) {
	cfg := writeConfig(t)
	mustCreate(t, cfg, "s", "e1", "T", "")

	tests := []struct {
		name    string
		args    []string
		wantErr error
	}{
		{name: "unknown cursor", args: []string{"read", "--all", "--from", "missing"}, wantErr: event.ErrCursorNotFound},
		{name: "zero count", args: []string{"read", "--stream", "s", "--count", "0"}, wantErr: event.ErrInvalidArgument},
		{name: "stream and all", args: []string{"read", "--stream", "s", "--all"}},
		{name: "neither stream nor all", args: []string{"read"}},
		{name: "bad filter", args: []string{"read", "--all", "--filter", "type =="}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, cfg, tt.args...)
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("got %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestReadFromID(t *testing.T) {
	cfg := writeConfig(t)
	mustCreate(t, cfg, "s", "head", "T", "")
	mustCreate(t, cfg, "s", "e2", "T", "")

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{name: "head keyword", args: []string{"read", "--stream", "s", "--from", "head"}, want: []string{"head", "e2"}},
		{name: "event named head", args: []string{"read", "--stream", "s", "--from-id", "head"}, want: []string{"e2"}},
		{name: "backward from named id", args: []string{"read", "--all", "--backward", "--from-id", "e2"}, want: []string{"head"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, cfg, tt.args...)
			if err != nil {
				t.Fatal(err)
			}
			got := event.IDs(decodeEvents(t, out))
			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}

	if _, err := execute(t, cfg, "read", "--stream", "s", "--from", "e2", "--from-id", "head"); err == nil {
		t.Error("expected error when --from and --from-id are both set")
	}
}

func TestCreateDuplicate(t *testing.T) {
	cfg := writeConfig(t)
	mustCreate(t, cfg, "s", "e1", "T", "")

	_, err := execute(t, cfg, "create", "--stream", "other", "--id", "e1", "--type", "T")
	if !errors.Is(err, event.ErrDuplicateIdentity) {
		t.Errorf("got %v, want %v", err, event.ErrDuplicateIdentity)
	}
}

func TestHasLastAndDelete(t *testing.T) {
	cfg := writeConfig(t)
	mustCreate(t, cfg, "s", "e1", "T", "")
	mustCreate(t, cfg, "s", "e2", "T", "")

	out, err := execute(t, cfg, "last", "s")
	if err != nil {
		t.Fatal(err)
	}
	if got := event.IDs(decodeEvents(t, out)); len(got) != 1 || got[0] != "e2" {
		t.Errorf("got %v, want [e2]", got)
	}

	if _, err := execute(t, cfg, "delete-stream", "s"); err != nil {
		t.Fatal(err)
	}

	if _, err := execute(t, cfg, "last", "s"); err == nil {
		t.Error("expected error for deleted stream")
	}

	out, err = execute(t, cfg, "has", "e1")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != `{"id":"e1","exists":true}` {
		t.Errorf("got %s, want e1 to exist after deletion", out)
	}

	out, err = execute(t, cfg, "read", "--all")
	if err != nil {
		t.Fatal(err)
	}
	if got := event.IDs(decodeEvents(t, out)); len(got) != 2 {
		t.Errorf("got %v, want both events in the global order", got)
	}
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "", "version")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != version {
		t.Errorf("got %q, want %q", out, version)
	}
}

package pebblestore_test

import (
	"context"
	"testing"
	"time"

	"github.com/jensholdgaard/eventrepo/internal/clock"
	"github.com/jensholdgaard/eventrepo/internal/config"
	"github.com/jensholdgaard/eventrepo/internal/event"
	"github.com/jensholdgaard/eventrepo/internal/repotest"
	"github.com/jensholdgaard/eventrepo/internal/store"
	pebblestore "github.com/jensholdgaard/eventrepo/internal/store/pebble"
)

func openRepo(t *testing.T, dir string, clk clock.Clock) (*pebblestore.Repository, *pebblestore.DB) {
	t.Helper()
	db, err := pebblestore.OpenDB(pebblestore.Options{
		DataDir:       dir,
		Fsync:         pebblestore.FsyncModeInterval,
		FsyncInterval: 2 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	repo, err := pebblestore.NewRepository(db, clk)
	if err != nil {
		db.Close()
		t.Fatalf("new repository: %v", err)
	}
	return repo, db
}

func TestRepository(t *testing.T) {
	repotest.Run(t, func(t *testing.T, clk clock.Clock) event.Repository {
		repo, db := openRepo(t, t.TempDir(), clk)
		t.Cleanup(func() { _ = db.Close() })
		return repo
	})
}

func TestReopenKeepsSequenceAndIdentities(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	clk := &clock.Step{Start: repotest.Epoch, Interval: time.Second}

	repo, db := openRepo(t, dir, clk)
	for _, id := range []string{"1", "2", "3"} {
		if _, err := repo.Create(ctx, event.Event{ID: id, Type: "t"}, "orders"); err != nil {
			t.Fatalf("create %s: %v", id, err)
		}
	}
	if err := repo.DeleteStream(ctx, "orders"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	repo, db = openRepo(t, dir, clk)
	t.Cleanup(func() { _ = db.Close() })

	ok, err := repo.HasEvent(ctx, "2")
	if err != nil || !ok {
		t.Fatalf("HasEvent(2) = %v, %v, want true, nil", ok, err)
	}
	got, err := repo.Create(ctx, event.Event{ID: "4", Type: "t"}, "orders")
	if err != nil {
		t.Fatalf("create 4: %v", err)
	}
	if got.Position != 4 {
		t.Errorf("got position %d, want 4", got.Position)
	}

	events, err := repo.ReadStreamEventsForward(ctx, "orders")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if ids := event.IDs(events); len(ids) != 1 || ids[0] != "4" {
		t.Errorf("got stream %v, want [4]", ids)
	}
}

func TestDriver(t *testing.T) {
	cfg := config.Default().Store
	cfg.Driver = "pebble"
	cfg.Pebble.DataDir = t.TempDir()
	cfg.Pebble.Fsync = "never"

	repos, err := store.Open(context.Background(), cfg, clock.Real{})
	if err != nil {
		t.Fatalf("Open(pebble) error = %v", err)
	}
	defer repos.Close()

	if err := repos.Ping(context.Background()); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
	if _, err := repos.Events.Create(context.Background(), event.Event{Type: "t"}, "s"); err != nil {
		t.Errorf("Create() error = %v", err)
	}
}

func TestDriver_BadFsync(t *testing.T) {
	cfg := config.StoreConfig{Driver: "pebble", Pebble: config.PebbleConfig{DataDir: t.TempDir(), Fsync: "sometimes"}}
	if _, err := store.Open(context.Background(), cfg, clock.Real{}); err == nil {
		t.Fatal("expected error for unknown fsync mode")
	}
}

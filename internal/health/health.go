// Package health serves liveness and readiness endpoints for the event
// repository service.
package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jensholdgaard/eventrepo/internal/clock"
	"github.com/jensholdgaard/eventrepo/internal/event"
)

// Status represents a health check result.
type Status struct {
	Status    string            `json:"status"`
	Driver    string            `json:"driver,omitempty"`
	Checks    map[string]string `json:"checks,omitempty"`
	Timestamp string            `json:"timestamp"`
}

// Checker defines a named health check function.
type Checker struct {
	Name  string
	Check func(ctx context.Context) error
}

// PingChecker checks the storage medium connection.
func PingChecker(ping func(ctx context.Context) error) Checker {
	return Checker{Name: "store", Check: ping}
}

// RepositoryChecker runs a read through the repository, which exercises the
// same path as client traffic.
func RepositoryChecker(repo event.Repository) Checker {
	return Checker{Name: "repository", Check: func(ctx context.Context) error {
		if _, err := repo.ReadAllStreamsBackward(ctx, event.Head(), 1); err != nil {
			return fmt.Errorf("reading latest event: %w", err)
		}
		return nil
	}}
}

// Handler provides HTTP health check endpoints.
type Handler struct {
	mu       sync.RWMutex
	ready    bool
	driver   string
	checkers []Checker
	clock    clock.Clock
	timeout  time.Duration
}

// NewHandler creates a health handler for the named store driver.
func NewHandler(clk clock.Clock, driver string, checkers ...Checker) *Handler {
	return &Handler{checkers: checkers, driver: driver, clock: clk, timeout: 5 * time.Second}
}

// SetReady marks the service as ready to receive traffic.
func (h *Handler) SetReady(ready bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ready = ready
}

// Register mounts /healthz and /readyz on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.Handle("GET /healthz", h.LivenessHandler())
	mux.Handle("GET /readyz", h.ReadinessHandler())
}

// LivenessHandler returns HTTP 200 while the process is alive.
func (h *Handler) LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, h.status("ok", nil))
	}
}

// ReadinessHandler returns HTTP 200 when the service is marked ready and
// every checker passes. Checkers run concurrently under one timeout.
func (h *Handler) ReadinessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.mu.RLock()
		ready := h.ready
		h.mu.RUnlock()

		if !ready {
			writeJSON(w, http.StatusServiceUnavailable, h.status("not_ready", nil))
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
		defer cancel()

		results := make([]error, len(h.checkers))
		var g errgroup.Group
		for i, c := range h.checkers {
			g.Go(func() error {
				results[i] = c.Check(ctx)
				return nil
			})
		}
		_ = g.Wait()

		checks := make(map[string]string, len(h.checkers))
		code := http.StatusOK
		status := "ready"
		for i, c := range h.checkers {
			if results[i] != nil {
				checks[c.Name] = results[i].Error()
				code = http.StatusServiceUnavailable
				status = "not_ready"
				continue
			}
			checks[c.Name] = "ok"
		}

		writeJSON(w, code, h.status(status, checks))
	}
}

func (h *Handler) status(s string, checks map[string]string) Status {
	return Status{
		Status:    s,
		Driver:    h.driver,
		Checks:    checks,
		Timestamp: h.clock.Now().UTC().Format(time.RFC3339),
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

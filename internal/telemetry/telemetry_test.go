package telemetry_test

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/jensholdgaard/eventrepo/internal/config"
	"github.com/jensholdgaard/eventrepo/internal/telemetry"
)

func TestNewNopProvider(t *testing.T) {
	p := telemetry.NewNopProvider()

	if p.TracerProvider == nil {
		t.Fatal("TracerProvider is nil")
	}
	if p.MeterProvider == nil {
		t.Fatal("MeterProvider is nil")
	}
	if p.LoggerProvider == nil {
		t.Fatal("LoggerProvider is nil")
	}
	if p.Logger == nil {
		t.Fatal("Logger is nil")
	}
	if err := p.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
}

func TestSetup_LocalOnly(t *testing.T) {
	var buf bytes.Buffer
	cfg := config.Default().Telemetry

	p, err := telemetry.Setup(context.Background(), cfg, slog.NewTextHandler(&buf, nil))
	if err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	t.Cleanup(func() { _ = p.Shutdown(context.Background()) })

	p.Logger.Info("store opened", slog.String("driver", "memory"))
	if got := buf.String(); !strings.Contains(got, "driver=memory") {
		t.Errorf("got %q, want the record on the local handler", got)
	}
}

func TestSetup_ExportedKeepsLocal(t *testing.T) {
	var buf bytes.Buffer
	cfg := config.Default().Telemetry
	cfg.OTLPEndpoint = "127.0.0.1:1"
	cfg.Insecure = true

	p, err := telemetry.Setup(context.Background(), cfg, slog.NewTextHandler(&buf, nil))
	if err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	t.Cleanup(func() {
		// Nothing listens on the endpoint; only the local output is checked.
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()
		_ = p.Shutdown(ctx)
	})

	p.Logger.With(slog.String("driver", "pebble")).Info("store opened")
	if got := buf.String(); !strings.Contains(got, "driver=pebble") {
		t.Errorf("got %q, want the record on the local handler", got)
	}
}

func TestLogWithTrace_NoSpan(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	telemetry.LogWithTrace(context.Background(), logger).Info("x")
	if strings.Contains(buf.String(), "trace_id") {
		t.Errorf("got %q, want no trace_id without a span", buf.String())
	}
}

func TestLogWithTrace_WithSpan(t *testing.T) {
	tp := sdktrace.NewTracerProvider()
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	ctx, span := tp.Tracer("test").Start(context.Background(), "test-span")
	defer span.End()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	telemetry.LogWithTrace(ctx, logger).Info("x")
	want := "trace_id=" + span.SpanContext().TraceID().String()
	if !strings.Contains(buf.String(), want) {
		t.Errorf("got %q, want it to contain %q", buf.String(), want)
	}
}

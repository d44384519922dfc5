package pebblestore

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// otelMetrics reports storage observations as OpenTelemetry histograms.
type otelMetrics struct {
	readLatency   metric.Float64Histogram
	readBytes     metric.Int64Histogram
	commitLatency metric.Float64Histogram
	commitBytes   metric.Int64Histogram
}

// NewOTelMetrics returns a MetricsHook recording to meter.
func NewOTelMetrics(meter metric.Meter) (MetricsHook, error) {
	m := &otelMetrics{}
	var err error
	if m.readLatency, err = meter.Float64Histogram("eventrepo.pebble.read.duration",
		metric.WithUnit("s"), metric.WithDescription("Point read latency")); err != nil {
		return nil, err
	}
	if m.readBytes, err = meter.Int64Histogram("eventrepo.pebble.read.size",
		metric.WithUnit("By"), metric.WithDescription("Point read value size")); err != nil {
		return nil, err
	}
	if m.commitLatency, err = meter.Float64Histogram("eventrepo.pebble.commit.duration",
		metric.WithUnit("s"), metric.WithDescription("Batch commit latency")); err != nil {
		return nil, err
	}
	if m.commitBytes, err = meter.Int64Histogram("eventrepo.pebble.commit.size",
		metric.WithUnit("By"), metric.WithDescription("Batch commit size")); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *otelMetrics) ObserveRead(elapsed time.Duration, bytes int) {
	ctx := context.Background()
	m.readLatency.Record(ctx, elapsed.Seconds())
	m.readBytes.Record(ctx, int64(bytes))
}

func (m *otelMetrics) ObserveBatchCommit(elapsed time.Duration, bytes int) {
	ctx := context.Background()
	m.commitLatency.Record(ctx, elapsed.Seconds())
	m.commitBytes.Record(ctx, int64(bytes))
}

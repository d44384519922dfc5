package telemetry

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/jensholdgaard/eventrepo/internal/event"
)

const instrumentationName = "github.com/jensholdgaard/eventrepo/internal/telemetry"

var _ event.Repository = (*Repository)(nil)

// Repository decorates an event.Repository with a span per operation,
// operation metrics and logs for writes.
type Repository struct {
	next   event.Repository
	logger *slog.Logger
	tracer trace.Tracer

	created  metric.Int64Counter
	read     metric.Int64Counter
	duration metric.Float64Histogram
}

// Instrument wraps next with the tracer and meter of p.
func Instrument(next event.Repository, p *Provider, logger *slog.Logger) (*Repository, error) {
	meter := p.MeterProvider.Meter(instrumentationName)
	created, err := meter.Int64Counter("eventrepo.events.created",
		metric.WithDescription("Events appended"))
	if err != nil {
		return nil, err
	}
	read, err := meter.Int64Counter("eventrepo.events.read",
		metric.WithDescription("Events returned by reads"))
	if err != nil {
		return nil, err
	}
	duration, err := meter.Float64Histogram("eventrepo.operation.duration",
		metric.WithUnit("s"), metric.WithDescription("Repository operation latency"))
	if err != nil {
		return nil, err
	}
	return &Repository{
		next:     next,
		logger:   logger,
		tracer:   p.TracerProvider.Tracer(instrumentationName),
		created:  created,
		read:     read,
		duration: duration,
	}, nil
}

// start opens the span of one operation and returns the function that
// closes it, recording the outcome.
func (r *Repository) start(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	ctx, span := r.tracer.Start(ctx, "Repository."+op, trace.WithAttributes(attrs...))
	begin := time.Now()
	return ctx, func(err error) {
		r.duration.Record(ctx, time.Since(begin).Seconds(), metric.WithAttributes(
			attribute.String("operation", op),
			attribute.String("outcome", outcome(err)),
		))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, event.ErrDuplicateIdentity):
		return "duplicate"
	case errors.Is(err, event.ErrCursorNotFound):
		return "cursor_not_found"
	case errors.Is(err, event.ErrInvalidArgument):
		return "invalid_argument"
	default:
		return "error"
	}
}

func (r *Repository) Create(ctx context.Context, e event.Event, stream string) (event.Event, error) {
	ctx, end := r.start(ctx, "Create",
		attribute.String("stream", stream),
		attribute.String("event_type", e.Type),
	)
	out, err := r.next.Create(ctx, e, stream)
	end(err)

	log := LogWithTrace(ctx, r.logger)
	if err != nil {
		log.WarnContext(ctx, "event not created",
			slog.String("stream", stream),
			slog.String("event_id", e.ID),
			slog.Any("error", err),
		)
		return out, err
	}
	r.created.Add(ctx, 1, metric.WithAttributes(attribute.String("event_type", out.Type)))
	log.InfoContext(ctx, "event created",
		slog.String("stream", stream),
		slog.String("event_id", out.ID),
		slog.String("event_type", out.Type),
		slog.Uint64("position", out.Position),
	)
	return out, nil
}

func (r *Repository) HasEvent(ctx context.Context, id string) (bool, error) {
	ctx, end := r.start(ctx, "HasEvent", attribute.String("event_id", id))
	ok, err := r.next.HasEvent(ctx, id)
	end(err)
	return ok, err
}

func (r *Repository) LastStreamEvent(ctx context.Context, stream string) (event.Event, bool, error) {
	ctx, end := r.start(ctx, "LastStreamEvent", attribute.String("stream", stream))
	e, ok, err := r.next.LastStreamEvent(ctx, stream)
	end(err)
	if ok {
		r.read.Add(ctx, 1)
	}
	return e, ok, err
}

func (r *Repository) DeleteStream(ctx context.Context, stream string) error {
	ctx, end := r.start(ctx, "DeleteStream", attribute.String("stream", stream))
	err := r.next.DeleteStream(ctx, stream)
	end(err)

	log := LogWithTrace(ctx, r.logger)
	if err != nil {
		log.ErrorContext(ctx, "failed to delete stream", slog.String("stream", stream), slog.Any("error", err))
		return err
	}
	log.InfoContext(ctx, "stream deleted", slog.String("stream", stream))
	return nil
}

func (r *Repository) ReadAllStreamsForward(ctx context.Context, from event.Position, count int) ([]event.Event, error) {
	ctx, end := r.start(ctx, "ReadAllStreamsForward", readAttrs("", from, count)...)
	return r.finishRead(ctx, end)(r.next.ReadAllStreamsForward(ctx, from, count))
}

func (r *Repository) ReadAllStreamsBackward(ctx context.Context, from event.Position, count int) ([]event.Event, error) {
	ctx, end := r.start(ctx, "ReadAllStreamsBackward", readAttrs("", from, count)...)
	return r.finishRead(ctx, end)(r.next.ReadAllStreamsBackward(ctx, from, count))
}

func (r *Repository) ReadEventsForward(ctx context.Context, stream string, from event.Position, count int) ([]event.Event, error) {
	ctx, end := r.start(ctx, "ReadEventsForward", readAttrs(stream, from, count)...)
	return r.finishRead(ctx, end)(r.next.ReadEventsForward(ctx, stream, from, count))
}

func (r *Repository) ReadEventsBackward(ctx context.Context, stream string, from event.Position, count int) ([]event.Event, error) {
	ctx, end := r.start(ctx, "ReadEventsBackward", readAttrs(stream, from, count)...)
	return r.finishRead(ctx, end)(r.next.ReadEventsBackward(ctx, stream, from, count))
}

func (r *Repository) ReadStreamEventsForward(ctx context.Context, stream string) ([]event.Event, error) {
	ctx, end := r.start(ctx, "ReadStreamEventsForward", attribute.String("stream", stream))
	return r.finishRead(ctx, end)(r.next.ReadStreamEventsForward(ctx, stream))
}

func (r *Repository) ReadStreamEventsBackward(ctx context.Context, stream string) ([]event.Event, error) {
	ctx, end := r.start(ctx, "ReadStreamEventsBackward", attribute.String("stream", stream))
	return r.finishRead(ctx, end)(r.next.ReadStreamEventsBackward(ctx, stream))
}

func readAttrs(stream string, from event.Position, count int) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String("from", from.String()),
		attribute.Int("count", count),
	}
	if stream != "" {
		attrs = append(attrs, attribute.String("stream", stream))
	}
	return attrs
}

func (r *Repository) finishRead(ctx context.Context, end func(error)) func([]event.Event, error) ([]event.Event, error) {
	return func(events []event.Event, err error) ([]event.Event, error) {
		end(err)
		if err == nil {
			r.read.Add(ctx, int64(len(events)))
		}
		return events, err
	}
}

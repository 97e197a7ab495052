package atomicfile

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/rbaliyan/config-secrets/atomicfile"

type telemetry struct {
	tracer        trace.Tracer
	writes        metric.Int64Counter
	reads         metric.Int64Counter
	writeDuration metric.Float64Histogram
}

func newTelemetry(mp metric.MeterProvider, tp trace.TracerProvider) (*telemetry, error) {
	meter := mp.Meter(instrumentationName)

	writes, err := meter.Int64Counter(
		"config_secrets_writes_total",
		metric.WithDescription("Total number of atomic document writes"),
		metric.WithUnit("{write}"),
	)
	if err != nil {
		return nil, fmt.Errorf("atomicfile: failed to create write counter: %w", err)
	}

	reads, err := meter.Int64Counter(
		"config_secrets_reads_total",
		metric.WithDescription("Total number of recovery reads by the source that satisfied them"),
		metric.WithUnit("{read}"),
	)
	if err != nil {
		return nil, fmt.Errorf("atomicfile: failed to create read counter: %w", err)
	}

	writeDuration, err := meter.Float64Histogram(
		"config_secrets_write_duration_seconds",
		metric.WithDescription("Duration of atomic document writes in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("atomicfile: failed to create write duration histogram: %w", err)
	}

	return &telemetry{
		tracer:        tp.Tracer(instrumentationName),
		writes:        writes,
		reads:         reads,
		writeDuration: writeDuration,
	}, nil
}

func (t *telemetry) recordWrite(ctx context.Context, d time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	attrs := metric.WithAttributes(attribute.String("status", status))
	t.writes.Add(ctx, 1, attrs)
	t.writeDuration.Record(ctx, d.Seconds(), attrs)
}

func (t *telemetry) recordRead(ctx context.Context, source Source) {
	t.reads.Add(ctx, 1, metric.WithAttributes(attribute.String("source", source.String())))
}

// endSpan records err on the span, if any, and ends it.
func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

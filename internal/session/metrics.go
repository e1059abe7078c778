package session

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// Metric instruments. They are no-ops until InitMetrics runs so sessions can
// be exercised without a meter provider.
var (
	activeSessions metric.Int64UpDownCounter = noop.Int64UpDownCounter{}
	eventsCounter  metric.Int64Counter       = noop.Int64Counter{}
	solveHistogram metric.Float64Histogram   = noop.Float64Histogram{}
	solveFailures  metric.Int64Counter       = noop.Int64Counter{}
	errorCounter   metric.Int64Counter       = noop.Int64Counter{}
)

// InitMetrics registers the session instruments. Call this once at startup
// (after observability.InitMetrics).
func InitMetrics() error {
	meter := otel.Meter("session")

	var err error

	activeSessions, err = meter.Int64UpDownCounter("session.active",
		metric.WithDescription("Number of open calculator sessions"),
		metric.WithUnit("{session}"),
	)
	if err != nil {
		return fmt.Errorf("creating active sessions counter: %w", err)
	}

	eventsCounter, err = meter.Int64Counter("session.events.total",
		metric.WithDescription("State machine events applied, by event"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return fmt.Errorf("creating events counter: %w", err)
	}

	solveHistogram, err = meter.Float64Histogram("session.solve.duration",
		metric.WithDescription("Duration of AI solve requests in milliseconds"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000),
	)
	if err != nil {
		return fmt.Errorf("creating solve histogram: %w", err)
	}

	solveFailures, err = meter.Int64Counter("session.solve.failures.total",
		metric.WithDescription("AI solve requests that ended in the error state"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return fmt.Errorf("creating solve failure counter: %w", err)
	}

	errorCounter, err = meter.Int64Counter("session.errors.total",
		metric.WithDescription("Rejected session requests"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return fmt.Errorf("creating error counter: %w", err)
	}

	return nil
}

func recordEvent(name string) {
	eventsCounter.Add(context.Background(), 1, metric.WithAttributes(attribute.String("event", name)))
}

package calculator

import (
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// Metric instruments. They start as no-ops so the calculator works without
// InitMetrics; InitMetrics swaps in instruments from the global provider.
var (
	tokenCounter      metric.Int64Counter     = noop.Int64Counter{}
	evaluationCounter metric.Int64Counter     = noop.Int64Counter{}
	errorCounter      metric.Int64Counter     = noop.Int64Counter{}
	evalHistogram     metric.Float64Histogram = noop.Float64Histogram{}
	historyGauge      metric.Int64Gauge       = noop.Int64Gauge{}
)

// InitMetrics registers the calculator instruments.
// Call this once at startup (after observability.InitMetrics).
func InitMetrics() error {
	meter := otel.Meter("calculator")

	var err error

	tokenCounter, err = meter.Int64Counter("calculator.tokens.total",
		metric.WithDescription("Total number of button presses handled"),
		metric.WithUnit("{token}"),
	)
	if err != nil {
		return fmt.Errorf("creating token counter: %w", err)
	}

	evaluationCounter, err = meter.Int64Counter("calculator.evaluations.total",
		metric.WithDescription("Total number of expression evaluations by outcome"),
		metric.WithUnit("{evaluation}"),
	)
	if err != nil {
		return fmt.Errorf("creating evaluation counter: %w", err)
	}

	errorCounter, err = meter.Int64Counter("calculator.errors.total",
		metric.WithDescription("Total number of calculator errors"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return fmt.Errorf("creating error counter: %w", err)
	}

	evalHistogram, err = meter.Float64Histogram("calculator.evaluation.duration",
		metric.WithDescription("Duration of expression evaluations in milliseconds"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.5, 1, 5, 10, 50),
	)
	if err != nil {
		return fmt.Errorf("creating evaluation histogram: %w", err)
	}

	historyGauge, err = meter.Int64Gauge("calculator.history.size",
		metric.WithDescription("Number of entries in the calculation history"),
		metric.WithUnit("{entry}"),
	)
	if err != nil {
		return fmt.Errorf("creating history gauge: %w", err)
	}

	return nil
}

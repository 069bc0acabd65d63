package loan

import (
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// Metric instruments, initialized once via InitMetrics().
var (
	solvesCounter       metric.Int64Counter
	iterationsHistogram metric.Int64Histogram
	durationHistogram   metric.Float64Histogram
	errorCounter        metric.Int64Counter
	paymentGauge        metric.Float64Gauge
	cacheCounter        metric.Int64Counter
)

// InitMetrics registers the loan domain's OTel instruments.
// Call this once at startup (after observability.InitMetrics).
func InitMetrics() error {
	meter := otel.Meter("loan")

	var err error

	solvesCounter, err = meter.Int64Counter("loan.solves.total",
		metric.WithDescription("Solver invocations by method and terminal status"),
		metric.WithUnit("{solve}"),
	)
	if err != nil {
		return fmt.Errorf("creating solves counter: %w", err)
	}

	iterationsHistogram, err = meter.Int64Histogram("loan.solve.iterations",
		metric.WithDescription("Balance simulations run per solve"),
		metric.WithUnit("{iteration}"),
		metric.WithExplicitBucketBoundaries(1, 10, 30, 100, 1e3, 1e4, 1e5, 1e6),
	)
	if err != nil {
		return fmt.Errorf("creating iterations histogram: %w", err)
	}

	durationHistogram, err = meter.Float64Histogram("loan.solve.duration",
		metric.WithDescription("Duration of solver runs in milliseconds"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(0.01, 0.1, 1, 10, 100, 1000, 10000),
	)
	if err != nil {
		return fmt.Errorf("creating duration histogram: %w", err)
	}

	errorCounter, err = meter.Int64Counter("loan.errors.total",
		metric.WithDescription("Total number of rejected loan requests"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return fmt.Errorf("creating error counter: %w", err)
	}

	paymentGauge, err = meter.Float64Gauge("loan.last_payment",
		metric.WithDescription("Payment returned by the most recent solve"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("creating payment gauge: %w", err)
	}

	cacheCounter, err = meter.Int64Counter("loan.cache.lookups",
		metric.WithDescription("Result cache lookups by outcome"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		return fmt.Errorf("creating cache counter: %w", err)
	}

	return nil
}

package auth

import (
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// Metric instruments — initialized once via InitMetrics().
var (
	attemptCounter metric.Int64Counter
	errorCounter   metric.Int64Counter
)

// InitMetrics registers custom OTel metric instruments for the auth
// domain. Call this once at startup (after observability.InitMetrics).
func InitMetrics() error {
	meter := otel.Meter("auth")

	var err error

	attemptCounter, err = meter.Int64Counter("auth.attempts.total",
		metric.WithDescription("Total number of authentication attempts"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return fmt.Errorf("creating attempt counter: %w", err)
	}

	errorCounter, err = meter.Int64Counter("auth.errors.total",
		metric.WithDescription("Total number of authentication failures"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return fmt.Errorf("creating error counter: %w", err)
	}

	return nil
}

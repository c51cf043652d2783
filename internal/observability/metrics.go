package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricChecksTotal    = "phpstand.checks.total"
	metricCheckDuration  = "phpstand.check.duration.seconds"
	metricChecksInflight = "phpstand.checks.inflight"

	attrScope  = "scope"
	attrStatus = "status"
)

// durationBucketBoundaries covers 50ms to 600s: file-scope hover checks are
// sub-second while cold project checks can run for minutes.
var durationBucketBoundaries = []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600}

// CheckMetrics holds the OTel instruments for check rate, status, and duration.
type CheckMetrics struct {
	checksTotal    metric.Int64Counter
	checkDuration  metric.Float64Histogram
	checksInflight metric.Int64UpDownCounter
}

// NewCheckMetrics creates check metric instruments from the given meter.
func NewCheckMetrics(mt metric.Meter) (*CheckMetrics, error) {
	b := newMetricBuilder(mt)

	cm := &CheckMetrics{
		checksTotal:    b.counter(metricChecksTotal, "Total number of checks", "{check}"),
		checkDuration:  b.histogram(metricCheckDuration, "Check duration in seconds", "s", durationBucketBoundaries...),
		checksInflight: b.upDownCounter(metricChecksInflight, "Number of in-flight checks", "{check}"),
	}

	if b.err != nil {
		return nil, b.err
	}

	return cm, nil
}

// RecordCheck records a settled check with its scope, terminal status, and duration.
func (cm *CheckMetrics) RecordCheck(ctx context.Context, scope, status string, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String(attrScope, scope),
		attribute.String(attrStatus, status),
	)

	cm.checksTotal.Add(ctx, 1, attrs)
	cm.checkDuration.Record(ctx, duration.Seconds(), attrs)
}

// TrackInflight increments the in-flight gauge and returns a function to decrement it.
func (cm *CheckMetrics) TrackInflight(ctx context.Context, scope string) func() {
	attrs := metric.WithAttributes(attribute.String(attrScope, scope))
	cm.checksInflight.Add(ctx, 1, attrs)

	return func() {
		cm.checksInflight.Add(ctx, -1, attrs)
	}
}

package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric instrument names.
const (
	MetricOpTotal    = "todogate.op.total"
	MetricOpDuration = "todogate.op.duration_ms"
)

// Metrics records operation counts and latencies.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordOperation counts one operation and records its duration.
	RecordOperation(ctx context.Context, meta OpMeta, outcome string, duration time.Duration)

	// RecordOutcome counts one operation without a duration.
	RecordOutcome(ctx context.Context, meta OpMeta, outcome string)
}

type metricsImpl struct {
	total    metric.Int64Counter
	duration metric.Float64Histogram
}

// NewMetrics creates the operation instruments on meter.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	total, err := meter.Int64Counter(
		MetricOpTotal,
		metric.WithDescription("Total number of operations by outcome"),
		metric.WithUnit("{op}"),
	)
	if err != nil {
		return nil, err
	}

	duration, err := meter.Float64Histogram(
		MetricOpDuration,
		metric.WithDescription("Operation duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{total: total, duration: duration}, nil
}

func (m *metricsImpl) RecordOperation(ctx context.Context, meta OpMeta, outcome string, duration time.Duration) {
	opt := metric.WithAttributes(opAttrs(meta, outcome)...)
	m.total.Add(ctx, 1, opt)
	m.duration.Record(ctx, float64(duration)/float64(time.Millisecond), opt)
}

func (m *metricsImpl) RecordOutcome(ctx context.Context, meta OpMeta, outcome string) {
	m.total.Add(ctx, 1, metric.WithAttributes(opAttrs(meta, outcome)...))
}

func opAttrs(meta OpMeta, outcome string) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String("op", meta.Name),
		attribute.String("outcome", outcome),
	}
	if meta.Component != "" {
		attrs = append(attrs, attribute.String("component", meta.Component))
	}
	return attrs
}

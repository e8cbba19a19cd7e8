package observe

import (
	"context"
	"time"
)

// Outcome names recorded by the default classifier.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// OpFunc is an instrumented operation.
type OpFunc func(ctx context.Context) error

// Classifier maps an operation's error to an outcome label and reports whether
// the error is a failure of the service (as opposed to an expected rejection
// such as bad credentials).
type Classifier func(err error) (outcome string, failed bool)

// DefaultClassifier labels nil as "ok" and every error as a failed "error".
func DefaultClassifier(err error) (string, bool) {
	if err == nil {
		return OutcomeOK, false
	}
	return OutcomeError, true
}

// Middleware wraps operations with tracing, metrics, and logging.
//
// Contract:
//   - Concurrency: safe for concurrent use.
//   - Context: the span context is propagated to the wrapped function.
//   - Errors: errors from the wrapped function are recorded and returned unchanged.
type Middleware struct {
	tracer   Tracer
	metrics  Metrics
	logger   Logger
	classify Classifier
	now      func() time.Time
}

// NewMiddleware creates a Middleware. A nil classifier means DefaultClassifier.
func NewMiddleware(tracer Tracer, metrics Metrics, logger Logger, classify Classifier) *Middleware {
	if classify == nil {
		classify = DefaultClassifier
	}
	return &Middleware{
		tracer:   tracer,
		metrics:  metrics,
		logger:   logger,
		classify: classify,
		now:      time.Now,
	}
}

// MiddlewareFromObserver creates a Middleware from an Observer.
func MiddlewareFromObserver(obs Observer, classify Classifier) (*Middleware, error) {
	metrics, err := NewMetrics(obs.Meter())
	if err != nil {
		return nil, err
	}
	return NewMiddleware(NewTracer(obs.Tracer()), metrics, obs.Logger(), classify), nil
}

// Logger returns the middleware's logger.
func (m *Middleware) Logger() Logger {
	return m.logger
}

// Metrics returns the middleware's metrics recorder.
func (m *Middleware) Metrics() Metrics {
	return m.metrics
}

// Wrap returns fn instrumented under meta.
func (m *Middleware) Wrap(meta OpMeta, fn OpFunc) OpFunc {
	return func(ctx context.Context) error {
		return m.Run(ctx, meta, fn)
	}
}

// Run executes fn under a span and records its outcome. Extra fields are added
// to the completion log line.
func (m *Middleware) Run(ctx context.Context, meta OpMeta, fn OpFunc, fields ...Field) error {
	ctx, span := m.tracer.StartSpan(ctx, meta)
	start := m.now()

	err := fn(ctx)

	duration := m.now().Sub(start)
	outcome, failed := m.classify(err)

	m.tracer.EndSpan(span, outcome, err, failed)
	m.metrics.RecordOperation(ctx, meta, outcome, duration)

	logFields := make([]Field, 0, len(fields)+5)
	logFields = append(logFields,
		F("op", meta.Name),
		F("outcome", outcome),
		F("duration_ms", float64(duration)/float64(time.Millisecond)),
	)
	if meta.Component != "" {
		logFields = append(logFields, F("component", meta.Component))
	}
	logFields = append(logFields, fields...)

	switch {
	case failed:
		m.logger.Error(ctx, "operation failed", append(logFields, Err(err))...)
	case err != nil:
		m.logger.Warn(ctx, "operation rejected", append(logFields, Err(err))...)
	default:
		m.logger.Info(ctx, "operation completed", logFields...)
	}

	return err
}

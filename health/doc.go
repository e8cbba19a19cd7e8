// Package health provides the liveness, readiness and detailed health
// endpoints for todogate.
//
// A Checker reports the Status of one dependency. The Aggregator runs every
// registered checker concurrently under a shared deadline and folds their
// results into an overall Status:
//
//	agg := health.NewAggregator(health.AggregatorConfig{Timeout: 3 * time.Second})
//	agg.Register(health.NewPingChecker("database", db))
//	agg.Register(health.NewBreakerChecker("database_circuit", breaker))
//
//	health.RegisterHandlers(mux, agg)
//
// /healthz only proves the process is serving. /readyz and /health run the
// checks and answer 503 when any of them is unhealthy.
package health

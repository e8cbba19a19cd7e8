// Package resilience provides the failure-isolation primitives used around the
// authentication core.
//
// # Patterns
//
//   - Bulkhead: bounds the number of concurrent CPU-heavy operations (password
//     hashing) and lets callers abandon a slot wait or an in-flight operation
//     when their context ends.
//
//   - Circuit Breaker: stops hammering the record store after consecutive
//     failures. Backed by github.com/sony/gobreaker.
//
//   - Keyed Rate Limiter: per-key token buckets (one per client address) used
//     to throttle login attempts. Backed by golang.org/x/time/rate.
//
//   - Retry: exponential backoff for startup dependencies such as the
//     database connection. Backed by github.com/cenkalti/backoff/v5.
//
// # Usage
//
//	pool := resilience.NewBulkhead(resilience.BulkheadConfig{MaxConcurrent: 4})
//	err := pool.Execute(ctx, func(ctx context.Context) error {
//	    digest, err = bcrypt.GenerateFromPassword(pw, cost)
//	    return err
//	})
//
//	cb := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
//	    Name:         "store",
//	    MaxFailures:  5,
//	    ResetTimeout: 30 * time.Second,
//	})
//	err = cb.Execute(ctx, func(ctx context.Context) error {
//	    return pool.QueryRow(ctx, q, email).Scan(&rec)
//	})
//
// None of these patterns are applied inside the auth core itself: the core
// performs no retries, and callers own deadlines.
package resilience

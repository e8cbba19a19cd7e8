package resilience

import "errors"

var (
	// ErrCircuitOpen means CircuitBreaker.Execute refused to call the operation.
	ErrCircuitOpen = errors.New("resilience: circuit breaker is open")

	// ErrRateLimitExceeded means the key spent its burst and must wait for refill.
	ErrRateLimitExceeded = errors.New("resilience: rate limit exceeded")
)

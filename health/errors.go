package health

import "errors"

var (
	// ErrCheckTimeout is recorded on a Result whose checker outlived the
	// aggregator's per-check timeout.
	ErrCheckTimeout = errors.New("health: check timeout")

	// ErrCheckerNotFound is returned by Aggregator.Check for an unregistered name.
	ErrCheckerNotFound = errors.New("health: checker not found")

	// ErrCircuitOpen is recorded by BreakerChecker while the breaker rejects calls.
	ErrCircuitOpen = errors.New("health: circuit open")
)

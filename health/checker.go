package health

import (
	"context"
	"time"

	"github.com/jonwraymond/todogate/resilience"
)

// Status is ordered by severity so the worst of several results is the max.
type Status int

const (
	StatusHealthy Status = iota
	StatusDegraded
	StatusUnhealthy
)

func (s Status) String() string {
	switch s {
	case StatusHealthy:
		return "healthy"
	case StatusDegraded:
		return "degraded"
	case StatusUnhealthy:
		return "unhealthy"
	default:
		return "unknown"
	}
}

// Result is what a Checker reports. Duration is filled in by the Aggregator.
type Result struct {
	Status   Status
	Message  string
	Details  map[string]any
	Duration time.Duration
	Error    error
}

func Healthy(message string) Result {
	return Result{Status: StatusHealthy, Message: message}
}

func Degraded(message string) Result {
	return Result{Status: StatusDegraded, Message: message}
}

func Unhealthy(message string, err error) Result {
	return Result{Status: StatusUnhealthy, Message: message, Error: err}
}

// WithDetails adds details to a result.
func (r Result) WithDetails(details map[string]any) Result {
	r.Details = details
	return r
}

// Checker reports the health of one component.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: Check must return promptly once ctx is done.
type Checker interface {
	Name() string
	Check(ctx context.Context) Result
}

// CheckerFunc adapts a function to a Checker.
type CheckerFunc struct {
	name string
	fn   func(context.Context) Result
}

// NewCheckerFunc creates a new CheckerFunc.
func NewCheckerFunc(name string, fn func(context.Context) Result) *CheckerFunc {
	return &CheckerFunc{name: name, fn: fn}
}

// Name returns the name of this checker.
func (f *CheckerFunc) Name() string {
	return f.name
}

// Check performs the health check.
func (f *CheckerFunc) Check(ctx context.Context) Result {
	return f.fn(ctx)
}

// Pinger is a dependency that can be probed for reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingChecker reports a Pinger as healthy when Ping succeeds.
type PingChecker struct {
	name   string
	pinger Pinger
}

// NewPingChecker creates a checker that pings p.
func NewPingChecker(name string, p Pinger) *PingChecker {
	return &PingChecker{name: name, pinger: p}
}

// Name returns the name of this checker.
func (c *PingChecker) Name() string {
	return c.name
}

// Check pings the dependency.
func (c *PingChecker) Check(ctx context.Context) Result {
	if err := c.pinger.Ping(ctx); err != nil {
		return Unhealthy("ping failed", err)
	}
	return Healthy("reachable")
}

// BreakerState exposes the state of a circuit breaker.
type BreakerState interface {
	State() resilience.State
}

// BreakerChecker maps a circuit breaker's state onto a health status:
// closed is healthy, half-open degraded, open unhealthy.
type BreakerChecker struct {
	name    string
	breaker BreakerState
}

// NewBreakerChecker creates a checker for breaker.
func NewBreakerChecker(name string, breaker BreakerState) *BreakerChecker {
	return &BreakerChecker{name: name, breaker: breaker}
}

// Name returns the name of this checker.
func (c *BreakerChecker) Name() string {
	return c.name
}

// Check reads the breaker state.
func (c *BreakerChecker) Check(context.Context) Result {
	state := c.breaker.State()
	details := map[string]any{"state": state.String()}

	switch state {
	case resilience.StateOpen:
		return Unhealthy("circuit open", ErrCircuitOpen).WithDetails(details)
	case resilience.StateHalfOpen:
		return Degraded("circuit probing").WithDetails(details)
	default:
		return Healthy("circuit closed").WithDetails(details)
	}
}

var (
	_ Checker = (*CheckerFunc)(nil)
	_ Checker = (*PingChecker)(nil)
	_ Checker = (*BreakerChecker)(nil)
)

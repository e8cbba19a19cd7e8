package auth

import (
	"context"
	"net/http"
	"slices"
	"strings"
)

// DefaultHeaderName is the header the guard reads the token from.
const DefaultHeaderName = "Authorization"

// Outcome is the result category of an access check.
type Outcome uint8

const (
	Allowed Outcome = iota + 1
	Unauthorized
	Forbidden
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case Allowed:
		return "allowed"
	case Unauthorized:
		return "unauthorized"
	case Forbidden:
		return "forbidden"
	default:
		return "unknown"
	}
}

// Decision is the per-request result of Guard.Check.
type Decision struct {
	Outcome Outcome

	// Session is set when Outcome is Allowed or Forbidden.
	Session *Session

	// Err explains a denial. It is nil when Outcome is Allowed.
	Err error
}

// Allowed reports whether the request may proceed.
func (d Decision) Allowed() bool {
	return d.Outcome == Allowed
}

// DecisionHook observes every decision a guard makes.
type DecisionHook func(ctx context.Context, d Decision)

// GuardOption configures a Guard.
type GuardOption func(*Guard)

// WithRequiredRoles restricts access to sessions holding one of roles.
// An empty set admits any authenticated session.
func WithRequiredRoles(roles ...Role) GuardOption {
	return func(g *Guard) {
		g.required = slices.Clone(roles)
	}
}

// WithHeaderName sets the header the token is read from.
func WithHeaderName(name string) GuardOption {
	return func(g *Guard) {
		if name != "" {
			g.header = name
		}
	}
}

// WithDecisionHook registers a hook called for every decision.
func WithDecisionHook(hook DecisionHook) GuardOption {
	return func(g *Guard) {
		g.hook = hook
	}
}

// Guard enforces token validity and role membership on protected operations.
type Guard struct {
	verifier TokenVerifier
	header   string
	required []Role
	hook     DecisionHook
}

// NewGuard creates a guard backed by verifier.
func NewGuard(verifier TokenVerifier, opts ...GuardOption) *Guard {
	g := &Guard{
		verifier: verifier,
		header:   DefaultHeaderName,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Require returns a guard sharing g's verifier, header and hook but demanding
// one of roles. With no roles it admits any authenticated session.
func (g *Guard) Require(roles ...Role) *Guard {
	return &Guard{
		verifier: g.verifier,
		header:   g.header,
		required: slices.Clone(roles),
		hook:     g.hook,
	}
}

// RequiredRoles returns the roles the guard demands.
func (g *Guard) RequiredRoles() []Role {
	return slices.Clone(g.required)
}

// Check evaluates the token carried in headers.
//
// Signature and expiry are checked before the role; a token that fails
// verification is Unauthorized regardless of its role.
func (g *Guard) Check(ctx context.Context, headers http.Header) Decision {
	d := g.decide(headers)
	if g.hook != nil {
		g.hook(ctx, d)
	}
	return d
}

func (g *Guard) decide(headers http.Header) Decision {
	token := extractToken(headers.Get(g.header))
	if token == "" {
		return Decision{Outcome: Unauthorized, Err: ErrMissingCredentials}
	}

	session, err := g.verifier.Verify(token)
	if err != nil {
		return Decision{Outcome: Unauthorized, Err: err}
	}

	if len(g.required) > 0 && !slices.Contains(g.required, session.Role) {
		return Decision{
			Outcome: Forbidden,
			Session: session,
			Err: &AuthzError{
				Subject:  session.Email,
				UserID:   session.UserID,
				Role:     session.Role,
				Required: slices.Clone(g.required),
			},
		}
	}

	return Decision{Outcome: Allowed, Session: session}
}

// extractToken accepts a bare token or "Bearer <token>".
func extractToken(value string) string {
	value = strings.TrimSpace(value)
	if len(value) > len("bearer ") && strings.EqualFold(value[:len("bearer ")], "bearer ") {
		value = strings.TrimSpace(value[len("bearer "):])
	}
	return value
}

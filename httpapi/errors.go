package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/jonwraymond/todogate/auth"
	"github.com/jonwraymond/todogate/observe"
	"github.com/jonwraymond/todogate/resilience"
	"github.com/jonwraymond/todogate/store"
)

// Error is an error with a fixed HTTP status and client-facing message.
type Error struct {
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func badRequest(message string, err error) error {
	return &Error{Status: http.StatusBadRequest, Message: message, Err: err}
}

func notFound(resource string) error {
	return &Error{Status: http.StatusNotFound, Message: resource + " not found", Err: store.ErrNotFound}
}

const msgInvalidLogin = "invalid email or password"

// statusFor maps err to a status code and a message safe to show clients.
// Details of infrastructure failures stay in the server log.
func statusFor(err error) (int, string) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status, apiErr.Message
	}

	switch {
	case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrMissingCredentials):
		return http.StatusUnauthorized, msgInvalidLogin
	case errors.Is(err, auth.ErrTokenExpired), errors.Is(err, auth.ErrTokenMalformed), errors.Is(err, auth.ErrInvalidSignature):
		return http.StatusUnauthorized, "Unauthorized"
	case errors.Is(err, auth.ErrForbidden):
		return http.StatusForbidden, "Forbidden"
	case errors.Is(err, resilience.ErrRateLimitExceeded):
		return http.StatusTooManyRequests, "too many login attempts"
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, store.ErrEmailTaken):
		return http.StatusConflict, "email already registered"
	case errors.Is(err, store.ErrInvalidReference):
		return http.StatusBadRequest, "referenced user does not exist"
	case errors.Is(err, store.ErrInvalidInput):
		return http.StatusBadRequest, "invalid input"
	case errors.Is(err, auth.ErrInvalidRole):
		return http.StatusBadRequest, "invalid role"
	case errors.Is(err, auth.ErrPasswordTooLong):
		return http.StatusBadRequest, "password too long"
	case errors.Is(err, store.ErrUnavailable), errors.Is(err, auth.ErrStoreUnavailable):
		return http.StatusServiceUnavailable, "service unavailable"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "request timed out"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// Classify labels request outcomes for telemetry. Client mistakes and
// denials are recorded but are not failures of the service.
func Classify(err error) (string, bool) {
	if err == nil {
		return observe.OutcomeOK, false
	}
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrMissingCredentials):
		return "invalid_credentials", false
	case errors.Is(err, auth.ErrForbidden):
		return "forbidden", false
	case errors.Is(err, resilience.ErrRateLimitExceeded):
		return "throttled", false
	case errors.Is(err, context.Canceled):
		return "canceled", false
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout", true
	}
	status, _ := statusFor(err)
	switch {
	case status == http.StatusUnauthorized:
		return "unauthorized", false
	case status == http.StatusNotFound:
		return "not_found", false
	case status == http.StatusConflict:
		return "conflict", false
	case status < http.StatusInternalServerError:
		return "bad_request", false
	default:
		return observe.OutcomeError, true
	}
}

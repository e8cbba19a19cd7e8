package auth

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestSentinelErrors(t *testing.T) {
	errs := []error{
		ErrMissingCredentials, ErrInvalidCredentials, ErrUserNotFound,
		ErrTokenMalformed, ErrInvalidSignature, ErrTokenExpired,
		ErrForbidden, ErrHashing, ErrStoreUnavailable,
		ErrPasswordTooLong, ErrSecretTooShort, ErrInvalidTTL, ErrInvalidRole, ErrInvalidCost,
	}

	seen := make(map[string]bool)
	for _, err := range errs {
		msg := err.Error()
		if !strings.HasPrefix(msg, "auth: ") {
			t.Errorf("%q lacks package prefix", msg)
		}
		if seen[msg] {
			t.Errorf("duplicate error message %q", msg)
		}
		seen[msg] = true
	}
}

func TestAuthzError(t *testing.T) {
	err := &AuthzError{Subject: "u@example.com", UserID: 2, Role: RoleUser, Required: []Role{RoleAdmin}}

	if !errors.Is(err, ErrForbidden) {
		t.Error("errors.Is(AuthzError, ErrForbidden) = false")
	}
	if errors.Is(err, ErrInvalidCredentials) {
		t.Error("errors.Is(AuthzError, ErrInvalidCredentials) = true")
	}

	wrapped := fmt.Errorf("handler: %w", err)
	if !errors.Is(wrapped, ErrForbidden) {
		t.Error("wrapped AuthzError does not match ErrForbidden")
	}
	if !strings.Contains(err.Error(), `role="user"`) {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestIsInfrastructure(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{fmt.Errorf("%w: dial tcp", ErrStoreUnavailable), true},
		{fmt.Errorf("%w: bad digest", ErrHashing), true},
		{ErrInvalidCredentials, false},
		{ErrTokenExpired, false},
		{nil, false},
	}
	for _, tt := range tests {
		if got := IsInfrastructure(tt.err); got != tt.want {
			t.Errorf("IsInfrastructure(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

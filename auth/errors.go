package auth

import (
	"errors"
	"fmt"
)

// Sentinel errors for authentication and authorization.
var (
	// Authentication errors
	ErrMissingCredentials = errors.New("auth: missing credentials")
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrUserNotFound       = errors.New("auth: user not found")

	// Token errors
	ErrTokenMalformed   = errors.New("auth: token malformed")
	ErrInvalidSignature = errors.New("auth: invalid token signature")
	ErrTokenExpired     = errors.New("auth: token expired")

	// Authorization errors
	ErrForbidden = errors.New("auth: access denied")

	// Infrastructure errors
	ErrHashing          = errors.New("auth: hashing failed")
	ErrStoreUnavailable = errors.New("auth: credential store unavailable")

	// Construction and input errors
	ErrPasswordTooLong = errors.New("auth: password exceeds 72 bytes")
	ErrSecretTooShort  = errors.New("auth: signing secret shorter than 32 bytes")
	ErrInvalidTTL      = errors.New("auth: token ttl must be positive")
	ErrInvalidRole     = errors.New("auth: invalid role")
	ErrInvalidCost     = errors.New("auth: bcrypt cost out of range")
)

// AuthzError represents an authorization failure: the token was valid but its
// role is not in the required set.
type AuthzError struct {
	// Subject is the email of the identity that was denied.
	Subject string

	// UserID is the id of the identity that was denied.
	UserID int64

	// Role is the role the token carried.
	Role Role

	// Required is the role set the guard demanded.
	Required []Role
}

// Error returns the error message.
func (e *AuthzError) Error() string {
	return fmt.Sprintf("authorization denied: subject=%q user_id=%d role=%q required=%v",
		e.Subject, e.UserID, e.Role, e.Required)
}

// Is reports whether this error matches the target.
func (e *AuthzError) Is(target error) bool {
	return target == ErrForbidden
}

// IsInfrastructure reports whether err is a server-side failure rather than a
// credential, token or role rejection.
func IsInfrastructure(err error) bool {
	return errors.Is(err, ErrStoreUnavailable) || errors.Is(err, ErrHashing)
}

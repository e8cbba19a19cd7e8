// Package auth provides credential-based authentication and role-gated
// authorization for the todogate service.
//
// The package has four collaborating parts:
//
//   - Hasher: salted, work-factor adaptive password hashing (bcrypt) run on a
//     bounded worker pool.
//   - TokenCodec: issues and verifies HS256-signed session tokens.
//   - Authenticator: exchanges an email/password pair for an Identity and a
//     session token.
//   - Guard: checks the token presented on a request and, optionally, that
//     its role belongs to a required set.
//
// All components are immutable after construction and safe for concurrent
// use. The package keeps no global state; the signing secret is handed to
// NewTokenCodec once and never rotated.
//
// # Failure model
//
// Credential, token and role failures are reported with sentinel errors
// (ErrInvalidCredentials, ErrTokenExpired, ErrForbidden, ...). Infrastructure
// failures (ErrStoreUnavailable, ErrHashing) stay distinguishable so the
// transport can answer them with a 5xx instead of a 401.
//
// # Token transport
//
// The Guard reads the token from a single header (Authorization by default).
// Both the bare token and the "Bearer <token>" form are accepted.
package auth

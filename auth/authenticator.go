package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// DefaultTokenTTL is the session lifetime used when none is configured.
const DefaultTokenTTL = time.Hour

// CredentialStore looks up stored principals by email.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: implementations must honor cancellation and deadlines.
// - Errors: FindCredentialByEmail returns ErrUserNotFound (possibly wrapped)
//   when no record matches. Any other error is treated as the store being
//   unavailable.
type CredentialStore interface {
	FindCredentialByEmail(ctx context.Context, email string) (*CredentialRecord, error)
}

// CredentialStoreFunc is an adapter to allow use of ordinary functions as
// CredentialStores.
type CredentialStoreFunc func(ctx context.Context, email string) (*CredentialRecord, error)

// FindCredentialByEmail calls the function.
func (f CredentialStoreFunc) FindCredentialByEmail(ctx context.Context, email string) (*CredentialRecord, error) {
	return f(ctx, email)
}

// AuthenticatorConfig configures the authenticator.
type AuthenticatorConfig struct {
	// TokenTTL is the lifetime of issued session tokens.
	// Default: 1 hour
	TokenTTL time.Duration
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	Identity  Identity
	Token     string
	ExpiresAt time.Time
}

// Authenticator exchanges an email/password pair for a session token.
type Authenticator struct {
	store  CredentialStore
	hasher Hasher
	codec  *TokenCodec
	ttl    time.Duration

	// dummyDigest is compared against when the email is unknown so that both
	// failure paths cost one hash comparison. It is built on first use and
	// rebuilt on the next login if building it failed.
	dummyMu     sync.Mutex
	dummyDigest string
}

// NewAuthenticator creates an authenticator.
func NewAuthenticator(store CredentialStore, hasher Hasher, codec *TokenCodec, config AuthenticatorConfig) *Authenticator {
	if config.TokenTTL <= 0 {
		config.TokenTTL = DefaultTokenTTL
	}
	return &Authenticator{
		store:  store,
		hasher: hasher,
		codec:  codec,
		ttl:    config.TokenTTL,
	}
}

// TokenTTL returns the lifetime of issued tokens.
func (a *Authenticator) TokenTTL() time.Duration {
	return a.ttl
}

// Login verifies the credentials and issues a session token.
//
// An unknown email fails with an error matching both ErrInvalidCredentials and
// ErrUserNotFound; a wrong password fails with ErrInvalidCredentials alone.
// Store and hashing failures wrap ErrStoreUnavailable and ErrHashing.
func (a *Authenticator) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if email == "" || password == "" {
		return nil, ErrMissingCredentials
	}

	// No stored email contains NUL or invalid UTF-8, and the database
	// rejects such values outright.
	if !utf8.ValidString(email) || strings.ContainsRune(email, 0) {
		a.burnComparison(ctx, password)
		return nil, fmt.Errorf("%w: %w", ErrInvalidCredentials, ErrUserNotFound)
	}

	rec, err := a.store.FindCredentialByEmail(ctx, email)
	if err != nil {
		switch {
		case errors.Is(err, ErrUserNotFound):
			a.burnComparison(ctx, password)
			return nil, fmt.Errorf("%w: %w", ErrInvalidCredentials, ErrUserNotFound)
		case isContextErr(err):
			return nil, err
		default:
			return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
		}
	}

	ok, err := a.hasher.Verify(ctx, password, rec.PasswordHash)
	if err != nil {
		if isContextErr(err) || errors.Is(err, ErrHashing) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrHashing, err)
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}

	token, session, err := a.codec.IssueSession(Claims{
		UserID: rec.ID,
		Role:   rec.Role,
		Email:  rec.Email,
	}, a.ttl)
	if err != nil {
		return nil, err
	}

	return &LoginResult{
		Identity:  IdentityFromRecord(rec),
		Token:     token,
		ExpiresAt: session.ExpiresAt,
	}, nil
}

func (a *Authenticator) burnComparison(ctx context.Context, password string) {
	if digest := a.dummy(ctx); digest != "" {
		_, _ = a.hasher.Verify(ctx, password, digest)
	}
}

func (a *Authenticator) dummy(ctx context.Context) string {
	a.dummyMu.Lock()
	defer a.dummyMu.Unlock()
	if a.dummyDigest == "" {
		if digest, err := a.hasher.Hash(context.WithoutCancel(ctx), uuid.NewString()); err == nil {
			a.dummyDigest = digest
		}
	}
	return a.dummyDigest
}

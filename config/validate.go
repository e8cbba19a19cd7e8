package config

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/jonwraymond/todogate/auth"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("config: invalid")

// Validate checks ranges and cross-field rules the parser cannot express.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
		}
	}

	check(c.HTTP.ReadTimeout > 0, "HTTP_READ_TIMEOUT must be positive")
	check(c.HTTP.WriteTimeout > 0, "HTTP_WRITE_TIMEOUT must be positive")
	check(c.HTTP.RequestTimeout > 0, "HTTP_REQUEST_TIMEOUT must be positive")
	check(c.HTTP.ShutdownTimeout > 0, "HTTP_SHUTDOWN_TIMEOUT must be positive")

	check(c.DB.MaxConns > 0, "DB_MAX_CONNS must be positive")
	check(c.DB.ConnectAttempts > 0, "DB_CONNECT_ATTEMPTS must be positive")

	check(len(c.Auth.JWTSecret) >= auth.MinSecretBytes, "AUTH_JWT_SECRET must be at least %d bytes", auth.MinSecretBytes)
	check(c.Auth.TokenTTL > 0, "AUTH_TOKEN_TTL must be positive")
	check(c.Auth.BcryptCost >= bcrypt.MinCost && c.Auth.BcryptCost <= bcrypt.MaxCost,
		"AUTH_BCRYPT_COST must be in [%d, %d]", bcrypt.MinCost, bcrypt.MaxCost)
	check(c.Auth.HashWorkers >= 0, "AUTH_HASH_WORKERS must not be negative")
	check(c.Auth.HeaderName != "", "AUTH_HEADER_NAME must not be empty")
	check(c.Auth.LoginRatePerMinute > 0, "AUTH_LOGIN_RATE_PER_MINUTE must be positive")
	check(c.Auth.LoginBurst > 0, "AUTH_LOGIN_BURST must be positive")
	check((c.Auth.SeedAdminEmail == "") == (c.Auth.SeedAdminPassword == ""),
		"AUTH_SEED_ADMIN_EMAIL and AUTH_SEED_ADMIN_PASSWORD must be set together")

	obs := c.Obs.Observe()
	if err := obs.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("%w: %w", ErrInvalid, err))
	}

	return errors.Join(errs...)
}

// SeedAdmin reports whether an admin account should be seeded at startup.
func (c *Config) SeedAdmin() bool {
	return c.Auth.SeedAdminEmail != ""
}

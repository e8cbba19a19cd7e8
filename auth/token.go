package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// MinSecretBytes is the shortest accepted HS256 signing secret.
const MinSecretBytes = 32

// TokenConfig configures the token codec.
type TokenConfig struct {
	// Secret is the HS256 signing key. Must be at least MinSecretBytes long.
	Secret []byte

	// Issuer is written to the iss claim. It is not checked on verify.
	Issuer string

	// Now overrides the clock.
	// Default: time.Now
	Now func() time.Time
}

// tokenClaims is the JWT payload: {userId, role, email, iss, iat, exp, jti}.
type tokenClaims struct {
	UserID int64  `json:"userId"`
	Role   Role   `json:"role"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// TokenVerifier decodes and verifies session tokens.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: Verify fails with ErrTokenMalformed, ErrInvalidSignature or
//   ErrTokenExpired.
type TokenVerifier interface {
	Verify(token string) (*Session, error)
}

// TokenCodec issues and verifies HS256 session tokens.
type TokenCodec struct {
	secret []byte
	issuer string
	now    func() time.Time
	parser *jwt.Parser
}

// NewTokenCodec creates a codec. The secret is copied.
func NewTokenCodec(config TokenConfig) (*TokenCodec, error) {
	if len(config.Secret) < MinSecretBytes {
		return nil, ErrSecretTooShort
	}
	if config.Now == nil {
		config.Now = time.Now
	}

	secret := make([]byte, len(config.Secret))
	copy(secret, config.Secret)

	return &TokenCodec{
		secret: secret,
		issuer: config.Issuer,
		now:    config.Now,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithExpirationRequired(),
			jwt.WithStrictDecoding(),
			jwt.WithTimeFunc(config.Now),
		),
	}, nil
}

// Issue signs claims into a token valid for ttl.
func (c *TokenCodec) Issue(claims Claims, ttl time.Duration) (string, error) {
	token, _, err := c.IssueSession(claims, ttl)
	return token, err
}

// IssueSession signs claims into a token valid for ttl and also returns the
// session the token decodes to.
func (c *TokenCodec) IssueSession(claims Claims, ttl time.Duration) (string, *Session, error) {
	if ttl <= 0 {
		return "", nil, ErrInvalidTTL
	}
	if !claims.Role.Valid() {
		return "", nil, fmt.Errorf("%w: %s", ErrInvalidRole, claims.Role)
	}

	issuedAt := c.now().Truncate(time.Second)
	expiresAt := issuedAt.Add(ttl).Truncate(time.Second)
	session := &Session{
		Claims:    claims,
		TokenID:   uuid.NewString(),
		IssuedAt:  issuedAt,
		ExpiresAt: expiresAt,
	}

	payload := tokenClaims{
		UserID: claims.UserID,
		Role:   claims.Role,
		Email:  claims.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.issuer,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        session.TokenID,
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, payload).SignedString(c.secret)
	if err != nil {
		return "", nil, fmt.Errorf("auth: sign token: %w", err)
	}
	return signed, session, nil
}

// Verify checks the signature and expiry of token and returns its session.
// Expiry is only reported for tokens whose signature is valid.
func (c *TokenCodec) Verify(token string) (*Session, error) {
	var claims tokenClaims
	_, err := c.parser.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return c.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, fmt.Errorf("%w: %v", ErrTokenMalformed, err)
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		default:
			return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
		}
	}

	if !claims.Role.Valid() {
		return nil, fmt.Errorf("%w: missing role claim", ErrTokenMalformed)
	}

	session := &Session{
		Claims: Claims{
			UserID: claims.UserID,
			Role:   claims.Role,
			Email:  claims.Email,
		},
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if claims.IssuedAt != nil {
		session.IssuedAt = claims.IssuedAt.Time
	}
	return session, nil
}

var _ TokenVerifier = (*TokenCodec)(nil)

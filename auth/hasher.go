package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/jonwraymond/todogate/resilience"
)

// maxPasswordBytes is the bcrypt input limit.
const maxPasswordBytes = 72

// Hasher turns plaintext passwords into digests and checks them.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: both methods return ctx.Err() if ctx ends before they finish;
//   the abandoned result is discarded.
// - Errors: Verify returns (false, nil) on mismatch and wraps ErrHashing for
//   internal failures or unreadable digests.
type Hasher interface {
	Hash(ctx context.Context, plaintext string) (string, error)
	Verify(ctx context.Context, plaintext, digest string) (bool, error)
}

// HasherConfig configures the bcrypt hasher.
type HasherConfig struct {
	// Cost is the bcrypt work factor.
	// Default: bcrypt.DefaultCost (10)
	Cost int

	// Workers bounds the number of concurrent hash operations.
	// Default: runtime.GOMAXPROCS(0)
	Workers int
}

// BcryptHasher implements Hasher with golang.org/x/crypto/bcrypt.
type BcryptHasher struct {
	cost int
	pool *resilience.Bulkhead
}

// NewBcryptHasher creates a bcrypt hasher. It fails with ErrInvalidCost if the
// configured cost is outside bcrypt's accepted range.
func NewBcryptHasher(config HasherConfig) (*BcryptHasher, error) {
	if config.Cost == 0 {
		config.Cost = bcrypt.DefaultCost
	}
	if config.Cost < bcrypt.MinCost || config.Cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCost, config.Cost)
	}
	return &BcryptHasher{
		cost: config.Cost,
		pool: resilience.NewBulkhead(resilience.BulkheadConfig{MaxConcurrent: config.Workers}),
	}, nil
}

// Cost returns the configured work factor.
func (h *BcryptHasher) Cost() int {
	return h.cost
}

// Hash returns a salted bcrypt digest of plaintext.
func (h *BcryptHasher) Hash(ctx context.Context, plaintext string) (string, error) {
	if len(plaintext) > maxPasswordBytes {
		return "", ErrPasswordTooLong
	}

	var digest []byte
	err := h.pool.Execute(ctx, func(context.Context) error {
		var err error
		digest, err = bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
		return err
	})
	switch {
	case err == nil:
		return string(digest), nil
	case isContextErr(err):
		return "", err
	case errors.Is(err, bcrypt.ErrPasswordTooLong):
		return "", ErrPasswordTooLong
	default:
		return "", fmt.Errorf("%w: %v", ErrHashing, err)
	}
}

// Verify reports whether plaintext matches digest. The comparison is
// constant-time.
func (h *BcryptHasher) Verify(ctx context.Context, plaintext, digest string) (bool, error) {
	// Hash never produces a digest for longer input.
	if len(plaintext) > maxPasswordBytes {
		return false, nil
	}

	err := h.pool.Execute(ctx, func(context.Context) error {
		return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext))
	})
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	case isContextErr(err):
		return false, err
	default:
		return false, fmt.Errorf("%w: %v", ErrHashing, err)
	}
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

var _ Hasher = (*BcryptHasher)(nil)

package auth

import (
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

// testClock is a settable clock for codec tests.
type testClock struct{ now time.Time }

func (c *testClock) Now() time.Time { return c.now }

func newTestCodec(t testing.TB, clock *testClock) *TokenCodec {
	t.Helper()
	codec, err := NewTokenCodec(TokenConfig{Secret: testSecret, Issuer: "todogate-test", Now: clock.Now})
	if err != nil {
		t.Fatalf("NewTokenCodec() error = %v", err)
	}
	return codec
}

func newTestHasher(t testing.TB) *BcryptHasher {
	t.Helper()
	h, err := NewBcryptHasher(HasherConfig{Cost: bcrypt.MinCost, Workers: 2})
	if err != nil {
		t.Fatalf("NewBcryptHasher() error = %v", err)
	}
	return h
}

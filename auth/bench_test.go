package auth

import (
	"context"
	"net/http"
	"testing"
	"time"
)

// BenchmarkTokenCodec_Issue measures token signing.
func BenchmarkTokenCodec_Issue(b *testing.B) {
	codec := newTestCodec(b, &testClock{now: time.Now()})
	claims := Claims{UserID: 1, Role: RoleUser, Email: "u@example.com"}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = codec.Issue(claims, time.Hour)
	}
}

// BenchmarkTokenCodec_Verify measures token verification.
func BenchmarkTokenCodec_Verify(b *testing.B) {
	codec := newTestCodec(b, &testClock{now: time.Now()})
	token, _ := codec.Issue(Claims{UserID: 1, Role: RoleUser, Email: "u@example.com"}, time.Hour)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = codec.Verify(token)
	}
}

// BenchmarkGuard_Check measures a full guard decision.
func BenchmarkGuard_Check(b *testing.B) {
	codec := newTestCodec(b, &testClock{now: time.Now()})
	token, _ := codec.Issue(Claims{UserID: 1, Role: RoleAdmin}, time.Hour)
	g := NewGuard(codec, WithRequiredRoles(RoleAdmin))
	headers := http.Header{}
	headers.Set("Authorization", "Bearer "+token)
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = g.Check(ctx, headers)
	}
}

// BenchmarkBcryptHasher_Verify measures password comparison at the minimum cost.
func BenchmarkBcryptHasher_Verify(b *testing.B) {
	h := newTestHasher(b)
	ctx := context.Background()
	digest, _ := h.Hash(ctx, "password")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = h.Verify(ctx, "password", digest)
	}
}

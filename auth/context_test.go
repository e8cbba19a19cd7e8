package auth

import (
	"context"
	"testing"
)

func TestSessionContext(t *testing.T) {
	ctx := context.Background()
	if s := SessionFromContext(ctx); s != nil {
		t.Errorf("SessionFromContext(empty) = %v, want nil", s)
	}

	want := &Session{Claims: Claims{UserID: 3, Role: RoleUser}}
	ctx = WithSession(ctx, want)
	if got := SessionFromContext(ctx); got != want {
		t.Errorf("SessionFromContext() = %v, want %v", got, want)
	}
}

func TestSession_CanAccess(t *testing.T) {
	user := &Session{Claims: Claims{UserID: 3, Role: RoleUser}}
	admin := &Session{Claims: Claims{UserID: 1, Role: RoleAdmin}}
	var none *Session

	tests := []struct {
		name    string
		session *Session
		owner   int64
		want    bool
	}{
		{name: "user own", session: user, owner: 3, want: true},
		{name: "user other", session: user, owner: 4, want: false},
		{name: "admin other", session: admin, owner: 4, want: true},
		{name: "nil session", session: none, owner: 3, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.session.CanAccess(tt.owner); got != tt.want {
				t.Errorf("CanAccess(%d) = %v, want %v", tt.owner, got, tt.want)
			}
		})
	}

	if none.IsAdmin() || user.IsAdmin() || !admin.IsAdmin() {
		t.Error("IsAdmin() mismatch")
	}
}

func TestIdentityFromRecord(t *testing.T) {
	rec := &CredentialRecord{ID: 9, Name: "N", Email: "n@example.com", PasswordHash: "$2a$...", Role: RoleUser}
	id := IdentityFromRecord(rec)

	if id.ID != 9 || id.Name != "N" || id.Email != "n@example.com" || id.Role != RoleUser {
		t.Errorf("IdentityFromRecord() = %+v", id)
	}
}

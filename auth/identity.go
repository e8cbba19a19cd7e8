package auth

import "time"

// CredentialRecord is a stored principal as the record store returns it.
// The auth package only reads it.
type CredentialRecord struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	Role         Role
}

// Identity is a CredentialRecord with the password hash stripped.
type Identity struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// IdentityFromRecord strips the password hash from rec.
func IdentityFromRecord(rec *CredentialRecord) Identity {
	return Identity{
		ID:    rec.ID,
		Name:  rec.Name,
		Email: rec.Email,
		Role:  rec.Role,
	}
}

// Claims is what a session token carries about its principal.
type Claims struct {
	UserID int64
	Role   Role
	Email  string
}

// Session is a verified, decoded session token.
type Session struct {
	Claims

	// TokenID is the unique id (jti) of the token.
	TokenID string

	// IssuedAt is when the token was minted, truncated to the second.
	IssuedAt time.Time

	// ExpiresAt is when the token stops being accepted.
	ExpiresAt time.Time
}

// IsAdmin reports whether the session carries the admin role.
func (s *Session) IsAdmin() bool {
	return s != nil && s.Role == RoleAdmin
}

// CanAccess reports whether the session may act on resources owned by userID:
// admins may act on anything, users only on their own.
func (s *Session) CanAccess(userID int64) bool {
	if s == nil {
		return false
	}
	return s.Role == RoleAdmin || s.UserID == userID
}

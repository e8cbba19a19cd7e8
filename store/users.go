package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jonwraymond/todogate/auth"
)

// User is a stored user. The password hash never leaves the store through
// this type.
type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Role      auth.Role `json:"role"`
	Email     string    `json:"email"`
	Age       *int32    `json:"age,omitempty"`
	Phone     *string   `json:"phone,omitempty"`
	Address   *string   `json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Identity returns the user as an auth.Identity.
func (u *User) Identity() auth.Identity {
	return auth.Identity{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

// NewUser is the input to CreateUser. PasswordHash must already be a
// digest produced by an auth.Hasher.
type NewUser struct {
	Name         string
	Email        string
	PasswordHash string
	Role         auth.Role
	Age          *int32
	Phone        *string
	Address      *string
}

const userColumns = `id, name, role, email, age, phone, address, created_at, updated_at`

// CreateUser inserts a user.
func (s *Store) CreateUser(ctx context.Context, in NewUser) (*User, error) {
	if !in.Role.Valid() {
		return nil, fmt.Errorf("store: create user: %w", auth.ErrInvalidRole)
	}
	var u *User
	err := s.do(ctx, "create user", func(ctx context.Context) error {
		var err error
		u, err = scanUser(s.db.QueryRow(ctx,
			`INSERT INTO users (name, role, email, password, age, phone, address)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)
			 RETURNING `+userColumns,
			in.Name, in.Role.String(), in.Email, in.PasswordHash, in.Age, in.Phone, in.Address))
		return err
	})
	return u, err
}

// SeedUser inserts in unless a user with the same email exists. It reports
// whether a row was created.
func (s *Store) SeedUser(ctx context.Context, in NewUser) (bool, error) {
	if !in.Role.Valid() {
		return false, fmt.Errorf("store: seed user: %w", auth.ErrInvalidRole)
	}
	var created bool
	err := s.do(ctx, "seed user", func(ctx context.Context) error {
		tag, err := s.db.Exec(ctx,
			`INSERT INTO users (name, role, email, password)
			 VALUES ($1, $2, $3, $4)
			 ON CONFLICT (email) DO NOTHING`,
			in.Name, in.Role.String(), in.Email, in.PasswordHash)
		created = tag.RowsAffected() == 1
		return err
	})
	return created, err
}

// ListUsers returns all users ordered by id.
func (s *Store) ListUsers(ctx context.Context) ([]*User, error) {
	var users []*User
	err := s.do(ctx, "list users", func(ctx context.Context) error {
		rows, err := s.db.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
		if err != nil {
			return err
		}
		users, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (*User, error) {
			return scanUser(row)
		})
		return err
	})
	return users, err
}

// GetUser returns the user with id.
func (s *Store) GetUser(ctx context.Context, id int64) (*User, error) {
	if !storableID(id) {
		return nil, ErrNotFound
	}
	var u *User
	err := s.do(ctx, "get user", func(ctx context.Context) error {
		var err error
		u, err = scanUser(s.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
		return err
	})
	return u, err
}

// UpdateUser changes a user's name and email.
func (s *Store) UpdateUser(ctx context.Context, id int64, name, email string) (*User, error) {
	if !storableID(id) {
		return nil, ErrNotFound
	}
	var u *User
	err := s.do(ctx, "update user", func(ctx context.Context) error {
		var err error
		u, err = scanUser(s.db.QueryRow(ctx,
			`UPDATE users SET name = $1, email = $2, updated_at = NOW()
			 WHERE id = $3
			 RETURNING `+userColumns,
			name, email, id))
		return err
	})
	return u, err
}

// DeleteUser removes a user and, by cascade, their todos.
func (s *Store) DeleteUser(ctx context.Context, id int64) (*User, error) {
	if !storableID(id) {
		return nil, ErrNotFound
	}
	var u *User
	err := s.do(ctx, "delete user", func(ctx context.Context) error {
		var err error
		u, err = scanUser(s.db.QueryRow(ctx, `DELETE FROM users WHERE id = $1 RETURNING `+userColumns, id))
		return err
	})
	return u, err
}

// FindCredentialByEmail implements auth.CredentialStore.
func (s *Store) FindCredentialByEmail(ctx context.Context, email string) (*auth.CredentialRecord, error) {
	var rec *auth.CredentialRecord
	err := s.do(ctx, "find credential", func(ctx context.Context) error {
		var (
			r    auth.CredentialRecord
			role string
		)
		err := s.db.QueryRow(ctx,
			`SELECT id, name, email, password, role FROM users WHERE email = $1`, email,
		).Scan(&r.ID, &r.Name, &r.Email, &r.PasswordHash, &role)
		if err != nil {
			return err
		}
		if r.Role, err = auth.ParseRole(role); err != nil {
			return fmt.Errorf("user %d: %w", r.ID, err)
		}
		rec = &r
		return nil
	})
	// An email the column cannot hold cannot belong to anyone.
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrInvalidInput) {
		return nil, auth.ErrUserNotFound
	}
	return rec, err
}

func scanUser(row pgx.Row) (*User, error) {
	var (
		u    User
		role string
	)
	if err := row.Scan(&u.ID, &u.Name, &role, &u.Email, &u.Age, &u.Phone, &u.Address, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	var err error
	if u.Role, err = auth.ParseRole(role); err != nil {
		return nil, fmt.Errorf("user %d: %w", u.ID, err)
	}
	return &u, nil
}

var _ auth.CredentialStore = (*Store)(nil)

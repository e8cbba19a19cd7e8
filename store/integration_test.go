package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jonwraymond/todogate/auth"
)

// openTestStore connects to TODOGATE_TEST_DATABASE_URL or skips.
func openTestStore(t *testing.T) *Store {
	t.Helper()
	url := os.Getenv("TODOGATE_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TODOGATE_TEST_DATABASE_URL not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s, err := Open(ctx, Config{URL: url, MaxConns: 4})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(s.Close)
	if err := s.Migrate(ctx); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	return s
}

func uniqueEmail(t *testing.T) string {
	return fmt.Sprintf("%s-%d@example.test", t.Name(), time.Now().UnixNano())
}

func TestIntegration_UserLifecycle(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	email := uniqueEmail(t)

	u, err := s.CreateUser(ctx, NewUser{Name: "Ada", Email: email, PasswordHash: "digest", Role: auth.RoleUser})
	if err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	t.Cleanup(func() { _, _ = s.DeleteUser(context.Background(), u.ID) })

	if _, err := s.CreateUser(ctx, NewUser{Name: "Dup", Email: email, PasswordHash: "d", Role: auth.RoleUser}); !errors.Is(err, ErrEmailTaken) {
		t.Errorf("duplicate CreateUser() error = %v, want ErrEmailTaken", err)
	}

	rec, err := s.FindCredentialByEmail(ctx, email)
	if err != nil || rec.ID != u.ID || rec.PasswordHash != "digest" || rec.Role != auth.RoleUser {
		t.Errorf("FindCredentialByEmail() = %+v, %v", rec, err)
	}

	updated, err := s.UpdateUser(ctx, u.ID, "Ada L", email)
	if err != nil || updated.Name != "Ada L" {
		t.Errorf("UpdateUser() = %+v, %v", updated, err)
	}

	if _, err := s.DeleteUser(ctx, u.ID); err != nil {
		t.Fatalf("DeleteUser() error = %v", err)
	}
	if _, err := s.GetUser(ctx, u.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetUser() after delete error = %v, want ErrNotFound", err)
	}
	if _, err := s.FindCredentialByEmail(ctx, email); !errors.Is(err, auth.ErrUserNotFound) {
		t.Errorf("FindCredentialByEmail() after delete error = %v", err)
	}
}

func TestIntegration_TodoLifecycle(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	owner, err := s.CreateUser(ctx, NewUser{Name: "Owner", Email: uniqueEmail(t), PasswordHash: "d", Role: auth.RoleUser})
	if err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	t.Cleanup(func() { _, _ = s.DeleteUser(context.Background(), owner.ID) })

	todo, err := s.CreateTodo(ctx, NewTodo{UserID: owner.ID, Title: "write tests"})
	if err != nil {
		t.Fatalf("CreateTodo() error = %v", err)
	}
	if todo.Completed || todo.UserID != owner.ID {
		t.Errorf("CreateTodo() = %+v", todo)
	}

	done := true
	updated, err := s.UpdateTodo(ctx, todo.ID, TodoUpdate{Completed: &done})
	if err != nil || !updated.Completed || updated.Title != "write tests" {
		t.Errorf("UpdateTodo() = %+v, %v", updated, err)
	}

	list, err := s.ListTodos(ctx, TodoFilter{UserID: owner.ID})
	if err != nil || len(list) != 1 || list[0].ID != todo.ID {
		t.Errorf("ListTodos() = %v, %v", list, err)
	}

	if _, err := s.CreateTodo(ctx, NewTodo{UserID: -1, Title: "orphan"}); !errors.Is(err, ErrInvalidReference) {
		t.Errorf("CreateTodo() for missing user error = %v, want ErrInvalidReference", err)
	}

	if _, err := s.DeleteUser(ctx, owner.ID); err != nil {
		t.Fatalf("DeleteUser() error = %v", err)
	}
	if _, err := s.GetTodo(ctx, todo.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetTodo() after cascade error = %v, want ErrNotFound", err)
	}
}

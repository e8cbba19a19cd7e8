package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
)

// Todo is a stored todo item.
type Todo struct {
	ID          int64      `json:"id"`
	UserID      int64      `json:"user_id"`
	Title       string     `json:"title"`
	Description *string    `json:"description,omitempty"`
	Completed   bool       `json:"is_completed"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// NewTodo is the input to CreateTodo.
type NewTodo struct {
	UserID      int64
	Title       string
	Description *string
	DueDate     *time.Time
}

// TodoUpdate lists the fields to change; nil fields are left alone.
type TodoUpdate struct {
	Title       *string
	Description *string
	Completed   *bool
	DueDate     *time.Time
}

// Empty reports whether the update changes nothing.
func (u TodoUpdate) Empty() bool {
	return u.Title == nil && u.Description == nil && u.Completed == nil && u.DueDate == nil
}

// TodoFilter narrows ListTodos. A zero UserID lists every todo.
type TodoFilter struct {
	UserID int64
}

const todoColumns = `id, COALESCE(user_id, 0), title, description, COALESCE(is_completed, FALSE), due_date, created_at, updated_at`

// CreateTodo inserts a todo.
func (s *Store) CreateTodo(ctx context.Context, in NewTodo) (*Todo, error) {
	if !storableID(in.UserID) {
		return nil, ErrInvalidReference
	}
	var t *Todo
	err := s.do(ctx, "create todo", func(ctx context.Context) error {
		var err error
		t, err = scanTodo(s.db.QueryRow(ctx,
			`INSERT INTO todos (user_id, title, description, due_date)
			 VALUES ($1, $2, $3, $4)
			 RETURNING `+todoColumns,
			in.UserID, in.Title, in.Description, in.DueDate))
		return err
	})
	return t, err
}

// ListTodos returns todos matching f ordered by id.
func (s *Store) ListTodos(ctx context.Context, f TodoFilter) ([]*Todo, error) {
	if f.UserID != 0 && !storableID(f.UserID) {
		return []*Todo{}, nil
	}
	query := `SELECT ` + todoColumns + ` FROM todos`
	var args []any
	if f.UserID != 0 {
		query += ` WHERE user_id = $1`
		args = append(args, f.UserID)
	}
	query += ` ORDER BY id`

	var todos []*Todo
	err := s.do(ctx, "list todos", func(ctx context.Context) error {
		rows, err := s.db.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		todos, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (*Todo, error) {
			return scanTodo(row)
		})
		return err
	})
	return todos, err
}

// GetTodo returns the todo with id.
func (s *Store) GetTodo(ctx context.Context, id int64) (*Todo, error) {
	if !storableID(id) {
		return nil, ErrNotFound
	}
	var t *Todo
	err := s.do(ctx, "get todo", func(ctx context.Context) error {
		var err error
		t, err = scanTodo(s.db.QueryRow(ctx, `SELECT `+todoColumns+` FROM todos WHERE id = $1`, id))
		return err
	})
	return t, err
}

// UpdateTodo applies the non-nil fields of u. An empty update only
// refreshes updated_at.
func (s *Store) UpdateTodo(ctx context.Context, id int64, u TodoUpdate) (*Todo, error) {
	if !storableID(id) {
		return nil, ErrNotFound
	}
	query, args := buildTodoUpdate(id, u)

	var t *Todo
	err := s.do(ctx, "update todo", func(ctx context.Context) error {
		var err error
		t, err = scanTodo(s.db.QueryRow(ctx, query, args...))
		return err
	})
	return t, err
}

// DeleteTodo removes the todo with id and returns it.
func (s *Store) DeleteTodo(ctx context.Context, id int64) (*Todo, error) {
	if !storableID(id) {
		return nil, ErrNotFound
	}
	var t *Todo
	err := s.do(ctx, "delete todo", func(ctx context.Context) error {
		var err error
		t, err = scanTodo(s.db.QueryRow(ctx, `DELETE FROM todos WHERE id = $1 RETURNING `+todoColumns, id))
		return err
	})
	return t, err
}

func buildTodoUpdate(id int64, u TodoUpdate) (string, []any) {
	sets := []string{"updated_at = NOW()"}
	var args []any
	add := func(column string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if u.Title != nil {
		add("title", *u.Title)
	}
	if u.Description != nil {
		add("description", *u.Description)
	}
	if u.Completed != nil {
		add("is_completed", *u.Completed)
	}
	if u.DueDate != nil {
		add("due_date", *u.DueDate)
	}
	args = append(args, id)
	query := fmt.Sprintf(`UPDATE todos SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), todoColumns)
	return query, args
}

func scanTodo(row pgx.Row) (*Todo, error) {
	var t Todo
	if err := row.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.Completed, &t.DueDate, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

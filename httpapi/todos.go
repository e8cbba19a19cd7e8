package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/jonwraymond/todogate/auth"
	"github.com/jonwraymond/todogate/store"
)

type createTodoRequest struct {
	UserID      *int64  `json:"user_id"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	DueDate     *string `json:"due_date"`
}

type updateTodoRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Completed   *bool   `json:"is_completed"`
	DueDate     *string `json:"due_date"`
}

func (a *API) createTodo(w http.ResponseWriter, r *http.Request) error {
	s := auth.SessionFromContext(r.Context())
	var req createTodoRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}
	if req.Title == "" {
		return badRequest("title is required", nil)
	}

	owner := s.UserID
	if req.UserID != nil && *req.UserID != owner {
		if !s.IsAdmin() {
			return forbid(s)
		}
		owner = *req.UserID
	}
	due, err := parseDate(req.DueDate)
	if err != nil {
		return err
	}

	t, err := a.deps.Todos.CreateTodo(r.Context(), store.NewTodo{
		UserID:      owner,
		Title:       req.Title,
		Description: req.Description,
		DueDate:     due,
	})
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusCreated, envelope{"success": true, "message": "Todo created successfully", "todo": t})
	return nil
}

// listTodos shows admins every todo, optionally narrowed by ?user_id=, and
// everyone else their own.
func (a *API) listTodos(w http.ResponseWriter, r *http.Request) error {
	s := auth.SessionFromContext(r.Context())
	filter := store.TodoFilter{UserID: s.UserID}
	if s.IsAdmin() {
		filter.UserID = 0
		if v := r.URL.Query().Get("user_id"); v != "" {
			id, err := strconv.ParseInt(v, 10, 32)
			if err != nil || id <= 0 {
				return badRequest("invalid user_id", err)
			}
			filter.UserID = id
		}
	}

	todos, err := a.deps.Todos.ListTodos(r.Context(), filter)
	if err != nil {
		return err
	}
	if todos == nil {
		todos = []*store.Todo{}
	}
	writeJSON(w, http.StatusOK, envelope{"success": true, "todos": todos})
	return nil
}

func (a *API) getTodo(w http.ResponseWriter, r *http.Request) error {
	t, err := a.ownedTodo(r)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, envelope{"success": true, "todo": t})
	return nil
}

func (a *API) updateTodo(w http.ResponseWriter, r *http.Request) error {
	t, err := a.ownedTodo(r)
	if err != nil {
		return err
	}
	var req updateTodoRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}
	if req.Title != nil && *req.Title == "" {
		return badRequest("title must not be empty", nil)
	}
	due, err := parseDate(req.DueDate)
	if err != nil {
		return err
	}

	updated, err := a.deps.Todos.UpdateTodo(r.Context(), t.ID, store.TodoUpdate{
		Title:       req.Title,
		Description: req.Description,
		Completed:   req.Completed,
		DueDate:     due,
	})
	if err != nil {
		return todoErr(err)
	}
	writeJSON(w, http.StatusOK, envelope{"success": true, "message": "Todo updated successfully", "todo": updated})
	return nil
}

func (a *API) deleteTodo(w http.ResponseWriter, r *http.Request) error {
	t, err := a.ownedTodo(r)
	if err != nil {
		return err
	}
	deleted, err := a.deps.Todos.DeleteTodo(r.Context(), t.ID)
	if err != nil {
		return todoErr(err)
	}
	writeJSON(w, http.StatusOK, envelope{"success": true, "message": "Todo deleted successfully", "todo": deleted})
	return nil
}

// ownedTodo loads the todo named by the path if the session owns it or is
// an admin.
func (a *API) ownedTodo(r *http.Request) (*store.Todo, error) {
	id, err := pathID(r)
	if err != nil {
		return nil, err
	}
	t, err := a.deps.Todos.GetTodo(r.Context(), id)
	if err != nil {
		return nil, todoErr(err)
	}
	s := auth.SessionFromContext(r.Context())
	if !s.CanAccess(t.UserID) {
		return nil, forbid(s)
	}
	return t, nil
}

func todoErr(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return notFound("Todo")
	}
	return err
}

func parseDate(v *string) (*time.Time, error) {
	if v == nil || *v == "" {
		return nil, nil
	}
	t, err := time.Parse(time.DateOnly, *v)
	if err != nil {
		return nil, badRequest("due_date must be YYYY-MM-DD", err)
	}
	return &t, nil
}

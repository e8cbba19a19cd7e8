package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/jonwraymond/todogate/auth"
	"github.com/jonwraymond/todogate/store"
)

type createUserRequest struct {
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Role     string  `json:"role"`
	Age      *int32  `json:"age"`
	Phone    *string `json:"phone"`
	Address  *string `json:"address"`
}

type updateUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (a *API) createUser(w http.ResponseWriter, r *http.Request) error {
	var req createUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return badRequest("name, email and password are required", nil)
	}

	role := auth.RoleUser
	if req.Role != "" {
		var err error
		if role, err = auth.ParseRole(req.Role); err != nil {
			return badRequest("invalid role", err)
		}
	}
	// Only an admin may mint another admin.
	if role == auth.RoleAdmin {
		if d := a.admin.Check(r.Context(), r.Header); !d.Allowed() {
			return denial(d)
		}
	}

	digest, err := a.deps.Hasher.Hash(r.Context(), req.Password)
	if err != nil {
		return err
	}

	u, err := a.deps.Users.CreateUser(r.Context(), store.NewUser{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: digest,
		Role:         role,
		Age:          req.Age,
		Phone:        req.Phone,
		Address:      req.Address,
	})
	if err != nil {
		return err
	}

	writeJSON(w, http.StatusCreated, envelope{"success": true, "message": "User created successfully", "user": u})
	return nil
}

func (a *API) listUsers(w http.ResponseWriter, r *http.Request) error {
	users, err := a.deps.Users.ListUsers(r.Context())
	if err != nil {
		return err
	}
	if users == nil {
		users = []*store.User{}
	}
	writeJSON(w, http.StatusOK, envelope{"success": true, "users": users})
	return nil
}

func (a *API) getUser(w http.ResponseWriter, r *http.Request) error {
	id, err := selfOrAdmin(r)
	if err != nil {
		return err
	}
	u, err := a.deps.Users.GetUser(r.Context(), id)
	if err != nil {
		return userErr(err)
	}
	writeJSON(w, http.StatusOK, envelope{"success": true, "user": u})
	return nil
}

func (a *API) updateUser(w http.ResponseWriter, r *http.Request) error {
	id, err := selfOrAdmin(r)
	if err != nil {
		return err
	}
	var req updateUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}
	if req.Name == "" || req.Email == "" {
		return badRequest("name and email are required", nil)
	}

	u, err := a.deps.Users.UpdateUser(r.Context(), id, req.Name, req.Email)
	if err != nil {
		return userErr(err)
	}
	writeJSON(w, http.StatusOK, envelope{"success": true, "message": "User updated successfully", "user": u})
	return nil
}

func (a *API) deleteUser(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r)
	if err != nil {
		return err
	}
	u, err := a.deps.Users.DeleteUser(r.Context(), id)
	if err != nil {
		return userErr(err)
	}
	writeJSON(w, http.StatusOK, envelope{"success": true, "message": "User deleted successfully", "user": u})
	return nil
}

// selfOrAdmin returns the path id if the session may access that user.
func selfOrAdmin(r *http.Request) (int64, error) {
	id, err := pathID(r)
	if err != nil {
		return 0, err
	}
	s := auth.SessionFromContext(r.Context())
	if !s.CanAccess(id) {
		return 0, forbid(s)
	}
	return id, nil
}

func userErr(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return notFound("User")
	}
	return err
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 32)
	if err != nil || id <= 0 {
		return 0, badRequest("invalid id", err)
	}
	return id, nil
}

// forbid reports that s reached a resource it neither owns nor administers.
func forbid(s *auth.Session) error {
	if s == nil {
		return &Error{Status: http.StatusUnauthorized, Message: "Unauthorized", Err: auth.ErrMissingCredentials}
	}
	return &auth.AuthzError{
		Subject:  s.Email,
		UserID:   s.UserID,
		Role:     s.Role,
		Required: []auth.Role{auth.RoleAdmin},
	}
}

// denial converts a guard decision into the error the handler returns.
func denial(d auth.Decision) error {
	if d.Outcome == auth.Forbidden {
		return d.Err
	}
	return &Error{Status: http.StatusUnauthorized, Message: "Unauthorized", Err: d.Err}
}

package auth

import (
	"encoding/json"
	"net/http"
)

type denialBody struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Middleware is HTTP middleware that admits requests the guard allows.
//
// Allowed requests reach next with the session attached to the request
// context (see SessionFromContext). Otherwise a JSON body is written with
// 401 Unauthorized or 403 Forbidden.
//
// Usage:
//
//	mux.Handle("GET /users", guard.Require(auth.RoleAdmin).Middleware(listUsers))
func (g *Guard) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		d := g.Check(r.Context(), r.Header)
		switch d.Outcome {
		case Allowed:
			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), d.Session)))
		case Forbidden:
			writeDenial(w, http.StatusForbidden, "Forbidden")
		default:
			writeDenial(w, http.StatusUnauthorized, "Unauthorized")
		}
	})
}

func writeDenial(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(denialBody{Success: false, Message: message})
}

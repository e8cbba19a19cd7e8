package httpapi

import (
	"math"
	"net"
	"net/http"
	"strconv"

	"github.com/jonwraymond/todogate/resilience"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (a *API) login(w http.ResponseWriter, r *http.Request) error {
	if limiter := a.deps.LoginLimiter; limiter != nil {
		if ok, wait := limiter.Allow(clientIP(r)); !ok {
			w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds(wait.Seconds())))
			return resilience.ErrRateLimitExceeded
		}
	}

	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}

	res, err := a.deps.Authenticator.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	writeJSON(w, http.StatusOK, envelope{
		"success":    true,
		"message":    "Login successful",
		"user":       res.Identity,
		"token":      res.Token,
		"expires_at": res.ExpiresAt,
	})
	return nil
}

func retryAfterSeconds(s float64) int {
	return max(1, int(math.Ceil(s)))
}

// clientIP keys login throttling. Forwarding headers are ignored because
// they are client controlled.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

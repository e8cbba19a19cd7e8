package health

import (
	"encoding/json"
	"net/http"
	"time"
)

// Response is the JSON body of /readyz and /health.
type Response struct {
	Status    string                   `json:"status"`
	Timestamp string                   `json:"timestamp"`
	Checks    map[string]CheckResponse `json:"checks,omitempty"`
}

// CheckResponse renders one Result.
type CheckResponse struct {
	Status   string         `json:"status"`
	Message  string         `json:"message,omitempty"`
	Duration string         `json:"duration,omitempty"`
	Details  map[string]any `json:"details,omitempty"`
	Error    string         `json:"error,omitempty"`
}

func (r Result) response() CheckResponse {
	out := CheckResponse{
		Status:   r.Status.String(),
		Message:  r.Message,
		Duration: r.Duration.String(),
		Details:  r.Details,
	}
	if r.Error != nil {
		out.Error = r.Error.Error()
	}
	return out
}

// report summarizes results. Per-check entries are included only when
// detailed is set, so readiness probes do not expose dependency errors.
func report(results map[string]Result, detailed bool) (Status, Response) {
	status := OverallStatus(results)
	resp := Response{
		Status:    status.String(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	if detailed {
		resp.Checks = make(map[string]CheckResponse, len(results))
		for name, r := range results {
			resp.Checks[name] = r.response()
		}
	}
	return status, resp
}

// LivenessHandler answers a plain 200 "OK" for as long as the process can
// serve requests. It never consults the checkers.
func LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("OK"))
	}
}

// ReadinessHandler reports the overall status of agg.
func ReadinessHandler(agg *Aggregator) http.HandlerFunc {
	return checkHandler(agg, false)
}

// DetailedHandler reports the overall status of agg plus every result.
func DetailedHandler(agg *Aggregator) http.HandlerFunc {
	return checkHandler(agg, true)
}

func checkHandler(agg *Aggregator, detailed bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status, resp := report(agg.CheckAll(r.Context()), detailed)
		code := http.StatusOK
		if status == StatusUnhealthy {
			code = http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(resp)
	}
}

// RegisterHandlers mounts /healthz, /readyz and /health on mux.
func RegisterHandlers(mux *http.ServeMux, agg *Aggregator) {
	mux.HandleFunc("GET /healthz", LivenessHandler())
	mux.HandleFunc("GET /readyz", ReadinessHandler(agg))
	mux.HandleFunc("GET /health", DetailedHandler(agg))
}

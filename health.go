package edgetrust

import (
	"encoding/json"
	"net/http"
	"time"
)

type readinessResponse struct {
	State      string     `json:"state"`
	Error      string     `json:"error,omitempty"`
	IPv4Ranges int        `json:"ipv4_ranges"`
	IPv6Ranges int        `json:"ipv6_ranges"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// ReadinessHandler reports the loader state as JSON.
//
// It responds 200 once the ranges are published and 503 otherwise, so a
// failed load is visible to probes instead of only to the logs.
func (g *Gate) ReadinessHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		status := g.Status()

		body := readinessResponse{
			State:      status.State.String(),
			IPv4Ranges: status.IPv4Ranges,
			IPv6Ranges: status.IPv6Ranges,
		}
		if status.Err != nil {
			body.Error = status.Err.Error()
		}
		if !status.StartedAt.IsZero() {
			body.StartedAt = &status.StartedAt
		}
		if !status.FinishedAt.IsZero() {
			body.FinishedAt = &status.FinishedAt
		}

		code := http.StatusServiceUnavailable
		if status.State == LoadStateComplete {
			code = http.StatusOK
		}

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-store")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(body)
	})
}

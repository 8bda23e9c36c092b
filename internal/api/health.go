package api

import (
	"context"
	"net/http"
	"runtime"
	"time"
)

// HealthStatus represents the overall health status.
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

// HealthCheckResponse is the /health payload.
type HealthCheckResponse struct {
	Status        HealthStatus           `json:"status"`
	Timestamp     string                 `json:"timestamp"`
	Uptime        string                 `json:"uptime"`
	Checks        map[string]HealthCheck `json:"checks"`
	NumGoroutines int                    `json:"num_goroutines"`
}

// HealthCheck is one named probe.
type HealthCheck struct {
	Status   HealthStatus `json:"status"`
	Message  string       `json:"message,omitempty"`
	Duration string       `json:"duration"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	start := time.Now()
	check := HealthCheck{Status: HealthStatusHealthy}
	if err := s.svc.Ping(ctx); err != nil {
		check.Status = HealthStatusUnhealthy
		check.Message = err.Error()
	}
	check.Duration = time.Since(start).String()

	resp := HealthCheckResponse{
		Status:        check.Status,
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		Uptime:        time.Since(s.startTime).Round(time.Second).String(),
		Checks:        map[string]HealthCheck{"store": check},
		NumGoroutines: runtime.NumGoroutine(),
	}
	status := http.StatusOK
	if resp.Status != HealthStatusHealthy {
		status = http.StatusServiceUnavailable
	}
	s.writeJSON(w, status, resp)
}

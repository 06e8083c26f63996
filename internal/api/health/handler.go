package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"savewise/pkg/logger"
)

// Check is one dependency probed by the health endpoints
type Check struct {
	Name string
	Ping func(ctx context.Context) error
	// Critical checks fail readiness; the rest only degrade /health
	Critical bool
}

// Handler provides health check endpoints
type Handler struct {
	log         *logger.Logger
	checks      []Check
	startTime   time.Time
	serviceName string
	version     string
}

// New creates a new health check handler
func New(log *logger.Logger, serviceName, version string, checks ...Check) *Handler {
	return &Handler{
		log:         log.Component("health"),
		checks:      checks,
		startTime:   time.Now(),
		serviceName: serviceName,
		version:     version,
	}
}

// HealthStatus represents the overall health status
type HealthStatus struct {
	Status      string                     `json:"status"` // "healthy", "degraded", "unhealthy"
	Service     string                     `json:"service"`
	Version     string                     `json:"version"`
	Uptime      string                     `json:"uptime"`
	Timestamp   string                     `json:"timestamp"`
	Checks      map[string]ComponentHealth `json:"checks"`
	ErrorDetail string                     `json:"error_detail,omitempty"`
}

// ComponentHealth represents health of a single component
type ComponentHealth struct {
	Status       string `json:"status"`
	ResponseTime string `json:"response_time,omitempty"`
	Error        string `json:"error,omitempty"`
}

// HandleLiveness returns 200 OK if service is running
// Used by Kubernetes liveness probe
func (h *Handler) HandleLiveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// HandleReadiness fails when any critical dependency is down
// Used by Kubernetes readiness probe
func (h *Handler) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]ComponentHealth, len(h.checks))
	ready := true
	for _, c := range h.checks {
		res := h.run(ctx, c)
		checks[c.Name] = res
		if c.Critical && res.Status != "healthy" {
			ready = false
		}
	}

	status := h.status(checks)
	code := http.StatusOK
	if !ready {
		status.Status = "unhealthy"
		code = http.StatusServiceUnavailable
		h.log.Warnw("Readiness check failed", "checks", checks)
	}

	writeJSON(w, code, status)
}

// HandleHealth returns detailed health status (includes all checks)
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	checks := make(map[string]ComponentHealth, len(h.checks))
	healthy := 0
	criticalDown := false
	for _, c := range h.checks {
		res := h.run(ctx, c)
		checks[c.Name] = res
		switch {
		case res.Status == "healthy":
			healthy++
		case c.Critical:
			criticalDown = true
		}
	}

	status := h.status(checks)
	code := http.StatusOK

	if criticalDown || (len(h.checks) > 0 && healthy == 0) {
		status.Status = "unhealthy"
		code = http.StatusServiceUnavailable
	} else if healthy < len(h.checks) {
		status.Status = "degraded"
	}

	writeJSON(w, code, status)
}

func (h *Handler) status(checks map[string]ComponentHealth) HealthStatus {
	return HealthStatus{
		Status:    "healthy",
		Service:   h.serviceName,
		Version:   h.version,
		Uptime:    time.Since(h.startTime).String(),
		Timestamp: time.Now().Format(time.RFC3339),
		Checks:    checks,
	}
}

func (h *Handler) run(ctx context.Context, c Check) ComponentHealth {
	start := time.Now()
	err := c.Ping(ctx)
	elapsed := time.Since(start)

	if err != nil {
		h.log.Warnw("Health check failed", "check", c.Name, "error", err, "elapsed", elapsed)
		return ComponentHealth{
			Status:       "unhealthy",
			ResponseTime: elapsed.String(),
			Error:        err.Error(),
		}
	}

	return ComponentHealth{
		Status:       "healthy",
		ResponseTime: elapsed.String(),
	}
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

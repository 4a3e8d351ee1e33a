package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/logbot/logbot/internal/models"
)

// Version is reported by GET /health; overridden at link time.
var Version = "dev"

// HealthChecker is implemented by dependencies that can report connectivity.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles GET /health with dependency checks
type HealthHandler struct {
	checks map[string]HealthChecker
}

// NewHealthHandler takes named checkers. A nil checker is reported as
// disabled.
func NewHealthHandler(checks map[string]HealthChecker) *HealthHandler {
	return &HealthHandler{checks: checks}
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	results := map[string]string{"server": "ok"}
	overallStatus := "healthy"

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	for name, c := range h.checks {
		if c == nil {
			results[name] = "disabled"
			continue
		}
		if err := c.Ping(ctx); err != nil {
			results[name] = "unavailable: " + err.Error()
			overallStatus = "degraded"
			continue
		}
		results[name] = "ok"
	}

	statusCode := http.StatusOK
	if overallStatus == "degraded" {
		statusCode = http.StatusServiceUnavailable
	}

	models.WriteJSON(w, statusCode, models.HealthResponse{
		Status:  overallStatus,
		Version: Version,
		Checks:  results,
	})
}

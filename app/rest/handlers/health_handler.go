package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// serviceVersion is the version reported by the health endpoint
const serviceVersion = "1.0.0"

// Component health statuses
const (
	statusHealthy   = "healthy"
	statusDegraded  = "degraded"
	statusUnhealthy = "unhealthy"
)

// Pinger reports whether a backing dependency is reachable
type Pinger interface {
	HealthCheck(ctx context.Context) error
}

// HealthHandler handles health check and probe HTTP requests
type HealthHandler struct {
	db     Pinger // nil when the service runs without a database
	logger *slog.Logger
}

// NewHealthHandler creates a new health handler. db may be nil when no
// database is attached.
func NewHealthHandler(db Pinger, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		db:     db,
		logger: logger,
	}
}

// HealthCheck performs a comprehensive health check
// @Summary Health check
// @Description Returns detailed health status with component checks
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /health [get]
func (h *HealthHandler) HealthCheck(c echo.Context) error {
	checks := make(map[string]ComponentHealth)

	start := time.Now()
	checks["api"] = ComponentHealth{
		Status:         statusHealthy,
		Message:        "API responding",
		ResponseTimeMs: float64(time.Since(start).Microseconds()) / 1000.0,
	}

	overall := statusHealthy
	statusCode := http.StatusOK
	for _, check := range checks {
		switch check.Status {
		case statusUnhealthy:
			overall = statusUnhealthy
			statusCode = http.StatusServiceUnavailable
		case statusDegraded:
			if overall == statusHealthy {
				overall = statusDegraded
			}
		}
	}

	return c.JSON(statusCode, HealthResponse{
		Status:        overall,
		Version:       serviceVersion,
		UptimeSeconds: time.Since(startTime).Seconds(),
		Checks:        checks,
	})
}

// LivenessCheck performs a liveness probe
// @Summary Liveness probe
// @Description Returns 200 as long as the process is running
// @Tags health
// @Produce json
// @Success 200 {object} LivenessResponse
// @Router /live [get]
func (h *HealthHandler) LivenessCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, LivenessResponse{Status: "alive"})
}

// ReadinessCheck performs a readiness probe
// @Summary Readiness probe
// @Description Returns whether the service can accept traffic
// @Tags health
// @Produce json
// @Success 200 {object} ReadinessResponse
// @Failure 503 {object} ReadinessResponse
// @Router /ready [get]
func (h *HealthHandler) ReadinessCheck(c echo.Context) error {
	if h.db != nil {
		if err := h.db.HealthCheck(c.Request().Context()); err != nil {
			h.logger.Error("readiness check failed", "error", err)
			return c.JSON(http.StatusServiceUnavailable, ReadinessResponse{
				Status: "not_ready",
				Ready:  false,
			})
		}
	}

	return c.JSON(http.StatusOK, ReadinessResponse{
		Status: "ready",
		Ready:  true,
	})
}

// Response types
type HealthResponse struct {
	Status        string                     `json:"status"`
	Version       string                     `json:"version"`
	UptimeSeconds float64                    `json:"uptime_seconds"`
	Checks        map[string]ComponentHealth `json:"checks"`
}

type ComponentHealth struct {
	Status         string  `json:"status"`
	Message        string  `json:"message,omitempty"`
	ResponseTimeMs float64 `json:"response_time_ms"`
}

type LivenessResponse struct {
	Status string `json:"status"`
}

type ReadinessResponse struct {
	Status string `json:"status"`
	Ready  bool   `json:"ready"`
}

// startTime is set when the service starts
var startTime = time.Now()

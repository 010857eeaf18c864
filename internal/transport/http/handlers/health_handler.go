package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const checkTimeout = 2 * time.Second

type HealthStatus string

const (
	HealthStatusHealthy  HealthStatus = "healthy"
	HealthStatusDegraded HealthStatus = "degraded"
)

// HealthCheck probes one dependency.
type HealthCheck func(ctx context.Context) error

type CheckResult struct {
	Status  HealthStatus `json:"status"`
	Message string       `json:"message,omitempty"`
	Latency string       `json:"latency"`
}

type HealthResponse struct {
	Status  HealthStatus           `json:"status"`
	Service string                 `json:"service"`
	Version string                 `json:"version"`
	Uptime  string                 `json:"uptime"`
	Checks  map[string]CheckResult `json:"checks,omitempty"`
}

type HealthHandler struct {
	service string
	version string
	started time.Time
	checks  map[string]HealthCheck
}

func NewHealthHandler(service, version string, checks map[string]HealthCheck) *HealthHandler {
	return &HealthHandler{service: service, version: version, started: time.Now(), checks: checks}
}

// Health handles GET /health. A failing optional dependency degrades the
// status but the endpoint still answers 200.
func (h *HealthHandler) Health(c *gin.Context) {
	resp := HealthResponse{
		Status:  HealthStatusHealthy,
		Service: h.service,
		Version: h.version,
		Uptime:  time.Since(h.started).Truncate(time.Second).String(),
	}

	if len(h.checks) > 0 {
		resp.Checks = make(map[string]CheckResult, len(h.checks))
	}
	for name, check := range h.checks {
		ctx, cancel := context.WithTimeout(c.Request.Context(), checkTimeout)
		start := time.Now()
		err := check(ctx)
		cancel()

		result := CheckResult{Status: HealthStatusHealthy, Latency: time.Since(start).String()}
		if err != nil {
			result.Status = HealthStatusDegraded
			result.Message = err.Error()
			resp.Status = HealthStatusDegraded
		}
		resp.Checks[name] = result
	}

	c.JSON(http.StatusOK, resp)
}

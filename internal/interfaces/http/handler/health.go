package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/posledger/backend/internal/interfaces/http/dto"
)

// HealthCheck reports whether a dependency is usable
type HealthCheck func(ctx context.Context) error

// HealthResponse is the body of the health endpoint
// @Description Service health with per-dependency status
type HealthResponse struct {
	Status  string            `json:"status" example:"healthy"`
	Version string            `json:"version" example:"1.0.0"`
	Checks  map[string]string `json:"checks"`
}

// HealthHandler serves the health endpoint
type HealthHandler struct {
	version string
	timeout time.Duration
	checks  map[string]HealthCheck
}

// NewHealthHandler creates a HealthHandler that runs checks with a 2s
// timeout each
func NewHealthHandler(version string, checks map[string]HealthCheck) *HealthHandler {
	return &HealthHandler{version: version, timeout: 2 * time.Second, checks: checks}
}

// Health godoc
// @ID           health
// @Summary      Health check
// @Description  Returns 200 when every dependency responds, 503 otherwise
// @Tags         system
// @Produce      json
// @Success      200 {object} APIResponse[HealthResponse]
// @Failure      503 {object} APIResponse[HealthResponse]
// @Router       /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	resp := HealthResponse{Status: "healthy", Version: h.version, Checks: make(map[string]string, len(h.checks))}
	for name, check := range h.checks {
		ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
		err := check(ctx)
		cancel()
		if err != nil {
			resp.Status = "unhealthy"
			resp.Checks[name] = err.Error()
			continue
		}
		resp.Checks[name] = "ok"
	}

	status := http.StatusOK
	if resp.Status != "healthy" {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, dto.Response{Success: status == http.StatusOK, Data: resp})
}

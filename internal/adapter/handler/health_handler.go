package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/corescan/deployguard/internal/domain/entities"
	"github.com/corescan/deployguard/internal/usecase"
)

const requestIDHeader = "X-Request-ID"

// HealthHandler serves the deployment-safety health endpoint
type HealthHandler struct {
	health *usecase.HealthUseCase
}

func NewHealthHandler(health *usecase.HealthUseCase) *HealthHandler {
	return &HealthHandler{health: health}
}

// RegisterRoutes wires the health routes onto the router
func (h *HealthHandler) RegisterRoutes(router *gin.Engine) {
	router.GET("/api/health", h.GetHealth)
	router.GET("/api/health/live", h.GetLiveness)
}

// GetHealth serves the full health report. A degraded report is still a
// complete body; only the status code changes.
func (h *HealthHandler) GetHealth(c *gin.Context) {
	report := h.health.Report(c.Request.Context())

	code := http.StatusOK
	if report.Status == entities.HealthStatusError {
		code = http.StatusInternalServerError
	}
	c.JSON(code, report)
}

// GetLiveness answers whether the process is up, nothing more
func (h *HealthHandler) GetLiveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "alive"})
}

// RequestID echoes an incoming X-Request-ID or generates one, so health
// probes can be correlated across the gate and the server logs
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

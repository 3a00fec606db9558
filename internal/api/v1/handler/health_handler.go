package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"superset-embed/internal/common"
	"superset-embed/internal/features/superset/domain"
)

// HealthHandler provides health check endpoints
type HealthHandler struct {
	startTime time.Time
	settings  domain.ConfigSource
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(settings domain.ConfigSource) *HealthHandler {
	if settings == nil {
		panic("config source cannot be nil")
	}

	return &HealthHandler{
		startTime: time.Now(),
		settings:  settings,
	}
}

// SetupRoutes registers handler routes to the router
func (h *HealthHandler) SetupRoutes(r *gin.Engine) {
	api := r.Group("/api/v1")
	{
		api.GET("/health", h.healthCheck)
		api.GET("/readiness", h.readinessCheck)
		api.GET("/liveness", h.livenessCheck)
	}
}

// healthCheck confirms the service is running
func (h *HealthHandler) healthCheck(c *gin.Context) {
	uptime := time.Since(h.startTime).Round(time.Second).String()

	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Service is running",
		"uptime":  uptime,
	})
}

// readinessCheck confirms the parameter store can be read.
// An unconfigured service is still ready so its settings can be filled in.
func (h *HealthHandler) readinessCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	cfg, err := h.settings.Load(ctx)
	if err != nil {
		common.LoggerFromContext(ctx).Warn("readiness check failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "unavailable",
			"message": common.PublicMessage(err),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "ready",
		"message":    "Service is ready to accept requests",
		"configured": cfg.Configured(),
	})
}

// livenessCheck provides a health endpoint for Kubernetes liveness probe
func (h *HealthHandler) livenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}

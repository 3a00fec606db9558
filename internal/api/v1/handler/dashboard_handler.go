package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"superset-embed/internal/features/superset/domain"
)

// DashboardHandler serves the dashboard list and embedding data
type DashboardHandler struct {
	settings   domain.ConfigSource
	dashboards domain.DashboardProvider
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(settings domain.ConfigSource, dashboards domain.DashboardProvider) *DashboardHandler {
	if settings == nil {
		panic("config source cannot be nil")
	}
	if dashboards == nil {
		panic("dashboard provider cannot be nil")
	}

	return &DashboardHandler{
		settings:   settings,
		dashboards: dashboards,
	}
}

// SetupRoutes registers handler routes to the router; every route requires a viewer
func (h *DashboardHandler) SetupRoutes(r *gin.Engine, access Access) {
	api := r.Group("/api/v1/dashboards", access.Viewer...)
	{
		api.GET("", h.listDashboards)
		api.GET("/:ref/embedding", h.getEmbedding)
	}
}

// listDashboards returns the embeddable dashboards sorted by title
func (h *DashboardHandler) listDashboards(c *gin.Context) {
	ctx := c.Request.Context()

	cfg, err := h.settings.Load(ctx)
	if err != nil {
		respondError(c, err)
		return
	}

	dashboards, err := h.dashboards.ListEmbeddableDashboards(ctx, cfg)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":         true,
		"count":      len(dashboards),
		"dashboards": dashboards,
	})
}

// getEmbedding mints a guest token for one dashboard on behalf of the authenticated caller
func (h *DashboardHandler) getEmbedding(c *gin.Context) {
	ctx := c.Request.Context()

	cfg, err := h.settings.Load(ctx)
	if err != nil {
		respondError(c, err)
		return
	}

	data, err := h.dashboards.GetDashboardEmbeddingData(ctx, cfg, c.Param("ref"), guestUser(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, gin.H{
		"ok":        true,
		"embedding": data,
	})
}

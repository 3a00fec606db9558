package handler

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"superset-embed/internal/common"
	"superset-embed/internal/features/superset/domain"
)

// Event reasons recorded by the token handler
const (
	TokenCacheClearedReason  = "TokenCacheCleared"
	ConnectionVerifiedReason = "ConnectionVerified"
	ConnectionFailedReason   = "ConnectionFailed"
)

// TokenHandler exposes access token maintenance and the connection test
type TokenHandler struct {
	settings   domain.ConfigSource
	auth       domain.AuthProvider
	dashboards domain.DashboardProvider
	events     domain.EventRecorder
}

// NewTokenHandler creates a new token handler
func NewTokenHandler(
	settings domain.ConfigSource,
	auth domain.AuthProvider,
	dashboards domain.DashboardProvider,
	events domain.EventRecorder,
) *TokenHandler {
	if settings == nil {
		panic("config source cannot be nil")
	}
	if auth == nil {
		panic("auth provider cannot be nil")
	}
	if dashboards == nil {
		panic("dashboard provider cannot be nil")
	}
	if events == nil {
		panic("event recorder cannot be nil")
	}

	return &TokenHandler{
		settings:   settings,
		auth:       auth,
		dashboards: dashboards,
		events:     events,
	}
}

// SetupRoutes registers handler routes to the router
func (h *TokenHandler) SetupRoutes(r *gin.Engine, access Access) {
	viewer := r.Group("/api/v1", access.Viewer...)
	{
		viewer.POST("/token", h.getToken)
	}

	manager := r.Group("/api/v1", access.Manager...)
	{
		manager.POST("/cache/clear", h.clearCache)
		manager.POST("/connection/test", h.testConnection)
	}
}

type tokenRequest struct {
	ForceRefresh bool `json:"force_refresh"`
}

// getToken obtains an access token; the token itself is never returned in full
func (h *TokenHandler) getToken(c *gin.Context) {
	var req tokenRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(c, common.ValidationError("invalid request body"))
		return
	}

	ctx := c.Request.Context()
	cfg, err := h.settings.Load(ctx)
	if err != nil {
		respondError(c, err)
		return
	}

	token, err := h.auth.GetAccessToken(ctx, cfg, req.ForceRefresh)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":         true,
		"token":      redactToken(token.Token),
		"expires_at": token.ExpiresAt.UTC().Format(time.RFC3339),
		"from_cache": token.FromCache,
	})
}

// clearCache drops every cached access token
func (h *TokenHandler) clearCache(c *gin.Context) {
	h.auth.ClearCache()
	h.record(c, domain.EventNormal, TokenCacheClearedReason, "superset token cache cleared")

	c.JSON(http.StatusOK, gin.H{
		"ok":      true,
		"message": "token cache cleared",
	})
}

// testConnection reports on health, login and API access; a failed test is still a 200
func (h *TokenHandler) testConnection(c *gin.Context) {
	ctx := c.Request.Context()

	cfg, err := h.settings.Load(ctx)
	if err != nil {
		respondError(c, err)
		return
	}

	report := h.dashboards.TestConnection(ctx, cfg)
	if report.OK {
		h.record(c, domain.EventNormal, ConnectionVerifiedReason, report.Message)
	} else {
		h.record(c, domain.EventWarning, ConnectionFailedReason, report.Message)
	}

	c.JSON(http.StatusOK, report)
}

func (h *TokenHandler) record(c *gin.Context, eventType, reason, message string) {
	ctx := c.Request.Context()
	if err := h.events.Record(ctx, eventType, reason, message); err != nil {
		common.LoggerFromContext(ctx).Warn("failed to record event", "reason", reason, "error", err)
	}
}

// redactToken keeps a short prefix so operators can tell tokens apart
func redactToken(token string) string {
	const visible = 6
	if len(token) <= visible*2 {
		return strings.Repeat("*", 8)
	}
	return token[:visible] + strings.Repeat("*", 8)
}

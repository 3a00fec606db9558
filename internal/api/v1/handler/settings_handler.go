package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"superset-embed/internal/common"
	"superset-embed/internal/features/superset/domain"
)

// SettingsUpdatedReason is recorded after the settings are saved
const SettingsUpdatedReason = "SettingsUpdated"

// maskedPassword is shown instead of the stored password
const maskedPassword = "********"

// SettingsHandler reads and writes the Superset connection settings
type SettingsHandler struct {
	settings domain.ConfigSource
	auth     domain.AuthProvider
	events   domain.EventRecorder
}

// NewSettingsHandler creates a new settings handler
func NewSettingsHandler(settings domain.ConfigSource, auth domain.AuthProvider, events domain.EventRecorder) *SettingsHandler {
	if settings == nil {
		panic("config source cannot be nil")
	}
	if auth == nil {
		panic("auth provider cannot be nil")
	}
	if events == nil {
		panic("event recorder cannot be nil")
	}

	return &SettingsHandler{
		settings: settings,
		auth:     auth,
		events:   events,
	}
}

// SetupRoutes registers handler routes to the router; every route requires a manager
func (h *SettingsHandler) SetupRoutes(r *gin.Engine, access Access) {
	api := r.Group("/api/v1", access.Manager...)
	{
		api.GET("/settings", h.getSettings)
		api.PUT("/settings", h.putSettings)
	}
}

// settingsBody is the settings form; timeout is in whole seconds
type settingsBody struct {
	URL          string `json:"url"`
	Username     string `json:"username"`
	Password     string `json:"password"`
	Timeout      int    `json:"timeout"`
	DebugMode    bool   `json:"debug_mode"`
	CacheEnabled bool   `json:"cache_enabled"`
}

func toSettingsBody(cfg domain.Config) settingsBody {
	cfg = cfg.Redacted()
	return settingsBody{
		URL:          cfg.BaseURL,
		Username:     cfg.Username,
		Password:     cfg.Password,
		Timeout:      int(cfg.Timeout / time.Second),
		DebugMode:    cfg.Debug,
		CacheEnabled: cfg.CacheEnabled,
	}
}

// getSettings returns the stored settings with the password masked
func (h *SettingsHandler) getSettings(c *gin.Context) {
	cfg, err := h.settings.Load(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	problems := cfg.Validate()
	if problems == nil {
		problems = []string{}
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":         true,
		"settings":   toSettingsBody(cfg),
		"configured": len(problems) == 0,
		"problems":   problems,
	})
}

// putSettings validates and saves the settings.
// An empty or masked password keeps the stored one only while url and username are unchanged.
func (h *SettingsHandler) putSettings(c *gin.Context) {
	var body settingsBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, common.ValidationError("invalid request body"))
		return
	}

	ctx := c.Request.Context()
	current, err := h.settings.Load(ctx)
	if err != nil {
		respondError(c, err)
		return
	}

	cfg := domain.Config{
		BaseURL:      body.URL,
		Username:     body.Username,
		Password:     body.Password,
		Timeout:      time.Duration(body.Timeout) * time.Second,
		Debug:        body.DebugMode,
		CacheEnabled: body.CacheEnabled,
	}
	if cfg.Password == "" || cfg.Password == maskedPassword {
		cfg.Password = ""
		if sameCredentialTarget(current, cfg) {
			cfg.Password = current.Password
		}
	}

	if err := h.settings.Save(ctx, cfg); err != nil {
		respondError(c, err)
		return
	}

	// tokens issued for the previous credentials must not outlive them
	h.auth.ClearCache()

	if err := h.events.Record(ctx, domain.EventNormal, SettingsUpdatedReason, "superset settings updated"); err != nil {
		common.LoggerFromContext(ctx).Warn("failed to record event", "reason", SettingsUpdatedReason, "error", err)
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":       true,
		"settings": toSettingsBody(cfg),
	})
}

// sameCredentialTarget reports whether b would send the stored password to the same account as a
func sameCredentialTarget(a, b domain.Config) bool {
	return a.CacheKeySource() == b.CacheKeySource()
}

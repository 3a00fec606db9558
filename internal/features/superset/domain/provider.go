package domain

import (
	"context"
	"net/http"
	"time"
)

// ParameterStore is the host application's key-value configuration store
type ParameterStore interface {
	// GetParams retrieves the given keys; missing keys are absent from the result
	GetParams(ctx context.Context, keys []string) (map[string]string, error)

	// SetParams creates or overwrites the given keys
	SetParams(ctx context.Context, values map[string]string) error
}

// ConfigSource supplies the Superset connection settings
type ConfigSource interface {
	// Load reads a fresh Config from the backing store
	Load(ctx context.Context) (Config, error)

	// Save validates cfg and persists it
	Save(ctx context.Context, cfg Config) error
}

// HTTPClientInterface defines the contract for HTTP clients
type HTTPClientInterface interface {
	// Request makes an HTTP request with the specified method, URL, body, and headers
	Request(ctx context.Context, method, url string, body []byte, headers map[string]string) (*http.Response, error)

	// ReadResponseBody reads and closes the response body
	ReadResponseBody(resp *http.Response) ([]byte, error)
}

// TokenCache holds access tokens keyed by credential identity
type TokenCache interface {
	Get(key string) (CachedToken, bool)
	Put(key, token string, ttl time.Duration)
	Clear()
}

// AuthProvider turns credentials into access tokens and guest tokens
type AuthProvider interface {
	// GetAccessToken returns a cached or freshly issued access token
	GetAccessToken(ctx context.Context, cfg Config, forceRefresh bool) (AccessToken, error)

	// IssueGuestToken mints a guest token for one embedded dashboard
	IssueGuestToken(ctx context.Context, cfg Config, accessToken, embeddingUUID string, guest GuestUser) (GuestToken, error)

	// ClearCache drops every cached access token
	ClearCache()
}

// DashboardProvider lists dashboards and resolves their embedding metadata
type DashboardProvider interface {
	// ListEmbeddableDashboards returns published dashboards that have an embedding UUID
	ListEmbeddableDashboards(ctx context.Context, cfg Config) ([]Dashboard, error)

	// ProbeEmbedding returns the embedding UUID of a dashboard, if it has one
	ProbeEmbedding(ctx context.Context, cfg Config, accessToken string, dashboardID int) (string, bool)

	// GetDashboardEmbeddingData resolves a dashboard and mints a guest token for it
	GetDashboardEmbeddingData(ctx context.Context, cfg Config, dashboardRef string, guest GuestUser) (EmbeddingData, error)

	// TestConnection checks health, authentication and API access
	TestConnection(ctx context.Context, cfg Config) ConnectionReport
}

// Event types accepted by EventRecorder
const (
	EventNormal  = "Normal"
	EventWarning = "Warning"
)

// EventRecorder publishes operational events such as settings changes.
// Recording is best effort; callers log failures and carry on.
type EventRecorder interface {
	Record(ctx context.Context, eventType, reason, message string) error
}

package domain

import "time"

// AccessToken is a bearer token for the Superset API
type AccessToken struct {
	Token     string
	ExpiresAt time.Time
	// FromCache reports whether the token was served without a login call
	FromCache bool
}

// CachedToken is a token held by the token cache
type CachedToken struct {
	Token     string
	ExpiresAt time.Time
}

// Valid reports whether the cached token may still be served at now
func (t CachedToken) Valid(now time.Time) bool {
	return t.Token != "" && now.Before(t.ExpiresAt)
}

// GuestToken is a resource-scoped token for an embedded viewer
type GuestToken struct {
	Token string `json:"token"`
}

// GuestUser is the synthetic identity a guest token is minted for
type GuestUser struct {
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// Dashboard is a Superset dashboard as seen by the embedding layer
type Dashboard struct {
	ID            int      `json:"id"`
	UUID          string   `json:"uuid"`
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Published     bool     `json:"published"`
	Owners        []string `json:"owners"`
	EmbeddingUUID string   `json:"embedding_uuid,omitempty"`
}

// Embeddable reports whether an embedding UUID has been resolved
func (d Dashboard) Embeddable() bool {
	return d.EmbeddingUUID != ""
}

// EmbeddingData is everything the client-side embedding widget needs
type EmbeddingData struct {
	EmbeddingUUID string `json:"embedding_uuid"`
	GuestToken    string `json:"guest_token"`
	Domain        string `json:"domain"`
	Title         string `json:"title"`
	DashboardID   int    `json:"dashboard_id"`
}

// ConnectionDetails breaks a connection test down by step
type ConnectionDetails struct {
	Health         string `json:"health"`
	Auth           string `json:"auth"`
	APIAccess      string `json:"api_access"`
	DashboardCount int    `json:"dashboard_count"`
}

// ConnectionReport is the outcome of a connection test
type ConnectionReport struct {
	OK      bool               `json:"ok"`
	Message string             `json:"message,omitempty"`
	Details *ConnectionDetails `json:"details,omitempty"`
}

// LoginRequest is the body of POST /api/v1/security/login
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Provider string `json:"provider"`
	Refresh  bool   `json:"refresh"`
}

// LoginResponse is the body returned by a successful login
type LoginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// GuestTokenResource scopes a guest token to one embedded dashboard
type GuestTokenResource struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// RLSRule is a row-level security clause attached to a guest token
type RLSRule struct {
	Clause  string `json:"clause"`
	Dataset int    `json:"dataset,omitempty"`
}

// GuestTokenRequest is the body of POST /api/v1/security/guest_token/
type GuestTokenRequest struct {
	User      GuestUser            `json:"user"`
	Resources []GuestTokenResource `json:"resources"`
	RLS       []RLSRule            `json:"rls"`
}

// DashboardOwner is an owner entry of the dashboard listing
type DashboardOwner struct {
	ID        int    `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Username  string `json:"username,omitempty"`
}

// DashboardListItem is one entry of GET /api/v1/dashboard/
type DashboardListItem struct {
	ID          int              `json:"id"`
	UUID        string           `json:"uuid"`
	Title       string           `json:"dashboard_title"`
	Description string           `json:"description"`
	Published   bool             `json:"published"`
	Owners      []DashboardOwner `json:"owners"`
}

// DashboardListResponse is the body of GET /api/v1/dashboard/
type DashboardListResponse struct {
	Count  int                 `json:"count"`
	Result []DashboardListItem `json:"result"`
}

// EmbeddedResponse is the body of GET /api/v1/dashboard/{id}/embedded
type EmbeddedResponse struct {
	Result struct {
		UUID           string   `json:"uuid"`
		AllowedDomains []string `json:"allowed_domains"`
	} `json:"result"`
}

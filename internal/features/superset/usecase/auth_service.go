package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"superset-embed/internal/common"
	"superset-embed/internal/features/superset/domain"
)

// AuthServiceConfig holds the configuration for the auth service
type AuthServiceConfig struct {
	// CacheTTL is how long an access token is served from cache.
	// It stays below the upstream token lifetime so a cached token is never already expired upstream.
	CacheTTL time.Duration

	// ExpiryMargin is subtracted from a JWT exp claim when it caps CacheTTL
	ExpiryMargin time.Duration
}

// DefaultAuthServiceConfig returns the default auth service configuration
func DefaultAuthServiceConfig() AuthServiceConfig {
	return AuthServiceConfig{
		CacheTTL:     4 * time.Minute,
		ExpiryMargin: 30 * time.Second,
	}
}

// AuthService implements domain.AuthProvider
type AuthService struct {
	config   AuthServiceConfig
	cache    domain.TokenCache
	upstream upstream
	metrics  *MetricsCollector
	now      func() time.Time
}

// NewAuthService creates a new auth service
func NewAuthService(
	config AuthServiceConfig,
	cache domain.TokenCache,
	httpClient domain.HTTPClientInterface,
	metrics *MetricsCollector,
) domain.AuthProvider {
	if cache == nil {
		panic("token cache cannot be nil")
	}
	if httpClient == nil {
		panic("HTTP client cannot be nil")
	}
	if config.CacheTTL <= 0 {
		config.CacheTTL = DefaultAuthServiceConfig().CacheTTL
	}

	return &AuthService{
		config:   config,
		cache:    cache,
		upstream: upstream{httpClient: httpClient, metrics: metrics},
		metrics:  metrics,
		now:      time.Now,
	}
}

// GetAccessToken returns a valid access token, logging in when the cache cannot serve one
func (s *AuthService) GetAccessToken(ctx context.Context, cfg domain.Config, forceRefresh bool) (domain.AccessToken, error) {
	if err := domain.ValidateConfig(cfg); err != nil {
		return domain.AccessToken{}, err
	}

	key := CacheKey(cfg)

	switch {
	case !cfg.CacheEnabled || forceRefresh:
		s.metrics.RecordCacheLookup("bypass")
	default:
		if cached, ok := s.cache.Get(key); ok {
			s.metrics.RecordCacheLookup("hit")
			return domain.AccessToken{
				Token:     cached.Token,
				ExpiresAt: cached.ExpiresAt,
				FromCache: true,
			}, nil
		}
		s.metrics.RecordCacheLookup("miss")
	}

	token, err := s.login(ctx, cfg)
	s.metrics.RecordLogin(err == nil)
	if err != nil {
		return domain.AccessToken{}, err
	}

	now := s.now()
	ttl := s.cacheTTL(token, now)
	if cfg.CacheEnabled {
		s.cache.Put(key, token, ttl)
	}

	common.LoggerFromContext(ctx).Debug("obtained superset access token",
		"username", cfg.Username,
		"cached", cfg.CacheEnabled && ttl > 0,
		"ttl", ttl.String())

	return domain.AccessToken{
		Token:     token,
		ExpiresAt: now.Add(max(ttl, 0)),
	}, nil
}

// login performs POST /api/v1/security/login
func (s *AuthService) login(ctx context.Context, cfg domain.Config) (string, error) {
	request := domain.LoginRequest{
		Username: cfg.Username,
		Password: cfg.Password,
		Provider: "db",
		Refresh:  true,
	}

	status, body, err := s.upstream.do(ctx, cfg, "login", http.MethodPost, loginPath, "", request)
	if err != nil {
		return "", err
	}

	switch status {
	case http.StatusOK:
		var response domain.LoginResponse
		if err := json.Unmarshal(body, &response); err != nil || response.AccessToken == "" {
			return "", common.AuthError(status, "malformed login response")
		}
		return response.AccessToken, nil
	case http.StatusUnauthorized:
		return "", common.AuthError(status, "invalid credentials")
	case http.StatusForbidden:
		return "", common.AuthError(status, "insufficient permissions")
	default:
		return "", common.AuthError(status, fmt.Sprintf("HTTP %d: %s", status, upstreamMessage(body)))
	}
}

// cacheTTL returns the configured TTL, shortened when the token's own exp claim comes first
func (s *AuthService) cacheTTL(token string, now time.Time) time.Duration {
	ttl := s.config.CacheTTL

	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil || claims.ExpiresAt == nil {
		return ttl
	}

	if capped := claims.ExpiresAt.Time.Sub(now) - s.config.ExpiryMargin; capped < ttl {
		return capped
	}
	return ttl
}

// IssueGuestToken performs POST /api/v1/security/guest_token/ for one dashboard
func (s *AuthService) IssueGuestToken(
	ctx context.Context,
	cfg domain.Config,
	accessToken string,
	embeddingUUID string,
	guest domain.GuestUser,
) (domain.GuestToken, error) {
	embeddingUUID = strings.TrimSpace(embeddingUUID)
	if embeddingUUID == "" {
		return domain.GuestToken{}, common.ValidationError("embedding uuid is required")
	}
	if accessToken == "" {
		return domain.GuestToken{}, common.ValidationError("access token is required")
	}
	if err := domain.ValidateConfig(cfg); err != nil {
		return domain.GuestToken{}, err
	}

	request := domain.GuestTokenRequest{
		User: guest,
		Resources: []domain.GuestTokenResource{
			{Type: "dashboard", ID: embeddingUUID},
		},
		RLS: []domain.RLSRule{},
	}

	status, body, err := s.upstream.do(ctx, cfg, "guest_token", http.MethodPost, guestTokenPath, accessToken, request)
	if err != nil {
		s.metrics.RecordGuestToken(false)
		return domain.GuestToken{}, err
	}

	if status != http.StatusOK {
		s.metrics.RecordGuestToken(false)
		return domain.GuestToken{}, common.GuestTokenError(status, string(body),
			fmt.Sprintf("guest token request failed with HTTP %d: %s", status, upstreamMessage(body)))
	}

	var token domain.GuestToken
	if err := json.Unmarshal(body, &token); err != nil || token.Token == "" {
		s.metrics.RecordGuestToken(false)
		return domain.GuestToken{}, common.GuestTokenError(status, string(body), "malformed guest token response")
	}

	s.metrics.RecordGuestToken(true)
	return token, nil
}

// ClearCache drops every cached access token
func (s *AuthService) ClearCache() {
	s.cache.Clear()
}

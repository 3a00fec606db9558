package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"superset-embed/internal/common"
)

// Scopes granted by the host application
const (
	ScopeViewer  = "superset:view"
	ScopeManager = "superset:manage"
)

const claimsKey = "auth_claims"

// Claims are the access-token claims minted by the host application for its users
type Claims struct {
	jwt.RegisteredClaims

	// Permission scopes, e.g. "superset:view"
	Scopes []string `json:"scopes,omitempty"`

	// Username of the authenticated user
	Username string `json:"username,omitempty"`

	// PreferredName is the display name of the user
	PreferredName string `json:"preferred_name,omitempty"`
}

// AuthConfig defines how inbound bearer tokens are verified
type AuthConfig struct {
	// SigningKey is the shared HMAC key
	SigningKey []byte

	// Issuer and Audience are enforced when set
	Issuer   string
	Audience string

	// Leeway absorbs clock skew on exp and nbf
	Leeway time.Duration
}

// Authn verifies the HMAC signed bearer token and stores its claims on the gin context.
// Tokens without exp or sub are rejected.
func Authn(config AuthConfig) gin.HandlerFunc {
	if len(config.SigningKey) == 0 {
		panic("auth signing key cannot be empty")
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{
			jwt.SigningMethodHS256.Alg(),
			jwt.SigningMethodHS384.Alg(),
			jwt.SigningMethodHS512.Alg(),
		}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(config.Leeway),
	}
	if config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(config.Issuer))
	}
	if config.Audience != "" {
		opts = append(opts, jwt.WithAudience(config.Audience))
	}
	parser := jwt.NewParser(opts...)
	keyFunc := func(*jwt.Token) (any, error) { return config.SigningKey, nil }

	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			abortUnauthorized(c, "missing bearer token")
			return
		}
		raw := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))

		claims := &Claims{}
		if _, err := parser.ParseWithClaims(raw, claims, keyFunc); err != nil {
			common.LoggerFromContext(c.Request.Context()).Warn("bearer token rejected", "error", err)
			abortUnauthorized(c, "token verification failed")
			return
		}
		if claims.Subject == "" {
			abortUnauthorized(c, "token has no subject")
			return
		}

		c.Set(claimsKey, claims)
		c.Next()
	}
}

// RequireAnyScope requires the caller to hold at least one of the scopes; Authn must run first
func RequireAnyScope(required ...string) gin.HandlerFunc {
	want := make(map[string]struct{}, len(required))
	for _, s := range required {
		want[s] = struct{}{}
	}

	return func(c *gin.Context) {
		claims, ok := ClaimsFromContext(c)
		if !ok {
			abortUnauthorized(c, "missing bearer token")
			return
		}

		for _, s := range claims.Scopes {
			if _, ok := want[s]; ok {
				c.Next()
				return
			}
		}

		common.LoggerFromContext(c.Request.Context()).Warn("insufficient scope",
			"subject", claims.Subject,
			"required", required)

		c.Header("WWW-Authenticate", `Bearer error="insufficient_scope", scope="`+strings.Join(required, " ")+`"`)
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"ok":      false,
			"kind":    "forbidden",
			"message": "insufficient scope",
		})
	}
}

// ClaimsFromContext returns the claims stored by Authn
func ClaimsFromContext(c *gin.Context) (*Claims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*Claims)
	return claims, ok
}

// abortUnauthorized writes an RFC 6750 bearer error
func abortUnauthorized(c *gin.Context, desc string) {
	c.Header("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+desc+`"`)
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"ok":      false,
		"kind":    "unauthenticated",
		"message": desc,
	})
}

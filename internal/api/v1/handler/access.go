package handler

import (
	"strings"

	"github.com/gin-gonic/gin"

	"superset-embed/internal/api/v1/middleware"
	"superset-embed/internal/features/superset/domain"
)

// Access holds the middleware chains guarding viewer and manager routes
type Access struct {
	Viewer  []gin.HandlerFunc
	Manager []gin.HandlerFunc
}

// NewAccess verifies bearer tokens on every guarded route.
// Viewer routes accept either scope; manager routes need the manager scope.
func NewAccess(config middleware.AuthConfig) Access {
	authn := middleware.Authn(config)
	return Access{
		Viewer:  []gin.HandlerFunc{authn, middleware.RequireAnyScope(middleware.ScopeViewer, middleware.ScopeManager)},
		Manager: []gin.HandlerFunc{authn, middleware.RequireAnyScope(middleware.ScopeManager)},
	}
}

// guestUser derives the guest identity from the authenticated caller.
// The zero value makes the dashboard service fall back to the configured default guest.
func guestUser(c *gin.Context) domain.GuestUser {
	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		return domain.GuestUser{}
	}

	username := strings.TrimSpace(claims.Username)
	if username == "" {
		username = "user_" + claims.Subject
	}

	first, last := username, ""
	if fields := strings.Fields(claims.PreferredName); len(fields) > 0 {
		first = fields[0]
		last = strings.Join(fields[1:], " ")
	}

	return domain.GuestUser{
		Username:  username,
		FirstName: first,
		LastName:  last,
	}
}

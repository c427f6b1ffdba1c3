package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/EliteTRENT/movie-explorer/internal/core/domain"
	"github.com/EliteTRENT/movie-explorer/internal/infra/security"
)

const (
	// PrincipalKey is the context key for the authenticated principal.
	PrincipalKey = "principal"
	// ClaimsKey is the context key for the verified token claims.
	ClaimsKey = "claims"
)

// Principal retrieves the authenticated principal from the request context.
func Principal(c *gin.Context) (domain.Principal, bool) {
	value, exists := c.Get(PrincipalKey)
	if !exists {
		return domain.Principal{}, false
	}
	principal, ok := value.(domain.Principal)
	return principal, ok
}

// Claims retrieves the verified token claims from the request context.
func Claims(c *gin.Context) (*security.SessionClaims, bool) {
	value, exists := c.Get(ClaimsKey)
	if !exists {
		return nil, false
	}
	claims, ok := value.(*security.SessionClaims)
	return claims, ok
}

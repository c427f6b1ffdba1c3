package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/EliteTRENT/movie-explorer/internal/usecase"
)

// ErrorResponse matches the handlers.ErrorResponse structure.
type ErrorResponse struct {
	Error string `json:"error"`
}

// RequireAuth runs the bearer token through the token authority's
// validation gates and stores the principal and claims on the request.
func RequireAuth(authority *usecase.TokenAuthority) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			return
		}

		principal, claims, err := authority.Validate(c.Request.Context(), token)
		if err != nil {
			switch {
			case errors.Is(err, usecase.ErrMissingToken):
				c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "missing access token"})
			case errors.Is(err, usecase.ErrExpiredToken):
				c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "access token expired"})
			case errors.Is(err, usecase.ErrRevokedToken):
				c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "access token revoked"})
			case errors.Is(err, usecase.ErrInvalidToken):
				c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid access token"})
			case errors.Is(err, usecase.ErrPrincipalNotFound):
				c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "account no longer exists"})
			default:
				c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Error: "authentication failed"})
			}
			return
		}

		c.Set(PrincipalKey, *principal)
		c.Set(ClaimsKey, claims)

		c.Next()
	}
}

// RequireSupervisor rejects principals whose role may not mutate the catalog.
// Must run after RequireAuth.
func RequireSupervisor() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := Principal(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "authentication required"})
			return
		}

		if !principal.Role.CanManageCatalog() {
			c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{Error: "supervisor role required"})
			return
		}

		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "missing authorization header"})
		return "", false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		c.AbortWithStatusJSON(http.StatusUnauthorized,
			ErrorResponse{Error: "invalid authorization format: expected 'Bearer <token>'"})
		return "", false
	}

	token := strings.TrimSpace(parts[1])
	if token == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "missing access token"})
		return "", false
	}

	return token, true
}

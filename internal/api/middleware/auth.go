package middleware

import (
	"net/http"
	"strings"

	"github.com/andresuchdata/eximdesk/internal/auth"
	"github.com/andresuchdata/eximdesk/internal/domain"
	"github.com/andresuchdata/eximdesk/internal/service"
	"github.com/gin-gonic/gin"
)

const (
	usernameKey = "username"
	roleKey     = "role"
	userIDKey   = "user_id"
)

// Authenticator validates bearer tokens.
type Authenticator interface {
	Authenticate(token string) (*auth.Claims, error)
}

// Auth rejects requests without a valid bearer token and exposes the caller
// to handlers and to the request context.
func Auth(authenticator Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		claims, err := authenticator.Authenticate(strings.TrimSpace(token))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		c.Set(usernameKey, claims.Username)
		c.Set(roleKey, string(claims.Role))
		c.Set(userIDKey, claims.UserID)
		c.Request = c.Request.WithContext(service.WithActor(c.Request.Context(), claims.Username))
		c.Next()
	}
}

// RequireAdmin only lets admin users through. It must run after Auth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(roleKey) != string(domain.RoleAdmin) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin role required"})
			return
		}
		c.Next()
	}
}

// Username returns the authenticated caller, or "" before Auth ran.
func Username(c *gin.Context) string {
	return c.GetString(usernameKey)
}

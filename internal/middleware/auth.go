package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"hustle/internal/domain"
)

// SessionContextKey is the gin context key holding the authenticated *domain.Session.
const SessionContextKey = "session"

// SessionResolver resolves a bearer token to a live session.
type SessionResolver interface {
	Session(ctx context.Context, token string) (*domain.Session, error)
}

// RequireAuth rejects requests without a valid bearer token.
func RequireAuth(resolver SessionResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := BearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		session, err := resolver.Session(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		c.Set(SessionContextKey, session)
		c.Next()
	}
}

// CurrentSession returns the session stored by RequireAuth, if any.
func CurrentSession(c *gin.Context) (*domain.Session, bool) {
	v, ok := c.Get(SessionContextKey)
	if !ok {
		return nil, false
	}
	s, ok := v.(*domain.Session)
	return s, ok
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(c *gin.Context) string {
	scheme, token, ok := strings.Cut(c.GetHeader("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

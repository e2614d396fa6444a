package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"docquery-backend/internal/shared/auth"
	"docquery-backend/internal/shared/server/respond"
)

const (
	userIDKey    = "userId"
	userEmailKey = "userEmail"
)

// DocumentIDKey is set by handlers that operate on a single document so the
// request log can carry the document id.
const DocumentIDKey = "documentId"

// IdentityResolver maps a verified token subject (email) to a stored user id.
type IdentityResolver interface {
	ResolveUser(ctx context.Context, email string) (string, error)
}

// Auth validates bearer tokens and stores the resolved identity in context.
func Auth(resolver IdentityResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			return
		}

		header := strings.TrimSpace(c.GetHeader("Authorization"))
		if !strings.HasPrefix(header, "Bearer ") {
			unauthorized(c)
			return
		}
		token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer"))
		if token == "" {
			unauthorized(c)
			return
		}

		email, err := auth.Verify(token)
		if err != nil {
			unauthorized(c)
			return
		}

		userID, err := resolver.ResolveUser(c.Request.Context(), email)
		if err != nil {
			unauthorized(c)
			return
		}

		c.Set(userIDKey, userID)
		c.Set(userEmailKey, email)
		c.Next()
	}
}

func unauthorized(c *gin.Context) {
	c.Header("WWW-Authenticate", "Bearer")
	respond.Error(c, http.StatusUnauthorized, "unauthorized", "Could not validate credentials", nil)
}

// UserIDFromContext returns the user id stored by Auth.
func UserIDFromContext(c *gin.Context) string {
	return c.GetString(userIDKey)
}

// UserEmailFromContext returns the user email stored by Auth.
func UserEmailFromContext(c *gin.Context) string {
	return c.GetString(userEmailKey)
}

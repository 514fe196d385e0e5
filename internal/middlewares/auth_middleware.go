package middlewares

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mentorlink/mentorlink/internal/services"
)

const contextUserIDKey = "user_id"

// AuthMiddleware authenticates REST requests with a bearer access token
// and stores the caller's user ID in the gin context.
func AuthMiddleware(tokens *services.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "authentication required",
			})
			return
		}

		claims, err := tokens.ParseAccess(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "invalid or expired token",
			})
			return
		}

		c.Set(contextUserIDKey, claims.UserID)
		c.Next()
	}
}

// UserID retrieves the authenticated user ID set by AuthMiddleware.
func UserID(c *gin.Context) (uuid.UUID, error) {
	val, exists := c.Get(contextUserIDKey)
	if !exists {
		return uuid.Nil, errors.New("authentication context not found")
	}
	id, ok := val.(uuid.UUID)
	if !ok {
		return uuid.Nil, errors.New("invalid authentication context type")
	}
	return id, nil
}

// SetUserID injects an authenticated user into the context. Exposed for
// handler tests that bypass the middleware.
func SetUserID(c *gin.Context, id uuid.UUID) {
	c.Set(contextUserIDKey, id)
}

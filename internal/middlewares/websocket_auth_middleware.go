package middlewares

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mentorlink/mentorlink/internal/services"
)

type wsAuthKey struct{}

// WSAuthContext holds the authenticated identity of a WebSocket join.
// The role is derived from the session row, never from the client.
type WSAuthContext struct {
	UserID    uuid.UUID
	SessionID uuid.UUID
	Role      string // "mentor" or "mentee"
}

// WebSocketAuthMiddleware authenticates WebSocket joins before the
// upgrade. Browsers cannot set headers on WebSocket requests, so the
// access token travels as a query parameter.
func WebSocketAuthMiddleware(tokens *services.TokenIssuer, sessions *services.SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
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

		sessionID, err := uuid.Parse(c.Query("session_id"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"error": "invalid session_id",
			})
			return
		}

		role, err := sessions.Authorize(c.Request.Context(), sessionID, claims.UserID)
		if err != nil {
			// Membership is not leaked: any failure reads the same.
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "not authorized for this session",
			})
			return
		}

		auth := &WSAuthContext{
			UserID:    claims.UserID,
			SessionID: sessionID,
			Role:      role,
		}
		ctx := context.WithValue(c.Request.Context(), wsAuthKey{}, auth)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// GetWSAuth retrieves the authentication context set by
// WebSocketAuthMiddleware.
func GetWSAuth(c *gin.Context) (*WSAuthContext, error) {
	val := c.Request.Context().Value(wsAuthKey{})
	if val == nil {
		return nil, errors.New("websocket authentication context not found")
	}
	auth, ok := val.(*WSAuthContext)
	if !ok {
		return nil, errors.New("invalid websocket authentication context type")
	}
	return auth, nil
}

package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mentorlink/mentorlink/internal/handlers"
	"github.com/mentorlink/mentorlink/internal/middlewares"
	"github.com/mentorlink/mentorlink/internal/services"
)

func RegisterPublicEndpoints(
	router *gin.Engine,
	authHandler *handlers.AuthHandler,
	mentorHandler *handlers.MentorHandler,
	webSocketHandler *handlers.WebSocketHandler,
	tokens *services.TokenIssuer,
	sessions *services.SessionService,
) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "alive"})
	})

	public := router.Group("/api")

	public.POST("/auth/register", authHandler.Register)
	public.POST("/auth/login", authHandler.Login)
	public.POST("/auth/refresh", authHandler.Refresh)

	public.GET("/mentors", mentorHandler.List)

	// WebSocket signaling endpoint. The middleware validates the JWT,
	// loads the session and derives the caller's role before upgrade.
	wsAuth := middlewares.WebSocketAuthMiddleware(tokens, sessions)
	public.GET("/ws/session", wsAuth, webSocketHandler.HandleWebSocket)
}

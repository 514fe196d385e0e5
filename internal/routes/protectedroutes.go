package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/mentorlink/mentorlink/internal/handlers"
	"github.com/mentorlink/mentorlink/internal/middlewares"
	"github.com/mentorlink/mentorlink/internal/services"
)

func RegisterProtectedEndpoints(
	router *gin.Engine,
	tokens *services.TokenIssuer,
	sessionHandler *handlers.SessionHandler,
	signalHandler *handlers.SignalHandler,
	mentorHandler *handlers.MentorHandler,
	aiMentorHandler *handlers.AIMentorHandler,
	paymentHandler *handlers.PaymentHandler,
) {
	protected := router.Group("/api")
	protected.Use(middlewares.AuthMiddleware(tokens))

	protected.POST("/sessions", sessionHandler.Book)
	protected.GET("/sessions", sessionHandler.List)
	protected.GET("/sessions/:id", sessionHandler.Get)
	protected.POST("/sessions/:id/end", sessionHandler.End)
	protected.POST("/sessions/:id/cancel", sessionHandler.Cancel)
	protected.POST("/sessions/:id/rate", sessionHandler.Rate)
	protected.POST("/sessions/:id/artifacts", sessionHandler.AttachArtifacts)
	protected.GET("/sessions/:id/chat", sessionHandler.ChatHistory)

	protected.POST("/signal", signalHandler.PostSignal)
	protected.GET("/signal", signalHandler.GetSignal)

	protected.POST("/mentors/profile", mentorHandler.CreateProfile)
	protected.PUT("/mentors/availability", mentorHandler.SetAvailability)

	protected.POST("/ai-mentor/chat", aiMentorHandler.Chat)
	protected.POST("/ai-mentor/transcribe", aiMentorHandler.Transcribe)
	protected.POST("/ai-mentor/speak", aiMentorHandler.Speak)
	protected.POST("/ai-mentor/emotion", aiMentorHandler.AnalyzeEmotion)

	protected.POST("/payments", paymentHandler.Create)
	protected.POST("/payments/verify", paymentHandler.Verify)
}

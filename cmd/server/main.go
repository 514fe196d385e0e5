package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/razorpay/razorpay-go"
	"github.com/rs/zerolog"

	"github.com/mentorlink/mentorlink/internal/clients"
	"github.com/mentorlink/mentorlink/internal/config"
	"github.com/mentorlink/mentorlink/internal/database"
	"github.com/mentorlink/mentorlink/internal/handlers"
	"github.com/mentorlink/mentorlink/internal/repositories"
	"github.com/mentorlink/mentorlink/internal/routes"
	"github.com/mentorlink/mentorlink/internal/services"
	"github.com/mentorlink/mentorlink/internal/signaling"
)

func main() {
	log := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	userRepo := repositories.NewUserRepository(db)
	mentorRepo := repositories.NewMentorRepository(db)
	sessionRepo := repositories.NewSessionRepository(db)
	chatRepo := repositories.NewChatMessageRepository(db)
	ratingRepo := repositories.NewRatingRepository(db)
	aiChatRepo := repositories.NewAIChatRepository(db)
	paymentRepo := repositories.NewPaymentRepository(db)

	tokens := services.NewTokenIssuer(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	authService := services.NewAuthService(userRepo, mentorRepo, tokens)
	sessionService := services.NewSessionService(sessionRepo, mentorRepo, ratingRepo, chatRepo)

	registry := signaling.NewRegistry(cfg.HeartbeatGrace, log)
	signalService := services.NewSignalService(registry, sessionService, chatRepo, log)

	groq := clients.NewGroqClient(cfg.GroqAPIKey)
	elevenLabs := clients.NewElevenLabsClient(cfg.ElevenLabsAPIKey)
	emotion := clients.NewEmotionClient(cfg.EmotionAPIURL)
	aiMentorService := services.NewAIMentorService(groq, groq, elevenLabs, emotion, aiChatRepo, log)

	rzp := razorpay.NewClient(cfg.RazorpayKeyID, cfg.RazorpayKeySecret)
	paymentService := services.NewPaymentService(rzp.Order, paymentRepo, sessionRepo, mentorRepo, cfg.RazorpayKeySecret, log)

	authHandler := handlers.NewAuthHandler(authService)
	sessionHandler := handlers.NewSessionHandler(sessionService)
	signalHandler := handlers.NewSignalHandler(signalService, log)
	mentorHandler := handlers.NewMentorHandler(mentorRepo)
	aiMentorHandler := handlers.NewAIMentorHandler(aiMentorService, log)
	paymentHandler := handlers.NewPaymentHandler(paymentService, cfg.RazorpayKeyID)
	webSocketHandler := handlers.NewWebSocketHandler(signalService, cfg.AllowedOrigins, log)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(corsConfig(cfg.AllowedOrigins)))

	routes.RegisterPublicEndpoints(router, authHandler, mentorHandler, webSocketHandler, tokens, sessionService)
	routes.RegisterProtectedEndpoints(router, tokens, sessionHandler, signalHandler, mentorHandler, aiMentorHandler, paymentHandler)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Reaps registrations whose heartbeat lapsed past the grace window.
	go registry.RunSweeper(ctx, cfg.SweepInterval)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
}

func corsConfig(origins []string) cors.Config {
	c := cors.DefaultConfig()
	if len(origins) == 0 {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = origins
	}
	c.AllowHeaders = append(c.AllowHeaders, "Authorization")
	return c
}

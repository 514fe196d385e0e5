package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every runtime setting, loaded once at startup and
// constructor-injected everywhere else.
type Config struct {
	Port        string
	DatabaseURL string
	JWTSecret   string

	AllowedOrigins []string

	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	HeartbeatGrace time.Duration
	SweepInterval  time.Duration
	PollRetention  time.Duration

	GroqAPIKey       string
	ElevenLabsAPIKey string
	EmotionAPIURL    string

	RazorpayKeyID     string
	RazorpayKeySecret string
}

// Load reads configuration from the environment, with .env as a
// development convenience.
func Load() (*Config, error) {
	// A missing .env is fine in production.
	_ = godotenv.Load()

	cfg := &Config{
		Port:        envOr("PORT", "8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		JWTSecret:   os.Getenv("JWT_SECRET"),

		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 7 * 24 * time.Hour,

		HeartbeatGrace: envDuration("HEARTBEAT_GRACE", 60*time.Second),
		SweepInterval:  envDuration("SWEEP_INTERVAL", 10*time.Second),
		PollRetention:  envDuration("POLL_RETENTION", 3*time.Minute),

		GroqAPIKey:       os.Getenv("GROQ_API_KEY"),
		ElevenLabsAPIKey: os.Getenv("ELEVEN_LABS_API_KEY"),
		EmotionAPIURL:    os.Getenv("EMOTION_API_URL"),

		RazorpayKeyID:     os.Getenv("RAZORPAY_KEY_ID"),
		RazorpayKeySecret: os.Getenv("RAZORPAY_KEY_SECRET"),
	}

	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		cfg.AllowedOrigins = strings.Split(origins, ",")
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is required")
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/mentorlink/mentorlink/internal/middlewares"
	"github.com/mentorlink/mentorlink/internal/services"
	"github.com/mentorlink/mentorlink/internal/signaling"
	"github.com/rs/zerolog"
)

const envelopeTimeout = 5 * time.Second

type WebSocketHandler struct {
	signals  *services.SignalService
	upgrader websocket.Upgrader
	log      zerolog.Logger
}

func NewWebSocketHandler(signals *services.SignalService, allowedOrigins []string, log zerolog.Logger) *WebSocketHandler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}

	return &WebSocketHandler{
		signals: signals,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				if len(allowed) == 0 {
					return true
				}
				return allowed[r.Header.Get("Origin")]
			},
		},
		log: log.With().Str("component", "ws-handler").Logger(),
	}
}

// HandleWebSocket upgrades the connection and runs the read/write pumps
// for one participant. MUST be behind WebSocketAuthMiddleware.
func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	auth, err := middlewares.GetWSAuth(c)
	if err != nil {
		h.log.Error().Err(err).Msg("missing authentication context")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error": "internal server error",
		})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	transport := signaling.NewWSTransport(conn, h.log)

	if err := h.signals.Join(c.Request.Context(), auth.SessionID, auth.UserID, transport); err != nil {
		h.log.Warn().Err(err).
			Str("session_id", auth.SessionID.String()).
			Str("user_id", auth.UserID.String()).
			Msg("join rejected")
		transport.Close()
		return
	}

	h.log.Info().
		Str("session_id", auth.SessionID.String()).
		Str("user_id", auth.UserID.String()).
		Str("role", auth.Role).
		Msg("participant connected")

	go transport.WriteLoop()
	go h.readLoop(transport, auth)
}

func (h *WebSocketHandler) readLoop(transport *signaling.WSTransport, auth *middlewares.WSAuthContext) {
	defer h.signals.Leave(auth.SessionID, auth.UserID, transport)

	transport.ReadLoop(func(env signaling.Envelope) {
		ctx, cancel := context.WithTimeout(context.Background(), envelopeTimeout)
		h.signals.HandleEnvelope(ctx, auth.SessionID, auth.UserID, env)
		cancel()
	})
}

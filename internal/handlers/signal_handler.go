package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mentorlink/mentorlink/internal/dtos"
	"github.com/mentorlink/mentorlink/internal/middlewares"
	"github.com/mentorlink/mentorlink/internal/services"
	"github.com/mentorlink/mentorlink/internal/signaling"
	"github.com/rs/zerolog"
)

// SignalHandler is the pull-variant signaling endpoint pair: publish via
// POST, drain via GET with a timestamp cursor.
type SignalHandler struct {
	signals *services.SignalService
	log     zerolog.Logger
}

func NewSignalHandler(signals *services.SignalService, log zerolog.Logger) *SignalHandler {
	return &SignalHandler{
		signals: signals,
		log:     log.With().Str("component", "signal-handler").Logger(),
	}
}

// PostSignal publishes one envelope into the session. The response is
// a bare success flag regardless of whether a peer was there to receive
// it; an unauthorized sender learns nothing about the session.
func (h *SignalHandler) PostSignal(c *gin.Context) {
	userID, err := middlewares.UserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	var req dtos.PostSignalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "sessionId, type, and message are required"})
		return
	}

	sessionID, err := uuid.Parse(req.SessionID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid sessionId"})
		return
	}

	env := signaling.NewEnvelope(signaling.MessageType(req.Type), req.SessionID, userID.String(), req.Message)
	h.signals.HandleEnvelope(c.Request.Context(), sessionID, userID, env)

	c.JSON(http.StatusOK, dtos.PostSignalResponse{Success: true})
}

// GetSignal drains every buffered envelope newer than lastTimestamp for
// the calling participant, registering a polling cursor on first use.
func (h *SignalHandler) GetSignal(c *gin.Context) {
	userID, err := middlewares.UserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	sessionID, err := uuid.Parse(c.Query("sessionId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "sessionId is required"})
		return
	}

	var since int64
	if raw := c.Query("lastTimestamp"); raw != "" {
		since, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid lastTimestamp"})
			return
		}
	}

	messages, err := h.signals.Poll(c.Request.Context(), sessionID, userID, since)
	if err != nil {
		// Same body for "no such session" and "not a participant".
		c.JSON(http.StatusForbidden, gin.H{"error": "not authorized for this session"})
		return
	}
	if messages == nil {
		messages = []signaling.Envelope{}
	}

	c.JSON(http.StatusOK, dtos.PollSignalResponse{
		Messages:  messages,
		Timestamp: time.Now().UnixMilli(),
	})
}

package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mentorlink/mentorlink/internal/dtos"
	"github.com/mentorlink/mentorlink/internal/middlewares"
	"github.com/mentorlink/mentorlink/internal/models"
	"github.com/mentorlink/mentorlink/internal/repositories"
	"github.com/mentorlink/mentorlink/internal/services"
)

type SessionHandler struct {
	sessions *services.SessionService
}

func NewSessionHandler(sessions *services.SessionService) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// Book creates a scheduled session; the caller is the mentee.
func (h *SessionHandler) Book(c *gin.Context) {
	userID, err := middlewares.UserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	var req dtos.BookSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	mentorID, err := uuid.Parse(req.MentorID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid mentor_id"})
		return
	}

	session, err := h.sessions.Book(c.Request.Context(), userID, mentorID, req.StartTime, req.Topic)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrMentorUnavailable), errors.Is(err, services.ErrBookingInPast):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to book session"})
		}
		return
	}

	c.JSON(http.StatusCreated, sessionResponse(session))
}

// List returns the caller's sessions.
func (h *SessionHandler) List(c *gin.Context) {
	userID, err := middlewares.UserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	sessions, err := h.sessions.ListForUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list sessions"})
		return
	}

	out := make([]dtos.SessionResponse, 0, len(sessions))
	for i := range sessions {
		out = append(out, sessionResponse(&sessions[i]))
	}
	c.JSON(http.StatusOK, gin.H{"sessions": out})
}

// Get returns one session the caller takes part in.
func (h *SessionHandler) Get(c *gin.Context) {
	userID, sessionID, ok := h.callerAndSession(c)
	if !ok {
		return
	}

	session, err := h.sessions.Get(c.Request.Context(), sessionID, userID)
	if err != nil {
		h.writeSessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, sessionResponse(session))
}

// End completes a session on explicit hang-up.
func (h *SessionHandler) End(c *gin.Context) {
	userID, sessionID, ok := h.callerAndSession(c)
	if !ok {
		return
	}

	if err := h.sessions.End(c.Request.Context(), sessionID, userID); err != nil {
		h.writeSessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": string(models.SessionStatusCompleted)})
}

// Cancel aborts a scheduled session.
func (h *SessionHandler) Cancel(c *gin.Context) {
	userID, sessionID, ok := h.callerAndSession(c)
	if !ok {
		return
	}

	if err := h.sessions.Cancel(c.Request.Context(), sessionID, userID); err != nil {
		h.writeSessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": string(models.SessionStatusCancelled)})
}

// Rate records the mentee's score for a completed session.
func (h *SessionHandler) Rate(c *gin.Context) {
	userID, sessionID, ok := h.callerAndSession(c)
	if !ok {
		return
	}

	var req dtos.RateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rating, err := h.sessions.Rate(c.Request.Context(), sessionID, userID, req.Rating, req.Review)
	if err != nil {
		h.writeSessionError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": rating.ID})
}

// AttachArtifacts records transcript/recording references post-hoc.
func (h *SessionHandler) AttachArtifacts(c *gin.Context) {
	userID, sessionID, ok := h.callerAndSession(c)
	if !ok {
		return
	}

	var req dtos.AttachTranscriptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.sessions.AttachArtifacts(c.Request.Context(), sessionID, userID, req.TranscriptURL, req.RecordingURL); err != nil {
		h.writeSessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ChatHistory returns the persisted in-call chat log.
func (h *SessionHandler) ChatHistory(c *gin.Context) {
	userID, sessionID, ok := h.callerAndSession(c)
	if !ok {
		return
	}

	messages, err := h.sessions.ChatHistory(c.Request.Context(), sessionID, userID)
	if err != nil {
		h.writeSessionError(c, err)
		return
	}

	out := make([]dtos.ChatMessageResponse, 0, len(messages))
	for _, m := range messages {
		out = append(out, dtos.ChatMessageResponse{
			ID:        m.ID,
			SessionID: m.SessionID,
			SenderID:  m.SenderID,
			Content:   m.Content,
			CreatedAt: m.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"messages": out})
}

func (h *SessionHandler) callerAndSession(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	userID, err := middlewares.UserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return uuid.Nil, uuid.Nil, false
	}
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session id"})
		return uuid.Nil, uuid.Nil, false
	}
	return userID, sessionID, true
}

func (h *SessionHandler) writeSessionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repositories.ErrSessionNotFound), errors.Is(err, services.ErrNotParticipant):
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
	case errors.Is(err, repositories.ErrSessionImmutable), errors.Is(err, services.ErrSessionNotRatable):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func sessionResponse(s *models.Session) dtos.SessionResponse {
	return dtos.SessionResponse{
		ID:            s.ID,
		MentorID:      s.MentorID,
		MenteeID:      s.MenteeID,
		StartTime:     s.StartTime,
		EndTime:       s.EndTime,
		Status:        string(s.Status),
		Topic:         s.Topic,
		Notes:         s.Notes,
		TranscriptURL: s.TranscriptURL,
		RecordingURL:  s.RecordingURL,
	}
}

package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mentorlink/mentorlink/internal/dtos"
	"github.com/mentorlink/mentorlink/internal/middlewares"
	"github.com/mentorlink/mentorlink/internal/services"
	"github.com/rs/zerolog"
)

// maxUploadBytes bounds audio and image uploads to the AI endpoints.
const maxUploadBytes = 25 << 20

type AIMentorHandler struct {
	mentor *services.AIMentorService
	log    zerolog.Logger
}

func NewAIMentorHandler(mentor *services.AIMentorService, log zerolog.Logger) *AIMentorHandler {
	return &AIMentorHandler{
		mentor: mentor,
		log:    log.With().Str("component", "ai-mentor-handler").Logger(),
	}
}

// Chat exchanges one turn with the AI mentor.
func (h *AIMentorHandler) Chat(c *gin.Context) {
	userID, err := middlewares.UserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	var req dtos.AIChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var sessionID *uuid.UUID
	if req.SessionID != nil {
		id, err := uuid.Parse(*req.SessionID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session_id"})
			return
		}
		sessionID = &id
	}

	id, reply, err := h.mentor.Chat(c.Request.Context(), userID, sessionID, req.Message, req.Emotion)
	if err != nil {
		h.log.Error().Err(err).Msg("ai chat failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to get mentor response"})
		return
	}

	c.JSON(http.StatusOK, dtos.AIChatResponse{SessionID: id, Reply: reply})
}

// Transcribe converts an uploaded audio recording to text.
func (h *AIMentorHandler) Transcribe(c *gin.Context) {
	file, header, err := c.Request.FormFile("audio")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "audio file is required"})
		return
	}
	defer file.Close()

	text, err := h.mentor.Transcribe(c.Request.Context(), io.LimitReader(file, maxUploadBytes), header.Filename)
	if err != nil {
		h.log.Error().Err(err).Msg("transcription failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to transcribe audio"})
		return
	}

	c.JSON(http.StatusOK, dtos.TranscribeResponse{Text: text})
}

// Speak streams synthesized speech for the given text.
func (h *AIMentorHandler) Speak(c *gin.Context) {
	var req dtos.SpeakRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text is required"})
		return
	}

	stream, err := h.mentor.Speak(c.Request.Context(), req.Text, req.VoiceID)
	if err != nil {
		h.log.Error().Err(err).Msg("speech synthesis failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to generate speech"})
		return
	}
	defer stream.Close()

	c.Header("Content-Type", "audio/mpeg")
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, stream); err != nil {
		h.log.Debug().Err(err).Msg("speech stream interrupted")
	}
}

// AnalyzeEmotion runs facial-emotion inference on an uploaded frame.
func (h *AIMentorHandler) AnalyzeEmotion(c *gin.Context) {
	file, _, err := c.Request.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file is required"})
		return
	}
	defer file.Close()

	image, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read image"})
		return
	}

	scores, err := h.mentor.AnalyzeEmotion(c.Request.Context(), image)
	if err != nil {
		h.log.Error().Err(err).Msg("emotion analysis failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to analyze emotion"})
		return
	}

	out := make([]dtos.EmotionScore, 0, len(scores))
	for _, s := range scores {
		out = append(out, dtos.EmotionScore{Emotion: s.Emotion, Score: s.Score})
	}
	c.JSON(http.StatusOK, dtos.AnalyzeEmotionResponse{Emotions: out})
}

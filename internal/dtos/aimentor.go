package dtos

import "github.com/google/uuid"

type AIChatRequest struct {
	SessionID *string `json:"session_id" binding:"omitempty,uuid"`
	Message   string  `json:"message" binding:"required"`
	Emotion   string  `json:"emotion"`
}

type AIChatResponse struct {
	SessionID uuid.UUID `json:"session_id"`
	Reply     string    `json:"reply"`
}

type TranscribeResponse struct {
	Text string `json:"text"`
}

type SpeakRequest struct {
	Text    string `json:"text" binding:"required"`
	VoiceID string `json:"voice_id"`
}

type EmotionScore struct {
	Emotion string  `json:"emotion"`
	Score   float64 `json:"score"`
}

type AnalyzeEmotionResponse struct {
	Emotions []EmotionScore `json:"emotions"`
}

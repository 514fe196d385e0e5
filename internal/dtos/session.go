package dtos

import (
	"time"

	"github.com/google/uuid"
)

type BookSessionRequest struct {
	MentorID  string    `json:"mentor_id" binding:"required,uuid"`
	StartTime time.Time `json:"start_time" binding:"required"`
	Topic     string    `json:"topic" binding:"required"`
}

type SessionResponse struct {
	ID            uuid.UUID  `json:"id"`
	MentorID      uuid.UUID  `json:"mentor_id"`
	MenteeID      uuid.UUID  `json:"mentee_id"`
	StartTime     time.Time  `json:"start_time"`
	EndTime       *time.Time `json:"end_time,omitempty"`
	Status        string     `json:"status"`
	Topic         string     `json:"topic"`
	Notes         *string    `json:"notes,omitempty"`
	TranscriptURL *string    `json:"transcript_url,omitempty"`
	RecordingURL  *string    `json:"recording_url,omitempty"`
}

type RateSessionRequest struct {
	Rating int     `json:"rating" binding:"required,min=1,max=5"`
	Review *string `json:"review"`
}

type AttachTranscriptRequest struct {
	TranscriptURL *string `json:"transcript_url"`
	RecordingURL  *string `json:"recording_url"`
}

type ChatMessageResponse struct {
	ID        uuid.UUID `json:"id"`
	SessionID uuid.UUID `json:"session_id"`
	SenderID  uuid.UUID `json:"sender_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

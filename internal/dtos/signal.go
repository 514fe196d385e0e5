package dtos

import (
	"encoding/json"

	"github.com/mentorlink/mentorlink/internal/signaling"
)

// PostSignalRequest is the pull-variant publish call. The sender identity
// comes from the authenticated context, never from the body.
type PostSignalRequest struct {
	SessionID string          `json:"sessionId" binding:"required,uuid"`
	Type      string          `json:"type" binding:"required"`
	Message   json.RawMessage `json:"message"`
}

type PostSignalResponse struct {
	Success bool `json:"success"`
}

// PollSignalResponse carries every buffered envelope newer than the
// caller's cursor, plus the server timestamp to use as the next cursor.
type PollSignalResponse struct {
	Messages  []signaling.Envelope `json:"messages"`
	Timestamp int64                `json:"timestamp"`
}

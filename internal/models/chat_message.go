package models

import (
	"time"

	"github.com/google/uuid"
)

// ChatMessage is a persisted in-call chat line. Chat is the only
// signaling traffic that outlives a session.
type ChatMessage struct {
	ID        uuid.UUID `db:"id"`
	SessionID uuid.UUID `db:"session_id"`
	SenderID  uuid.UUID `db:"sender_id"`
	Content   string    `db:"content"`
	CreatedAt time.Time `db:"created_at"`
}

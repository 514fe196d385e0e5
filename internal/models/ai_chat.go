package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	AIChatRoleUser      = "user"
	AIChatRoleAssistant = "assistant"
)

type AIChatSession struct {
	ID        uuid.UUID `db:"id"`
	UserID    uuid.UUID `db:"user_id"`
	Topic     string    `db:"topic"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

type AIChatMessage struct {
	ID        uuid.UUID `db:"id"`
	SessionID uuid.UUID `db:"session_id"`
	Role      string    `db:"role"` // "user" or "assistant"
	Content   string    `db:"content"`
	CreatedAt time.Time `db:"created_at"`
}

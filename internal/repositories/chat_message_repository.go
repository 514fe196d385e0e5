package repositories

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/mentorlink/mentorlink/internal/models"
)

type ChatMessageRepository struct {
	db *sql.DB
}

func NewChatMessageRepository(db *sql.DB) *ChatMessageRepository {
	return &ChatMessageRepository{db: db}
}

// Create persists one in-call chat line
func (r *ChatMessageRepository) Create(ctx context.Context, msg *models.ChatMessage) error {
	const query = `
	INSERT INTO chat_messages (id, session_id, sender_id, content, created_at)
	VALUES ($1, $2, $3, $4, NOW())
	RETURNING created_at
	`

	return r.db.QueryRowContext(
		ctx,
		query,
		msg.ID,
		msg.SessionID,
		msg.SenderID,
		msg.Content,
	).Scan(&msg.CreatedAt)
}

// ListBySession returns the chat log for a session in send order
func (r *ChatMessageRepository) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]models.ChatMessage, error) {
	const query = `
	SELECT id, session_id, sender_id, content, created_at
	FROM chat_messages
	WHERE session_id = $1
	ORDER BY created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []models.ChatMessage
	for rows.Next() {
		var m models.ChatMessage
		if err := rows.Scan(&m.ID, &m.SessionID, &m.SenderID, &m.Content, &m.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

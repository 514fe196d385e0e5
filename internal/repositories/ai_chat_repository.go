package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/mentorlink/mentorlink/internal/models"
)

var ErrAIChatSessionNotFound = errors.New("ai chat session not found")

type AIChatRepository struct {
	db *sql.DB
}

func NewAIChatRepository(db *sql.DB) *AIChatRepository {
	return &AIChatRepository{db: db}
}

// CreateSession starts a new AI mentor conversation
func (r *AIChatRepository) CreateSession(ctx context.Context, session *models.AIChatSession) error {
	const query = `
	INSERT INTO ai_chat_sessions (user_id, topic, created_at, updated_at)
	VALUES ($1, $2, NOW(), NOW())
	RETURNING id, created_at, updated_at
	`

	return r.db.QueryRowContext(ctx, query, session.UserID, session.Topic).
		Scan(&session.ID, &session.CreatedAt, &session.UpdatedAt)
}

// GetSession loads a conversation owned by the user
func (r *AIChatRepository) GetSession(ctx context.Context, id, userID uuid.UUID) (*models.AIChatSession, error) {
	const query = `
	SELECT id, user_id, topic, created_at, updated_at
	FROM ai_chat_sessions
	WHERE id = $1 AND user_id = $2
	LIMIT 1
	`

	var session models.AIChatSession
	err := r.db.QueryRowContext(ctx, query, id, userID).Scan(
		&session.ID,
		&session.UserID,
		&session.Topic,
		&session.CreatedAt,
		&session.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrAIChatSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// AppendMessage adds one turn to a conversation
func (r *AIChatRepository) AppendMessage(ctx context.Context, msg *models.AIChatMessage) error {
	const query = `
	INSERT INTO ai_chat_messages (session_id, role, content, created_at)
	VALUES ($1, $2, $3, NOW())
	RETURNING id, created_at
	`

	if err := r.db.QueryRowContext(ctx, query, msg.SessionID, msg.Role, msg.Content).
		Scan(&msg.ID, &msg.CreatedAt); err != nil {
		return err
	}

	const touch = `UPDATE ai_chat_sessions SET updated_at = NOW() WHERE id = $1`
	_, err := r.db.ExecContext(ctx, touch, msg.SessionID)
	return err
}

// History returns a conversation oldest first
func (r *AIChatRepository) History(ctx context.Context, sessionID uuid.UUID) ([]models.AIChatMessage, error) {
	const query = `
	SELECT id, session_id, role, content, created_at
	FROM ai_chat_messages
	WHERE session_id = $1
	ORDER BY created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []models.AIChatMessage
	for rows.Next() {
		var m models.AIChatMessage
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

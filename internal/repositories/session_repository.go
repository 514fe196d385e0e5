package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/mentorlink/mentorlink/internal/models"
)

var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrSessionImmutable = errors.New("session is completed and can no longer change")
)

type SessionRepository struct {
	db *sql.DB
}

func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create a new mentorship session in scheduled state
func (r *SessionRepository) Create(ctx context.Context, session *models.Session) error {
	const query = `
	INSERT INTO mentorship_sessions (
		id,
		mentor_id,
		mentee_id,
		start_time,
		status,
		topic,
		created_at
	)
	VALUES ($1, $2, $3, $4, $5, $6, NOW())
	RETURNING created_at
	`

	return r.db.QueryRowContext(
		ctx,
		query,
		session.ID,
		session.MentorID,
		session.MenteeID,
		session.StartTime,
		session.Status,
		session.Topic,
	).Scan(&session.CreatedAt)
}

// Get session by ID
func (r *SessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	const query = `
	SELECT
		id,
		mentor_id,
		mentee_id,
		start_time,
		end_time,
		status,
		topic,
		notes,
		transcript_url,
		recording_url,
		created_at
	FROM mentorship_sessions
	WHERE id = $1
	LIMIT 1
	`

	var session models.Session

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&session.ID,
		&session.MentorID,
		&session.MenteeID,
		&session.StartTime,
		&session.EndTime,
		&session.Status,
		&session.Topic,
		&session.Notes,
		&session.TranscriptURL,
		&session.RecordingURL,
		&session.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}

	return &session, nil
}

// ListByParticipant returns every session the user takes part in, newest first
func (r *SessionRepository) ListByParticipant(ctx context.Context, userID uuid.UUID) ([]models.Session, error) {
	const query = `
	SELECT
		id,
		mentor_id,
		mentee_id,
		start_time,
		end_time,
		status,
		topic,
		notes,
		transcript_url,
		recording_url,
		created_at
	FROM mentorship_sessions
	WHERE mentor_id = $1 OR mentee_id = $1
	ORDER BY start_time DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []models.Session
	for rows.Next() {
		var s models.Session
		if err := rows.Scan(
			&s.ID,
			&s.MentorID,
			&s.MenteeID,
			&s.StartTime,
			&s.EndTime,
			&s.Status,
			&s.Topic,
			&s.Notes,
			&s.TranscriptURL,
			&s.RecordingURL,
			&s.CreatedAt,
		); err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// MarkInProgress flips a scheduled session to in_progress when the first
// peer connects. A no-op for sessions already in progress.
func (r *SessionRepository) MarkInProgress(ctx context.Context, id uuid.UUID) error {
	const query = `
	UPDATE mentorship_sessions
	SET status = $1
	WHERE id = $2 AND status = $3
	`

	_, err := r.db.ExecContext(ctx, query, models.SessionStatusInProgress, id, models.SessionStatusScheduled)
	return err
}

// Complete ends a session with an end timestamp. Completed sessions are
// immutable, so the guard refuses to touch them again.
func (r *SessionRepository) Complete(ctx context.Context, id uuid.UUID, endTime time.Time) error {
	const query = `
	UPDATE mentorship_sessions
	SET status = $1, end_time = $2
	WHERE id = $3 AND status IN ($4, $5)
	`

	res, err := r.db.ExecContext(ctx, query,
		models.SessionStatusCompleted, endTime, id,
		models.SessionStatusScheduled, models.SessionStatusInProgress,
	)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrSessionImmutable
	}
	return nil
}

// Cancel a session that has not started
func (r *SessionRepository) Cancel(ctx context.Context, id uuid.UUID) error {
	const query = `
	UPDATE mentorship_sessions
	SET status = $1
	WHERE id = $2 AND status = $3
	`

	res, err := r.db.ExecContext(ctx, query, models.SessionStatusCancelled, id, models.SessionStatusScheduled)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrSessionImmutable
	}
	return nil
}

// AttachArtifacts records post-hoc transcript and recording references.
// This is the one mutation allowed on a completed session.
func (r *SessionRepository) AttachArtifacts(ctx context.Context, id uuid.UUID, transcriptURL, recordingURL *string) error {
	const query = `
	UPDATE mentorship_sessions
	SET
		transcript_url = COALESCE($1, transcript_url),
		recording_url = COALESCE($2, recording_url)
	WHERE id = $3
	`

	res, err := r.db.ExecContext(ctx, query, transcriptURL, recordingURL, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrSessionNotFound
	}
	return nil
}

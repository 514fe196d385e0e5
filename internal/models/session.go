package models

import (
	"time"

	"github.com/google/uuid"
)

type SessionStatus string

const (
	SessionStatusScheduled  SessionStatus = "scheduled"
	SessionStatusInProgress SessionStatus = "in_progress"
	SessionStatusCompleted  SessionStatus = "completed"
	SessionStatusCancelled  SessionStatus = "cancelled"
)

// Session is a booked mentorship session between a mentor and a mentee.
// Once completed it is immutable except for attaching post-hoc transcript
// and recording references.
type Session struct {
	ID       uuid.UUID `db:"id"`
	MentorID uuid.UUID `db:"mentor_id"`
	MenteeID uuid.UUID `db:"mentee_id"`

	StartTime time.Time  `db:"start_time"`
	EndTime   *time.Time `db:"end_time"`

	Status SessionStatus `db:"status"`
	Topic  string        `db:"topic"`
	Notes  *string       `db:"notes"`

	TranscriptURL *string `db:"transcript_url"`
	RecordingURL  *string `db:"recording_url"`

	CreatedAt time.Time `db:"created_at"`
}

// ParticipantRole reports which side of the session a user is on,
// or false when the user is not a participant at all.
func (s *Session) ParticipantRole(userID uuid.UUID) (string, bool) {
	switch userID {
	case s.MentorID:
		return RoleMentor, true
	case s.MenteeID:
		return RoleMentee, true
	}
	return "", false
}

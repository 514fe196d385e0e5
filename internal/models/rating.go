package models

import (
	"time"

	"github.com/google/uuid"
)

type Rating struct {
	ID        uuid.UUID `db:"id"`
	MentorID  uuid.UUID `db:"mentor_id"`
	MenteeID  uuid.UUID `db:"mentee_id"`
	SessionID uuid.UUID `db:"session_id"`
	Rating    int       `db:"rating"` // 1..5
	Review    *string   `db:"review"`
	CreatedAt time.Time `db:"created_at"`
}

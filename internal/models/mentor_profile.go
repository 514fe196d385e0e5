package models

import (
	"time"

	"github.com/google/uuid"
)

type MentorProfile struct {
	ID          uuid.UUID `db:"id"`
	UserID      uuid.UUID `db:"user_id"`
	Expertise   []string  `db:"expertise"`
	HourlyRate  *float64  `db:"hourly_rate"`
	IsAvailable bool      `db:"is_available"`
	CreatedAt   time.Time `db:"created_at"`
}

// MentorListing joins a mentor's user row with their profile for the
// marketplace browse view.
type MentorListing struct {
	UserID      uuid.UUID
	FullName    string
	AvatarURL   *string
	Bio         *string
	Expertise   []string
	HourlyRate  *float64
	IsAvailable bool
}

package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleMentor = "mentor"
	RoleMentee = "mentee"
)

type User struct {
	ID           uuid.UUID `db:"id"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	FullName     string    `db:"full_name"`
	UserType     string    `db:"user_type"` // "mentor" or "mentee"
	AvatarURL    *string   `db:"avatar_url"`
	Bio          *string   `db:"bio"`
	CreatedAt    time.Time `db:"created_at"`
}

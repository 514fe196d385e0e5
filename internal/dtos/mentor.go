package dtos

import "github.com/google/uuid"

type CreateMentorProfileRequest struct {
	Expertise   []string `json:"expertise" binding:"required,min=1"`
	HourlyRate  *float64 `json:"hourly_rate"`
	IsAvailable *bool    `json:"is_available"`
}

type MentorResponse struct {
	UserID      uuid.UUID `json:"user_id"`
	FullName    string    `json:"full_name"`
	AvatarURL   *string   `json:"avatar_url,omitempty"`
	Bio         *string   `json:"bio,omitempty"`
	Expertise   []string  `json:"expertise"`
	HourlyRate  *float64  `json:"hourly_rate,omitempty"`
	IsAvailable bool      `json:"is_available"`
}

package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mentorlink/mentorlink/internal/dtos"
	"github.com/mentorlink/mentorlink/internal/middlewares"
	"github.com/mentorlink/mentorlink/internal/models"
)

// MentorDirectory is the slice of the mentor repository the handler needs.
type MentorDirectory interface {
	Create(ctx context.Context, profile *models.MentorProfile) error
	FindByUserID(ctx context.Context, userID uuid.UUID) (*models.MentorProfile, error)
	List(ctx context.Context, onlyAvailable bool) ([]models.MentorListing, error)
	UpdateAvailability(ctx context.Context, userID uuid.UUID, available bool) error
}

type MentorHandler struct {
	mentors MentorDirectory
}

func NewMentorHandler(mentors MentorDirectory) *MentorHandler {
	return &MentorHandler{mentors: mentors}
}

// List returns mentors for the marketplace browse view.
func (h *MentorHandler) List(c *gin.Context) {
	onlyAvailable := c.Query("available") == "true"

	listings, err := h.mentors.List(c.Request.Context(), onlyAvailable)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list mentors"})
		return
	}

	out := make([]dtos.MentorResponse, 0, len(listings))
	for _, l := range listings {
		out = append(out, dtos.MentorResponse{
			UserID:      l.UserID,
			FullName:    l.FullName,
			AvatarURL:   l.AvatarURL,
			Bio:         l.Bio,
			Expertise:   l.Expertise,
			HourlyRate:  l.HourlyRate,
			IsAvailable: l.IsAvailable,
		})
	}
	c.JSON(http.StatusOK, gin.H{"mentors": out})
}

// CreateProfile fills in the caller's mentor profile.
func (h *MentorHandler) CreateProfile(c *gin.Context) {
	userID, err := middlewares.UserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	var req dtos.CreateMentorProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	profile := &models.MentorProfile{
		UserID:      userID,
		Expertise:   req.Expertise,
		HourlyRate:  req.HourlyRate,
		IsAvailable: true,
	}
	if req.IsAvailable != nil {
		profile.IsAvailable = *req.IsAvailable
	}

	if err := h.mentors.Create(c.Request.Context(), profile); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create mentor profile"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": profile.ID})
}

// SetAvailability toggles whether the caller accepts new bookings.
func (h *MentorHandler) SetAvailability(c *gin.Context) {
	userID, err := middlewares.UserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	var req struct {
		IsAvailable bool `json:"is_available"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.mentors.UpdateAvailability(c.Request.Context(), userID, req.IsAvailable); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update availability"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

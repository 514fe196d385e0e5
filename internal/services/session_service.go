package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/mentorlink/mentorlink/internal/models"
)

var (
	ErrNotParticipant     = errors.New("user is not a participant of this session")
	ErrMentorUnavailable  = errors.New("mentor is not available for booking")
	ErrSessionNotRatable  = errors.New("only completed sessions can be rated")
	ErrBookingInPast      = errors.New("session start time must be in the future")
	ErrSessionNotJoinable = errors.New("session is no longer joinable")
)

// SessionStore is the slice of the session repository the service needs.
type SessionStore interface {
	Create(ctx context.Context, session *models.Session) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Session, error)
	ListByParticipant(ctx context.Context, userID uuid.UUID) ([]models.Session, error)
	MarkInProgress(ctx context.Context, id uuid.UUID) error
	Complete(ctx context.Context, id uuid.UUID, endTime time.Time) error
	Cancel(ctx context.Context, id uuid.UUID) error
	AttachArtifacts(ctx context.Context, id uuid.UUID, transcriptURL, recordingURL *string) error
}

type MentorStore interface {
	FindByUserID(ctx context.Context, userID uuid.UUID) (*models.MentorProfile, error)
}

type RatingStore interface {
	Create(ctx context.Context, rating *models.Rating) error
}

type ChatLog interface {
	Create(ctx context.Context, msg *models.ChatMessage) error
	ListBySession(ctx context.Context, sessionID uuid.UUID) ([]models.ChatMessage, error)
}

// SessionService owns the session lifecycle: booking, the transition to
// in_progress when the first peer connects, completion on hang-up, and
// post-hoc artifact attachment.
type SessionService struct {
	sessions SessionStore
	mentors  MentorStore
	ratings  RatingStore
	chat     ChatLog
}

func NewSessionService(sessions SessionStore, mentors MentorStore, ratings RatingStore, chat ChatLog) *SessionService {
	return &SessionService{
		sessions: sessions,
		mentors:  mentors,
		ratings:  ratings,
		chat:     chat,
	}
}

// Book creates a scheduled session between mentee and mentor.
func (s *SessionService) Book(ctx context.Context, menteeID, mentorID uuid.UUID, startTime time.Time, topic string) (*models.Session, error) {
	if !startTime.After(time.Now()) {
		return nil, ErrBookingInPast
	}

	profile, err := s.mentors.FindByUserID(ctx, mentorID)
	if err != nil {
		return nil, ErrMentorUnavailable
	}
	if !profile.IsAvailable {
		return nil, ErrMentorUnavailable
	}

	session := &models.Session{
		ID:        uuid.New(),
		MentorID:  mentorID,
		MenteeID:  menteeID,
		StartTime: startTime,
		Status:    models.SessionStatusScheduled,
		Topic:     topic,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// Get loads a session, restricted to its participants.
func (s *SessionService) Get(ctx context.Context, sessionID, callerID uuid.UUID) (*models.Session, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if _, ok := session.ParticipantRole(callerID); !ok {
		return nil, ErrNotParticipant
	}
	return session, nil
}

// ListForUser returns every session the user takes part in.
func (s *SessionService) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Session, error) {
	return s.sessions.ListByParticipant(ctx, userID)
}

// Authorize checks that the user may join the session's call and returns
// their role. Completed and cancelled sessions cannot be joined.
func (s *SessionService) Authorize(ctx context.Context, sessionID, userID uuid.UUID) (string, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return "", err
	}
	role, ok := session.ParticipantRole(userID)
	if !ok {
		return "", ErrNotParticipant
	}
	if session.Status == models.SessionStatusCompleted || session.Status == models.SessionStatusCancelled {
		return "", ErrSessionNotJoinable
	}
	return role, nil
}

// HandleParticipantConnected moves a scheduled session to in_progress.
// Idempotent for the second peer and for reconnects.
func (s *SessionService) HandleParticipantConnected(ctx context.Context, sessionID uuid.UUID) error {
	return s.sessions.MarkInProgress(ctx, sessionID)
}

// End completes the session with an end timestamp. Called on explicit
// hang-up by either participant.
func (s *SessionService) End(ctx context.Context, sessionID, callerID uuid.UUID) error {
	if _, err := s.Get(ctx, sessionID, callerID); err != nil {
		return err
	}
	return s.sessions.Complete(ctx, sessionID, time.Now())
}

// Cancel aborts a session that has not started.
func (s *SessionService) Cancel(ctx context.Context, sessionID, callerID uuid.UUID) error {
	if _, err := s.Get(ctx, sessionID, callerID); err != nil {
		return err
	}
	return s.sessions.Cancel(ctx, sessionID)
}

// Rate lets the mentee score a completed session.
func (s *SessionService) Rate(ctx context.Context, sessionID, callerID uuid.UUID, rating int, review *string) (*models.Rating, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.MenteeID != callerID {
		return nil, ErrNotParticipant
	}
	if session.Status != models.SessionStatusCompleted {
		return nil, ErrSessionNotRatable
	}

	r := &models.Rating{
		MentorID:  session.MentorID,
		MenteeID:  session.MenteeID,
		SessionID: session.ID,
		Rating:    rating,
		Review:    review,
	}
	if err := s.ratings.Create(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// AttachArtifacts records transcript/recording references. Allowed on
// completed sessions; this is their one permitted mutation.
func (s *SessionService) AttachArtifacts(ctx context.Context, sessionID, callerID uuid.UUID, transcriptURL, recordingURL *string) error {
	if _, err := s.Get(ctx, sessionID, callerID); err != nil {
		return err
	}
	return s.sessions.AttachArtifacts(ctx, sessionID, transcriptURL, recordingURL)
}

// ChatHistory returns the persisted in-call chat log of a session.
func (s *SessionService) ChatHistory(ctx context.Context, sessionID, callerID uuid.UUID) ([]models.ChatMessage, error) {
	if _, err := s.Get(ctx, sessionID, callerID); err != nil {
		return nil, err
	}
	return s.chat.ListBySession(ctx, sessionID)
}

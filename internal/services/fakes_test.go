package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mentorlink/mentorlink/internal/models"
	"github.com/mentorlink/mentorlink/internal/repositories"
)

// fakeSessionStore is an in-memory SessionStore with the repository's
// status-guard semantics.
type fakeSessionStore struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*models.Session
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: make(map[uuid.UUID]*models.Session)}
}

func (f *fakeSessionStore) put(s *models.Session) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *s
	f.sessions[s.ID] = &cp
}

func (f *fakeSessionStore) Create(_ context.Context, s *models.Session) error {
	f.put(s)
	return nil
}

func (f *fakeSessionStore) GetByID(_ context.Context, id uuid.UUID) (*models.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok {
		return nil, repositories.ErrSessionNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *fakeSessionStore) ListByParticipant(_ context.Context, userID uuid.UUID) ([]models.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Session
	for _, s := range f.sessions {
		if s.MentorID == userID || s.MenteeID == userID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (f *fakeSessionStore) MarkInProgress(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.sessions[id]; ok && s.Status == models.SessionStatusScheduled {
		s.Status = models.SessionStatusInProgress
	}
	return nil
}

func (f *fakeSessionStore) Complete(_ context.Context, id uuid.UUID, endTime time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok {
		return repositories.ErrSessionNotFound
	}
	if s.Status != models.SessionStatusScheduled && s.Status != models.SessionStatusInProgress {
		return repositories.ErrSessionImmutable
	}
	s.Status = models.SessionStatusCompleted
	s.EndTime = &endTime
	return nil
}

func (f *fakeSessionStore) Cancel(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok {
		return repositories.ErrSessionNotFound
	}
	if s.Status != models.SessionStatusScheduled {
		return repositories.ErrSessionImmutable
	}
	s.Status = models.SessionStatusCancelled
	return nil
}

func (f *fakeSessionStore) AttachArtifacts(_ context.Context, id uuid.UUID, transcriptURL, recordingURL *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok {
		return repositories.ErrSessionNotFound
	}
	if transcriptURL != nil {
		s.TranscriptURL = transcriptURL
	}
	if recordingURL != nil {
		s.RecordingURL = recordingURL
	}
	return nil
}

type fakeMentorStore struct {
	profiles map[uuid.UUID]*models.MentorProfile
}

func newFakeMentorStore() *fakeMentorStore {
	return &fakeMentorStore{profiles: make(map[uuid.UUID]*models.MentorProfile)}
}

func (f *fakeMentorStore) FindByUserID(_ context.Context, userID uuid.UUID) (*models.MentorProfile, error) {
	p, ok := f.profiles[userID]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	return p, nil
}

type fakeRatingStore struct {
	ratings []models.Rating
}

func (f *fakeRatingStore) Create(_ context.Context, r *models.Rating) error {
	f.ratings = append(f.ratings, *r)
	return nil
}

type fakeChatLog struct {
	mu       sync.Mutex
	messages []models.ChatMessage
}

func (f *fakeChatLog) Create(_ context.Context, msg *models.ChatMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, *msg)
	return nil
}

func (f *fakeChatLog) ListBySession(_ context.Context, sessionID uuid.UUID) ([]models.ChatMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.ChatMessage
	for _, m := range f.messages {
		if m.SessionID == sessionID {
			out = append(out, m)
		}
	}
	return out, nil
}

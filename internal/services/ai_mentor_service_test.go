package services

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mentorlink/mentorlink/internal/clients"
	"github.com/mentorlink/mentorlink/internal/models"
	"github.com/mentorlink/mentorlink/internal/repositories"
)

type fakeCompleter struct {
	lastTurns []clients.ChatTurn
	reply     string
}

func (f *fakeCompleter) Complete(_ context.Context, turns []clients.ChatTurn) (string, error) {
	f.lastTurns = turns
	return f.reply, nil
}

type fakeAIChatStore struct {
	sessions map[uuid.UUID]*models.AIChatSession
	messages map[uuid.UUID][]models.AIChatMessage
}

func newFakeAIChatStore() *fakeAIChatStore {
	return &fakeAIChatStore{
		sessions: make(map[uuid.UUID]*models.AIChatSession),
		messages: make(map[uuid.UUID][]models.AIChatMessage),
	}
}

func (f *fakeAIChatStore) CreateSession(_ context.Context, s *models.AIChatSession) error {
	s.ID = uuid.New()
	cp := *s
	f.sessions[s.ID] = &cp
	return nil
}

func (f *fakeAIChatStore) GetSession(_ context.Context, id, userID uuid.UUID) (*models.AIChatSession, error) {
	s, ok := f.sessions[id]
	if !ok || s.UserID != userID {
		return nil, repositories.ErrAIChatSessionNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *fakeAIChatStore) AppendMessage(_ context.Context, m *models.AIChatMessage) error {
	f.messages[m.SessionID] = append(f.messages[m.SessionID], *m)
	return nil
}

func (f *fakeAIChatStore) History(_ context.Context, sessionID uuid.UUID) ([]models.AIChatMessage, error) {
	return f.messages[sessionID], nil
}

func newAIMentorFixture(reply string) (*AIMentorService, *fakeCompleter, *fakeAIChatStore) {
	completer := &fakeCompleter{reply: reply}
	store := newFakeAIChatStore()
	svc := NewAIMentorService(completer, nil, nil, nil, store, zerolog.Nop())
	return svc, completer, store
}

func TestAIChatStartsSessionAndPersistsTurns(t *testing.T) {
	svc, completer, store := newAIMentorFixture("try table-driven tests")
	userID := uuid.New()

	sessionID, reply, err := svc.Chat(context.Background(), userID, nil, "how do I test in Go?", "")
	require.NoError(t, err)
	assert.Equal(t, "try table-driven tests", reply)
	require.NotEqual(t, uuid.Nil, sessionID)

	assert.Equal(t, "how do I test in Go?", store.sessions[sessionID].Topic)

	msgs := store.messages[sessionID]
	require.Len(t, msgs, 2)
	assert.Equal(t, models.AIChatRoleUser, msgs[0].Role)
	assert.Equal(t, models.AIChatRoleAssistant, msgs[1].Role)

	require.NotEmpty(t, completer.lastTurns)
	assert.Equal(t, "system", completer.lastTurns[0].Role)
}

func TestAIChatIncludesHistoryInPrompt(t *testing.T) {
	svc, completer, _ := newAIMentorFixture("channels, mostly")
	userID := uuid.New()

	sessionID, _, err := svc.Chat(context.Background(), userID, nil, "first question", "")
	require.NoError(t, err)

	_, _, err = svc.Chat(context.Background(), userID, &sessionID, "follow-up", "")
	require.NoError(t, err)

	// system + two persisted turns + the new message
	require.Len(t, completer.lastTurns, 4)
	assert.Equal(t, "first question", completer.lastTurns[1].Content)
	assert.Equal(t, "follow-up", completer.lastTurns[3].Content)
}

func TestAIChatFoldsEmotionIntoSystemPrompt(t *testing.T) {
	svc, completer, _ := newAIMentorFixture("take a break")

	_, _, err := svc.Chat(context.Background(), uuid.New(), nil, "this is hard", "frustrated")
	require.NoError(t, err)

	require.NotEmpty(t, completer.lastTurns)
	assert.Contains(t, completer.lastTurns[0].Content, "frustrated")
}

func TestAIChatRejectsForeignSession(t *testing.T) {
	svc, _, _ := newAIMentorFixture("nope")
	owner := uuid.New()

	sessionID, _, err := svc.Chat(context.Background(), owner, nil, "mine", "")
	require.NoError(t, err)

	_, _, err = svc.Chat(context.Background(), uuid.New(), &sessionID, "theirs", "")
	assert.ErrorIs(t, err, repositories.ErrAIChatSessionNotFound)
}

func TestAIChatTruncatesLongTopics(t *testing.T) {
	svc, _, store := newAIMentorFixture("ok")
	long := strings.Repeat("x", 200)

	sessionID, _, err := svc.Chat(context.Background(), uuid.New(), nil, long, "")
	require.NoError(t, err)
	assert.Len(t, store.sessions[sessionID].Topic, 80)
}

package services

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/mentorlink/mentorlink/internal/clients"
	"github.com/mentorlink/mentorlink/internal/models"
	"github.com/rs/zerolog"
)

// Narrow interfaces over the external AI services the mentor uses.
type (
	Completer interface {
		Complete(ctx context.Context, turns []clients.ChatTurn) (string, error)
	}
	Transcriber interface {
		Transcribe(ctx context.Context, audio io.Reader, filename string) (string, error)
	}
	Synthesizer interface {
		Synthesize(ctx context.Context, text, voiceID string) (io.ReadCloser, error)
	}
	EmotionAnalyzer interface {
		Analyze(ctx context.Context, image []byte) ([]clients.EmotionScore, error)
	}
)

type AIChatStore interface {
	CreateSession(ctx context.Context, session *models.AIChatSession) error
	GetSession(ctx context.Context, id, userID uuid.UUID) (*models.AIChatSession, error)
	AppendMessage(ctx context.Context, msg *models.AIChatMessage) error
	History(ctx context.Context, sessionID uuid.UUID) ([]models.AIChatMessage, error)
}

const aiMentorSystemPrompt = `You are an AI mentor with expertise in various fields.
Your goal is to provide helpful, supportive, and personalized guidance to users.

Guidelines:
1. Be empathetic and understanding
2. Provide clear, actionable advice
3. Break down complex concepts into simple terms
4. Encourage growth and learning
5. Ask clarifying questions when needed
6. Share relevant examples and analogies
7. Maintain a professional yet friendly tone`

// AIMentorService is the conversational mentor: it can see (facial
// emotion), hear (speech-to-text) and speak (text-to-speech), and keeps
// per-user chat history.
type AIMentorService struct {
	completer   Completer
	transcriber Transcriber
	synthesizer Synthesizer
	emotions    EmotionAnalyzer
	store       AIChatStore
	log         zerolog.Logger
}

func NewAIMentorService(
	completer Completer,
	transcriber Transcriber,
	synthesizer Synthesizer,
	emotions EmotionAnalyzer,
	store AIChatStore,
	log zerolog.Logger,
) *AIMentorService {
	return &AIMentorService{
		completer:   completer,
		transcriber: transcriber,
		synthesizer: synthesizer,
		emotions:    emotions,
		store:       store,
		log:         log.With().Str("component", "ai-mentor").Logger(),
	}
}

// Chat sends the user's message (with prior history as context) to the
// completion service and persists both turns. A detected emotion, when
// present, is folded into the system prompt.
func (s *AIMentorService) Chat(ctx context.Context, userID uuid.UUID, sessionID *uuid.UUID, message, emotion string) (uuid.UUID, string, error) {
	session, err := s.resolveSession(ctx, userID, sessionID, message)
	if err != nil {
		return uuid.Nil, "", err
	}

	history, err := s.store.History(ctx, session.ID)
	if err != nil {
		return uuid.Nil, "", err
	}

	system := aiMentorSystemPrompt
	if emotion != "" {
		system = fmt.Sprintf("%s\n\nThe user appears to be feeling %s. Consider this in your response.", system, emotion)
	}

	turns := make([]clients.ChatTurn, 0, len(history)+2)
	turns = append(turns, clients.ChatTurn{Role: "system", Content: system})
	for _, m := range history {
		turns = append(turns, clients.ChatTurn{Role: m.Role, Content: m.Content})
	}
	turns = append(turns, clients.ChatTurn{Role: models.AIChatRoleUser, Content: message})

	reply, err := s.completer.Complete(ctx, turns)
	if err != nil {
		return uuid.Nil, "", fmt.Errorf("ai mentor completion failed: %w", err)
	}

	for _, m := range []*models.AIChatMessage{
		{SessionID: session.ID, Role: models.AIChatRoleUser, Content: message},
		{SessionID: session.ID, Role: models.AIChatRoleAssistant, Content: reply},
	} {
		if err := s.store.AppendMessage(ctx, m); err != nil {
			s.log.Warn().Err(err).Str("session_id", session.ID.String()).
				Msg("failed to persist ai chat turn")
		}
	}

	return session.ID, reply, nil
}

// Transcribe converts recorded speech to text.
func (s *AIMentorService) Transcribe(ctx context.Context, audio io.Reader, filename string) (string, error) {
	return s.transcriber.Transcribe(ctx, audio, filename)
}

// Speak synthesizes a spoken reply. Caller closes the stream.
func (s *AIMentorService) Speak(ctx context.Context, text, voiceID string) (io.ReadCloser, error) {
	return s.synthesizer.Synthesize(ctx, text, voiceID)
}

// AnalyzeEmotion runs facial-emotion inference on a video still.
func (s *AIMentorService) AnalyzeEmotion(ctx context.Context, image []byte) ([]clients.EmotionScore, error) {
	return s.emotions.Analyze(ctx, image)
}

func (s *AIMentorService) resolveSession(ctx context.Context, userID uuid.UUID, sessionID *uuid.UUID, firstMessage string) (*models.AIChatSession, error) {
	if sessionID != nil {
		return s.store.GetSession(ctx, *sessionID, userID)
	}

	topic := firstMessage
	if len(topic) > 80 {
		topic = topic[:80]
	}
	session := &models.AIChatSession{UserID: userID, Topic: topic}
	if err := s.store.CreateSession(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

package services

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/mentorlink/mentorlink/internal/models"
	"github.com/mentorlink/mentorlink/internal/signaling"
	"github.com/rs/zerolog"
)

// SignalService bridges the transport handlers and the signaling
// registry: it enforces participant authorization, persists chat to the
// session's message log, and reconciles connect events with session
// lifecycle state.
type SignalService struct {
	registry *signaling.Registry
	sessions *SessionService
	chat     ChatLog
	log      zerolog.Logger
}

func NewSignalService(registry *signaling.Registry, sessions *SessionService, chat ChatLog, log zerolog.Logger) *SignalService {
	return &SignalService{
		registry: registry,
		sessions: sessions,
		chat:     chat,
		log:      log.With().Str("component", "signal-service").Logger(),
	}
}

// Join authorizes the user for the session, binds the transport and
// flips the session to in_progress on the first connect.
func (s *SignalService) Join(ctx context.Context, sessionID, userID uuid.UUID, t signaling.Transport) error {
	if _, err := s.sessions.Authorize(ctx, sessionID, userID); err != nil {
		return err
	}
	if err := s.registry.Register(sessionID.String(), userID.String(), t); err != nil {
		return err
	}
	if err := s.sessions.HandleParticipantConnected(ctx, sessionID); err != nil {
		// The call can proceed; lifecycle catches up on the next event.
		s.log.Warn().Err(err).Str("session_id", sessionID.String()).
			Msg("failed to mark session in progress")
	}
	return nil
}

// Leave drops the registration bound to t. A teardown for a transport
// that was already superseded by a reconnect does nothing. Session
// completion is a separate, explicit call so that transient disconnects
// do not end the session.
func (s *SignalService) Leave(sessionID, userID uuid.UUID, t signaling.Transport) {
	s.registry.UnregisterTransport(sessionID.String(), userID.String(), t)
}

// HandleEnvelope processes one inbound envelope from either transport.
// The sender identity must already be authenticated by the caller.
func (s *SignalService) HandleEnvelope(ctx context.Context, sessionID, senderID uuid.UUID, env signaling.Envelope) {
	env.SessionID = sessionID.String()
	env.SenderID = senderID.String()

	switch env.Type {
	case signaling.TypeHeartbeat:
		s.registry.Touch(env.SessionID, env.SenderID)

	case signaling.TypeChat:
		if !s.registry.IsRegistered(env.SessionID, env.SenderID) {
			s.log.Debug().Str("session_id", env.SessionID).Str("sender_id", env.SenderID).
				Msg("dropping chat from unregistered sender")
			return
		}
		s.persistChat(ctx, sessionID, senderID, env.Payload)
		s.registry.Relay(env.SessionID, env.SenderID, env)

	case signaling.TypeOffer, signaling.TypeAnswer, signaling.TypeICECandidate:
		s.registry.Relay(env.SessionID, env.SenderID, env)

	default:
		// user-joined / user-left are server-generated; anything else is
		// not part of the protocol.
		s.log.Debug().Str("type", string(env.Type)).Msg("ignoring unexpected envelope type")
	}
}

// Poll drains the participant's polling buffer. A participant polling
// for the first time is registered with a fresh buffer so subsequent
// relay deliveries reach it.
func (s *SignalService) Poll(ctx context.Context, sessionID, userID uuid.UUID, since int64) ([]signaling.Envelope, error) {
	sid, uid := sessionID.String(), userID.String()

	t, ok := s.registry.Transport(sid, uid)
	if !ok {
		if err := s.Join(ctx, sessionID, userID, signaling.NewPollBuffer(0, 0)); err != nil {
			return nil, err
		}
		t, _ = s.registry.Transport(sid, uid)
	}
	s.registry.Touch(sid, uid)

	buf, ok := t.(*signaling.PollBuffer)
	if !ok {
		// The participant is connected over WebSocket; polling has
		// nothing buffered for them.
		return nil, nil
	}
	return buf.After(since), nil
}

func (s *SignalService) persistChat(ctx context.Context, sessionID, senderID uuid.UUID, payload json.RawMessage) {
	var chat signaling.ChatPayload
	if err := json.Unmarshal(payload, &chat); err != nil || chat.Content == "" {
		s.log.Debug().Err(err).Msg("discarding malformed chat payload")
		return
	}

	msg := &models.ChatMessage{
		ID:        uuid.New(),
		SessionID: sessionID,
		SenderID:  senderID,
		Content:   chat.Content,
	}
	if err := s.chat.Create(ctx, msg); err != nil {
		// Chat persistence is best effort; delivery still happens.
		s.log.Warn().Err(err).Str("session_id", sessionID.String()).
			Msg("failed to persist chat message")
	}
}

package signaling

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Transport is a delivery channel to one registered participant. The
// WebSocket connection and the HTTP polling cursor both implement it.
type Transport interface {
	Send(env Envelope) error
	Close() error
}

// registration binds a (session, user) pair to an active transport.
type registration struct {
	userID    string
	transport Transport
	lastSeen  time.Time
}

// Registry tracks active participant registrations and relays envelopes
// between the two participants of a session. It holds no durable state;
// session records live in the session store.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]map[string]*registration

	heartbeatGrace time.Duration
	log            zerolog.Logger
}

// DefaultHeartbeatGrace is three times the expected client heartbeat
// interval of ~20s.
const DefaultHeartbeatGrace = 60 * time.Second

func NewRegistry(heartbeatGrace time.Duration, log zerolog.Logger) *Registry {
	if heartbeatGrace <= 0 {
		heartbeatGrace = DefaultHeartbeatGrace
	}
	return &Registry{
		sessions:       make(map[string]map[string]*registration),
		heartbeatGrace: heartbeatGrace,
		log:            log.With().Str("component", "signaling").Logger(),
	}
}

// Register binds a transport for a participant. A prior registration for
// the same (session, user) pair is superseded and its transport closed
// without error. A third distinct participant is rejected with
// ErrSessionFull. The remaining peer, if any, receives a user-joined
// notification.
func (r *Registry) Register(sessionID, userID string, t Transport) error {
	r.mu.Lock()
	participants, ok := r.sessions[sessionID]
	if !ok {
		participants = make(map[string]*registration, 2)
		r.sessions[sessionID] = participants
	}

	prior, replacing := participants[userID]
	if replacing {
		r.log.Debug().Str("session_id", sessionID).Str("user_id", userID).
			Msg("superseding duplicate registration")
		prior.transport.Close()
	} else if len(participants) >= 2 {
		r.mu.Unlock()
		r.log.Warn().Str("session_id", sessionID).Str("user_id", userID).
			Msg("rejecting third participant")
		return ErrSessionFull
	}

	participants[userID] = &registration{
		userID:    userID,
		transport: t,
		lastSeen:  time.Now(),
	}
	peers := r.peersLocked(sessionID, userID)
	r.mu.Unlock()

	// A reconnecting participant never left from the peer's point of
	// view, so only genuinely new participants are announced.
	if !replacing {
		joined := NewEnvelope(TypeUserJoined, sessionID, userID, MarshalPayload(PresencePayload{UserID: userID}))
		for _, peer := range peers {
			peer.transport.Send(joined)
		}
	}

	r.log.Info().Str("session_id", sessionID).Str("user_id", userID).Msg("participant registered")
	return nil
}

// Relay delivers an envelope to every registered participant of the
// session except the sender. Senders that are not themselves registered
// are dropped silently so that session membership is not leaked.
func (r *Registry) Relay(sessionID, senderID string, env Envelope) {
	r.mu.Lock()
	participants, ok := r.sessions[sessionID]
	if !ok {
		r.mu.Unlock()
		return
	}
	if _, ok := participants[senderID]; !ok {
		r.mu.Unlock()
		r.log.Debug().Str("session_id", sessionID).Str("sender_id", senderID).
			Msg("dropping envelope from unregistered sender")
		return
	}
	peers := r.peersLocked(sessionID, senderID)
	r.mu.Unlock()

	// Fire and forget: a peer whose transport errors will be reaped by
	// its own disconnect path or the heartbeat sweep.
	for _, peer := range peers {
		if err := peer.transport.Send(env); err != nil {
			r.log.Debug().Err(err).Str("session_id", sessionID).Str("user_id", peer.userID).
				Msg("relay delivery failed")
		}
	}
}

// Touch refreshes the heartbeat deadline for a participant.
func (r *Registry) Touch(sessionID, userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if reg, ok := r.sessions[sessionID][userID]; ok {
		reg.lastSeen = time.Now()
	}
}

// Unregister removes a participant, closes its transport and notifies the
// remaining peer with exactly one user-left envelope. It is idempotent.
func (r *Registry) Unregister(sessionID, userID string) {
	r.unregister(sessionID, userID, nil)
}

// UnregisterTransport removes the participant only while t is still its
// active transport. A teardown racing with a reconnect that already
// superseded t is a no-op, so the fresh registration survives.
func (r *Registry) UnregisterTransport(sessionID, userID string, t Transport) {
	r.unregister(sessionID, userID, t)
}

func (r *Registry) unregister(sessionID, userID string, only Transport) {
	r.mu.Lock()
	participants, ok := r.sessions[sessionID]
	if !ok {
		r.mu.Unlock()
		return
	}
	reg, ok := participants[userID]
	if !ok {
		r.mu.Unlock()
		return
	}
	if only != nil && reg.transport != only {
		r.mu.Unlock()
		return
	}
	delete(participants, userID)
	if len(participants) == 0 {
		delete(r.sessions, sessionID)
	}
	peers := r.peersLocked(sessionID, userID)
	r.mu.Unlock()

	reg.transport.Close()

	left := NewEnvelope(TypeUserLeft, sessionID, userID, MarshalPayload(PresencePayload{UserID: userID}))
	for _, peer := range peers {
		peer.transport.Send(left)
	}

	r.log.Info().Str("session_id", sessionID).Str("user_id", userID).Msg("participant unregistered")
}

// Transport returns the active transport for a participant, if any.
func (r *Registry) Transport(sessionID, userID string) (Transport, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	reg, ok := r.sessions[sessionID][userID]
	if !ok {
		return nil, false
	}
	return reg.transport, true
}

// IsRegistered reports whether the participant currently holds an active
// registration for the session.
func (r *Registry) IsRegistered(sessionID, userID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.sessions[sessionID][userID]
	return ok
}

// ParticipantCount returns the number of active registrations for a session.
func (r *Registry) ParticipantCount(sessionID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions[sessionID])
}

// RunSweeper unregisters participants whose last heartbeat is older than
// the grace period. It blocks until ctx is cancelled.
func (r *Registry) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.sweepIdle(time.Now())
		}
	}
}

// sweepIdle removes every registration idle past the heartbeat grace
// period and returns how many were reaped.
func (r *Registry) sweepIdle(now time.Time) int {
	type idle struct{ sessionID, userID string }

	r.mu.Lock()
	var expired []idle
	for sessionID, participants := range r.sessions {
		for userID, reg := range participants {
			if now.Sub(reg.lastSeen) > r.heartbeatGrace {
				expired = append(expired, idle{sessionID, userID})
			}
		}
	}
	r.mu.Unlock()

	for _, e := range expired {
		r.log.Info().Str("session_id", e.sessionID).Str("user_id", e.userID).
			Msg("heartbeat grace elapsed, reaping participant")
		r.Unregister(e.sessionID, e.userID)
	}
	return len(expired)
}

// peersLocked returns every registration of the session except userID.
// Callers must hold r.mu.
func (r *Registry) peersLocked(sessionID, userID string) []*registration {
	participants := r.sessions[sessionID]
	peers := make([]*registration, 0, 1)
	for id, reg := range participants {
		if id != userID {
			peers = append(peers, reg)
		}
	}
	return peers
}

package rtc

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog"

	"github.com/mentorlink/mentorlink/internal/signaling"
)

// State tracks where a call is in its lifecycle.
type State int

const (
	StateIdle State = iota
	StateConnecting
	StateConnected
	StateFailed
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateFailed:
		return "failed"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Signaler delivers envelopes to the remote peer through whichever
// transport the client is on.
type Signaler interface {
	Signal(ctx context.Context, env signaling.Envelope) error
}

// Negotiator drives a single two-party peer connection: it produces and
// consumes offer/answer/ice-candidate envelopes and owns the underlying
// pion PeerConnection.
//
// Offer glare is resolved by participant ID order: the lexicographically
// larger ID yields its own offer and accepts the remote one. A fresh
// remote offer on an established connection is treated as renegotiation
// and supersedes prior state.
type Negotiator struct {
	sessionID string
	selfID    string
	webrtcCfg webrtc.Configuration
	signaler  Signaler
	log       zerolog.Logger

	mu            sync.Mutex
	pc            *webrtc.PeerConnection
	state         State
	backoff       Backoff
	pendingRemote []webrtc.ICECandidateInit

	// OnStateChange, when set before StartCall, is invoked outside the
	// lock on every state transition.
	OnStateChange func(State)
}

func NewNegotiator(sessionID, selfID string, cfg webrtc.Configuration, signaler Signaler, log zerolog.Logger) *Negotiator {
	return &Negotiator{
		sessionID: sessionID,
		selfID:    selfID,
		webrtcCfg: cfg,
		signaler:  signaler,
		state:     StateIdle,
		log: log.With().
			Str("component", "negotiator").
			Str("session_id", sessionID).
			Logger(),
	}
}

// State returns the current call state.
func (n *Negotiator) State() State {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.state
}

// StartCall makes this side the initiator: it builds the peer connection,
// creates an offer and sends it through the signaler.
func (n *Negotiator) StartCall(ctx context.Context) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.state == StateClosed {
		return fmt.Errorf("rtc: call already closed")
	}
	if err := n.ensurePeerLocked(); err != nil {
		return err
	}
	return n.sendOfferLocked(ctx, webrtc.OfferOptions{})
}

// HandleEnvelope feeds a received signaling envelope into the state
// machine. Envelope types the negotiator does not own are ignored.
func (n *Negotiator) HandleEnvelope(ctx context.Context, env signaling.Envelope) error {
	switch env.Type {
	case signaling.TypeOffer:
		return n.handleOffer(ctx, env)
	case signaling.TypeAnswer:
		return n.handleAnswer(env)
	case signaling.TypeICECandidate:
		return n.handleCandidate(env)
	case signaling.TypeUserLeft:
		n.log.Info().Str("peer", env.SenderID).Msg("peer left")
		return nil
	default:
		return nil
	}
}

func (n *Negotiator) handleOffer(ctx context.Context, env signaling.Envelope) error {
	var sdp signaling.SessionDescriptionPayload
	if err := json.Unmarshal(env.Payload, &sdp); err != nil {
		return fmt.Errorf("rtc: malformed offer payload: %w", err)
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	if n.state == StateClosed {
		return nil
	}
	if err := n.ensurePeerLocked(); err != nil {
		return err
	}

	if n.pc.SignalingState() == webrtc.SignalingStateHaveLocalOffer {
		// Both sides offered at once. The larger ID yields; the smaller
		// keeps its offer and drops the remote one.
		if n.selfID < env.SenderID {
			n.log.Info().Str("peer", env.SenderID).Msg("offer glare, holding local offer")
			return nil
		}
		n.log.Info().Str("peer", env.SenderID).Msg("offer glare, yielding to remote offer")
		rollback := webrtc.SessionDescription{Type: webrtc.SDPTypeRollback}
		if err := n.pc.SetLocalDescription(rollback); err != nil {
			return fmt.Errorf("rtc: rollback: %w", err)
		}
	}

	remote := webrtc.SessionDescription{Type: webrtc.SDPTypeOffer, SDP: sdp.SDP}
	if err := n.pc.SetRemoteDescription(remote); err != nil {
		return fmt.Errorf("rtc: set remote offer: %w", err)
	}
	n.flushPendingCandidatesLocked()

	answer, err := n.pc.CreateAnswer(nil)
	if err != nil {
		return fmt.Errorf("rtc: create answer: %w", err)
	}
	if err := n.pc.SetLocalDescription(answer); err != nil {
		return fmt.Errorf("rtc: set local answer: %w", err)
	}
	n.setStateLocked(StateConnecting)

	payload := signaling.MarshalPayload(signaling.SessionDescriptionPayload{
		Type: "answer",
		SDP:  answer.SDP,
	})
	env = signaling.NewEnvelope(signaling.TypeAnswer, n.sessionID, n.selfID, payload)
	return n.signaler.Signal(ctx, env)
}

func (n *Negotiator) handleAnswer(env signaling.Envelope) error {
	var sdp signaling.SessionDescriptionPayload
	if err := json.Unmarshal(env.Payload, &sdp); err != nil {
		return fmt.Errorf("rtc: malformed answer payload: %w", err)
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	if n.pc == nil || n.state == StateClosed {
		return nil
	}
	if n.pc.SignalingState() != webrtc.SignalingStateHaveLocalOffer {
		// Stale answer from a superseded round.
		return nil
	}
	remote := webrtc.SessionDescription{Type: webrtc.SDPTypeAnswer, SDP: sdp.SDP}
	if err := n.pc.SetRemoteDescription(remote); err != nil {
		return fmt.Errorf("rtc: set remote answer: %w", err)
	}
	n.flushPendingCandidatesLocked()
	return nil
}

func (n *Negotiator) handleCandidate(env signaling.Envelope) error {
	var cand signaling.ICECandidatePayload
	if err := json.Unmarshal(env.Payload, &cand); err != nil {
		return fmt.Errorf("rtc: malformed candidate payload: %w", err)
	}

	init := webrtc.ICECandidateInit{
		Candidate:     cand.Candidate,
		SDPMid:        cand.SDPMid,
		SDPMLineIndex: cand.SDPMLineIndex,
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	if n.pc == nil || n.state == StateClosed {
		return nil
	}
	// Candidates can trickle in ahead of the description that anchors them.
	if n.pc.RemoteDescription() == nil {
		n.pendingRemote = append(n.pendingRemote, init)
		return nil
	}
	if err := n.pc.AddICECandidate(init); err != nil {
		return fmt.Errorf("rtc: add candidate: %w", err)
	}
	return nil
}

// HangUp tears the call down. It is idempotent; artifacts such as the
// session-completed transition are the caller's responsibility.
func (n *Negotiator) HangUp() error {
	n.mu.Lock()
	if n.state == StateClosed {
		n.mu.Unlock()
		return nil
	}
	n.setStateLocked(StateClosed)
	pc := n.pc
	n.pc = nil
	n.mu.Unlock()

	if pc != nil {
		return pc.Close()
	}
	return nil
}

// Reconnect waits out the backoff ladder and re-offers with an ICE
// restart. After the fifth failed attempt it returns
// ErrReconnectExhausted and the call is terminal.
func (n *Negotiator) Reconnect(ctx context.Context) error {
	n.mu.Lock()
	delay, err := n.backoff.Next()
	if err != nil {
		n.setStateLocked(StateFailed)
		n.mu.Unlock()
		return err
	}
	attempt := n.backoff.Attempt()
	n.mu.Unlock()

	n.log.Info().Int("attempt", attempt).Dur("delay", delay).Msg("reconnecting")
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(delay):
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	if n.state == StateClosed {
		return nil
	}
	if err := n.ensurePeerLocked(); err != nil {
		return err
	}
	return n.sendOfferLocked(ctx, webrtc.OfferOptions{ICERestart: true})
}

func (n *Negotiator) sendOfferLocked(ctx context.Context, opts webrtc.OfferOptions) error {
	offer, err := n.pc.CreateOffer(&opts)
	if err != nil {
		return fmt.Errorf("rtc: create offer: %w", err)
	}
	if err := n.pc.SetLocalDescription(offer); err != nil {
		return fmt.Errorf("rtc: set local offer: %w", err)
	}
	n.setStateLocked(StateConnecting)

	payload := signaling.MarshalPayload(signaling.SessionDescriptionPayload{
		Type: "offer",
		SDP:  offer.SDP,
	})
	env := signaling.NewEnvelope(signaling.TypeOffer, n.sessionID, n.selfID, payload)
	return n.signaler.Signal(ctx, env)
}

func (n *Negotiator) ensurePeerLocked() error {
	if n.pc != nil {
		return nil
	}
	pc, err := webrtc.NewPeerConnection(n.webrtcCfg)
	if err != nil {
		return fmt.Errorf("rtc: new peer connection: %w", err)
	}

	pc.OnICECandidate(func(c *webrtc.ICECandidate) {
		if c == nil {
			return
		}
		init := c.ToJSON()
		payload := signaling.MarshalPayload(signaling.ICECandidatePayload{
			Candidate:     init.Candidate,
			SDPMid:        init.SDPMid,
			SDPMLineIndex: init.SDPMLineIndex,
		})
		env := signaling.NewEnvelope(signaling.TypeICECandidate, n.sessionID, n.selfID, payload)
		if err := n.signaler.Signal(context.Background(), env); err != nil {
			n.log.Warn().Err(err).Msg("failed to trickle candidate")
		}
	})

	pc.OnConnectionStateChange(func(s webrtc.PeerConnectionState) {
		n.mu.Lock()
		defer n.mu.Unlock()
		switch s {
		case webrtc.PeerConnectionStateConnected:
			n.backoff.Reset()
			n.setStateLocked(StateConnected)
		case webrtc.PeerConnectionStateDisconnected, webrtc.PeerConnectionStateFailed:
			if n.state != StateClosed {
				n.setStateLocked(StateConnecting)
			}
		}
	})

	n.pc = pc
	return nil
}

func (n *Negotiator) flushPendingCandidatesLocked() {
	for _, init := range n.pendingRemote {
		if err := n.pc.AddICECandidate(init); err != nil {
			n.log.Warn().Err(err).Msg("failed to apply buffered candidate")
		}
	}
	n.pendingRemote = nil
}

func (n *Negotiator) setStateLocked(s State) {
	if n.state == s {
		return
	}
	n.state = s
	if n.OnStateChange != nil {
		cb := n.OnStateChange
		go cb(s)
	}
}

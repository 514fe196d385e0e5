package rtc

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mentorlink/mentorlink/internal/signaling"
)

type captureSignaler struct {
	mu   sync.Mutex
	sent []signaling.Envelope
}

func (c *captureSignaler) Signal(_ context.Context, env signaling.Envelope) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, env)
	return nil
}

func (c *captureSignaler) byType(t signaling.MessageType) []signaling.Envelope {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []signaling.Envelope
	for _, env := range c.sent {
		if env.Type == t {
			out = append(out, env)
		}
	}
	return out
}

func newTestNegotiator(t *testing.T, selfID string) (*Negotiator, *captureSignaler) {
	t.Helper()
	sig := &captureSignaler{}
	n := NewNegotiator("s1", selfID, webrtc.Configuration{}, sig, zerolog.Nop())
	t.Cleanup(func() { _ = n.HangUp() })
	return n, sig
}

// remoteOffer builds a real offer from a throwaway peer connection so the
// negotiator under test sees valid SDP.
func remoteOffer(t *testing.T) signaling.Envelope {
	t.Helper()
	pc, err := webrtc.NewPeerConnection(webrtc.Configuration{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = pc.Close() })

	_, err = pc.CreateDataChannel("probe", nil)
	require.NoError(t, err)

	offer, err := pc.CreateOffer(nil)
	require.NoError(t, err)
	require.NoError(t, pc.SetLocalDescription(offer))

	payload := signaling.MarshalPayload(signaling.SessionDescriptionPayload{Type: "offer", SDP: offer.SDP})
	return signaling.NewEnvelope(signaling.TypeOffer, "s1", "peer", payload)
}

func TestNegotiatorAnswersRemoteOffer(t *testing.T) {
	n, sig := newTestNegotiator(t, "alice")

	require.NoError(t, n.HandleEnvelope(context.Background(), remoteOffer(t)))

	answers := sig.byType(signaling.TypeAnswer)
	require.Len(t, answers, 1)
	assert.Equal(t, "alice", answers[0].SenderID)
	assert.Equal(t, "s1", answers[0].SessionID)

	var sdp signaling.SessionDescriptionPayload
	require.NoError(t, json.Unmarshal(answers[0].Payload, &sdp))
	assert.Equal(t, "answer", sdp.Type)
	assert.NotEmpty(t, sdp.SDP)

	assert.Equal(t, StateConnecting, n.State())
}

func TestNegotiatorStartCallSendsOffer(t *testing.T) {
	n, sig := newTestNegotiator(t, "alice")

	require.NoError(t, n.StartCall(context.Background()))

	offers := sig.byType(signaling.TypeOffer)
	require.Len(t, offers, 1)
	assert.Equal(t, "alice", offers[0].SenderID)
	assert.Equal(t, StateConnecting, n.State())
}

func TestNegotiatorGlareLargerIDYields(t *testing.T) {
	// "zed" > "peer", so zed abandons its own offer and answers.
	n, sig := newTestNegotiator(t, "zed")
	require.NoError(t, n.StartCall(context.Background()))

	require.NoError(t, n.HandleEnvelope(context.Background(), remoteOffer(t)))

	assert.Len(t, sig.byType(signaling.TypeAnswer), 1)
}

func TestNegotiatorGlareSmallerIDHolds(t *testing.T) {
	// "alice" < "peer", so alice keeps her offer and drops the remote one.
	n, sig := newTestNegotiator(t, "alice")
	require.NoError(t, n.StartCall(context.Background()))

	require.NoError(t, n.HandleEnvelope(context.Background(), remoteOffer(t)))

	assert.Empty(t, sig.byType(signaling.TypeAnswer))
	assert.Len(t, sig.byType(signaling.TypeOffer), 1)
}

func TestNegotiatorDuplicateOfferSupersedes(t *testing.T) {
	n, sig := newTestNegotiator(t, "alice")

	require.NoError(t, n.HandleEnvelope(context.Background(), remoteOffer(t)))
	require.NoError(t, n.HandleEnvelope(context.Background(), remoteOffer(t)))

	assert.Len(t, sig.byType(signaling.TypeAnswer), 2, "each offer round gets its own answer")
}

func TestNegotiatorIgnoresStaleAnswer(t *testing.T) {
	n, sig := newTestNegotiator(t, "alice")

	payload := signaling.MarshalPayload(signaling.SessionDescriptionPayload{Type: "answer", SDP: "v=0"})
	env := signaling.NewEnvelope(signaling.TypeAnswer, "s1", "peer", payload)

	require.NoError(t, n.HandleEnvelope(context.Background(), env))
	assert.Empty(t, sig.sent)
}

func TestNegotiatorBuffersEarlyCandidates(t *testing.T) {
	n, _ := newTestNegotiator(t, "alice")
	require.NoError(t, n.StartCall(context.Background()))

	mid := "0"
	var idx uint16
	payload := signaling.MarshalPayload(signaling.ICECandidatePayload{
		Candidate:     "candidate:1 1 udp 2130706431 127.0.0.1 50000 typ host",
		SDPMid:        &mid,
		SDPMLineIndex: &idx,
	})
	env := signaling.NewEnvelope(signaling.TypeICECandidate, "s1", "peer", payload)

	// No remote description yet; the candidate must be parked, not applied.
	require.NoError(t, n.HandleEnvelope(context.Background(), env))
}

func TestNegotiatorHangUpIsIdempotent(t *testing.T) {
	n, _ := newTestNegotiator(t, "alice")
	require.NoError(t, n.StartCall(context.Background()))

	require.NoError(t, n.HangUp())
	require.NoError(t, n.HangUp())
	assert.Equal(t, StateClosed, n.State())

	// Envelopes after hang-up are ignored without error.
	require.NoError(t, n.HandleEnvelope(context.Background(), remoteOffer(t)))
}

func TestNegotiatorReconnectExhaustionIsTerminal(t *testing.T) {
	n, _ := newTestNegotiator(t, "alice")
	n.backoff = Backoff{attempt: maxAttempts}

	err := n.Reconnect(context.Background())
	assert.ErrorIs(t, err, ErrReconnectExhausted)
	assert.Equal(t, StateFailed, n.State())
}

func TestNegotiatorIgnoresForeignEnvelopeTypes(t *testing.T) {
	n, sig := newTestNegotiator(t, "alice")

	chat := signaling.NewEnvelope(signaling.TypeChat, "s1", "peer", signaling.MarshalPayload(signaling.ChatPayload{Content: "hi"}))
	require.NoError(t, n.HandleEnvelope(context.Background(), chat))
	assert.Empty(t, sig.sent)
}

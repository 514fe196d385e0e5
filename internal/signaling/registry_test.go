package signaling

import (
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTransport struct {
	mu     sync.Mutex
	sent   []Envelope
	closed int
}

func (f *fakeTransport) Send(env Envelope) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, env)
	return nil
}

func (f *fakeTransport) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed++
	return nil
}

func (f *fakeTransport) envelopes() []Envelope {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Envelope, len(f.sent))
	copy(out, f.sent)
	return out
}

func (f *fakeTransport) countByType(t MessageType) int {
	n := 0
	for _, env := range f.envelopes() {
		if env.Type == t {
			n++
		}
	}
	return n
}

func newTestRegistry() *Registry {
	return NewRegistry(DefaultHeartbeatGrace, zerolog.Nop())
}

func TestRegistryRejectsThirdParticipant(t *testing.T) {
	r := newTestRegistry()

	require.NoError(t, r.Register("s1", "alice", &fakeTransport{}))
	require.NoError(t, r.Register("s1", "bob", &fakeTransport{}))

	err := r.Register("s1", "carol", &fakeTransport{})
	assert.ErrorIs(t, err, ErrSessionFull)
	assert.Equal(t, 2, r.ParticipantCount("s1"))
	assert.False(t, r.IsRegistered("s1", "carol"))
}

func TestRegistrySupersedesDuplicateRegistration(t *testing.T) {
	r := newTestRegistry()
	old := &fakeTransport{}
	replacement := &fakeTransport{}

	require.NoError(t, r.Register("s1", "alice", old))
	require.NoError(t, r.Register("s1", "alice", replacement))

	assert.Equal(t, 1, old.closed, "superseded transport must be closed")
	assert.Equal(t, 1, r.ParticipantCount("s1"))

	got, ok := r.Transport("s1", "alice")
	require.True(t, ok)
	assert.Same(t, replacement, got)
}

func TestStaleTeardownPreservesReconnectedRegistration(t *testing.T) {
	r := newTestRegistry()
	old := &fakeTransport{}
	fresh := &fakeTransport{}
	bob := &fakeTransport{}

	require.NoError(t, r.Register("s1", "alice", old))
	require.NoError(t, r.Register("s1", "bob", bob))
	require.NoError(t, r.Register("s1", "alice", fresh))

	// The superseded connection's teardown fires after the reconnect.
	r.UnregisterTransport("s1", "alice", old)

	assert.True(t, r.IsRegistered("s1", "alice"))
	got, ok := r.Transport("s1", "alice")
	require.True(t, ok)
	assert.Same(t, fresh, got)
	assert.Zero(t, fresh.closed)
	assert.Zero(t, bob.countByType(TypeUserLeft))

	// Teardown of the live transport still unregisters.
	r.UnregisterTransport("s1", "alice", fresh)
	assert.False(t, r.IsRegistered("s1", "alice"))
	assert.Equal(t, 1, fresh.closed)
	assert.Equal(t, 1, bob.countByType(TypeUserLeft))
}

func TestSupersedeDoesNotReannounceJoin(t *testing.T) {
	r := newTestRegistry()
	bob := &fakeTransport{}

	require.NoError(t, r.Register("s1", "bob", bob))
	require.NoError(t, r.Register("s1", "alice", &fakeTransport{}))
	require.Equal(t, 1, bob.countByType(TypeUserJoined))

	require.NoError(t, r.Register("s1", "alice", &fakeTransport{}))

	assert.Equal(t, 1, bob.countByType(TypeUserJoined), "alice never left from bob's point of view")
}

func TestRegistryNotifiesPeerOnJoin(t *testing.T) {
	r := newTestRegistry()
	alice := &fakeTransport{}
	bob := &fakeTransport{}

	require.NoError(t, r.Register("s1", "alice", alice))
	require.NoError(t, r.Register("s1", "bob", bob))

	require.Equal(t, 1, alice.countByType(TypeUserJoined))
	joined := alice.envelopes()[0]
	assert.Equal(t, "bob", joined.SenderID)

	// The joining side gets nothing about itself.
	assert.Zero(t, bob.countByType(TypeUserJoined))
}

func TestRelayNeverEchoesToSender(t *testing.T) {
	r := newTestRegistry()
	alice := &fakeTransport{}
	bob := &fakeTransport{}
	require.NoError(t, r.Register("s1", "alice", alice))
	require.NoError(t, r.Register("s1", "bob", bob))

	env := NewEnvelope(TypeOffer, "s1", "alice", MarshalPayload(SessionDescriptionPayload{Type: "offer", SDP: "v=0"}))
	r.Relay("s1", "alice", env)

	assert.Equal(t, 1, bob.countByType(TypeOffer))
	assert.Zero(t, alice.countByType(TypeOffer))
}

func TestRelayDropsUnregisteredSender(t *testing.T) {
	r := newTestRegistry()
	bob := &fakeTransport{}
	require.NoError(t, r.Register("s1", "bob", bob))

	env := NewEnvelope(TypeChat, "s1", "mallory", MarshalPayload(ChatPayload{Content: "hi"}))
	r.Relay("s1", "mallory", env)

	assert.Zero(t, bob.countByType(TypeChat))
}

func TestUnregisterSendsExactlyOneUserLeft(t *testing.T) {
	r := newTestRegistry()
	alice := &fakeTransport{}
	bob := &fakeTransport{}
	require.NoError(t, r.Register("s1", "alice", alice))
	require.NoError(t, r.Register("s1", "bob", bob))

	r.Unregister("s1", "alice")
	r.Unregister("s1", "alice")
	r.Unregister("s1", "alice")

	assert.Equal(t, 1, bob.countByType(TypeUserLeft))
	assert.Equal(t, 1, alice.closed)
	assert.False(t, r.IsRegistered("s1", "alice"))
	assert.Equal(t, 1, r.ParticipantCount("s1"))
}

func TestUnregisterLastParticipantDropsSession(t *testing.T) {
	r := newTestRegistry()
	require.NoError(t, r.Register("s1", "alice", &fakeTransport{}))

	r.Unregister("s1", "alice")

	assert.Zero(t, r.ParticipantCount("s1"))
	// A fresh pair can register afterwards.
	require.NoError(t, r.Register("s1", "carol", &fakeTransport{}))
	require.NoError(t, r.Register("s1", "dave", &fakeTransport{}))
}

func TestSweepReapsIdleParticipants(t *testing.T) {
	r := NewRegistry(60*time.Second, zerolog.Nop())
	alice := &fakeTransport{}
	bob := &fakeTransport{}
	require.NoError(t, r.Register("s1", "alice", alice))
	require.NoError(t, r.Register("s1", "bob", bob))

	assert.Zero(t, r.sweepIdle(time.Now()), "fresh registrations are not reaped")

	// Alice's last heartbeat falls outside the grace window; bob's does not.
	r.mu.Lock()
	r.sessions["s1"]["alice"].lastSeen = time.Now().Add(-61 * time.Second)
	r.mu.Unlock()
	r.Touch("s1", "bob")

	reaped := r.sweepIdle(time.Now())

	assert.Equal(t, 1, reaped)
	assert.False(t, r.IsRegistered("s1", "alice"))
	assert.True(t, r.IsRegistered("s1", "bob"))
	assert.Equal(t, 1, bob.countByType(TypeUserLeft))
}

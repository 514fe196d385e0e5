package signaling

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stampedEnvelope(ts int64, content string) Envelope {
	env := NewEnvelope(TypeChat, "s1", "alice", MarshalPayload(ChatPayload{Content: content}))
	env.Timestamp = ts
	return env
}

func TestPollBufferAfterFiltersAndOrders(t *testing.T) {
	b := NewPollBuffer(0, 0)
	now := time.Now().UnixMilli()
	for i := 0; i < 5; i++ {
		require.NoError(t, b.Send(stampedEnvelope(now+int64(i*100), fmt.Sprintf("m%d", i))))
	}

	got := b.After(now + 150)
	require.Len(t, got, 3)
	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, got[i].Timestamp, got[i-1].Timestamp)
	}
	assert.Equal(t, now+200, got[0].Timestamp)
}

func TestPollBufferAfterIsIdempotent(t *testing.T) {
	b := NewPollBuffer(0, 0)
	now := time.Now().UnixMilli()
	require.NoError(t, b.Send(stampedEnvelope(now, "a")))
	require.NoError(t, b.Send(stampedEnvelope(now+1, "b")))

	first := b.After(now - 1)
	second := b.After(now - 1)
	assert.Equal(t, first, second, "repeating a poll with the same cursor returns the same set")
}

func TestPollBufferStrictlyAfterCursor(t *testing.T) {
	b := NewPollBuffer(0, 0)
	now := time.Now().UnixMilli()
	require.NoError(t, b.Send(stampedEnvelope(now, "a")))

	assert.Empty(t, b.After(now), "entry at exactly the cursor is excluded")
	assert.Len(t, b.After(now-1), 1)
}

func TestPollBufferEvictsOldestWhenFull(t *testing.T) {
	b := NewPollBuffer(3, 0)
	now := time.Now().UnixMilli()
	for i := 0; i < 5; i++ {
		require.NoError(t, b.Send(stampedEnvelope(now+int64(i), fmt.Sprintf("m%d", i))))
	}

	assert.Equal(t, 3, b.Len())
	got := b.After(0)
	require.Len(t, got, 3)
	assert.Equal(t, now+2, got[0].Timestamp, "oldest entries are evicted first")
}

func TestPollBufferClampsBackwardsTimestamps(t *testing.T) {
	b := NewPollBuffer(0, 0)
	now := time.Now().UnixMilli()
	require.NoError(t, b.Send(stampedEnvelope(now+100, "a")))
	require.NoError(t, b.Send(stampedEnvelope(now, "b")))

	got := b.After(0)
	require.Len(t, got, 2)
	assert.Equal(t, got[0].Timestamp, got[1].Timestamp, "a clock step backwards must not break ordering")
}

func TestPollBufferExpiresOldEntries(t *testing.T) {
	b := NewPollBuffer(0, time.Minute)
	stale := time.Now().Add(-2 * time.Minute).UnixMilli()
	fresh := time.Now().UnixMilli()
	require.NoError(t, b.Send(stampedEnvelope(stale, "stale")))
	require.NoError(t, b.Send(stampedEnvelope(fresh, "fresh")))

	got := b.After(0)
	require.Len(t, got, 1)
	assert.Equal(t, fresh, got[0].Timestamp)
}

func TestPollBufferClosedRejectsSends(t *testing.T) {
	b := NewPollBuffer(0, 0)
	require.NoError(t, b.Close())
	assert.ErrorIs(t, b.Send(stampedEnvelope(1, "late")), ErrTransportClosed)
	assert.Empty(t, b.After(0))
}

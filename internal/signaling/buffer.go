package signaling

import (
	"sync"
	"time"
)

const (
	// DefaultBufferCapacity bounds the number of undelivered envelopes
	// held for a polling participant.
	DefaultBufferCapacity = 256

	// DefaultRetention bounds how long an undelivered envelope may sit
	// in a polling buffer before it is garbage-collected.
	DefaultRetention = 3 * time.Minute
)

// PollBuffer is the pull-variant transport: a bounded, timestamp-ordered
// buffer of undelivered envelopes for one polling participant. Relay
// deliveries append; the participant drains with "everything after T"
// queries, which are idempotent for a fixed T.
type PollBuffer struct {
	mu        sync.Mutex
	entries   []Envelope
	capacity  int
	retention time.Duration
	closed    bool
}

func NewPollBuffer(capacity int, retention time.Duration) *PollBuffer {
	if capacity <= 0 {
		capacity = DefaultBufferCapacity
	}
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &PollBuffer{
		entries:   make([]Envelope, 0, capacity),
		capacity:  capacity,
		retention: retention,
	}
}

// Send buffers an envelope for the next poll. When the buffer is full the
// oldest entry is evicted first; signaling traffic tolerates loss, the
// negotiator re-offers on reconnect.
func (b *PollBuffer) Send(env Envelope) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrTransportClosed
	}
	if len(b.entries) >= b.capacity {
		b.entries = b.entries[1:]
	}
	// Appends arrive in relay order; a clock step backwards must not
	// break the ascending-timestamp contract of After.
	if n := len(b.entries); n > 0 && env.Timestamp < b.entries[n-1].Timestamp {
		env.Timestamp = b.entries[n-1].Timestamp
	}
	b.entries = append(b.entries, env)
	return nil
}

// After returns all buffered envelopes with Timestamp strictly greater
// than since, in ascending timestamp order. Entries are retained until
// garbage collection, so repeating a poll with the same cursor returns
// the same set until new envelopes arrive.
func (b *PollBuffer) After(since int64) []Envelope {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.expireLocked(time.Now())

	var out []Envelope
	for _, env := range b.entries {
		if env.Timestamp > since {
			out = append(out, env)
		}
	}
	return out
}

// Close marks the buffer closed; further sends fail.
func (b *PollBuffer) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.entries = nil
	return nil
}

// Len returns the number of buffered envelopes.
func (b *PollBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.entries)
}

// expireLocked drops entries older than the retention window. Callers
// must hold b.mu.
func (b *PollBuffer) expireLocked(now time.Time) {
	cutoff := now.Add(-b.retention).UnixMilli()
	i := 0
	for i < len(b.entries) && b.entries[i].Timestamp < cutoff {
		i++
	}
	if i > 0 {
		b.entries = append(b.entries[:0], b.entries[i:]...)
	}
}

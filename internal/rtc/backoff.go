package rtc

import (
	"errors"
	"time"
)

const (
	backoffInitial = 1 * time.Second
	backoffCap     = 30 * time.Second
	maxAttempts    = 5
)

// ErrReconnectExhausted is returned once every reconnect attempt has been
// spent. Callers should surface it as a terminal call failure.
var ErrReconnectExhausted = errors.New("rtc: reconnect attempts exhausted")

// Backoff hands out reconnect delays: 1s doubling per attempt, capped at
// 30s, for at most five attempts. Not safe for concurrent use.
type Backoff struct {
	attempt int
}

// Next returns the delay to wait before the upcoming reconnect attempt,
// or ErrReconnectExhausted when the ladder is spent.
func (b *Backoff) Next() (time.Duration, error) {
	if b.attempt >= maxAttempts {
		return 0, ErrReconnectExhausted
	}
	d := backoffInitial << b.attempt
	if d > backoffCap {
		d = backoffCap
	}
	b.attempt++
	return d, nil
}

// Reset restarts the ladder after a successful connection.
func (b *Backoff) Reset() {
	b.attempt = 0
}

// Attempt reports how many delays have been handed out so far.
func (b *Backoff) Attempt() int {
	return b.attempt
}

package signaling

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second

	sendQueueSize = 256
)

// WSTransport is the push-variant transport: a persistent WebSocket
// connection to one participant. Outbound envelopes are queued on a
// channel drained by a single writer goroutine, so Send never blocks
// relay delivery.
type WSTransport struct {
	conn *websocket.Conn
	send chan Envelope
	done chan struct{}
	once sync.Once
	log  zerolog.Logger
}

func NewWSTransport(conn *websocket.Conn, log zerolog.Logger) *WSTransport {
	return &WSTransport{
		conn: conn,
		send: make(chan Envelope, sendQueueSize),
		done: make(chan struct{}),
		log:  log.With().Str("component", "ws-transport").Logger(),
	}
}

// Send queues an envelope for the write pump. A participant whose queue
// is full is too far behind to be useful; the envelope is dropped and the
// negotiator recovers by renegotiating.
func (t *WSTransport) Send(env Envelope) error {
	select {
	case <-t.done:
		return ErrTransportClosed
	default:
	}

	select {
	case t.send <- env:
		return nil
	default:
		t.log.Debug().Str("type", string(env.Type)).Msg("send queue full, dropping envelope")
		return nil
	}
}

// Close shuts the transport down. Safe to call more than once.
func (t *WSTransport) Close() error {
	t.once.Do(func() {
		close(t.done)
		t.conn.Close()
	})
	return nil
}

// ReadLoop decodes inbound envelopes and hands each to handle. It returns
// when the connection drops or the transport is closed, after which the
// caller is expected to unregister the participant.
func (t *WSTransport) ReadLoop(handle func(Envelope)) {
	defer t.Close()

	t.conn.SetReadDeadline(time.Now().Add(pongWait))
	t.conn.SetPongHandler(func(string) error {
		t.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var raw json.RawMessage
		if err := t.conn.ReadJSON(&raw); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				t.log.Debug().Err(err).Msg("unexpected close")
			}
			return
		}

		var env Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			t.log.Debug().Err(err).Msg("discarding malformed envelope")
			continue
		}

		// Any inbound traffic proves liveness.
		t.conn.SetReadDeadline(time.Now().Add(pongWait))

		handle(env)
	}
}

// WriteLoop drains the send queue onto the connection and keeps the
// connection alive with protocol-level pings through intermediating
// proxies. It returns when the transport closes or a write fails.
func (t *WSTransport) WriteLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		t.Close()
	}()

	for {
		select {
		case env := <-t.send:
			t.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := t.conn.WriteJSON(env); err != nil {
				t.log.Debug().Err(err).Msg("write failed")
				return
			}

		case <-ticker.C:
			t.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := t.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-t.done:
			t.conn.SetWriteDeadline(time.Now().Add(writeWait))
			t.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}

// Command callprobe joins a mentorship session over the WebSocket
// signaling endpoint with a real peer connection. Run one probe as the
// initiator (-offer) and a second without it to exercise a full
// offer/answer/ICE exchange through the relay.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"net/url"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog"

	"github.com/mentorlink/mentorlink/internal/rtc"
	"github.com/mentorlink/mentorlink/internal/signaling"
)

const heartbeatInterval = 20 * time.Second

func main() {
	var (
		server    = flag.String("server", "ws://localhost:8080", "server base URL")
		token     = flag.String("token", "", "access token")
		sessionID = flag.String("session", "", "session id to join")
		selfID    = flag.String("user", "", "own participant id")
		offer     = flag.Bool("offer", false, "act as the call initiator")
		stunURL   = flag.String("stun", "stun:stun.l.google.com:19302", "STUN server")
	)
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	if *token == "" || *sessionID == "" || *selfID == "" {
		log.Fatal().Msg("-token, -session and -user are required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	endpoint, err := url.Parse(*server + "/api/ws/session")
	if err != nil {
		log.Fatal().Err(err).Msg("bad server URL")
	}
	q := endpoint.Query()
	q.Set("token", *token)
	q.Set("session_id", *sessionID)
	endpoint.RawQuery = q.Encode()

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, endpoint.String(), nil)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to dial signaling endpoint")
	}
	defer conn.Close()
	log.Info().Str("session", *sessionID).Msg("joined session")

	sig := &wsSignaler{conn: conn}
	neg := rtc.NewNegotiator(*sessionID, *selfID, webrtc.Configuration{
		ICEServers: []webrtc.ICEServer{{URLs: []string{*stunURL}}},
	}, sig, log)
	neg.OnStateChange = func(s rtc.State) {
		log.Info().Stringer("state", s).Msg("call state changed")
	}
	defer neg.HangUp()

	go heartbeatLoop(ctx, sig, *sessionID, *selfID, log)

	if *offer {
		if err := neg.StartCall(ctx); err != nil {
			log.Fatal().Err(err).Msg("failed to start call")
		}
	}

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	for {
		var env signaling.Envelope
		if err := conn.ReadJSON(&env); err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Error().Err(err).Msg("signaling read failed")
			return
		}
		log.Debug().Str("type", string(env.Type)).Str("from", env.SenderID).Msg("envelope")
		if err := neg.HandleEnvelope(ctx, env); err != nil {
			log.Error().Err(err).Msg("negotiation error")
		}
	}
}

// wsSignaler sends envelopes over the probe's WebSocket. gorilla conns
// allow one concurrent writer, so sends are serialized.
type wsSignaler struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (s *wsSignaler) Signal(_ context.Context, env signaling.Envelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteJSON(env)
}

func heartbeatLoop(ctx context.Context, sig *wsSignaler, sessionID, selfID string, log zerolog.Logger) {
	t := time.NewTicker(heartbeatInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			env := signaling.NewEnvelope(signaling.TypeHeartbeat, sessionID, selfID, json.RawMessage(`{}`))
			if err := sig.Signal(ctx, env); err != nil {
				log.Warn().Err(err).Msg("heartbeat failed")
				return
			}
		}
	}
}

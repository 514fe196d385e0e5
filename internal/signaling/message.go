package signaling

import (
	"encoding/json"
	"time"
)

// MessageType identifies a signaling envelope on the wire.
type MessageType string

const (
	TypeOffer        MessageType = "offer"
	TypeAnswer       MessageType = "answer"
	TypeICECandidate MessageType = "ice-candidate"
	TypeChat         MessageType = "chat"
	TypeHeartbeat    MessageType = "heartbeat"
	TypeUserJoined   MessageType = "user-joined"
	TypeUserLeft     MessageType = "user-left"
)

// Envelope is the standard message format for all signaling traffic,
// shared by the WebSocket and HTTP polling transports.
type Envelope struct {
	Type      MessageType     `json:"type"`
	SessionID string          `json:"sessionId"`
	SenderID  string          `json:"senderId"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp int64           `json:"timestamp"` // epoch millis
}

// NewEnvelope stamps an envelope with the current time.
func NewEnvelope(msgType MessageType, sessionID, senderID string, payload json.RawMessage) Envelope {
	return Envelope{
		Type:      msgType,
		SessionID: sessionID,
		SenderID:  senderID,
		Payload:   payload,
		Timestamp: time.Now().UnixMilli(),
	}
}

// SessionDescriptionPayload carries an SDP offer or answer.
type SessionDescriptionPayload struct {
	Type string `json:"type"` // "offer" or "answer"
	SDP  string `json:"sdp"`
}

// ICECandidatePayload carries a trickled connectivity candidate.
type ICECandidatePayload struct {
	Candidate     string  `json:"candidate"`
	SDPMid        *string `json:"sdpMid"`        // media stream id, can be null
	SDPMLineIndex *uint16 `json:"sdpMLineIndex"` // media line index, can be null
}

// ChatPayload carries an in-band text chat message.
type ChatPayload struct {
	Content string `json:"content"`
}

// PresencePayload accompanies user-joined and user-left notifications.
type PresencePayload struct {
	UserID string `json:"userId"`
}

// MarshalPayload encodes a typed payload for an envelope.
// All payload types in this package marshal without error.
func MarshalPayload(v interface{}) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return data
}

package proto

import (
	"encoding/json"
	"time"
)

// Inbound is the envelope for messages coming from the client.
type Inbound struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Inbound event names.
const (
	InboundCreateRoom  = "create-room"
	InboundJoinRoom    = "join-room"
	InboundSendMessage = "send-message"
)

// Outbound event names.
const (
	OutboundSession     = "session"
	OutboundRoomCreated = "room-created"
	OutboundJoinedRoom  = "joined-room"
	OutboundUserJoined  = "user-joined"
	OutboundUserLeft    = "user-left"
	OutboundNewMessage  = "new-message"
	OutboundError       = "error"
)

// SendMessageData is the payload of send-message.
type SendMessageData struct {
	RoomCode string `json:"roomCode"`
	Message  string `json:"message"`
}

// Outbound is the envelope for messages sent to the client.
// Data carries the event payload; Error is set only for error events.
type Outbound struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
	Error *Error `json:"error,omitempty"`
}

// Session tells a client the id the server assigned to its connection,
// so it can recognise its own messages.
type Session struct {
	SessionID string `json:"sessionId"`
}

// Message is a chat message as seen by clients.
type Message struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Sender    string    `json:"sender"`
	Timestamp time.Time `json:"timestamp"`
}

// JoinedRoom confirms a join and carries the room's message log.
type JoinedRoom struct {
	RoomCode string    `json:"roomCode"`
	Messages []Message `json:"messages"`
}

// Error describes a protocol-level error response.
type Error struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}

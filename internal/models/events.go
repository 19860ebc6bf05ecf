package models

import "encoding/json"

type EventType string

const (
	EventTypeIdentify       EventType = "identify"
	EventTypeJoinRoom       EventType = "join_room"
	EventTypeHistory        EventType = "history"
	EventTypeMessage        EventType = "message"
	EventTypeReaction       EventType = "reaction"
	EventTypeReactionUpdate EventType = "reaction_update"
	EventTypePresence       EventType = "presence"
)

// Event is the wire envelope for every frame in both directions. Payload is
// left raw on the inbound path so each handler decodes only its own shape.
type Event struct {
	Type    EventType       `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type IdentifyPayload struct {
	UserID     string `json:"userId"`
	Name       string `json:"name"`
	Role       string `json:"role"`
	Department string `json:"department"`
	ProjectID  string `json:"projectId"`
}

type JoinRoomPayload struct {
	RoomID string `json:"roomId"`
}

type MessagePayload struct {
	RoomID  string   `json:"roomId"`
	Message *Message `json:"message"`
}

// MessageBroadcastPayload is the server->client form of a message event;
// the room is carried inside the message itself.
type MessageBroadcastPayload struct {
	Message *Message `json:"message"`
}

type ReactionPayload struct {
	RoomID    string `json:"roomId"`
	MessageID string `json:"messageId"`
	Emoji     string `json:"emoji"`
	UserID    string `json:"userId"`
}

type HistoryPayload struct {
	RoomID   string     `json:"roomId"`
	Messages []*Message `json:"messages"`
}

type ReactionUpdatePayload struct {
	RoomID    string              `json:"roomId"`
	MessageID string              `json:"messageId"`
	Reactions map[string][]string `json:"reactions"`
}

// PresencePayload is the full online-member snapshot for a project.
type PresencePayload []Identity

// NewEvent wraps a payload into the wire envelope.
func NewEvent(eventType EventType, payload interface{}) (*Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Event{Type: eventType, Payload: raw}, nil
}

// Encode marshals the full envelope for the send path.
func (e *Event) Encode() ([]byte, error) {
	return json.Marshal(e)
}

package models

// Identity is the user a connection claims to represent. It is declared
// client-side at join time and lives for one connection session; nothing
// here is authenticated.
type Identity struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Role       string `json:"role"`
	Department string `json:"department"`
}

// Message is a single chat message inside a room. Content is immutable once
// appended; Reactions is the only field mutated afterward.
type Message struct {
	ID               string              `json:"id"`
	RoomID           string              `json:"roomId"`
	SenderID         string              `json:"senderId"`
	SenderName       string              `json:"senderName"`
	SenderDepartment string              `json:"senderDepartment,omitempty"`
	Content          string              `json:"content"`
	Timestamp        string              `json:"timestamp"`
	Reactions        map[string][]string `json:"reactions"`
}

// Clone returns a copy safe to hand outside the event loop. Reaction slices
// are copied too since toggles mutate them in place.
func (m *Message) Clone() *Message {
	out := *m
	if m.Reactions != nil {
		out.Reactions = CloneReactions(m.Reactions)
	}
	return &out
}

// CloneReactions deep-copies an emoji -> userIDs map.
func CloneReactions(reactions map[string][]string) map[string][]string {
	out := make(map[string][]string, len(reactions))
	for emoji, ids := range reactions {
		out[emoji] = append([]string(nil), ids...)
	}
	return out
}

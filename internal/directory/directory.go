// Package directory holds the authoritative per-room state: ordered message
// history plus the set of currently subscribed connections. All operations
// are total functions; there is no room-level error. The directory is not
// internally locked. It is owned by the gateway's event loop and must only
// be touched from there.
package directory

import "filmcraft-chat/internal/models"

// Subscriber is a connection handle the gateway can fan events out to.
type Subscriber interface {
	// Send queues an encoded event frame. It must not block; a subscriber
	// that cannot keep up is the gateway's problem, not the directory's.
	Send(frame []byte) bool
}

type Room struct {
	id          string
	history     []*models.Message
	subscribers map[Subscriber]struct{}
}

type Directory struct {
	rooms map[string]*Room
}

func New() *Directory {
	return &Directory{rooms: make(map[string]*Room)}
}

// EnsureRoom returns the room's state, creating an empty room the first
// time any client references the key. Never fails.
func (d *Directory) EnsureRoom(roomID string) *Room {
	r, ok := d.rooms[roomID]
	if !ok {
		r = &Room{
			id:          roomID,
			subscribers: make(map[Subscriber]struct{}),
		}
		d.rooms[roomID] = r
	}
	return r
}

// Subscribe adds the connection to the room's fan-out set.
func (d *Directory) Subscribe(roomID string, sub Subscriber) {
	d.EnsureRoom(roomID).subscribers[sub] = struct{}{}
}

// Unsubscribe removes the connection; safe to call when not a member.
func (d *Directory) Unsubscribe(roomID string, sub Subscriber) {
	if r, ok := d.rooms[roomID]; ok {
		delete(r.subscribers, sub)
	}
}

// Append adds a message to the room's history. Arrival order at this method
// is the canonical ordering for the room; callers serialize through the
// event loop, which makes this the linearization point.
func (d *Directory) Append(roomID string, msg *models.Message) {
	r := d.EnsureRoom(roomID)
	r.history = append(r.history, msg)
}

// ToggleReaction flips membership of userID in the message's reaction set
// for emoji. An unknown message id is ignored (found=false), not an error.
// Emptied sets are pruned so absent and empty read the same.
func (d *Directory) ToggleReaction(roomID, messageID, emoji, userID string) (reactions map[string][]string, found bool) {
	r, ok := d.rooms[roomID]
	if !ok {
		return nil, false
	}
	var msg *models.Message
	for _, m := range r.history {
		if m.ID == messageID {
			msg = m
			break
		}
	}
	if msg == nil {
		return nil, false
	}

	if msg.Reactions == nil {
		msg.Reactions = make(map[string][]string)
	}
	ids := msg.Reactions[emoji]
	removed := false
	for i, id := range ids {
		if id == userID {
			ids = append(ids[:i], ids[i+1:]...)
			removed = true
			break
		}
	}
	if !removed {
		ids = append(ids, userID)
	}
	if len(ids) == 0 {
		delete(msg.Reactions, emoji)
	} else {
		msg.Reactions[emoji] = ids
	}
	return models.CloneReactions(msg.Reactions), true
}

// Subscribers returns the room's current fan-out set. Empty for unknown
// rooms.
func (d *Directory) Subscribers(roomID string) []Subscriber {
	r, ok := d.rooms[roomID]
	if !ok {
		return nil
	}
	subs := make([]Subscriber, 0, len(r.subscribers))
	for s := range r.subscribers {
		subs = append(subs, s)
	}
	return subs
}

// History returns a snapshot copy of the room's messages in arrival order.
// The copy is what join_room sends down as the history event.
func (d *Directory) History(roomID string) []*models.Message {
	r, ok := d.rooms[roomID]
	if !ok {
		return nil
	}
	out := make([]*models.Message, len(r.history))
	for i, m := range r.history {
		out[i] = m.Clone()
	}
	return out
}

// Rooms reports how many rooms have been referenced so far.
func (d *Directory) Rooms() int {
	return len(d.rooms)
}

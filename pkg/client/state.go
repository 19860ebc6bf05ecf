// Package client is the synchronization layer a UI consumes: a local copy
// of room history and presence that treats server broadcasts as
// authoritative, plus an offline fallback that mutates local state directly
// when no transport is connected.
package client

import (
	"sync"

	"filmcraft-chat/internal/models"
)

// State is the application-state object UIs observe. Server-confirmed
// events overwrite or append; speculative local messages only exist while
// offline and are abandoned when a history snapshot lands on reconnect.
type State struct {
	mu        sync.Mutex
	rooms     map[string][]*models.Message
	online    []models.Identity
	connected bool
	listeners []func()
}

func NewState() *State {
	return &State{rooms: make(map[string][]*models.Message)}
}

// OnChange registers an observer invoked after every state mutation.
func (s *State) OnChange(fn func()) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

func (s *State) notifyLocked() []func() {
	return append([]func(){}, s.listeners...)
}

func notify(fns []func()) {
	for _, fn := range fns {
		fn()
	}
}

// ApplyIncomingMessage appends a broadcast message to its room.
func (s *State) ApplyIncomingMessage(msg *models.Message) {
	s.mu.Lock()
	s.rooms[msg.RoomID] = append(s.rooms[msg.RoomID], msg)
	fns := s.notifyLocked()
	s.mu.Unlock()
	notify(fns)
}

// ApplyHistorySnapshot replaces the room's local history with the
// authoritative snapshot. This is the reconciliation point: anything the UI
// showed optimistically for this room is discarded, never merged.
func (s *State) ApplyHistorySnapshot(roomID string, messages []*models.Message) {
	s.mu.Lock()
	s.rooms[roomID] = messages
	fns := s.notifyLocked()
	s.mu.Unlock()
	notify(fns)
}

// ApplyReactionUpdate replaces one message's reactions map.
func (s *State) ApplyReactionUpdate(roomID, messageID string, reactions map[string][]string) {
	s.mu.Lock()
	for _, m := range s.rooms[roomID] {
		if m.ID == messageID {
			m.Reactions = reactions
			break
		}
	}
	fns := s.notifyLocked()
	s.mu.Unlock()
	notify(fns)
}

// SetOnlineMembers replaces the presence snapshot.
func (s *State) SetOnlineMembers(members []models.Identity) {
	s.mu.Lock()
	s.online = members
	fns := s.notifyLocked()
	s.mu.Unlock()
	notify(fns)
}

// SetConnected flips the Live/Offline indicator.
func (s *State) SetConnected(connected bool) {
	s.mu.Lock()
	s.connected = connected
	fns := s.notifyLocked()
	s.mu.Unlock()
	notify(fns)
}

// RoomMessages returns a snapshot of the room's local history. Messages are
// cloned so reaction updates applied by the read loop never touch anything
// the UI is still holding.
func (s *State) RoomMessages(roomID string) []*models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	msgs := s.rooms[roomID]
	out := make([]*models.Message, len(msgs))
	for i, m := range msgs {
		out[i] = m.Clone()
	}
	return out
}

// OnlineMembers returns the last presence snapshot.
func (s *State) OnlineMembers() []models.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Identity(nil), s.online...)
}

// Connected reports the transport state.
func (s *State) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

// toggleReactionLocally applies the same toggle the server would; used by
// the offline fallback path only.
func (s *State) toggleReactionLocally(roomID, messageID, emoji, userID string) {
	s.mu.Lock()
	for _, m := range s.rooms[roomID] {
		if m.ID != messageID {
			continue
		}
		if m.Reactions == nil {
			m.Reactions = make(map[string][]string)
		}
		ids := m.Reactions[emoji]
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
			delete(m.Reactions, emoji)
		} else {
			m.Reactions[emoji] = ids
		}
		break
	}
	fns := s.notifyLocked()
	s.mu.Unlock()
	notify(fns)
}

// appendLocalMessage records an offline-composed message.
func (s *State) appendLocalMessage(msg *models.Message) {
	s.mu.Lock()
	s.rooms[msg.RoomID] = append(s.rooms[msg.RoomID], msg)
	fns := s.notifyLocked()
	s.mu.Unlock()
	notify(fns)
}

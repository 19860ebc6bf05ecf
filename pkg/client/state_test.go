package client

import (
	"testing"

	"filmcraft-chat/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serverMsg(id, roomID, content string) *models.Message {
	return &models.Message{
		ID:        id,
		RoomID:    roomID,
		SenderID:  "u1",
		Content:   content,
		Timestamp: "2026-03-14T12:00:00Z",
		Reactions: map[string][]string{},
	}
}

func TestApplyIncomingMessageAppends(t *testing.T) {
	s := NewState()
	s.ApplyIncomingMessage(serverMsg("m1", "p1:general", "one"))
	s.ApplyIncomingMessage(serverMsg("m2", "p1:general", "two"))

	msgs := s.RoomMessages("p1:general")
	require.Len(t, msgs, 2)
	assert.Equal(t, "one", msgs[0].Content)
	assert.Equal(t, "two", msgs[1].Content)
}

func TestHistorySnapshotOverwritesLocalState(t *testing.T) {
	s := NewState()

	// Offline-composed message shown optimistically.
	s.appendLocalMessage(serverMsg("local-1", "p1:general", "typed while offline"))
	require.Len(t, s.RoomMessages("p1:general"), 1)

	// Reconnect: the authoritative snapshot replaces, never merges.
	s.ApplyHistorySnapshot("p1:general", []*models.Message{
		serverMsg("m1", "p1:general", "confirmed one"),
		serverMsg("m2", "p1:general", "confirmed two"),
	})

	msgs := s.RoomMessages("p1:general")
	require.Len(t, msgs, 2)
	assert.Equal(t, "m1", msgs[0].ID)
	assert.Equal(t, "m2", msgs[1].ID)
}

func TestApplyReactionUpdate(t *testing.T) {
	s := NewState()
	s.ApplyIncomingMessage(serverMsg("m1", "p1:general", "hi"))

	s.ApplyReactionUpdate("p1:general", "m1", map[string][]string{"👍": {"u2"}})
	msgs := s.RoomMessages("p1:general")
	assert.Equal(t, []string{"u2"}, msgs[0].Reactions["👍"])

	// Unknown message id is ignored, same as the server.
	s.ApplyReactionUpdate("p1:general", "no-such-id", map[string][]string{"🔥": {"u2"}})
}

func TestToggleReactionLocallyPairsCancel(t *testing.T) {
	s := NewState()
	s.ApplyIncomingMessage(serverMsg("m1", "p1:general", "hi"))

	s.toggleReactionLocally("p1:general", "m1", "👍", "u2")
	assert.Equal(t, []string{"u2"}, s.RoomMessages("p1:general")[0].Reactions["👍"])

	s.toggleReactionLocally("p1:general", "m1", "👍", "u2")
	_, present := s.RoomMessages("p1:general")[0].Reactions["👍"]
	assert.False(t, present)
}

func TestRoomMessagesReturnsClones(t *testing.T) {
	s := NewState()
	s.ApplyIncomingMessage(serverMsg("m1", "p1:general", "hi"))

	snapshot := s.RoomMessages("p1:general")
	snapshot[0].Content = "mutated"
	snapshot[0].Reactions["👍"] = []string{"u9"}

	fresh := s.RoomMessages("p1:general")
	assert.Equal(t, "hi", fresh[0].Content)
	assert.Empty(t, fresh[0].Reactions)
}

func TestReactionUpdatesConcurrentWithReads(t *testing.T) {
	s := NewState()
	s.ApplyIncomingMessage(serverMsg("m1", "p1:general", "hi"))

	// The read loop rewrites reactions while the UI walks an earlier
	// snapshot; run under -race this fails if RoomMessages ever hands out
	// live message pointers.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 500; i++ {
			s.ApplyReactionUpdate("p1:general", "m1", map[string][]string{"👍": {"u2"}})
		}
	}()
	for i := 0; i < 500; i++ {
		msgs := s.RoomMessages("p1:general")
		require.Len(t, msgs, 1)
		_ = len(msgs[0].Reactions)
	}
	<-done
}

func TestConnectivityAndPresence(t *testing.T) {
	s := NewState()
	assert.False(t, s.Connected())

	s.SetConnected(true)
	assert.True(t, s.Connected())

	s.SetOnlineMembers([]models.Identity{{ID: "u1", Name: "Sam"}})
	members := s.OnlineMembers()
	require.Len(t, members, 1)
	assert.Equal(t, "u1", members[0].ID)
}

func TestOnChangeObserver(t *testing.T) {
	s := NewState()
	calls := 0
	s.OnChange(func() { calls++ })

	s.ApplyIncomingMessage(serverMsg("m1", "p1:general", "hi"))
	s.SetConnected(true)
	s.SetOnlineMembers(nil)

	assert.Equal(t, 3, calls)
}

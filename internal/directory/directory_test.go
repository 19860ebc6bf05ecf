package directory

import (
	"fmt"
	"testing"

	"filmcraft-chat/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSub struct {
	frames [][]byte
}

func (f *fakeSub) Send(frame []byte) bool {
	f.frames = append(f.frames, frame)
	return true
}

func msg(id, content string) *models.Message {
	return &models.Message{
		ID:        id,
		SenderID:  "u1",
		Content:   content,
		Reactions: make(map[string][]string),
	}
}

func TestEnsureRoomCreatesLazily(t *testing.T) {
	d := New()
	assert.Equal(t, 0, d.Rooms())

	r := d.EnsureRoom("p1:general")
	require.NotNil(t, r)
	assert.Equal(t, 1, d.Rooms())

	// Second call returns the same room, not a fresh one.
	d.Append("p1:general", msg("m1", "hi"))
	assert.Len(t, d.EnsureRoom("p1:general").history, 1)
	assert.Equal(t, 1, d.Rooms())
}

func TestAppendPreservesArrivalOrder(t *testing.T) {
	d := New()
	for i := 0; i < 5; i++ {
		d.Append("p1:general", msg(fmt.Sprintf("m%d", i), fmt.Sprintf("msg %d", i)))
	}

	history := d.History("p1:general")
	require.Len(t, history, 5)
	for i, m := range history {
		assert.Equal(t, fmt.Sprintf("m%d", i), m.ID)
	}
}

func TestHistoryIsASnapshotCopy(t *testing.T) {
	d := New()
	d.Append("p1:general", msg("m1", "hi"))

	snapshot := d.History("p1:general")
	snapshot[0].Content = "mutated"
	snapshot[0].Reactions["👍"] = []string{"u9"}

	fresh := d.History("p1:general")
	assert.Equal(t, "hi", fresh[0].Content)
	assert.Empty(t, fresh[0].Reactions)
}

func TestHistoryUnknownRoom(t *testing.T) {
	d := New()
	assert.Nil(t, d.History("nowhere"))
	// Asking for history must not create the room.
	assert.Equal(t, 0, d.Rooms())
}

func TestSubscribeUnsubscribe(t *testing.T) {
	d := New()
	a, b := &fakeSub{}, &fakeSub{}

	d.Subscribe("p1:general", a)
	d.Subscribe("p1:general", b)
	assert.Len(t, d.Subscribers("p1:general"), 2)

	d.Unsubscribe("p1:general", a)
	subs := d.Subscribers("p1:general")
	require.Len(t, subs, 1)
	assert.Same(t, b, subs[0].(*fakeSub))

	// Unsubscribing a non-member or an unknown room is a no-op.
	d.Unsubscribe("p1:general", a)
	d.Unsubscribe("no-such-room", a)
	assert.Len(t, d.Subscribers("p1:general"), 1)
}

func TestToggleReactionAddsThenRemoves(t *testing.T) {
	d := New()
	d.Append("p1:general", msg("m1", "hi"))

	reactions, found := d.ToggleReaction("p1:general", "m1", "👍", "u2")
	require.True(t, found)
	assert.Equal(t, []string{"u2"}, reactions["👍"])

	// Toggling the same pair again returns the map to its prior state;
	// the emptied set is pruned so absent and empty read the same.
	reactions, found = d.ToggleReaction("p1:general", "m1", "👍", "u2")
	require.True(t, found)
	_, present := reactions["👍"]
	assert.False(t, present)
}

func TestToggleReactionMultipleUsers(t *testing.T) {
	d := New()
	d.Append("p1:general", msg("m1", "hi"))

	d.ToggleReaction("p1:general", "m1", "👍", "u2")
	reactions, found := d.ToggleReaction("p1:general", "m1", "👍", "u3")
	require.True(t, found)
	assert.ElementsMatch(t, []string{"u2", "u3"}, reactions["👍"])

	reactions, _ = d.ToggleReaction("p1:general", "m1", "👍", "u2")
	assert.Equal(t, []string{"u3"}, reactions["👍"])
}

func TestToggleReactionUnknownMessage(t *testing.T) {
	d := New()
	d.Append("p1:general", msg("m1", "hi"))

	_, found := d.ToggleReaction("p1:general", "no-such-id", "👍", "u2")
	assert.False(t, found)

	_, found = d.ToggleReaction("no-such-room", "m1", "👍", "u2")
	assert.False(t, found)
}

func TestToggleReactionReturnsACopy(t *testing.T) {
	d := New()
	d.Append("p1:general", msg("m1", "hi"))

	reactions, _ := d.ToggleReaction("p1:general", "m1", "👍", "u2")
	reactions["👍"][0] = "someone-else"

	fresh := d.History("p1:general")
	assert.Equal(t, []string{"u2"}, fresh[0].Reactions["👍"])
}

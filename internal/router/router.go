// Package router validates and stamps inbound chat traffic before it
// reaches the room directory. The protocol is best-effort: anything
// malformed is dropped with a log line, never answered with an error event.
package router

import (
	"strings"
	"time"

	"filmcraft-chat/internal/directory"
	"filmcraft-chat/internal/metrics"
	"filmcraft-chat/internal/models"
	"filmcraft-chat/pkg/logger"

	"github.com/google/uuid"
)

type Router struct {
	directory *directory.Directory
	now       func() time.Time
}

func New(dir *directory.Directory) *Router {
	return &Router{directory: dir, now: time.Now}
}

// RouteMessage validates msg, stamps it, and appends it to the room's
// history. The returned message is the authoritative form to broadcast.
// ok=false means the message was dropped.
//
// Id policy: a client-supplied id is trusted (supports offline-composed
// messages); a missing id gets a server uuid. The timestamp is always
// stamped server-side so one clock orders each room.
func (r *Router) RouteMessage(roomID string, msg *models.Message) (*models.Message, bool) {
	if msg == nil || roomID == "" || msg.SenderID == "" || strings.TrimSpace(msg.Content) == "" {
		logger.Debug("Router: dropping malformed message for room %q", roomID)
		metrics.MessagesDropped.Inc()
		return nil, false
	}

	msg.RoomID = roomID
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	msg.Timestamp = r.now().UTC().Format(time.RFC3339)
	if msg.Reactions == nil {
		msg.Reactions = make(map[string][]string)
	}

	r.directory.Append(roomID, msg)
	metrics.MessagesRouted.Inc()
	return msg, true
}

// RouteReaction toggles userID's reaction on a message and returns the
// updated reactions map for broadcast. An unknown message id or a
// half-empty payload is silently ignored.
func (r *Router) RouteReaction(roomID, messageID, emoji, userID string) (map[string][]string, bool) {
	if roomID == "" || messageID == "" || emoji == "" || userID == "" {
		logger.Debug("Router: dropping malformed reaction for room %q", roomID)
		return nil, false
	}
	reactions, found := r.directory.ToggleReaction(roomID, messageID, emoji, userID)
	if !found {
		return nil, false
	}
	metrics.ReactionsToggled.Inc()
	return reactions, true
}

package client

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"filmcraft-chat/internal/models"
	"filmcraft-chat/pkg/logger"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Client connects a State to a chat server. Reconnection is the caller's
// job (call Connect again); on connect the client re-identifies and
// re-joins every previously joined room, then the server's history
// snapshots overwrite whatever the UI showed while offline.
type Client struct {
	url   string
	state *State

	mu        sync.Mutex
	conn      *websocket.Conn
	identity  models.Identity
	projectID string
	rooms     map[string]struct{}
}

func New(url string) *Client {
	return &Client{
		url:   url,
		state: NewState(),
		rooms: make(map[string]struct{}),
	}
}

// State exposes the observable state object for the UI.
func (c *Client) State() *State {
	return c.state
}

// Connect dials the server and starts the read loop. If an identity was
// already declared, it is re-sent along with join_room for every known
// room, which is the whole reconnect story.
func (c *Client) Connect(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return fmt.Errorf("failed to dial chat server: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	identity := c.identity
	projectID := c.projectID
	rooms := make([]string, 0, len(c.rooms))
	for roomID := range c.rooms {
		rooms = append(rooms, roomID)
	}
	c.mu.Unlock()

	c.state.SetConnected(true)
	go c.readLoop(conn)

	if identity.ID != "" && projectID != "" {
		c.sendIdentify(identity, projectID)
		for _, roomID := range rooms {
			c.sendEvent(models.EventTypeJoinRoom, models.JoinRoomPayload{RoomID: roomID})
		}
	}
	return nil
}

// Close tears down the transport; the state flips to offline.
func (c *Client) Close() error {
	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()

	c.state.SetConnected(false)
	if conn != nil {
		return conn.Close()
	}
	return nil
}

// Identify declares who this client is and which project it is in.
func (c *Client) Identify(identity models.Identity, projectID string) {
	c.mu.Lock()
	c.identity = identity
	c.projectID = projectID
	c.mu.Unlock()

	if c.state.Connected() {
		c.sendIdentify(identity, projectID)
	}
}

// JoinRoom subscribes to a room; the server answers with a history
// snapshot. The room is remembered for reconnects.
func (c *Client) JoinRoom(roomID string) {
	c.mu.Lock()
	c.rooms[roomID] = struct{}{}
	c.mu.Unlock()

	if c.state.Connected() {
		c.sendEvent(models.EventTypeJoinRoom, models.JoinRoomPayload{RoomID: roomID})
	}
}

// SendMessage sends content to a room. While connected the message comes
// back via broadcast like everyone else's; while offline it is applied to
// local state only and abandoned when authoritative history returns.
func (c *Client) SendMessage(roomID, content string) {
	c.mu.Lock()
	identity := c.identity
	c.mu.Unlock()

	msg := &models.Message{
		ID:               uuid.NewString(),
		RoomID:           roomID,
		SenderID:         identity.ID,
		SenderName:       identity.Name,
		SenderDepartment: identity.Department,
		Content:          content,
		Reactions:        make(map[string][]string),
	}

	if c.state.Connected() {
		c.sendEvent(models.EventTypeMessage, models.MessagePayload{RoomID: roomID, Message: msg})
		return
	}

	// Offline fallback: same shape, local timestamp.
	msg.Timestamp = time.Now().UTC().Format(time.RFC3339)
	c.state.appendLocalMessage(msg)
}

// ToggleReaction toggles this user's emoji reaction on a message.
func (c *Client) ToggleReaction(roomID, messageID, emoji string) {
	c.mu.Lock()
	userID := c.identity.ID
	c.mu.Unlock()
	if userID == "" {
		return
	}

	if c.state.Connected() {
		c.sendEvent(models.EventTypeReaction, models.ReactionPayload{
			RoomID:    roomID,
			MessageID: messageID,
			Emoji:     emoji,
			UserID:    userID,
		})
		return
	}
	c.state.toggleReactionLocally(roomID, messageID, emoji, userID)
}

func (c *Client) sendIdentify(identity models.Identity, projectID string) {
	c.sendEvent(models.EventTypeIdentify, models.IdentifyPayload{
		UserID:     identity.ID,
		Name:       identity.Name,
		Role:       identity.Role,
		Department: identity.Department,
		ProjectID:  projectID,
	})
}

func (c *Client) sendEvent(eventType models.EventType, payload interface{}) {
	event, err := models.NewEvent(eventType, payload)
	if err != nil {
		logger.Error("Error encoding %s event: %v", eventType, err)
		return
	}
	frame, err := event.Encode()
	if err != nil {
		logger.Error("Error encoding %s event: %v", eventType, err)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return
	}
	c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		logger.Error("Write error: %v", err)
	}
}

func (c *Client) readLoop(conn *websocket.Conn) {
	defer func() {
		c.mu.Lock()
		if c.conn == conn {
			c.conn = nil
		}
		c.mu.Unlock()
		c.state.SetConnected(false)
		conn.Close()
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var event models.Event
		if err := json.Unmarshal(data, &event); err != nil {
			logger.Debug("Dropping unparseable frame from server: %v", err)
			continue
		}
		c.apply(event)
	}
}

func (c *Client) apply(event models.Event) {
	switch event.Type {
	case models.EventTypeMessage:
		var p models.MessageBroadcastPayload
		if err := json.Unmarshal(event.Payload, &p); err == nil && p.Message != nil {
			c.state.ApplyIncomingMessage(p.Message)
		}
	case models.EventTypeHistory:
		var p models.HistoryPayload
		if err := json.Unmarshal(event.Payload, &p); err == nil {
			c.state.ApplyHistorySnapshot(p.RoomID, p.Messages)
		}
	case models.EventTypeReactionUpdate:
		var p models.ReactionUpdatePayload
		if err := json.Unmarshal(event.Payload, &p); err == nil {
			c.state.ApplyReactionUpdate(p.RoomID, p.MessageID, p.Reactions)
		}
	case models.EventTypePresence:
		var members []models.Identity
		if err := json.Unmarshal(event.Payload, &members); err == nil {
			c.state.SetOnlineMembers(members)
		}
	default:
		logger.Debug("Ignoring server frame with unknown type %q", event.Type)
	}
}

// Package gateway owns connection lifecycle and the single event-processing
// loop. Every mutation of the room directory and the presence registry
// happens inside Run, which serializes concurrent senders and makes each
// operation atomic with respect to other connections' events. Side effects
// are always broadcasts to the affected room or project, sender included;
// the sender learns authoritative state the same way everyone else does.
package gateway

import (
	"encoding/json"

	"filmcraft-chat/internal/directory"
	"filmcraft-chat/internal/metrics"
	"filmcraft-chat/internal/models"
	"filmcraft-chat/internal/registry"
	"filmcraft-chat/internal/room"
	"filmcraft-chat/internal/router"
	"filmcraft-chat/pkg/logger"
)

type inboundEvent struct {
	client *Client
	event  models.Event
}

type Gateway struct {
	directory *directory.Directory
	registry  *registry.Registry
	router    *router.Router

	clients map[*Client]bool

	register   chan *Client
	unregister chan *Client
	inbound    chan inboundEvent
	shutdown   chan struct{}
}

func New() *Gateway {
	dir := directory.New()
	return &Gateway{
		directory:  dir,
		registry:   registry.New(),
		router:     router.New(dir),
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		inbound:    make(chan inboundEvent, 64),
		shutdown:   make(chan struct{}),
	}
}

// Register hands a freshly upgraded connection to the event loop.
func (g *Gateway) Register(c *Client) {
	g.register <- c
}

// Shutdown stops the event loop and closes every client's send channel.
func (g *Gateway) Shutdown() {
	close(g.shutdown)
}

// Run is the event loop. It must be the only goroutine touching the
// directory, the registry, and per-client chat state.
func (g *Gateway) Run() {
	for {
		select {
		case <-g.shutdown:
			for c := range g.clients {
				close(c.send)
			}
			return

		case c := <-g.register:
			g.clients[c] = true
			metrics.ConnectionsActive.Inc()
			logger.Info("Connection %s opened (total: %d)", c.id, len(g.clients))

		case c := <-g.unregister:
			g.dropClient(c)

		case in := <-g.inbound:
			g.dispatch(in.client, in.event)
		}
	}
}

func (g *Gateway) dispatch(c *Client, event models.Event) {
	if !g.clients[c] {
		// Raced with disconnect; the client is already gone.
		return
	}
	switch event.Type {
	case models.EventTypeIdentify:
		g.handleIdentify(c, event.Payload)
	case models.EventTypeJoinRoom:
		g.handleJoinRoom(c, event.Payload)
	case models.EventTypeMessage:
		g.handleMessage(c, event.Payload)
	case models.EventTypeReaction:
		g.handleReaction(c, event.Payload)
	default:
		logger.Debug("Dropping frame with unknown type %q from %s", event.Type, c.id)
	}
}

// handleIdentify binds the connection to an identity and project and
// broadcasts presence to the affected project(s). Re-identifying replaces
// the prior binding, which is what a reconnecting client does.
func (g *Gateway) handleIdentify(c *Client, payload json.RawMessage) {
	var p models.IdentifyPayload
	if err := json.Unmarshal(payload, &p); err != nil || p.UserID == "" || p.ProjectID == "" {
		logger.Debug("Dropping malformed identify from %s", c.id)
		return
	}

	// Moving to a different project frees the old presence slot first so
	// that project's members see the departure.
	if c.identified && c.projectID != p.ProjectID {
		if prev, changed := g.registry.Detach(c); changed {
			g.broadcastPresence(prev)
		}
	}

	identity := models.Identity{
		ID:         p.UserID,
		Name:       p.Name,
		Role:       p.Role,
		Department: p.Department,
	}
	changed := g.registry.Attach(p.ProjectID, identity, c)

	if !c.identified {
		metrics.ConnectionsIdentified.Inc()
	}
	c.identified = true
	c.identity = identity
	c.projectID = p.ProjectID

	logger.Info("Connection %s identified as %s (%s) in project %s", c.id, identity.Name, identity.ID, p.ProjectID)
	if changed {
		g.broadcastPresence(p.ProjectID)
	} else {
		// The online set is unchanged (second tab, or rebind with the same
		// id) but this connection still needs the current snapshot.
		g.sendPresence(c, p.ProjectID)
	}
}

// handleJoinRoom subscribes the connection and sends it the room's history
// snapshot so it can render before any new traffic arrives. Unknown rooms
// come into existence here with empty history.
func (g *Gateway) handleJoinRoom(c *Client, payload json.RawMessage) {
	var p models.JoinRoomPayload
	if err := json.Unmarshal(payload, &p); err != nil || p.RoomID == "" {
		logger.Debug("Dropping malformed join_room from %s", c.id)
		return
	}

	roomID := room.Canonical(p.RoomID)
	g.directory.Subscribe(roomID, c)
	c.rooms[roomID] = struct{}{}

	history := g.directory.History(roomID)
	if history == nil {
		history = []*models.Message{}
	}
	g.sendEvent(c, models.EventTypeHistory, models.HistoryPayload{
		RoomID:   roomID,
		Messages: history,
	})
	logger.Debug("Connection %s joined room %s (%d messages)", c.id, roomID, len(history))
}

func (g *Gateway) handleMessage(c *Client, payload json.RawMessage) {
	var p models.MessagePayload
	if err := json.Unmarshal(payload, &p); err != nil {
		logger.Debug("Dropping malformed message frame from %s", c.id)
		return
	}

	roomID := room.Canonical(p.RoomID)
	msg, ok := g.router.RouteMessage(roomID, p.Message)
	if !ok {
		return
	}
	g.broadcast(roomID, models.EventTypeMessage, models.MessageBroadcastPayload{Message: msg})
}

func (g *Gateway) handleReaction(c *Client, payload json.RawMessage) {
	var p models.ReactionPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		logger.Debug("Dropping malformed reaction frame from %s", c.id)
		return
	}

	roomID := room.Canonical(p.RoomID)
	reactions, ok := g.router.RouteReaction(roomID, p.MessageID, p.Emoji, p.UserID)
	if !ok {
		return
	}
	g.broadcast(roomID, models.EventTypeReactionUpdate, models.ReactionUpdatePayload{
		RoomID:    roomID,
		MessageID: p.MessageID,
		Reactions: reactions,
	})
}

// dropClient is disconnect cleanup: unsubscribe from every room, detach
// from presence, and broadcast if the identity went offline.
func (g *Gateway) dropClient(c *Client) {
	if !g.clients[c] {
		return
	}
	delete(g.clients, c)
	close(c.send)
	metrics.ConnectionsActive.Dec()

	for roomID := range c.rooms {
		g.directory.Unsubscribe(roomID, c)
	}
	if c.identified {
		metrics.ConnectionsIdentified.Dec()
	}
	projectID, changed := g.registry.Detach(c)
	if changed {
		g.broadcastPresence(projectID)
	}
	logger.Info("Connection %s closed (total: %d)", c.id, len(g.clients))
}

// broadcast fans an event out to every current subscriber of the room,
// sender included. Subscribers whose send buffer is full are dropped
// rather than allowed to stall the event loop.
func (g *Gateway) broadcast(roomID string, eventType models.EventType, payload interface{}) {
	frame, err := encodeEvent(eventType, payload)
	if err != nil {
		logger.Error("Error encoding %s broadcast: %v", eventType, err)
		return
	}
	for _, sub := range g.directory.Subscribers(roomID) {
		c, ok := sub.(*Client)
		if !ok {
			sub.Send(frame)
			continue
		}
		if !c.Send(frame) {
			logger.Warn("Dropping slow connection %s", c.id)
			g.dropClient(c)
		}
	}
	metrics.EventsBroadcast.Inc()
}

// broadcastPresence sends the full online-member snapshot to every
// connection identified into the project.
func (g *Gateway) broadcastPresence(projectID string) {
	members := g.registry.OnlineMembers(projectID)
	frame, err := encodeEvent(models.EventTypePresence, models.PresencePayload(members))
	if err != nil {
		logger.Error("Error encoding presence broadcast: %v", err)
		return
	}
	for _, conn := range g.registry.Connections(projectID) {
		if c, ok := conn.(*Client); ok {
			if !c.Send(frame) {
				logger.Warn("Dropping slow connection %s", c.id)
				g.dropClient(c)
			}
		}
	}
	metrics.EventsBroadcast.Inc()
}

func (g *Gateway) sendPresence(c *Client, projectID string) {
	g.sendEvent(c, models.EventTypePresence, models.PresencePayload(g.registry.OnlineMembers(projectID)))
}

func (g *Gateway) sendEvent(c *Client, eventType models.EventType, payload interface{}) {
	frame, err := encodeEvent(eventType, payload)
	if err != nil {
		logger.Error("Error encoding %s event: %v", eventType, err)
		return
	}
	if !c.Send(frame) {
		logger.Warn("Dropping slow connection %s", c.id)
		g.dropClient(c)
	}
}

func encodeEvent(eventType models.EventType, payload interface{}) ([]byte, error) {
	event, err := models.NewEvent(eventType, payload)
	if err != nil {
		return nil, err
	}
	return event.Encode()
}

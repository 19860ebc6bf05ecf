package gateway

import (
	"encoding/json"
	"time"

	"filmcraft-chat/internal/models"
	"filmcraft-chat/pkg/logger"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second

	sendBufferSize = 256
)

// Client is one websocket connection. It starts unidentified; the identify
// event binds it to an identity and project, and join_room subscribes it to
// rooms. All of that state belongs to the gateway event loop; the pumps
// only move frames.
type Client struct {
	gateway *Gateway
	conn    *websocket.Conn
	send    chan []byte

	id string // connection id, logging only

	// Owned by the gateway event loop.
	identified bool
	identity   models.Identity
	projectID  string
	rooms      map[string]struct{}
}

func NewClient(g *Gateway, conn *websocket.Conn) *Client {
	return &Client{
		gateway: g,
		conn:    conn,
		send:    make(chan []byte, sendBufferSize),
		id:      uuid.NewString(),
		rooms:   make(map[string]struct{}),
	}
}

// Send queues an encoded frame without blocking. false means the client's
// buffer is full; the gateway drops such clients.
func (c *Client) Send(frame []byte) bool {
	select {
	case c.send <- frame:
		return true
	default:
		return false
	}
}

// ReadPump reads frames off the wire, decodes the envelope, and hands each
// event to the gateway loop. Runs as its own goroutine per connection; exit
// drives disconnect cleanup.
func (c *Client) ReadPump() {
	defer func() {
		c.gateway.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Error("WebSocket error on %s: %v", c.id, err)
			}
			break
		}

		var event models.Event
		if err := json.Unmarshal(data, &event); err != nil {
			// Best-effort protocol: malformed frames are dropped, not answered.
			logger.Debug("Dropping unparseable frame from %s: %v", c.id, err)
			continue
		}
		c.gateway.inbound <- inboundEvent{client: c, event: event}
	}
}

// WritePump drains the send channel onto the wire and keeps the connection
// alive with pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				logger.Error("Write error on %s: %v", c.id, err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

package handlers

import (
	"net/http"

	"filmcraft-chat/internal/gateway"
	"filmcraft-chat/pkg/logger"

	"github.com/gorilla/websocket"
)

type WebSocketHandlers struct {
	gateway  *gateway.Gateway
	upgrader websocket.Upgrader
}

func NewWebSocketHandlers(gw *gateway.Gateway) *WebSocketHandlers {
	return &WebSocketHandlers{
		gateway: gw,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true }, // Configure for production
		},
	}
}

// HandleWebSocket upgrades the connection and registers it with the gateway
// in a not-yet-identified state. Identity arrives in-band via the identify
// event, so there is nothing to check here.
func (h *WebSocketHandlers) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("Upgrade error: %v", err)
		return
	}

	client := gateway.NewClient(h.gateway, conn)
	h.gateway.Register(client)

	go client.WritePump()
	go client.ReadPump()
}

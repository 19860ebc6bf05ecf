// Package metrics exposes Prometheus counters for the chat core.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ConnectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "filmcraft_chat_connections_active",
		Help: "Currently open websocket connections.",
	})

	ConnectionsIdentified = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "filmcraft_chat_connections_identified",
		Help: "Connections bound to an identity and project.",
	})

	MessagesRouted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "filmcraft_chat_messages_routed_total",
		Help: "Messages accepted and appended to room history.",
	})

	MessagesDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "filmcraft_chat_messages_dropped_total",
		Help: "Messages dropped at validation.",
	})

	ReactionsToggled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "filmcraft_chat_reactions_toggled_total",
		Help: "Reaction toggles applied.",
	})

	EventsBroadcast = promauto.NewCounter(prometheus.CounterOpts{
		Name: "filmcraft_chat_events_broadcast_total",
		Help: "Event frames fanned out to subscribers.",
	})
)

// Handler serves the default registry, which is where promauto registers.
func Handler() http.Handler {
	return promhttp.Handler()
}

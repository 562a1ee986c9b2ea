// Package metrics exposes Prometheus instrumentation for the chat service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Login results.
const (
	LoginOK     = "ok"
	LoginBanned = "banned"
	LoginError  = "error"
)

var (
	// ConnectionsActive counts open WebSocket connections.
	ConnectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "chat_connections_active",
		Help: "Number of open chat connections.",
	})

	// Logins counts LoginAs attempts by result.
	Logins = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chat_logins_total",
		Help: "Chat logins by result.",
	}, []string{"result"})

	// Messages counts messages relayed to rooms.
	Messages = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chat_messages_total",
		Help: "Chat messages relayed to rooms.",
	})

	// RoomSwitches counts successful room switches.
	RoomSwitches = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chat_room_switches_total",
		Help: "Successful room switches.",
	})

	// DroppedEvents counts events discarded for slow consumers.
	DroppedEvents = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chat_dropped_events_total",
		Help: "Events dropped because a client buffer was full.",
	})
)

// Handler exposes Prometheus metrics at /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

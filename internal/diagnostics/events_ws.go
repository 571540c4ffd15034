package diagnostics

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/CalistaVerner/kalitech/internal/eventbus"
	"github.com/CalistaVerner/kalitech/internal/logging"
)

// eventsUpgrader mirrors the permissive CheckOrigin used for the mock
// signaling server this relay is grounded on: diagnostics is an
// operator-facing sidecar surface, not a browser-exposed one, so origin
// checks are left to whatever reverse proxy fronts it.
var eventsUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type relayedEvent struct {
	Topic   string `json:"topic"`
	Payload any    `json:"payload"`
}

// eventsWebsocketHandler relays every Emit on the requested topics (the
// repeatable "topic" query parameter) to the connected websocket client
// as JSON frames, until the connection closes. Grounded on
// MockSignalingServer's upgrade-then-relay loop, simplified from a
// full duplex signaling channel to a one-way event fan-out.
func eventsWebsocketHandler(bus *eventbus.Bus, log *logging.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		topics := r.URL.Query()["topic"]
		if len(topics) == 0 {
			http.Error(w, "at least one ?topic= query parameter is required", http.StatusBadRequest)
			return
		}

		conn, err := eventsUpgrader.Upgrade(w, r, nil)
		if err != nil {
			if log != nil {
				log.WithError(err).Warn("diagnostics websocket upgrade failed")
			}
			return
		}
		defer conn.Close()

		out := make(chan relayedEvent, 64)
		var unsubs []eventbus.Unsubscribe
		for _, topic := range topics {
			topic := topic
			unsubs = append(unsubs, bus.On(topic, func(payload any) {
				select {
				case out <- relayedEvent{Topic: topic, Payload: payload}:
				default:
					// slow consumer: drop rather than block event delivery
				}
			}))
		}
		defer func() {
			for _, unsub := range unsubs {
				unsub()
			}
		}()

		closed := make(chan struct{})
		go func() {
			defer close(closed)
			for {
				if _, _, err := conn.NextReader(); err != nil {
					return
				}
			}
		}()

		ping := time.NewTicker(30 * time.Second)
		defer ping.Stop()

		for {
			select {
			case <-closed:
				return
			case evt := <-out:
				body, err := json.Marshal(evt)
				if err != nil {
					continue
				}
				if err := conn.WriteMessage(websocket.TextMessage, body); err != nil {
					return
				}
			case <-ping.C:
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}
}

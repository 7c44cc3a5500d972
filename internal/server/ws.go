package server

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"sidegig/internal/state"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPingPeriod = 30 * time.Second
)

// hub upgrades websocket clients and relays dirty-section batches to
// them. Clients receive invalidation hints only; they re-fetch state
// over the JSON API.
type hub struct {
	bus      *state.DirtyBus
	logger   *log.Logger
	upgrader websocket.Upgrader
}

func newHub(bus *state.DirtyBus, logger *log.Logger) *hub {
	return &hub{
		bus:    bus,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The API carries no credentials; same-origin policy adds
			// nothing here.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

type dirtyMessage struct {
	Type     string          `json:"type"`
	Sections []state.Section `json:"sections"`
}

func (h *hub) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Printf("ws upgrade failed: %v", err)
		return
	}
	ch := h.bus.Subscribe()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	go func() {
		defer func() {
			h.bus.Unsubscribe(ch)
			conn.Close()
		}()
		ping := time.NewTicker(wsPingPeriod)
		defer ping.Stop()
		for {
			select {
			case <-done:
				return
			case sections := <-ch:
				conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
				if err := conn.WriteJSON(dirtyMessage{Type: "dirty", Sections: sections}); err != nil {
					return
				}
			case <-ping.C:
				conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()
}

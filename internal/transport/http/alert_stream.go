package http

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"suraksha-sathi/internal/domain"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type streamMessage struct {
	Type    string        `json:"type"`
	Payload *domain.Alert `json:"payload,omitempty"`
}

// handleAlertStream upgrades the request to a websocket and feeds the client
// the stored backlog followed by live alerts. An optional ?region= filter
// limits delivery to that region plus region-"all" broadcasts.
func (a *API) handleAlertStream(w http.ResponseWriter, r *http.Request) {
	region := r.URL.Query().Get("region")

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	backlog, err := a.alerts.Recent(r.Context())
	if err != nil {
		log.Printf("alert backlog read failed: %v", err)
		return
	}
	// Backlog is stored newest first; replay oldest first.
	for i := len(backlog) - 1; i >= 0; i-- {
		if !regionMatches(region, backlog[i].Region) {
			continue
		}
		if err := conn.WriteJSON(streamMessage{Type: "alert", Payload: &backlog[i]}); err != nil {
			return
		}
	}

	updates, cancel := a.alerts.Subscribe()
	defer cancel()

	// Marks the transition from replayed backlog to live delivery.
	if err := conn.WriteJSON(streamMessage{Type: "ready"}); err != nil {
		return
	}

	// Reader goroutine: the client sends nothing meaningful, but reading is
	// what detects the closed connection.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case alert, ok := <-updates:
			if !ok {
				return
			}
			if !regionMatches(region, alert.Region) {
				continue
			}
			if err := conn.WriteJSON(streamMessage{Type: "alert", Payload: &alert}); err != nil {
				return
			}
		case <-closed:
			return
		}
	}
}

func regionMatches(filter, region string) bool {
	return filter == "" || region == filter || region == "all"
}

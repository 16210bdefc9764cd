package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/AnshRaj112/wardline-backend/internal/services"
	"github.com/gorilla/websocket"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = 54 * time.Second
)

var alertUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// CORS is enforced at the HTTP layer; the upgrade itself accepts any origin.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// AlertsWebSocket streams alert events to a connected monitor in real time.
// The session token comes from the Authorization header or, for browser
// WebSocket clients that cannot set headers, the "token" query parameter.
func AlertsWebSocket(w http.ResponseWriter, r *http.Request) {
	token := extractBearerToken(r.Header.Get("Authorization"))
	if token == "" {
		token = r.URL.Query().Get("token")
	}
	if token == "" {
		writeJSON(w, http.StatusUnauthorized, APIResponse{Success: false, Message: "Missing session token"})
		return
	}

	accountID, ok, err := services.ValidateSession(token)
	if err != nil || !ok {
		writeJSON(w, http.StatusUnauthorized, APIResponse{Success: false, Message: "Invalid session token"})
		return
	}

	principal, err := principalService.Get(r.Context(), accountID.String())
	if err != nil {
		respondError(w, err)
		return
	}

	conn, err := alertUpgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade failed: %v", err)
		return
	}

	events, cancel := services.SubscribeAlerts(principal.UID)
	defer cancel()
	defer conn.Close()

	done := make(chan struct{})

	// Reader: we never expect client messages, but reading drives pong
	// handling and detects disconnects.
	go func() {
		defer close(done)
		conn.SetReadLimit(512)
		conn.SetReadDeadline(time.Now().Add(wsPongWait))
		conn.SetPongHandler(func(string) error {
			conn.SetReadDeadline(time.Now().Add(wsPongWait))
			return nil
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case event, open := <-events:
			if !open {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteJSON(event); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		case <-r.Context().Done():
			return
		}
	}
}

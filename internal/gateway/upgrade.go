package gateway

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// ServeHTTP upgrades an incoming HTTP request to a WebSocket connection and
// registers it as a session. Callers mount this at the subscriber endpoint
// (e.g. "/ws") from internal/httpapi's router.
func (m *Manager) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		m.log.Warn("websocket upgrade failed", "error", err)
		return
	}

	if _, err := m.Accept(conn); err != nil {
		env := errorEnvelope{Type: "error", Message: err.Error(), Kind: "capacity"}
		if payload, merr := json.Marshal(env); merr == nil {
			conn.WriteMessage(websocket.TextMessage, payload)
		}
		conn.Close()
	}
}

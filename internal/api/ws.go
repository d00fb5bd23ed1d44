package api

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// ServeWS upgrades a dashboard client to WebSocket. The client gets the
// current snapshot immediately and then every committed mutation via the hub.
func (h *Handler) ServeWS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Errorf("WebSocket upgrade failed: %v", err)
		return
	}

	// The hub sends the initial snapshot under its own mutex; writing here
	// would race the broadcast writer on the same connection.
	payload, err := json.Marshal(h.session.Snapshot())
	if err != nil {
		h.logger.Errorf("Marshal snapshot failed: %v", err)
		payload = nil
	}
	if !h.hub.AddConnection(conn, payload) {
		conn.Close()
		return
	}

	// Read loop only to detect client close; the dashboard never sends.
	go func() {
		defer func() {
			h.hub.RemoveConnection(conn)
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

package ws

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"

	"guardian-monitor/internal/engine"
	"guardian-monitor/internal/logging"
)

// maxConnections caps concurrent dashboard clients.
const maxConnections = 10

// Manager holds the WebSocket connections of dashboard clients and pushes
// every committed snapshot to all of them. Single patient, one connection set.
type Manager struct {
	mu     sync.Mutex
	conns  map[*websocket.Conn]bool
	logger *logging.Logger
}

func NewManager(logger *logging.Logger) *Manager {
	return &Manager{
		conns:  make(map[*websocket.Conn]bool),
		logger: logger,
	}
}

// AddConnection registers a client connection, first sending it the initial
// payload when one is given. The send happens under the hub mutex: gorilla
// allows one concurrent writer per connection, so every write to a registered
// connection must go through this lock. Returns false when the connection cap
// is reached or the initial send fails.
func (m *Manager) AddConnection(conn *websocket.Conn, initial []byte) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.conns) >= maxConnections {
		m.logger.Warnf("Max WebSocket connections reached (%d)", maxConnections)
		return false
	}
	if initial != nil {
		if err := conn.WriteMessage(websocket.TextMessage, initial); err != nil {
			m.logger.Errorf("Initial snapshot send failed: %v", err)
			return false
		}
	}
	m.conns[conn] = true
	m.logger.Infof("Added WebSocket connection (total: %d)", len(m.conns))
	return true
}

// RemoveConnection unregisters a client connection.
func (m *Manager) RemoveConnection(conn *websocket.Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.conns[conn]; exists {
		delete(m.conns, conn)
		m.logger.Infof("Removed WebSocket connection (remaining: %d)", len(m.conns))
	}
}

// Broadcast sends message to every connection, dropping ones that fail.
func (m *Manager) Broadcast(message []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for conn := range m.conns {
		if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
			m.logger.Errorf("Failed to send WebSocket message: %v", err)
			conn.Close()
			delete(m.conns, conn)
		}
	}
}

// Run subscribes to the session and broadcasts each committed snapshot as
// JSON until ctx is cancelled.
func (m *Manager) Run(ctx context.Context, session *engine.Session) {
	snapshots, cancel := session.Subscribe()
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return
		case snap, ok := <-snapshots:
			if !ok {
				return
			}
			payload, err := json.Marshal(snap)
			if err != nil {
				m.logger.Errorf("Marshal snapshot failed: %v", err)
				continue
			}
			m.Broadcast(payload)
		}
	}
}

package http

import (
	"sync"

	"github.com/chalktalk/studio/internal/domain/ports"
)

// Connection represents one connected editor client
type Connection struct {
	ID   string
	Send chan ports.SessionEvent
}

// ConnectionManager tracks WebSocket connections and fans session events out
// to them
type ConnectionManager struct {
	connections map[string]*Connection
	register    chan *Connection
	unregister  chan *Connection
	broadcast   chan ports.SessionEvent
	mu          sync.RWMutex
	done        chan struct{}
	logger      *HTTPLogger
}

// NewConnectionManager creates a new connection manager
func NewConnectionManager(logger *HTTPLogger) *ConnectionManager {
	return &ConnectionManager{
		connections: make(map[string]*Connection),
		register:    make(chan *Connection),
		unregister:  make(chan *Connection),
		broadcast:   make(chan ports.SessionEvent, 16),
		done:        make(chan struct{}),
		logger:      logger,
	}
}

// Run processes connection lifecycle and broadcast events until Stop
func (cm *ConnectionManager) Run() {
	for {
		select {
		case conn := <-cm.register:
			cm.mu.Lock()
			cm.connections[conn.ID] = conn
			count := len(cm.connections)
			cm.mu.Unlock()
			cm.logger.Debug("Client connected: %s (%d active)", conn.ID, count)

		case conn := <-cm.unregister:
			cm.mu.Lock()
			if _, ok := cm.connections[conn.ID]; ok {
				delete(cm.connections, conn.ID)
				close(conn.Send)
			}
			count := len(cm.connections)
			cm.mu.Unlock()
			cm.logger.Debug("Client disconnected: %s (%d active)", conn.ID, count)

		case event := <-cm.broadcast:
			cm.mu.RLock()
			for _, conn := range cm.connections {
				select {
				case conn.Send <- event:
				default:
					// Slow consumer, drop the event rather than block the loop
					cm.logger.Warn("Dropping event for slow client %s", conn.ID)
				}
			}
			cm.mu.RUnlock()

		case <-cm.done:
			cm.closeAll()
			return
		}
	}
}

// Register adds a connection to the manager
func (cm *ConnectionManager) Register(conn *Connection) {
	cm.register <- conn
}

// Unregister removes a connection from the manager
func (cm *ConnectionManager) Unregister(conn *Connection) {
	cm.unregister <- conn
}

// Broadcast sends an event to all connected clients
func (cm *ConnectionManager) Broadcast(event ports.SessionEvent) {
	select {
	case cm.broadcast <- event:
	case <-cm.done:
	}
}

// Count returns the number of active connections
func (cm *ConnectionManager) Count() int {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return len(cm.connections)
}

// Stop shuts the manager down and closes all connections
func (cm *ConnectionManager) Stop() {
	close(cm.done)
}

func (cm *ConnectionManager) closeAll() {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	for id, conn := range cm.connections {
		close(conn.Send)
		delete(cm.connections, id)
	}
}

package http

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/chalktalk/studio/internal/domain/entities"
	"github.com/chalktalk/studio/internal/domain/ports"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 512
)

// createUpgrader builds a WebSocket upgrader with origin validation driven by
// the server configuration
func createUpgrader(cfg entities.ServerConfig, logger *HTTPLogger) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				// Same-origin requests and non-browser clients
				return true
			}
			if isValidOrigin(origin, cfg) {
				return true
			}
			logger.Warn("Rejected WebSocket origin: %s", origin)
			return false
		},
	}
}

func isValidOrigin(origin string, cfg entities.ServerConfig) bool {
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}

	if cfg.IsDevelopment() {
		return isDevelopmentOrigin(u)
	}
	return isAllowedOrigin(origin, cfg.GetCORSOrigins())
}

// isDevelopmentOrigin accepts loopback and private-network hosts
func isDevelopmentOrigin(u *url.URL) bool {
	host := u.Hostname()
	if host == "localhost" || host == "127.0.0.1" || host == "::1" {
		return true
	}
	if strings.HasPrefix(host, "192.168.") || strings.HasPrefix(host, "10.") {
		return true
	}
	return isPrivateClassB(host)
}

// isPrivateClassB checks the 172.16.0.0/12 range
func isPrivateClassB(host string) bool {
	if !strings.HasPrefix(host, "172.") {
		return false
	}
	parts := strings.Split(host, ".")
	if len(parts) != 4 {
		return false
	}
	second := parts[1]
	switch len(second) {
	case 2:
		return second >= "16" && second <= "31"
	default:
		return false
	}
}

func isAllowedOrigin(origin string, allowed []string) bool {
	for _, candidate := range allowed {
		if candidate == "*" || candidate == origin {
			return true
		}
		// Wildcard subdomains: https://*.example.com
		if strings.HasPrefix(candidate, "https://*.") {
			suffix := strings.TrimPrefix(candidate, "https://*")
			if strings.HasPrefix(origin, "https://") && strings.HasSuffix(origin, suffix) {
				return true
			}
		}
	}
	return false
}

// WebSocketClient bridges one WebSocket connection to the connection manager
type WebSocketClient struct {
	conn    *websocket.Conn
	manager *ConnectionManager
	send    chan ports.SessionEvent
	id      string
	logger  *HTTPLogger
}

// handleWebSocket upgrades the request and starts the client pumps
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("WebSocket upgrade failed: %v", err)
		return
	}

	client := &WebSocketClient{
		conn:    conn,
		manager: s.connections,
		send:    make(chan ports.SessionEvent, 16),
		id:      uuid.NewString(),
		logger:  s.logger,
	}

	s.connections.Register(&Connection{ID: client.id, Send: client.send})

	go client.writePump()
	go client.readPump()
}

// readPump drains inbound messages so control frames are processed. Clients
// do not send application messages; anything received is ignored.
func (c *WebSocketClient) readPump() {
	defer func() {
		c.manager.Unregister(&Connection{ID: c.id, Send: c.send})
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Debug("WebSocket read error: %v", err)
			}
			return
		}
	}
}

// writePump forwards session events to the peer and keeps the connection
// alive with pings
func (c *WebSocketClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case event, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(event); err != nil {
				c.logger.Debug("WebSocket write error: %v", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

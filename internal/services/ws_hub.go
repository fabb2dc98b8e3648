package services

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"giveup-backend/internal/metrics"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const writeWait = 10 * time.Second

// Message types of the session stream
const (
	WSTypeSession = "session"
	WSTypeToken   = "token"
	WSTypeError   = "error"
	WSTypeSignIn  = "sign_in"
	WSTypeSignOut = "sign_out"
)

// WSMessage represents a WebSocket message
type WSMessage struct {
	Type    string `json:"type"`
	IDToken string `json:"id_token,omitempty"`
	Token   string `json:"token,omitempty"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// wsConn serializes writes; gorilla connections allow one concurrent writer
type wsConn struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

func (c *wsConn) write(data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// WSHub manages session stream connections, keyed by connection ID
type WSHub struct {
	mu          sync.RWMutex
	connections map[string]*wsConn
	metrics     *metrics.Metrics
}

// NewWSHub creates a new WebSocket hub
func NewWSHub(m *metrics.Metrics) *WSHub {
	return &WSHub{
		connections: make(map[string]*wsConn),
		metrics:     m,
	}
}

// Register registers a new WebSocket connection
func (h *WSHub) Register(connID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if existing, exists := h.connections[connID]; exists {
		existing.conn.Close()
	} else {
		h.metrics.SessionOpened()
	}
	h.connections[connID] = &wsConn{conn: conn}

	log.Info().Str("conn_id", connID).Msg("WebSocket connection registered")
}

// Unregister closes and removes a WebSocket connection
func (h *WSHub) Unregister(connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if c, exists := h.connections[connID]; exists {
		c.conn.Close()
		delete(h.connections, connID)
		h.metrics.SessionClosed()
		log.Info().Str("conn_id", connID).Msg("WebSocket connection unregistered")
	}
}

// Send sends a message to one connection
func (h *WSHub) Send(connID string, message WSMessage) error {
	h.mu.RLock()
	c, exists := h.connections[connID]
	h.mu.RUnlock()

	if !exists {
		return fmt.Errorf("connection %s is not registered", connID)
	}

	data, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	if err := c.write(data); err != nil {
		h.Unregister(connID)
		return fmt.Errorf("failed to send message: %w", err)
	}

	return nil
}

// Count returns the number of registered connections
func (h *WSHub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections)
}

// CloseAll sends a close frame to every connection and forgets them
func (h *WSHub) CloseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	closeMsg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
	for connID, c := range h.connections {
		c.writeMu.Lock()
		_ = c.conn.WriteControl(websocket.CloseMessage, closeMsg, time.Now().Add(time.Second))
		c.writeMu.Unlock()
		c.conn.Close()
		delete(h.connections, connID)
		h.metrics.SessionClosed()
	}

	log.Info().Msg("All WebSocket connections closed")
}

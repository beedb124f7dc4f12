package websocket

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/iamasit07/reverse-tictactoe/backend/internal/domain"
)

const writeWait = 10 * time.Second

// client pairs a socket with the lock that serializes writes to it.
// conn.WriteJSON is not safe for concurrent use.
type client struct {
	conn     *websocket.Conn
	username string
	writeMu  sync.Mutex
}

// ConnectionManager handles active WebSocket connections thread-safely
type ConnectionManager struct {
	clients map[int64]*client
	mu      sync.RWMutex // Protects the map itself
}

func NewConnectionManager() *ConnectionManager {
	return &ConnectionManager{
		clients: make(map[int64]*client),
	}
}

// AddConnection registers a connection. An older socket of the same user is closed.
func (cm *ConnectionManager) AddConnection(userID int64, conn *websocket.Conn, username string) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if old, exists := cm.clients[userID]; exists {
		old.conn.Close()
	}
	cm.clients[userID] = &client{conn: conn, username: username}
}

// RemoveConnection removes a user's connection and closes it
func (cm *ConnectionManager) RemoveConnection(userID int64) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if c, exists := cm.clients[userID]; exists {
		c.conn.Close()
		delete(cm.clients, userID)
	}
}

// RemoveConnectionIfMatching only removes conn if it is still the user's current socket,
// so cleanup of a replaced socket never closes its successor.
func (cm *ConnectionManager) RemoveConnectionIfMatching(userID int64, conn *websocket.Conn) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if c, exists := cm.clients[userID]; exists && c.conn == conn {
		c.conn.Close()
		delete(cm.clients, userID)
	}
}

func (cm *ConnectionManager) IsCurrentConnection(userID int64, conn *websocket.Conn) bool {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	c, exists := cm.clients[userID]
	return exists && c.conn == conn
}

// SendMessage writes a JSON message to a user. Offline users are ignored.
func (cm *ConnectionManager) SendMessage(userID int64, message domain.ServerMessage) error {
	return cm.send(userID, message)
}

func (cm *ConnectionManager) SendError(userID int64, text string) error {
	return cm.send(userID, domain.ErrorMessage{Type: "error", Message: text})
}

func (cm *ConnectionManager) send(userID int64, v interface{}) error {
	cm.mu.RLock()
	c, exists := cm.clients[userID]
	cm.mu.RUnlock()
	if !exists {
		return nil
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.conn.WriteJSON(v); err != nil {
		log.Debug().Str("component", "ws").Int64("user", userID).Err(err).Msg("write failed")
		return err
	}
	return nil
}

// DisconnectUser tells the user why and closes the socket.
func (cm *ConnectionManager) DisconnectUser(userID int64, reason string) {
	_ = cm.SendMessage(userID, domain.ServerMessage{Type: "force_disconnect", Message: reason})
	cm.RemoveConnection(userID)
}

// GetUsername returns the username for a connected user
func (cm *ConnectionManager) GetUsername(userID int64) (string, bool) {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	c, exists := cm.clients[userID]
	if !exists {
		return "", false
	}
	return c.username, true
}

func (cm *ConnectionManager) Count() int {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return len(cm.clients)
}

package websocket

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/iamasit07/5-in-a-row/backend/internal/domain"
)

// writeWait bounds a single write. Room events are sent while the room is
// locked, so a stalled peer holds up its room for at most this long per event.
const writeWait = 2 * time.Second

// ConnectionManager handles active WebSocket connections thread-safely
type ConnectionManager struct {
	connections map[string]*websocket.Conn
	names       map[string]string

	// rooms records the room each connection id sits in. It outlives a socket
	// replaced by a reconnect with the same id.
	rooms map[string]string

	// writeMu serialises writes per socket; conn.WriteJSON is not safe for
	// concurrent use.
	writeMu map[string]*sync.Mutex

	mu sync.RWMutex // Protects the maps themselves
}

func NewConnectionManager() *ConnectionManager {
	return &ConnectionManager{
		connections: make(map[string]*websocket.Conn),
		names:       make(map[string]string),
		rooms:       make(map[string]string),
		writeMu:     make(map[string]*sync.Mutex),
	}
}

// AddConnection registers a socket under connectionID. A previous socket with
// the same id (a player reconnecting with the same token) is closed.
func (cm *ConnectionManager) AddConnection(connectionID string, conn *websocket.Conn, name string) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if oldConn, exists := cm.connections[connectionID]; exists {
		oldConn.Close()
	}

	cm.connections[connectionID] = conn
	cm.names[connectionID] = name
	cm.writeMu[connectionID] = &sync.Mutex{}
}

// RemoveConnectionIfMatching drops connectionID only while it still points at
// conn, so cleanup of a replaced socket leaves the new one alone. It returns the
// room the connection was in and whether anything was removed.
func (cm *ConnectionManager) RemoveConnectionIfMatching(connectionID string, conn *websocket.Conn) (string, bool) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	currentConn, exists := cm.connections[connectionID]
	if !exists || currentConn != conn {
		return "", false
	}
	roomID := cm.rooms[connectionID]
	currentConn.Close()
	delete(cm.connections, connectionID)
	delete(cm.names, connectionID)
	delete(cm.writeMu, connectionID)
	delete(cm.rooms, connectionID)
	return roomID, true
}

// SetRoom records roomID as the room of connectionID; "" clears it.
func (cm *ConnectionManager) SetRoom(connectionID, roomID string) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if roomID == "" {
		delete(cm.rooms, connectionID)
		return
	}
	cm.rooms[connectionID] = roomID
}

func (cm *ConnectionManager) CurrentRoom(connectionID string) string {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.rooms[connectionID]
}

func (cm *ConnectionManager) IsCurrentConnection(connectionID string, conn *websocket.Conn) bool {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	currentConn, exists := cm.connections[connectionID]
	return exists && currentConn == conn
}

// SendMessage writes message to one connection. Unknown ids are ignored since
// the peer has already gone.
func (cm *ConnectionManager) SendMessage(connectionID string, message domain.ServerMessage) error {
	cm.mu.RLock()
	conn, exists := cm.connections[connectionID]
	mu, muExists := cm.writeMu[connectionID]
	cm.mu.RUnlock()

	if !exists || !muExists {
		return nil
	}

	mu.Lock()
	defer mu.Unlock()

	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(message)
}

// Ping sends a control ping under the same write lock as messages.
func (cm *ConnectionManager) Ping(connectionID string) error {
	cm.mu.RLock()
	conn, exists := cm.connections[connectionID]
	mu, muExists := cm.writeMu[connectionID]
	cm.mu.RUnlock()

	if !exists || !muExists {
		return websocket.ErrCloseSent
	}

	mu.Lock()
	defer mu.Unlock()
	return conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
}

func (cm *ConnectionManager) GetName(connectionID string) (string, bool) {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	name, exists := cm.names[connectionID]
	return name, exists
}

func (cm *ConnectionManager) Count() int {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return len(cm.connections)
}

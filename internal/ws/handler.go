package ws

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/playarena/backend/internal/game"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins in development
	},
}

// Client represents a connected WebSocket client. userID stays empty until
// the client identifies itself with a userInfo message.
type Client struct {
	conn   *websocket.Conn
	server *GameServer
	userID string
	// expectedUserID is the JWT subject when the connection carried a
	// token; identification must match it.
	expectedUserID string
	send           chan []byte
}

// Hub maintains the set of identified clients and their room channels.
// It delivers the coordinator's events, satisfying game.Notifier.
type Hub struct {
	clients map[string]*Client            // userID -> Client
	rooms   map[string]map[string]*Client // roomID -> userID -> Client
	mu      sync.RWMutex
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*Client),
		rooms:   make(map[string]map[string]*Client),
	}
}

// Bind registers the client under userID. An existing connection for the
// same user is closed and replaced; the newcomer inherits its room
// memberships so a reconnect lands back in its game channel.
func (h *Hub) Bind(client *Client, userID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if old, exists := h.clients[userID]; exists && old != client {
		log.Printf("[WS] User %s reconnecting - closing old connection", userID)
		if err := old.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "replaced by new connection"), time.Now().Add(5*time.Second)); err != nil {
			log.Printf("[WS] Error writing close control to old client %s: %v", userID, err)
		}
		old.conn.Close()
		select {
		case <-old.send:
		default:
			close(old.send)
		}
		for _, room := range h.rooms {
			if room[userID] == old {
				room[userID] = client
			}
		}
	}

	client.userID = userID
	h.clients[userID] = client
	log.Printf("[WS] User %s connected", userID)
}

// Unbind removes the client if it is still the user's current connection.
// Returns true when the caller should report the user as disconnected; a
// replaced connection returns false so the reconnect is seamless.
func (h *Hub) Unbind(client *Client) bool {
	if client.userID == "" {
		return false
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	cur, ok := h.clients[client.userID]
	if !ok || cur != client {
		return false
	}
	delete(h.clients, client.userID)
	for roomID, room := range h.rooms {
		if room[client.userID] == client {
			delete(room, client.userID)
			if len(room) == 0 {
				delete(h.rooms, roomID)
			}
		}
	}
	select {
	case <-client.send:
	default:
		close(client.send)
	}
	log.Printf("[WS] User %s disconnected", client.userID)
	return true
}

// ToUser sends an event to one user.
func (h *Hub) ToUser(userID string, ev game.Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		log.Printf("[WS] Error marshaling message: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	if client, exists := h.clients[userID]; exists {
		select {
		case client.send <- data:
		default:
			log.Printf("[WS] Dropped %s message for user %s (buffer full)", ev.Type, userID)
		}
	}
}

// ToRoom sends an event to every member of a room channel.
func (h *Hub) ToRoom(roomID string, ev game.Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		log.Printf("[WS] Error marshaling message: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for userID, client := range h.rooms[roomID] {
		select {
		case client.send <- data:
		default:
			log.Printf("[WS] Dropped %s message for user %s in room %s (buffer full)", ev.Type, userID, roomID)
		}
	}
}

// ToAll broadcasts an event to every identified client.
func (h *Hub) ToAll(ev game.Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		log.Printf("[WS] Error marshaling message: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for userID, client := range h.clients {
		select {
		case client.send <- data:
		default:
			log.Printf("[WS] Dropped %s broadcast for user %s (buffer full)", ev.Type, userID)
		}
	}
}

// JoinRoom adds the users' current connections to a room channel.
func (h *Hub) JoinRoom(roomID string, userIDs ...string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, exists := h.rooms[roomID]; !exists {
		h.rooms[roomID] = make(map[string]*Client)
	}
	for _, userID := range userIDs {
		if client, ok := h.clients[userID]; ok {
			h.rooms[roomID][userID] = client
		}
	}
}

// CloseRoom drops the room channel. Member connections stay open.
func (h *Hub) CloseRoom(roomID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.rooms, roomID)
}

// WSMessage is the inbound message envelope.
type WSMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// writePump writes messages to the WebSocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				// Channel closed; connection is being replaced or cleaned up.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Printf("[WS] Write error for user %s: %v", c.userID, err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Printf("[WS] Ping error for user %s: %v", c.userID, err)
				return
			}
		}
	}
}

// sendError sends an error message to the client.
func (c *Client) sendError(message string) {
	data, _ := json.Marshal(map[string]interface{}{
		"type": "error",
		"data": map[string]string{"message": message},
	})
	select {
	case c.send <- data:
	default:
	}
}

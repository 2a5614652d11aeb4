// internal/realtime/hub.go
package realtime

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/google/uuid"
)

// Client is one live websocket session. A client sits in at most one project
// room at a time; rooms is kept as a set so unregister can prune everything
// the transport left behind.
type Client struct {
	ID     string
	UserID uuid.UUID
	Conn   *WebSocketConn
	Send   chan []byte

	rooms map[string]bool // guarded by Hub.mu
}

func NewClient(userID uuid.UUID, conn *WebSocketConn) *Client {
	return &Client{
		ID:     uuid.New().String(),
		UserID: userID,
		Conn:   conn,
		Send:   make(chan []byte, 256),
		rooms:  make(map[string]bool),
	}
}

// Hub tracks live sessions and their room membership, keyed by project id.
type Hub struct {
	clients    map[string]*Client
	rooms      map[string]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		rooms:      make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

func (h *Hub) RegisterClient(client *Client) {
	h.register <- client
}

func (h *Hub) UnregisterClient(client *Client) {
	h.unregister <- client
}

// JoinRoom subscribes the client to a project room. Authorization happens
// before this is called; the hub only tracks membership.
func (h *Hub) JoinRoom(client *Client, roomID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[roomID]
	if !ok {
		room = make(map[*Client]bool)
		h.rooms[roomID] = room
	}
	room[client] = true
	client.rooms[roomID] = true
	log.Printf("Client %s joined room %s (%d members)", client.ID, roomID, len(room))
}

// InRoom reports whether the client currently belongs to the room.
func (h *Hub) InRoom(client *Client, roomID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return client.rooms[roomID]
}

// RoomSize returns the number of live sessions subscribed to a room.
func (h *Hub) RoomSize(roomID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomID])
}

// SendToClient delivers a payload privately to one session.
func (h *Hub) SendToClient(client *Client, v interface{}) {
	payload, err := json.Marshal(v)
	if err != nil {
		log.Printf("Error marshaling payload: %v", err)
		return
	}
	select {
	case client.Send <- payload:
	default:
		// kalau penuh, skip (jangan block)
	}
}

// BroadcastToRoom fans a payload out to every session in the room except the
// originator.
func (h *Hub) BroadcastToRoom(roomID string, v interface{}, except *Client) {
	payload, err := json.Marshal(v)
	if err != nil {
		log.Printf("Error marshaling broadcast payload: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.rooms[roomID] {
		if client == except {
			continue
		}
		select {
		case client.Send <- payload:
		default:
		}
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.ID] = client
			h.mu.Unlock()
			log.Printf("Client registered: %s (UserID: %s)", client.ID, client.UserID)

		case client := <-h.unregister:
			h.mu.Lock()
			if old, ok := h.clients[client.ID]; ok {
				delete(h.clients, client.ID)
				// prune room membership left by the dead transport
				for roomID := range old.rooms {
					if room, exists := h.rooms[roomID]; exists {
						delete(room, old)
						if len(room) == 0 {
							delete(h.rooms, roomID)
						}
					}
				}
				close(old.Send)
				log.Printf("Client unregistered: %s", client.ID)
			}
			h.mu.Unlock()
		}
	}
}

// server/internal/socket/hub.go
package socket

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

// Room topic prefixes. The workflow engine computes a target set of rooms
// per event; clients are joined to their rooms at connect time.
const (
	UserRoomPrefix   = "user-"
	RoleRoomPrefix   = "role-"
	BranchRoomPrefix = "branch-"
)

func UserRoom(serviceNo string) string { return UserRoomPrefix + serviceNo }
func RoleRoom(role string) string      { return RoleRoomPrefix + role }
func BranchRoom(branch string) string  { return BranchRoomPrefix + branch }

// Event is the wire envelope pushed to subscribers.
type Event struct {
	Name    string      `json:"name"`
	Payload interface{} `json:"payload"`
}

// Hub manages WebSocket clients grouped into topic rooms.
type Hub struct {
	// rooms maps a room name to the set of member connections.
	rooms map[string]map[*websocket.Conn]bool
	// membership tracks which rooms a connection joined, for cleanup.
	membership map[*websocket.Conn][]string
	mu         sync.RWMutex
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[string]map[*websocket.Conn]bool),
		membership: make(map[*websocket.Conn][]string),
	}
}

// Register joins a connection to a set of rooms.
func (h *Hub) Register(conn *websocket.Conn, rooms []string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, room := range rooms {
		if h.rooms[room] == nil {
			h.rooms[room] = make(map[*websocket.Conn]bool)
		}
		h.rooms[room][conn] = true
	}
	h.membership[conn] = append(h.membership[conn], rooms...)
	log.Printf("WebSocket client registered in rooms: %v", rooms)
}

// Unregister removes a connection from every room it joined.
func (h *Hub) Unregister(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, room := range h.membership[conn] {
		if members, ok := h.rooms[room]; ok {
			delete(members, conn)
			if len(members) == 0 {
				delete(h.rooms, room)
			}
		}
	}
	delete(h.membership, conn)
}

// Publish broadcasts a named event to every member of the target rooms. A
// connection in several target rooms receives the event once. Missing rooms
// or write failures are not errors; there is no delivery guarantee.
func (h *Hub) Publish(name string, payload interface{}, targets []string) {
	data, err := json.Marshal(Event{Name: name, Payload: payload})
	if err != nil {
		log.Printf("Failed to marshal event %q: %v", name, err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	seen := make(map[*websocket.Conn]bool)
	for _, room := range targets {
		for conn := range h.rooms[room] {
			if seen[conn] {
				continue
			}
			seen[conn] = true
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Printf("Failed to push event %q to a subscriber: %v", name, err)
			}
		}
	}
}

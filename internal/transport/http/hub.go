package http

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"live-quiz-service/internal/domain"
)

const sendBufferSize = 32

// Hub maps durable client identities to websocket delivery channels and
// tracks room membership. It is the app layer's Broadcaster: fan-out to a
// room, unicast to one client, never blocking the caller.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*client
	rooms   map[string]map[string]*client
}

type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*client),
		rooms:   make(map[string]map[string]*client),
	}
}

type outboundMessage struct {
	Type    string       `json:"type"`
	Payload domain.Event `json:"payload"`
}

// register adds a connected client and starts its writer goroutine. One
// writer per connection keeps gorilla's single-writer contract.
func (h *Hub) register(c *client) {
	h.mu.Lock()
	h.clients[c.id] = c
	h.mu.Unlock()

	go func() {
		for data := range c.send {
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		}
	}()
}

// unregister drops the client from every room and closes its send channel.
func (h *Hub) unregister(clientID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c, ok := h.clients[clientID]
	if !ok {
		return
	}
	delete(h.clients, clientID)
	for code, members := range h.rooms {
		delete(members, clientID)
		if len(members) == 0 {
			delete(h.rooms, code)
		}
	}
	close(c.send)
}

// Subscribe adds clientID to roomCode's membership.
func (h *Hub) Subscribe(clientID, roomCode string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c, ok := h.clients[clientID]
	if !ok {
		return
	}
	members, ok := h.rooms[roomCode]
	if !ok {
		members = make(map[string]*client)
		h.rooms[roomCode] = members
	}
	members[clientID] = c
}

// Unsubscribe removes clientID from roomCode. Idempotent.
func (h *Hub) Unsubscribe(clientID, roomCode string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	members, ok := h.rooms[roomCode]
	if !ok {
		return
	}
	delete(members, clientID)
	if len(members) == 0 {
		delete(h.rooms, roomCode)
	}
}

// BroadcastToRoom delivers event to every member of roomCode.
func (h *Hub) BroadcastToRoom(roomCode string, event domain.Event) {
	data, err := json.Marshal(outboundMessage{Type: event.EventType(), Payload: event})
	if err != nil {
		log.Error().Err(err).Str("event", event.EventType()).Msg("marshal broadcast")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.rooms[roomCode] {
		h.trySend(c, data, event.EventType())
	}
}

// SendToClient delivers event to one connected client, if present.
func (h *Hub) SendToClient(clientID string, event domain.Event) {
	data, err := json.Marshal(outboundMessage{Type: event.EventType(), Payload: event})
	if err != nil {
		log.Error().Err(err).Str("event", event.EventType()).Msg("marshal unicast")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	if c, ok := h.clients[clientID]; ok {
		h.trySend(c, data, event.EventType())
	}
}

// trySend enqueues without blocking. A client whose buffer is full gets its
// connection closed; the read loop then runs the normal disconnect path.
func (h *Hub) trySend(c *client, data []byte, eventType string) {
	select {
	case c.send <- data:
	default:
		log.Warn().Str("client", c.id).Str("event", eventType).Msg("send buffer full, dropping client")
		go c.conn.Close()
	}
}

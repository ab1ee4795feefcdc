// Package realtime pushes committed entity-change events to connected
// clients over WebSocket. Clients subscribe to their organization's room;
// the outbox relay feeds the hub, so every delivered event reflects a
// committed transaction.
package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"taskhive/internal/core/id"
	"taskhive/internal/infrastructure/storage/postgres"
	"taskhive/pkg/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 64
)

// Event is the wire format pushed to clients.
type Event struct {
	EntityType string          `json:"entityType"`
	EntityID   id.ID           `json:"entityId"`
	EventType  string          `json:"eventType"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	OccurredAt time.Time       `json:"occurredAt"`
}

// Client is one WebSocket connection scoped to an organization room.
type Client struct {
	hub   *Hub
	conn  *websocket.Conn
	orgID id.ID
	send  chan []byte
}

// Hub routes events to clients by organization.
type Hub struct {
	mu    sync.RWMutex
	rooms map[id.ID]map[*Client]struct{}

	register   chan *Client
	unregister chan *Client
	broadcast  chan roomMessage
}

type roomMessage struct {
	orgID id.ID
	data  []byte
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[id.ID]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan roomMessage, 256),
	}
}

// Run processes registrations and broadcasts until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case c := <-h.register:
			h.mu.Lock()
			room, ok := h.rooms[c.orgID]
			if !ok {
				room = make(map[*Client]struct{})
				h.rooms[c.orgID] = room
			}
			room[c] = struct{}{}
			h.mu.Unlock()

		case c := <-h.unregister:
			h.mu.Lock()
			if room, ok := h.rooms[c.orgID]; ok {
				if _, ok := room[c]; ok {
					delete(room, c)
					close(c.send)
					if len(room) == 0 {
						delete(h.rooms, c.orgID)
					}
				}
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.RLock()
			for c := range h.rooms[msg.orgID] {
				select {
				case c.send <- msg.data:
				default:
					// Slow consumer; drop the connection rather than block
					// the hub.
					go func(c *Client) { h.unregister <- c }(c)
				}
			}
			h.mu.RUnlock()
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for orgID, room := range h.rooms {
		for c := range room {
			close(c.send)
		}
		delete(h.rooms, orgID)
	}
}

// Broadcast pushes an event to every client in the organization's room.
func (h *Hub) Broadcast(orgID id.ID, ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	h.broadcast <- roomMessage{orgID: orgID, data: data}
	return nil
}

// Subscribers returns the number of connections in the organization's room.
func (h *Hub) Subscribers(orgID id.ID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[orgID])
}

// Attach registers a connection and starts its pumps.
func (h *Hub) Attach(conn *websocket.Conn, orgID id.ID) *Client {
	c := &Client{
		hub:   h,
		conn:  conn,
		orgID: orgID,
		send:  make(chan []byte, sendBuffer),
	}
	h.register <- c

	go c.writePump()
	go c.readPump()

	return c
}

// readPump discards inbound frames; the stream is server-to-client only.
// It exists to process pongs and detect closed connections.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
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
				logger.Debug(context.Background(), "websocket read error", "error", err)
			}
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
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

// OutboxHandler adapts the hub to the outbox relay: each committed outbox
// message becomes a broadcast to the owning organization's room.
type OutboxHandler struct {
	hub *Hub
}

// NewOutboxHandler creates the relay-side adapter.
func NewOutboxHandler(hub *Hub) *OutboxHandler {
	return &OutboxHandler{hub: hub}
}

// Handle implements postgres.OutboxHandler.
func (h *OutboxHandler) Handle(ctx context.Context, msg *postgres.OutboxMessage) error {
	return h.hub.Broadcast(msg.OrgID, Event{
		EntityType: msg.EntityType,
		EntityID:   msg.EntityID,
		EventType:  msg.EventType,
		Payload:    msg.Payload,
		OccurredAt: msg.CreatedAt,
	})
}

var _ postgres.OutboxHandler = (*OutboxHandler)(nil)

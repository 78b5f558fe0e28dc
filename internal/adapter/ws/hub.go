// Package ws serves the admin live feed (GET /ws/live): a read-only
// broadcast of station status and session-lifecycle events, adapted from
// the teacher's generic chat-shaped websocket hub.
package ws

import (
	"sync"

	"github.com/gofiber/websocket/v2"
)

// Hub fans a single broadcast stream out to every connected admin viewer.
type Hub struct {
	clients    map[*client]bool
	broadcast  chan []byte
	register   chan *client
	unregister chan *client
	mu         sync.RWMutex
}

type client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*client]bool),
		broadcast:  make(chan []byte),
		register:   make(chan *client),
		unregister: make(chan *client),
	}
}

// Run drives the hub's event loop; call it once in its own goroutine.
func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			h.mu.Unlock()
		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			h.mu.Unlock()
		case msg := <-h.broadcast:
			h.mu.RLock()
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					close(c.send)
					delete(h.clients, c)
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Broadcast pushes a JSON event to every connected viewer.
func (h *Hub) Broadcast(payload []byte) {
	h.broadcast <- payload
}

// Serve registers conn with the hub and pumps frames until it disconnects.
// Read-only: no station credentials exchanged here, so inbound frames are
// only drained to keep the connection alive.
func (h *Hub) Serve(conn *websocket.Conn) {
	c := &client{hub: h, conn: conn, send: make(chan []byte, 64)}
	h.register <- c

	go c.writePump()
	c.readPump()
}

func (c *client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			break
		}
	}
}

func (c *client) writePump() {
	defer c.conn.Close()
	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

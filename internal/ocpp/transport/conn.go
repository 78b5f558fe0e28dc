// Package transport implements the Transport Gateway: WebSocket upgrade
// handling, OCPP 1.6-J framing, and the read loop that hands CALLs to the
// Action Dispatcher and routes CALLRESULT/CALLERROR to the Connection
// Registry's waiters.
package transport

import (
	"sync"

	"github.com/gorilla/websocket"
)

// Conn wraps a *websocket.Conn with its own write mutex so that CALLRESULT
// replies written from the read loop and outbound RemoteStart/RemoteStop
// CALLs written from the Payment Bridge never interleave a partial frame.
type Conn struct {
	ws *websocket.Conn
	mu sync.Mutex
}

func NewConn(ws *websocket.Conn) *Conn {
	return &Conn{ws: ws}
}

// WriteFrame implements registry.Transport.
func (c *Conn) WriteFrame(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ws.WriteMessage(websocket.TextMessage, data)
}

// ReadMessage reads the next text frame. Not safe to call concurrently with
// itself, which is fine: the Gateway's read loop is the only reader.
func (c *Conn) ReadMessage() ([]byte, error) {
	_, data, err := c.ws.ReadMessage()
	return data, err
}

func (c *Conn) Close() error {
	return c.ws.Close()
}

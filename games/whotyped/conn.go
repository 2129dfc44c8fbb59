/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package whotyped

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	maxMessageSize = 4096
	sendQueue      = 32
)

// wsConn adapts a websocket to Conn. A full send queue closes the
// connection rather than blocking the hub.
type wsConn struct {
	conn *websocket.Conn
	send chan Message

	mu     sync.Mutex
	closed bool
}

func newWSConn(conn *websocket.Conn) *wsConn {
	return &wsConn{
		conn: conn,
		send: make(chan Message, sendQueue),
	}
}

func (c *wsConn) Send(msg Message) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}

	select {
	case c.send <- msg:
		return true
	default:
		c.closeLocked()
		return false
	}
}

func (c *wsConn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closeLocked()
}

func (c *wsConn) closeLocked() {
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// Serve runs the pumps for an upgraded websocket until it disconnects.
func (h *Hub) Serve(conn *websocket.Conn) {
	c := newWSConn(conn)

	id := h.Connect(c)
	if id == "" {
		_ = conn.Close()
		return
	}

	go c.writePump()
	c.readPump(h, id, h.log)
}

func (c *wsConn) readPump(h *Hub, clientID string, logger zerolog.Logger) {
	defer func() {
		h.Disconnect(clientID)
		_ = c.conn.Close()
	}()

	limiter := rate.NewLimiter(10, 20)

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		if !limiter.Allow() {
			logger.Warn().Str("client", clientID).Msg("GAMES: dropped message over rate limit")
			continue
		}

		h.Receive(clientID, data)
	}
}

func (c *wsConn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
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

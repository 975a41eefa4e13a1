package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	users "github.com/AdamBeresnev/pitch-perfect/internal/user"
	"github.com/gorilla/websocket"
)

// Client is one websocket connection. topics is guarded by the hub's mutex.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	user   *users.User
	topics map[string]struct{}
}

func (c *Client) User() *users.User { return c.user }

// Subscribe adds the client to topic as if it had sent a subscribe message.
func (c *Client) Subscribe(topic string) { c.hub.Subscribe(c, topic) }

func (c *Client) Unsubscribe(topic string) { c.hub.Unsubscribe(c, topic) }

// Send queues a message for this client only.
func (c *Client) Send(msgType, topic string, data any) {
	b, err := json.Marshal(Outbound{Type: msgType, Topic: topic, Data: data, Timestamp: time.Now().UTC()})
	if err != nil {
		slog.Error("failed to marshal websocket message", "type", msgType, "error", err)
		return
	}
	c.hub.mu.RLock()
	defer c.hub.mu.RUnlock()
	if _, ok := c.hub.clients[c]; ok {
		c.enqueue(b)
	}
}

func (c *Client) SendError(err error) {
	c.Send(TypeError, "", errorData{Message: err.Error()})
}

// enqueue must be called with the hub lock held so send is not closed underneath it.
func (c *Client) enqueue(b []byte) bool {
	select {
	case c.send <- b:
		return true
	default:
		return false
	}
}

func (c *Client) readPump(ctx context.Context) {
	defer c.conn.Close()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				slog.Warn("websocket read failed", "user_id", c.user.ID, "error", err)
			}
			return
		}

		var msg Inbound
		if err := json.Unmarshal(data, &msg); err != nil {
			c.Send(TypeError, "", errorData{Message: "malformed message"})
			continue
		}
		c.hub.dispatch(ctx, c, msg)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

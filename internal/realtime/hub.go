package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/AdamBeresnev/pitch-perfect/internal/events"
	users "github.com/AdamBeresnev/pitch-perfect/internal/user"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8192
	sendBuffer     = 256
)

// Handler receives connection lifecycle callbacks, topic subscription changes
// requested by the client and every inbound message the hub does not handle
// itself. A Subscribed error undoes the subscription.
type Handler interface {
	Connected(ctx context.Context, c *Client)
	Disconnected(ctx context.Context, c *Client)
	Subscribed(ctx context.Context, c *Client, topic string) error
	Unsubscribed(ctx context.Context, c *Client, topic string) error
	HandleMessage(ctx context.Context, c *Client, msg Inbound) error
}

// Hub tracks websocket clients and their topic subscriptions. It implements
// events.Publisher by fanning events out to the subscribers of their topic.
type Hub struct {
	mu       sync.RWMutex
	clients  map[*Client]struct{}
	topics   map[string]map[*Client]struct{}
	handler  Handler
	upgrader websocket.Upgrader
}

func NewHub(handler Handler, checkOrigin func(r *http.Request) bool) *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		topics:  make(map[string]map[*Client]struct{}),
		handler: handler,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
	}
}

// ServeWS upgrades the request and blocks until the connection ends.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, user *users.User) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "error", err)
		return
	}

	ctx, cancel := context.WithCancel(context.WithoutCancel(r.Context()))
	defer cancel()

	c := &Client{
		hub:    h,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		user:   user,
		topics: make(map[string]struct{}),
	}
	h.register(c)
	go c.writePump()

	c.Send(TypeConnected, "", user)
	h.handler.Connected(ctx, c)
	slog.Info("websocket client connected", "user_id", user.ID)

	c.readPump(ctx)

	h.unregister(c)
	h.handler.Disconnected(ctx, c)
	slog.Info("websocket client disconnected", "user_id", user.ID)
}

func (h *Hub) Publish(ctx context.Context, e events.Event) error {
	data, err := json.Marshal(Outbound{Type: e.Type, Topic: e.Topic, Data: e.Payload, Timestamp: e.Timestamp})
	if err != nil {
		return err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.topics[e.Topic] {
		if !c.enqueue(data) {
			slog.Warn("dropping slow websocket client", "user_id", c.user.ID, "topic", e.Topic)
			c.conn.Close()
		}
	}
	return nil
}

func (h *Hub) Subscribe(c *Client, topic string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	subs, ok := h.topics[topic]
	if !ok {
		subs = make(map[*Client]struct{})
		h.topics[topic] = subs
	}
	subs[c] = struct{}{}
	c.topics[topic] = struct{}{}
}

func (h *Hub) Unsubscribe(c *Client, topic string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.unsubscribeLocked(c, topic)
}

func (h *Hub) unsubscribeLocked(c *Client, topic string) {
	subs := h.topics[topic]
	delete(subs, c)
	if len(subs) == 0 {
		delete(h.topics, topic)
	}
	delete(c.topics, topic)
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) SubscriberCount(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[topic])
}

// Close disconnects every client. ServeWS calls then run their disconnect hooks.
func (h *Hub) Close() {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		c.conn.Close()
	}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	for topic := range c.topics {
		h.unsubscribeLocked(c, topic)
	}
	delete(h.clients, c)
	close(c.send)
}

func (h *Hub) dispatch(ctx context.Context, c *Client, msg Inbound) {
	switch msg.Type {
	case TypeSubscribe:
		if msg.Topic == "" {
			c.SendError(errors.New("topic is required"))
			return
		}
		h.Subscribe(c, msg.Topic)
		if err := h.handler.Subscribed(ctx, c, msg.Topic); err != nil {
			h.Unsubscribe(c, msg.Topic)
			h.reject(c, msg, err)
			return
		}
		c.Send(TypeSubscribed, msg.Topic, nil)
	case TypeUnsubscribe:
		h.Unsubscribe(c, msg.Topic)
		if err := h.handler.Unsubscribed(ctx, c, msg.Topic); err != nil {
			h.reject(c, msg, err)
			return
		}
		c.Send(TypeUnsubscribed, msg.Topic, nil)
	default:
		if err := h.handler.HandleMessage(ctx, c, msg); err != nil {
			h.reject(c, msg, err)
		}
	}
}

func (h *Hub) reject(c *Client, msg Inbound, err error) {
	slog.Warn("websocket message rejected", "type", msg.Type, "topic", msg.Topic, "user_id", c.user.ID, "error", err)
	c.SendError(err)
}

package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/AdamBeresnev/pitch-perfect/internal/events"
	users "github.com/AdamBeresnev/pitch-perfect/internal/user"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHandler struct {
	connected    chan *Client
	disconnected chan *Client
	messages     chan Inbound
	subscribed   chan string
	unsubscribed chan string
}

func newFakeHandler() *fakeHandler {
	return &fakeHandler{
		connected:    make(chan *Client, 4),
		disconnected: make(chan *Client, 4),
		messages:     make(chan Inbound, 4),
		subscribed:   make(chan string, 4),
		unsubscribed: make(chan string, 4),
	}
}

func (f *fakeHandler) Connected(_ context.Context, c *Client)    { f.connected <- c }
func (f *fakeHandler) Disconnected(_ context.Context, c *Client) { f.disconnected <- c }

func (f *fakeHandler) Subscribed(_ context.Context, _ *Client, topic string) error {
	if strings.HasPrefix(topic, "private/") {
		return errors.New("topic " + topic + " is not available")
	}
	f.subscribed <- topic
	return nil
}

func (f *fakeHandler) Unsubscribed(_ context.Context, _ *Client, topic string) error {
	f.unsubscribed <- topic
	return nil
}

func (f *fakeHandler) HandleMessage(_ context.Context, c *Client, msg Inbound) error {
	switch msg.Type {
	case "join":
		c.Subscribe("chat/" + msg.Room)
		c.Send("joined", "chat/"+msg.Room, nil)
		return nil
	case "echo":
		f.messages <- msg
		c.Send("echo", "", msg.Data)
		return nil
	}
	return errors.New("unsupported message type " + msg.Type)
}

func setupHub(t *testing.T) (*Hub, *fakeHandler, string) {
	t.Helper()
	handler := newFakeHandler()
	hub := NewHub(handler, func(*http.Request) bool { return true })
	user := &users.User{ID: uuid.New(), Username: "fan"}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.ServeWS(w, r, user)
	}))
	t.Cleanup(srv.Close)
	return hub, handler, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	msg := readMessage(t, conn)
	require.Equal(t, TypeConnected, msg.Type)
	return conn
}

type received struct {
	Type  string          `json:"type"`
	Topic string          `json:"topic"`
	Data  json.RawMessage `json:"data"`
}

func readMessage(t *testing.T, conn *websocket.Conn) received {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg received
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func waitFor[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for hub callback")
	}
	var zero T
	return zero
}

func TestHub_SubscribeAndPublish(t *testing.T) {
	hub, handler, url := setupHub(t)
	conn := dial(t, url)
	waitFor(t, handler.connected)

	require.NoError(t, conn.WriteJSON(Inbound{Type: TypeSubscribe, Topic: "matches/1"}))
	ack := readMessage(t, conn)
	assert.Equal(t, TypeSubscribed, ack.Type)
	assert.Equal(t, "matches/1", ack.Topic)
	assert.Equal(t, 1, hub.SubscriberCount("matches/1"))
	assert.Equal(t, "matches/1", waitFor(t, handler.subscribed))

	require.NoError(t, hub.Publish(context.Background(), events.New("matches/2", events.TypeMatchUpdated, "ignored")))
	require.NoError(t, hub.Publish(context.Background(), events.New("matches/1", events.TypeMatchUpdated, map[string]int{"home_score": 1})))

	msg := readMessage(t, conn)
	assert.Equal(t, events.TypeMatchUpdated, msg.Type)
	assert.Equal(t, "matches/1", msg.Topic)
	assert.JSONEq(t, `{"home_score":1}`, string(msg.Data))

	require.NoError(t, conn.WriteJSON(Inbound{Type: TypeUnsubscribe, Topic: "matches/1"}))
	assert.Equal(t, TypeUnsubscribed, readMessage(t, conn).Type)
	assert.Equal(t, 0, hub.SubscriberCount("matches/1"))
	assert.Equal(t, "matches/1", waitFor(t, handler.unsubscribed))
}

func TestHub_RejectedSubscriptionIsUndone(t *testing.T) {
	hub, _, url := setupHub(t)
	conn := dial(t, url)

	require.NoError(t, conn.WriteJSON(Inbound{Type: TypeSubscribe, Topic: "private/1"}))
	msg := readMessage(t, conn)
	assert.Equal(t, TypeError, msg.Type)
	assert.JSONEq(t, `{"message":"topic private/1 is not available"}`, string(msg.Data))
	assert.Equal(t, 0, hub.SubscriberCount("private/1"))
}

func TestHub_DelegatesToHandler(t *testing.T) {
	hub, handler, url := setupHub(t)
	conn := dial(t, url)

	require.NoError(t, conn.WriteJSON(Inbound{Type: "join", Room: "lobby"}))
	assert.Equal(t, "joined", readMessage(t, conn).Type)
	assert.Equal(t, 1, hub.SubscriberCount("chat/lobby"))

	require.NoError(t, conn.WriteJSON(Inbound{Type: "echo", Data: json.RawMessage(`{"content":"hi"}`)}))
	got := waitFor(t, handler.messages)
	assert.JSONEq(t, `{"content":"hi"}`, string(got.Data))
	echo := readMessage(t, conn)
	assert.Equal(t, "echo", echo.Type)
	assert.JSONEq(t, `{"content":"hi"}`, string(echo.Data))
}

func TestHub_ErrorsAreReportedToClient(t *testing.T) {
	_, _, url := setupHub(t)
	conn := dial(t, url)

	require.NoError(t, conn.WriteJSON(Inbound{Type: "dance"}))
	msg := readMessage(t, conn)
	assert.Equal(t, TypeError, msg.Type)
	assert.JSONEq(t, `{"message":"unsupported message type dance"}`, string(msg.Data))

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	assert.Equal(t, TypeError, readMessage(t, conn).Type)

	require.NoError(t, conn.WriteJSON(Inbound{Type: TypeSubscribe}))
	assert.Equal(t, TypeError, readMessage(t, conn).Type)
}

func TestHub_DisconnectCleansUp(t *testing.T) {
	hub, handler, url := setupHub(t)
	conn := dial(t, url)
	c := waitFor(t, handler.connected)

	require.NoError(t, conn.WriteJSON(Inbound{Type: TypeSubscribe, Topic: "presence/global"}))
	readMessage(t, conn)
	assert.Equal(t, 1, hub.ClientCount())

	require.NoError(t, conn.Close())
	gone := waitFor(t, handler.disconnected)
	assert.Same(t, c, gone)
	assert.Equal(t, 0, hub.ClientCount())
	assert.Equal(t, 0, hub.SubscriberCount("presence/global"))

	assert.NoError(t, hub.Publish(context.Background(), events.New("presence/global", events.TypePresence, nil)))
}

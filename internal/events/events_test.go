package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChannel struct {
	exchange string
	key      string
	msg      amqp.Publishing
	err      error
	closed   bool
}

func (c *fakeChannel) Publish(exchange, key string, _, _ bool, msg amqp.Publishing) error {
	c.exchange, c.key, c.msg = exchange, key, msg
	return c.err
}

func (c *fakeChannel) Close() error {
	c.closed = true
	return nil
}

type recorder struct {
	events []Event
	err    error
}

func (r *recorder) Publish(_ context.Context, e Event) error {
	r.events = append(r.events, e)
	return r.err
}

func TestTopics(t *testing.T) {
	id := uuid.MustParse("7f1b2c3d-0000-4000-8000-000000000001")
	assert.Equal(t, "matches/7f1b2c3d-0000-4000-8000-000000000001", MatchTopic(id))
	assert.Equal(t, "chat/lobby", ChatTopic("lobby"))
	assert.Equal(t, "presence/global", PresenceTopic("global"))
	assert.Equal(t, "matches.7f1b2c3d-0000-4000-8000-000000000001", RoutingKey(MatchTopic(id)))
}

func TestAMQPPublisher_Publish(t *testing.T) {
	ch := &fakeChannel{}
	p := newAMQPPublisher(ch, "pitchperfect.events")

	e := New("chat/lobby", TypeChatMessage, map[string]string{"content": "hello"})
	require.NoError(t, p.Publish(context.Background(), e))

	assert.Equal(t, "pitchperfect.events", ch.exchange)
	assert.Equal(t, "chat.lobby", ch.key)
	assert.Equal(t, "application/json", ch.msg.ContentType)
	assert.Equal(t, TypeChatMessage, ch.msg.Type)
	assert.Equal(t, uint8(amqp.Persistent), ch.msg.DeliveryMode)

	var decoded struct {
		Topic   string            `json:"topic"`
		Type    string            `json:"type"`
		Payload map[string]string `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(ch.msg.Body, &decoded))
	assert.Equal(t, "chat/lobby", decoded.Topic)
	assert.Equal(t, "hello", decoded.Payload["content"])

	require.NoError(t, p.Close())
	assert.True(t, ch.closed)
}

func TestAMQPPublisher_Errors(t *testing.T) {
	ch := &fakeChannel{err: amqp.ErrClosed}
	p := newAMQPPublisher(ch, "x")

	err := p.Publish(context.Background(), New("chat/a", TypeChatTyping, nil))
	assert.ErrorIs(t, err, amqp.ErrClosed)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, p.Publish(ctx, New("chat/a", TypeChatTyping, nil)), context.Canceled)
}

func TestMulti(t *testing.T) {
	boom := errors.New("boom")
	a := &recorder{}
	b := &recorder{err: boom}
	c := &recorder{}

	err := Multi{a, b, c}.Publish(context.Background(), New("t", "x", nil))
	assert.ErrorIs(t, err, boom)
	assert.Len(t, a.events, 1)
	assert.Len(t, c.events, 1)

	assert.NoError(t, Multi{a, Nop{}}.Publish(context.Background(), New("t", "x", nil)))
}

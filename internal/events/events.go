package events

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

const (
	TypeMatchUpdated = "match.updated"
	TypeMatchEvent   = "match.event"
	TypeMatchDeleted = "match.deleted"
	TypeChatMessage  = "chat.message"
	TypeChatTyping   = "chat.typing"
	TypePresence     = "presence.update"
)

// Event is a notification fanned out to every subscriber of Topic.
type Event struct {
	Topic     string    `json:"topic"`
	Type      string    `json:"type"`
	Payload   any       `json:"payload"`
	Timestamp time.Time `json:"timestamp"`
}

func New(topic, eventType string, payload any) Event {
	return Event{Topic: topic, Type: eventType, Payload: payload, Timestamp: time.Now().UTC()}
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Topic prefixes of the rooms a client can be in.
const (
	MatchTopicPrefix = "matches/"
	ChatTopicPrefix  = "chat/"
)

func MatchTopic(id uuid.UUID) string { return MatchTopicPrefix + id.String() }
func ChatTopic(room string) string   { return ChatTopicPrefix + room }
func PresenceTopic(room string) string {
	return "presence/" + room
}

// Multi publishes to every publisher and joins their errors.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, e Event) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }

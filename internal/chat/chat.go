package chat

import (
	"time"

	"github.com/google/uuid"
)

type MessageType string

const (
	MessageText   MessageType = "TEXT"
	MessageSystem MessageType = "SYSTEM"
)

const MaxContentLength = 2000

type Sender struct {
	ID       uuid.UUID `db:"sender_id" json:"id"`
	Username string    `db:"sender_username" json:"username"`
	Avatar   *string   `db:"sender_avatar" json:"avatar,omitempty"`
}

type Message struct {
	ID        uuid.UUID   `db:"id" json:"id"`
	RoomID    string      `db:"room_id" json:"room_id"`
	Content   string      `db:"content" json:"content"`
	Type      MessageType `db:"message_type" json:"type"`
	CreatedAt time.Time   `db:"created_at" json:"timestamp"`
	Sender    `json:"sender"`
}

// Typing is broadcast while a user is composing a message in a room.
type Typing struct {
	RoomID string `json:"room_id"`
	Sender Sender `json:"sender"`
}

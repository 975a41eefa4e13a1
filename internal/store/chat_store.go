package store

import (
	"context"
	"slices"

	"github.com/AdamBeresnev/pitch-perfect/internal/chat"
	"github.com/jmoiron/sqlx"
)

type ChatStore struct {
	db *sqlx.DB
}

func NewChatStore(db *sqlx.DB) *ChatStore {
	return &ChatStore{db: db}
}

func (s *ChatStore) CreateMessage(ctx context.Context, msg *chat.Message) error {
	_, err := s.db.NamedExecContext(ctx, `INSERT INTO chat_messages (id, room_id, sender_id, content, message_type, created_at)
		VALUES (:id, :room_id, :sender_id, :content, :message_type, :created_at)`, msg)
	return err
}

// ListMessages returns the newest limit messages of a room, oldest first.
func (s *ChatStore) ListMessages(ctx context.Context, roomID string, limit int) ([]chat.Message, error) {
	messages := []chat.Message{}
	err := s.db.SelectContext(ctx, &messages, `SELECT m.id, m.room_id, m.content, m.message_type, m.created_at,
			m.sender_id, u.username AS sender_username, u.avatar_url AS sender_avatar
		FROM chat_messages m
		JOIN users u ON u.id = m.sender_id
		WHERE m.room_id = ?
		ORDER BY m.created_at DESC
		LIMIT ?`, roomID, limit)
	if err != nil {
		return nil, err
	}
	slices.Reverse(messages)
	return messages, nil
}

package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/AdamBeresnev/pitch-perfect/internal/chat"
	"github.com/AdamBeresnev/pitch-perfect/internal/events"
	"github.com/AdamBeresnev/pitch-perfect/internal/football"
	"github.com/AdamBeresnev/pitch-perfect/internal/store"
	"github.com/google/uuid"
)

const (
	defaultHistory = 50
	maxHistory     = 200
)

type ChatService struct {
	chats     *store.ChatStore
	users     *store.UserStore
	publisher events.Publisher
}

func NewChatService(chats *store.ChatStore, users *store.UserStore, publisher events.Publisher) *ChatService {
	return &ChatService{chats: chats, users: users, publisher: publisher}
}

// ProcessAndSaveMessage stamps the message, attaches the sender's current
// username and avatar, stores it and broadcasts it to the room.
func (s *ChatService) ProcessAndSaveMessage(ctx context.Context, roomID string, userID uuid.UUID, content string) (*chat.Message, error) {
	if strings.TrimSpace(roomID) == "" {
		return nil, &football.ValidationError{Field: "room", Reason: "cannot be empty"}
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, &football.ValidationError{Field: "content", Reason: "cannot be empty"}
	}
	if utf8.RuneCountInString(content) > chat.MaxContentLength {
		return nil, &football.ValidationError{Field: "content", Reason: fmt.Sprintf("cannot exceed %d characters", chat.MaxContentLength)}
	}

	sender, err := s.sender(ctx, userID)
	if err != nil {
		return nil, err
	}

	msg := &chat.Message{
		ID:        uuid.New(),
		RoomID:    roomID,
		Content:   content,
		Type:      chat.MessageText,
		CreatedAt: time.Now().UTC(),
		Sender:    sender,
	}
	if err := s.chats.CreateMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to save chat message: %w", err)
	}

	publish(ctx, s.publisher, events.New(events.ChatTopic(roomID), events.TypeChatMessage, msg))
	return msg, nil
}

// ListMessages returns up to limit recent messages, oldest first. Non-positive
// limits fall back to the default page.
func (s *ChatService) ListMessages(ctx context.Context, roomID string, limit int) ([]chat.Message, error) {
	if limit <= 0 {
		limit = defaultHistory
	}
	limit = min(limit, maxHistory)
	return s.chats.ListMessages(ctx, roomID, limit)
}

func (s *ChatService) Typing(ctx context.Context, roomID string, userID uuid.UUID) error {
	if strings.TrimSpace(roomID) == "" {
		return &football.ValidationError{Field: "room", Reason: "cannot be empty"}
	}
	sender, err := s.sender(ctx, userID)
	if err != nil {
		return err
	}
	publish(ctx, s.publisher, events.New(events.ChatTopic(roomID), events.TypeChatTyping, chat.Typing{RoomID: roomID, Sender: sender}))
	return nil
}

func (s *ChatService) sender(ctx context.Context, userID uuid.UUID) (chat.Sender, error) {
	u, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return chat.Sender{}, notFound(err, "user", userID)
	}
	return chat.Sender{ID: u.ID, Username: u.Username, Avatar: u.AvatarURL}, nil
}

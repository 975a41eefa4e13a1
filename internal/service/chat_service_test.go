package service

import (
	"context"
	"strings"
	"testing"

	"github.com/AdamBeresnev/pitch-perfect/internal/chat"
	"github.com/AdamBeresnev/pitch-perfect/internal/events"
	"github.com/AdamBeresnev/pitch-perfect/internal/football"
	users "github.com/AdamBeresnev/pitch-perfect/internal/user"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatService_ProcessAndSaveMessage(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()

	msg, err := s.chat.ProcessAndSaveMessage(ctx, "match-1", users.GuestID, "  What a goal!  ")
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, msg.ID)
	assert.Equal(t, "What a goal!", msg.Content)
	assert.Equal(t, chat.MessageText, msg.Type)
	assert.Equal(t, users.GuestID, msg.Sender.ID)
	assert.Equal(t, "Guest User", msg.Sender.Username)
	assert.False(t, msg.CreatedAt.IsZero())

	published := s.pub.last()
	assert.Equal(t, events.ChatTopic("match-1"), published.Topic)
	assert.Equal(t, events.TypeChatMessage, published.Type)
	assert.Same(t, msg, published.Payload)

	history, err := s.chat.ListMessages(ctx, "match-1", 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, msg.ID, history[0].ID)
	assert.Equal(t, "Guest User", history[0].Sender.Username)
}

func TestChatService_Validation(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()

	testCases := []struct {
		name    string
		room    string
		content string
		field   string
	}{
		{"empty content", "lobby", "   ", "content"},
		{"too long", "lobby", strings.Repeat("é", chat.MaxContentLength+1), "content"},
		{"missing room", "", "hello", "room"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.chat.ProcessAndSaveMessage(ctx, tc.room, users.GuestID, tc.content)
			var verr *football.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.field, verr.Field)
		})
	}

	_, err := s.chat.ProcessAndSaveMessage(ctx, "lobby", users.GuestID, strings.Repeat("é", chat.MaxContentLength))
	assert.NoError(t, err)

	_, err = s.chat.ProcessAndSaveMessage(ctx, "lobby", uuid.New(), "hello")
	assert.ErrorIs(t, err, football.ErrNotFound)
}

func TestChatService_Typing(t *testing.T) {
	s := newServices(t)

	require.NoError(t, s.chat.Typing(context.Background(), "lobby", users.GuestID))
	published := s.pub.last()
	assert.Equal(t, events.TypeChatTyping, published.Type)
	typing, ok := published.Payload.(chat.Typing)
	require.True(t, ok)
	assert.Equal(t, "Guest User", typing.Sender.Username)

	history, err := s.chat.ListMessages(context.Background(), "lobby", 10)
	require.NoError(t, err)
	assert.Empty(t, history)
}

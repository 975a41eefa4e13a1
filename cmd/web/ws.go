package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/AdamBeresnev/pitch-perfect/internal/events"
	"github.com/AdamBeresnev/pitch-perfect/internal/httputil"
	"github.com/AdamBeresnev/pitch-perfect/internal/middleware"
	"github.com/AdamBeresnev/pitch-perfect/internal/presence"
	"github.com/AdamBeresnev/pitch-perfect/internal/realtime"
	"github.com/AdamBeresnev/pitch-perfect/internal/service"
	"github.com/google/uuid"
)

// Inbound websocket message types handled by the application.
const (
	msgChat       = "chat"
	msgTyping     = "typing"
	msgJoin       = "join"
	msgLeave      = "leave"
	msgMatchEvent = "match_event"
)

// Replies sent to the requesting client only.
const (
	msgJoined        = "joined"
	msgLeft          = "left"
	msgEventAccepted = "match_event.accepted"
)

var errRoomRequired = errors.New("room is required")

type chatData struct {
	Content string `json:"content"`
}

type matchEventData struct {
	MatchID uuid.UUID `json:"match_id"`
	service.EventSubmission
}

type joinedData struct {
	Room    string `json:"room"`
	History any    `json:"history"`
}

type wsHandler struct {
	app *app
}

func (h *wsHandler) serveWS(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetAuthenticatedUser(r.Context())
	if user == nil {
		httputil.WriteJSON(w, http.StatusUnauthorized, httputil.ErrorResponse{Error: "authentication required"})
		return
	}
	h.app.hub.ServeWS(w, r, user)
}

func (h *wsHandler) Connected(ctx context.Context, c *realtime.Client) {
	c.Subscribe(events.PresenceTopic(presence.GlobalRoom))
	if err := h.app.presence.UserConnected(ctx, c.User().ID); err != nil {
		slog.Warn("failed to record connection", "user_id", c.User().ID, "error", err)
	}
}

func (h *wsHandler) Disconnected(ctx context.Context, c *realtime.Client) {
	if err := h.app.presence.UserDisconnected(ctx, c.User().ID); err != nil {
		slog.Warn("failed to record disconnection", "user_id", c.User().ID, "error", err)
	}
}

// Subscribing to a chat or match topic puts the user in that room.
func (h *wsHandler) Subscribed(ctx context.Context, c *realtime.Client, topic string) error {
	room, ok := roomForTopic(topic)
	if !ok {
		return nil
	}
	return h.app.presence.UserJoinedRoom(ctx, c.User().ID, room, topic)
}

func (h *wsHandler) Unsubscribed(ctx context.Context, c *realtime.Client, topic string) error {
	return h.app.presence.UserLeftRoom(ctx, c.User().ID, topic)
}

func roomForTopic(topic string) (string, bool) {
	for _, prefix := range []string{events.ChatTopicPrefix, events.MatchTopicPrefix} {
		if room, ok := strings.CutPrefix(topic, prefix); ok && room != "" {
			return room, true
		}
	}
	return "", false
}

func (h *wsHandler) HandleMessage(ctx context.Context, c *realtime.Client, msg realtime.Inbound) error {
	userID := c.User().ID

	switch msg.Type {
	case msgJoin:
		if msg.Room == "" {
			return errRoomRequired
		}
		if err := h.app.presence.UserJoinedRoom(ctx, userID, msg.Room, events.ChatTopic(msg.Room)); err != nil {
			return err
		}
		c.Subscribe(events.ChatTopic(msg.Room))
		c.Subscribe(events.PresenceTopic(msg.Room))
		history, err := h.app.chat.ListMessages(ctx, msg.Room, 0)
		if err != nil {
			return err
		}
		c.Send(msgJoined, events.ChatTopic(msg.Room), joinedData{Room: msg.Room, History: history})
		return nil

	case msgLeave:
		if msg.Room == "" {
			return errRoomRequired
		}
		c.Unsubscribe(events.ChatTopic(msg.Room))
		c.Unsubscribe(events.PresenceTopic(msg.Room))
		if err := h.app.presence.UserLeftRoom(ctx, userID, events.ChatTopic(msg.Room)); err != nil {
			return err
		}
		c.Send(msgLeft, events.ChatTopic(msg.Room), nil)
		return nil

	case msgChat:
		var data chatData
		if err := decodeData(msg, &data); err != nil {
			return err
		}
		_, err := h.app.chat.ProcessAndSaveMessage(ctx, msg.Room, userID, data.Content)
		return err

	case msgTyping:
		return h.app.chat.Typing(ctx, msg.Room, userID)

	case msgMatchEvent:
		var data matchEventData
		if err := decodeData(msg, &data); err != nil {
			return err
		}
		e, err := h.app.matches.ProcessMatchEvent(ctx, data.MatchID, data.EventSubmission)
		if err != nil {
			return err
		}
		c.Send(msgEventAccepted, events.MatchTopic(data.MatchID), service.NewEventDTO(data.MatchID, e))
		return nil
	}
	return fmt.Errorf("unsupported message type %q", msg.Type)
}

func decodeData(msg realtime.Inbound, dst any) error {
	if len(msg.Data) == 0 {
		return fmt.Errorf("%s message has no data", msg.Type)
	}
	if err := json.Unmarshal(msg.Data, dst); err != nil {
		return fmt.Errorf("invalid %s data: %w", msg.Type, err)
	}
	return nil
}

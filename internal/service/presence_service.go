package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/AdamBeresnev/pitch-perfect/internal/events"
	"github.com/AdamBeresnev/pitch-perfect/internal/football"
	"github.com/AdamBeresnev/pitch-perfect/internal/presence"
	"github.com/AdamBeresnev/pitch-perfect/internal/store"
	"github.com/google/uuid"
)

// PresenceService tracks who is connected and which rooms they joined.
// Room lookups by subscription are served from memory first and fall back to
// the presence store, filling the cache on a hit. Writes go to the store
// first; gen counts cache writes so a lookup that raced one does not refill
// the cache with what it read before.
type PresenceService struct {
	presence  *store.PresenceStore
	users     *store.UserStore
	publisher events.Publisher

	mu            sync.RWMutex
	subscriptions map[string]string
	gen           uint64
}

func NewPresenceService(presenceStore *store.PresenceStore, users *store.UserStore, publisher events.Publisher) *PresenceService {
	return &PresenceService{
		presence:      presenceStore,
		users:         users,
		publisher:     publisher,
		subscriptions: make(map[string]string),
	}
}

func (s *PresenceService) UserConnected(ctx context.Context, userID uuid.UUID) error {
	update, err := s.setStatus(ctx, userID, presence.Online)
	if err != nil {
		return err
	}
	publish(ctx, s.publisher, events.New(events.PresenceTopic(presence.GlobalRoom), events.TypePresence, update))
	slog.Debug("user connected", "user_id", userID)
	return nil
}

// UserDisconnected marks the user offline and drops all of their room subscriptions.
func (s *PresenceService) UserDisconnected(ctx context.Context, userID uuid.UUID) error {
	update, err := s.setStatus(ctx, userID, presence.Offline)
	if err != nil {
		return err
	}
	publish(ctx, s.publisher, events.New(events.PresenceTopic(presence.GlobalRoom), events.TypePresence, update))

	if err := s.presence.RemoveAllSubscriptions(ctx, userID); err != nil {
		return fmt.Errorf("failed to remove subscriptions: %w", err)
	}
	prefix := userID.String() + ":"
	s.mu.Lock()
	for id := range s.subscriptions {
		if strings.HasPrefix(id, prefix) {
			delete(s.subscriptions, id)
		}
	}
	s.gen++
	s.mu.Unlock()

	slog.Debug("user disconnected", "user_id", userID)
	return nil
}

// UserJoinedRoom records that the user's subscription to topic puts them in
// roomID and announces it on the room's presence topic.
func (s *PresenceService) UserJoinedRoom(ctx context.Context, userID uuid.UUID, roomID, topic string) error {
	if strings.TrimSpace(roomID) == "" {
		return &football.ValidationError{Field: "room", Reason: "cannot be empty"}
	}
	subscriptionID := presence.SubscriptionID(userID, topic)
	if err := s.presence.SaveSubscription(ctx, userID, subscriptionID, roomID); err != nil {
		return fmt.Errorf("failed to save subscription: %w", err)
	}
	s.mu.Lock()
	s.subscriptions[subscriptionID] = roomID
	s.gen++
	s.mu.Unlock()

	update, err := s.update(ctx, userID, presence.Joined)
	if err != nil {
		return err
	}
	publish(ctx, s.publisher, events.New(events.PresenceTopic(roomID), events.TypePresence, update))
	return nil
}

// UserLeftRoom resolves the room behind the user's subscription to topic and
// announces the departure. A topic that never joined a room is a no-op.
func (s *PresenceService) UserLeftRoom(ctx context.Context, userID uuid.UUID, topic string) error {
	subscriptionID := presence.SubscriptionID(userID, topic)
	roomID, ok, err := s.RoomForSubscription(ctx, userID, subscriptionID)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	if err := s.presence.RemoveSubscription(ctx, userID, subscriptionID); err != nil {
		return fmt.Errorf("failed to remove subscription: %w", err)
	}
	s.mu.Lock()
	delete(s.subscriptions, subscriptionID)
	s.gen++
	s.mu.Unlock()

	update, err := s.update(ctx, userID, presence.Left)
	if err != nil {
		return err
	}
	publish(ctx, s.publisher, events.New(events.PresenceTopic(roomID), events.TypePresence, update))
	return nil
}

// RoomForSubscription reports the room behind a subscription, ok is false when it is unknown.
func (s *PresenceService) RoomForSubscription(ctx context.Context, userID uuid.UUID, subscriptionID string) (room string, ok bool, err error) {
	s.mu.RLock()
	room, ok = s.subscriptions[subscriptionID]
	gen := s.gen
	s.mu.RUnlock()
	if ok {
		return room, true, nil
	}

	room, err = s.presence.RoomForSubscription(ctx, userID, subscriptionID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}

	s.mu.Lock()
	if s.gen == gen {
		s.subscriptions[subscriptionID] = room
	}
	s.mu.Unlock()
	return room, true, nil
}

func (s *PresenceService) setStatus(ctx context.Context, userID uuid.UUID, status presence.Status) (presence.Update, error) {
	update, err := s.update(ctx, userID, status)
	if err != nil {
		return update, err
	}
	if err := s.presence.SaveStatus(ctx, userID, status, update.Timestamp); err != nil {
		return update, fmt.Errorf("failed to save presence: %w", err)
	}
	return update, nil
}

func (s *PresenceService) update(ctx context.Context, userID uuid.UUID, status presence.Status) (presence.Update, error) {
	u, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return presence.Update{}, notFound(err, "user", userID)
	}
	return presence.Update{UserID: userID, Username: u.Username, Status: status, Timestamp: time.Now().UTC()}, nil
}

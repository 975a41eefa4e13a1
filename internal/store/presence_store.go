package store

import (
	"context"
	"fmt"
	"time"

	"github.com/AdamBeresnev/pitch-perfect/internal/presence"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type PresenceStore struct {
	db *sqlx.DB
}

func NewPresenceStore(db *sqlx.DB) *PresenceStore {
	return &PresenceStore{db: db}
}

func (s *PresenceStore) SaveStatus(ctx context.Context, userID uuid.UUID, status presence.Status, at time.Time) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO presence_statuses (user_id, status, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET status = excluded.status, updated_at = excluded.updated_at`,
		userID, string(status), at.UTC())
	return err
}

func (s *PresenceStore) GetStatus(ctx context.Context, userID uuid.UUID) (presence.Status, error) {
	var status string
	if err := s.db.GetContext(ctx, &status, "SELECT status FROM presence_statuses WHERE user_id = ?", userID); err != nil {
		return "", fmt.Errorf("get presence of %s: %w", userID, err)
	}
	return presence.Status(status), nil
}

func (s *PresenceStore) SaveSubscription(ctx context.Context, userID uuid.UUID, subscriptionID, roomID string) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO presence_subscriptions (subscription_id, user_id, room_id, created_at) VALUES (?, ?, ?, ?)
		ON CONFLICT (subscription_id) DO UPDATE SET room_id = excluded.room_id`,
		subscriptionID, userID, roomID, time.Now().UTC())
	return err
}

func (s *PresenceStore) RemoveSubscription(ctx context.Context, userID uuid.UUID, subscriptionID string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM presence_subscriptions WHERE user_id = ? AND subscription_id = ?", userID, subscriptionID)
	return err
}

func (s *PresenceStore) RemoveAllSubscriptions(ctx context.Context, userID uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM presence_subscriptions WHERE user_id = ?", userID)
	return err
}

// RoomForSubscription returns sql.ErrNoRows (wrapped) when the subscription is unknown.
func (s *PresenceStore) RoomForSubscription(ctx context.Context, userID uuid.UUID, subscriptionID string) (string, error) {
	var roomID string
	err := s.db.GetContext(ctx, &roomID, "SELECT room_id FROM presence_subscriptions WHERE user_id = ? AND subscription_id = ?", userID, subscriptionID)
	if err != nil {
		return "", fmt.Errorf("get subscription %s: %w", subscriptionID, err)
	}
	return roomID, nil
}

func (s *PresenceStore) RoomsForUser(ctx context.Context, userID uuid.UUID) ([]string, error) {
	rooms := []string{}
	err := s.db.SelectContext(ctx, &rooms, "SELECT room_id FROM presence_subscriptions WHERE user_id = ? ORDER BY created_at ASC", userID)
	return rooms, err
}

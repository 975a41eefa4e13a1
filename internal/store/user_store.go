package store

import (
	"context"
	"fmt"

	users "github.com/AdamBeresnev/pitch-perfect/internal/user"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const userColumns = "id, email, username, provider, provider_id, avatar_url, created_at"

const (
	getUserQuery           = "SELECT " + userColumns + " FROM users WHERE id = ?"
	getUserByProviderQuery = "SELECT " + userColumns + " FROM users WHERE provider = ? AND provider_id = ?"
	createUserQuery        = `
		INSERT INTO users (` + userColumns + `) VALUES
		(:id, :email, :username, :provider, :provider_id, :avatar_url, :created_at)
	`
	updateProfileQuery = `
		UPDATE users SET
		username = :username,
		avatar_url = :avatar_url
		WHERE id = :id
	`
)

// UserStore keeps the accounts chat messages and presence entries refer to.
type UserStore struct {
	db *sqlx.DB
}

func NewUserStore(db *sqlx.DB) *UserStore {
	return &UserStore{db: db}
}

// GetUserByProvider returns sql.ErrNoRows, wrapped, when the identity has no account yet.
func (s *UserStore) GetUserByProvider(ctx context.Context, provider, providerID string) (*users.User, error) {
	var user users.User
	if err := s.db.GetContext(ctx, &user, getUserByProviderQuery, provider, providerID); err != nil {
		return nil, fmt.Errorf("get user by %s identity: %w", provider, err)
	}
	return &user, nil
}

func (s *UserStore) GetUser(ctx context.Context, id uuid.UUID) (*users.User, error) {
	var user users.User
	if err := s.db.GetContext(ctx, &user, getUserQuery, id); err != nil {
		return nil, fmt.Errorf("get user %s: %w", id, err)
	}
	return &user, nil
}

func (s *UserStore) CreateUser(ctx context.Context, user *users.User) error {
	if _, err := s.db.NamedExecContext(ctx, createUserQuery, user); err != nil {
		return fmt.Errorf("create user %s: %w", user.ID, err)
	}
	return nil
}

func (s *UserStore) UpdateUserNameAndAvatar(ctx context.Context, user *users.User) error {
	res, err := s.db.NamedExecContext(ctx, updateProfileQuery, user)
	if err != nil {
		return fmt.Errorf("update user %s: %w", user.ID, err)
	}
	return expectAffected(res, "user", user.ID)
}

package store

import (
	"context"
	"database/sql"
	"testing"
	"time"

	users "github.com/AdamBeresnev/pitch-perfect/internal/user"
	"github.com/AdamBeresnev/pitch-perfect/internal/utils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserStore(t *testing.T) {
	database := setupTestDB(t)
	store := NewUserStore(database)
	ctx := context.Background()

	user := &users.User{
		ID:         uuid.New(),
		Email:      "fan@example.com",
		Username:   "fan",
		CreatedAt:  time.Now().UTC(),
		Provider:   utils.Ptr("discord"),
		ProviderID: utils.Ptr("1234"),
		AvatarURL:  utils.Ptr("https://cdn.example.com/a.png"),
	}
	require.NoError(t, store.CreateUser(ctx, user))

	fetched, err := store.GetUserByProvider(ctx, "discord", "1234")
	require.NoError(t, err)
	assert.Equal(t, user.ID, fetched.ID)
	assert.Equal(t, "fan", fetched.Username)

	fetched.Username = "superfan"
	fetched.AvatarURL = nil
	require.NoError(t, store.UpdateUserNameAndAvatar(ctx, fetched))

	updated, err := store.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "superfan", updated.Username)
	assert.Nil(t, updated.AvatarURL)

	_, err = store.GetUserByProvider(ctx, "google", "1234")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	guest := guestUser(t, database)
	assert.True(t, guest.IsGuest())
}

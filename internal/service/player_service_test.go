package service

import (
	"context"
	"testing"
	"time"

	"github.com/AdamBeresnev/pitch-perfect/internal/football"
	"github.com/AdamBeresnev/pitch-perfect/internal/utils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlayerService(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()

	p, err := s.players.CreatePlayer(ctx, PlayerInput{
		Name:         "Declan Rice",
		DateOfBirth:  time.Date(1999, time.January, 14, 0, 0, 0, 0, time.UTC),
		Nationality:  "England",
		Position:     football.Midfielder,
		JerseyNumber: "41",
		PhotoURL:     "https://cdn.example.com/rice.png",
	})
	require.NoError(t, err)

	fetched, err := s.players.GetPlayer(ctx, p.ID())
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/rice.png", fetched.PhotoURL())

	updated, err := s.players.UpdatePlayer(ctx, p.ID(), football.PlayerUpdate{Position: utils.Ptr(football.Defender)})
	require.NoError(t, err)
	assert.Equal(t, football.Defender, updated.Position())

	_, err = s.players.UpdatePlayer(ctx, p.ID(), football.PlayerUpdate{JerseyNumber: utils.Ptr("0")})
	assert.ErrorIs(t, err, football.ErrValidation)

	updated, err = s.players.SetPhotoURL(ctx, p.ID(), "")
	require.NoError(t, err)
	assert.Empty(t, updated.PhotoURL())

	fetched, err = s.players.GetPlayer(ctx, p.ID())
	require.NoError(t, err)
	assert.Equal(t, football.Defender, fetched.Position())
	assert.Equal(t, "41", fetched.JerseyNumber())
	assert.Empty(t, fetched.PhotoURL())

	players, err := s.players.ListPlayers(ctx)
	require.NoError(t, err)
	assert.Len(t, players, 1)

	require.NoError(t, s.players.DeletePlayer(ctx, p.ID()))
	_, err = s.players.GetPlayer(ctx, p.ID())
	assert.ErrorIs(t, err, football.ErrNotFound)
}

func TestPlayerService_Errors(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()

	_, err := s.players.CreatePlayer(ctx, PlayerInput{Name: "X", DateOfBirth: time.Now().AddDate(-20, 0, 0), Position: football.Forward, JerseyNumber: "9"})
	assert.ErrorIs(t, err, football.ErrValidation)

	_, err = s.players.SetPhotoURL(ctx, uuid.New(), "https://cdn.example.com/x.png")
	assert.ErrorIs(t, err, football.ErrNotFound)

	assert.ErrorIs(t, s.players.DeletePlayer(ctx, uuid.New()), football.ErrNotFound)
}

package service

import (
	"context"
	"fmt"
	"time"

	"github.com/AdamBeresnev/pitch-perfect/internal/football"
	"github.com/AdamBeresnev/pitch-perfect/internal/store"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type PlayerService struct {
	db      *sqlx.DB
	players *store.PlayerStore
}

func NewPlayerService(db *sqlx.DB, players *store.PlayerStore) *PlayerService {
	return &PlayerService{db: db, players: players}
}

type PlayerInput struct {
	Name         string
	DateOfBirth  time.Time
	Nationality  string
	Position     football.Position
	JerseyNumber string
	PhotoURL     string
}

func (s *PlayerService) GetPlayer(ctx context.Context, id uuid.UUID) (*football.Player, error) {
	p, err := s.players.GetPlayer(ctx, id)
	if err != nil {
		return nil, notFound(err, "player", id)
	}
	return p, nil
}

func (s *PlayerService) ListPlayers(ctx context.Context) ([]*football.Player, error) {
	return s.players.ListPlayers(ctx)
}

func (s *PlayerService) CreatePlayer(ctx context.Context, in PlayerInput) (*football.Player, error) {
	p, err := football.NewPlayer(in.Name, in.DateOfBirth, in.Nationality, in.Position, in.JerseyNumber)
	if err != nil {
		return nil, err
	}
	if in.PhotoURL != "" {
		p.SetPhotoURL(in.PhotoURL)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := s.players.CreatePlayer(ctx, tx, p); err != nil {
		return nil, fmt.Errorf("failed to create player: %w", err)
	}
	return p, tx.Commit()
}

func (s *PlayerService) UpdatePlayer(ctx context.Context, id uuid.UUID, u football.PlayerUpdate) (*football.Player, error) {
	return s.mutate(ctx, id, func(p *football.Player) error {
		return p.UpdateInfo(u)
	})
}

func (s *PlayerService) SetPhotoURL(ctx context.Context, id uuid.UUID, url string) (*football.Player, error) {
	return s.mutate(ctx, id, func(p *football.Player) error {
		p.SetPhotoURL(url)
		return nil
	})
}

func (s *PlayerService) DeletePlayer(ctx context.Context, id uuid.UUID) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := s.players.DeletePlayer(ctx, tx, id); err != nil {
		return notFound(err, "player", id)
	}
	return tx.Commit()
}

func (s *PlayerService) mutate(ctx context.Context, id uuid.UUID, fn func(p *football.Player) error) (*football.Player, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	p, err := s.players.GetPlayerTx(ctx, tx, id)
	if err != nil {
		return nil, notFound(err, "player", id)
	}
	if err := fn(p); err != nil {
		return nil, err
	}
	if err := s.players.UpdatePlayer(ctx, tx, p); err != nil {
		return nil, fmt.Errorf("failed to update player: %w", err)
	}
	return p, tx.Commit()
}

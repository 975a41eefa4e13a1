package service

import (
	"context"
	"fmt"

	"github.com/AdamBeresnev/pitch-perfect/internal/football"
	"github.com/AdamBeresnev/pitch-perfect/internal/store"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type TeamService struct {
	db      *sqlx.DB
	teams   *store.TeamStore
	players *store.PlayerStore
}

func NewTeamService(db *sqlx.DB, teams *store.TeamStore, players *store.PlayerStore) *TeamService {
	return &TeamService{db: db, teams: teams, players: players}
}

type TeamInput struct {
	Name      string
	ShortName string
	Country   string
	LogoURL   string
}

func (s *TeamService) GetTeam(ctx context.Context, id uuid.UUID) (*football.Team, error) {
	t, err := s.teams.GetTeam(ctx, id)
	if err != nil {
		return nil, notFound(err, "team", id)
	}
	return t, nil
}

func (s *TeamService) ListTeams(ctx context.Context) ([]*football.Team, error) {
	return s.teams.ListTeams(ctx)
}

func (s *TeamService) CreateTeam(ctx context.Context, in TeamInput) (*football.Team, error) {
	team, err := football.NewTeam(in.Name, in.ShortName, in.Country, in.LogoURL)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := s.teams.CreateTeam(ctx, tx, team); err != nil {
		return nil, fmt.Errorf("failed to create team: %w", err)
	}
	return team, tx.Commit()
}

func (s *TeamService) UpdateTeam(ctx context.Context, id uuid.UUID, u football.TeamUpdate) (*football.Team, error) {
	return s.mutate(ctx, id, func(_ *sqlx.Tx, t *football.Team) error {
		return t.UpdateInfo(u)
	})
}

func (s *TeamService) AddPlayer(ctx context.Context, teamID, playerID uuid.UUID) (*football.Team, error) {
	return s.mutate(ctx, teamID, func(tx *sqlx.Tx, t *football.Team) error {
		p, err := s.players.GetPlayerTx(ctx, tx, playerID)
		if err != nil {
			return notFound(err, "player", playerID)
		}
		return t.AddPlayer(p)
	})
}

func (s *TeamService) RemovePlayer(ctx context.Context, teamID, playerID uuid.UUID) (*football.Team, error) {
	return s.mutate(ctx, teamID, func(tx *sqlx.Tx, t *football.Team) error {
		p, err := s.players.GetPlayerTx(ctx, tx, playerID)
		if err != nil {
			return notFound(err, "player", playerID)
		}
		return t.RemovePlayer(p)
	})
}

func (s *TeamService) DeleteTeam(ctx context.Context, id uuid.UUID) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := s.teams.DeleteTeam(ctx, tx, id); err != nil {
		return notFound(err, "team", id)
	}
	return tx.Commit()
}

func (s *TeamService) mutate(ctx context.Context, id uuid.UUID, fn func(tx *sqlx.Tx, t *football.Team) error) (*football.Team, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	t, err := s.teams.GetTeamTx(ctx, tx, id)
	if err != nil {
		return nil, notFound(err, "team", id)
	}
	if err := fn(tx, t); err != nil {
		return nil, err
	}
	if err := s.teams.UpdateTeam(ctx, tx, t); err != nil {
		return nil, fmt.Errorf("failed to update team: %w", err)
	}
	return t, tx.Commit()
}

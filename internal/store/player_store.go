package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/AdamBeresnev/pitch-perfect/internal/football"
	"github.com/AdamBeresnev/pitch-perfect/internal/utils"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type playerRow struct {
	ID           uuid.UUID `db:"id"`
	Name         string    `db:"name"`
	DateOfBirth  time.Time `db:"date_of_birth"`
	Nationality  string    `db:"nationality"`
	Position     string    `db:"position"`
	JerseyNumber string    `db:"jersey_number"`
	PhotoURL     *string   `db:"photo_url"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func newPlayerRow(p *football.Player) playerRow {
	return playerRow{
		ID:           p.ID(),
		Name:         p.Name(),
		DateOfBirth:  p.DateOfBirth().UTC(),
		Nationality:  p.Nationality(),
		Position:     string(p.Position()),
		JerseyNumber: p.JerseyNumber(),
		PhotoURL:     utils.StringOrNil(p.PhotoURL()),
		CreatedAt:    p.CreatedAt().UTC(),
		UpdatedAt:    p.UpdatedAt().UTC(),
	}
}

func (r playerRow) toDomain() *football.Player {
	return football.RestorePlayer(football.PlayerState{
		ID:           r.ID,
		Name:         r.Name,
		DateOfBirth:  r.DateOfBirth.UTC(),
		Nationality:  r.Nationality,
		Position:     football.Position(r.Position),
		JerseyNumber: r.JerseyNumber,
		PhotoURL:     utils.OrZero(r.PhotoURL),
		CreatedAt:    r.CreatedAt.UTC(),
		UpdatedAt:    r.UpdatedAt.UTC(),
	})
}

type PlayerStore struct {
	db *sqlx.DB
}

func NewPlayerStore(db *sqlx.DB) *PlayerStore {
	return &PlayerStore{db: db}
}

func (s *PlayerStore) CreatePlayer(ctx context.Context, tx *sqlx.Tx, p *football.Player) error {
	_, err := tx.NamedExecContext(ctx, `INSERT INTO players (id, name, date_of_birth, nationality, position, jersey_number, photo_url, created_at, updated_at)
		VALUES (:id, :name, :date_of_birth, :nationality, :position, :jersey_number, :photo_url, :created_at, :updated_at)`, newPlayerRow(p))
	return err
}

func (s *PlayerStore) UpdatePlayer(ctx context.Context, tx *sqlx.Tx, p *football.Player) error {
	res, err := tx.NamedExecContext(ctx, `UPDATE players SET
		name = :name,
		date_of_birth = :date_of_birth,
		nationality = :nationality,
		position = :position,
		jersey_number = :jersey_number,
		photo_url = :photo_url,
		updated_at = :updated_at
		WHERE id = :id`, newPlayerRow(p))
	if err != nil {
		return err
	}
	return expectAffected(res, "player", p.ID())
}

func (s *PlayerStore) DeletePlayer(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) error {
	res, err := tx.ExecContext(ctx, "DELETE FROM players WHERE id = ?", id)
	if err != nil {
		return translateDeleteError(err)
	}
	return expectAffected(res, "player", id)
}

func (s *PlayerStore) GetPlayer(ctx context.Context, id uuid.UUID) (*football.Player, error) {
	return getPlayer(ctx, s.db, id)
}

func (s *PlayerStore) GetPlayerTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*football.Player, error) {
	return getPlayer(ctx, tx, id)
}

func (s *PlayerStore) ListPlayers(ctx context.Context) ([]*football.Player, error) {
	var rows []playerRow
	if err := s.db.SelectContext(ctx, &rows, "SELECT * FROM players ORDER BY name ASC"); err != nil {
		return nil, err
	}
	players := make([]*football.Player, 0, len(rows))
	for _, r := range rows {
		players = append(players, r.toDomain())
	}
	return players, nil
}

func getPlayer(ctx context.Context, q sqlx.QueryerContext, id uuid.UUID) (*football.Player, error) {
	var row playerRow
	if err := sqlx.GetContext(ctx, q, &row, "SELECT * FROM players WHERE id = ?", id); err != nil {
		return nil, fmt.Errorf("get player %s: %w", id, err)
	}
	return row.toDomain(), nil
}

func getPlayersByID(ctx context.Context, q sqlx.ExtContext, ids []uuid.UUID) (map[uuid.UUID]*football.Player, error) {
	var rows []playerRow
	if err := selectIn(ctx, q, &rows, "SELECT * FROM players WHERE id IN (?)", ids); err != nil {
		return nil, err
	}
	players := make(map[uuid.UUID]*football.Player, len(rows))
	for _, r := range rows {
		players[r.ID] = r.toDomain()
	}
	return players, nil
}

func expectAffected(res sql.Result, entity string, id uuid.UUID) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", entity, id, sql.ErrNoRows)
	}
	return nil
}

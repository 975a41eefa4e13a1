package store

import (
	"context"
	"fmt"
	"time"

	"github.com/AdamBeresnev/pitch-perfect/internal/football"
	"github.com/AdamBeresnev/pitch-perfect/internal/utils"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type teamRow struct {
	ID        uuid.UUID `db:"id"`
	Name      string    `db:"name"`
	ShortName string    `db:"short_name"`
	Country   string    `db:"country"`
	LogoURL   *string   `db:"logo_url"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

type rosterRow struct {
	TeamID uuid.UUID `db:"team_id"`
	playerRow
}

type rosterEntry struct {
	TeamID      uuid.UUID `db:"team_id"`
	PlayerID    uuid.UUID `db:"player_id"`
	RosterOrder int       `db:"roster_order"`
}

func newTeamRow(t *football.Team) teamRow {
	return teamRow{
		ID:        t.ID(),
		Name:      t.Name(),
		ShortName: t.ShortName(),
		Country:   t.Country(),
		LogoURL:   utils.StringOrNil(t.LogoURL()),
		CreatedAt: t.CreatedAt().UTC(),
		UpdatedAt: t.UpdatedAt().UTC(),
	}
}

func (r teamRow) toDomain(players []*football.Player) *football.Team {
	return football.RestoreTeam(football.TeamState{
		ID:        r.ID,
		Name:      r.Name,
		ShortName: r.ShortName,
		Country:   r.Country,
		LogoURL:   utils.OrZero(r.LogoURL),
		Players:   players,
		CreatedAt: r.CreatedAt.UTC(),
		UpdatedAt: r.UpdatedAt.UTC(),
	})
}

type TeamStore struct {
	db *sqlx.DB
}

func NewTeamStore(db *sqlx.DB) *TeamStore {
	return &TeamStore{db: db}
}

// CreateTeam inserts the team together with its current roster.
func (s *TeamStore) CreateTeam(ctx context.Context, tx *sqlx.Tx, t *football.Team) error {
	_, err := tx.NamedExecContext(ctx, `INSERT INTO teams (id, name, short_name, country, logo_url, created_at, updated_at)
		VALUES (:id, :name, :short_name, :country, :logo_url, :created_at, :updated_at)`, newTeamRow(t))
	if err != nil {
		return err
	}
	return s.replaceRoster(ctx, tx, t)
}

// UpdateTeam writes the team row and replaces the stored roster with t's squad.
func (s *TeamStore) UpdateTeam(ctx context.Context, tx *sqlx.Tx, t *football.Team) error {
	res, err := tx.NamedExecContext(ctx, `UPDATE teams SET
		name = :name,
		short_name = :short_name,
		country = :country,
		logo_url = :logo_url,
		updated_at = :updated_at
		WHERE id = :id`, newTeamRow(t))
	if err != nil {
		return err
	}
	if err := expectAffected(res, "team", t.ID()); err != nil {
		return err
	}
	return s.replaceRoster(ctx, tx, t)
}

func (s *TeamStore) replaceRoster(ctx context.Context, tx *sqlx.Tx, t *football.Team) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM team_players WHERE team_id = ?", t.ID()); err != nil {
		return fmt.Errorf("clear roster: %w", err)
	}
	players := t.Players()
	if len(players) == 0 {
		return nil
	}
	entries := make([]rosterEntry, 0, len(players))
	for i, p := range players {
		entries = append(entries, rosterEntry{TeamID: t.ID(), PlayerID: p.ID(), RosterOrder: i})
	}
	_, err := tx.NamedExecContext(ctx, `INSERT INTO team_players (team_id, player_id, roster_order)
		VALUES (:team_id, :player_id, :roster_order)`, entries)
	if err != nil {
		return fmt.Errorf("insert roster: %w", err)
	}
	return nil
}

func (s *TeamStore) DeleteTeam(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) error {
	res, err := tx.ExecContext(ctx, "DELETE FROM teams WHERE id = ?", id)
	if err != nil {
		return translateDeleteError(err)
	}
	return expectAffected(res, "team", id)
}

func (s *TeamStore) GetTeam(ctx context.Context, id uuid.UUID) (*football.Team, error) {
	return getTeam(ctx, s.db, id)
}

func (s *TeamStore) GetTeamTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*football.Team, error) {
	return getTeam(ctx, tx, id)
}

func (s *TeamStore) ListTeams(ctx context.Context) ([]*football.Team, error) {
	var rows []teamRow
	if err := s.db.SelectContext(ctx, &rows, "SELECT * FROM teams ORDER BY name ASC"); err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
	}
	rosters, err := getRosters(ctx, s.db, ids)
	if err != nil {
		return nil, err
	}
	teams := make([]*football.Team, 0, len(rows))
	for _, r := range rows {
		teams = append(teams, r.toDomain(rosters[r.ID]))
	}
	return teams, nil
}

// TeamIDsForPlayer returns the teams whose roster lists the player.
func (s *TeamStore) TeamIDsForPlayer(ctx context.Context, playerID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := s.db.SelectContext(ctx, &ids, "SELECT team_id FROM team_players WHERE player_id = ?", playerID)
	return ids, err
}

func getTeam(ctx context.Context, q sqlx.ExtContext, id uuid.UUID) (*football.Team, error) {
	var row teamRow
	if err := sqlx.GetContext(ctx, q, &row, "SELECT * FROM teams WHERE id = ?", id); err != nil {
		return nil, fmt.Errorf("get team %s: %w", id, err)
	}
	rosters, err := getRosters(ctx, q, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	return row.toDomain(rosters[id]), nil
}

func getRosters(ctx context.Context, q sqlx.ExtContext, teamIDs []uuid.UUID) (map[uuid.UUID][]*football.Player, error) {
	var rows []rosterRow
	err := selectIn(ctx, q, &rows, `SELECT tp.team_id, p.* FROM team_players tp
		JOIN players p ON p.id = tp.player_id
		WHERE tp.team_id IN (?)
		ORDER BY tp.team_id, tp.roster_order ASC`, teamIDs)
	if err != nil {
		return nil, fmt.Errorf("get rosters: %w", err)
	}
	rosters := make(map[uuid.UUID][]*football.Player, len(teamIDs))
	for _, r := range rows {
		rosters[r.TeamID] = append(rosters[r.TeamID], r.playerRow.toDomain())
	}
	return rosters, nil
}

package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/AdamBeresnev/pitch-perfect/internal/football"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type matchRow struct {
	ID         uuid.UUID `db:"id"`
	HomeTeamID uuid.UUID `db:"home_team_id"`
	AwayTeamID uuid.UUID `db:"away_team_id"`
	Venue      string    `db:"venue"`
	StartTime  time.Time `db:"start_time"`
	Status     string    `db:"status"`
	HomeScore  int       `db:"home_score"`
	AwayScore  int       `db:"away_score"`
	Version    int       `db:"version"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

type matchEventRow struct {
	ID                uuid.UUID  `db:"id"`
	MatchID           uuid.UUID  `db:"match_id"`
	Sequence          int        `db:"sequence"`
	EventType         string     `db:"event_type"`
	Description       string     `db:"description"`
	PrimaryPlayerID   *uuid.UUID `db:"primary_player_id"`
	SecondaryPlayerID *uuid.UUID `db:"secondary_player_id"`
	OccurredAt        time.Time  `db:"occurred_at"`
	MatchMinute       int        `db:"match_minute"`
	Payload           *string    `db:"payload"`
}

// MatchFilter narrows ListMatches. Zero fields do not filter.
type MatchFilter struct {
	Status *football.MatchStatus
	TeamID *uuid.UUID
	From   *time.Time
	To     *time.Time
}

func newMatchRow(m *football.Match) matchRow {
	return matchRow{
		ID:         m.ID(),
		HomeTeamID: m.HomeTeam().ID(),
		AwayTeamID: m.AwayTeam().ID(),
		Venue:      m.Venue(),
		StartTime:  m.StartTime().UTC(),
		Status:     string(m.Status()),
		HomeScore:  m.HomeScore(),
		AwayScore:  m.AwayScore(),
		Version:    m.Version(),
		CreatedAt:  m.CreatedAt().UTC(),
		UpdatedAt:  m.UpdatedAt().UTC(),
	}
}

func newMatchEventRow(matchID uuid.UUID, seq int, e *football.MatchEvent) (matchEventRow, error) {
	payload, err := encodePayload(e.Type(), e.Payload())
	if err != nil {
		return matchEventRow{}, err
	}
	return matchEventRow{
		ID:                e.ID(),
		MatchID:           matchID,
		Sequence:          seq,
		EventType:         string(e.Type()),
		Description:       e.Description(),
		PrimaryPlayerID:   playerID(e.PrimaryPlayer()),
		SecondaryPlayerID: playerID(e.SecondaryPlayer()),
		OccurredAt:        e.Timestamp().UTC(),
		MatchMinute:       e.MatchMinute(),
		Payload:           payload,
	}, nil
}

func playerID(p *football.Player) *uuid.UUID {
	if p == nil {
		return nil
	}
	id := p.ID()
	return &id
}

type MatchStore struct {
	db *sqlx.DB
}

func NewMatchStore(db *sqlx.DB) *MatchStore {
	return &MatchStore{db: db}
}

// CreateMatch inserts a never-saved match at version 1 along with any events it already holds.
func (s *MatchStore) CreateMatch(ctx context.Context, tx *sqlx.Tx, m *football.Match) error {
	row := newMatchRow(m)
	row.Version = 1
	_, err := tx.NamedExecContext(ctx, `INSERT INTO matches (id, home_team_id, away_team_id, venue, start_time, status, home_score, away_score, version, created_at, updated_at)
		VALUES (:id, :home_team_id, :away_team_id, :venue, :start_time, :status, :home_score, :away_score, :version, :created_at, :updated_at)`, row)
	if err != nil {
		return err
	}
	return s.appendEvents(ctx, tx, m)
}

// UpdateMatch saves m if the stored version still equals m.Version() and bumps
// the version. Otherwise it returns ErrStaleMatch and writes nothing.
func (s *MatchStore) UpdateMatch(ctx context.Context, tx *sqlx.Tx, m *football.Match) error {
	res, err := tx.NamedExecContext(ctx, `UPDATE matches SET
		venue = :venue,
		start_time = :start_time,
		status = :status,
		home_score = :home_score,
		away_score = :away_score,
		updated_at = :updated_at,
		version = version + 1
		WHERE id = :id AND version = :version`, newMatchRow(m))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("update match %s at version %d: %w", m.ID(), m.Version(), ErrStaleMatch)
	}
	return s.appendEvents(ctx, tx, m)
}

// appendEvents inserts ledger entries not yet stored. Stored entries are never rewritten.
func (s *MatchStore) appendEvents(ctx context.Context, tx *sqlx.Tx, m *football.Match) error {
	events := m.Events()
	if len(events) == 0 {
		return nil
	}
	rows := make([]matchEventRow, 0, len(events))
	for i, e := range events {
		row, err := newMatchEventRow(m.ID(), i, e)
		if err != nil {
			return err
		}
		rows = append(rows, row)
	}
	_, err := tx.NamedExecContext(ctx, `INSERT INTO match_events (id, match_id, sequence, event_type, description, primary_player_id, secondary_player_id, occurred_at, match_minute, payload)
		VALUES (:id, :match_id, :sequence, :event_type, :description, :primary_player_id, :secondary_player_id, :occurred_at, :match_minute, :payload)
		ON CONFLICT (id) DO NOTHING`, rows)
	if err != nil {
		return fmt.Errorf("append match events: %w", err)
	}
	return nil
}

func (s *MatchStore) DeleteMatch(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) error {
	res, err := tx.ExecContext(ctx, "DELETE FROM matches WHERE id = ?", id)
	if err != nil {
		return translateDeleteError(err)
	}
	return expectAffected(res, "match", id)
}

func (s *MatchStore) GetMatch(ctx context.Context, id uuid.UUID) (*football.Match, error) {
	return getMatch(ctx, s.db, id)
}

func (s *MatchStore) GetMatchTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*football.Match, error) {
	return getMatch(ctx, tx, id)
}

func (s *MatchStore) ListMatches(ctx context.Context, filter MatchFilter) ([]*football.Match, error) {
	var where []string
	var args []interface{}
	if filter.Status != nil {
		where = append(where, "status = ?")
		args = append(args, string(*filter.Status))
	}
	if filter.TeamID != nil {
		where = append(where, "(home_team_id = ? OR away_team_id = ?)")
		args = append(args, *filter.TeamID, *filter.TeamID)
	}
	if filter.From != nil {
		where = append(where, "start_time >= ?")
		args = append(args, filter.From.UTC())
	}
	if filter.To != nil {
		where = append(where, "start_time < ?")
		args = append(args, filter.To.UTC())
	}

	query := "SELECT * FROM matches"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY start_time ASC"

	var rows []matchRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}

	teams := make(map[uuid.UUID]*football.Team)
	matches := make([]*football.Match, 0, len(rows))
	for _, r := range rows {
		m, err := hydrateMatch(ctx, s.db, r, teams)
		if err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	return matches, nil
}

func getMatch(ctx context.Context, q sqlx.ExtContext, id uuid.UUID) (*football.Match, error) {
	var row matchRow
	if err := sqlx.GetContext(ctx, q, &row, "SELECT * FROM matches WHERE id = ?", id); err != nil {
		return nil, fmt.Errorf("get match %s: %w", id, err)
	}
	return hydrateMatch(ctx, q, row, make(map[uuid.UUID]*football.Team))
}

// hydrateMatch loads teams (memoised in teams) and the ordered ledger for row.
func hydrateMatch(ctx context.Context, q sqlx.ExtContext, row matchRow, teams map[uuid.UUID]*football.Team) (*football.Match, error) {
	var err error
	home, ok := teams[row.HomeTeamID]
	if !ok {
		if home, err = getTeam(ctx, q, row.HomeTeamID); err != nil {
			return nil, err
		}
		teams[row.HomeTeamID] = home
	}
	away, ok := teams[row.AwayTeamID]
	if !ok {
		if away, err = getTeam(ctx, q, row.AwayTeamID); err != nil {
			return nil, err
		}
		teams[row.AwayTeamID] = away
	}

	status, err := football.ParseMatchStatus(row.Status)
	if err != nil {
		return nil, fmt.Errorf("match %s: %w", row.ID, err)
	}
	events, err := getEvents(ctx, q, row.ID, home, away)
	if err != nil {
		return nil, err
	}

	return football.RestoreMatch(football.MatchState{
		ID:        row.ID,
		HomeTeam:  home,
		AwayTeam:  away,
		Venue:     row.Venue,
		StartTime: row.StartTime.UTC(),
		Status:    status,
		HomeScore: row.HomeScore,
		AwayScore: row.AwayScore,
		Events:    events,
		CreatedAt: row.CreatedAt.UTC(),
		UpdatedAt: row.UpdatedAt.UTC(),
		Version:   row.Version,
	}), nil
}

// getEvents resolves event players from the two squads first and loads the
// rest (players since released or never rostered) in one query.
func getEvents(ctx context.Context, q sqlx.ExtContext, matchID uuid.UUID, home, away *football.Team) ([]*football.MatchEvent, error) {
	var rows []matchEventRow
	if err := sqlx.SelectContext(ctx, q, &rows, "SELECT * FROM match_events WHERE match_id = ? ORDER BY sequence ASC", matchID); err != nil {
		return nil, fmt.Errorf("get match events: %w", err)
	}

	players := make(map[uuid.UUID]*football.Player)
	for _, p := range append(home.Players(), away.Players()...) {
		players[p.ID()] = p
	}
	var missing []uuid.UUID
	for _, r := range rows {
		for _, id := range []*uuid.UUID{r.PrimaryPlayerID, r.SecondaryPlayerID} {
			if id == nil {
				continue
			}
			if _, ok := players[*id]; !ok {
				missing = append(missing, *id)
			}
		}
	}
	if len(missing) > 0 {
		extra, err := getPlayersByID(ctx, q, missing)
		if err != nil {
			return nil, err
		}
		for id, p := range extra {
			players[id] = p
		}
	}

	events := make([]*football.MatchEvent, 0, len(rows))
	for _, r := range rows {
		t, err := football.ParseMatchEventType(r.EventType)
		if err != nil {
			return nil, fmt.Errorf("event %s: %w", r.ID, err)
		}
		payload, err := decodePayload(t, r.Payload)
		if err != nil {
			return nil, err
		}
		events = append(events, football.RestoreEvent(football.EventState{
			ID:              r.ID,
			Type:            t,
			Description:     r.Description,
			PrimaryPlayer:   lookupPlayer(players, r.PrimaryPlayerID),
			SecondaryPlayer: lookupPlayer(players, r.SecondaryPlayerID),
			Timestamp:       r.OccurredAt.UTC(),
			MatchMinute:     r.MatchMinute,
			Payload:         payload,
		}))
	}
	return events, nil
}

func lookupPlayer(players map[uuid.UUID]*football.Player, id *uuid.UUID) *football.Player {
	if id == nil {
		return nil
	}
	return players[*id]
}

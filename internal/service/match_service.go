package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/AdamBeresnev/pitch-perfect/internal/events"
	"github.com/AdamBeresnev/pitch-perfect/internal/football"
	"github.com/AdamBeresnev/pitch-perfect/internal/store"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type MatchService struct {
	db        *sqlx.DB
	matches   *store.MatchStore
	teams     *store.TeamStore
	players   *store.PlayerStore
	domain    football.MatchDomainService
	publisher events.Publisher
}

func NewMatchService(db *sqlx.DB, matches *store.MatchStore, teams *store.TeamStore, players *store.PlayerStore, publisher events.Publisher) *MatchService {
	return &MatchService{db: db, matches: matches, teams: teams, players: players, publisher: publisher}
}

type CreateMatchInput struct {
	HomeTeamID uuid.UUID
	AwayTeamID uuid.UUID
	Venue      string
	StartTime  time.Time
}

type GoalInput struct {
	ScorerID    uuid.UUID
	AssistantID *uuid.UUID
	IsHomeTeam  bool
}

type IncidentInput struct {
	Type              football.MatchEventType
	Side              football.Side
	PrimaryPlayerID   *uuid.UUID
	SecondaryPlayerID *uuid.UUID
	Description       string
}

// EventSubmission is a match event reported from a live client.
type EventSubmission struct {
	Type              football.MatchEventType `json:"type"`
	Side              football.Side           `json:"side,omitempty"`
	PlayerID          *uuid.UUID              `json:"player_id,omitempty"`
	SecondaryPlayerID *uuid.UUID              `json:"secondary_player_id,omitempty"`
	Description       string                  `json:"description,omitempty"`
}

func (s *MatchService) GetMatch(ctx context.Context, id uuid.UUID) (*football.Match, error) {
	m, err := s.matches.GetMatch(ctx, id)
	if err != nil {
		return nil, notFound(err, "match", id)
	}
	return m, nil
}

func (s *MatchService) ListMatches(ctx context.Context, filter store.MatchFilter) ([]*football.Match, error) {
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return nil, &football.ValidationError{Field: "to", Reason: "must not be before from"}
	}
	return s.matches.ListMatches(ctx, filter)
}

func (s *MatchService) GetMatchEvents(ctx context.Context, id uuid.UUID) ([]*football.MatchEvent, error) {
	m, err := s.GetMatch(ctx, id)
	if err != nil {
		return nil, err
	}
	return m.Events(), nil
}

func (s *MatchService) CreateMatch(ctx context.Context, in CreateMatchInput) (_ *football.Match, err error) {
	ctx, span := tracer.Start(ctx, "MatchService.CreateMatch")
	defer func() { endSpan(span, err) }()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	home, err := s.teams.GetTeamTx(ctx, tx, in.HomeTeamID)
	if err != nil {
		return nil, notFound(err, "team", in.HomeTeamID)
	}
	away, err := s.teams.GetTeamTx(ctx, tx, in.AwayTeamID)
	if err != nil {
		return nil, notFound(err, "team", in.AwayTeamID)
	}

	m, err := football.NewMatch(home, away, in.Venue, in.StartTime)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("match.id", m.ID().String()))

	if err := s.matches.CreateMatch(ctx, tx, m); err != nil {
		return nil, fmt.Errorf("failed to create match: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	saved, err := s.matches.GetMatch(ctx, m.ID())
	if err != nil {
		return nil, fmt.Errorf("failed to reload match: %w", err)
	}
	publish(ctx, s.publisher, events.New(events.MatchTopic(saved.ID()), events.TypeMatchUpdated, NewMatchDTO(saved)))
	return saved, nil
}

func (s *MatchService) StartMatch(ctx context.Context, id uuid.UUID) (*football.Match, error) {
	m, _, err := s.mutate(ctx, "StartMatch", id, s.start())
	return m, err
}

func (s *MatchService) CompleteMatch(ctx context.Context, id uuid.UUID) (*football.Match, error) {
	m, _, err := s.mutate(ctx, "CompleteMatch", id, s.complete())
	return m, err
}

func (s *MatchService) CancelMatch(ctx context.Context, id uuid.UUID, reason string) (*football.Match, error) {
	m, _, err := s.mutate(ctx, "CancelMatch", id, s.cancel(reason))
	return m, err
}

func (s *MatchService) UpdateScore(ctx context.Context, id uuid.UUID, homeScore, awayScore int) (*football.Match, error) {
	m, _, err := s.mutate(ctx, "UpdateScore", id, func(_ *sqlx.Tx, m *football.Match) error {
		_, err := s.domain.UpdateScore(m, homeScore, awayScore)
		return err
	})
	return m, err
}

func (s *MatchService) AddGoal(ctx context.Context, id uuid.UUID, in GoalInput) (*football.Match, error) {
	m, _, err := s.mutate(ctx, "AddGoal", id, s.goal(ctx, in))
	return m, err
}

func (s *MatchService) AddOwnGoal(ctx context.Context, id, playerID uuid.UUID, benefiting football.Side) (*football.Match, error) {
	m, _, err := s.mutate(ctx, "AddOwnGoal", id, s.ownGoal(ctx, playerID, benefiting))
	return m, err
}

func (s *MatchService) RecordIncident(ctx context.Context, id uuid.UUID, in IncidentInput) (*football.Match, error) {
	m, _, err := s.mutate(ctx, "RecordIncident", id, s.incident(ctx, in))
	return m, err
}

func (s *MatchService) RescheduleMatch(ctx context.Context, id uuid.UUID, startTime time.Time) (*football.Match, error) {
	m, _, err := s.mutate(ctx, "RescheduleMatch", id, func(_ *sqlx.Tx, m *football.Match) error {
		_, err := s.domain.RescheduleMatch(m, startTime)
		return err
	})
	return m, err
}

func (s *MatchService) ChangeVenue(ctx context.Context, id uuid.UUID, venue string) (*football.Match, error) {
	m, _, err := s.mutate(ctx, "ChangeVenue", id, func(_ *sqlx.Tx, m *football.Match) error {
		_, err := s.domain.ChangeVenue(m, venue)
		return err
	})
	return m, err
}

// ProcessMatchEvent applies a live submission through the matching domain
// operation and returns the event it appended. Goals always go through
// AddGoal so the ledger and the score move together.
func (s *MatchService) ProcessMatchEvent(ctx context.Context, id uuid.UUID, sub EventSubmission) (*football.MatchEvent, error) {
	t, err := football.ParseMatchEventType(string(sub.Type))
	if err != nil {
		return nil, err
	}
	sub.Type = t

	var fn matchOp
	switch sub.Type {
	case football.EventMatchStart:
		fn = s.start()
	case football.EventMatchEnd:
		fn = s.complete()
	case football.EventMatchCancelled:
		fn = s.cancel(sub.Description)
	case football.EventGoal:
		if sub.PlayerID == nil {
			return nil, &football.ValidationError{Field: "player_id", Reason: "scorer must be specified"}
		}
		if !sub.Side.Valid() {
			return nil, &football.ValidationError{Field: "side", Reason: "must be HOME or AWAY"}
		}
		fn = s.goal(ctx, GoalInput{
			ScorerID:    *sub.PlayerID,
			AssistantID: sub.SecondaryPlayerID,
			IsHomeTeam:  sub.Side == football.Home,
		})
	case football.EventOwnGoal:
		if sub.PlayerID == nil {
			return nil, &football.ValidationError{Field: "player_id", Reason: "player must be specified"}
		}
		fn = s.ownGoal(ctx, *sub.PlayerID, sub.Side)
	case football.EventRescheduled, football.EventVenueChange:
		return nil, &football.ValidationError{Field: "type", Reason: string(sub.Type) + " cannot be submitted live"}
	default:
		fn = s.incident(ctx, IncidentInput{
			Type:              sub.Type,
			Side:              sub.Side,
			PrimaryPlayerID:   sub.PlayerID,
			SecondaryPlayerID: sub.SecondaryPlayerID,
			Description:       sub.Description,
		})
	}

	_, appended, err := s.mutate(ctx, "ProcessMatchEvent", id, fn)
	if err != nil {
		return nil, err
	}
	if len(appended) == 0 {
		return nil, fmt.Errorf("%s on match %s appended no event", sub.Type, id)
	}
	return appended[len(appended)-1], nil
}

func (s *MatchService) DeleteMatch(ctx context.Context, id uuid.UUID) (err error) {
	ctx, span := tracer.Start(ctx, "MatchService.DeleteMatch", trace.WithAttributes(attribute.String("match.id", id.String())))
	defer func() { endSpan(span, err) }()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := s.matches.DeleteMatch(ctx, tx, id); err != nil {
		return notFound(err, "match", id)
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	publish(ctx, s.publisher, events.New(events.MatchTopic(id), events.TypeMatchDeleted, map[string]uuid.UUID{"id": id}))
	return nil
}

type matchOp func(tx *sqlx.Tx, m *football.Match) error

func (s *MatchService) start() matchOp {
	return func(_ *sqlx.Tx, m *football.Match) error {
		_, err := s.domain.StartMatch(m)
		return err
	}
}

func (s *MatchService) complete() matchOp {
	return func(_ *sqlx.Tx, m *football.Match) error {
		_, err := s.domain.CompleteMatch(m)
		return err
	}
}

func (s *MatchService) cancel(reason string) matchOp {
	return func(_ *sqlx.Tx, m *football.Match) error {
		_, err := s.domain.CancelMatch(m, reason)
		return err
	}
}

func (s *MatchService) goal(ctx context.Context, in GoalInput) matchOp {
	return func(tx *sqlx.Tx, m *football.Match) error {
		scorer, err := s.player(ctx, tx, &in.ScorerID)
		if err != nil {
			return err
		}
		assistant, err := s.player(ctx, tx, in.AssistantID)
		if err != nil {
			return err
		}
		_, err = s.domain.AddGoal(m, scorer, assistant, in.IsHomeTeam)
		return err
	}
}

func (s *MatchService) ownGoal(ctx context.Context, playerID uuid.UUID, benefiting football.Side) matchOp {
	return func(tx *sqlx.Tx, m *football.Match) error {
		p, err := s.player(ctx, tx, &playerID)
		if err != nil {
			return err
		}
		_, err = s.domain.AddOwnGoal(m, p, benefiting)
		return err
	}
}

func (s *MatchService) incident(ctx context.Context, in IncidentInput) matchOp {
	return func(tx *sqlx.Tx, m *football.Match) error {
		primary, err := s.player(ctx, tx, in.PrimaryPlayerID)
		if err != nil {
			return err
		}
		secondary, err := s.player(ctx, tx, in.SecondaryPlayerID)
		if err != nil {
			return err
		}
		_, err = s.domain.AddEvent(m, in.Type, in.Side, primary, secondary, in.Description)
		return err
	}
}

// mutate loads the match, applies fn and saves with a version check. The
// events fn appended are returned and published as soon as the transaction
// commits; the reloaded state follows as match.updated.
func (s *MatchService) mutate(ctx context.Context, op string, id uuid.UUID, fn matchOp) (_ *football.Match, appended []*football.MatchEvent, err error) {
	ctx, span := tracer.Start(ctx, "MatchService."+op, trace.WithAttributes(attribute.String("match.id", id.String())))
	defer func() { endSpan(span, err) }()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback()

	m, err := s.matches.GetMatchTx(ctx, tx, id)
	if err != nil {
		return nil, nil, notFound(err, "match", id)
	}
	before := len(m.Events())

	if err := fn(tx, m); err != nil {
		return nil, nil, err
	}
	appended = m.Events()[before:]

	if err := s.matches.UpdateMatch(ctx, tx, m); err != nil {
		if errors.Is(err, store.ErrStaleMatch) {
			return nil, nil, err
		}
		return nil, nil, fmt.Errorf("failed to update match: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, nil, err
	}
	s.publishEvents(ctx, id, appended)

	saved, err := s.matches.GetMatch(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to reload match: %w", err)
	}
	span.SetAttributes(attribute.String("match.status", string(saved.Status())), attribute.Int("match.version", saved.Version()))
	publish(ctx, s.publisher, events.New(events.MatchTopic(id), events.TypeMatchUpdated, NewMatchDTO(saved)))
	return saved, appended, nil
}

func (s *MatchService) publishEvents(ctx context.Context, matchID uuid.UUID, appended []*football.MatchEvent) {
	topic := events.MatchTopic(matchID)
	for _, e := range appended {
		publish(ctx, s.publisher, events.New(topic, events.TypeMatchEvent, NewEventDTO(matchID, e)))
	}
}

// player resolves an optional player reference. A nil id yields a nil player.
func (s *MatchService) player(ctx context.Context, tx *sqlx.Tx, id *uuid.UUID) (*football.Player, error) {
	if id == nil {
		return nil, nil
	}
	p, err := s.players.GetPlayerTx(ctx, tx, *id)
	if err != nil {
		return nil, notFound(err, "player", *id)
	}
	return p, nil
}

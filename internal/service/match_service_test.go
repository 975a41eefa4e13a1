package service

import (
	"context"
	"testing"
	"time"

	"github.com/AdamBeresnev/pitch-perfect/internal/events"
	"github.com/AdamBeresnev/pitch-perfect/internal/football"
	"github.com/AdamBeresnev/pitch-perfect/internal/store"
	"github.com/AdamBeresnev/pitch-perfect/internal/utils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type matchSetup struct {
	services
	home, away *football.Team
	scorer     *football.Player
	assistant  *football.Player
	match      *football.Match
}

func setupMatch(t *testing.T) matchSetup {
	t.Helper()
	s := newServices(t)
	ctx := context.Background()

	home := s.createTeam(t, "Manchester United", "MUN")
	away := s.createTeam(t, "Liverpool", "LIV")
	scorer := s.createPlayer(t, "Marcus Rashford", "10")
	assistant := s.createPlayer(t, "Bruno Fernandes", "8")
	_, err := s.teams.AddPlayer(ctx, home.ID(), scorer.ID())
	require.NoError(t, err)
	_, err = s.teams.AddPlayer(ctx, home.ID(), assistant.ID())
	require.NoError(t, err)

	m, err := s.matches.CreateMatch(ctx, CreateMatchInput{
		HomeTeamID: home.ID(),
		AwayTeamID: away.ID(),
		Venue:      "Old Trafford",
		StartTime:  time.Now().UTC().Add(2 * time.Hour),
	})
	require.NoError(t, err)
	s.pub.reset()

	return matchSetup{services: s, home: home, away: away, scorer: scorer, assistant: assistant, match: m}
}

func TestCreateMatch(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	home := s.createTeam(t, "Arsenal", "ARS")
	away := s.createTeam(t, "Chelsea", "CHE")

	m, err := s.matches.CreateMatch(ctx, CreateMatchInput{
		HomeTeamID: home.ID(),
		AwayTeamID: away.ID(),
		Venue:      "Emirates",
		StartTime:  time.Now().UTC().Add(time.Hour),
	})
	require.NoError(t, err)

	assert.Equal(t, football.StatusScheduled, m.Status())
	assert.Equal(t, 1, m.Version())
	assert.Equal(t, []string{events.TypeMatchUpdated}, s.pub.types())
	assert.Equal(t, events.MatchTopic(m.ID()), s.pub.last().Topic)
}

func TestCreateMatch_Errors(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	home := s.createTeam(t, "Arsenal", "ARS")
	missing := uuid.New()

	_, err := s.matches.CreateMatch(ctx, CreateMatchInput{
		HomeTeamID: home.ID(), AwayTeamID: missing, Venue: "Emirates", StartTime: time.Now().Add(time.Hour),
	})
	var nf *football.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "team", nf.Entity)
	assert.Equal(t, missing, nf.ID)

	_, err = s.matches.CreateMatch(ctx, CreateMatchInput{
		HomeTeamID: home.ID(), AwayTeamID: home.ID(), Venue: "Emirates", StartTime: time.Now().Add(time.Hour),
	})
	assert.ErrorIs(t, err, football.ErrValidation)
	assert.Empty(t, s.pub.types())
}

func TestMatchLifecycle(t *testing.T) {
	f := setupMatch(t)
	ctx := context.Background()
	id := f.match.ID()

	m, err := f.matches.ChangeVenue(ctx, id, "Wembley")
	require.NoError(t, err)
	assert.Equal(t, "Wembley", m.Venue())

	m, err = f.matches.StartMatch(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, football.StatusLive, m.Status())

	m, err = f.matches.AddGoal(ctx, id, GoalInput{ScorerID: f.scorer.ID(), AssistantID: utils.Ptr(f.assistant.ID()), IsHomeTeam: true})
	require.NoError(t, err)
	assert.Equal(t, 1, m.HomeScore())

	m, err = f.matches.AddOwnGoal(ctx, id, f.assistant.ID(), football.Away)
	require.NoError(t, err)
	assert.Equal(t, 1, m.AwayScore())

	m, err = f.matches.RecordIncident(ctx, id, IncidentInput{
		Type:            football.EventYellowCard,
		Side:            football.Home,
		PrimaryPlayerID: utils.Ptr(f.scorer.ID()),
	})
	require.NoError(t, err)

	m, err = f.matches.UpdateScore(ctx, id, 2, 1)
	require.NoError(t, err)

	m, err = f.matches.CompleteMatch(ctx, id)
	require.NoError(t, err)

	assert.Equal(t, football.StatusCompleted, m.Status())
	assert.Equal(t, "Manchester United 2 - 1 Liverpool", m.Result())
	assert.True(t, f.home.Equal(m.Winner()))
	assert.Equal(t, 8, m.Version())

	evts, err := f.matches.GetMatchEvents(ctx, id)
	require.NoError(t, err)
	var types []football.MatchEventType
	for _, e := range evts {
		types = append(types, e.Type())
	}
	assert.Equal(t, []football.MatchEventType{
		football.EventVenueChange, football.EventMatchStart, football.EventGoal,
		football.EventOwnGoal, football.EventYellowCard, football.EventMatchEnd,
	}, types)

	assert.Equal(t, []string{
		events.TypeMatchEvent, events.TypeMatchUpdated, // venue
		events.TypeMatchEvent, events.TypeMatchUpdated, // start
		events.TypeMatchEvent, events.TypeMatchUpdated, // goal
		events.TypeMatchEvent, events.TypeMatchUpdated, // own goal
		events.TypeMatchEvent, events.TypeMatchUpdated, // yellow card
		events.TypeMatchUpdated, // score correction
		events.TypeMatchEvent, events.TypeMatchUpdated, // end
	}, f.pub.types())

	dto, ok := f.pub.last().Payload.(MatchDTO)
	require.True(t, ok)
	assert.Equal(t, football.StatusCompleted, dto.Status)
	assert.Equal(t, f.home.ID(), *dto.WinnerID)
}

func TestMatchService_RejectedOperationsChangeNothing(t *testing.T) {
	f := setupMatch(t)
	ctx := context.Background()
	id := f.match.ID()

	_, err := f.matches.CompleteMatch(ctx, id)
	assert.ErrorIs(t, err, football.ErrIllegalState)

	_, err = f.matches.AddGoal(ctx, id, GoalInput{ScorerID: f.scorer.ID(), IsHomeTeam: true})
	assert.ErrorIs(t, err, football.ErrIllegalState)

	_, err = f.matches.StartMatch(ctx, uuid.New())
	assert.ErrorIs(t, err, football.ErrNotFound)

	_, err = f.matches.StartMatch(ctx, id)
	require.NoError(t, err)
	_, err = f.matches.AddGoal(ctx, id, GoalInput{ScorerID: uuid.New(), IsHomeTeam: true})
	var nf *football.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "player", nf.Entity)

	m, err := f.matches.GetMatch(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, football.StatusLive, m.Status())
	assert.Equal(t, 0, m.HomeScore())
	assert.Len(t, m.Events(), 1)
	assert.Equal(t, 2, m.Version())
}

func TestProcessMatchEvent(t *testing.T) {
	f := setupMatch(t)
	ctx := context.Background()
	id := f.match.ID()

	e, err := f.matches.ProcessMatchEvent(ctx, id, EventSubmission{Type: football.EventMatchStart})
	require.NoError(t, err)
	assert.Equal(t, football.EventMatchStart, e.Type())

	e, err = f.matches.ProcessMatchEvent(ctx, id, EventSubmission{
		Type:     football.EventGoal,
		Side:     football.Away,
		PlayerID: utils.Ptr(f.scorer.ID()),
	})
	require.NoError(t, err)
	assert.Equal(t, football.EventGoal, e.Type())
	assert.Equal(t, football.GoalPayload{Side: football.Away, HomeScore: 0, AwayScore: 1}, e.Payload())

	e, err = f.matches.ProcessMatchEvent(ctx, id, EventSubmission{
		Type:              football.EventSubstitution,
		Side:              football.Home,
		PlayerID:          utils.Ptr(f.scorer.ID()),
		SecondaryPlayerID: utils.Ptr(f.assistant.ID()),
	})
	require.NoError(t, err)
	assert.Equal(t, "Substitution: Marcus Rashford", e.Description())

	_, err = f.matches.ProcessMatchEvent(ctx, id, EventSubmission{Type: football.EventGoal, Side: football.Home})
	assert.ErrorIs(t, err, football.ErrValidation)

	_, err = f.matches.ProcessMatchEvent(ctx, id, EventSubmission{Type: football.EventVenueChange})
	assert.ErrorIs(t, err, football.ErrValidation)

	_, err = f.matches.ProcessMatchEvent(ctx, id, EventSubmission{Type: "HANDBALL"})
	assert.ErrorIs(t, err, football.ErrValidation)

	e, err = f.matches.ProcessMatchEvent(ctx, id, EventSubmission{Type: football.EventMatchCancelled, Description: "Pitch invasion"})
	require.NoError(t, err)
	assert.Equal(t, "Pitch invasion", e.Description())

	m, err := f.matches.GetMatch(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, football.StatusCancelled, m.Status())
	assert.Equal(t, 1, m.AwayScore())
}

func TestRescheduleMatch(t *testing.T) {
	f := setupMatch(t)
	ctx := context.Background()
	newStart := f.match.StartTime().Add(24 * time.Hour)

	m, err := f.matches.RescheduleMatch(ctx, f.match.ID(), newStart)
	require.NoError(t, err)
	assert.True(t, newStart.Equal(m.StartTime()))

	_, err = f.matches.RescheduleMatch(ctx, f.match.ID(), time.Now().Add(-time.Hour))
	assert.ErrorIs(t, err, football.ErrValidation)
}

func TestListMatches(t *testing.T) {
	f := setupMatch(t)
	ctx := context.Background()

	_, err := f.matches.StartMatch(ctx, f.match.ID())
	require.NoError(t, err)

	live, err := f.matches.ListMatches(ctx, store.MatchFilter{Status: utils.Ptr(football.StatusLive)})
	require.NoError(t, err)
	require.Len(t, live, 1)

	scheduled, err := f.matches.ListMatches(ctx, store.MatchFilter{Status: utils.Ptr(football.StatusScheduled)})
	require.NoError(t, err)
	assert.Empty(t, scheduled)

	_, err = f.matches.ListMatches(ctx, store.MatchFilter{
		From: utils.Ptr(time.Now().Add(time.Hour)),
		To:   utils.Ptr(time.Now()),
	})
	assert.ErrorIs(t, err, football.ErrValidation)
}

func TestDeleteMatch(t *testing.T) {
	f := setupMatch(t)
	ctx := context.Background()

	require.NoError(t, f.matches.DeleteMatch(ctx, f.match.ID()))
	assert.Equal(t, []string{events.TypeMatchDeleted}, f.pub.types())

	_, err := f.matches.GetMatch(ctx, f.match.ID())
	assert.ErrorIs(t, err, football.ErrNotFound)

	assert.ErrorIs(t, f.matches.DeleteMatch(ctx, f.match.ID()), football.ErrNotFound)
}

func TestDeletePlayer_ReferencedByLedger(t *testing.T) {
	f := setupMatch(t)
	ctx := context.Background()
	id := f.match.ID()

	_, err := f.matches.StartMatch(ctx, id)
	require.NoError(t, err)
	_, err = f.matches.AddGoal(ctx, id, GoalInput{ScorerID: f.scorer.ID(), IsHomeTeam: true})
	require.NoError(t, err)

	err = f.players.DeletePlayer(ctx, f.scorer.ID())
	assert.ErrorIs(t, err, store.ErrInUse)

	evts, err := f.matches.GetMatchEvents(ctx, id)
	require.NoError(t, err)
	require.Len(t, evts, 2)
	goal := evts[1]
	assert.Equal(t, football.EventGoal, goal.Type())
	require.NotNil(t, goal.PrimaryPlayer())
	assert.True(t, f.scorer.Equal(goal.PrimaryPlayer()))

	home, err := f.teams.GetTeam(ctx, f.home.ID())
	require.NoError(t, err)
	assert.True(t, home.HasPlayerWithID(f.scorer.ID()))

	require.NoError(t, f.players.DeletePlayer(ctx, f.assistant.ID()))
}

// writeOnFirstEvent runs write the first time a match event is published.
type writeOnFirstEvent struct {
	events.Publisher
	fired bool
	write func()
}

func (w *writeOnFirstEvent) Publish(ctx context.Context, e events.Event) error {
	if e.Type == events.TypeMatchEvent && !w.fired {
		w.fired = true
		w.write()
	}
	return w.Publisher.Publish(ctx, e)
}

func TestProcessMatchEvent_ReturnsOwnEventWhenAnotherWriterCommits(t *testing.T) {
	f := setupMatch(t)
	ctx := context.Background()
	id := f.match.ID()

	f.matches.publisher = &writeOnFirstEvent{
		Publisher: f.pub,
		write: func() {
			_, err := f.matches.RecordIncident(ctx, id, IncidentInput{
				Type:            football.EventYellowCard,
				Side:            football.Home,
				PrimaryPlayerID: utils.Ptr(f.scorer.ID()),
			})
			require.NoError(t, err)
		},
	}

	e, err := f.matches.ProcessMatchEvent(ctx, id, EventSubmission{Type: football.EventMatchStart})
	require.NoError(t, err)
	assert.Equal(t, football.EventMatchStart, e.Type())

	evts, err := f.matches.GetMatchEvents(ctx, id)
	require.NoError(t, err)
	require.Len(t, evts, 2)
	assert.Equal(t, evts[0].ID(), e.ID())
	assert.Equal(t, football.EventYellowCard, evts[1].Type())
}

package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/AdamBeresnev/pitch-perfect/internal/db"
	"github.com/AdamBeresnev/pitch-perfect/internal/events"
	"github.com/AdamBeresnev/pitch-perfect/internal/football"
	"github.com/AdamBeresnev/pitch-perfect/internal/store"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

// setupTestDB creates an in-memory SQLite database and applies migrations
func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	database, err := db.Connect(db.MemoryDSN)
	require.NoError(t, err, "Failed to connect to in-memory DB")

	err = db.RunMigrations(database.DB, "file://../../migrations")
	require.NoError(t, err, "Failed to apply migrations")

	t.Cleanup(func() { database.Close() })
	return database
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recordingPublisher) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

func (r *recordingPublisher) last() events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.events[len(r.events)-1]
}

func (r *recordingPublisher) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

type services struct {
	db       *sqlx.DB
	pub      *recordingPublisher
	matches  *MatchService
	teams    *TeamService
	players  *PlayerService
	chat     *ChatService
	presence *PresenceService
	users    *UserService
}

func newServices(t *testing.T) services {
	t.Helper()
	database := setupTestDB(t)
	pub := &recordingPublisher{}

	matchStore := store.NewMatchStore(database)
	teamStore := store.NewTeamStore(database)
	playerStore := store.NewPlayerStore(database)
	userStore := store.NewUserStore(database)

	return services{
		db:       database,
		pub:      pub,
		matches:  NewMatchService(database, matchStore, teamStore, playerStore, pub),
		teams:    NewTeamService(database, teamStore, playerStore),
		players:  NewPlayerService(database, playerStore),
		chat:     NewChatService(store.NewChatStore(database), userStore, pub),
		presence: NewPresenceService(store.NewPresenceStore(database), userStore, pub),
		users:    NewUserService(userStore),
	}
}

func (s services) createPlayer(t *testing.T, name, jersey string) *football.Player {
	t.Helper()
	p, err := s.players.CreatePlayer(context.Background(), PlayerInput{
		Name:         name,
		DateOfBirth:  time.Now().UTC().AddDate(-25, 0, 0),
		Nationality:  "England",
		Position:     football.Forward,
		JerseyNumber: jersey,
	})
	require.NoError(t, err)
	return p
}

func (s services) createTeam(t *testing.T, name, shortName string) *football.Team {
	t.Helper()
	team, err := s.teams.CreateTeam(context.Background(), TeamInput{Name: name, ShortName: shortName, Country: "England"})
	require.NoError(t, err)
	return team
}

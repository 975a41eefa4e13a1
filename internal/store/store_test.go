package store

import (
	"context"
	"testing"
	"time"

	"github.com/AdamBeresnev/pitch-perfect/internal/db"
	"github.com/AdamBeresnev/pitch-perfect/internal/football"
	users "github.com/AdamBeresnev/pitch-perfect/internal/user"
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

// inTx runs fn in a transaction and commits it.
func inTx(t *testing.T, database *sqlx.DB, fn func(tx *sqlx.Tx) error) {
	t.Helper()
	tx, err := database.BeginTxx(context.Background(), nil)
	require.NoError(t, err)
	defer tx.Rollback()

	require.NoError(t, fn(tx))
	require.NoError(t, tx.Commit())
}

func newPlayer(t *testing.T, name, jersey string) *football.Player {
	t.Helper()
	p, err := football.NewPlayer(name, time.Now().UTC().AddDate(-24, 0, 0), "England", football.Midfielder, jersey)
	require.NoError(t, err)
	return p
}

func seedPlayers(t *testing.T, database *sqlx.DB, players ...*football.Player) {
	t.Helper()
	ps := NewPlayerStore(database)
	inTx(t, database, func(tx *sqlx.Tx) error {
		for _, p := range players {
			if err := ps.CreatePlayer(context.Background(), tx, p); err != nil {
				return err
			}
		}
		return nil
	})
}

// seedTeam stores a team with the given (already stored) players on its roster.
func seedTeam(t *testing.T, database *sqlx.DB, name, shortName string, players ...*football.Player) *football.Team {
	t.Helper()
	team, err := football.NewTeam(name, shortName, "England", "")
	require.NoError(t, err)
	for _, p := range players {
		require.NoError(t, team.AddPlayer(p))
	}
	ts := NewTeamStore(database)
	inTx(t, database, func(tx *sqlx.Tx) error {
		return ts.CreateTeam(context.Background(), tx, team)
	})
	return team
}

func guestUser(t *testing.T, database *sqlx.DB) *users.User {
	t.Helper()
	u, err := NewUserStore(database).GetUser(context.Background(), users.GuestID)
	require.NoError(t, err)
	return u
}

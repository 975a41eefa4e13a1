package main

import (
	"net/http"
	"slices"

	"github.com/AdamBeresnev/pitch-perfect/internal/config"
	"github.com/AdamBeresnev/pitch-perfect/internal/events"
	"github.com/AdamBeresnev/pitch-perfect/internal/realtime"
	"github.com/AdamBeresnev/pitch-perfect/internal/service"
	"github.com/AdamBeresnev/pitch-perfect/internal/store"
	"github.com/alexedwards/scs/v2"
	"github.com/jmoiron/sqlx"
)

type app struct {
	cfg            config.Config
	sessionManager *scs.SessionManager
	userStore      *store.UserStore
	hub            *realtime.Hub
	ws             *wsHandler

	matches  *service.MatchService
	teams    *service.TeamService
	players  *service.PlayerService
	chat     *service.ChatService
	presence *service.PresenceService
	users    *service.UserService
}

// newApp wires stores and services. Every write is announced on the websocket
// hub and on any extra publishers, such as the AMQP exchange.
func newApp(cfg config.Config, database *sqlx.DB, sessionManager *scs.SessionManager, extra ...events.Publisher) *app {
	userStore := store.NewUserStore(database)
	matchStore := store.NewMatchStore(database)
	teamStore := store.NewTeamStore(database)
	playerStore := store.NewPlayerStore(database)

	a := &app{cfg: cfg, sessionManager: sessionManager, userStore: userStore}
	a.ws = &wsHandler{app: a}
	a.hub = realtime.NewHub(a.ws, originChecker(cfg.AllowedOrigins))

	publisher := append(events.Multi{a.hub}, extra...)

	a.matches = service.NewMatchService(database, matchStore, teamStore, playerStore, publisher)
	a.teams = service.NewTeamService(database, teamStore, playerStore)
	a.players = service.NewPlayerService(database, playerStore)
	a.chat = service.NewChatService(store.NewChatStore(database), userStore, publisher)
	a.presence = service.NewPresenceService(store.NewPresenceStore(database), userStore, publisher)
	a.users = service.NewUserService(userStore)
	return a
}

func originChecker(allowed []string) func(r *http.Request) bool {
	if slices.Contains(allowed, "*") {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || slices.Contains(allowed, origin)
	}
}

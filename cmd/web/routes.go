package main

import (
	"net/http"

	"github.com/AdamBeresnev/pitch-perfect/internal/football"
	"github.com/AdamBeresnev/pitch-perfect/internal/httputil"
	"github.com/AdamBeresnev/pitch-perfect/internal/middleware"
	"github.com/AdamBeresnev/pitch-perfect/internal/service"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/cors"
)

func newRouter(a *app) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]any{"status": "ok", "clients": a.hub.ClientCount()})
	})

	// The upgrade hijacks the connection, so /ws sits outside LoadAndSave.
	r.With(middleware.LoadSessionUser(a.sessionManager, a.userStore)).Get("/ws", a.ws.serveWS)

	r.Group(func(r chi.Router) {
		r.Use(a.sessionManager.LoadAndSave)
		r.Use(middleware.LoadAuthenticatedUser(a.sessionManager, a.userStore))
		a.sessionRoutes(r)
	})

	return r
}

func (a *app) sessionRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Use(cors.New(cors.Options{
			AllowedOrigins:   a.cfg.AllowedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
			AllowedHeaders:   []string{"Content-Type"},
			AllowCredentials: true,
		}).Handler)

		r.Get("/matches", a.listMatches)
		r.Get("/matches/{id}", a.getMatch)
		r.Get("/matches/{id}/events", a.getMatchEvents)
		r.Get("/teams", a.listTeams)
		r.Get("/teams/{id}", a.getTeam)
		r.Get("/players", a.listPlayers)
		r.Get("/players/{id}", a.getPlayer)
		r.Get("/chat/{room}/messages", a.listChatMessages)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAPIAuth)

			r.Post("/matches", a.createMatch)
			r.Delete("/matches/{id}", a.deleteMatch)
			r.Post("/matches/{id}/start", a.matchAction("start match", func(r *http.Request, id uuid.UUID) (*football.Match, error) {
				return a.matches.StartMatch(r.Context(), id)
			}))
			r.Post("/matches/{id}/complete", a.matchAction("complete match", func(r *http.Request, id uuid.UUID) (*football.Match, error) {
				return a.matches.CompleteMatch(r.Context(), id)
			}))
			r.Post("/matches/{id}/cancel", matchCommand("cancel match", func(r *http.Request, id uuid.UUID, req cancelRequest) (*football.Match, error) {
				return a.matches.CancelMatch(r.Context(), id, req.Reason)
			}))
			r.Put("/matches/{id}/score", matchCommand("update score", func(r *http.Request, id uuid.UUID, req scoreRequest) (*football.Match, error) {
				return a.matches.UpdateScore(r.Context(), id, req.HomeScore, req.AwayScore)
			}))
			r.Post("/matches/{id}/goals", matchCommand("add goal", func(r *http.Request, id uuid.UUID, req goalRequest) (*football.Match, error) {
				return a.matches.AddGoal(r.Context(), id, service.GoalInput(req))
			}))
			r.Post("/matches/{id}/own-goals", matchCommand("add own goal", func(r *http.Request, id uuid.UUID, req ownGoalRequest) (*football.Match, error) {
				return a.matches.AddOwnGoal(r.Context(), id, req.PlayerID, req.BenefitingSide)
			}))
			r.Post("/matches/{id}/incidents", matchCommand("record incident", func(r *http.Request, id uuid.UUID, req incidentRequest) (*football.Match, error) {
				in, err := req.input()
				if err != nil {
					return nil, err
				}
				return a.matches.RecordIncident(r.Context(), id, in)
			}))
			r.Put("/matches/{id}/schedule", matchCommand("reschedule match", func(r *http.Request, id uuid.UUID, req rescheduleRequest) (*football.Match, error) {
				return a.matches.RescheduleMatch(r.Context(), id, req.StartTime)
			}))
			r.Put("/matches/{id}/venue", matchCommand("change venue", func(r *http.Request, id uuid.UUID, req venueRequest) (*football.Match, error) {
				return a.matches.ChangeVenue(r.Context(), id, req.Venue)
			}))
			r.Post("/matches/{id}/events", a.submitMatchEvent)

			r.Post("/teams", a.createTeam)
			r.Patch("/teams/{id}", a.updateTeam)
			r.Delete("/teams/{id}", a.deleteTeam)
			r.Post("/teams/{id}/players", a.addTeamPlayer)
			r.Delete("/teams/{id}/players/{playerID}", a.removeTeamPlayer)

			r.Post("/players", a.createPlayer)
			r.Patch("/players/{id}", a.updatePlayer)
			r.Put("/players/{id}/photo", a.setPlayerPhoto)
			r.Delete("/players/{id}", a.deletePlayer)

			r.Post("/chat/{room}/messages", a.postChatMessage)
		})
	})

	r.Get("/login", a.loginPage)
	r.Get("/auth/{provider}", a.beginAuth)
	r.Get("/auth/{provider}/callback", a.authCallback)
	r.Post("/auth/guest", a.guestLogin)
	r.Post("/logout", a.logout)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)

		r.Get("/", a.indexPage)
		r.Get("/matches/{id}", a.matchPage)
	})
}

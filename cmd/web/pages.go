package main

import (
	"errors"
	"net/http"

	"github.com/AdamBeresnev/pitch-perfect/internal/football"
	"github.com/AdamBeresnev/pitch-perfect/internal/httputil"
	"github.com/AdamBeresnev/pitch-perfect/internal/middleware"
	"github.com/AdamBeresnev/pitch-perfect/internal/service"
	"github.com/AdamBeresnev/pitch-perfect/internal/store"
	"github.com/AdamBeresnev/pitch-perfect/views"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/markbates/goth/gothic"
)

func (a *app) indexPage(w http.ResponseWriter, r *http.Request) {
	matches, err := a.matches.ListMatches(r.Context(), store.MatchFilter{})
	if err != nil {
		httputil.InternalServerError(w, "Failed to get matches", err)
		return
	}
	dtos := make([]service.MatchDTO, 0, len(matches))
	for _, m := range matches {
		dtos = append(dtos, service.NewMatchDTO(m))
	}
	views.Render(w, r, views.MatchList(views.PrepareMatchListData(dtos)))
}

func (a *app) matchPage(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.BadRequest(w, "Invalid match ID", err)
		return
	}
	m, err := a.matches.GetMatch(r.Context(), id)
	if err != nil {
		if errors.Is(err, football.ErrNotFound) {
			httputil.NotFound(w, "Match not found", err)
			return
		}
		httputil.InternalServerError(w, "Failed to get match", err)
		return
	}
	views.Render(w, r, views.MatchPage(service.NewMatchDTO(m), service.NewEventDTOs(m)))
}

func (a *app) loginPage(w http.ResponseWriter, r *http.Request) {
	views.Render(w, r, views.LoginPage())
}

func (a *app) beginAuth(w http.ResponseWriter, r *http.Request) {
	r = gothic.GetContextWithProvider(r, chi.URLParam(r, "provider"))
	gothic.BeginAuthHandler(w, r)
}

func (a *app) authCallback(w http.ResponseWriter, r *http.Request) {
	r = gothic.GetContextWithProvider(r, chi.URLParam(r, "provider"))

	gothUser, err := gothic.CompleteUserAuth(w, r)
	if err != nil {
		httputil.BadRequest(w, "Authentication failure", err)
		return
	}

	user, err := a.users.FindOrCreateUserByProvider(r.Context(), gothUser)
	if err != nil {
		httputil.InternalServerError(w, "Failed to find or create user", err)
		return
	}

	a.login(w, r, user.ID)
}

func (a *app) guestLogin(w http.ResponseWriter, r *http.Request) {
	user, err := a.users.EnsureGuestUser(r.Context())
	if err != nil {
		httputil.InternalServerError(w, "Failed to login as guest", err)
		return
	}
	a.login(w, r, user.ID)
}

func (a *app) login(w http.ResponseWriter, r *http.Request, userID uuid.UUID) {
	if err := a.sessionManager.RenewToken(r.Context()); err != nil {
		httputil.InternalServerError(w, "Failed to renew session", err)
		return
	}
	a.sessionManager.Put(r.Context(), middleware.SessionUserKey, userID.String())
	http.Redirect(w, r, "/", http.StatusFound)
}

func (a *app) logout(w http.ResponseWriter, r *http.Request) {
	if err := a.sessionManager.Destroy(r.Context()); err != nil {
		httputil.InternalServerError(w, "Failed to log out", err)
		return
	}
	if r.Header.Get("HX-Request") != "" {
		w.Header().Set("HX-Redirect", "/login")
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, "/login", http.StatusFound)
}

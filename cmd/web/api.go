package main

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/AdamBeresnev/pitch-perfect/internal/football"
	"github.com/AdamBeresnev/pitch-perfect/internal/httputil"
	"github.com/AdamBeresnev/pitch-perfect/internal/middleware"
	"github.com/AdamBeresnev/pitch-perfect/internal/service"
	"github.com/AdamBeresnev/pitch-perfect/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type createMatchRequest struct {
	HomeTeamID uuid.UUID `json:"home_team_id"`
	AwayTeamID uuid.UUID `json:"away_team_id"`
	Venue      string    `json:"venue"`
	StartTime  time.Time `json:"start_time"`
}

type scoreRequest struct {
	HomeScore int `json:"home_score"`
	AwayScore int `json:"away_score"`
}

type goalRequest struct {
	ScorerID    uuid.UUID  `json:"scorer_id"`
	AssistantID *uuid.UUID `json:"assistant_id,omitempty"`
	IsHomeTeam  bool       `json:"is_home_team"`
}

type ownGoalRequest struct {
	PlayerID       uuid.UUID     `json:"player_id"`
	BenefitingSide football.Side `json:"benefiting_side"`
}

type incidentRequest struct {
	Type              string        `json:"type"`
	Side              football.Side `json:"side"`
	PrimaryPlayerID   *uuid.UUID    `json:"primary_player_id,omitempty"`
	SecondaryPlayerID *uuid.UUID    `json:"secondary_player_id,omitempty"`
	Description       string        `json:"description,omitempty"`
}

func (req incidentRequest) input() (service.IncidentInput, error) {
	t, err := football.ParseMatchEventType(req.Type)
	if err != nil {
		return service.IncidentInput{}, err
	}
	return service.IncidentInput{
		Type:              t,
		Side:              req.Side,
		PrimaryPlayerID:   req.PrimaryPlayerID,
		SecondaryPlayerID: req.SecondaryPlayerID,
		Description:       req.Description,
	}, nil
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

type rescheduleRequest struct {
	StartTime time.Time `json:"start_time"`
}

type venueRequest struct {
	Venue string `json:"venue"`
}

type teamRequest struct {
	Name      string `json:"name"`
	ShortName string `json:"short_name"`
	Country   string `json:"country"`
	LogoURL   string `json:"logo_url"`
}

type teamPatchRequest struct {
	Name      *string `json:"name"`
	ShortName *string `json:"short_name"`
	Country   *string `json:"country"`
	LogoURL   *string `json:"logo_url"`
}

type rosterRequest struct {
	PlayerID uuid.UUID `json:"player_id"`
}

// Positions may be sent as the enum name, the short code ("GK") or the display name.
type playerRequest struct {
	Name         string `json:"name"`
	DateOfBirth  string `json:"date_of_birth"`
	Nationality  string `json:"nationality"`
	Position     string `json:"position"`
	JerseyNumber string `json:"jersey_number"`
	PhotoURL     string `json:"photo_url"`
}

type playerPatchRequest struct {
	Name         *string `json:"name"`
	DateOfBirth  *string `json:"date_of_birth"`
	Nationality  *string `json:"nationality"`
	Position     *string `json:"position"`
	JerseyNumber *string `json:"jersey_number"`
}

type photoRequest struct {
	PhotoURL string `json:"photo_url"`
}

type chatRequest struct {
	Content string `json:"content"`
}

func urlID(w http.ResponseWriter, r *http.Request, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{Error: "invalid " + param})
		return uuid.Nil, false
	}
	return id, true
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := httputil.DecodeJSON(r, dst); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{Error: err.Error()})
		return false
	}
	return true
}

func parseDate(field, s string) (time.Time, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, &football.ValidationError{Field: field, Reason: "must be formatted as YYYY-MM-DD"}
	}
	return t, nil
}

// Matches

func parseMatchFilter(r *http.Request) (store.MatchFilter, error) {
	var f store.MatchFilter
	q := r.URL.Query()
	if s := q.Get("status"); s != "" {
		status, err := football.ParseMatchStatus(s)
		if err != nil {
			return f, err
		}
		f.Status = &status
	}
	if s := q.Get("team_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			return f, &football.ValidationError{Field: "team_id", Reason: "must be a UUID"}
		}
		f.TeamID = &id
	}
	for _, bound := range []struct {
		name string
		dst  **time.Time
	}{{"from", &f.From}, {"to", &f.To}} {
		s := q.Get(bound.name)
		if s == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return f, &football.ValidationError{Field: bound.name, Reason: "must be an RFC 3339 timestamp"}
		}
		*bound.dst = &t
	}
	return f, nil
}

func (a *app) listMatches(w http.ResponseWriter, r *http.Request) {
	filter, err := parseMatchFilter(r)
	if err != nil {
		httputil.WriteError(w, "list matches", err)
		return
	}
	matches, err := a.matches.ListMatches(r.Context(), filter)
	if err != nil {
		httputil.WriteError(w, "list matches", err)
		return
	}
	out := make([]service.MatchDTO, 0, len(matches))
	for _, m := range matches {
		out = append(out, service.NewMatchDTO(m))
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

func (a *app) getMatch(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	m, err := a.matches.GetMatch(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, "get match", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, service.NewMatchDTO(m))
}

func (a *app) getMatchEvents(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	evts, err := a.matches.GetMatchEvents(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, "get match events", err)
		return
	}
	out := make([]service.EventDTO, 0, len(evts))
	for _, e := range evts {
		out = append(out, service.NewEventDTO(id, e))
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

func (a *app) createMatch(w http.ResponseWriter, r *http.Request) {
	var req createMatchRequest
	if !decode(w, r, &req) {
		return
	}
	m, err := a.matches.CreateMatch(r.Context(), service.CreateMatchInput(req))
	if err != nil {
		httputil.WriteError(w, "create match", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, service.NewMatchDTO(m))
}

// matchAction adapts a match command that needs only the URL id.
func (a *app) matchAction(op string, fn func(r *http.Request, id uuid.UUID) (*football.Match, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := urlID(w, r, "id")
		if !ok {
			return
		}
		m, err := fn(r, id)
		if err != nil {
			httputil.WriteError(w, op, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, service.NewMatchDTO(m))
	}
}

// matchCommand adapts a match command that takes a JSON body.
func matchCommand[T any](op string, fn func(r *http.Request, id uuid.UUID, req T) (*football.Match, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := urlID(w, r, "id")
		if !ok {
			return
		}
		var req T
		if !decode(w, r, &req) {
			return
		}
		m, err := fn(r, id, req)
		if err != nil {
			httputil.WriteError(w, op, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, service.NewMatchDTO(m))
	}
}

func (a *app) submitMatchEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	var req service.EventSubmission
	if !decode(w, r, &req) {
		return
	}
	e, err := a.matches.ProcessMatchEvent(r.Context(), id, req)
	if err != nil {
		httputil.WriteError(w, "submit match event", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, service.NewEventDTO(id, e))
}

func (a *app) deleteMatch(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	if err := a.matches.DeleteMatch(r.Context(), id); err != nil {
		httputil.WriteError(w, "delete match", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Teams

func (a *app) listTeams(w http.ResponseWriter, r *http.Request) {
	teams, err := a.teams.ListTeams(r.Context())
	if err != nil {
		httputil.WriteError(w, "list teams", err)
		return
	}
	out := make([]service.TeamDTO, 0, len(teams))
	for _, t := range teams {
		out = append(out, service.NewTeamDTO(t))
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

func (a *app) getTeam(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	t, err := a.teams.GetTeam(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, "get team", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, service.NewTeamDTO(t))
}

func (a *app) createTeam(w http.ResponseWriter, r *http.Request) {
	var req teamRequest
	if !decode(w, r, &req) {
		return
	}
	t, err := a.teams.CreateTeam(r.Context(), service.TeamInput(req))
	if err != nil {
		httputil.WriteError(w, "create team", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, service.NewTeamDTO(t))
}

func (a *app) updateTeam(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	var req teamPatchRequest
	if !decode(w, r, &req) {
		return
	}
	t, err := a.teams.UpdateTeam(r.Context(), id, football.TeamUpdate(req))
	if err != nil {
		httputil.WriteError(w, "update team", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, service.NewTeamDTO(t))
}

func (a *app) addTeamPlayer(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	var req rosterRequest
	if !decode(w, r, &req) {
		return
	}
	t, err := a.teams.AddPlayer(r.Context(), id, req.PlayerID)
	if err != nil {
		httputil.WriteError(w, "add player to team", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, service.NewTeamDTO(t))
}

func (a *app) removeTeamPlayer(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	playerID, ok := urlID(w, r, "playerID")
	if !ok {
		return
	}
	t, err := a.teams.RemovePlayer(r.Context(), id, playerID)
	if err != nil {
		httputil.WriteError(w, "remove player from team", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, service.NewTeamDTO(t))
}

func (a *app) deleteTeam(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	if err := a.teams.DeleteTeam(r.Context(), id); err != nil {
		httputil.WriteError(w, "delete team", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Players

func (a *app) listPlayers(w http.ResponseWriter, r *http.Request) {
	players, err := a.players.ListPlayers(r.Context())
	if err != nil {
		httputil.WriteError(w, "list players", err)
		return
	}
	out := make([]service.PlayerDTO, 0, len(players))
	for _, p := range players {
		out = append(out, service.NewPlayerDTO(p))
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

func (a *app) getPlayer(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	p, err := a.players.GetPlayer(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, "get player", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, service.NewPlayerDTO(p))
}

func (a *app) createPlayer(w http.ResponseWriter, r *http.Request) {
	var req playerRequest
	if !decode(w, r, &req) {
		return
	}
	dob, err := parseDate("date_of_birth", req.DateOfBirth)
	if err != nil {
		httputil.WriteError(w, "create player", err)
		return
	}
	position, err := football.ParsePosition(req.Position)
	if err != nil {
		httputil.WriteError(w, "create player", err)
		return
	}
	p, err := a.players.CreatePlayer(r.Context(), service.PlayerInput{
		Name:         req.Name,
		DateOfBirth:  dob,
		Nationality:  req.Nationality,
		Position:     position,
		JerseyNumber: req.JerseyNumber,
		PhotoURL:     req.PhotoURL,
	})
	if err != nil {
		httputil.WriteError(w, "create player", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, service.NewPlayerDTO(p))
}

func (a *app) updatePlayer(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	var req playerPatchRequest
	if !decode(w, r, &req) {
		return
	}
	u := football.PlayerUpdate{
		Name:         req.Name,
		Nationality:  req.Nationality,
		JerseyNumber: req.JerseyNumber,
	}
	if req.Position != nil {
		position, err := football.ParsePosition(*req.Position)
		if err != nil {
			httputil.WriteError(w, "update player", err)
			return
		}
		u.Position = &position
	}
	if req.DateOfBirth != nil {
		dob, err := parseDate("date_of_birth", *req.DateOfBirth)
		if err != nil {
			httputil.WriteError(w, "update player", err)
			return
		}
		u.DateOfBirth = &dob
	}
	p, err := a.players.UpdatePlayer(r.Context(), id, u)
	if err != nil {
		httputil.WriteError(w, "update player", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, service.NewPlayerDTO(p))
}

func (a *app) setPlayerPhoto(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	var req photoRequest
	if !decode(w, r, &req) {
		return
	}
	p, err := a.players.SetPhotoURL(r.Context(), id, req.PhotoURL)
	if err != nil {
		httputil.WriteError(w, "set player photo", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, service.NewPlayerDTO(p))
}

func (a *app) deletePlayer(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	if err := a.players.DeletePlayer(r.Context(), id); err != nil {
		httputil.WriteError(w, "delete player", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Chat

func (a *app) listChatMessages(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			httputil.WriteError(w, "list chat messages", &football.ValidationError{Field: "limit", Reason: "must be a number"})
			return
		}
		limit = n
	}
	msgs, err := a.chat.ListMessages(r.Context(), chi.URLParam(r, "room"), limit)
	if err != nil {
		httputil.WriteError(w, "list chat messages", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, msgs)
}

func (a *app) postChatMessage(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if !decode(w, r, &req) {
		return
	}
	user := middleware.GetAuthenticatedUser(r.Context())
	msg, err := a.chat.ProcessAndSaveMessage(r.Context(), chi.URLParam(r, "room"), user.ID, req.Content)
	if err != nil {
		httputil.WriteError(w, fmt.Sprintf("post chat message by %s", user.ID), err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, msg)
}

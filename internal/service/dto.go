package service

import (
	"time"

	"github.com/AdamBeresnev/pitch-perfect/internal/football"
	"github.com/google/uuid"
)

// JSON shapes shared by the REST API and published events.

type PlayerDTO struct {
	ID           uuid.UUID         `json:"id"`
	Name         string            `json:"name"`
	DateOfBirth  string            `json:"date_of_birth"`
	Age          int               `json:"age"`
	Nationality  string            `json:"nationality"`
	Position     football.Position `json:"position"`
	PositionCode string            `json:"position_code"`
	JerseyNumber string            `json:"jersey_number"`
	PhotoURL     string            `json:"photo_url,omitempty"`
}

type TeamDTO struct {
	ID        uuid.UUID   `json:"id"`
	Name      string      `json:"name"`
	ShortName string      `json:"short_name"`
	Country   string      `json:"country"`
	LogoURL   string      `json:"logo_url,omitempty"`
	Players   []PlayerDTO `json:"players"`
}

type EventDTO struct {
	ID              uuid.UUID               `json:"id"`
	MatchID         uuid.UUID               `json:"match_id"`
	Type            football.MatchEventType `json:"type"`
	Description     string                  `json:"description"`
	PrimaryPlayer   *PlayerRefDTO           `json:"primary_player,omitempty"`
	SecondaryPlayer *PlayerRefDTO           `json:"secondary_player,omitempty"`
	Timestamp       time.Time               `json:"timestamp"`
	MatchMinute     int                     `json:"match_minute"`
	Payload         football.EventPayload   `json:"payload,omitempty"`
}

type PlayerRefDTO struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type MatchDTO struct {
	ID        uuid.UUID            `json:"id"`
	HomeTeam  TeamDTO              `json:"home_team"`
	AwayTeam  TeamDTO              `json:"away_team"`
	Venue     string               `json:"venue"`
	StartTime time.Time            `json:"start_time"`
	Status    football.MatchStatus `json:"status"`
	HomeScore int                  `json:"home_score"`
	AwayScore int                  `json:"away_score"`
	Result    string               `json:"result"`
	WinnerID  *uuid.UUID           `json:"winner_id,omitempty"`
	IsDraw    bool                 `json:"is_draw"`
	Version   int                  `json:"version"`
}

func NewPlayerDTO(p *football.Player) PlayerDTO {
	return PlayerDTO{
		ID:           p.ID(),
		Name:         p.Name(),
		DateOfBirth:  p.DateOfBirth().Format(time.DateOnly),
		Age:          p.Age(),
		Nationality:  p.Nationality(),
		Position:     p.Position(),
		PositionCode: p.Position().ShortCode(),
		JerseyNumber: p.JerseyNumber(),
		PhotoURL:     p.PhotoURL(),
	}
}

func NewTeamDTO(t *football.Team) TeamDTO {
	players := make([]PlayerDTO, 0, t.SquadSize())
	for _, p := range t.Players() {
		players = append(players, NewPlayerDTO(p))
	}
	return TeamDTO{
		ID:        t.ID(),
		Name:      t.Name(),
		ShortName: t.ShortName(),
		Country:   t.Country(),
		LogoURL:   t.LogoURL(),
		Players:   players,
	}
}

func NewEventDTO(matchID uuid.UUID, e *football.MatchEvent) EventDTO {
	return EventDTO{
		ID:              e.ID(),
		MatchID:         matchID,
		Type:            e.Type(),
		Description:     e.Description(),
		PrimaryPlayer:   playerRef(e.PrimaryPlayer()),
		SecondaryPlayer: playerRef(e.SecondaryPlayer()),
		Timestamp:       e.Timestamp(),
		MatchMinute:     e.MatchMinute(),
		Payload:         e.Payload(),
	}
}

func NewEventDTOs(m *football.Match) []EventDTO {
	out := make([]EventDTO, 0, len(m.Events()))
	for _, e := range m.Events() {
		out = append(out, NewEventDTO(m.ID(), e))
	}
	return out
}

func NewMatchDTO(m *football.Match) MatchDTO {
	dto := MatchDTO{
		ID:        m.ID(),
		HomeTeam:  NewTeamDTO(m.HomeTeam()),
		AwayTeam:  NewTeamDTO(m.AwayTeam()),
		Venue:     m.Venue(),
		StartTime: m.StartTime(),
		Status:    m.Status(),
		HomeScore: m.HomeScore(),
		AwayScore: m.AwayScore(),
		Result:    m.Result(),
		IsDraw:    m.IsDraw(),
		Version:   m.Version(),
	}
	if w := m.Winner(); w != nil {
		id := w.ID()
		dto.WinnerID = &id
	}
	return dto
}

func playerRef(p *football.Player) *PlayerRefDTO {
	if p == nil {
		return nil
	}
	return &PlayerRefDTO{ID: p.ID(), Name: p.Name()}
}

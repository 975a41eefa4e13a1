package football

import (
	"time"

	"github.com/google/uuid"
)

// The *State types carry persisted values back into the domain. Restore
// functions trust their input and skip validation.

type PlayerState struct {
	ID           uuid.UUID
	Name         string
	DateOfBirth  time.Time
	Nationality  string
	Position     Position
	JerseyNumber string
	PhotoURL     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func RestorePlayer(s PlayerState) *Player {
	return &Player{
		id:           s.ID,
		name:         s.Name,
		dateOfBirth:  dateOnly(s.DateOfBirth),
		nationality:  s.Nationality,
		position:     s.Position,
		jerseyNumber: s.JerseyNumber,
		photoURL:     s.PhotoURL,
		createdAt:    s.CreatedAt,
		updatedAt:    s.UpdatedAt,
	}
}

type TeamState struct {
	ID        uuid.UUID
	Name      string
	ShortName string
	Country   string
	LogoURL   string
	Players   []*Player
	CreatedAt time.Time
	UpdatedAt time.Time
}

func RestoreTeam(s TeamState) *Team {
	players := make([]*Player, len(s.Players))
	copy(players, s.Players)
	return &Team{
		id:        s.ID,
		name:      s.Name,
		shortName: s.ShortName,
		country:   s.Country,
		logoURL:   s.LogoURL,
		players:   players,
		createdAt: s.CreatedAt,
		updatedAt: s.UpdatedAt,
	}
}

type EventState struct {
	ID              uuid.UUID
	Type            MatchEventType
	Description     string
	PrimaryPlayer   *Player
	SecondaryPlayer *Player
	Timestamp       time.Time
	MatchMinute     int
	Payload         EventPayload
}

func RestoreEvent(s EventState) *MatchEvent {
	return &MatchEvent{
		id:              s.ID,
		eventType:       s.Type,
		description:     s.Description,
		primaryPlayer:   s.PrimaryPlayer,
		secondaryPlayer: s.SecondaryPlayer,
		timestamp:       s.Timestamp,
		matchMinute:     s.MatchMinute,
		payload:         s.Payload,
	}
}

type MatchState struct {
	ID        uuid.UUID
	HomeTeam  *Team
	AwayTeam  *Team
	Venue     string
	StartTime time.Time
	Status    MatchStatus
	HomeScore int
	AwayScore int
	Events    []*MatchEvent
	CreatedAt time.Time
	UpdatedAt time.Time
	Version   int
}

func RestoreMatch(s MatchState) *Match {
	events := make([]*MatchEvent, len(s.Events))
	copy(events, s.Events)
	return &Match{
		id:        s.ID,
		homeTeam:  s.HomeTeam,
		awayTeam:  s.AwayTeam,
		venue:     s.Venue,
		startTime: s.StartTime,
		status:    s.Status,
		homeScore: s.HomeScore,
		awayScore: s.AwayScore,
		events:    events,
		createdAt: s.CreatedAt,
		updatedAt: s.UpdatedAt,
		version:   s.Version,
	}
}

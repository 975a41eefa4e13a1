package football

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type MatchEventType string

const (
	EventMatchStart     MatchEventType = "MATCH_START"
	EventMatchEnd       MatchEventType = "MATCH_END"
	EventMatchCancelled MatchEventType = "MATCH_CANCELLED"
	EventGoal           MatchEventType = "GOAL"
	EventOwnGoal        MatchEventType = "OWN_GOAL"
	EventYellowCard     MatchEventType = "YELLOW_CARD"
	EventRedCard        MatchEventType = "RED_CARD"
	EventSubstitution   MatchEventType = "SUBSTITUTION"
	EventPenaltyAwarded MatchEventType = "PENALTY_AWARDED"
	EventPenaltyMissed  MatchEventType = "PENALTY_MISSED"
	EventPenaltySaved   MatchEventType = "PENALTY_SAVED"
	EventCorner         MatchEventType = "CORNER"
	EventFreeKick       MatchEventType = "FREE_KICK"
	EventInjury         MatchEventType = "INJURY"
	EventOffside        MatchEventType = "OFFSIDE"
	EventRescheduled    MatchEventType = "RESCHEDULED"
	EventVenueChange    MatchEventType = "VENUE_CHANGE"
)

var eventTypes = map[MatchEventType]bool{
	EventMatchStart: false, EventMatchEnd: false, EventMatchCancelled: false,
	EventGoal: false, EventOwnGoal: false,
	EventYellowCard: true, EventRedCard: true, EventSubstitution: true,
	EventPenaltyAwarded: true, EventPenaltyMissed: true, EventPenaltySaved: true,
	EventCorner: true, EventFreeKick: true, EventInjury: true, EventOffside: true,
	EventRescheduled: false, EventVenueChange: false,
}

func (t MatchEventType) Valid() bool {
	_, ok := eventTypes[t]
	return ok
}

// IsIncident reports whether t can be recorded directly. Lifecycle and scoring
// types are only produced by their own Match operations.
func (t MatchEventType) IsIncident() bool {
	return eventTypes[t]
}

// ParseMatchEventType accepts a type name in any case.
func ParseMatchEventType(s string) (MatchEventType, error) {
	t := MatchEventType(strings.ToUpper(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", invalid("type", "unknown event type "+s)
	}
	return t, nil
}

type Side string

const (
	Home Side = "HOME"
	Away Side = "AWAY"
)

func (s Side) Valid() bool { return s == Home || s == Away }

// EventPayload is the typed, per-event-type data attached to a MatchEvent.
type EventPayload interface {
	payloadFor() []MatchEventType
}

type StatusChangePayload struct {
	From MatchStatus `json:"from"`
	To   MatchStatus `json:"to"`
}

type CancellationPayload struct {
	Reason string      `json:"reason"`
	From   MatchStatus `json:"from"`
}

type GoalPayload struct {
	Side      Side `json:"side"`
	HomeScore int  `json:"home_score"`
	AwayScore int  `json:"away_score"`
}

type ReschedulePayload struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

type VenueChangePayload struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type IncidentPayload struct {
	Side Side `json:"side"`
}

func (StatusChangePayload) payloadFor() []MatchEventType {
	return []MatchEventType{EventMatchStart, EventMatchEnd}
}
func (CancellationPayload) payloadFor() []MatchEventType {
	return []MatchEventType{EventMatchCancelled}
}
func (GoalPayload) payloadFor() []MatchEventType { return []MatchEventType{EventGoal, EventOwnGoal} }
func (ReschedulePayload) payloadFor() []MatchEventType {
	return []MatchEventType{EventRescheduled}
}
func (VenueChangePayload) payloadFor() []MatchEventType {
	return []MatchEventType{EventVenueChange}
}
func (IncidentPayload) payloadFor() []MatchEventType {
	var out []MatchEventType
	for t, incident := range eventTypes {
		if incident {
			out = append(out, t)
		}
	}
	return out
}

// PayloadFits reports whether p is the payload variant carried by events of type t.
func PayloadFits(t MatchEventType, p EventPayload) bool {
	if p == nil {
		return false
	}
	for _, allowed := range p.payloadFor() {
		if allowed == t {
			return true
		}
	}
	return false
}

// MatchEvent is an entry of a match ledger. It is read-only once created.
type MatchEvent struct {
	id              uuid.UUID
	eventType       MatchEventType
	description     string
	primaryPlayer   *Player
	secondaryPlayer *Player
	timestamp       time.Time
	matchMinute     int
	payload         EventPayload
}

// newMatchEvent stamps id and time and derives the minute from kickoff. Events
// before kickoff are minute 0; there is no upper cap after the final whistle.
func newMatchEvent(kickoff time.Time, t MatchEventType, description string, primary, secondary *Player, payload EventPayload) *MatchEvent {
	ts := now()
	return &MatchEvent{
		id:              newID(),
		eventType:       t,
		description:     description,
		primaryPlayer:   primary,
		secondaryPlayer: secondary,
		timestamp:       ts,
		matchMinute:     minuteAt(kickoff, ts),
		payload:         payload,
	}
}

func minuteAt(kickoff, at time.Time) int {
	if at.Before(kickoff) {
		return 0
	}
	return int(at.Sub(kickoff) / time.Minute)
}

func (e *MatchEvent) ID() uuid.UUID            { return e.id }
func (e *MatchEvent) Type() MatchEventType     { return e.eventType }
func (e *MatchEvent) Description() string      { return e.description }
func (e *MatchEvent) PrimaryPlayer() *Player   { return e.primaryPlayer }
func (e *MatchEvent) SecondaryPlayer() *Player { return e.secondaryPlayer }
func (e *MatchEvent) Timestamp() time.Time     { return e.timestamp }
func (e *MatchEvent) MatchMinute() int         { return e.matchMinute }
func (e *MatchEvent) Payload() EventPayload    { return e.payload }

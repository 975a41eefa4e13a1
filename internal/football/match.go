package football

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Match is the aggregate root: status, score and the event ledger change only
// through its methods, and a failed call leaves all three untouched.
type Match struct {
	id        uuid.UUID
	homeTeam  *Team
	awayTeam  *Team
	venue     string
	startTime time.Time
	status    MatchStatus
	homeScore int
	awayScore int
	events    []*MatchEvent
	createdAt time.Time
	updatedAt time.Time
	version   int
}

func NewMatch(homeTeam, awayTeam *Team, venue string, startTime time.Time) (*Match, error) {
	if homeTeam == nil || awayTeam == nil {
		return nil, invalid("teams", "both home and away teams must be specified")
	}
	if homeTeam.Equal(awayTeam) {
		return nil, invalid("teams", "home and away teams cannot be the same")
	}
	if err := validateVenue(venue); err != nil {
		return nil, err
	}
	t := now()
	if err := validateStartTime(startTime, t); err != nil {
		return nil, err
	}

	return &Match{
		id:        newID(),
		homeTeam:  homeTeam,
		awayTeam:  awayTeam,
		venue:     venue,
		startTime: startTime,
		status:    StatusScheduled,
		createdAt: t,
		updatedAt: t,
	}, nil
}

func (m *Match) Start() error {
	from := m.status
	if err := m.transition("start", StatusLive); err != nil {
		return err
	}
	m.record(EventMatchStart, "Match started", nil, nil, StatusChangePayload{From: from, To: StatusLive})
	return nil
}

func (m *Match) Complete() error {
	from := m.status
	if err := m.transition("complete", StatusCompleted); err != nil {
		return err
	}
	m.record(EventMatchEnd, "Match completed", nil, nil, StatusChangePayload{From: from, To: StatusCompleted})
	return nil
}

func (m *Match) Cancel(reason string) error {
	from := m.status
	if err := m.transition("cancel", StatusCancelled); err != nil {
		return err
	}
	description := strings.TrimSpace(reason)
	if description == "" {
		description = "Match cancelled"
	}
	m.record(EventMatchCancelled, description, nil, nil, CancellationPayload{Reason: reason, From: from})
	return nil
}

// UpdateScore sets an absolute score as a correction. It records no event and
// never lowers either side's score.
func (m *Match) UpdateScore(homeScore, awayScore int) error {
	if m.status != StatusLive {
		return &IllegalStateError{Op: "update score of", Status: m.status}
	}
	if homeScore < 0 || awayScore < 0 {
		return invalid("score", "scores cannot be negative")
	}
	if homeScore < m.homeScore || awayScore < m.awayScore {
		return invalid("score", fmt.Sprintf("cannot decrease score from %d-%d to %d-%d", m.homeScore, m.awayScore, homeScore, awayScore))
	}
	if homeScore == m.homeScore && awayScore == m.awayScore {
		return invalid("score", fmt.Sprintf("score is already %d-%d", homeScore, awayScore))
	}

	m.homeScore = homeScore
	m.awayScore = awayScore
	m.updatedAt = now()
	return nil
}

func (m *Match) AddHomeGoal(scorer, assistant *Player) error {
	return m.addGoal(Home, scorer, assistant)
}

func (m *Match) AddAwayGoal(scorer, assistant *Player) error {
	return m.addGoal(Away, scorer, assistant)
}

func (m *Match) addGoal(side Side, scorer, assistant *Player) error {
	if m.status != StatusLive {
		return &IllegalStateError{Op: "add goal to", Status: m.status}
	}
	if scorer == nil {
		return invalid("scorer", "must be specified")
	}
	if assistant != nil && assistant.Equal(scorer) {
		return invalid("assistant", "cannot be the scorer")
	}

	m.bump(side)
	m.record(EventGoal, "Goal scored by "+scorer.Name(), scorer, assistant,
		GoalPayload{Side: side, HomeScore: m.homeScore, AwayScore: m.awayScore})
	return nil
}

// AddOwnGoal credits one goal to benefiting, the opponent of player's side.
func (m *Match) AddOwnGoal(player *Player, benefiting Side) error {
	if m.status != StatusLive {
		return &IllegalStateError{Op: "add own goal to", Status: m.status}
	}
	if player == nil {
		return invalid("player", "must be specified")
	}
	if !benefiting.Valid() {
		return invalid("side", "must be HOME or AWAY")
	}

	m.bump(benefiting)
	m.record(EventOwnGoal, "Own goal by "+player.Name(), player, nil,
		GoalPayload{Side: benefiting, HomeScore: m.homeScore, AwayScore: m.awayScore})
	return nil
}

// RecordIncident appends a non-scoring, non-lifecycle event while the match is live.
func (m *Match) RecordIncident(t MatchEventType, side Side, primary, secondary *Player, description string) error {
	if !t.Valid() {
		return invalid("type", "unknown event type "+string(t))
	}
	if !t.IsIncident() {
		return invalid("type", string(t)+" cannot be recorded directly")
	}
	if !side.Valid() {
		return invalid("side", "must be HOME or AWAY")
	}
	if m.status != StatusLive {
		return &IllegalStateError{Op: "record " + string(t) + " in", Status: m.status}
	}
	if primary != nil && primary.Equal(secondary) {
		return invalid("secondary_player", "cannot be the primary player")
	}

	if strings.TrimSpace(description) == "" {
		description = defaultIncidentDescription(t, primary)
	}
	m.record(t, description, primary, secondary, IncidentPayload{Side: side})
	return nil
}

func (m *Match) Reschedule(newStartTime time.Time) error {
	if m.status != StatusScheduled {
		return &IllegalStateError{Op: "reschedule", Status: m.status}
	}
	if err := validateStartTime(newStartTime, now()); err != nil {
		return err
	}

	old := m.startTime
	m.startTime = newStartTime
	m.record(EventRescheduled, "Match rescheduled to "+newStartTime.Format(time.RFC3339), nil, nil,
		ReschedulePayload{From: old, To: newStartTime})
	return nil
}

func (m *Match) ChangeVenue(newVenue string) error {
	if m.status != StatusScheduled {
		return &IllegalStateError{Op: "change venue of", Status: m.status}
	}
	if err := validateVenue(newVenue); err != nil {
		return err
	}

	old := m.venue
	m.venue = newVenue
	m.record(EventVenueChange, fmt.Sprintf("Venue changed from %s to %s", old, newVenue), nil, nil,
		VenueChangePayload{From: old, To: newVenue})
	return nil
}

// Result renders "{home} {hs} - {as} {away}".
func (m *Match) Result() string {
	return fmt.Sprintf("%s %d - %d %s", m.homeTeam.Name(), m.homeScore, m.awayScore, m.awayTeam.Name())
}

// Winner is nil unless the match is completed and not a draw.
func (m *Match) Winner() *Team {
	if m.status != StatusCompleted {
		return nil
	}
	switch {
	case m.homeScore > m.awayScore:
		return m.homeTeam
	case m.awayScore > m.homeScore:
		return m.awayTeam
	}
	return nil
}

func (m *Match) IsDraw() bool {
	return m.status == StatusCompleted && m.homeScore == m.awayScore
}

func (m *Match) ID() uuid.UUID        { return m.id }
func (m *Match) HomeTeam() *Team      { return m.homeTeam }
func (m *Match) AwayTeam() *Team      { return m.awayTeam }
func (m *Match) Venue() string        { return m.venue }
func (m *Match) StartTime() time.Time { return m.startTime }
func (m *Match) Status() MatchStatus  { return m.status }
func (m *Match) HomeScore() int       { return m.homeScore }
func (m *Match) AwayScore() int       { return m.awayScore }
func (m *Match) CreatedAt() time.Time { return m.createdAt }
func (m *Match) UpdatedAt() time.Time { return m.updatedAt }

// Version is the persisted revision the aggregate was loaded at; 0 means never saved.
func (m *Match) Version() int { return m.version }

// Events returns the ledger in append order. The slice is a copy.
func (m *Match) Events() []*MatchEvent {
	out := make([]*MatchEvent, len(m.events))
	copy(out, m.events)
	return out
}

func (m *Match) transition(op string, to MatchStatus) error {
	if !CanTransition(m.status, to) {
		return &IllegalStateError{Op: op, Status: m.status}
	}
	m.status = to
	return nil
}

func (m *Match) bump(side Side) {
	if side == Away {
		m.awayScore++
		return
	}
	m.homeScore++
}

// record is the only ledger mutation.
func (m *Match) record(t MatchEventType, description string, primary, secondary *Player, payload EventPayload) {
	m.events = append(m.events, newMatchEvent(m.startTime, t, description, primary, secondary, payload))
	m.updatedAt = now()
}

func defaultIncidentDescription(t MatchEventType, primary *Player) string {
	label := strings.ReplaceAll(strings.ToLower(string(t)), "_", " ")
	label = strings.ToUpper(label[:1]) + label[1:]
	if primary == nil {
		return label
	}
	return label + ": " + primary.Name()
}

func validateVenue(venue string) error {
	if strings.TrimSpace(venue) == "" {
		return invalid("venue", "cannot be empty")
	}
	return nil
}

func validateStartTime(startTime, at time.Time) error {
	if startTime.IsZero() {
		return invalid("start_time", "must be specified")
	}
	if startTime.Before(at) {
		return invalid("start_time", "must be in the future")
	}
	return nil
}

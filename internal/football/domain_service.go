package football

import "time"

// MatchDomainService translates intents into Match calls. It holds no state,
// performs no I/O and returns the same aggregate it was given.
type MatchDomainService struct{}

func (MatchDomainService) StartMatch(m *Match) (*Match, error) {
	return m, m.Start()
}

func (MatchDomainService) CompleteMatch(m *Match) (*Match, error) {
	return m, m.Complete()
}

func (MatchDomainService) CancelMatch(m *Match, reason string) (*Match, error) {
	return m, m.Cancel(reason)
}

func (MatchDomainService) AddGoal(m *Match, scorer, assistant *Player, isHomeTeam bool) (*Match, error) {
	if isHomeTeam {
		return m, m.AddHomeGoal(scorer, assistant)
	}
	return m, m.AddAwayGoal(scorer, assistant)
}

func (MatchDomainService) AddOwnGoal(m *Match, player *Player, benefiting Side) (*Match, error) {
	return m, m.AddOwnGoal(player, benefiting)
}

func (MatchDomainService) UpdateScore(m *Match, homeScore, awayScore int) (*Match, error) {
	return m, m.UpdateScore(homeScore, awayScore)
}

func (MatchDomainService) AddEvent(m *Match, t MatchEventType, side Side, primary, secondary *Player, description string) (*Match, error) {
	return m, m.RecordIncident(t, side, primary, secondary, description)
}

func (MatchDomainService) RescheduleMatch(m *Match, newStartTime time.Time) (*Match, error) {
	return m, m.Reschedule(newStartTime)
}

func (MatchDomainService) ChangeVenue(m *Match, venue string) (*Match, error) {
	return m, m.ChangeVenue(venue)
}

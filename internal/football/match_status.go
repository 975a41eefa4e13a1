package football

import "strings"

type MatchStatus string

const (
	StatusScheduled MatchStatus = "SCHEDULED"
	StatusLive      MatchStatus = "LIVE"
	StatusCompleted MatchStatus = "COMPLETED"
	StatusCancelled MatchStatus = "CANCELLED"
	// StatusPostponed has no incoming transition yet.
	StatusPostponed MatchStatus = "POSTPONED"
)

var transitions = map[MatchStatus][]MatchStatus{
	StatusScheduled: {StatusLive, StatusCancelled},
	StatusLive:      {StatusCompleted, StatusCancelled},
	StatusPostponed: {StatusCancelled},
}

func (s MatchStatus) Valid() bool {
	switch s {
	case StatusScheduled, StatusLive, StatusCompleted, StatusCancelled, StatusPostponed:
		return true
	}
	return false
}

// CanTransition reports whether from → to is an edge of the match state machine.
func CanTransition(from, to MatchStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ParseMatchStatus accepts a status name in any case.
func ParseMatchStatus(s string) (MatchStatus, error) {
	st := MatchStatus(strings.ToUpper(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", invalid("status", "unknown match status "+s)
	}
	return st, nil
}

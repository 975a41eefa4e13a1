package store

import (
	"encoding/json"
	"fmt"

	"github.com/AdamBeresnev/pitch-perfect/internal/football"
)

// encodePayload refuses a payload that does not belong to the event type so
// the ledger never stores a row decodePayload would read back differently.
func encodePayload(t football.MatchEventType, p football.EventPayload) (*string, error) {
	if p == nil {
		return nil, nil
	}
	if !football.PayloadFits(t, p) {
		return nil, fmt.Errorf("encode payload: %T does not belong to %s", p, t)
	}
	b, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	s := string(b)
	return &s, nil
}

// decodePayload picks the payload variant from the event type.
func decodePayload(t football.MatchEventType, raw *string) (football.EventPayload, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}

	var payload football.EventPayload
	var err error
	switch t {
	case football.EventMatchStart, football.EventMatchEnd:
		payload, err = unmarshalPayload[football.StatusChangePayload](*raw)
	case football.EventMatchCancelled:
		payload, err = unmarshalPayload[football.CancellationPayload](*raw)
	case football.EventGoal, football.EventOwnGoal:
		payload, err = unmarshalPayload[football.GoalPayload](*raw)
	case football.EventRescheduled:
		payload, err = unmarshalPayload[football.ReschedulePayload](*raw)
	case football.EventVenueChange:
		payload, err = unmarshalPayload[football.VenueChangePayload](*raw)
	default:
		payload, err = unmarshalPayload[football.IncidentPayload](*raw)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s payload: %w", t, err)
	}
	return payload, nil
}

func unmarshalPayload[P football.EventPayload](raw string) (football.EventPayload, error) {
	var p P
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil, err
	}
	return p, nil
}

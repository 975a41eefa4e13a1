package views

import (
	"sort"

	"github.com/AdamBeresnev/pitch-perfect/internal/football"
	"github.com/AdamBeresnev/pitch-perfect/internal/service"
)

// MatchListData splits matches into the sections of the fixtures page.
type MatchListData struct {
	Live     []service.MatchDTO
	Upcoming []service.MatchDTO
	Finished []service.MatchDTO
}

func PrepareMatchListData(matches []service.MatchDTO) MatchListData {
	var data MatchListData
	for _, m := range matches {
		switch m.Status {
		case football.StatusLive:
			data.Live = append(data.Live, m)
		case football.StatusScheduled, football.StatusPostponed:
			data.Upcoming = append(data.Upcoming, m)
		default:
			data.Finished = append(data.Finished, m)
		}
	}

	sortByKickoff(data.Live, false)
	sortByKickoff(data.Upcoming, false)
	// Most recent results first.
	sortByKickoff(data.Finished, true)
	return data
}

func sortByKickoff(matches []service.MatchDTO, desc bool) {
	sort.SliceStable(matches, func(i, j int) bool {
		if desc {
			return matches[i].StartTime.After(matches[j].StartTime)
		}
		return matches[i].StartTime.Before(matches[j].StartTime)
	})
}

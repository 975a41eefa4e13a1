package views

import (
	"context"
	"fmt"
	"time"

	"github.com/AdamBeresnev/pitch-perfect/internal/football"
	"github.com/AdamBeresnev/pitch-perfect/internal/middleware"
	"github.com/AdamBeresnev/pitch-perfect/internal/service"
	users "github.com/AdamBeresnev/pitch-perfect/internal/user"
)

func GetUser(ctx context.Context) *users.User {
	return middleware.GetAuthenticatedUser(ctx)
}

func scoreLine(m service.MatchDTO) string {
	if m.Status == football.StatusScheduled || m.Status == football.StatusPostponed {
		return "vs"
	}
	return fmt.Sprintf("%d - %d", m.HomeScore, m.AwayScore)
}

func kickoff(t time.Time) string {
	return t.UTC().Format("Mon 2 Jan 15:04 MST")
}

func minute(e service.EventDTO) string {
	return fmt.Sprintf("%d'", e.MatchMinute)
}

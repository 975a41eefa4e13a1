package views

import (
	"context"
	"io"
	"strings"

	"github.com/AdamBeresnev/pitch-perfect/internal/service"
	"github.com/a-h/templ"
)

// page accumulates escaped HTML for a component.
type page struct {
	strings.Builder
}

func (p *page) raw(s ...string) {
	for _, part := range s {
		p.WriteString(part)
	}
}

func (p *page) text(s string) {
	p.WriteString(templ.EscapeString(s))
}

func layout(title string, body func(ctx context.Context, p *page)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var p page
		p.raw(`<!doctype html><html lang="en"><head><meta charset="utf-8"><title>`)
		p.text(title)
		p.raw(` | Pitch Perfect</title></head><body><header><a href="/">Pitch Perfect</a>`)
		if u := GetUser(ctx); u != nil {
			p.raw(`<span class="user">`)
			p.text(u.Username)
			p.raw(`</span><form method="post" action="/logout"><button type="submit">Log out</button></form>`)
		}
		p.raw(`</header><main>`)
		body(ctx, &p)
		p.raw(`</main></body></html>`)
		_, err := io.WriteString(w, p.String())
		return err
	})
}

func LoginPage() templ.Component {
	return layout("Log in", func(_ context.Context, p *page) {
		p.raw(`<h1>Log in</h1>`,
			`<a href="/auth/discord">Continue with Discord</a>`,
			`<a href="/auth/google">Continue with Google</a>`,
			`<form method="post" action="/auth/guest"><button type="submit">Continue as guest</button></form>`)
	})
}

func MatchList(data MatchListData) templ.Component {
	return layout("Matches", func(_ context.Context, p *page) {
		p.raw(`<h1>Matches</h1>`)
		section(p, "Live", data.Live)
		section(p, "Upcoming", data.Upcoming)
		section(p, "Results", data.Finished)
	})
}

func section(p *page, title string, matches []service.MatchDTO) {
	if len(matches) == 0 {
		return
	}
	p.raw(`<section><h2>`)
	p.text(title)
	p.raw(`</h2><ul>`)
	for _, m := range matches {
		p.raw(`<li><a href="/matches/`, m.ID.String(), `">`)
		p.text(m.HomeTeam.Name + " " + scoreLine(m) + " " + m.AwayTeam.Name)
		p.raw(`</a> <small>`)
		p.text(kickoff(m.StartTime) + " · " + m.Venue)
		p.raw(`</small></li>`)
	}
	p.raw(`</ul></section>`)
}

// MatchPage shows the scoreboard and the event timeline. The page subscribes
// to the match topic over /ws and reloads on updates.
func MatchPage(m service.MatchDTO, events []service.EventDTO) templ.Component {
	return layout(m.HomeTeam.Name+" vs "+m.AwayTeam.Name, func(_ context.Context, p *page) {
		p.raw(`<article id="match" data-match-id="`, m.ID.String(), `">`)
		p.raw(`<h1>`)
		p.text(m.HomeTeam.Name + " " + scoreLine(m) + " " + m.AwayTeam.Name)
		p.raw(`</h1><p class="status">`)
		p.text(string(m.Status))
		p.raw(`</p><p>`)
		p.text(kickoff(m.StartTime) + " · " + m.Venue)
		p.raw(`</p>`)
		if m.Result != "" {
			p.raw(`<p class="result">`)
			p.text(m.Result)
			p.raw(`</p>`)
		}

		p.raw(`<ol class="timeline">`)
		for _, e := range events {
			p.raw(`<li class="event">`)
			p.text(minute(e) + " " + e.Description)
			p.raw(`</li>`)
		}
		p.raw(`</ol></article>`)
		p.raw(`<script>(function(){`,
			`var ws=new WebSocket((location.protocol==="https:"?"wss://":"ws://")+location.host+"/ws");`,
			`ws.onopen=function(){ws.send(JSON.stringify({type:"subscribe",topic:"matches/`, m.ID.String(), `"}));};`,
			`ws.onmessage=function(msg){var d=JSON.parse(msg.data);if(d.type==="match.updated"||d.type==="match.deleted"){location.reload();}};`,
			`})();</script>`)
	})
}

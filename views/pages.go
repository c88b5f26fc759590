package views

import (
	"context"
	"fmt"
	"io"

	"github.com/AdamBeresnev/torvi/internal/bracket"
	"github.com/AdamBeresnev/torvi/internal/video"
	"github.com/a-h/templ"
)

func layout(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, `<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"><title>%s</title><link rel="stylesheet" href="/static/style.css"></head><body>`, templ.EscapeString(title)); err != nil {
			return err
		}
		if user := GetUser(ctx); user != nil {
			if _, err := fmt.Fprintf(w, `<header><span class="user">%s</span><form method="post" action="/logout"><button>Log out</button></form></header>`, templ.EscapeString(user.Username)); err != nil {
				return err
			}
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</body></html>`)
		return err
	})
}

// TournamentPage is the read-only bracket. Live updates come from the
// WebSocket endpoint.
func TournamentPage(t *bracket.Tournament) templ.Component {
	data := PrepareBracketData(t)
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, `<main class="tournament" data-tournament-id="%s" data-ws-url="/ws/tournaments/%s"><h1>%s</h1><p class="status status-%s">%s</p>`,
			t.ID, t.ID, templ.EscapeString(t.Name), t.Status, t.Status); err != nil {
			return err
		}
		if data.Winner != nil {
			if _, err := fmt.Fprintf(w, `<section class="champion"><h2>Winner: seed %d</h2>`, data.Winner.Seed); err != nil {
				return err
			}
			if err := writeEmbed(w, data.Winner.Embed); err != nil {
				return err
			}
			if _, err := io.WriteString(w, `</section>`); err != nil {
				return err
			}
		}

		if _, err := io.WriteString(w, `<div class="bracket">`); err != nil {
			return err
		}
		for _, round := range data.Rounds {
			if err := writeRound(w, round, data.TotalNeeded); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</div></main>`)
		return err
	})
	return layout(t.Name, body)
}

func writeRound(w io.Writer, round RoundView, totalNeeded int) error {
	class := "round"
	if round.Current {
		class += " current"
	}
	if _, err := fmt.Fprintf(w, `<section class="%s"><h2>Round %d</h2>`, class, round.Number); err != nil {
		return err
	}
	for _, m := range round.Matches {
		if _, err := fmt.Fprintf(w, `<article class="match" id="match-%s">`, templ.EscapeString(m.ID)); err != nil {
			return err
		}
		for _, side := range []struct {
			opponent OpponentView
			votes    int
		}{{m.Opponent1, m.Votes1}, {m.Opponent2, m.Votes2}} {
			class := "opponent"
			if m.IsWinner(side.opponent.ID) {
				class += " winner"
			}
			if _, err := fmt.Fprintf(w, `<div class="%s" data-opponent-id="%s"><span class="seed">#%d</span>`, class, side.opponent.ID, side.opponent.Seed); err != nil {
				return err
			}
			if err := writeEmbed(w, side.opponent.Embed); err != nil {
				return err
			}
			if _, err := fmt.Fprintf(w, `<span class="votes">%s</span></div>`, voteLabel(side.votes, totalNeeded)); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, `</article>`); err != nil {
			return err
		}
	}
	for _, bye := range round.Byes {
		if _, err := fmt.Fprintf(w, `<div class="bye" data-opponent-id="%s">Seed #%d advances automatically</div>`, bye.ID, bye.Seed); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, `</section>`)
	return err
}

// embedSrc runs the link through templ's URL sanitiser before escaping it.
func embedSrc(link string) string {
	return templ.EscapeString(string(templ.URL(link)))
}

func writeEmbed(w io.Writer, info video.EmbedInfo) error {
	var err error
	switch info.Type {
	case video.EmbedTypeYouTube, video.EmbedTypeIframe:
		_, err = fmt.Fprintf(w, `<iframe src="%s" loading="lazy" allowfullscreen></iframe>`, embedSrc(info.URL))
	case video.EmbedTypeVideo:
		_, err = fmt.Fprintf(w, `<video src="%s" controls preload="metadata"></video>`, embedSrc(info.URL))
	}
	return err
}

func IndexPage(tournaments []bracket.Tournament) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<main class="index"><h1>Your tournaments</h1>`); err != nil {
			return err
		}
		if len(tournaments) == 0 {
			_, err := io.WriteString(w, `<p class="empty">No tournaments yet.</p></main>`)
			return err
		}
		if _, err := io.WriteString(w, `<ul class="tournaments">`); err != nil {
			return err
		}
		for _, t := range tournaments {
			if _, err := fmt.Fprintf(w, `<li><a href="/tournaments/%s">%s</a> <span class="status status-%s">%s</span></li>`,
				t.ID, templ.EscapeString(t.Name), t.Status, t.Status); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</ul></main>`)
		return err
	})
	return layout("Tournaments", body)
}

func LoginPage() templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<main class="login"><h1>Torvi</h1>`+
			`<a class="button" href="/auth/discord">Log in with Discord</a>`+
			`<a class="button" href="/auth/google">Log in with Google</a>`+
			`<form method="post" action="/auth/guest"><button>Continue as guest</button></form></main>`)
		return err
	})
	return layout("Log in", body)
}

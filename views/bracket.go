package views

import (
	"github.com/AdamBeresnev/torvi/internal/bracket"
	"github.com/AdamBeresnev/torvi/internal/video"
	"github.com/google/uuid"
)

type OpponentView struct {
	ID    uuid.UUID
	URL   string
	Embed video.EmbedInfo
	Seed  int
}

type MatchView struct {
	ID        string
	Opponent1 OpponentView
	Opponent2 OpponentView
	Votes1    int
	Votes2    int
	Winner    *uuid.UUID
}

func (m MatchView) IsWinner(id uuid.UUID) bool {
	return m.Winner != nil && *m.Winner == id
}

type RoundView struct {
	Number  int
	Matches []MatchView
	Byes    []OpponentView
	Current bool
}

type BracketData struct {
	Rounds      []RoundView
	TotalNeeded int
	Winner      *OpponentView
}

// PrepareBracketData flattens a tournament into what the bracket page draws.
// Seeds follow the order opponents were entered in.
func PrepareBracketData(t *bracket.Tournament) BracketData {
	opponents := make(map[uuid.UUID]OpponentView, len(t.Opponents))
	for i, o := range t.Opponents {
		url := o.URL
		opponents[o.OpponentID] = OpponentView{
			ID:    o.OpponentID,
			URL:   o.URL,
			Embed: video.GetEmbedInfo(&url),
			Seed:  i + 1,
		}
	}
	lookup := func(id uuid.UUID) OpponentView {
		if o, ok := opponents[id]; ok {
			return o
		}
		return OpponentView{ID: id}
	}

	data := BracketData{
		Rounds:      make([]RoundView, 0, len(t.Rounds)),
		TotalNeeded: len(t.Users),
	}
	for i := range t.Rounds {
		round := &t.Rounds[i]
		rv := RoundView{
			Number:  round.Number,
			Matches: make([]MatchView, 0, len(round.Matches)),
			Current: i == len(t.Rounds)-1 && t.Status != bracket.TournamentCompleted,
		}
		for j := range round.Matches {
			m := &round.Matches[j]
			counts := m.VoteCounts()
			rv.Matches = append(rv.Matches, MatchView{
				ID:        m.ID,
				Opponent1: lookup(m.Opponent1),
				Opponent2: lookup(m.Opponent2),
				Votes1:    counts[m.Opponent1.String()],
				Votes2:    counts[m.Opponent2.String()],
				Winner:    m.Winner,
			})
		}
		for _, id := range round.AutomaticWinners {
			rv.Byes = append(rv.Byes, lookup(id))
		}
		data.Rounds = append(data.Rounds, rv)
	}

	if t.Winner != nil {
		winner := lookup(*t.Winner)
		data.Winner = &winner
	}
	return data
}

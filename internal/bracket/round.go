package bracket

import (
	"time"

	"github.com/google/uuid"
)

type Round struct {
	Number           int         `json:"round_number"`
	Matches          []Match     `json:"matches"`
	AutomaticWinners []uuid.UUID `json:"automatic_winners"`
}

// BuildInitialRound pairs opponents in list order: 0 with 1, 2 with 3 and so on.
// With an odd count the last opponent gets a bye.
func BuildInitialRound(opponents []TournamentOpponent, now time.Time) Round {
	ids := make([]uuid.UUID, len(opponents))
	for i, o := range opponents {
		ids[i] = o.OpponentID
	}
	return BuildNextRound(ids, 1, now)
}

// BuildNextRound applies the same pairing rule to the winners of a round, in the
// order they were collected.
func BuildNextRound(winners []uuid.UUID, number int, now time.Time) Round {
	round := Round{
		Number:           number,
		Matches:          make([]Match, 0, len(winners)/2),
		AutomaticWinners: make([]uuid.UUID, 0, 1),
	}

	for i := 0; i < len(winners); i += 2 {
		if i+1 < len(winners) {
			round.Matches = append(round.Matches, newMatch(winners[i], winners[i+1], now))
		} else {
			round.AutomaticWinners = append(round.AutomaticWinners, winners[i])
		}
	}

	return round
}

// IsComplete reports whether every match in the round has a winner. Byes need no vote.
func (r *Round) IsComplete() bool {
	for i := range r.Matches {
		if r.Matches[i].Winner == nil {
			return false
		}
	}
	return true
}

// Winners returns match winners in match order followed by the automatic winners.
func (r *Round) Winners() []uuid.UUID {
	winners := make([]uuid.UUID, 0, len(r.Matches)+len(r.AutomaticWinners))
	for i := range r.Matches {
		if r.Matches[i].Winner != nil {
			winners = append(winners, *r.Matches[i].Winner)
		}
	}
	return append(winners, r.AutomaticWinners...)
}

func (r *Round) FindMatch(matchID string) *Match {
	for i := range r.Matches {
		if r.Matches[i].ID == matchID {
			return &r.Matches[i]
		}
	}
	return nil
}

package bracket

import (
	"slices"
	"time"

	"github.com/AdamBeresnev/torvi/internal/apperrors"
	"github.com/google/uuid"
)

var (
	ErrAlreadyVoted    = apperrors.New(apperrors.CodeAlreadyVoted, "user has already voted")
	ErrInvalidOpponent = apperrors.New(apperrors.CodeInvalidOpponent, "invalid opponent")
	ErrMatchDecided    = apperrors.New(apperrors.CodeMatchDecided, "match has already been decided")
)

type Match struct {
	ID        string               `json:"match_id"`
	Opponent1 uuid.UUID            `json:"opponent1"`
	Opponent2 uuid.UUID            `json:"opponent2"`
	Votes     map[string][]VoterID `json:"votes"`
	Winner    *uuid.UUID           `json:"winner,omitempty"`
	MatchDate time.Time            `json:"match_date"`
}

func newMatch(opponent1, opponent2 uuid.UUID, now time.Time) Match {
	return Match{
		ID:        uuid.NewString(),
		Opponent1: opponent1,
		Opponent2: opponent2,
		Votes:     make(map[string][]VoterID),
		MatchDate: now,
	}
}

func (m *Match) HasOpponent(id uuid.UUID) bool {
	return id == m.Opponent1 || id == m.Opponent2
}

func (m *Match) HasVoted(voter VoterID) bool {
	for _, voters := range m.Votes {
		if slices.Contains(voters, voter) {
			return true
		}
	}
	return false
}

func (m *Match) TotalVotes() int {
	total := 0
	for _, voters := range m.Votes {
		total += len(voters)
	}
	return total
}

// VoteCounts returns the number of votes per opponent, keyed by opponent id.
// Both opponents are always present.
func (m *Match) VoteCounts() map[string]int {
	return map[string]int{
		m.Opponent1.String(): len(m.Votes[m.Opponent1.String()]),
		m.Opponent2.String(): len(m.Votes[m.Opponent2.String()]),
	}
}

// ProcessVote records one vote and declares the winner once every participant
// has voted. Opponent 1 wins ties.
func (m *Match) ProcessVote(voter VoterID, votedFor uuid.UUID, participants []TournamentUser) (uuid.UUID, bool, error) {
	if m.HasVoted(voter) {
		return uuid.Nil, false, ErrAlreadyVoted
	}
	if !m.HasOpponent(votedFor) {
		return uuid.Nil, false, ErrInvalidOpponent
	}
	if m.Winner != nil {
		return uuid.Nil, false, ErrMatchDecided
	}

	if m.Votes == nil {
		m.Votes = make(map[string][]VoterID)
	}
	key := votedFor.String()
	m.Votes[key] = append(m.Votes[key], voter)

	if m.TotalVotes() != len(participants) {
		return uuid.Nil, false, nil
	}

	votes1 := len(m.Votes[m.Opponent1.String()])
	votes2 := len(m.Votes[m.Opponent2.String()])
	winner := m.Opponent1
	if votes2 > votes1 {
		winner = m.Opponent2
	}
	m.Winner = &winner
	return winner, true, nil
}

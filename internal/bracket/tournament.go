package bracket

import (
	"time"

	"github.com/google/uuid"
)

type TournamentStatus string

const (
	TournamentActive    TournamentStatus = "active"
	TournamentPaused    TournamentStatus = "paused"
	TournamentCompleted TournamentStatus = "completed"
)

// TournamentOpponent is a snapshot of a catalog opponent taken when the tournament
// is created. Later catalog edits do not reach the bracket.
type TournamentOpponent struct {
	OpponentID uuid.UUID `json:"opponent_id"`
	URL        string    `json:"url"`
}

// TournamentUser is a participant entitled to vote.
type TournamentUser struct {
	VoterID     VoterID `json:"voter_id"`
	DisplayName string  `json:"name"`
}

type Tournament struct {
	ID        uuid.UUID            `json:"id"`
	Name      string               `json:"name"`
	CreatedBy uuid.UUID            `json:"created_by"`
	Opponents []TournamentOpponent `json:"opponents"`
	Users     []TournamentUser     `json:"users"`
	Rounds    []Round              `json:"rounds"`
	Status    TournamentStatus     `json:"status"`
	Winner    *uuid.UUID           `json:"winner,omitempty"`
	CreatedAt time.Time            `json:"created_at"`
	UpdatedAt time.Time            `json:"updated_at"`

	// Version is the optimistic concurrency token owned by the store.
	Version int `json:"-"`
}

// CurrentRound is the last round, the only one accepting votes.
func (t *Tournament) CurrentRound() *Round {
	if len(t.Rounds) == 0 {
		return nil
	}
	return &t.Rounds[len(t.Rounds)-1]
}

func (t *Tournament) HasParticipant(voter VoterID) bool {
	for _, u := range t.Users {
		if u.VoterID == voter {
			return true
		}
	}
	return false
}

func (t *Tournament) IsOwner(userID uuid.UUID) bool {
	return t.CreatedBy == userID
}

// Advance closes the current round if every match has a winner. It either
// completes the tournament or appends the next round. It reports whether the
// round was closed.
func (t *Tournament) Advance(now time.Time) bool {
	current := t.CurrentRound()
	if current == nil || !current.IsComplete() {
		return false
	}

	winners := current.Winners()
	if len(winners) == 1 {
		winner := winners[0]
		t.Status = TournamentCompleted
		t.Winner = &winner
	} else {
		t.Rounds = append(t.Rounds, BuildNextRound(winners, current.Number+1, now))
	}
	t.UpdatedAt = now
	return true
}

package service

import (
	"context"

	"github.com/AdamBeresnev/torvi/internal/apperrors"
	"github.com/AdamBeresnev/torvi/internal/bracket"
	"github.com/AdamBeresnev/torvi/internal/event"
	"github.com/google/uuid"
)

var ErrMatchNotFound = apperrors.NotFound("match not found in the current round")

// VoteMatch records voter's vote in a match of the current round. When the vote
// decides the match the round may close, which either starts the next round or
// completes the tournament.
func (s *TournamentService) VoteMatch(ctx context.Context, tournamentID uuid.UUID, matchID string, votedFor uuid.UUID, voter bracket.VoterID) (*bracket.Tournament, error) {
	return s.mutate(ctx, tournamentID, func(t *bracket.Tournament) ([]event.Event, error) {
		if !t.HasParticipant(voter) {
			return nil, ErrNotParticipant
		}
		switch t.Status {
		case bracket.TournamentCompleted:
			return nil, ErrTournamentCompleted
		case bracket.TournamentPaused:
			return nil, ErrTournamentNotActive
		}

		round := t.CurrentRound()
		if round == nil {
			return nil, ErrMatchNotFound
		}
		match := round.FindMatch(matchID)
		if match == nil {
			return nil, ErrMatchNotFound
		}

		winner, decided, err := match.ProcessVote(voter, votedFor, t.Users)
		if err != nil {
			return nil, err
		}

		now := s.now()
		t.UpdatedAt = now
		events := []event.Event{event.VoteCast{
			MatchID:     match.ID,
			VoteCounts:  match.VoteCounts(),
			TotalNeeded: len(t.Users),
		}}
		if !decided {
			return events, nil
		}

		events = append(events, event.MatchCompleted{
			MatchID:    match.ID,
			WinnerID:   winner,
			FinalVotes: match.VoteCounts(),
		})

		roundNumber := round.Number
		if !t.Advance(now) {
			return events, nil
		}
		if t.Status == bracket.TournamentCompleted {
			return append(events, event.TournamentCompleted{WinnerID: *t.Winner}), nil
		}
		return append(events, event.RoundCompleted{
			RoundNumber:      roundNumber,
			NextRoundMatches: len(t.CurrentRound().Matches),
		}), nil
	})
}

package bracket

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeParticipants(n int) []TournamentUser {
	users := make([]TournamentUser, n)
	for i := range users {
		users[i] = TournamentUser{VoterID: Registered(uuid.New()), DisplayName: "voter"}
	}
	return users
}

func TestProcessVote_DeclaresWinnerWhenEveryoneVoted(t *testing.T) {
	o1, o2 := uuid.New(), uuid.New()
	match := newMatch(o1, o2, time.Now())
	users := makeParticipants(3)

	winner, decided, err := match.ProcessVote(users[0].VoterID, o2, users)
	require.NoError(t, err)
	assert.False(t, decided)
	assert.Equal(t, uuid.Nil, winner)

	_, decided, err = match.ProcessVote(users[1].VoterID, o1, users)
	require.NoError(t, err)
	assert.False(t, decided)

	winner, decided, err = match.ProcessVote(users[2].VoterID, o2, users)
	require.NoError(t, err)
	assert.True(t, decided)
	assert.Equal(t, o2, winner)
	require.NotNil(t, match.Winner)
	assert.Equal(t, o2, *match.Winner)
	assert.Equal(t, map[string]int{o1.String(): 1, o2.String(): 2}, match.VoteCounts())
}

func TestProcessVote_TieGoesToOpponent1(t *testing.T) {
	o1, o2 := uuid.New(), uuid.New()
	match := newMatch(o1, o2, time.Now())
	users := makeParticipants(2)

	_, _, err := match.ProcessVote(users[0].VoterID, o2, users)
	require.NoError(t, err)
	winner, decided, err := match.ProcessVote(users[1].VoterID, o1, users)
	require.NoError(t, err)
	assert.True(t, decided)
	assert.Equal(t, o1, winner)
}

func TestProcessVote_AlreadyVotedLeavesTalliesUnchanged(t *testing.T) {
	o1, o2 := uuid.New(), uuid.New()
	match := newMatch(o1, o2, time.Now())
	users := makeParticipants(3)

	_, _, err := match.ProcessVote(users[0].VoterID, o1, users)
	require.NoError(t, err)
	before := match.VoteCounts()

	_, _, err = match.ProcessVote(users[0].VoterID, o2, users)
	assert.ErrorIs(t, err, ErrAlreadyVoted)
	assert.Equal(t, before, match.VoteCounts())
	assert.Equal(t, 1, match.TotalVotes())
}

func TestProcessVote_AnonymousAndRegisteredAreDistinct(t *testing.T) {
	o1, o2 := uuid.New(), uuid.New()
	match := newMatch(o1, o2, time.Now())
	id := uuid.New()
	users := []TournamentUser{
		{VoterID: Registered(id)},
		{VoterID: Anonymous(id.String())},
		{VoterID: Registered(uuid.New())},
	}

	_, _, err := match.ProcessVote(users[0].VoterID, o1, users)
	require.NoError(t, err)
	_, _, err = match.ProcessVote(users[1].VoterID, o1, users)
	require.NoError(t, err)
	assert.Equal(t, 2, match.TotalVotes())
}

func TestProcessVote_InvalidOpponent(t *testing.T) {
	match := newMatch(uuid.New(), uuid.New(), time.Now())
	users := makeParticipants(1)

	_, _, err := match.ProcessVote(users[0].VoterID, uuid.New(), users)
	assert.ErrorIs(t, err, ErrInvalidOpponent)
	assert.Zero(t, match.TotalVotes())
}

func TestProcessVote_DecidedMatchRejectsVotes(t *testing.T) {
	o1, o2 := uuid.New(), uuid.New()
	match := newMatch(o1, o2, time.Now())
	users := makeParticipants(1)

	_, decided, err := match.ProcessVote(users[0].VoterID, o1, users)
	require.NoError(t, err)
	require.True(t, decided)

	late := TournamentUser{VoterID: Anonymous("late")}
	_, _, err = match.ProcessVote(late.VoterID, o2, append(users, late))
	assert.ErrorIs(t, err, ErrMatchDecided)
	assert.Equal(t, o1, *match.Winner)
}

func TestProcessVote_ErrorsAreDistinct(t *testing.T) {
	assert.False(t, errors.Is(ErrAlreadyVoted, ErrInvalidOpponent))
	assert.False(t, errors.Is(ErrInvalidOpponent, ErrMatchDecided))
}

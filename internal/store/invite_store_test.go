package store

import (
	"context"
	"testing"
	"time"

	"github.com/AdamBeresnev/torvi/internal/bracket"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInviteStore(t *testing.T) {
	db := setupTestDB(t)
	owner := createTestUser(t, db)
	ctx := context.Background()

	tournament := newTestTournament(owner.ID)
	require.NoError(t, NewTournamentStore(db).Create(ctx, tournament))

	store := NewInviteStore(db)
	now := time.Now().UTC().Truncate(time.Second)
	invite := &bracket.TournamentInvite{
		ID:           uuid.New(),
		Code:         "abcd1234",
		TournamentID: tournament.ID,
		MaxUses:      2,
		ExpiresAt:    now.Add(24 * time.Hour),
		CreatedBy:    owner.ID,
		CreatedAt:    now,
	}
	require.NoError(t, store.Create(ctx, invite))

	fetched, err := store.GetByCode(ctx, "abcd1234")
	require.NoError(t, err)
	assert.Equal(t, invite.ID, fetched.ID)
	assert.Equal(t, tournament.ID, fetched.TournamentID)
	assert.Equal(t, 2, fetched.MaxUses)
	assert.Equal(t, 0, fetched.CurrentUses)
	assert.WithinDuration(t, invite.ExpiresAt, fetched.ExpiresAt, time.Second)

	_, err = store.GetByCode(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.IncrementUses(ctx, invite.ID))
	require.NoError(t, store.IncrementUses(ctx, invite.ID))
	assert.ErrorIs(t, store.IncrementUses(ctx, invite.ID), bracket.ErrInviteExhausted)

	fetched, err = store.GetByCode(ctx, "abcd1234")
	require.NoError(t, err)
	assert.Equal(t, 2, fetched.CurrentUses)

	require.NoError(t, store.ReleaseUse(ctx, invite.ID))
	fetched, err = store.GetByCode(ctx, "abcd1234")
	require.NoError(t, err)
	assert.Equal(t, 1, fetched.CurrentUses)
}

func TestInviteStore_DuplicateCode(t *testing.T) {
	db := setupTestDB(t)
	owner := createTestUser(t, db)
	ctx := context.Background()

	tournament := newTestTournament(owner.ID)
	require.NoError(t, NewTournamentStore(db).Create(ctx, tournament))

	store := NewInviteStore(db)
	now := time.Now().UTC().Truncate(time.Second)
	newInvite := func(code string) *bracket.TournamentInvite {
		return &bracket.TournamentInvite{
			ID:           uuid.New(),
			Code:         code,
			TournamentID: tournament.ID,
			MaxUses:      1,
			ExpiresAt:    now.Add(time.Hour),
			CreatedBy:    owner.ID,
			CreatedAt:    now,
		}
	}

	first := newInvite("samecode")
	require.NoError(t, store.Create(ctx, first))

	err := store.Create(ctx, newInvite("samecode"))
	assert.ErrorIs(t, err, ErrDuplicateCode)
	assert.NotErrorIs(t, err, ErrConflict)

	sameID := newInvite("othercod")
	sameID.ID = first.ID
	err = store.Create(ctx, sameID)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrDuplicateCode)
}

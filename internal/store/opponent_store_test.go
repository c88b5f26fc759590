package store

import (
	"context"
	"testing"
	"time"

	"github.com/AdamBeresnev/torvi/internal/bracket"
	"github.com/AdamBeresnev/torvi/internal/utils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpponentStore(t *testing.T) {
	db := setupTestDB(t)
	owner := createTestUser(t, db)
	other := createTestUser(t, db)
	store := NewOpponentStore(db)
	ctx := context.Background()

	now := time.Now().UTC()
	opponents := []bracket.Opponent{
		{ID: uuid.New(), OwnerID: owner.ID, Name: "Opening 1", URL: "https://youtu.be/one", EmbedLink: utils.TrimmedOrNil("https://youtu.be/one"), CreatedAt: now},
		{ID: uuid.New(), OwnerID: owner.ID, Name: "Opening 2", URL: "https://example.com/two.mp4", CreatedAt: now.Add(time.Second)},
		{ID: uuid.New(), OwnerID: other.ID, Name: "Not mine", URL: "https://example.com", CreatedAt: now},
	}

	tx, err := db.BeginTxx(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, store.CreateOpponents(ctx, tx, opponents))
	require.NoError(t, tx.Commit())

	listed, err := store.ListByOwner(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, opponents[0].ID, listed[0].ID)
	assert.Equal(t, *opponents[0].EmbedLink, *listed[0].EmbedLink)
	assert.Nil(t, listed[1].EmbedLink)

	found, err := store.GetByIDs(ctx, owner.ID, []uuid.UUID{opponents[1].ID, opponents[2].ID, uuid.New()})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, opponents[1].ID, found[0].ID)

	found, err = store.GetByIDs(ctx, owner.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, found)
}

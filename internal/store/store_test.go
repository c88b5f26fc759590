package store

import (
	"context"
	"testing"
	"time"

	"github.com/AdamBeresnev/torvi/internal/db"
	users "github.com/AdamBeresnev/torvi/internal/user"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

// setupTestDB creates an in-memory SQLite database and applies migrations
func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	database, err := db.InitMemoryDB()
	require.NoError(t, err, "Failed to connect to in-memory DB")
	t.Cleanup(func() { database.Close() })

	require.NoError(t, db.RunMigrations(database.DB), "Failed to apply migrations")
	return database
}

func createTestUser(t *testing.T, database *sqlx.DB) *users.User {
	t.Helper()

	user := &users.User{
		ID:        uuid.New(),
		Email:     "owner@torvi.test",
		Username:  "owner",
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, NewUserStore(database).CreateUser(context.Background(), user))
	return user
}

package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/AdamBeresnev/torvi/internal/auth"
	"github.com/AdamBeresnev/torvi/internal/bracket"
	"github.com/AdamBeresnev/torvi/internal/db"
	"github.com/AdamBeresnev/torvi/internal/event"
	"github.com/AdamBeresnev/torvi/internal/store"
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

type recordingPublisher struct {
	mu     sync.Mutex
	events []event.Event
}

func (p *recordingPublisher) Publish(_ uuid.UUID, e event.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *recordingPublisher) Events() []event.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]event.Event(nil), p.events...)
}

func (p *recordingPublisher) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = nil
}

type testEnv struct {
	db        *sqlx.DB
	service   *TournamentService
	tokens    *auth.TokenService
	invites   *store.InviteStore
	publisher *recordingPublisher
	owner     *users.User
	ctx       context.Context
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	database := setupTestDB(t)
	tokens, err := auth.NewTokenService(auth.Config{Secret: "test-secret"})
	require.NoError(t, err)

	invites := store.NewInviteStore(database)
	publisher := &recordingPublisher{}
	env := &testEnv{
		db:        database,
		service:   NewTournamentService(store.NewTournamentStore(database), invites, tokens, publisher),
		tokens:    tokens,
		invites:   invites,
		publisher: publisher,
		ctx:       context.Background(),
	}
	env.owner = env.createUser(t, "owner")
	return env
}

func (e *testEnv) createUser(t *testing.T, name string) *users.User {
	t.Helper()
	user := &users.User{ID: uuid.New(), Email: name + "@torvi.test", Username: name, CreatedAt: time.Now().UTC()}
	require.NoError(t, store.NewUserStore(e.db).CreateUser(e.ctx, user))
	return user
}

func opponentsOf(n int) []bracket.TournamentOpponent {
	opponents := make([]bracket.TournamentOpponent, n)
	for i := range opponents {
		opponents[i] = bracket.TournamentOpponent{OpponentID: uuid.New(), URL: "https://youtu.be/x"}
	}
	return opponents
}

func participantsOf(ids ...uuid.UUID) []ParticipantInput {
	inputs := make([]ParticipantInput, len(ids))
	for i, id := range ids {
		inputs[i] = ParticipantInput{UserID: id, Name: "voter"}
	}
	return inputs
}

func (e *testEnv) createTournament(t *testing.T, opponents int, voters ...uuid.UUID) *bracket.Tournament {
	t.Helper()
	if len(voters) == 0 {
		voters = []uuid.UUID{e.owner.ID}
	}
	tournament, err := e.service.CreateTournament(e.ctx, e.owner.ID, CreateTournamentInput{
		Name:      "Openings",
		Opponents: opponentsOf(opponents),
		Users:     participantsOf(voters...),
	})
	require.NoError(t, err)
	return tournament
}

func eventTypes(events []event.Event) []string {
	types := make([]string, len(events))
	for i, e := range events {
		types[i] = e.Type()
	}
	return types
}

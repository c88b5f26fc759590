package main

import (
	"time"

	"github.com/AdamBeresnev/torvi/internal/auth"
	"github.com/AdamBeresnev/torvi/internal/broadcast"
	"github.com/AdamBeresnev/torvi/internal/service"
	"github.com/AdamBeresnev/torvi/internal/store"
	"github.com/alexedwards/scs/v2"
	"github.com/jmoiron/sqlx"
)

type application struct {
	tournaments       *service.TournamentService
	opponents         *service.OpponentService
	users             *service.UserService
	userStore         *store.UserStore
	tokens            *auth.TokenService
	broadcaster       *broadcast.Broadcaster
	sessions          *scs.SessionManager
	heartbeatInterval time.Duration
}

func newApplication(database *sqlx.DB, tokens *auth.TokenService, broadcaster *broadcast.Broadcaster, sessions *scs.SessionManager, heartbeatInterval time.Duration) *application {
	userStore := store.NewUserStore(database)
	return &application{
		tournaments: service.NewTournamentService(
			store.NewTournamentStore(database),
			store.NewInviteStore(database),
			tokens,
			broadcaster,
		),
		opponents:         service.NewOpponentService(database, store.NewOpponentStore(database)),
		users:             service.NewUserService(userStore, tokens),
		userStore:         userStore,
		tokens:            tokens,
		broadcaster:       broadcaster,
		sessions:          sessions,
		heartbeatInterval: heartbeatInterval,
	}
}

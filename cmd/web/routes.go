package main

import (
	"context"
	"net/http"

	"github.com/AdamBeresnev/torvi/internal/httputil"
	"github.com/AdamBeresnev/torvi/internal/middleware"
	"github.com/AdamBeresnev/torvi/internal/ws"
	"github.com/AdamBeresnev/torvi/views"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/markbates/goth/gothic"
)

func newRouter(app *application) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)

	// Live connections authenticate with their own token and must not go
	// through the session writer.
	r.Handle("/ws/tournaments/{id}", ws.NewHandler(app.broadcaster, app.tokens, app.heartbeatInterval))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]any{
			"status": "ok",
			"rooms":  app.broadcaster.RoomCount(),
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(app.sessions.LoadAndSave)
		r.Use(middleware.Authenticate(app.sessions, app.tokens, app.userStore))

		// Serve static files
		fileServer := http.FileServer(http.Dir("./static"))
		r.Handle("/static/*", http.StripPrefix("/static/", fileServer))

		r.Get("/login", func(w http.ResponseWriter, r *http.Request) {
			views.Render(w, r, views.LoginPage())
		})

		r.Get("/auth/{provider}", func(w http.ResponseWriter, r *http.Request) {
			provider := chi.URLParam(r, "provider")
			r = r.WithContext(context.WithValue(r.Context(), "provider", provider))

			gothic.BeginAuthHandler(w, r)
		})

		r.Get("/auth/{provider}/callback", func(w http.ResponseWriter, r *http.Request) {
			provider := chi.URLParam(r, "provider")
			r = r.WithContext(context.WithValue(r.Context(), "provider", provider))

			gothUser, err := gothic.CompleteUserAuth(w, r)
			if err != nil {
				httputil.BadRequest(w, "Authentication failure", err)
				return
			}

			user, err := app.users.FindOrCreateUserByProvider(r.Context(), gothUser)
			if err != nil {
				httputil.InternalServerError(w, "Failed to find or create user", err)
				return
			}

			if err := app.sessions.RenewToken(r.Context()); err != nil {
				httputil.InternalServerError(w, "Failed to renew session", err)
				return
			}
			app.sessions.Put(r.Context(), middleware.SessionUserIDKey, user.ID.String())

			http.Redirect(w, r, "/", http.StatusFound)
		})

		r.Post("/auth/guest", func(w http.ResponseWriter, r *http.Request) {
			user, err := app.users.EnsureGuestUser(r.Context())
			if err != nil {
				httputil.InternalServerError(w, "Failed to login as guest", err)
				return
			}

			app.sessions.Put(r.Context(), middleware.SessionUserIDKey, user.ID.String())
			http.Redirect(w, r, "/", http.StatusFound)
		})

		r.Post("/logout", func(w http.ResponseWriter, r *http.Request) {
			if err := app.sessions.Destroy(r.Context()); err != nil {
				httputil.InternalServerError(w, "Failed to log out", err)
				return
			}
			if r.Header.Get("HX-Request") != "" {
				w.Header().Set("HX-Redirect", "/login")
				w.WriteHeader(http.StatusOK)
				return
			}
			http.Redirect(w, r, "/login", http.StatusFound)
		})

		r.With(middleware.RequireRegistered).Post("/auth/token", app.issueToken)

		r.Get("/tournaments/{id}", app.tournamentPage)
		r.With(middleware.RequireLogin).Get("/", app.indexPage)

		r.Route("/api", func(r chi.Router) {
			r.Post("/tournaments/{id}/join", app.joinTournament)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireVoter)

				r.Get("/tournaments/{id}", app.getTournament)
				r.Post("/tournaments/{id}/vote", app.voteMatch)
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRegistered)

				r.Post("/tournaments", app.createTournament)
				r.Get("/tournaments", app.listTournaments)
				r.Post("/tournaments/{id}/pause", app.pauseTournament)
				r.Post("/tournaments/{id}/resume", app.resumeTournament)
				r.Post("/tournaments/{id}/invites", app.createInvite)

				r.Post("/opponents", app.createOpponents)
				r.Get("/opponents", app.listOpponents)
			})
		})
	})

	return r
}

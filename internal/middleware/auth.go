package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/AdamBeresnev/torvi/internal/auth"
	"github.com/AdamBeresnev/torvi/internal/bracket"
	"github.com/AdamBeresnev/torvi/internal/config"
	"github.com/AdamBeresnev/torvi/internal/httputil"
	users "github.com/AdamBeresnev/torvi/internal/user"
	"github.com/alexedwards/scs/v2"
	"github.com/google/uuid"
	"github.com/markbates/goth"
	"github.com/markbates/goth/providers/discord"
	"github.com/markbates/goth/providers/google"
)

type ContextKey string

const (
	UserIDKey ContextKey = "userID"
	VoterKey  ContextKey = "voter"
)

// SessionUserIDKey is the session entry written by the login handlers.
const SessionUserIDKey = "userID"

// InitAuth registers the OAuth providers that have credentials configured.
func InitAuth(cfg config.Config) {
	var providers []goth.Provider
	if cfg.Discord.Key != "" {
		providers = append(providers, discord.New(cfg.Discord.Key, cfg.Discord.Secret, cfg.Discord.CallbackURL, discord.ScopeIdentify, discord.ScopeEmail))
	}
	if cfg.Google.Key != "" {
		providers = append(providers, google.New(cfg.Google.Key, cfg.Google.Secret, cfg.Google.CallbackURL, "email", "profile"))
	}
	goth.UseProviders(providers...)
}

type TokenVerifier interface {
	VerifyAny(token string) (auth.Identity, error)
}

type UserGetter interface {
	GetUser(ctx context.Context, id uuid.UUID) (*users.User, error)
}

// Authenticate resolves who is calling. A bearer token wins over the browser
// session; a bad bearer token is rejected outright. Requests with neither pass
// through anonymously.
func Authenticate(sessionManager *scs.SessionManager, tokens TokenVerifier, userStore UserGetter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if token, ok := bearerToken(r); ok {
				identity, err := tokens.VerifyAny(token)
				if err != nil {
					httputil.Unauthorized(w, "invalid or expired token")
					return
				}
				ctx = context.WithValue(ctx, VoterKey, identity.Voter)
				if userID, ok := identity.Voter.UserID(); ok {
					ctx = withUser(ctx, userStore, userID)
				}
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			if userIDStr := sessionManager.GetString(ctx, SessionUserIDKey); userIDStr != "" {
				userID, err := uuid.Parse(userIDStr)
				if err != nil {
					sessionManager.Remove(ctx, SessionUserIDKey)
				} else {
					ctx = context.WithValue(ctx, VoterKey, bracket.Registered(userID))
					ctx = withUser(ctx, userStore, userID)
				}
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func withUser(ctx context.Context, userStore UserGetter, userID uuid.UUID) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, userID)

	// Add the user to context so that we can easily get it whenever we want
	user, err := userStore.GetUser(ctx, userID)
	if err == nil {
		ctx = context.WithValue(ctx, users.UserKey, user)
	}
	return ctx
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || strings.TrimSpace(token) == "" {
		return "", false
	}
	return strings.TrimSpace(token), true
}

// RequireRegistered lets through registered accounts only.
func RequireRegistered(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetUserIDFromContext(r.Context()); !ok {
			httputil.Unauthorized(w, "login required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireVoter lets through any identity that can vote: registered or anonymous.
func RequireVoter(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetVoter(r.Context()); !ok {
			httputil.Unauthorized(w, "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireLogin is the browser flavour of RequireRegistered.
func RequireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetUserIDFromContext(r.Context()); !ok {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func GetUserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	val := ctx.Value(UserIDKey)
	if val == nil {
		return uuid.Nil, false
	}

	id, ok := val.(uuid.UUID)
	return id, ok
}

func GetVoter(ctx context.Context) (bracket.VoterID, bool) {
	voter, ok := ctx.Value(VoterKey).(bracket.VoterID)
	if !ok || voter.IsZero() {
		return bracket.VoterID{}, false
	}
	return voter, true
}

func GetAuthenticatedUser(ctx context.Context) *users.User {
	val := ctx.Value(users.UserKey)
	if val == nil {
		return nil
	}
	user, ok := val.(*users.User)
	if !ok {
		return nil
	}
	return user
}

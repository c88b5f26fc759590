// Package ws serves the live event stream of a tournament over WebSocket.
package ws

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/AdamBeresnev/torvi/internal/auth"
	"github.com/AdamBeresnev/torvi/internal/broadcast"
	"github.com/AdamBeresnev/torvi/internal/httputil"
	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const (
	DefaultHeartbeatInterval = 30 * time.Second
	writeTimeout             = 10 * time.Second
)

type TokenVerifier interface {
	VerifyAny(token string) (auth.Identity, error)
}

type Subscriber interface {
	Subscribe(tournamentID uuid.UUID) *broadcast.Subscription
}

type Handler struct {
	tokens            TokenVerifier
	broadcaster       Subscriber
	heartbeatInterval time.Duration
	acceptOptions     *websocket.AcceptOptions
}

type Option func(*Handler)

// WithOriginPatterns allows cross-origin browsers matching the given host patterns.
func WithOriginPatterns(patterns ...string) Option {
	return func(h *Handler) {
		h.acceptOptions = &websocket.AcceptOptions{OriginPatterns: patterns}
	}
}

func NewHandler(broadcaster Subscriber, tokens TokenVerifier, heartbeatInterval time.Duration, opts ...Option) *Handler {
	if heartbeatInterval <= 0 {
		heartbeatInterval = DefaultHeartbeatInterval
	}
	h := &Handler{
		tokens:            tokens,
		broadcaster:       broadcaster,
		heartbeatInterval: heartbeatInterval,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// ServeHTTP validates the tournament id and token, then upgrades and streams
// the tournament's events until either side goes away.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.BadRequest(w, "Invalid tournament ID", err)
		return
	}

	identity, err := h.tokens.VerifyAny(tokenFrom(r))
	if err != nil {
		httputil.Unauthorized(w, "invalid or expired token")
		return
	}

	conn, err := websocket.Accept(w, r, h.acceptOptions)
	if err != nil {
		slog.Warn("websocket upgrade failed", "tournament_id", tournamentID, "error", err)
		return
	}
	defer conn.CloseNow()

	sub := h.broadcaster.Subscribe(tournamentID)
	defer sub.Close()

	logger := slog.With("tournament_id", tournamentID, "voter", identity.Voter.String(), "token_type", identity.TokenType)
	logger.Info("live connection opened")

	c := &connection{
		conn:              conn,
		sub:               sub,
		heartbeatInterval: h.heartbeatInterval,
		logger:            logger,
	}
	err = c.run(r.Context())
	logger.Info("live connection closed", "reason", err)
}

func tokenFrom(r *http.Request) string {
	if token := r.URL.Query().Get("token"); token != "" {
		return token
	}
	token, _ := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	return strings.TrimSpace(token)
}

package ws

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/AdamBeresnev/torvi/internal/auth"
	"github.com/AdamBeresnev/torvi/internal/broadcast"
	"github.com/AdamBeresnev/torvi/internal/event"
	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTimeout = 2 * time.Second

type testServer struct {
	srv         *httptest.Server
	broadcaster *broadcast.Broadcaster
	tokens      *auth.TokenService
}

func newTestServer(t *testing.T, heartbeat time.Duration) *testServer {
	t.Helper()

	tokens, err := auth.NewTokenService(auth.Config{Secret: "ws-secret"})
	require.NoError(t, err)
	b := broadcast.New(8)

	r := chi.NewRouter()
	r.Handle("/ws/tournaments/{id}", NewHandler(b, tokens, heartbeat))
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return &testServer{srv: srv, broadcaster: b, tokens: tokens}
}

func (s *testServer) url(tournamentID string, token string) string {
	return s.srv.URL + "/ws/tournaments/" + tournamentID + "?token=" + token
}

func (s *testServer) accessToken(t *testing.T) string {
	t.Helper()
	token, err := s.tokens.IssueAccessToken(uuid.New(), "viewer@torvi.test")
	require.NoError(t, err)
	return token
}

// dial connects and waits until the handler has subscribed.
func (s *testServer) dial(t *testing.T, tournamentID uuid.UUID, token string) *websocket.Conn {
	t.Helper()

	before := s.broadcaster.SubscriberCount(tournamentID)

	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()
	conn, _, err := websocket.Dial(ctx, s.url(tournamentID.String(), token), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.CloseNow() })

	require.Eventually(t, func() bool {
		return s.broadcaster.SubscriberCount(tournamentID) == before+1
	}, testTimeout, 5*time.Millisecond)
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) event.Event {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()
	typ, data, err := conn.Read(ctx)
	require.NoError(t, err)
	require.Equal(t, websocket.MessageText, typ)

	e, err := event.Decode(data)
	require.NoError(t, err)
	return e
}

func TestHandler_RejectsBeforeUpgrade(t *testing.T) {
	s := newTestServer(t, time.Minute)

	testCases := []struct {
		name           string
		tournamentID   string
		token          string
		expectedStatus int
	}{
		{name: "malformed tournament id", tournamentID: "not-a-uuid", token: s.accessToken(t), expectedStatus: http.StatusBadRequest},
		{name: "missing token", tournamentID: uuid.NewString(), expectedStatus: http.StatusUnauthorized},
		{name: "garbage token", tournamentID: uuid.NewString(), token: "garbage", expectedStatus: http.StatusUnauthorized},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
			defer cancel()

			_, resp, err := websocket.Dial(ctx, s.url(tc.tournamentID, tc.token), nil)
			require.Error(t, err)
			require.NotNil(t, resp)
			assert.Equal(t, tc.expectedStatus, resp.StatusCode)
		})
	}
	assert.Zero(t, s.broadcaster.RoomCount())
}

func TestHandler_StreamsRoomEventsInOrder(t *testing.T) {
	s := newTestServer(t, time.Minute)
	tournamentID := uuid.New()
	conn := s.dial(t, tournamentID, s.accessToken(t))

	vote := event.VoteCast{MatchID: "m1", VoteCounts: map[string]int{"a": 1, "b": 0}, TotalNeeded: 3}
	s.broadcaster.Publish(uuid.New(), event.TournamentPaused{})
	s.broadcaster.Publish(tournamentID, vote)
	s.broadcaster.Publish(tournamentID, event.TournamentPaused{})

	assert.Equal(t, vote, readEvent(t, conn))
	assert.Equal(t, event.TournamentPaused{}, readEvent(t, conn))
}

func TestHandler_AcceptsAnonymousToken(t *testing.T) {
	s := newTestServer(t, time.Minute)
	tournamentID := uuid.New()

	anon, err := s.tokens.IssueAnonymousToken(tournamentID, "Guest")
	require.NoError(t, err)
	conn := s.dial(t, tournamentID, anon.Token)

	s.broadcaster.Publish(tournamentID, event.ParticipantJoined{DisplayName: "Guest", ParticipantCount: 2})
	assert.Equal(t, event.ParticipantJoined{DisplayName: "Guest", ParticipantCount: 2}, readEvent(t, conn))
}

func TestHandler_RepliesToPing(t *testing.T) {
	s := newTestServer(t, time.Minute)
	conn := s.dial(t, uuid.New(), s.accessToken(t))

	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	require.NoError(t, conn.Write(ctx, websocket.MessageText, []byte(`{"type":"hello"}`)))
	require.NoError(t, conn.Write(ctx, websocket.MessageText, []byte(`not json`)))
	require.NoError(t, conn.Write(ctx, websocket.MessageText, []byte(`{"type":"ping"}`)))

	_, data, err := conn.Read(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"pong"}`, string(data))
}

func TestHandler_ClientCloseReleasesSubscription(t *testing.T) {
	s := newTestServer(t, time.Minute)
	tournamentID := uuid.New()
	conn := s.dial(t, tournamentID, s.accessToken(t))

	require.NoError(t, conn.Close(websocket.StatusNormalClosure, ""))

	require.Eventually(t, func() bool {
		return s.broadcaster.SubscriberCount(tournamentID) == 0
	}, testTimeout, 5*time.Millisecond)
	assert.Equal(t, 1, s.broadcaster.Cleanup())
}

func TestHandler_BroadcasterCloseEndsConnection(t *testing.T) {
	s := newTestServer(t, time.Minute)
	tournamentID := uuid.New()

	conns := make([]*websocket.Conn, 3)
	for i := range conns {
		conns[i] = s.dial(t, tournamentID, s.accessToken(t))
	}

	s.broadcaster.Close()

	for _, conn := range conns {
		ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
		_, _, err := conn.Read(ctx)
		cancel()
		require.Error(t, err)
		assert.Equal(t, websocket.StatusGoingAway, websocket.CloseStatus(err))
	}
}

func TestHandler_HeartbeatKeepsLiveConnectionOpen(t *testing.T) {
	s := newTestServer(t, 100*time.Millisecond)
	tournamentID := uuid.New()
	conn := s.dial(t, tournamentID, s.accessToken(t))

	// The client only answers pings while it is reading.
	timer := time.AfterFunc(350*time.Millisecond, func() {
		s.broadcaster.Publish(tournamentID, event.TournamentResumed{})
	})
	defer timer.Stop()

	assert.Equal(t, event.TournamentResumed{}, readEvent(t, conn))
}

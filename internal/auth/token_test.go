package auth

import (
	"testing"
	"time"

	"github.com/AdamBeresnev/torvi/internal/apperrors"
	"github.com/AdamBeresnev/torvi/internal/bracket"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T, now func() time.Time) *TokenService {
	t.Helper()
	svc, err := NewTokenService(Config{Secret: "test-secret", Now: now})
	require.NoError(t, err)
	return svc
}

func TestNewTokenService_RequiresSecret(t *testing.T) {
	_, err := NewTokenService(Config{Secret: "  "})
	assert.Error(t, err)
}

func TestAccessToken_RoundTrip(t *testing.T) {
	svc := newTestService(t, nil)
	userID := uuid.New()

	token, err := svc.IssueAccessToken(userID, "a@b.c")
	require.NoError(t, err)

	got, err := svc.VerifyAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, got.UserID)
	assert.Equal(t, "a@b.c", got.Email)

	_, err = svc.VerifyAnonymousToken(token)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUnauthorized))
}

func TestAnonymousToken_RoundTrip(t *testing.T) {
	svc := newTestService(t, nil)
	tournamentID := uuid.New()

	issued, err := svc.IssueAnonymousToken(tournamentID, "Guest")
	require.NoError(t, err)
	require.NotEmpty(t, issued.SessionID)

	got, err := svc.VerifyAnonymousToken(issued.Token)
	require.NoError(t, err)
	assert.Equal(t, issued.SessionID, got.SessionID)
	assert.Equal(t, tournamentID, got.TournamentID)
	assert.Equal(t, "Guest", got.DisplayName)

	_, err = svc.VerifyAccessToken(issued.Token)
	assert.Error(t, err)
}

func TestVerifyAny(t *testing.T) {
	svc := newTestService(t, nil)
	userID := uuid.New()

	access, err := svc.IssueAccessToken(userID, "")
	require.NoError(t, err)
	identity, err := svc.VerifyAny(access)
	require.NoError(t, err)
	assert.Equal(t, bracket.Registered(userID), identity.Voter)
	assert.Equal(t, TokenAccess, identity.TokenType)

	anon, err := svc.IssueAnonymousToken(uuid.New(), "Guest")
	require.NoError(t, err)
	identity, err = svc.VerifyAny(anon.Token)
	require.NoError(t, err)
	assert.Equal(t, bracket.Anonymous(anon.SessionID), identity.Voter)
	assert.Equal(t, TokenAnonymous, identity.TokenType)

	_, err = svc.VerifyAny("garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_RejectsExpiredAndForeignTokens(t *testing.T) {
	issuedAt := time.Now().Add(-time.Hour)
	old := newTestService(t, func() time.Time { return issuedAt })
	token, err := old.IssueAccessToken(uuid.New(), "")
	require.NoError(t, err)

	svc := newTestService(t, nil)
	_, err = svc.VerifyAccessToken(token)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUnauthorized))

	other, err := NewTokenService(Config{Secret: "another-secret"})
	require.NoError(t, err)
	foreign, err := other.IssueAccessToken(uuid.New(), "")
	require.NoError(t, err)
	_, err = svc.VerifyAccessToken(foreign)
	assert.Error(t, err)

	_, err = svc.VerifyAccessToken("")
	assert.Error(t, err)
}

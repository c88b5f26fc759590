// Package auth issues and verifies the bearer tokens used by the API and live
// connections.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/AdamBeresnev/torvi/internal/apperrors"
	"github.com/AdamBeresnev/torvi/internal/bracket"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type TokenType string

const (
	TokenAccess    TokenType = "access"
	TokenAnonymous TokenType = "anonymous"
)

var ErrInvalidToken = apperrors.New(apperrors.CodeUnauthorized, "invalid token")

// claims is shared by both token types. Subject is the user id for access
// tokens and the session id for anonymous ones.
type claims struct {
	jwt.RegisteredClaims
	TokenType    TokenType `json:"token_type"`
	Email        string    `json:"email,omitempty"`
	TournamentID string    `json:"tournament_id,omitempty"`
	DisplayName  string    `json:"display_name,omitempty"`
}

type AccessClaims struct {
	UserID uuid.UUID
	Email  string
}

type AnonymousClaims struct {
	SessionID    string
	TournamentID uuid.UUID
	DisplayName  string
}

// AnonymousToken is handed to a participant who joined with an invite.
type AnonymousToken struct {
	Token     string
	SessionID string
}

// Identity is the voter behind either kind of token.
type Identity struct {
	Voter     bracket.VoterID
	TokenType TokenType
	Email     string
	// Set for anonymous tokens only.
	TournamentID uuid.UUID
	DisplayName  string
}

type Config struct {
	Secret       string
	AccessTTL    time.Duration
	AnonymousTTL time.Duration
	Now          func() time.Time
}

type TokenService struct {
	secret       []byte
	accessTTL    time.Duration
	anonymousTTL time.Duration
	now          func() time.Time
}

func NewTokenService(cfg Config) (*TokenService, error) {
	if strings.TrimSpace(cfg.Secret) == "" {
		return nil, errors.New("token secret is required")
	}
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = 15 * time.Minute
	}
	if cfg.AnonymousTTL <= 0 {
		cfg.AnonymousTTL = 24 * time.Hour
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &TokenService{
		secret:       []byte(cfg.Secret),
		accessTTL:    cfg.AccessTTL,
		anonymousTTL: cfg.AnonymousTTL,
		now:          cfg.Now,
	}, nil
}

func (s *TokenService) IssueAccessToken(userID uuid.UUID, email string) (string, error) {
	return s.sign(claims{
		RegisteredClaims: s.registered(userID.String(), s.accessTTL),
		TokenType:        TokenAccess,
		Email:            email,
	})
}

func (s *TokenService) IssueAnonymousToken(tournamentID uuid.UUID, displayName string) (AnonymousToken, error) {
	sessionID := uuid.NewString()
	token, err := s.sign(claims{
		RegisteredClaims: s.registered(sessionID, s.anonymousTTL),
		TokenType:        TokenAnonymous,
		TournamentID:     tournamentID.String(),
		DisplayName:      displayName,
	})
	if err != nil {
		return AnonymousToken{}, err
	}
	return AnonymousToken{Token: token, SessionID: sessionID}, nil
}

func (s *TokenService) VerifyAccessToken(token string) (AccessClaims, error) {
	c, err := s.parse(token, TokenAccess)
	if err != nil {
		return AccessClaims{}, err
	}
	userID, err := uuid.Parse(c.Subject)
	if err != nil {
		return AccessClaims{}, apperrors.Wrap(apperrors.CodeUnauthorized, "invalid token subject", err)
	}
	return AccessClaims{UserID: userID, Email: c.Email}, nil
}

func (s *TokenService) VerifyAnonymousToken(token string) (AnonymousClaims, error) {
	c, err := s.parse(token, TokenAnonymous)
	if err != nil {
		return AnonymousClaims{}, err
	}
	if c.Subject == "" {
		return AnonymousClaims{}, apperrors.New(apperrors.CodeUnauthorized, "invalid token subject")
	}
	tournamentID, err := uuid.Parse(c.TournamentID)
	if err != nil {
		return AnonymousClaims{}, apperrors.Wrap(apperrors.CodeUnauthorized, "invalid token tournament", err)
	}
	return AnonymousClaims{SessionID: c.Subject, TournamentID: tournamentID, DisplayName: c.DisplayName}, nil
}

// VerifyAny accepts an access token or an anonymous token. Any other token type
// is rejected.
func (s *TokenService) VerifyAny(token string) (Identity, error) {
	if access, err := s.VerifyAccessToken(token); err == nil {
		return Identity{
			Voter:     bracket.Registered(access.UserID),
			TokenType: TokenAccess,
			Email:     access.Email,
		}, nil
	}
	anon, err := s.VerifyAnonymousToken(token)
	if err != nil {
		return Identity{}, ErrInvalidToken
	}
	return Identity{
		Voter:        bracket.Anonymous(anon.SessionID),
		TokenType:    TokenAnonymous,
		TournamentID: anon.TournamentID,
		DisplayName:  anon.DisplayName,
	}, nil
}

func (s *TokenService) registered(subject string, ttl time.Duration) jwt.RegisteredClaims {
	now := s.now()
	return jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
}

func (s *TokenService) sign(c claims) (string, error) {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", c.TokenType, err)
	}
	return token, nil
}

func (s *TokenService) parse(token string, want TokenType) (*claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, apperrors.New(apperrors.CodeUnauthorized, "token is required")
	}

	var parsed claims
	_, err := jwt.ParseWithClaims(token, &parsed, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, mapJWTError(err)
	}
	if parsed.TokenType != want {
		return nil, apperrors.New(apperrors.CodeUnauthorized, fmt.Sprintf("expected %s token", want))
	}
	return &parsed, nil
}

func mapJWTError(err error) error {
	if errors.Is(err, jwt.ErrTokenExpired) {
		return apperrors.Wrap(apperrors.CodeUnauthorized, "token is expired", err)
	}
	if errors.Is(err, jwt.ErrTokenSignatureInvalid) {
		return apperrors.Wrap(apperrors.CodeUnauthorized, "token signature is invalid", err)
	}
	return apperrors.Wrap(apperrors.CodeUnauthorized, "invalid token", err)
}

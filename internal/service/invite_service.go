package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/AdamBeresnev/torvi/internal/apperrors"
	"github.com/AdamBeresnev/torvi/internal/bracket"
	"github.com/AdamBeresnev/torvi/internal/event"
	"github.com/AdamBeresnev/torvi/internal/store"
	"github.com/AdamBeresnev/torvi/internal/utils"
	"github.com/google/uuid"
)

const (
	defaultInviteMaxUses        = 10
	defaultInviteExpiresInHours = 24
	inviteCodeLength            = 8
	maxInviteCodeAttempts       = 3
)

type CreateInviteInput struct {
	MaxUses        *int `json:"max_uses,omitempty"`
	ExpiresInHours *int `json:"expires_in_hours,omitempty"`
}

type InviteResponse struct {
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expires_at"`
	MaxUses   int       `json:"max_uses"`
}

type JoinResponse struct {
	AccessToken  string    `json:"access_token"`
	TokenType    string    `json:"token_type"`
	SessionID    string    `json:"session_id"`
	DisplayName  string    `json:"display_name"`
	TournamentID uuid.UUID `json:"tournament_id"`
}

// CreateInvite issues an invite code for an active tournament. Only the owner
// may invite.
func (s *TournamentService) CreateInvite(ctx context.Context, tournamentID uuid.UUID, createdBy uuid.UUID, input CreateInviteInput) (*InviteResponse, error) {
	maxUses := utils.OrDefault(input.MaxUses, defaultInviteMaxUses)
	expiresInHours := utils.OrDefault(input.ExpiresInHours, defaultInviteExpiresInHours)
	if maxUses < 1 {
		return nil, apperrors.Validation("max_uses must be at least 1")
	}
	if expiresInHours < 1 {
		return nil, apperrors.Validation("expires_in_hours must be at least 1")
	}

	tournament, err := s.GetTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if !tournament.IsOwner(createdBy) {
		return nil, ErrNotOwner
	}
	switch tournament.Status {
	case bracket.TournamentCompleted:
		return nil, ErrTournamentCompleted
	case bracket.TournamentPaused:
		return nil, ErrTournamentNotActive
	}

	now := s.now()
	invite := &bracket.TournamentInvite{
		ID:           uuid.New(),
		TournamentID: tournamentID,
		MaxUses:      maxUses,
		ExpiresAt:    now.Add(time.Duration(expiresInHours) * time.Hour),
		CreatedBy:    createdBy,
		CreatedAt:    now,
	}
	for attempt := 1; ; attempt++ {
		invite.Code = s.newCode()
		err = s.invites.Create(ctx, invite)
		if err == nil {
			break
		}
		if !errors.Is(err, store.ErrDuplicateCode) || attempt == maxInviteCodeAttempts {
			return nil, fmt.Errorf("create invite: %w", err)
		}
		slog.Warn("invite code collision, retrying", "tournament_id", tournamentID, "attempt", attempt)
	}

	return &InviteResponse{Code: invite.Code, ExpiresAt: invite.ExpiresAt, MaxUses: invite.MaxUses}, nil
}

func newInviteCode() string {
	return uuid.NewString()[:inviteCodeLength]
}

// JoinTournament redeems an invite and admits an anonymous participant. The
// invite use is claimed first so concurrent redemptions can never exceed
// max_uses; it is given back if the join fails afterwards.
func (s *TournamentService) JoinTournament(ctx context.Context, tournamentID uuid.UUID, inviteCode string, displayName string) (*JoinResponse, error) {
	name := strings.TrimSpace(displayName)
	if name == "" {
		return nil, apperrors.Validation("display name cannot be empty")
	}

	invite, err := s.invites.GetByCode(ctx, strings.TrimSpace(inviteCode))
	if errors.Is(err, store.ErrNotFound) {
		return nil, bracket.ErrInviteNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load invite: %w", err)
	}
	if err := invite.CheckRedeemable(tournamentID, s.now()); err != nil {
		return nil, err
	}

	if err := s.invites.IncrementUses(ctx, invite.ID); err != nil {
		return nil, err
	}
	release := func() {
		if err := s.invites.ReleaseUse(context.WithoutCancel(ctx), invite.ID); err != nil {
			slog.Error("failed to release invite use", "invite_id", invite.ID, "error", err)
		}
	}

	token, err := s.tokens.IssueAnonymousToken(tournamentID, name)
	if err != nil {
		release()
		return nil, fmt.Errorf("issue anonymous token: %w", err)
	}

	_, err = s.mutate(ctx, tournamentID, func(t *bracket.Tournament) ([]event.Event, error) {
		if t.Status == bracket.TournamentCompleted {
			return nil, ErrTournamentCompleted
		}
		t.Users = append(t.Users, bracket.TournamentUser{
			VoterID:     bracket.Anonymous(token.SessionID),
			DisplayName: name,
		})
		t.UpdatedAt = s.now()
		return []event.Event{event.ParticipantJoined{DisplayName: name, ParticipantCount: len(t.Users)}}, nil
	})
	if err != nil {
		release()
		return nil, err
	}

	return &JoinResponse{
		AccessToken:  token.Token,
		TokenType:    "Bearer",
		SessionID:    token.SessionID,
		DisplayName:  name,
		TournamentID: tournamentID,
	}, nil
}

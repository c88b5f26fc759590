package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/AdamBeresnev/torvi/internal/apperrors"
	"github.com/AdamBeresnev/torvi/internal/auth"
	"github.com/AdamBeresnev/torvi/internal/bracket"
	"github.com/AdamBeresnev/torvi/internal/event"
	"github.com/AdamBeresnev/torvi/internal/store"
	"github.com/google/uuid"
)

// maxWriteAttempts bounds the optimistic retries of one mutation. The keyed
// lock makes conflicts rare; they only come from another process.
const maxWriteAttempts = 3

var (
	ErrTournamentNotFound  = apperrors.NotFound("tournament not found")
	ErrTournamentNotActive = apperrors.New(apperrors.CodeTournamentNotActive, "tournament is not active")
	ErrTournamentCompleted = apperrors.New(apperrors.CodeTournamentCompleted, "tournament is already completed")
	ErrTournamentNotPaused = apperrors.New(apperrors.CodeTournamentNotPaused, "tournament is not paused")
	ErrNotParticipant      = apperrors.Forbidden("voter is not a participant")
	ErrNotOwner            = apperrors.Forbidden("only the tournament owner can do this")
	ErrTournamentBusy      = apperrors.New(apperrors.CodeConflict, "tournament is being modified, try again")
)

type TournamentRepository interface {
	Create(ctx context.Context, tournament *bracket.Tournament) error
	Get(ctx context.Context, id uuid.UUID) (*bracket.Tournament, error)
	Update(ctx context.Context, tournament *bracket.Tournament) error
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]bracket.Tournament, error)
}

type InviteRepository interface {
	Create(ctx context.Context, invite *bracket.TournamentInvite) error
	GetByCode(ctx context.Context, code string) (*bracket.TournamentInvite, error)
	IncrementUses(ctx context.Context, id uuid.UUID) error
	ReleaseUse(ctx context.Context, id uuid.UUID) error
}

type AnonymousTokenIssuer interface {
	IssueAnonymousToken(tournamentID uuid.UUID, displayName string) (auth.AnonymousToken, error)
}

// Publisher receives the events of every committed change.
type Publisher interface {
	Publish(tournamentID uuid.UUID, e event.Event)
}

type noopPublisher struct{}

func (noopPublisher) Publish(uuid.UUID, event.Event) {}

type TournamentService struct {
	tournaments TournamentRepository
	invites     InviteRepository
	tokens      AnonymousTokenIssuer
	publisher   Publisher
	locks       *keyedMutex
	now         func() time.Time
	newCode     func() string
}

func NewTournamentService(tournaments TournamentRepository, invites InviteRepository, tokens AnonymousTokenIssuer, publisher Publisher) *TournamentService {
	if publisher == nil {
		publisher = noopPublisher{}
	}
	return &TournamentService{
		tournaments: tournaments,
		invites:     invites,
		tokens:      tokens,
		publisher:   publisher,
		locks:       newKeyedMutex(),
		now:         func() time.Time { return time.Now().UTC() },
		newCode:     newInviteCode,
	}
}

type ParticipantInput struct {
	UserID uuid.UUID `json:"id"`
	Name   string    `json:"name"`
}

type CreateTournamentInput struct {
	Name      string                       `json:"name"`
	Opponents []bracket.TournamentOpponent `json:"opponents"`
	Users     []ParticipantInput           `json:"users"`
}

func (in CreateTournamentInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return apperrors.Validation("tournament name cannot be empty")
	}
	if len(in.Opponents) < 2 {
		return apperrors.Validation("tournament needs at least 2 opponents")
	}
	if len(in.Users) == 0 {
		return apperrors.Validation("tournament needs at least 1 user")
	}

	seenOpponents := make(map[uuid.UUID]struct{}, len(in.Opponents))
	for _, o := range in.Opponents {
		if o.OpponentID == uuid.Nil {
			return apperrors.Validation("opponent id is required")
		}
		if _, dup := seenOpponents[o.OpponentID]; dup {
			return apperrors.Validation(fmt.Sprintf("opponent %s is listed twice", o.OpponentID))
		}
		if _, err := parseLink(o.URL); err != nil {
			return apperrors.Validation(fmt.Sprintf("opponent %s: %s", o.OpponentID, err))
		}
		seenOpponents[o.OpponentID] = struct{}{}
	}

	seenUsers := make(map[uuid.UUID]struct{}, len(in.Users))
	for _, u := range in.Users {
		if u.UserID == uuid.Nil {
			return apperrors.Validation("user id is required")
		}
		if _, dup := seenUsers[u.UserID]; dup {
			return apperrors.Validation(fmt.Sprintf("user %s is listed twice", u.UserID))
		}
		seenUsers[u.UserID] = struct{}{}
	}
	return nil
}

// CreateTournament builds round 1 from the opponents in the order given.
func (s *TournamentService) CreateTournament(ctx context.Context, createdBy uuid.UUID, input CreateTournamentInput) (*bracket.Tournament, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	now := s.now()
	opponents := make([]bracket.TournamentOpponent, len(input.Opponents))
	copy(opponents, input.Opponents)

	participants := make([]bracket.TournamentUser, 0, len(input.Users))
	for _, u := range input.Users {
		participants = append(participants, bracket.TournamentUser{
			VoterID:     bracket.Registered(u.UserID),
			DisplayName: strings.TrimSpace(u.Name),
		})
	}

	tournament := &bracket.Tournament{
		ID:        uuid.New(),
		Name:      strings.TrimSpace(input.Name),
		CreatedBy: createdBy,
		Opponents: opponents,
		Users:     participants,
		Rounds:    []bracket.Round{bracket.BuildInitialRound(opponents, now)},
		Status:    bracket.TournamentActive,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.tournaments.Create(ctx, tournament); err != nil {
		return nil, fmt.Errorf("create tournament: %w", err)
	}
	return tournament, nil
}

func (s *TournamentService) GetTournament(ctx context.Context, id uuid.UUID) (*bracket.Tournament, error) {
	tournament, err := s.tournaments.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrTournamentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load tournament: %w", err)
	}
	return tournament, nil
}

func (s *TournamentService) ListTournaments(ctx context.Context, ownerID uuid.UUID) ([]bracket.Tournament, error) {
	tournaments, err := s.tournaments.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list tournaments: %w", err)
	}
	return tournaments, nil
}

func (s *TournamentService) PauseTournament(ctx context.Context, id uuid.UUID, callerID uuid.UUID) (*bracket.Tournament, error) {
	return s.mutate(ctx, id, func(t *bracket.Tournament) ([]event.Event, error) {
		if !t.IsOwner(callerID) {
			return nil, ErrNotOwner
		}
		switch t.Status {
		case bracket.TournamentCompleted:
			return nil, ErrTournamentCompleted
		case bracket.TournamentPaused:
			return nil, ErrTournamentNotActive
		}
		t.Status = bracket.TournamentPaused
		t.UpdatedAt = s.now()
		return []event.Event{event.TournamentPaused{}}, nil
	})
}

func (s *TournamentService) ResumeTournament(ctx context.Context, id uuid.UUID, callerID uuid.UUID) (*bracket.Tournament, error) {
	return s.mutate(ctx, id, func(t *bracket.Tournament) ([]event.Event, error) {
		if !t.IsOwner(callerID) {
			return nil, ErrNotOwner
		}
		switch t.Status {
		case bracket.TournamentCompleted:
			return nil, ErrTournamentCompleted
		case bracket.TournamentActive:
			return nil, ErrTournamentNotPaused
		}
		t.Status = bracket.TournamentActive
		t.UpdatedAt = s.now()
		return []event.Event{event.TournamentResumed{}}, nil
	})
}

// mutateFunc changes a loaded tournament in place and returns the events to
// publish once the change is stored.
type mutateFunc func(t *bracket.Tournament) ([]event.Event, error)

// mutate runs a read-modify-write of one tournament. Writers in this process
// are serialized by the keyed lock; the version check catches everyone else,
// in which case fn runs again on a fresh copy.
func (s *TournamentService) mutate(ctx context.Context, id uuid.UUID, fn mutateFunc) (*bracket.Tournament, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	for attempt := 0; attempt < maxWriteAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		tournament, err := s.GetTournament(ctx, id)
		if err != nil {
			return nil, err
		}

		events, err := fn(tournament)
		if err != nil {
			return nil, err
		}

		err = s.tournaments.Update(ctx, tournament)
		if errors.Is(err, store.ErrConflict) {
			continue
		}
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrTournamentNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("save tournament: %w", err)
		}

		for _, e := range events {
			s.publisher.Publish(id, e)
		}
		return tournament, nil
	}
	return nil, ErrTournamentBusy
}

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/AdamBeresnev/torvi/internal/bracket"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
)

type InviteStore struct {
	db *sqlx.DB
}

const (
	createInviteQuery = `
		INSERT INTO tournament_invites (id, code, tournament_id, max_uses, current_uses, expires_at, created_by, created_at)
		VALUES (:id, :code, :tournament_id, :max_uses, :current_uses, :expires_at, :created_by, :created_at)
	`
	getInviteByCodeQuery = "SELECT * FROM tournament_invites WHERE code = ?"
	// The use counter never passes max_uses, even with concurrent redemptions.
	incrementInviteUsesQuery = `
		UPDATE tournament_invites SET current_uses = current_uses + 1
		WHERE id = ? AND current_uses < max_uses
	`
	releaseInviteUseQuery = `
		UPDATE tournament_invites SET current_uses = current_uses - 1
		WHERE id = ? AND current_uses > 0
	`
)

func NewInviteStore(db *sqlx.DB) *InviteStore {
	return &InviteStore{db: db}
}

// Create inserts the invite. It fails with ErrDuplicateCode when the code is
// already taken.
func (s *InviteStore) Create(ctx context.Context, invite *bracket.TournamentInvite) error {
	if _, err := s.db.NamedExecContext(ctx, createInviteQuery, invite); err != nil {
		if isDuplicateInviteCode(err) {
			return ErrDuplicateCode
		}
		return fmt.Errorf("insert invite: %w", err)
	}
	return nil
}

func isDuplicateInviteCode(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) || sqliteErr.ExtendedCode != sqlite3.ErrConstraintUnique {
		return false
	}
	return strings.Contains(sqliteErr.Error(), "tournament_invites.code")
}

func (s *InviteStore) GetByCode(ctx context.Context, code string) (*bracket.TournamentInvite, error) {
	var invite bracket.TournamentInvite
	err := s.db.GetContext(ctx, &invite, getInviteByCodeQuery, code)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get invite: %w", err)
	}
	return &invite, nil
}

// IncrementUses claims one use of the invite. It fails with
// bracket.ErrInviteExhausted when no use is left.
func (s *InviteStore) IncrementUses(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, incrementInviteUsesQuery, id)
	if err != nil {
		return fmt.Errorf("increment invite uses: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("increment invite uses: %w", err)
	}
	if affected == 0 {
		return bracket.ErrInviteExhausted
	}
	return nil
}

// ReleaseUse gives back a use claimed by IncrementUses when the join it was
// claimed for could not be completed.
func (s *InviteStore) ReleaseUse(ctx context.Context, id uuid.UUID) error {
	if _, err := s.db.ExecContext(ctx, releaseInviteUseQuery, id); err != nil {
		return fmt.Errorf("release invite use: %w", err)
	}
	return nil
}

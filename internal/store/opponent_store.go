package store

import (
	"context"
	"fmt"

	"github.com/AdamBeresnev/torvi/internal/bracket"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type OpponentStore struct {
	db *sqlx.DB
}

const (
	createOpponentsQuery = `
		INSERT INTO opponents (id, owner_id, name, url, embed_link, created_at)
		VALUES (:id, :owner_id, :name, :url, :embed_link, :created_at)
	`
	listOpponentsQuery = "SELECT * FROM opponents WHERE owner_id = ? ORDER BY created_at ASC, name ASC"
	getOpponentsQuery  = "SELECT * FROM opponents WHERE owner_id = ? AND id IN (?)"
)

func NewOpponentStore(db *sqlx.DB) *OpponentStore {
	return &OpponentStore{db: db}
}

func (s *OpponentStore) CreateOpponents(ctx context.Context, tx *sqlx.Tx, opponents []bracket.Opponent) error {
	if len(opponents) == 0 {
		return nil
	}
	if _, err := tx.NamedExecContext(ctx, createOpponentsQuery, opponents); err != nil {
		return fmt.Errorf("insert opponents: %w", err)
	}
	return nil
}

func (s *OpponentStore) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]bracket.Opponent, error) {
	var opponents []bracket.Opponent
	if err := s.db.SelectContext(ctx, &opponents, listOpponentsQuery, ownerID); err != nil {
		return nil, fmt.Errorf("list opponents: %w", err)
	}
	return opponents, nil
}

// GetByIDs returns the owner's opponents with the given ids. Unknown ids are
// skipped; callers compare lengths when every id must exist.
func (s *OpponentStore) GetByIDs(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID) ([]bracket.Opponent, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(getOpponentsQuery, ownerID, ids)
	if err != nil {
		return nil, fmt.Errorf("build opponents query: %w", err)
	}

	var opponents []bracket.Opponent
	if err := s.db.SelectContext(ctx, &opponents, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("get opponents: %w", err)
	}
	return opponents, nil
}

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/AdamBeresnev/torvi/internal/bracket"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// TournamentStore keeps each tournament as one JSON document. The scalar columns
// mirror document fields for filtering, and version guards concurrent writers.
type TournamentStore struct {
	db *sqlx.DB
}

type tournamentRow struct {
	ID        uuid.UUID                `db:"id"`
	Name      string                   `db:"name"`
	CreatedBy uuid.UUID                `db:"created_by"`
	Status    bracket.TournamentStatus `db:"status"`
	Version   int                      `db:"version"`
	Document  string                   `db:"document"`
	CreatedAt time.Time                `db:"created_at"`
	UpdatedAt time.Time                `db:"updated_at"`
}

const (
	createTournamentQuery = `
		INSERT INTO tournaments (id, name, created_by, status, version, document, created_at, updated_at)
		VALUES (:id, :name, :created_by, :status, :version, :document, :created_at, :updated_at)
	`
	getTournamentQuery    = "SELECT * FROM tournaments WHERE id = ?"
	listTournamentsQuery  = "SELECT * FROM tournaments WHERE created_by = ? ORDER BY created_at DESC"
	tournamentExistsQuery = "SELECT COUNT(*) FROM tournaments WHERE id = ?"
	updateTournamentQuery = `
		UPDATE tournaments SET
		name = ?,
		status = ?,
		document = ?,
		updated_at = ?,
		version = version + 1
		WHERE id = ? AND version = ?
	`
)

func NewTournamentStore(db *sqlx.DB) *TournamentStore {
	return &TournamentStore{db: db}
}

// Create inserts a new tournament and sets its version to 1.
func (s *TournamentStore) Create(ctx context.Context, tournament *bracket.Tournament) error {
	row, err := toRow(tournament)
	if err != nil {
		return err
	}
	row.Version = 1

	if _, err := s.db.NamedExecContext(ctx, createTournamentQuery, row); err != nil {
		return fmt.Errorf("insert tournament: %w", err)
	}
	tournament.Version = 1
	return nil
}

func (s *TournamentStore) Get(ctx context.Context, id uuid.UUID) (*bracket.Tournament, error) {
	var row tournamentRow
	err := s.db.GetContext(ctx, &row, getTournamentQuery, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get tournament: %w", err)
	}
	return fromRow(row)
}

// Update replaces the stored document if nobody else wrote it since it was
// read. On success tournament.Version is advanced; on a lost race ErrConflict
// is returned and nothing is written.
func (s *TournamentStore) Update(ctx context.Context, tournament *bracket.Tournament) error {
	row, err := toRow(tournament)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, updateTournamentQuery,
		row.Name, row.Status, row.Document, row.UpdatedAt, row.ID, tournament.Version)
	if err != nil {
		return fmt.Errorf("update tournament: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update tournament: %w", err)
	}
	if affected == 0 {
		var count int
		if err := s.db.GetContext(ctx, &count, tournamentExistsQuery, row.ID); err != nil {
			return fmt.Errorf("check tournament: %w", err)
		}
		if count == 0 {
			return ErrNotFound
		}
		return ErrConflict
	}

	tournament.Version++
	return nil
}

func (s *TournamentStore) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]bracket.Tournament, error) {
	var rows []tournamentRow
	if err := s.db.SelectContext(ctx, &rows, listTournamentsQuery, ownerID); err != nil {
		return nil, fmt.Errorf("list tournaments: %w", err)
	}

	tournaments := make([]bracket.Tournament, 0, len(rows))
	for _, row := range rows {
		t, err := fromRow(row)
		if err != nil {
			return nil, err
		}
		tournaments = append(tournaments, *t)
	}
	return tournaments, nil
}

func toRow(t *bracket.Tournament) (tournamentRow, error) {
	doc, err := json.Marshal(t)
	if err != nil {
		return tournamentRow{}, fmt.Errorf("encode tournament %s: %w", t.ID, err)
	}
	return tournamentRow{
		ID:        t.ID,
		Name:      t.Name,
		CreatedBy: t.CreatedBy,
		Status:    t.Status,
		Version:   t.Version,
		Document:  string(doc),
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}, nil
}

func fromRow(row tournamentRow) (*bracket.Tournament, error) {
	var t bracket.Tournament
	if err := json.Unmarshal([]byte(row.Document), &t); err != nil {
		return nil, fmt.Errorf("decode tournament %s: %w", row.ID, err)
	}
	t.Version = row.Version
	return &t, nil
}

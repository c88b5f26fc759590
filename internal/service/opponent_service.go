package service

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/AdamBeresnev/torvi/internal/apperrors"
	"github.com/AdamBeresnev/torvi/internal/bracket"
	"github.com/AdamBeresnev/torvi/internal/store"
	"github.com/AdamBeresnev/torvi/internal/utils"
	"github.com/AdamBeresnev/torvi/internal/video"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const maxOpponentNameLength = 50

type OpponentService struct {
	db    *sqlx.DB
	store *store.OpponentStore
}

func NewOpponentService(db *sqlx.DB, store *store.OpponentStore) *OpponentService {
	return &OpponentService{db: db, store: store}
}

// CreateFromLinks adds one catalog opponent per non-blank line of links.
func (s *OpponentService) CreateFromLinks(ctx context.Context, ownerID uuid.UUID, links string) ([]bracket.Opponent, error) {
	now := time.Now().UTC()

	var opponents []bracket.Opponent
	for i, line := range strings.Split(links, "\n") {
		link := utils.TrimmedOrNil(line)
		if link == nil {
			continue
		}
		o, err := opponentFromLink(ownerID, *link, now)
		if err != nil {
			return nil, apperrors.Validation(fmt.Sprintf("line %d: %s", i+1, err))
		}
		opponents = append(opponents, o)
	}
	if len(opponents) == 0 {
		return nil, apperrors.Validation("at least one link is required")
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := s.store.CreateOpponents(ctx, tx, opponents); err != nil {
		return nil, err
	}

	return opponents, tx.Commit()
}

func (s *OpponentService) List(ctx context.Context, ownerID uuid.UUID) ([]bracket.Opponent, error) {
	return s.store.ListByOwner(ctx, ownerID)
}

// Snapshot fills in the url of every reference that only names a catalog
// opponent. References that carry a url are kept as they are.
func (s *OpponentService) Snapshot(ctx context.Context, ownerID uuid.UUID, refs []bracket.TournamentOpponent) ([]bracket.TournamentOpponent, error) {
	var missing []uuid.UUID
	for _, ref := range refs {
		if strings.TrimSpace(ref.URL) == "" {
			missing = append(missing, ref.OpponentID)
		}
	}
	if len(missing) == 0 {
		return refs, nil
	}

	found, err := s.store.GetByIDs(ctx, ownerID, missing)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]bracket.Opponent, len(found))
	for _, o := range found {
		byID[o.ID] = o
	}

	out := make([]bracket.TournamentOpponent, len(refs))
	for i, ref := range refs {
		if strings.TrimSpace(ref.URL) != "" {
			out[i] = ref
			continue
		}
		o, ok := byID[ref.OpponentID]
		if !ok {
			return nil, apperrors.Validation(fmt.Sprintf("opponent %s is not in your catalog", ref.OpponentID))
		}
		out[i] = o.Snapshot()
	}
	return out, nil
}

// parseLink accepts absolute http(s) links only. Anything else could run in
// the viewer's browser once embedded.
func parseLink(link string) (*url.URL, error) {
	u, err := url.ParseRequestURI(link)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%q is not an http(s) link", link)
	}
	return u, nil
}

func opponentFromLink(ownerID uuid.UUID, link string, now time.Time) (bracket.Opponent, error) {
	u, err := parseLink(link)
	if err != nil {
		return bracket.Opponent{}, err
	}

	opponent := bracket.Opponent{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Name:      nameFromURL(u),
		URL:       link,
		CreatedAt: now,
	}
	if info := video.GetEmbedInfo(&link); info.Type != video.EmbedTypeNone {
		opponent.EmbedLink = utils.TrimmedOrNil(info.URL)
	}
	return opponent, nil
}

// nameFromURL picks a readable placeholder name: the last path segment, or
// the host when the path is empty.
func nameFromURL(u *url.URL) string {
	name := u.Host
	if base := path.Base(u.Path); base != "." && base != "/" && base != "" {
		name = base
	}
	if v := u.Query().Get("v"); v != "" {
		name = v
	}
	if len(name) > maxOpponentNameLength {
		name = name[:maxOpponentNameLength]
	}
	return name
}

package bracket

import (
	"time"

	"github.com/google/uuid"
)

// Opponent is a catalog entry owned by a user. Tournaments copy it into a
// TournamentOpponent when they are created.
type Opponent struct {
	ID        uuid.UUID `db:"id" json:"id"`
	OwnerID   uuid.UUID `db:"owner_id" json:"owner_id"`
	Name      string    `db:"name" json:"name"`
	URL       string    `db:"url" json:"url"`
	EmbedLink *string   `db:"embed_link" json:"embed_link,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

func (o Opponent) Snapshot() TournamentOpponent {
	return TournamentOpponent{OpponentID: o.ID, URL: o.URL}
}

package bracket

import (
	"time"

	"github.com/AdamBeresnev/torvi/internal/apperrors"
	"github.com/google/uuid"
)

var (
	ErrInviteNotFound        = apperrors.New(apperrors.CodeInviteNotFound, "invalid invite code")
	ErrInviteWrongTournament = apperrors.New(apperrors.CodeInviteWrongTournament, "invite code does not match tournament")
	ErrInviteExpired         = apperrors.New(apperrors.CodeInviteExpired, "invite code has expired")
	ErrInviteExhausted       = apperrors.New(apperrors.CodeInviteExhausted, "invite code has reached maximum uses")
)

type TournamentInvite struct {
	ID           uuid.UUID `db:"id"`
	Code         string    `db:"code"`
	TournamentID uuid.UUID `db:"tournament_id"`
	MaxUses      int       `db:"max_uses"`
	CurrentUses  int       `db:"current_uses"`
	ExpiresAt    time.Time `db:"expires_at"`
	CreatedBy    uuid.UUID `db:"created_by"`
	CreatedAt    time.Time `db:"created_at"`
}

// CheckRedeemable validates the invite for tournamentID at time now.
func (i *TournamentInvite) CheckRedeemable(tournamentID uuid.UUID, now time.Time) error {
	if i.TournamentID != tournamentID {
		return ErrInviteWrongTournament
	}
	if now.After(i.ExpiresAt) {
		return ErrInviteExpired
	}
	if i.CurrentUses >= i.MaxUses {
		return ErrInviteExhausted
	}
	return nil
}

package store

import "github.com/AdamBeresnev/torvi/internal/apperrors"

var (
	ErrNotFound = apperrors.New(apperrors.CodeNotFound, "record not found")
	ErrConflict = apperrors.New(apperrors.CodeConflict, "record was modified concurrently")
	// ErrDuplicateCode means another invite already holds the code.
	ErrDuplicateCode = apperrors.New(apperrors.CodeConflict, "invite code already in use")
)

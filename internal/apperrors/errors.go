package apperrors

import (
	"errors"
	"net/http"
)

type Code string

const (
	CodeValidation            Code = "validation"
	CodeNotFound              Code = "not_found"
	CodeUnauthorized          Code = "unauthorized"
	CodeForbidden             Code = "forbidden"
	CodeAlreadyVoted          Code = "already_voted"
	CodeInvalidOpponent       Code = "invalid_opponent"
	CodeMatchDecided          Code = "match_decided"
	CodeTournamentNotActive   Code = "tournament_not_active"
	CodeTournamentCompleted   Code = "tournament_completed"
	CodeTournamentNotPaused   Code = "tournament_not_paused"
	CodeInviteNotFound        Code = "invite_not_found"
	CodeInviteWrongTournament Code = "invite_wrong_tournament"
	CodeInviteExpired         Code = "invite_expired"
	CodeInviteExhausted       Code = "invite_exhausted"
	CodeConflict              Code = "conflict"
)

// HTTPStatus maps a code onto the response status the API layer reports.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeValidation, CodeInvalidOpponent:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound, CodeInviteNotFound:
		return http.StatusNotFound
	case CodeAlreadyVoted, CodeMatchDecided, CodeTournamentNotActive, CodeTournamentCompleted, CodeTournamentNotPaused,
		CodeInviteWrongTournament, CodeInviteExpired, CodeInviteExhausted, CodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Error is a domain error. Message is safe to show to callers.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target carries the same code and message. Use HasCode to
// match a whole class of errors.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code && e.Message == t.Message
	}
	return false
}

func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

func Validation(message string) *Error {
	return New(CodeValidation, message)
}

func NotFound(message string) *Error {
	return New(CodeNotFound, message)
}

func Forbidden(message string) *Error {
	return New(CodeForbidden, message)
}

// CodeOf returns the code of the first *Error in err's chain, or "" when there is none.
func CodeOf(err error) Code {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code Code) bool {
	return CodeOf(err) == code
}

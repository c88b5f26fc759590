package httputil

import (
	"log/slog"
	"net/http"

	"github.com/AdamBeresnev/torvi/internal/apperrors"
)

type ErrorResponse struct {
	Error string         `json:"error"`
	Code  apperrors.Code `json:"code,omitempty"`
}

// WriteError reports err to the client. Coded errors keep their message and
// status; anything else is logged and answered with a bare 500.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	code := apperrors.CodeOf(err)
	if code == "" {
		InternalServerError(w, "request failed", err, "path", r.URL.Path)
		return
	}

	status := code.HTTPStatus()
	if status >= http.StatusInternalServerError {
		InternalServerError(w, "request failed", err, "path", r.URL.Path, "code", code)
		return
	}

	slog.Debug("request rejected", "path", r.URL.Path, "code", code, "error", err)
	WriteJSON(w, status, ErrorResponse{Error: err.Error(), Code: code})
}

func InternalServerError(w http.ResponseWriter, msg string, err error, attrs ...any) {
	slog.Error(msg, append([]any{"error", err}, attrs...)...)
	WriteJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Internal Server Error"})
}

func BadRequest(w http.ResponseWriter, msg string, err error) {
	if err != nil {
		slog.Warn("bad request", "message", msg, "error", err)
	} else {
		slog.Warn("bad request", "message", msg)
	}
	WriteJSON(w, http.StatusBadRequest, ErrorResponse{Error: msg, Code: apperrors.CodeValidation})
}

func NotFound(w http.ResponseWriter, msg string, err error) {
	if err != nil {
		slog.Warn("not found", "message", msg, "error", err)
	} else {
		slog.Warn("not found", "message", msg)
	}
	WriteJSON(w, http.StatusNotFound, ErrorResponse{Error: msg, Code: apperrors.CodeNotFound})
}

func Unauthorized(w http.ResponseWriter, msg string) {
	WriteJSON(w, http.StatusUnauthorized, ErrorResponse{Error: msg, Code: apperrors.CodeUnauthorized})
}

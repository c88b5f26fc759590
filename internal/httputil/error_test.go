package httputil

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/AdamBeresnev/torvi/internal/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteError(t *testing.T) {
	testCases := []struct {
		name           string
		err            error
		expectedStatus int
		expectedBody   ErrorResponse
	}{
		{
			name:           "validation",
			err:            apperrors.Validation("tournament name cannot be empty"),
			expectedStatus: http.StatusBadRequest,
			expectedBody:   ErrorResponse{Error: "tournament name cannot be empty", Code: apperrors.CodeValidation},
		},
		{
			name:           "forbidden",
			err:            apperrors.Forbidden("voter is not a participant"),
			expectedStatus: http.StatusForbidden,
			expectedBody:   ErrorResponse{Error: "voter is not a participant", Code: apperrors.CodeForbidden},
		},
		{
			name:           "business rule",
			err:            apperrors.New(apperrors.CodeInviteExpired, "invite code has expired"),
			expectedStatus: http.StatusConflict,
			expectedBody:   ErrorResponse{Error: "invite code has expired", Code: apperrors.CodeInviteExpired},
		},
		{
			name:           "uncoded error hides detail",
			err:            errors.New("database is locked"),
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   ErrorResponse{Error: "Internal Server Error"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteError(rec, httptest.NewRequest(http.MethodGet, "/api/tournaments", nil), tc.err)

			assert.Equal(t, tc.expectedStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var body ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tc.expectedBody, body)
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	var dst struct {
		Name string `json:"name"`
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Openings"}`))
	require.NoError(t, DecodeJSON(rec, req, &dst))
	assert.Equal(t, "Openings", dst.Name)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
	assert.True(t, apperrors.HasCode(DecodeJSON(rec, req, &dst), apperrors.CodeValidation))

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{"))
	assert.True(t, apperrors.HasCode(DecodeJSON(rec, req, &dst), apperrors.CodeValidation))
}

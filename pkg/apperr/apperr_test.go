package apperr_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/driftlock/identity/pkg/apperr"
	"github.com/stretchr/testify/require"
)

func TestConstructorsCarryStatusAndCode(t *testing.T) {
	t.Parallel()

	cases := []struct {
		err    *apperr.Error
		status int
		code   string
	}{
		{apperr.Validation("bad input"), http.StatusBadRequest, apperr.CodeValidation},
		{apperr.Authentication("who are you"), http.StatusUnauthorized, apperr.CodeAuthentication},
		{apperr.Authorization("not yours"), http.StatusForbidden, apperr.CodeAuthorization},
		{apperr.NotFound("gone"), http.StatusNotFound, apperr.CodeNotFound},
		{apperr.Conflict("taken"), http.StatusConflict, apperr.CodeConflict},
		{apperr.RateLimited("slow down"), http.StatusTooManyRequests, apperr.CodeRateLimit},
		{apperr.Internal(), http.StatusInternalServerError, apperr.CodeInternal},
	}

	for _, tc := range cases {
		require.Equal(t, tc.status, tc.err.StatusCode, tc.code)
		require.Equal(t, tc.code, tc.err.Code)
	}
}

func TestFromUnwrapsTaxonomyErrors(t *testing.T) {
	t.Parallel()

	orig := apperr.NotFound("user not found")
	wrapped := fmt.Errorf("handling request: %w", orig)

	got := apperr.From(wrapped)
	require.Equal(t, orig, got)
}

func TestFromCollapsesUnknownErrorsToInternal(t *testing.T) {
	t.Parallel()

	got := apperr.From(errors.New("sql: connection reset"))
	require.Equal(t, apperr.CodeInternal, got.Code)
	require.Equal(t, "internal server error", got.Message)
}

func TestWriteRendersEnvelope(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	apperr.Validation("email is required").
		WithDetails(map[string]string{"email": "required"}).
		Write(rec, "req-abc")

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body struct {
		Success bool `json:"success"`
		Error   struct {
			StatusCode int               `json:"statusCode"`
			Code       string            `json:"code"`
			Message    string            `json:"message"`
			Details    map[string]string `json:"details"`
		} `json:"error"`
		RequestID string `json:"requestId"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	require.False(t, body.Success)
	require.Equal(t, http.StatusBadRequest, body.Error.StatusCode)
	require.Equal(t, apperr.CodeValidation, body.Error.Code)
	require.Equal(t, "email is required", body.Error.Message)
	require.Equal(t, "required", body.Error.Details["email"])
	require.Equal(t, "req-abc", body.RequestID)
}

func TestWithDetailsDoesNotMutateOriginal(t *testing.T) {
	t.Parallel()

	orig := apperr.Validation("bad")
	_ = orig.WithDetails("something")
	require.Nil(t, orig.Details)
}

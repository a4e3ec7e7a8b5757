package http

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteValidationError(t *testing.T) {
	w := httptest.NewRecorder()

	WriteValidationError(w, []string{"email is required", "password is required"})

	assert.Equal(t, 400, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "validation_failed", resp.Error)
	assert.Equal(t, []string{"email is required", "password is required"}, resp.Details)
	assert.Zero(t, resp.RetryAfter)
}

func TestWriteLockedOut(t *testing.T) {
	w := httptest.NewRecorder()

	WriteLockedOut(w, 900)

	assert.Equal(t, 429, w.Code)
	assert.Equal(t, "900", w.Header().Get("Retry-After"))

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "too_many_attempts", resp.Error)
	assert.Equal(t, 900, resp.RetryAfter)
}

func TestWriteError_Statuses(t *testing.T) {
	cases := []struct {
		name   string
		write  func(w *httptest.ResponseRecorder)
		status int
		code   string
	}{
		{"bad request", func(w *httptest.ResponseRecorder) { WriteBadRequest(w, "nope") }, 400, "bad_request"},
		{"unauthorized", func(w *httptest.ResponseRecorder) { WriteUnauthorized(w, "nope") }, 401, "unauthorized"},
		{"forbidden", func(w *httptest.ResponseRecorder) { WriteForbidden(w, "nope") }, 403, "forbidden"},
		{"not found", func(w *httptest.ResponseRecorder) { WriteNotFound(w, "nope") }, 404, "not_found"},
		{"conflict", func(w *httptest.ResponseRecorder) { WriteConflict(w, "nope") }, 409, "conflict"},
		{"unavailable", func(w *httptest.ResponseRecorder) { WriteServiceUnavailable(w, "nope") }, 503, "service_unavailable"},
		{"internal", func(w *httptest.ResponseRecorder) { WriteInternalError(w, "nope") }, 500, "internal_error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tc.write(w)

			assert.Equal(t, tc.status, w.Code)

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tc.code, resp.Error)
		})
	}
}

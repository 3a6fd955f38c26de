package httputil

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "intentions/pkg/domain-errors"
)

func TestWriteError(t *testing.T) {
	t.Run("internal error omits description", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.New(dErrors.CodeInternal, "db failed"))

		require.Equal(t, http.StatusInternalServerError, w.Code)
		var body map[string]any
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		assert.Equal(t, "internal_error", body["error"])
		assert.NotContains(t, body, "error_description")
	})

	t.Run("plain error is internal", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, context.DeadlineExceeded)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "deadline")
	})

	t.Run("not found includes description", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.New(dErrors.CodeNotFound, "Intent not found"))

		require.Equal(t, http.StatusNotFound, w.Code)
		var body map[string]any
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		assert.Equal(t, "not_found", body["error"])
		assert.Equal(t, "Intent not found", body["error_description"])
	})

	t.Run("validation error is unprocessable with fields", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.Validation("name", "Name cannot be empty"))

		require.Equal(t, http.StatusUnprocessableEntity, w.Code)
		var body ErrorResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		require.Len(t, body.Fields, 1)
		assert.Equal(t, "name", body.Fields[0].Field)
	})
}

func TestDecodeJSON(t *testing.T) {
	var dst struct {
		Name string `json:"name"`
	}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":`))
	err := DecodeJSON(req, &dst)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"x","extra":1}`))
	require.NoError(t, DecodeJSON(req, &dst))
	assert.Equal(t, "x", dst.Name)
}

func TestIDParam(t *testing.T) {
	for raw, ok := range map[string]bool{"7": true, "0": false, "-3": false, "abc": false} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("id", raw)
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

		id, err := IDParam(req, "id")
		if ok {
			require.NoError(t, err, raw)
			assert.Equal(t, int64(7), id)
		} else {
			assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest), raw)
		}
	}
}

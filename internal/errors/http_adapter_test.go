package errors

import (
	"encoding/json"
	stdErrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHTTPErrorAdapter_StatusCodeFor(t *testing.T) {
	adapter := NewHTTPErrorAdapter(nil)

	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"nil error", nil, http.StatusOK},
		{"validation", ValidationFailed("path", "escapes root"), http.StatusBadRequest},
		{"not found", NotFound("/x.html"), http.StatusNotFound},
		{"network", FetchFailed("https://x.test", stdErrors.New("HTTP 404")), http.StatusBadGateway},
		{"parse", ParseFailed("file:///x.html", stdErrors.New("bad")), http.StatusUnprocessableEntity},
		{"unclassified", stdErrors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, adapter.StatusCodeFor(tt.err))
		})
	}
}

func TestHTTPErrorAdapter_WriteErrorResponse(t *testing.T) {
	adapter := NewHTTPErrorAdapter(nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/missing.html", nil)

	adapter.WriteErrorResponse(rec, req, NotFound("missing.html"))

	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var body HTTPErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "not found", body.Error)
	require.Equal(t, string(CategoryNotFound), body.Code)
	require.Equal(t, "missing.html", body.Details["path"])
}

package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/adwatch/internal/monitor"
)

func testRouter(s *Server) http.Handler {
	r := chi.NewRouter()
	r.Get("/", s.handleRoot)
	r.Get("/status", s.handleStatus)
	return r
}

func TestHandleRoot(t *testing.T) {
	s := New(0, "sheet-123", monitor.NewHealth())

	rec := httptest.NewRecorder()
	testRouter(s).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, false, body["monitoring_active"])
	assert.NotEmpty(t, body["timestamp"])
}

func TestHandleStatus(t *testing.T) {
	health := monitor.NewHealth()
	s := New(0, "sheet-123", health)

	rec := httptest.NewRecorder()
	testRouter(s).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "sheet-123", body["sheet_id"])
	assert.Equal(t, monitor.StateStopped, body["monitoring_status"])
	assert.Equal(t, float64(0), body["rows_written"])
	assert.Equal(t, "", body["last_pass"])
	assert.NotContains(t, body, "last_error")
}

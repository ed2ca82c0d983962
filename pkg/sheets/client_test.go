package sheets

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTitle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Contains(t, r.URL.Path, "/spreadsheets/sheet-1")

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"sheets":[{"properties":{"title":"Leads"}},{"properties":{"title":"Archive"}}]}`))
	}))
	defer srv.Close()

	c := NewClient("tok", WithBaseURL(srv.URL))
	title, err := c.Title(context.Background(), "sheet-1")
	require.NoError(t, err)
	assert.Equal(t, "Leads", title)
}

func TestTitle_NoSheets(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"sheets":[]}`))
	}))
	defer srv.Close()

	c := NewClient("tok", WithBaseURL(srv.URL))
	_, err := c.Title(context.Background(), "sheet-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no sheets")
}

func TestValues(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "/values/")

		w.Write([]byte(`{"values":[["profileUrl","LI Ads?"],["https://linkedin.com/in/a",""]]}`))
	}))
	defer srv.Close()

	c := NewClient("tok", WithBaseURL(srv.URL))
	values, err := c.Values(context.Background(), "sheet-1", "Leads!A1:Z")
	require.NoError(t, err)
	require.Len(t, values, 2)
	assert.Equal(t, []string{"profileUrl", "LI Ads?"}, values[0])
}

func TestValues_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":"permission denied"}`))
	}))
	defer srv.Close()

	c := NewClient("tok", WithBaseURL(srv.URL))
	_, err := c.Values(context.Background(), "sheet-1", "Leads!A1:Z")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
}

func TestBatchUpdate(t *testing.T) {
	var got batchUpdateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Contains(t, r.URL.Path, "values:batchUpdate")

		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"totalUpdatedCells":2}`))
	}))
	defer srv.Close()

	c := NewClient("tok", WithBaseURL(srv.URL))
	err := c.BatchUpdate(context.Background(), "sheet-1", []ValueRange{
		{Range: "Leads!E2", Values: [][]any{{"y"}}},
		{Range: "Leads!F2", Values: [][]any{{12}}},
	})
	require.NoError(t, err)

	assert.Equal(t, "RAW", got.ValueInputOption)
	require.Len(t, got.Data, 2)
	assert.Equal(t, "Leads!E2", got.Data[0].Range)
}

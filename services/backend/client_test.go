package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"showlog/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestsCarryAuthAndCorrelationHeaders(t *testing.T) {
	var gotAuth, gotRequestID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get("X-Request-ID")
		json.NewEncoder(w).Encode(models.WatchlistPage{})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, func() string { return "tok123" }, nil)
	_, err := c.ListWatchlist(context.Background(), nil, 1)
	require.NoError(t, err)

	assert.Equal(t, "Bearer tok123", gotAuth)
	assert.NotEmpty(t, gotRequestID)
}

func TestListWatchlistPassesStatusFilter(t *testing.T) {
	var gotStatus string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotStatus = r.URL.Query().Get("status")
		json.NewEncoder(w).Encode(models.WatchlistPage{})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil, nil)
	status := models.StatusWatching
	_, err := c.ListWatchlist(context.Background(), &status, 1)
	require.NoError(t, err)
	assert.Equal(t, "watching", gotStatus)
}

func TestAddEntryDuplicateIsRecognised(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "This movie is already in your watchlist"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil, nil)
	_, err := c.AddEntry(context.Background(), models.WatchlistAdd{TMDBID: 42, Type: models.MediaTypeMovie, Title: "Heat"})
	require.ErrorIs(t, err, ErrAlreadyInWatchlist)
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{"unauthorized", http.StatusUnauthorized, ErrUnauthorized},
		{"not found", http.StatusNotFound, ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			c := NewClient(srv.URL, nil, nil)
			err := c.RemoveEntry(context.Background(), 7)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestServerErrorSurfacesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"message": "database unavailable"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil, nil)
	_, err := c.WatchlistStats(context.Background())

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.Equal(t, "database unavailable", apiErr.Message)
}

func TestUpdateEntryStatusSendsBody(t *testing.T) {
	var got statusUpdate
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPatch, r.Method)
		require.Equal(t, "/watchlist/9", r.URL.Path)
		json.NewDecoder(r.Body).Decode(&got)
		json.NewEncoder(w).Encode(models.WatchlistEntry{ID: 9, WatchStatus: got.WatchStatus})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil, nil)
	entry, err := c.UpdateEntryStatus(context.Background(), 9, models.StatusCompleted, nil)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, got.WatchStatus)
	assert.Equal(t, models.StatusCompleted, entry.WatchStatus)
}

func TestDownloadReportStreamsBody(t *testing.T) {
	payload := []byte("%PDF-1.7 fake report")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "year", r.URL.Query().Get("period"))
		w.Write(payload)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil, nil)
	var buf bytes.Buffer
	require.NoError(t, c.DownloadReport(context.Background(), models.ReportYear, &buf))
	assert.Equal(t, payload, buf.Bytes())
}

func TestDownloadReportRejectsUnknownPeriod(t *testing.T) {
	c := NewClient("http://localhost", nil, nil)
	err := c.DownloadReport(context.Background(), models.ReportPeriod("decade"), &bytes.Buffer{})
	require.Error(t, err)
}

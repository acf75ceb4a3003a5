package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"showlog/handlers"
	"showlog/models"
	"showlog/services/backend"
	"showlog/services/tracker"

	"github.com/gorilla/mux"
)

type fakeWatchlist struct {
	overview   tracker.Overview
	refreshErr error
	addErr     error
	updateErr  error

	gotFilter *models.WatchStatus
	gotAdd    models.WatchlistAdd
	gotUpdate struct {
		entryID int64
		status  models.WatchStatus
	}
}

func (f *fakeWatchlist) Refresh(_ context.Context, filter *models.WatchStatus) error {
	f.gotFilter = filter
	return f.refreshErr
}

func (f *fakeWatchlist) Overview() tracker.Overview { return f.overview }

func (f *fakeWatchlist) Stats() models.WatchlistStats { return f.overview.Stats }

func (f *fakeWatchlist) Add(_ context.Context, add models.WatchlistAdd) (models.WatchlistEntry, error) {
	f.gotAdd = add
	if f.addErr != nil {
		return models.WatchlistEntry{}, f.addErr
	}
	return models.WatchlistEntry{ID: 42, TMDBID: add.TMDBID, Type: add.Type, Title: add.Title, WatchStatus: models.StatusPlanned}, nil
}

func (f *fakeWatchlist) UpdateStatus(_ context.Context, entryID int64, status models.WatchStatus) error {
	f.gotUpdate.entryID = entryID
	f.gotUpdate.status = status
	return f.updateErr
}

func (f *fakeWatchlist) Remove(context.Context, int64) error { return nil }

func TestWatchlistListAppliesStatusFilter(t *testing.T) {
	fake := &fakeWatchlist{}
	h := handlers.NewWatchlistHandler(fake)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/watchlist?status=watching", nil)
	rec := httptest.NewRecorder()
	h.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if fake.gotFilter == nil || *fake.gotFilter != models.StatusWatching {
		t.Fatalf("expected watching filter, got %v", fake.gotFilter)
	}
}

func TestWatchlistListRejectsUnknownStatus(t *testing.T) {
	h := handlers.NewWatchlistHandler(&fakeWatchlist{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/watchlist?status=binged", nil)
	rec := httptest.NewRecorder()
	h.List(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestWatchlistAddReturnsEntry(t *testing.T) {
	fake := &fakeWatchlist{}
	h := handlers.NewWatchlistHandler(fake)

	payload, _ := json.Marshal(models.WatchlistAdd{TMDBID: 603, Type: models.MediaTypeMovie, Title: "The Matrix"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/watchlist", bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	h.Add(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var entry models.WatchlistEntry
	if err := json.Unmarshal(rec.Body.Bytes(), &entry); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if entry.ID != 42 || entry.WatchStatus != models.StatusPlanned {
		t.Fatalf("unexpected entry: %+v", entry)
	}
	if fake.gotAdd.TMDBID != 603 {
		t.Fatalf("expected tmdb id 603, got %d", fake.gotAdd.TMDBID)
	}
}

func TestWatchlistAddDuplicateIsConflict(t *testing.T) {
	fake := &fakeWatchlist{addErr: backend.ErrAlreadyInWatchlist}
	h := handlers.NewWatchlistHandler(fake)

	payload, _ := json.Marshal(models.WatchlistAdd{TMDBID: 603, Type: models.MediaTypeMovie, Title: "The Matrix"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/watchlist", bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	h.Add(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d", rec.Code)
	}
}

func TestWatchlistUpdateStatus(t *testing.T) {
	fake := &fakeWatchlist{}
	h := handlers.NewWatchlistHandler(fake)

	payload := []byte(`{"watchStatus":"completed"}`)
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/watchlist/7", bytes.NewReader(payload))
	req = mux.SetURLVars(req, map[string]string{"entryID": "7"})
	rec := httptest.NewRecorder()
	h.UpdateStatus(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if fake.gotUpdate.entryID != 7 || fake.gotUpdate.status != models.StatusCompleted {
		t.Fatalf("unexpected update call: %+v", fake.gotUpdate)
	}
}

func TestWatchlistUpdateInvalidStatusIsBadRequest(t *testing.T) {
	fake := &fakeWatchlist{updateErr: tracker.ErrInvalidStatus}
	h := handlers.NewWatchlistHandler(fake)

	payload := []byte(`{"watchStatus":"binged"}`)
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/watchlist/7", bytes.NewReader(payload))
	req = mux.SetURLVars(req, map[string]string{"entryID": "7"})
	rec := httptest.NewRecorder()
	h.UpdateStatus(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestWatchlistUpstreamFailureIsBadGateway(t *testing.T) {
	fake := &fakeWatchlist{refreshErr: errors.New("connection refused")}
	h := handlers.NewWatchlistHandler(fake)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/watchlist", nil)
	rec := httptest.NewRecorder()
	h.List(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected status 502, got %d", rec.Code)
	}
}

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"showlog/models"
	"showlog/services/backend"
	"showlog/services/tracker"

	"github.com/gorilla/mux"
)

type watchlistService interface {
	Refresh(ctx context.Context, filter *models.WatchStatus) error
	Overview() tracker.Overview
	Stats() models.WatchlistStats
	Add(ctx context.Context, add models.WatchlistAdd) (models.WatchlistEntry, error)
	UpdateStatus(ctx context.Context, entryID int64, status models.WatchStatus) error
	Remove(ctx context.Context, entryID int64) error
}

var _ watchlistService = (*tracker.Service)(nil)

// WatchlistHandler serves the aggregated watchlist view and mutations.
type WatchlistHandler struct {
	Service watchlistService
}

func NewWatchlistHandler(service watchlistService) *WatchlistHandler {
	return &WatchlistHandler{Service: service}
}

// List refetches the watchlist (honouring an optional ?status= filter) and
// returns the partitioned view with stats.
func (h *WatchlistHandler) List(w http.ResponseWriter, r *http.Request) {
	var filter *models.WatchStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := models.WatchStatus(raw)
		if !status.Valid() {
			http.Error(w, "invalid status filter", http.StatusBadRequest)
			return
		}
		filter = &status
	}

	if err := h.Service.Refresh(r.Context(), filter); err != nil {
		writeUpstreamError(w, err)
		return
	}

	writeJSON(w, h.Service.Overview())
}

// Stats returns the current aggregate statistics without refetching the list.
func (h *WatchlistHandler) Stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.Service.Stats())
}

// Add tracks a new title. A duplicate add is reported as a conflict so the
// caller can switch into the "already present" state.
func (h *WatchlistHandler) Add(w http.ResponseWriter, r *http.Request) {
	var body models.WatchlistAdd
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	entry, err := h.Service.Add(r.Context(), body)
	if err != nil {
		if errors.Is(err, backend.ErrAlreadyInWatchlist) {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		writeUpstreamError(w, err)
		return
	}

	writeJSON(w, entry)
}

// UpdateStatus changes an entry's watch status.
func (h *WatchlistHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	entryID, ok := pathID(w, r, "entryID")
	if !ok {
		return
	}

	var body struct {
		WatchStatus models.WatchStatus `json:"watchStatus"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.Service.UpdateStatus(r.Context(), entryID, body.WatchStatus); err != nil {
		if errors.Is(err, tracker.ErrInvalidStatus) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeUpstreamError(w, err)
		return
	}

	writeJSON(w, h.Service.Overview())
}

// Remove untracks an entry.
func (h *WatchlistHandler) Remove(w http.ResponseWriter, r *http.Request) {
	entryID, ok := pathID(w, r, "entryID")
	if !ok {
		return
	}

	if err := h.Service.Remove(r.Context(), entryID); err != nil {
		writeUpstreamError(w, err)
		return
	}

	writeJSON(w, h.Service.Overview())
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, name+" must be a positive integer", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// writeUpstreamError maps remote API failures onto this API's status codes.
func writeUpstreamError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, backend.ErrUnauthorized):
		http.Error(w, err.Error(), http.StatusUnauthorized)
	case errors.Is(err, backend.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		var apiErr *backend.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 {
			http.Error(w, err.Error(), apiErr.StatusCode)
			return
		}
		http.Error(w, err.Error(), http.StatusBadGateway)
	}
}

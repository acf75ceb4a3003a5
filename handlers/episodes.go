package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"showlog/models"
	"showlog/services/tracker"

	"github.com/gorilla/mux"
)

type episodeProvider interface {
	Episodes(showID int64) *tracker.EpisodeTracker
}

var _ episodeProvider = (*tracker.Service)(nil)

// EpisodesHandler serves per-show, per-season episode progress.
type EpisodesHandler struct {
	Service episodeProvider
}

func NewEpisodesHandler(service episodeProvider) *EpisodesHandler {
	return &EpisodesHandler{Service: service}
}

// seasonView is the response for a selected season.
type seasonView struct {
	ShowID   int64            `json:"showId"`
	Season   int              `json:"season"`
	Episodes []models.Episode `json:"episodes"`
	Progress float64          `json:"progress"`
}

// Season selects a season and returns its episodes with progress.
func (h *EpisodesHandler) Season(w http.ResponseWriter, r *http.Request) {
	showID, season, ok := h.pathVars(w, r)
	if !ok {
		return
	}

	t := h.Service.Episodes(showID)
	if err := t.SelectSeason(r.Context(), season); err != nil {
		writeUpstreamError(w, err)
		return
	}

	writeJSON(w, seasonView{
		ShowID:   showID,
		Season:   t.Season(),
		Episodes: t.Episodes(),
		Progress: t.Progress(),
	})
}

// UpdateEpisode changes one episode's status within the selected season.
func (h *EpisodesHandler) UpdateEpisode(w http.ResponseWriter, r *http.Request) {
	showID, ok := pathID(w, r, "showID")
	if !ok {
		return
	}
	episodeID, ok := pathID(w, r, "episodeID")
	if !ok {
		return
	}

	var body struct {
		WatchStatus models.EpisodeStatus `json:"watchStatus"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	t := h.Service.Episodes(showID)
	if err := t.SetStatus(r.Context(), episodeID, body.WatchStatus); err != nil {
		if errors.Is(err, tracker.ErrInvalidStatus) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeUpstreamError(w, err)
		return
	}

	writeJSON(w, seasonView{
		ShowID:   showID,
		Season:   t.Season(),
		Episodes: t.Episodes(),
		Progress: t.Progress(),
	})
}

// MarkSeason bulk-marks the selected season watched or unwatched. Partial
// failures still return the optimistic local state, with a 502 so the caller
// knows the server may disagree until the next fetch.
func (h *EpisodesHandler) MarkSeason(w http.ResponseWriter, r *http.Request) {
	showID, ok := pathID(w, r, "showID")
	if !ok {
		return
	}

	var body struct {
		Watched bool `json:"watched"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	t := h.Service.Episodes(showID)
	if err := t.MarkSeason(r.Context(), body.Watched); err != nil {
		writeUpstreamError(w, err)
		return
	}

	writeJSON(w, seasonView{
		ShowID:   showID,
		Season:   t.Season(),
		Episodes: t.Episodes(),
		Progress: t.Progress(),
	})
}

func (h *EpisodesHandler) pathVars(w http.ResponseWriter, r *http.Request) (int64, int, bool) {
	showID, ok := pathID(w, r, "showID")
	if !ok {
		return 0, 0, false
	}

	season, err := strconv.Atoi(mux.Vars(r)["season"])
	if err != nil || season < 0 {
		http.Error(w, "season must be a non-negative integer", http.StatusBadRequest)
		return 0, 0, false
	}
	return showID, season, true
}

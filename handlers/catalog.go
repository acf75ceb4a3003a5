package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"showlog/models"
	"showlog/services/catalog"

	"github.com/gorilla/mux"
)

type catalogService interface {
	Search(ctx context.Context, query string, page int) (models.SearchPage, error)
	Trending(ctx context.Context, mediaType models.MediaType) ([]models.Title, error)
	Popular(ctx context.Context, mediaType models.MediaType, page int) (models.SearchPage, error)
	Details(ctx context.Context, mediaType models.MediaType, tmdbID int64) (models.TitleDetails, error)
}

var _ catalogService = (*catalog.Service)(nil)

// CatalogHandler exposes catalog browse and search.
type CatalogHandler struct {
	Service catalogService
}

func NewCatalogHandler(service catalogService) *CatalogHandler {
	return &CatalogHandler{Service: service}
}

func (h *CatalogHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("query"))
	if query == "" {
		http.Error(w, "query is required", http.StatusBadRequest)
		return
	}

	page, err := h.Service.Search(r.Context(), query, queryPage(r))
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, page)
}

func (h *CatalogHandler) Trending(w http.ResponseWriter, r *http.Request) {
	mediaType, ok := pathMediaType(w, r)
	if !ok {
		return
	}

	items, err := h.Service.Trending(r.Context(), mediaType)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, items)
}

func (h *CatalogHandler) Popular(w http.ResponseWriter, r *http.Request) {
	mediaType, ok := pathMediaType(w, r)
	if !ok {
		return
	}

	page, err := h.Service.Popular(r.Context(), mediaType, queryPage(r))
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, page)
}

func (h *CatalogHandler) Details(w http.ResponseWriter, r *http.Request) {
	mediaType, ok := pathMediaType(w, r)
	if !ok {
		return
	}
	tmdbID, ok := pathID(w, r, "tmdbID")
	if !ok {
		return
	}

	details, err := h.Service.Details(r.Context(), mediaType, tmdbID)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, details)
}

func pathMediaType(w http.ResponseWriter, r *http.Request) (models.MediaType, bool) {
	mediaType := models.MediaType(mux.Vars(r)["mediaType"])
	if !mediaType.Valid() {
		http.Error(w, "media type must be movie or tv", http.StatusBadRequest)
		return "", false
	}
	return mediaType, true
}

func queryPage(r *http.Request) int {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		return 1
	}
	return page
}

package api

import (
	"log/slog"
	"net/http"
	"time"

	"showlog/handlers"

	"github.com/gorilla/mux"
)

// corsMiddleware handles CORS for API routes so the rendering layer can be
// served from a different origin during development.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "*")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// logMiddleware logs each request with its duration.
func logMiddleware(logger *slog.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			logger.Debug("request",
				"method", r.Method,
				"path", r.URL.Path,
				"duration", time.Since(start),
			)
		})
	}
}

// Handlers bundles everything the router mounts.
type Handlers struct {
	Watchlist *handlers.WatchlistHandler
	Episodes  *handlers.EpisodesHandler
	Catalog   *handlers.CatalogHandler
	Session   *handlers.SessionHandler
	Reports   *handlers.ReportsHandler
}

// NewRouter builds the API route table.
func NewRouter(h Handlers, logger *slog.Logger) *mux.Router {
	r := mux.NewRouter()
	r.Use(corsMiddleware)
	if logger != nil {
		r.Use(logMiddleware(logger))
	}

	apiRouter := r.PathPrefix("/api/v1").Subrouter()

	// Session
	apiRouter.HandleFunc("/session", h.Session.SignIn).Methods(http.MethodPost, http.MethodOptions)
	apiRouter.HandleFunc("/session", h.Session.Me).Methods(http.MethodGet)
	apiRouter.HandleFunc("/session", h.Session.SignOut).Methods(http.MethodDelete)

	// Watchlist
	apiRouter.HandleFunc("/watchlist", h.Watchlist.List).Methods(http.MethodGet)
	apiRouter.HandleFunc("/watchlist", h.Watchlist.Add).Methods(http.MethodPost, http.MethodOptions)
	apiRouter.HandleFunc("/watchlist/stats", h.Watchlist.Stats).Methods(http.MethodGet)
	apiRouter.HandleFunc("/watchlist/{entryID}", h.Watchlist.UpdateStatus).Methods(http.MethodPatch, http.MethodOptions)
	apiRouter.HandleFunc("/watchlist/{entryID}", h.Watchlist.Remove).Methods(http.MethodDelete)

	// Episode progress
	apiRouter.HandleFunc("/shows/{showID}/seasons/{season}", h.Episodes.Season).Methods(http.MethodGet)
	apiRouter.HandleFunc("/shows/{showID}/episodes/{episodeID}", h.Episodes.UpdateEpisode).Methods(http.MethodPatch, http.MethodOptions)
	apiRouter.HandleFunc("/shows/{showID}/season", h.Episodes.MarkSeason).Methods(http.MethodPost, http.MethodOptions)

	// Catalog browse
	apiRouter.HandleFunc("/catalog/search", h.Catalog.Search).Methods(http.MethodGet)
	apiRouter.HandleFunc("/catalog/{mediaType}/trending", h.Catalog.Trending).Methods(http.MethodGet)
	apiRouter.HandleFunc("/catalog/{mediaType}/popular", h.Catalog.Popular).Methods(http.MethodGet)
	apiRouter.HandleFunc("/catalog/{mediaType}/{tmdbID}", h.Catalog.Details).Methods(http.MethodGet)

	// Reports
	apiRouter.HandleFunc("/reports", h.Reports.Generate).Methods(http.MethodGet)

	return r
}

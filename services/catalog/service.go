package catalog

import (
	"context"
	"net/http"

	"showlog/models"
)

// Service is the catalog lookup surface used by handlers and the tracker.
type Service struct {
	tmdb *tmdbClient
}

// NewService creates a catalog service backed by TMDB.
func NewService(apiKey, language string, httpc *http.Client) *Service {
	return &Service{tmdb: newTMDBClient(apiKey, language, httpc)}
}

// Search runs a multi search across movies and TV shows.
func (s *Service) Search(ctx context.Context, query string, page int) (models.SearchPage, error) {
	return s.tmdb.search(ctx, query, page)
}

// Trending returns this week's trending titles for one media type.
func (s *Service) Trending(ctx context.Context, mediaType models.MediaType) ([]models.Title, error) {
	return s.tmdb.trending(ctx, mediaType)
}

// Popular returns one page of popular titles for one media type.
func (s *Service) Popular(ctx context.Context, mediaType models.MediaType, page int) (models.SearchPage, error) {
	return s.tmdb.popular(ctx, mediaType, page)
}

// Details fetches the full detail record for a title, including cast,
// similar titles and videos.
func (s *Service) Details(ctx context.Context, mediaType models.MediaType, tmdbID int64) (models.TitleDetails, error) {
	return s.tmdb.details(ctx, mediaType, tmdbID)
}

package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"showlog/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T, handler http.HandlerFunc) *Service {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	svc := NewService("test-key", "en-US", srv.Client())
	svc.tmdb.baseURL = srv.URL
	return svc
}

func TestSearchNormalizesMovieAndTVFields(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search/multi", r.URL.Path)
		assert.Equal(t, "heat", r.URL.Query().Get("query"))
		assert.Equal(t, "test-key", r.URL.Query().Get("api_key"))

		w.Write([]byte(`{
			"page": 1,
			"total_pages": 3,
			"results": [
				{"id": 949, "media_type": "movie", "title": "Heat", "release_date": "1995-12-15", "vote_average": 8.0},
				{"id": 1438, "media_type": "tv", "name": "The Wire", "first_air_date": "2002-06-02", "vote_average": 8.6},
				{"id": 500, "media_type": "person", "name": "Somebody"}
			]
		}`))
	})

	page, err := svc.Search(context.Background(), "heat", 1)
	require.NoError(t, err)

	// The person result is dropped; movie and tv variants end up uniform.
	require.Len(t, page.Results, 2)
	assert.Equal(t, 3, page.TotalPages)

	movie := page.Results[0]
	assert.Equal(t, models.MediaTypeMovie, movie.MediaType)
	assert.Equal(t, "Heat", movie.Name)
	assert.Equal(t, "1995-12-15", movie.ReleaseDate)
	assert.Equal(t, 1995, movie.Year)

	show := page.Results[1]
	assert.Equal(t, models.MediaTypeTV, show.MediaType)
	assert.Equal(t, "The Wire", show.Name)
	assert.Equal(t, "2002-06-02", show.ReleaseDate)
	assert.Equal(t, 2002, show.Year)
}

func TestTrendingUsesPathMediaTypeAsFallback(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/trending/tv/week", r.URL.Path)
		w.Write([]byte(`{"page":1,"total_pages":1,"results":[{"id": 66732, "name": "Stranger Things", "first_air_date": "2016-07-15"}]}`))
	})

	items, err := svc.Trending(context.Background(), models.MediaTypeTV)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, models.MediaTypeTV, items[0].MediaType)
	assert.Equal(t, "Stranger Things", items[0].Name)
}

func TestDetailsCarriesSeasonAndEpisodeCounts(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/tv/1438", r.URL.Path)
		assert.Equal(t, "credits,similar,videos", r.URL.Query().Get("append_to_response"))
		w.Write([]byte(`{
			"id": 1438,
			"name": "The Wire",
			"first_air_date": "2002-06-02",
			"number_of_seasons": 5,
			"number_of_episodes": 60,
			"episode_run_time": [55],
			"genres": [{"name": "Crime"}, {"name": "Drama"}],
			"credits": {"cast": [{"name": "Dominic West", "character": "Jimmy McNulty"}]},
			"videos": {"results": [{"name": "Trailer", "site": "YouTube", "key": "abc", "type": "Trailer", "official": true}]}
		}`))
	})

	details, err := svc.Details(context.Background(), models.MediaTypeTV, 1438)
	require.NoError(t, err)

	assert.Equal(t, 5, details.SeasonCount)
	assert.Equal(t, 60, details.EpisodeCount)
	assert.Equal(t, 55, details.Runtime)
	assert.Equal(t, []string{"Crime", "Drama"}, details.Genres)
	require.Len(t, details.Cast, 1)
	require.Len(t, details.Videos, 1)
	assert.Equal(t, "abc", details.Videos[0].Key)
}

func TestUnconfiguredClientFailsFast(t *testing.T) {
	svc := NewService("", "en-US", nil)
	_, err := svc.Search(context.Background(), "heat", 1)
	require.ErrorIs(t, err, ErrNotConfigured)
}

func TestImageURL(t *testing.T) {
	assert.Equal(t, "https://image.tmdb.org/t/p/w500/abc.jpg", ImageURL("/abc.jpg", "w500"))
	assert.Equal(t, "", ImageURL("  ", "w500"))
}

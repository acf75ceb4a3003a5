package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"showlog/models"

	"golang.org/x/time/rate"
)

const (
	tmdbBaseURL      = "https://api.themoviedb.org/3"
	tmdbImageBaseURL = "https://image.tmdb.org/t/p"
)

// ErrNotConfigured is returned when no TMDB API key has been set.
var ErrNotConfigured = errors.New("tmdb api key not configured")

// tmdbClient wraps the TMDB v3 API. Requests are rate limited so bursts of
// detail lookups stay inside TMDB's allowance.
type tmdbClient struct {
	baseURL  string
	apiKey   string
	language string
	httpc    *http.Client
	limiter  *rate.Limiter
}

func newTMDBClient(apiKey, language string, httpc *http.Client) *tmdbClient {
	if httpc == nil {
		httpc = &http.Client{Timeout: 15 * time.Second}
	}
	return &tmdbClient{
		baseURL:  tmdbBaseURL,
		apiKey:   strings.TrimSpace(apiKey),
		language: language,
		httpc:    httpc,
		limiter:  rate.NewLimiter(rate.Limit(40), 10),
	}
}

func (c *tmdbClient) isConfigured() bool {
	return c != nil && c.apiKey != ""
}

// doGET performs a rate-limited GET against the TMDB API and decodes the
// JSON body into v.
func (c *tmdbClient) doGET(ctx context.Context, endpoint string, params url.Values, v any) error {
	if !c.isConfigured() {
		return ErrNotConfigured
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint, nil)
	if err != nil {
		return err
	}

	q := req.URL.Query()
	for key, values := range params {
		for _, value := range values {
			q.Add(key, value)
		}
	}
	q.Set("api_key", c.apiKey)
	q.Set("language", normalizeLanguage(c.language))
	req.URL.RawQuery = q.Encode()

	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("tmdb %s failed: %s", endpoint, resp.Status)
	}

	return json.NewDecoder(resp.Body).Decode(v)
}

// tmdbItem is the union shape TMDB uses across search, trending and similar
// lists: movies carry title/release_date, shows carry name/first_air_date.
type tmdbItem struct {
	ID               int64   `json:"id"`
	Name             string  `json:"name"`
	Title            string  `json:"title"`
	Overview         string  `json:"overview"`
	PosterPath       string  `json:"poster_path"`
	BackdropPath     string  `json:"backdrop_path"`
	ReleaseDate      string  `json:"release_date"`
	FirstAirDate     string  `json:"first_air_date"`
	MediaType        string  `json:"media_type"`
	VoteAverage      float64 `json:"vote_average"`
	VoteCount        int     `json:"vote_count"`
	Popularity       float64 `json:"popularity"`
	OriginalLanguage string  `json:"original_language"`
}

type tmdbPage struct {
	Page       int        `json:"page"`
	TotalPages int        `json:"total_pages"`
	Results    []tmdbItem `json:"results"`
}

// normalizeItem folds the movie/tv field variants into one Title. fallback
// supplies the media type for endpoints that omit media_type.
func normalizeItem(r tmdbItem, fallback models.MediaType) (models.Title, bool) {
	mediaType := fallback
	switch r.MediaType {
	case "movie":
		mediaType = models.MediaTypeMovie
	case "tv":
		mediaType = models.MediaTypeTV
	case "person":
		return models.Title{}, false
	}
	if !mediaType.Valid() {
		return models.Title{}, false
	}

	name := r.Title
	releaseDate := r.ReleaseDate
	if mediaType == models.MediaTypeTV {
		name = r.Name
		releaseDate = r.FirstAirDate
	}
	if name == "" {
		if r.Title != "" {
			name = r.Title
		} else {
			name = r.Name
		}
	}

	return models.Title{
		TMDBID:       r.ID,
		MediaType:    mediaType,
		Name:         name,
		Overview:     r.Overview,
		PosterPath:   r.PosterPath,
		BackdropPath: r.BackdropPath,
		ReleaseDate:  releaseDate,
		Year:         parseYear(releaseDate),
		VoteAverage:  r.VoteAverage,
		VoteCount:    r.VoteCount,
		Popularity:   r.Popularity,
	}, true
}

func normalizePage(page tmdbPage, fallback models.MediaType) models.SearchPage {
	out := models.SearchPage{
		Page:       page.Page,
		TotalPages: page.TotalPages,
		Results:    make([]models.Title, 0, len(page.Results)),
	}
	for _, r := range page.Results {
		if title, ok := normalizeItem(r, fallback); ok {
			out.Results = append(out.Results, title)
		}
	}
	return out
}

func (c *tmdbClient) search(ctx context.Context, query string, page int) (models.SearchPage, error) {
	params := url.Values{}
	params.Set("query", query)
	if page > 0 {
		params.Set("page", strconv.Itoa(page))
	}

	var payload tmdbPage
	if err := c.doGET(ctx, "/search/multi", params, &payload); err != nil {
		return models.SearchPage{}, err
	}
	return normalizePage(payload, ""), nil
}

func (c *tmdbClient) trending(ctx context.Context, mediaType models.MediaType) ([]models.Title, error) {
	endpoint := fmt.Sprintf("/trending/%s/week", mediaType)

	var payload tmdbPage
	if err := c.doGET(ctx, endpoint, nil, &payload); err != nil {
		return nil, err
	}
	return normalizePage(payload, mediaType).Results, nil
}

func (c *tmdbClient) popular(ctx context.Context, mediaType models.MediaType, page int) (models.SearchPage, error) {
	params := url.Values{}
	if page > 0 {
		params.Set("page", strconv.Itoa(page))
	}

	var payload tmdbPage
	if err := c.doGET(ctx, fmt.Sprintf("/%s/popular", mediaType), params, &payload); err != nil {
		return models.SearchPage{}, err
	}
	return normalizePage(payload, mediaType), nil
}

// tmdbDetails is the detail record shape shared by movie and tv endpoints.
type tmdbDetails struct {
	tmdbItem

	Genres []struct {
		Name string `json:"name"`
	} `json:"genres"`
	Runtime          int    `json:"runtime"`
	EpisodeRunTime   []int  `json:"episode_run_time"`
	NumberOfSeasons  int    `json:"number_of_seasons"`
	NumberOfEpisodes int    `json:"number_of_episodes"`
	Tagline          string `json:"tagline"`
	Homepage         string `json:"homepage"`

	Credits struct {
		Cast []struct {
			Name        string `json:"name"`
			Character   string `json:"character"`
			ProfilePath string `json:"profile_path"`
		} `json:"cast"`
	} `json:"credits"`
	Similar *tmdbPage `json:"similar"`
	Videos  struct {
		Results []struct {
			Name     string `json:"name"`
			Site     string `json:"site"`
			Key      string `json:"key"`
			Type     string `json:"type"`
			Official bool   `json:"official"`
		} `json:"results"`
	} `json:"videos"`
}

func (c *tmdbClient) details(ctx context.Context, mediaType models.MediaType, tmdbID int64) (models.TitleDetails, error) {
	endpoint := fmt.Sprintf("/%s/%d", mediaType, tmdbID)
	params := url.Values{}
	params.Set("append_to_response", "credits,similar,videos")

	var payload tmdbDetails
	if err := c.doGET(ctx, endpoint, params, &payload); err != nil {
		return models.TitleDetails{}, err
	}

	title, ok := normalizeItem(payload.tmdbItem, mediaType)
	if !ok {
		return models.TitleDetails{}, fmt.Errorf("tmdb %s/%d: unrecognised media type", mediaType, tmdbID)
	}

	out := models.TitleDetails{
		Title:        title,
		Runtime:      payload.Runtime,
		Tagline:      payload.Tagline,
		Homepage:     payload.Homepage,
		SeasonCount:  payload.NumberOfSeasons,
		EpisodeCount: payload.NumberOfEpisodes,
	}

	if out.Runtime == 0 && len(payload.EpisodeRunTime) > 0 {
		out.Runtime = payload.EpisodeRunTime[0]
	}

	for _, g := range payload.Genres {
		if g.Name != "" {
			out.Genres = append(out.Genres, g.Name)
		}
	}

	for _, cm := range payload.Credits.Cast {
		out.Cast = append(out.Cast, models.CastMember{
			Name:        cm.Name,
			Character:   cm.Character,
			ProfilePath: cm.ProfilePath,
		})
		if len(out.Cast) >= 20 {
			break
		}
	}

	if payload.Similar != nil {
		out.Similar = normalizePage(*payload.Similar, mediaType).Results
	}

	for _, v := range payload.Videos.Results {
		if v.Key == "" {
			continue
		}
		out.Videos = append(out.Videos, models.Video{
			Name:     v.Name,
			Site:     v.Site,
			Key:      v.Key,
			Type:     v.Type,
			Official: v.Official,
		})
	}

	return out, nil
}

// ImageURL builds the CDN URL for a poster/backdrop path at the given size.
func ImageURL(imagePath, size string) string {
	trimmed := strings.TrimSpace(imagePath)
	if trimmed == "" {
		return ""
	}
	return fmt.Sprintf("%s/%s/%s", tmdbImageBaseURL, size, strings.TrimPrefix(trimmed, "/"))
}

func parseYear(date string) int {
	if date == "" {
		return 0
	}
	if t, err := time.Parse("2006-01-02", date); err == nil {
		return t.Year()
	}
	if len(date) >= 4 {
		if y, err := strconv.Atoi(date[:4]); err == nil {
			return y
		}
	}
	return 0
}

func normalizeLanguage(lang string) string {
	lang = strings.ReplaceAll(strings.TrimSpace(lang), "_", "-")
	if len(lang) == 2 {
		return strings.ToLower(lang) + "-US"
	}
	if len(lang) >= 5 {
		return strings.ToLower(lang[:2]) + "-" + strings.ToUpper(lang[3:])
	}
	return "en-US"
}

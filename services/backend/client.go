package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"showlog/models"

	"github.com/google/uuid"
)

var (
	// ErrAlreadyInWatchlist is returned when the server rejects an add
	// because the title is already tracked.
	ErrAlreadyInWatchlist = errors.New("title already in watchlist")

	// ErrNotFound is returned for 404 responses.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized is returned for 401 responses (missing/expired token).
	ErrUnauthorized = errors.New("unauthorized")
)

// duplicateAddMessage is the server phrase that identifies a duplicate add.
const duplicateAddMessage = "already in your watchlist"

// APIError carries the HTTP status and server-provided message of a failed call.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error: status %d", e.StatusCode)
	}
	return fmt.Sprintf("api error: status %d: %s", e.StatusCode, e.Message)
}

// TokenSource supplies the current bearer token, or "" when signed out.
type TokenSource func() string

// Client talks to the remote watchlist API. The remote service owns all
// persistence and identity; this client only reflects its state.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      TokenSource
}

// NewClient creates a watchlist API client. A nil http client gets a default
// with a 30 second timeout.
func NewClient(baseURL string, token TokenSource, httpc *http.Client) *Client {
	if httpc == nil {
		httpc = &http.Client{Timeout: 30 * time.Second}
	}
	if token == nil {
		token = func() string { return "" }
	}
	return &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient: httpc,
		token:      token,
	}
}

// newRequest builds a request with auth and correlation headers applied.
func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := c.token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	return req, nil
}

// do executes the request and decodes a JSON response into v (when non-nil).
// Error responses are mapped to sentinel errors where recognised, otherwise
// surfaced as *APIError.
func (c *Client) do(req *http.Request, v any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("watchlist api %s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return c.decodeError(resp)
	}

	if v == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) decodeError(resp *http.Response) error {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}

	data, _ := io.ReadAll(io.LimitReader(resp.Body, 8192))
	_ = json.Unmarshal(data, &payload)

	message := payload.Error
	if message == "" {
		message = payload.Message
	}
	if message == "" {
		message = strings.TrimSpace(string(data))
	}

	// A specific server phrase marks the duplicate-add case so callers can
	// show the "already present" state instead of a generic failure.
	if strings.Contains(strings.ToLower(message), duplicateAddMessage) {
		return ErrAlreadyInWatchlist
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusNotFound:
		return ErrNotFound
	}

	return &APIError{StatusCode: resp.StatusCode, Message: message}
}

// loginResponse is the body returned by the auth endpoints.
type loginResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// Login exchanges credentials for a bearer token and the account profile.
func (c *Client) Login(ctx context.Context, email, password string) (models.User, string, error) {
	body := map[string]string{"email": email, "password": password}
	req, err := c.newRequest(ctx, http.MethodPost, "/auth/login", body)
	if err != nil {
		return models.User{}, "", err
	}

	var out loginResponse
	if err := c.do(req, &out); err != nil {
		return models.User{}, "", err
	}
	return out.User, out.Token, nil
}

// Profile fetches the profile of the signed-in account.
func (c *Client) Profile(ctx context.Context) (models.User, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/auth/me", nil)
	if err != nil {
		return models.User{}, err
	}

	var out models.User
	if err := c.do(req, &out); err != nil {
		return models.User{}, err
	}
	return out, nil
}

// ListWatchlist fetches one page of the watchlist, optionally filtered by
// status. A nil status means "all".
func (c *Client) ListWatchlist(ctx context.Context, status *models.WatchStatus, page int) (models.WatchlistPage, error) {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if status != nil {
		q.Set("status", string(*status))
	}

	path := "/watchlist"
	if encoded := q.Encode(); encoded != "" {
		path += "?" + encoded
	}

	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return models.WatchlistPage{}, err
	}

	var out models.WatchlistPage
	if err := c.do(req, &out); err != nil {
		return models.WatchlistPage{}, err
	}
	return out, nil
}

// AddEntry adds a title to the watchlist. The server assigns the entry
// identity and defaults the status to planned.
func (c *Client) AddEntry(ctx context.Context, add models.WatchlistAdd) (models.WatchlistEntry, error) {
	req, err := c.newRequest(ctx, http.MethodPost, "/watchlist", add)
	if err != nil {
		return models.WatchlistEntry{}, err
	}

	var out models.WatchlistEntry
	if err := c.do(req, &out); err != nil {
		return models.WatchlistEntry{}, err
	}
	return out, nil
}

// statusUpdate is the body of an entry status change.
type statusUpdate struct {
	WatchStatus models.WatchStatus `json:"watchStatus"`
	Rating      *int               `json:"rating,omitempty"`
}

// UpdateEntryStatus changes an entry's watch status and optionally its rating.
func (c *Client) UpdateEntryStatus(ctx context.Context, entryID int64, status models.WatchStatus, rating *int) (models.WatchlistEntry, error) {
	path := "/watchlist/" + strconv.FormatInt(entryID, 10)
	req, err := c.newRequest(ctx, http.MethodPatch, path, statusUpdate{WatchStatus: status, Rating: rating})
	if err != nil {
		return models.WatchlistEntry{}, err
	}

	var out models.WatchlistEntry
	if err := c.do(req, &out); err != nil {
		return models.WatchlistEntry{}, err
	}
	return out, nil
}

// RemoveEntry deletes an entry from the watchlist.
func (c *Client) RemoveEntry(ctx context.Context, entryID int64) error {
	path := "/watchlist/" + strconv.FormatInt(entryID, 10)
	req, err := c.newRequest(ctx, http.MethodDelete, path, nil)
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

// WatchlistStats fetches the server-computed aggregate statistics.
func (c *Client) WatchlistStats(ctx context.Context) (models.WatchlistStats, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/watchlist/stats", nil)
	if err != nil {
		return models.WatchlistStats{}, err
	}

	var out models.WatchlistStats
	if err := c.do(req, &out); err != nil {
		return models.WatchlistStats{}, err
	}
	return out, nil
}

// EpisodeStats fetches the server-computed episode summary.
func (c *Client) EpisodeStats(ctx context.Context) (models.EpisodeStats, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/episodes/stats", nil)
	if err != nil {
		return models.EpisodeStats{}, err
	}

	var out models.EpisodeStats
	if err := c.do(req, &out); err != nil {
		return models.EpisodeStats{}, err
	}
	return out, nil
}

// ListEpisodes fetches the episodes of one season of a tracked show.
func (c *Client) ListEpisodes(ctx context.Context, showID int64, season int) ([]models.Episode, error) {
	path := fmt.Sprintf("/shows/%d/seasons/%d/episodes", showID, season)
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var out models.Season
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return out.Episodes, nil
}

// RefreshEpisodes asks the server to pull episode data for a season from the
// catalog provider. Used when a season has no cached episodes yet.
func (c *Client) RefreshEpisodes(ctx context.Context, showID int64, season int) error {
	path := fmt.Sprintf("/shows/%d/seasons/%d/refresh", showID, season)
	req, err := c.newRequest(ctx, http.MethodPost, path, nil)
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

// episodeStatusUpdate is the body of an episode status change.
type episodeStatusUpdate struct {
	WatchStatus models.EpisodeStatus `json:"watchStatus"`
}

// UpdateEpisodeStatus changes a single episode's watch status.
func (c *Client) UpdateEpisodeStatus(ctx context.Context, episodeID int64, status models.EpisodeStatus) (models.Episode, error) {
	path := "/episodes/" + strconv.FormatInt(episodeID, 10)
	req, err := c.newRequest(ctx, http.MethodPatch, path, episodeStatusUpdate{WatchStatus: status})
	if err != nil {
		return models.Episode{}, err
	}

	var out models.Episode
	if err := c.do(req, &out); err != nil {
		return models.Episode{}, err
	}
	return out, nil
}

// DownloadReport streams a generated watch report for the given period into w.
// The body is an opaque binary document; it is passed through untouched.
func (c *Client) DownloadReport(ctx context.Context, period models.ReportPeriod, w io.Writer) error {
	if !period.Valid() {
		return fmt.Errorf("invalid report period %q", period)
	}

	req, err := c.newRequest(ctx, http.MethodGet, "/reports?period="+string(period), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "*/*")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("watchlist api report: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return c.decodeError(resp)
	}

	if _, err := io.Copy(w, resp.Body); err != nil {
		return fmt.Errorf("download report: %w", err)
	}
	return nil
}

package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"showlog/models"
	"showlog/services/backend"

	"github.com/avast/retry-go/v4"
	"github.com/sourcegraph/conc/pool"
)

// defaultRetryDelay is the pause before the single re-fetch after an
// on-demand season refresh has been triggered.
const defaultRetryDelay = 1500 * time.Millisecond

var errSeasonNotCached = errors.New("season episodes not cached yet")

// EpisodeTracker tracks the episodes of one show, one selected season at a
// time. Status changes are applied locally first; the server call follows,
// and local state may disagree with the server until the next fetch when a
// call fails. That window is accepted, matching the non-atomic bulk mark.
type EpisodeTracker struct {
	mu     sync.Mutex
	api    Client
	logger *slog.Logger

	showID   int64
	season   int
	episodes []models.Episode

	retryDelay time.Duration

	// onChange lets the owning service refresh overall stats after any
	// episode status change.
	onChange func()
}

// NewEpisodeTracker creates a tracker for one show's episodes.
func NewEpisodeTracker(api Client, showID int64, logger *slog.Logger, onChange func()) *EpisodeTracker {
	if logger == nil {
		logger = slog.Default()
	}
	return &EpisodeTracker{
		api:        api,
		logger:     logger,
		showID:     showID,
		retryDelay: defaultRetryDelay,
		onChange:   onChange,
	}
}

// SelectSeason fetches the episodes of a season. When the server has no
// cached data for the season yet, one on-demand catalog refresh is triggered
// and the fetch retried exactly once after a fixed short delay.
func (t *EpisodeTracker) SelectSeason(ctx context.Context, season int) error {
	var episodes []models.Episode
	refreshed := false

	err := retry.Do(
		func() error {
			got, err := t.api.ListEpisodes(ctx, t.showID, season)
			if err != nil && !errors.Is(err, backend.ErrNotFound) {
				return retry.Unrecoverable(err)
			}
			if err == nil && len(got) > 0 {
				episodes = got
				return nil
			}

			if refreshed {
				return retry.Unrecoverable(fmt.Errorf("show %d season %d: %w", t.showID, season, errSeasonNotCached))
			}

			refreshed = true
			if rerr := t.api.RefreshEpisodes(ctx, t.showID, season); rerr != nil {
				return retry.Unrecoverable(fmt.Errorf("refresh episodes: %w", rerr))
			}
			return errSeasonNotCached
		},
		retry.Context(ctx),
		retry.Attempts(2),
		retry.Delay(t.retryDelay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return err
	}

	t.mu.Lock()
	t.season = season
	t.episodes = episodes
	t.mu.Unlock()
	return nil
}

// Season returns the currently selected season number.
func (t *EpisodeTracker) Season() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.season
}

// Episodes returns a copy of the current episode list.
func (t *EpisodeTracker) Episodes() []models.Episode {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]models.Episode(nil), t.episodes...)
}

// Progress returns the season completion percentage: watched / total * 100,
// or 0 when no episodes are loaded.
func (t *EpisodeTracker) Progress() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return progress(t.episodes)
}

func progress(episodes []models.Episode) float64 {
	if len(episodes) == 0 {
		return 0
	}
	watched := 0
	for _, e := range episodes {
		if e.WatchStatus == models.EpisodeWatched {
			watched++
		}
	}
	return float64(watched) / float64(len(episodes)) * 100
}

// SetStatus changes one episode's status. The local list reflects the change
// immediately; a failed server call is logged and the optimistic value kept
// until the next season fetch.
func (t *EpisodeTracker) SetStatus(ctx context.Context, episodeID int64, status models.EpisodeStatus) error {
	if !status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	t.mu.Lock()
	if !t.applyLocked(episodeID, status) {
		t.mu.Unlock()
		t.logger.Debug("episode status update for unknown episode, ignoring", "id", episodeID)
		return nil
	}
	t.mu.Unlock()

	updated, err := t.api.UpdateEpisodeStatus(ctx, episodeID, status)
	if err != nil {
		t.logger.Warn("episode status update failed", "id", episodeID, "error", err)
	} else {
		t.mu.Lock()
		for i := range t.episodes {
			if t.episodes[i].ID == updated.ID {
				t.episodes[i] = updated
				break
			}
		}
		t.mu.Unlock()
	}

	if t.onChange != nil {
		t.onChange()
	}
	return err
}

// MarkSeason sets every loaded episode to watched (or unwatched), issuing one
// server call per episode concurrently and waiting for all of them. There is
// no atomicity across the calls; individual failures are joined into the
// returned error and local state keeps the optimistic values.
func (t *EpisodeTracker) MarkSeason(ctx context.Context, watched bool) error {
	status := models.EpisodeUnwatched
	if watched {
		status = models.EpisodeWatched
	}

	t.mu.Lock()
	ids := make([]int64, 0, len(t.episodes))
	for i := range t.episodes {
		ids = append(ids, t.episodes[i].ID)
		t.setStatusLocked(i, status)
	}
	t.mu.Unlock()

	p := pool.New().WithErrors()
	for _, id := range ids {
		p.Go(func() error {
			if _, err := t.api.UpdateEpisodeStatus(ctx, id, status); err != nil {
				return fmt.Errorf("episode %d: %w", id, err)
			}
			return nil
		})
	}
	err := p.Wait()
	if err != nil {
		t.logger.Warn("season bulk mark finished with failures", "show", t.showID, "error", err)
	}

	if t.onChange != nil {
		t.onChange()
	}
	return err
}

// applyLocked sets the status of the episode with the given id.
func (t *EpisodeTracker) applyLocked(episodeID int64, status models.EpisodeStatus) bool {
	for i := range t.episodes {
		if t.episodes[i].ID == episodeID {
			t.setStatusLocked(i, status)
			return true
		}
	}
	return false
}

// setStatusLocked applies a status to episodes[i], keeping the invariant
// that WatchedAt is set iff the episode is watched.
func (t *EpisodeTracker) setStatusLocked(i int, status models.EpisodeStatus) {
	t.episodes[i].WatchStatus = status
	if status == models.EpisodeWatched {
		now := time.Now().UTC()
		t.episodes[i].WatchedAt = &now
	} else {
		t.episodes[i].WatchedAt = nil
	}
}

package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"showlog/models"
	"showlog/services/backend"
)

var (
	// ErrInvalidStatus is returned when a status outside the allowed set is
	// requested.
	ErrInvalidStatus = errors.New("invalid watch status")
)

// Client is the slice of the remote watchlist API the tracker consumes.
type Client interface {
	ListWatchlist(ctx context.Context, status *models.WatchStatus, page int) (models.WatchlistPage, error)
	AddEntry(ctx context.Context, add models.WatchlistAdd) (models.WatchlistEntry, error)
	UpdateEntryStatus(ctx context.Context, entryID int64, status models.WatchStatus, rating *int) (models.WatchlistEntry, error)
	RemoveEntry(ctx context.Context, entryID int64) error
	WatchlistStats(ctx context.Context) (models.WatchlistStats, error)
	EpisodeStats(ctx context.Context) (models.EpisodeStats, error)
	ListEpisodes(ctx context.Context, showID int64, season int) ([]models.Episode, error)
	RefreshEpisodes(ctx context.Context, showID int64, season int) error
	UpdateEpisodeStatus(ctx context.Context, episodeID int64, status models.EpisodeStatus) (models.Episode, error)
}

var _ Client = (*backend.Client)(nil)

// Service is the watchlist aggregator. It holds the transient working copy
// of the user's watchlist for the lifetime of the process, partitions it by
// media type, keeps the aggregate statistics current, and applies status
// changes optimistically with full refetch as the reconciliation path.
//
// The remote API stays the system of record throughout; nothing here is
// persisted.
type Service struct {
	mu     sync.RWMutex
	api    Client
	logger *slog.Logger

	filter  *models.WatchStatus
	entries []models.WatchlistEntry
	movies  []models.WatchlistEntry
	shows   []models.WatchlistEntry

	stats        *models.WatchlistStats
	episodeStats *models.EpisodeStats

	// At most one show is expanded in the UI at a time.
	expandedShowID int64

	trackersMu sync.Mutex
	trackers   map[int64]*EpisodeTracker
}

// NewService creates a tracker on top of the remote API client.
func NewService(api Client, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		api:      api,
		logger:   logger,
		trackers: make(map[int64]*EpisodeTracker),
	}
}

// Overview is the aggregated view model served to the rendering layer.
type Overview struct {
	Movies         []models.WatchlistEntry `json:"movies"`
	Shows          []models.WatchlistEntry `json:"tvShows"`
	Stats          models.WatchlistStats   `json:"stats"`
	ExpandedShowID int64                   `json:"expandedShowId,omitempty"`
}

// Refresh fetches the watchlist (optionally filtered by status) and
// repartitions it. On failure both partitions are reset to empty and the
// error is returned; no retry is attempted. A successful fetch also kicks a
// stats refresh so the aggregates track the new list.
func (s *Service) Refresh(ctx context.Context, filter *models.WatchStatus) error {
	if filter != nil && !filter.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, *filter)
	}

	page, err := s.api.ListWatchlist(ctx, filter, 1)
	if err != nil {
		s.mu.Lock()
		s.filter = filter
		s.entries = nil
		s.movies = nil
		s.shows = nil
		// Drop server stats too, or the empty view would be served with
		// aggregates from the previous list.
		s.stats = nil
		s.mu.Unlock()
		return fmt.Errorf("fetch watchlist: %w", err)
	}

	movies := make([]models.WatchlistEntry, 0, len(page.Entries))
	shows := make([]models.WatchlistEntry, 0, len(page.Entries))
	for _, entry := range page.Entries {
		switch entry.Type {
		case models.MediaTypeMovie:
			movies = append(movies, entry)
		case models.MediaTypeTV:
			shows = append(shows, entry)
		default:
			s.logger.Warn("skipping watchlist entry with unknown type", "id", entry.ID, "type", entry.Type)
		}
	}

	s.mu.Lock()
	s.filter = filter
	s.entries = page.Entries
	s.movies = movies
	s.shows = shows
	s.mu.Unlock()

	s.RefreshStats(ctx)
	return nil
}

// UpdateStatus changes an entry's watch status. The local copy is updated
// before the server round-trip completes; on server failure the whole
// watchlist is refetched rather than rolled back locally.
//
// An unknown entry id indicates a stale view and is logged, not surfaced.
func (s *Service) UpdateStatus(ctx context.Context, entryID int64, status models.WatchStatus) error {
	if !status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	s.mu.Lock()
	entry, ok := s.findLocked(entryID)
	if !ok {
		s.mu.Unlock()
		s.logger.Debug("status update for unknown entry, ignoring", "id", entryID)
		return nil
	}

	entry.WatchStatus = status
	s.applyLocked(entry)
	if entry.Type == models.MediaTypeTV && status == models.StatusWatching {
		s.expandedShowID = entry.ID
	}
	s.mu.Unlock()

	updated, err := s.api.UpdateEntryStatus(ctx, entryID, status, nil)
	if err != nil {
		s.logger.Warn("status update rejected, refetching watchlist", "id", entryID, "error", err)
		s.mu.RLock()
		filter := s.filter
		s.mu.RUnlock()
		if rerr := s.Refresh(ctx, filter); rerr != nil {
			s.logger.Error("reconciliation refetch failed", "error", rerr)
		}
		return fmt.Errorf("update status: %w", err)
	}

	// The server response for this entry wins over the optimistic copy.
	s.mu.Lock()
	s.applyLocked(updated)
	s.mu.Unlock()

	s.RefreshStats(ctx)
	return nil
}

// Add tracks a new title. Identity always originates on the server, so the
// local list is only extended once the add call succeeds.
func (s *Service) Add(ctx context.Context, add models.WatchlistAdd) (models.WatchlistEntry, error) {
	if !add.Type.Valid() {
		return models.WatchlistEntry{}, fmt.Errorf("invalid media type %q", add.Type)
	}

	entry, err := s.api.AddEntry(ctx, add)
	if err != nil {
		return models.WatchlistEntry{}, err
	}

	s.mu.Lock()
	s.entries = append(s.entries, entry)
	switch entry.Type {
	case models.MediaTypeMovie:
		s.movies = append(s.movies, entry)
	case models.MediaTypeTV:
		s.shows = append(s.shows, entry)
	}
	s.mu.Unlock()

	s.RefreshStats(ctx)
	return entry, nil
}

// Remove untracks an entry. Server-first for the same reason as Add.
func (s *Service) Remove(ctx context.Context, entryID int64) error {
	if err := s.api.RemoveEntry(ctx, entryID); err != nil {
		return err
	}

	s.mu.Lock()
	s.entries = removeByID(s.entries, entryID)
	s.movies = removeByID(s.movies, entryID)
	s.shows = removeByID(s.shows, entryID)
	if s.expandedShowID == entryID {
		s.expandedShowID = 0
	}
	s.mu.Unlock()

	s.RefreshStats(ctx)
	return nil
}

// Overview returns a copy of the current aggregated view.
func (s *Service) Overview() Overview {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := Overview{
		Movies:         append([]models.WatchlistEntry(nil), s.movies...),
		Shows:          append([]models.WatchlistEntry(nil), s.shows...),
		ExpandedShowID: s.expandedShowID,
	}
	if s.stats != nil {
		out.Stats = *s.stats
	} else {
		out.Stats = computeLocalStats(s.entries, s.episodeStats)
	}
	return out
}

// Entries returns a copy of the combined list in server order.
func (s *Service) Entries() []models.WatchlistEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.WatchlistEntry(nil), s.entries...)
}

// Stats returns the current aggregate statistics, falling back to a local
// recomputation when no server stats are held.
func (s *Service) Stats() models.WatchlistStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.stats != nil {
		return *s.stats
	}
	return computeLocalStats(s.entries, s.episodeStats)
}

// ExpandedShowID returns the id of the single expanded show, or 0.
func (s *Service) ExpandedShowID() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.expandedShowID
}

// Episodes returns the episode tracker for a show, creating it on first use.
// Status changes made through it refresh the overall stats.
func (s *Service) Episodes(showID int64) *EpisodeTracker {
	s.trackersMu.Lock()
	defer s.trackersMu.Unlock()

	if t, ok := s.trackers[showID]; ok {
		return t
	}

	t := NewEpisodeTracker(s.api, showID, s.logger, func() {
		s.RefreshStats(context.Background())
	})
	s.trackers[showID] = t
	return t
}

// findLocked returns a copy of the entry with the given id.
func (s *Service) findLocked(entryID int64) (models.WatchlistEntry, bool) {
	for i := range s.entries {
		if s.entries[i].ID == entryID {
			return s.entries[i], true
		}
	}
	return models.WatchlistEntry{}, false
}

// applyLocked writes an entry back into the combined and partitioned lists.
func (s *Service) applyLocked(entry models.WatchlistEntry) {
	replaceByID(s.entries, entry)
	replaceByID(s.movies, entry)
	replaceByID(s.shows, entry)
}

func replaceByID(list []models.WatchlistEntry, entry models.WatchlistEntry) {
	for i := range list {
		if list[i].ID == entry.ID {
			list[i] = entry
			return
		}
	}
}

func removeByID(list []models.WatchlistEntry, entryID int64) []models.WatchlistEntry {
	for i := range list {
		if list[i].ID == entryID {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}

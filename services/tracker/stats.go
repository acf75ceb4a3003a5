package tracker

import (
	"context"
	"fmt"

	"showlog/models"

	"github.com/sourcegraph/conc"
)

// RefreshStats recomputes the aggregate statistics. Primary path: the
// watchlist-stats and episode-stats endpoints are fetched concurrently and
// used verbatim when both succeed. If either fails the stats are derived
// locally from the in-memory entry list instead; the failure is logged, not
// surfaced, since the fallback is the recovery.
func (s *Service) RefreshStats(ctx context.Context) {
	var (
		stats    models.WatchlistStats
		epStats  models.EpisodeStats
		statsErr error
		epErr    error
	)

	var wg conc.WaitGroup
	wg.Go(func() { stats, statsErr = s.api.WatchlistStats(ctx) })
	wg.Go(func() { epStats, epErr = s.api.EpisodeStats(ctx) })
	wg.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()

	if statsErr != nil || epErr != nil {
		if statsErr != nil {
			s.logger.Warn("watchlist stats fetch failed, computing locally", "error", statsErr)
		}
		if epErr != nil {
			s.logger.Warn("episode stats fetch failed, computing locally", "error", epErr)
		}
		local := computeLocalStats(s.entries, s.episodeStats)
		s.stats = &local
		return
	}

	s.stats = &stats
	s.episodeStats = &epStats
}

// computeLocalStats derives the stats shape from the entry list.
//
// Movie watch time counts completed movies only; planned and watching movies
// do not contribute. For TV the last successful episode summary wins when one
// is held in memory, otherwise the per-entry totals stored on the entries are
// summed directly. This is the documented choice for the source-of-truth
// ambiguity: a fetched episode summary always beats per-entry fields.
func computeLocalStats(entries []models.WatchlistEntry, epStats *models.EpisodeStats) models.WatchlistStats {
	var out models.WatchlistStats
	out.TotalItems = len(entries)

	tvWatchTime := 0

	for _, e := range entries {
		switch e.WatchStatus {
		case models.StatusPlanned:
			out.ByStatus.Planned++
		case models.StatusWatching:
			out.ByStatus.Watching++
		case models.StatusCompleted:
			out.ByStatus.Completed++
		}

		switch e.Type {
		case models.MediaTypeMovie:
			out.Movies.Count++
			if e.WatchStatus == models.StatusCompleted {
				out.Movies.Completed++
				out.Movies.WatchTime += e.WatchTimeMinutes
			}
		case models.MediaTypeTV:
			out.TVShows.Count++
			if e.WatchStatus == models.StatusCompleted {
				out.TVShows.Completed++
			}
			tvWatchTime += e.TotalWatchTime
		}
	}

	if epStats != nil {
		tvWatchTime = epStats.TotalWatchTime
	}
	out.TVShows.WatchTime = tvWatchTime

	out.TotalWatchTime = out.Movies.WatchTime + out.TVShows.WatchTime
	out.TotalWatchTimeFormatted = FormatWatchTime(out.TotalWatchTime)
	return out
}

// FormatWatchTime renders a minute total as "Hh Mm".
func FormatWatchTime(minutes int) string {
	return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
}

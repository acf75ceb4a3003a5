package models

// TypeStats is the per-media-type slice of the watchlist statistics.
type TypeStats struct {
	Count     int `json:"count"`
	Completed int `json:"completed"`
	WatchTime int `json:"watchTime"`
}

// StatusCounts holds the number of entries in each watch status.
type StatusCounts struct {
	Planned   int `json:"planned"`
	Watching  int `json:"watching"`
	Completed int `json:"completed"`
}

// WatchlistStats is the aggregate view over a watchlist. It is derived,
// never persisted: either fetched from the remote stats endpoint or
// recomputed locally from the in-memory entry list.
type WatchlistStats struct {
	TotalItems              int          `json:"totalItems"`
	TotalWatchTime          int          `json:"totalWatchTime"`
	TotalWatchTimeFormatted string       `json:"totalWatchTimeFormatted"`
	Movies                  TypeStats    `json:"movies"`
	TVShows                 TypeStats    `json:"tvShows"`
	ByStatus                StatusCounts `json:"byStatus"`
}

// EpisodeStats is the episode-level summary returned by the remote API.
type EpisodeStats struct {
	TotalEpisodesWatched int `json:"totalEpisodesWatched"`
	WatchedCount         int `json:"watchedCount"`
	SkippedCount         int `json:"skippedCount"`
	TotalWatchTime       int `json:"totalWatchTime"`
}

package models

import "strconv"

// MediaType distinguishes the two kinds of tracked titles.
type MediaType string

const (
	MediaTypeMovie MediaType = "movie"
	MediaTypeTV    MediaType = "tv"
)

// Valid reports whether the media type is one of the two known values.
func (t MediaType) Valid() bool {
	return t == MediaTypeMovie || t == MediaTypeTV
}

// WatchStatus is the tracking state of a watchlist entry.
type WatchStatus string

const (
	StatusPlanned   WatchStatus = "planned"
	StatusWatching  WatchStatus = "watching"
	StatusCompleted WatchStatus = "completed"
)

// Valid reports whether the status is one of the three allowed values.
func (s WatchStatus) Valid() bool {
	switch s {
	case StatusPlanned, StatusWatching, StatusCompleted:
		return true
	}
	return false
}

// WatchlistEntry represents a single tracked title. The remote API is the
// system of record; the client only ever holds a working copy.
type WatchlistEntry struct {
	ID          int64       `json:"id"`
	TMDBID      int64       `json:"tmdbId"`
	Type        MediaType   `json:"type"`
	Title       string      `json:"title"`
	PosterPath  string      `json:"posterPath,omitempty"`
	ReleaseDate string      `json:"releaseDate,omitempty"`
	WatchStatus WatchStatus `json:"watchStatus"`
	Rating      *int        `json:"rating,omitempty"`

	// Movie watch time in minutes. Zero for TV entries.
	WatchTimeMinutes int `json:"watchTimeMinutes,omitempty"`

	// TV-only aggregates maintained by the server.
	SeasonCount          int `json:"seasonCount,omitempty"`
	EpisodeCount         int `json:"episodeCount,omitempty"`
	TotalEpisodesWatched int `json:"totalEpisodesWatched,omitempty"`
	TotalWatchTime       int `json:"totalWatchTime,omitempty"`
}

// Key returns the natural key correlating an entry with catalog records.
func (e WatchlistEntry) Key() string {
	return string(e.Type) + ":" + strconv.FormatInt(e.TMDBID, 10)
}

// WatchlistAdd captures the fields sent when adding a title to the watchlist.
type WatchlistAdd struct {
	TMDBID      int64     `json:"tmdbId"`
	Type        MediaType `json:"type"`
	Title       string    `json:"title"`
	PosterPath  string    `json:"posterPath,omitempty"`
	ReleaseDate string    `json:"releaseDate,omitempty"`
}

// WatchlistPage is one page of the remote watchlist listing.
type WatchlistPage struct {
	Entries    []WatchlistEntry `json:"items"`
	Stats      *WatchlistStats  `json:"stats,omitempty"`
	Pagination Pagination       `json:"pagination"`
}

// Pagination mirrors the pagination block returned by the remote API.
type Pagination struct {
	Page       int `json:"page"`
	TotalPages int `json:"totalPages"`
	TotalItems int `json:"totalItems,omitempty"`
}

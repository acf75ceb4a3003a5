package models

import "time"

// EpisodeStatus is the tracking state of a single episode.
type EpisodeStatus string

const (
	EpisodeUnwatched EpisodeStatus = "unwatched"
	EpisodeWatched   EpisodeStatus = "watched"
	EpisodeSkipped   EpisodeStatus = "skipped"
)

// Valid reports whether the status is one of the three allowed values.
func (s EpisodeStatus) Valid() bool {
	switch s {
	case EpisodeUnwatched, EpisodeWatched, EpisodeSkipped:
		return true
	}
	return false
}

// Episode is one episode of a tracked TV show. WatchedAt is set if and only
// if the status is watched.
type Episode struct {
	ID            int64         `json:"id"`
	SeasonNumber  int           `json:"seasonNumber"`
	EpisodeNumber int           `json:"episodeNumber"`
	Title         string        `json:"title,omitempty"`
	AirDate       string        `json:"airDate,omitempty"`
	Runtime       int           `json:"runtime,omitempty"`
	WatchStatus   EpisodeStatus `json:"watchStatus"`
	Rating        *int          `json:"rating,omitempty"`
	WatchedAt     *time.Time    `json:"watchedAt,omitempty"`
}

// Season groups the episodes of one season as returned by the remote API.
type Season struct {
	SeasonNumber int       `json:"seasonNumber"`
	Episodes     []Episode `json:"episodes"`
}

package models

// Title is a catalog record normalized at the boundary: movie and TV
// responses carry differently named fields (title/name, release_date/
// first_air_date, type/media_type) which are folded into one shape here so
// nothing downstream branches on field presence.
type Title struct {
	TMDBID       int64     `json:"tmdbId"`
	MediaType    MediaType `json:"mediaType"`
	Name         string    `json:"name"`
	Overview     string    `json:"overview,omitempty"`
	PosterPath   string    `json:"posterPath,omitempty"`
	BackdropPath string    `json:"backdropPath,omitempty"`
	ReleaseDate  string    `json:"releaseDate,omitempty"`
	Year         int       `json:"year,omitempty"`
	VoteAverage  float64   `json:"voteAverage,omitempty"`
	VoteCount    int       `json:"voteCount,omitempty"`
	Popularity   float64   `json:"popularity,omitempty"`
}

// SearchPage is one page of catalog results.
type SearchPage struct {
	Page       int     `json:"page"`
	TotalPages int     `json:"totalPages"`
	Results    []Title `json:"results"`
}

// TitleDetails is the full catalog detail record for a single title.
type TitleDetails struct {
	Title

	Genres   []string `json:"genres,omitempty"`
	Runtime  int      `json:"runtime,omitempty"`
	Tagline  string   `json:"tagline,omitempty"`
	Homepage string   `json:"homepage,omitempty"`

	// TV only.
	SeasonCount  int `json:"seasonCount,omitempty"`
	EpisodeCount int `json:"episodeCount,omitempty"`

	Cast    []CastMember `json:"cast,omitempty"`
	Similar []Title      `json:"similar,omitempty"`
	Videos  []Video      `json:"videos,omitempty"`
}

// CastMember is a single cast credit.
type CastMember struct {
	Name        string `json:"name"`
	Character   string `json:"character,omitempty"`
	ProfilePath string `json:"profilePath,omitempty"`
}

// Video is a trailer or clip attached to a title.
type Video struct {
	Name     string `json:"name"`
	Site     string `json:"site"`
	Key      string `json:"key"`
	Type     string `json:"type"`
	Official bool   `json:"official"`
}

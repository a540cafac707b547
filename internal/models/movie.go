package models

import "time"

// Movie is a TMDB movie summary as returned by list and search endpoints.
type Movie struct {
	ID               int     `json:"id"`
	Title            string  `json:"title"`
	OriginalTitle    string  `json:"original_title,omitempty"`
	Overview         string  `json:"overview"`
	PosterPath       string  `json:"poster_path,omitempty"`
	BackdropPath     string  `json:"backdrop_path,omitempty"`
	ReleaseDate      string  `json:"release_date,omitempty"`
	VoteAverage      float64 `json:"vote_average"`
	VoteCount        int     `json:"vote_count"`
	GenreIDs         []int   `json:"genre_ids,omitempty"`
	Adult            bool    `json:"adult"`
	OriginalLanguage string  `json:"original_language,omitempty"`
	Popularity       float64 `json:"popularity"`
	Video            bool    `json:"video"`
}

// Year returns the release year, or "" when the release date is missing or malformed.
func (m Movie) Year() string {
	if t, err := time.Parse("2006-01-02", m.ReleaseDate); err == nil {
		return t.Format("2006")
	}
	return ""
}

// Genre is a TMDB genre.
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// CastMember is one entry of a movie's cast.
type CastMember struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Character   string `json:"character"`
	CreditID    string `json:"credit_id"`
	Order       int    `json:"order"`
	ProfilePath string `json:"profile_path,omitempty"`
}

// CrewMember is one entry of a movie's crew.
type CrewMember struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Job         string `json:"job"`
	Department  string `json:"department"`
	CreditID    string `json:"credit_id"`
	ProfilePath string `json:"profile_path,omitempty"`
}

// Credits holds cast and crew for a movie.
type Credits struct {
	ID   int          `json:"id,omitempty"`
	Cast []CastMember `json:"cast"`
	Crew []CrewMember `json:"crew"`
}

// Directors returns the names of crew members with the "Director" job.
func (c Credits) Directors() []string {
	var names []string
	for _, member := range c.Crew {
		if member.Job == "Director" {
			names = append(names, member.Name)
		}
	}
	return names
}

// Video is a trailer, teaser, clip, etc. hosted on an external site.
type Video struct {
	ID          string `json:"id"`
	Key         string `json:"key"`
	Name        string `json:"name"`
	Site        string `json:"site"`
	Size        int    `json:"size"`
	Type        string `json:"type"`
	Official    bool   `json:"official"`
	PublishedAt string `json:"published_at,omitempty"`
}

// VideoList wraps the "results" envelope TMDB uses for videos.
type VideoList struct {
	ID      int     `json:"id,omitempty"`
	Results []Video `json:"results"`
}

// MovieDetails is the full TMDB movie record.
//
// Credits and Videos are only populated when requested with append_to_response.
type MovieDetails struct {
	Movie
	Runtime  int        `json:"runtime"`
	Genres   []Genre    `json:"genres"`
	Budget   int64      `json:"budget"`
	Revenue  int64      `json:"revenue"`
	Homepage string     `json:"homepage,omitempty"`
	IMDbID   string     `json:"imdb_id,omitempty"`
	Status   string     `json:"status"`
	Tagline  string     `json:"tagline,omitempty"`
	Credits  *Credits   `json:"credits,omitempty"`
	Videos   *VideoList `json:"videos,omitempty"`
}

// GenreNames returns the genre names in TMDB order.
func (d MovieDetails) GenreNames() []string {
	names := make([]string, 0, len(d.Genres))
	for _, g := range d.Genres {
		names = append(names, g.Name)
	}
	return names
}

// MoviePage is one page of a paginated TMDB movie listing.
type MoviePage struct {
	Page         int     `json:"page"`
	Results      []Movie `json:"results"`
	TotalPages   int     `json:"total_pages"`
	TotalResults int     `json:"total_results"`
}

// HasNext reports whether another page can be requested.
func (p MoviePage) HasNext() bool {
	return p.Page < p.TotalPages
}

package models

import (
	"slices"
	"strings"
	"time"
)

// MovieList is a named, user-curated list of movies, separate from the saved-movie categories.
type MovieList struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	IsPublic    bool        `json:"isPublic"`
	Movies      []ListMovie `json:"movies"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// ListMovie is one entry of a [MovieList]. Entries keep the order they were added in.
type ListMovie struct {
	MovieID    int       `json:"movieId"`
	Title      string    `json:"title"`
	PosterPath string    `json:"posterPath,omitempty"`
	AddedAt    time.Time `json:"addedAt"`
}

// ListUpdate changes the fields of a [MovieList] that are non-nil.
type ListUpdate struct {
	Name        *string
	Description *string
	IsPublic    *bool
}

func (l MovieList) MoviesCount() int { return len(l.Movies) }

// Contains reports whether movieID is on the list.
func (l MovieList) Contains(movieID int) bool {
	return slices.ContainsFunc(l.Movies, func(m ListMovie) bool { return m.MovieID == movieID })
}

// Matches reports whether ref names this list, by id or by case-insensitive name.
func (l MovieList) Matches(ref string) bool {
	ref = strings.TrimSpace(ref)
	return ref != "" && (l.ID == ref || strings.EqualFold(l.Name, ref))
}

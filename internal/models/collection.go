package models

import (
	"fmt"
	"strings"
	"time"
)

// Category is the bucket a saved movie belongs to.
type Category string

const (
	Favorites Category = "favorites"
	Watchlist Category = "watchlist"
	Watched   Category = "watched"
)

// Categories lists every valid [Category] in display order.
var Categories = []Category{Favorites, Watchlist, Watched}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case Favorites, Watchlist, Watched:
		return true
	}
	return false
}

func (c Category) String() string { return string(c) }

// ParseCategory converts user input to a [Category]. An empty string yields [Favorites].
func ParseCategory(s string) (Category, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return Favorites, nil
	}
	if c := Category(s); c.Valid() {
		return c, nil
	}
	return "", fmt.Errorf("unknown category %q (want favorites, watchlist or watched)", s)
}

// SavedMovie is a user's categorized bookmark of a movie.
type SavedMovie struct {
	Movie    Movie     `json:"movie"`
	SavedAt  time.Time `json:"savedAt"`
	Category Category  `json:"category"`
}

// CompletionThreshold is the progress percentage at which a movie counts as watched.
const CompletionThreshold = 90

// WatchProgress is the last reported playback position of one movie.
type WatchProgress struct {
	MovieID   int       `json:"movieId"`
	Progress  float64   `json:"progress"` // 0-100 percentage
	Duration  float64   `json:"duration"` // total duration in seconds
	WatchedAt time.Time `json:"watchedAt"`
	Completed bool      `json:"completed"`
}

// Position returns the playback offset in seconds implied by Progress and Duration.
func (w WatchProgress) Position() float64 {
	return w.Progress / 100 * w.Duration
}

// UserRating is a 1-5 star rating with an optional review.
type UserRating struct {
	MovieID int       `json:"movieId"`
	Rating  int       `json:"rating"`
	Review  string    `json:"review,omitempty"`
	RatedAt time.Time `json:"ratedAt"`
}

// Rating bounds.
const (
	MinRating = 1
	MaxRating = 5
)

// ValidRating reports whether r is within [MinRating, MaxRating].
func ValidRating(r int) bool {
	return r >= MinRating && r <= MaxRating
}

// Stats are counters derived from a user's collection, progress and ratings.
type Stats struct {
	TotalSaved     int     `json:"totalSaved"`
	Favorites      int     `json:"favorites"`
	Watchlist      int     `json:"watchlist"`
	Watched        int     `json:"watched"`
	TotalWatchTime int     `json:"totalWatchTime"` // minutes
	AverageRating  float64 `json:"averageRating"`
}

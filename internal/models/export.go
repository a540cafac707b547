package models

import "time"

// LibraryExport is the document written by a library export and read back by import.
//
// Details holds TMDB records for saved movies when the export was enriched; keys are movie ids.
type LibraryExport struct {
	Version    int                   `json:"version"`
	User       string                `json:"user"`
	ExportedAt time.Time             `json:"exportedAt"`
	Saved      []SavedMovie          `json:"saved"`
	Progress   []WatchProgress       `json:"progress"`
	Ratings    []UserRating          `json:"ratings"`
	History    []int                 `json:"history"`
	Lists      []MovieList           `json:"lists,omitempty"`
	Stats      Stats                 `json:"stats"`
	Details    map[int]*MovieDetails `json:"details,omitempty"`
}

// ExportVersion is the current [LibraryExport] document version.
const ExportVersion = 1

// Rating returns the user's rating for movieID, or 0.
func (e *LibraryExport) Rating(movieID int) int {
	for _, r := range e.Ratings {
		if r.MovieID == movieID {
			return r.Rating
		}
	}
	return 0
}

// ProgressFor returns the progress record for movieID, or nil.
func (e *LibraryExport) ProgressFor(movieID int) *WatchProgress {
	for i := range e.Progress {
		if e.Progress[i].MovieID == movieID {
			return &e.Progress[i]
		}
	}
	return nil
}

// Title returns the saved title for movieID, falling back to enriched details.
func (e *LibraryExport) Title(movieID int) string {
	for _, s := range e.Saved {
		if s.Movie.ID == movieID {
			return s.Movie.Title
		}
	}
	if d, ok := e.Details[movieID]; ok && d != nil {
		return d.Title
	}
	return ""
}

package library

import (
	"context"
	"fmt"

	"github.com/desertthunder/moviebox/internal/models"
	"github.com/desertthunder/moviebox/internal/shared"
	"github.com/desertthunder/moviebox/internal/storage"
	"github.com/sahilm/fuzzy"
)

// SaveMovie adds movie to the collection under category, or moves it there if already saved.
// An empty category means [models.Favorites].
func (l *Library) SaveMovie(ctx context.Context, movie models.Movie, category models.Category) error {
	if category == "" {
		category = models.Favorites
	}
	if !category.Valid() {
		return fmt.Errorf("%w: unknown category %q", shared.ErrInvalidInput, category)
	}

	saved, err := loadList[models.SavedMovie](ctx, l, storage.SavedMoviesPrefix)
	if err != nil {
		return err
	}

	record := models.SavedMovie{Movie: movie, SavedAt: l.now(), Category: category}

	replaced := false
	for i := range saved {
		if saved[i].Movie.ID == movie.ID {
			saved[i] = record
			replaced = true
			break
		}
	}
	if !replaced {
		saved = append(saved, record)
	}

	return storeList(ctx, l, storage.SavedMoviesPrefix, saved)
}

// RemoveMovie drops movieID from the collection. Removing an unsaved movie succeeds.
func (l *Library) RemoveMovie(ctx context.Context, movieID int) error {
	saved, err := loadList[models.SavedMovie](ctx, l, storage.SavedMoviesPrefix)
	if err != nil {
		return err
	}

	kept := saved[:0]
	for _, s := range saved {
		if s.Movie.ID != movieID {
			kept = append(kept, s)
		}
	}

	return storeList(ctx, l, storage.SavedMoviesPrefix, kept)
}

// GetSavedMovies returns saved movies in insertion order, filtered to category unless it is empty.
func (l *Library) GetSavedMovies(ctx context.Context, category models.Category) []models.SavedMovie {
	saved := readList[models.SavedMovie](ctx, l, storage.SavedMoviesPrefix)
	if category == "" {
		return saved
	}

	filtered := []models.SavedMovie{}
	for _, s := range saved {
		if s.Category == category {
			filtered = append(filtered, s)
		}
	}
	return filtered
}

// IsMovieSaved reports whether movieID is in any category.
func (l *Library) IsMovieSaved(ctx context.Context, movieID int) bool {
	_, ok := l.GetMovieCategory(ctx, movieID)
	return ok
}

// GetMovieCategory returns the category movieID is saved under.
func (l *Library) GetMovieCategory(ctx context.Context, movieID int) (models.Category, bool) {
	for _, s := range l.GetSavedMovies(ctx, "") {
		if s.Movie.ID == movieID {
			return s.Category, true
		}
	}
	return "", false
}

type savedTitles []models.SavedMovie

func (s savedTitles) String(i int) string { return s[i].Movie.Title }
func (s savedTitles) Len() int            { return len(s) }

// FindSaved fuzzy-matches query against saved titles, best match first.
// An empty query returns every saved movie.
func (l *Library) FindSaved(ctx context.Context, query string) []models.SavedMovie {
	saved := l.GetSavedMovies(ctx, "")
	if query == "" {
		return saved
	}

	matches := fuzzy.FindFrom(query, savedTitles(saved))
	results := make([]models.SavedMovie, 0, len(matches))
	for _, m := range matches {
		results = append(results, saved[m.Index])
	}
	return results
}

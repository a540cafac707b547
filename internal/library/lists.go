package library

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/desertthunder/moviebox/internal/models"
	"github.com/desertthunder/moviebox/internal/shared"
	"github.com/desertthunder/moviebox/internal/storage"
)

// GetUserLists returns the current user's lists, newest first.
func (l *Library) GetUserLists(ctx context.Context) []models.MovieList {
	lists := readList[models.MovieList](ctx, l, storage.MovieListsPrefix)
	slices.SortStableFunc(lists, func(a, b models.MovieList) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return lists
}

// GetList returns the list that ref names by id or name, or nil.
func (l *Library) GetList(ctx context.Context, ref string) *models.MovieList {
	for _, list := range l.GetUserLists(ctx) {
		if list.Matches(ref) {
			return &list
		}
	}
	return nil
}

// CreateList adds an empty list. Names are required and unique per user, ignoring case.
func (l *Library) CreateList(ctx context.Context, name, description string, public bool) (models.MovieList, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.MovieList{}, fmt.Errorf("%w: list name is required", shared.ErrInvalidInput)
	}

	lists, err := loadList[models.MovieList](ctx, l, storage.MovieListsPrefix)
	if err != nil {
		return models.MovieList{}, err
	}
	if slices.ContainsFunc(lists, func(m models.MovieList) bool { return strings.EqualFold(m.Name, name) }) {
		return models.MovieList{}, fmt.Errorf("%w: a list named %q already exists", shared.ErrInvalidInput, name)
	}

	now := l.now()
	list := models.MovieList{
		ID:          shared.GenerateID(),
		Name:        name,
		Description: strings.TrimSpace(description),
		IsPublic:    public,
		Movies:      []models.ListMovie{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := storeList(ctx, l, storage.MovieListsPrefix, append(lists, list)); err != nil {
		return models.MovieList{}, err
	}
	return list, nil
}

// UpdateList applies the non-nil fields of update to the list ref names.
func (l *Library) UpdateList(ctx context.Context, ref string, update models.ListUpdate) error {
	return l.mutateList(ctx, ref, func(lists []models.MovieList, list *models.MovieList) error {
		if update.Name != nil {
			name := strings.TrimSpace(*update.Name)
			if name == "" {
				return fmt.Errorf("%w: list name is required", shared.ErrInvalidInput)
			}
			taken := slices.ContainsFunc(lists, func(m models.MovieList) bool {
				return m.ID != list.ID && strings.EqualFold(m.Name, name)
			})
			if taken {
				return fmt.Errorf("%w: a list named %q already exists", shared.ErrInvalidInput, name)
			}
			list.Name = name
		}
		if update.Description != nil {
			list.Description = strings.TrimSpace(*update.Description)
		}
		if update.IsPublic != nil {
			list.IsPublic = *update.IsPublic
		}
		return nil
	})
}

// DeleteList drops the list ref names. Deleting a missing list succeeds.
func (l *Library) DeleteList(ctx context.Context, ref string) error {
	lists, err := loadList[models.MovieList](ctx, l, storage.MovieListsPrefix)
	if err != nil {
		return err
	}

	kept := slices.DeleteFunc(lists, func(m models.MovieList) bool { return m.Matches(ref) })
	return storeList(ctx, l, storage.MovieListsPrefix, kept)
}

// GetListMovies returns the entries of the list ref names in the order they were added.
func (l *Library) GetListMovies(ctx context.Context, ref string) []models.ListMovie {
	if list := l.GetList(ctx, ref); list != nil {
		return list.Movies
	}
	return []models.ListMovie{}
}

// AddMovieToList appends movie to the list ref names. Adding a movie already on the list
// refreshes its title and poster in place.
func (l *Library) AddMovieToList(ctx context.Context, ref string, movie models.Movie) error {
	return l.mutateList(ctx, ref, func(_ []models.MovieList, list *models.MovieList) error {
		entry := models.ListMovie{
			MovieID:    movie.ID,
			Title:      movie.Title,
			PosterPath: movie.PosterPath,
			AddedAt:    l.now(),
		}

		idx := slices.IndexFunc(list.Movies, func(m models.ListMovie) bool { return m.MovieID == movie.ID })
		if idx >= 0 {
			entry.AddedAt = list.Movies[idx].AddedAt
			list.Movies[idx] = entry
		} else {
			list.Movies = append(list.Movies, entry)
		}
		return nil
	})
}

// RemoveMovieFromList drops movieID from the list ref names. Removing a movie that is not on
// the list succeeds.
func (l *Library) RemoveMovieFromList(ctx context.Context, ref string, movieID int) error {
	return l.mutateList(ctx, ref, func(_ []models.MovieList, list *models.MovieList) error {
		list.Movies = slices.DeleteFunc(list.Movies, func(m models.ListMovie) bool { return m.MovieID == movieID })
		return nil
	})
}

// mutateList loads every list, applies fn to the one ref names and writes them all back.
func (l *Library) mutateList(ctx context.Context, ref string, fn func([]models.MovieList, *models.MovieList) error) error {
	lists, err := loadList[models.MovieList](ctx, l, storage.MovieListsPrefix)
	if err != nil {
		return err
	}

	idx := slices.IndexFunc(lists, func(m models.MovieList) bool { return m.Matches(ref) })
	if idx < 0 {
		return fmt.Errorf("%w: %q", shared.ErrListNotFound, ref)
	}

	if err := fn(lists, &lists[idx]); err != nil {
		return err
	}
	lists[idx].UpdatedAt = l.now()
	return storeList(ctx, l, storage.MovieListsPrefix, lists)
}

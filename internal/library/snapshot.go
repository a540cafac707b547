package library

import (
	"context"
	"slices"
	"strings"

	"github.com/desertthunder/moviebox/internal/models"
	"github.com/desertthunder/moviebox/internal/shared"
	"github.com/desertthunder/moviebox/internal/storage"
)

// Snapshot is a point-in-time copy of every list the library keeps for one user.
type Snapshot struct {
	Saved    []models.SavedMovie    `json:"saved"`
	Progress []models.WatchProgress `json:"progress"`
	Ratings  []models.UserRating    `json:"ratings"`
	History  []int                  `json:"history"`
	Lists    []models.MovieList     `json:"lists,omitempty"`
}

// Snapshot reads every list. Unlike the individual getters it fails on the first read error.
func (l *Library) Snapshot(ctx context.Context) (Snapshot, error) {
	var (
		snap Snapshot
		err  error
	)

	if snap.Saved, err = loadList[models.SavedMovie](ctx, l, storage.SavedMoviesPrefix); err != nil {
		return Snapshot{}, err
	}
	if snap.Progress, err = loadList[models.WatchProgress](ctx, l, storage.WatchProgressPrefix); err != nil {
		return Snapshot{}, err
	}
	if snap.Ratings, err = loadList[models.UserRating](ctx, l, storage.UserRatingsPrefix); err != nil {
		return Snapshot{}, err
	}
	if snap.History, err = loadList[int](ctx, l, storage.WatchHistoryPrefix); err != nil {
		return Snapshot{}, err
	}
	if snap.Lists, err = loadList[models.MovieList](ctx, l, storage.MovieListsPrefix); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// Restore merges snap into the current user's lists. Records in snap replace stored records
// with the same movie id and keep their timestamps; other stored records are left alone.
// Imported history entries go in front of the existing history, followed by imported progress
// records that are complete. Imported progress is clamped and its completion recomputed the same
// way [Library.UpdateWatchProgress] does; records with non-finite values are dropped.
// Imported movie lists replace stored lists with the same id; unnamed lists are dropped.
func (l *Library) Restore(ctx context.Context, snap Snapshot) error {
	current, err := l.Snapshot(ctx)
	if err != nil {
		return err
	}

	saved := mergeByID(current.Saved, snap.Saved, func(s models.SavedMovie) int { return s.Movie.ID })
	for i := range saved {
		if !saved[i].Category.Valid() {
			saved[i].Category = models.Favorites
		}
	}
	if err := storeList(ctx, l, storage.SavedMoviesPrefix, saved); err != nil {
		return err
	}

	incoming := []models.WatchProgress{}
	for _, p := range snap.Progress {
		if checkProgress(p.Progress, p.Duration) != nil {
			l.logger.Warn("skipping invalid progress record", "movie_id", p.MovieID)
			continue
		}
		p.Progress = shared.Clamp(p.Progress, 0, 100)
		p.Completed = p.Progress >= models.CompletionThreshold
		incoming = append(incoming, p)
	}

	progress := mergeByID(current.Progress, incoming, func(p models.WatchProgress) int { return p.MovieID })
	if err := storeList(ctx, l, storage.WatchProgressPrefix, progress); err != nil {
		return err
	}

	ratings := []models.UserRating{}
	for _, r := range mergeByID(current.Ratings, snap.Ratings, func(r models.UserRating) int { return r.MovieID }) {
		if models.ValidRating(r.Rating) {
			ratings = append(ratings, r)
		}
	}
	if err := storeList(ctx, l, storage.UserRatingsPrefix, ratings); err != nil {
		return err
	}

	completed := []models.WatchProgress{}
	for _, p := range incoming {
		if p.Completed {
			completed = append(completed, p)
		}
	}
	slices.SortStableFunc(completed, func(a, b models.WatchProgress) int {
		return b.WatchedAt.Compare(a.WatchedAt)
	})
	finished := make([]int, 0, len(completed))
	for _, p := range completed {
		finished = append(finished, p.MovieID)
	}

	history := []int{}
	for _, id := range slices.Concat(snap.History, finished, current.History) {
		if !slices.Contains(history, id) {
			history = append(history, id)
		}
	}
	if len(history) > HistoryLimit {
		history = history[:HistoryLimit]
	}
	if err := storeList(ctx, l, storage.WatchHistoryPrefix, history); err != nil {
		return err
	}

	if len(snap.Lists) == 0 {
		return nil
	}
	lists := []models.MovieList{}
	for _, list := range mergeByID(current.Lists, snap.Lists, func(m models.MovieList) string { return m.ID }) {
		if strings.TrimSpace(list.Name) == "" {
			continue
		}
		if list.ID == "" {
			list.ID = shared.GenerateID()
		}
		if list.Movies == nil {
			list.Movies = []models.ListMovie{}
		}
		lists = append(lists, list)
	}
	return storeList(ctx, l, storage.MovieListsPrefix, lists)
}

// mergeByID replaces entries of base that share an id with incoming and appends the rest.
func mergeByID[T any, K comparable](base, incoming []T, id func(T) K) []T {
	out := slices.Clone(base)
	for _, item := range incoming {
		idx := slices.IndexFunc(out, func(existing T) bool { return id(existing) == id(item) })
		if idx >= 0 {
			out[idx] = item
		} else {
			out = append(out, item)
		}
	}
	return out
}

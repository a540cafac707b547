package library

import (
	"context"
	"fmt"
	"math"
	"slices"

	"github.com/desertthunder/moviebox/internal/models"
	"github.com/desertthunder/moviebox/internal/shared"
	"github.com/desertthunder/moviebox/internal/storage"
)

// UpdateWatchProgress records the playback position of movieID.
//
// progress is clamped to [0, 100] and the record is completed at [models.CompletionThreshold].
// A later, smaller value overwrites a larger one. Completing a movie also moves it to the
// front of the watch history. Non-finite values and negative durations are rejected with
// [shared.ErrInvalidInput].
func (l *Library) UpdateWatchProgress(ctx context.Context, movieID int, progress, duration float64) error {
	if err := checkProgress(progress, duration); err != nil {
		return err
	}

	all, err := loadList[models.WatchProgress](ctx, l, storage.WatchProgressPrefix)
	if err != nil {
		return err
	}

	progress = shared.Clamp(progress, 0, 100)
	record := models.WatchProgress{
		MovieID:   movieID,
		Progress:  progress,
		Duration:  duration,
		WatchedAt: l.now(),
		Completed: progress >= models.CompletionThreshold,
	}

	idx := slices.IndexFunc(all, func(p models.WatchProgress) bool { return p.MovieID == movieID })
	if idx >= 0 {
		all[idx] = record
	} else {
		all = append(all, record)
	}

	if err := storeList(ctx, l, storage.WatchProgressPrefix, all); err != nil {
		return err
	}

	if record.Completed {
		return l.AddToWatchHistory(ctx, movieID)
	}
	return nil
}

func checkProgress(progress, duration float64) error {
	for _, v := range []float64{progress, duration} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: progress and duration must be finite numbers", shared.ErrInvalidInput)
		}
	}
	if duration < 0 {
		return fmt.Errorf("%w: duration cannot be negative", shared.ErrInvalidInput)
	}
	return nil
}

// GetWatchProgress returns every progress record.
func (l *Library) GetWatchProgress(ctx context.Context) []models.WatchProgress {
	return readList[models.WatchProgress](ctx, l, storage.WatchProgressPrefix)
}

// GetMovieProgress returns the progress record for movieID, or nil.
func (l *Library) GetMovieProgress(ctx context.Context, movieID int) *models.WatchProgress {
	for _, p := range l.GetWatchProgress(ctx) {
		if p.MovieID == movieID {
			return &p
		}
	}
	return nil
}

// GetContinueWatching returns up to [ContinueWatchingLimit] started, unfinished movies,
// most recently watched first. Equal timestamps keep storage order.
func (l *Library) GetContinueWatching(ctx context.Context) []models.WatchProgress {
	inProgress := []models.WatchProgress{}
	for _, p := range l.GetWatchProgress(ctx) {
		if !p.Completed && p.Progress > ContinueWatchingMin {
			inProgress = append(inProgress, p)
		}
	}

	slices.SortStableFunc(inProgress, func(a, b models.WatchProgress) int {
		return b.WatchedAt.Compare(a.WatchedAt)
	})

	if len(inProgress) > ContinueWatchingLimit {
		inProgress = inProgress[:ContinueWatchingLimit]
	}
	return inProgress
}

// AddToWatchHistory puts movieID at the front of the history, removing any earlier entry,
// and truncates the history to [HistoryLimit].
func (l *Library) AddToWatchHistory(ctx context.Context, movieID int) error {
	history, err := loadList[int](ctx, l, storage.WatchHistoryPrefix)
	if err != nil {
		return err
	}

	history = slices.DeleteFunc(history, func(id int) bool { return id == movieID })
	history = slices.Insert(history, 0, movieID)
	if len(history) > HistoryLimit {
		history = history[:HistoryLimit]
	}

	return storeList(ctx, l, storage.WatchHistoryPrefix, history)
}

// GetWatchHistory returns completed movie ids, most recent first.
func (l *Library) GetWatchHistory(ctx context.Context) []int {
	return readList[int](ctx, l, storage.WatchHistoryPrefix)
}

// ClearWatchHistory deletes the history. Progress records are kept.
func (l *Library) ClearWatchHistory(ctx context.Context) error {
	uid, err := l.userID()
	if err != nil {
		return err
	}
	return l.store.Remove(ctx, storage.Key(storage.WatchHistoryPrefix, uid))
}

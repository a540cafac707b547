package library

import (
	"context"
	"errors"
	"math"

	"github.com/desertthunder/moviebox/internal/models"
	"github.com/desertthunder/moviebox/internal/shared"
	"github.com/desertthunder/moviebox/internal/storage"
)

// GetStats recomputes collection counters from the stored lists.
//
// Watch time sums duration*progress over every progress record, in whole minutes.
// The average rating is rounded to one decimal. Any read failure yields zeroed stats.
func (l *Library) GetStats(ctx context.Context) models.Stats {
	saved, err := loadList[models.SavedMovie](ctx, l, storage.SavedMoviesPrefix)
	if err != nil {
		return l.zeroStats(err)
	}
	progress, err := loadList[models.WatchProgress](ctx, l, storage.WatchProgressPrefix)
	if err != nil {
		return l.zeroStats(err)
	}
	ratings, err := loadList[models.UserRating](ctx, l, storage.UserRatingsPrefix)
	if err != nil {
		return l.zeroStats(err)
	}

	stats := models.Stats{TotalSaved: len(saved)}
	for _, s := range saved {
		switch s.Category {
		case models.Favorites:
			stats.Favorites++
		case models.Watchlist:
			stats.Watchlist++
		case models.Watched:
			stats.Watched++
		}
	}

	var minutes float64
	for _, p := range progress {
		minutes += p.Duration * p.Progress / 100 / 60
	}
	stats.TotalWatchTime = int(math.Round(minutes))

	if len(ratings) > 0 {
		sum := 0
		for _, r := range ratings {
			sum += r.Rating
		}
		avg := float64(sum) / float64(len(ratings))
		stats.AverageRating = math.Round(avg*10) / 10
	}

	return stats
}

func (l *Library) zeroStats(err error) models.Stats {
	if !errors.Is(err, shared.ErrNotAuthenticated) {
		l.logger.Warn("failed to compute stats", "err", err)
	}
	return models.Stats{}
}

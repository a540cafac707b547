package library

import (
	"context"
	"fmt"

	"github.com/desertthunder/moviebox/internal/models"
	"github.com/desertthunder/moviebox/internal/shared"
	"github.com/desertthunder/moviebox/internal/storage"
)

// RateMovie sets the user's rating for movieID, replacing any earlier rating.
// Ratings outside [models.MinRating, models.MaxRating] are rejected without touching storage.
func (l *Library) RateMovie(ctx context.Context, movieID, rating int, review string) error {
	if !models.ValidRating(rating) {
		return fmt.Errorf("%w: %d is outside %d-%d", shared.ErrInvalidRating, rating, models.MinRating, models.MaxRating)
	}

	ratings, err := loadList[models.UserRating](ctx, l, storage.UserRatingsPrefix)
	if err != nil {
		return err
	}

	record := models.UserRating{MovieID: movieID, Rating: rating, Review: review, RatedAt: l.now()}

	replaced := false
	for i := range ratings {
		if ratings[i].MovieID == movieID {
			ratings[i] = record
			replaced = true
			break
		}
	}
	if !replaced {
		ratings = append(ratings, record)
	}

	return storeList(ctx, l, storage.UserRatingsPrefix, ratings)
}

// GetUserRatings returns every rating.
func (l *Library) GetUserRatings(ctx context.Context) []models.UserRating {
	return readList[models.UserRating](ctx, l, storage.UserRatingsPrefix)
}

// GetMovieRating returns the rating for movieID, or nil.
func (l *Library) GetMovieRating(ctx context.Context, movieID int) *models.UserRating {
	for _, r := range l.GetUserRatings(ctx) {
		if r.MovieID == movieID {
			return &r
		}
	}
	return nil
}

package services

import (
	"context"

	"github.com/desertthunder/moviebox/internal/models"
)

// MetadataService defines the read-only movie catalog operations the CLI, TUI and task engine use.
type MetadataService interface {
	// Popular, TopRated, NowPlaying and Upcoming return one page of a curated listing.
	Popular(ctx context.Context, page int) (*models.MoviePage, error)
	TopRated(ctx context.Context, page int) (*models.MoviePage, error)
	NowPlaying(ctx context.Context, page int) (*models.MoviePage, error)
	Upcoming(ctx context.Context, page int) (*models.MoviePage, error)

	// Trending returns trending movies for window "day" or "week".
	Trending(ctx context.Context, window string, page int) (*models.MoviePage, error)

	// ByGenre returns popular movies tagged with genreID.
	ByGenre(ctx context.Context, genreID, page int) (*models.MoviePage, error)

	// Search matches query against movie titles.
	Search(ctx context.Context, query string, page int) (*models.MoviePage, error)

	// Details returns the full record for a movie, including credits and videos.
	// Returns an error wrapping [shared.ErrMovieNotFound] for unknown ids.
	Details(ctx context.Context, movieID int) (*models.MovieDetails, error)

	Credits(ctx context.Context, movieID int) (*models.Credits, error)
	Videos(ctx context.Context, movieID int) ([]models.Video, error)
	Similar(ctx context.Context, movieID, page int) (*models.MoviePage, error)
	Recommendations(ctx context.Context, movieID, page int) (*models.MoviePage, error)

	// Genres returns the movie genre list.
	Genres(ctx context.Context) ([]models.Genre, error)

	// Name returns the name of the service (e.g., "TMDB")
	Name() string
}

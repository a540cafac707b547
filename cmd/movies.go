package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/moviebox/internal/formatter"
	"github.com/desertthunder/moviebox/internal/models"
	"github.com/desertthunder/moviebox/internal/services"
	"github.com/desertthunder/moviebox/internal/shared"
	"github.com/urfave/cli/v3"
)

// pageFetcher loads one page of a movie listing.
type pageFetcher func(ctx context.Context, cmd *cli.Command, page int) (*models.MoviePage, error)

// MoviesListing returns an action that prints one page of a listing under title.
func (r *Runner) MoviesListing(title string, fetch pageFetcher) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		if err := r.requireMetadata(); err != nil {
			return err
		}

		page := max(cmd.Int("page"), 1)
		r.logger.Debug("fetching movie listing", "listing", title, "page", page)

		result, err := fetch(ctx, cmd, page)
		if err != nil {
			return fmt.Errorf("failed to fetch %s: %w", strings.ToLower(title), err)
		}

		if cmd.Bool("json") {
			return r.writeJSON(result, cmd.Bool("pretty"))
		}
		return r.writeMoviePage(ctx, title, result)
	}
}

func (r *Runner) writeMoviePage(ctx context.Context, title string, page *models.MoviePage) error {
	r.writePlainHeader(title)
	if len(page.Results) == 0 {
		return r.writePlain("No movies found\n")
	}

	signedIn := r.auth.IsAuthenticated()
	for i, m := range page.Results {
		r.writePlain("%3d. %-40s  #%-7d ★ %.1f", i+1, formatter.MovieLine(m), m.ID, m.VoteAverage)
		if signedIn {
			if cat, ok := r.lib.GetMovieCategory(ctx, m.ID); ok {
				r.writePlain("  [%s]", cat)
			}
		}
		r.writePlain("\n")
	}

	r.writePlain("\nPage %d of %d (%d results)\n", page.Page, page.TotalPages, page.TotalResults)
	if page.HasNext() {
		r.writePlain("Use --page %d for more\n", page.Page+1)
	}
	return nil
}

// movieIDArg reads the "id" argument and rejects missing or non-positive ids.
func movieIDArg(cmd *cli.Command) (int, error) {
	id := cmd.IntArg("id")
	if id <= 0 {
		return 0, fmt.Errorf("%w: movie id is required", shared.ErrMissingArgument)
	}
	return id, nil
}

// MoviesShow prints the full record for a movie along with the user's saved state.
func (r *Runner) MoviesShow(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireMetadata(); err != nil {
		return err
	}
	id, err := movieIDArg(cmd)
	if err != nil {
		return err
	}

	details, err := r.tmdb.Details(ctx, id)
	if services.IsNotFound(err) {
		return fmt.Errorf("no movie with id %d: %w", id, err)
	} else if err != nil {
		return fmt.Errorf("failed to fetch movie %d: %w", id, err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(details, cmd.Bool("pretty"))
	}

	r.writePlainHeader(formatter.MovieLine(details.Movie))
	if details.Tagline != "" {
		r.writePlain("%s\n\n", details.Tagline)
	}
	if details.Runtime > 0 {
		r.writePlain("Runtime:   %s\n", shared.FormatRuntime(details.Runtime))
	}
	if genres := details.GenreNames(); len(genres) > 0 {
		r.writePlain("Genres:    %s\n", strings.Join(genres, ", "))
	}
	if details.Credits != nil {
		if directors := details.Credits.Directors(); len(directors) > 0 {
			r.writePlain("Director:  %s\n", strings.Join(directors, ", "))
		}
		if cast := details.Credits.Cast; len(cast) > 0 {
			names := make([]string, 0, 5)
			for _, c := range cast[:min(len(cast), 5)] {
				names = append(names, c.Name)
			}
			r.writePlain("Starring:  %s\n", strings.Join(names, ", "))
		}
	}
	r.writePlain("TMDB:      ★ %.1f (%d votes)\n", details.VoteAverage, details.VoteCount)

	if r.auth.IsAuthenticated() {
		if cat, ok := r.lib.GetMovieCategory(ctx, id); ok {
			r.writePlain("Saved in:  %s\n", cat)
		}
		if rating := r.lib.GetMovieRating(ctx, id); rating != nil {
			r.writePlain("You rated: %s\n", strings.Repeat("★", rating.Rating))
		}
		if p := r.lib.GetMovieProgress(ctx, id); p != nil {
			r.writePlain("Progress:  %.0f%% (%s of %s)\n", p.Progress,
				shared.FormatDuration(p.Position()), shared.FormatDuration(p.Duration))
		}
	}

	if details.Overview != "" {
		r.writePlainln("%s", details.Overview)
	}
	return nil
}

// MoviesTrailer prints, and optionally opens, the YouTube trailer for a movie.
func (r *Runner) MoviesTrailer(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireMetadata(); err != nil {
		return err
	}
	id, err := movieIDArg(cmd)
	if err != nil {
		return err
	}

	videos, err := r.tmdb.Videos(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to fetch videos for %d: %w", id, err)
	}

	url, err := services.TrailerURL(videos)
	if err != nil {
		return err
	}

	if cmd.Bool("open") {
		r.logger.Info("opening trailer", "movie", id, "url", url)
		if err := shared.OpenBrowser(url); err != nil {
			r.logger.Warn("failed to open browser", "error", err)
		}
	}
	return r.writePlain("%s\n", url)
}

// MoviesGenres lists the TMDB genre ids accepted by 'movies genre'.
func (r *Runner) MoviesGenres(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireMetadata(); err != nil {
		return err
	}

	genres, err := r.tmdb.Genres(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch genres: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(genres, cmd.Bool("pretty"))
	}

	r.writePlainHeader("Genres")
	for _, g := range genres {
		r.writePlain("%6d  %s\n", g.ID, g.Name)
	}
	return nil
}

func listingFlags() []cli.Flag {
	return append(outputFlags(), &cli.IntFlag{
		Name:  "page",
		Usage: "Page number",
		Value: 1,
	})
}

// moviesCommand handles TMDB browsing operations
func moviesCommand(r *Runner) *cli.Command {
	listing := func(name, usage, title string, fetch pageFetcher) *cli.Command {
		return &cli.Command{
			Name:   name,
			Usage:  usage,
			Flags:  listingFlags(),
			Action: r.MoviesListing(title, fetch),
		}
	}

	return &cli.Command{
		Name:    "movies",
		Aliases: []string{"m"},
		Usage:   "Browse and search the TMDB catalog",
		Commands: []*cli.Command{
			listing("popular", "Popular movies", "Popular",
				func(ctx context.Context, _ *cli.Command, page int) (*models.MoviePage, error) {
					return r.tmdb.Popular(ctx, page)
				}),
			listing("top-rated", "Top rated movies", "Top Rated",
				func(ctx context.Context, _ *cli.Command, page int) (*models.MoviePage, error) {
					return r.tmdb.TopRated(ctx, page)
				}),
			listing("now-playing", "Movies in theaters", "Now Playing",
				func(ctx context.Context, _ *cli.Command, page int) (*models.MoviePage, error) {
					return r.tmdb.NowPlaying(ctx, page)
				}),
			listing("upcoming", "Upcoming releases", "Upcoming",
				func(ctx context.Context, _ *cli.Command, page int) (*models.MoviePage, error) {
					return r.tmdb.Upcoming(ctx, page)
				}),
			{
				Name:  "trending",
				Usage: "Trending movies",
				Flags: append(listingFlags(), &cli.StringFlag{
					Name:  "window",
					Usage: "Time window: day or week",
					Value: "week",
				}),
				Action: r.MoviesListing("Trending", func(ctx context.Context, cmd *cli.Command, page int) (*models.MoviePage, error) {
					window := cmd.String("window")
					if window != "day" && window != "week" {
						return nil, fmt.Errorf("%w: window must be day or week", shared.ErrInvalidFlag)
					}
					return r.tmdb.Trending(ctx, window, page)
				}),
			},
			{
				Name:      "genre",
				Usage:     "Popular movies in a genre (see 'movies genres')",
				Arguments: []cli.Argument{&cli.IntArg{Name: "id"}},
				Flags:     listingFlags(),
				Action: r.MoviesListing("By Genre", func(ctx context.Context, cmd *cli.Command, page int) (*models.MoviePage, error) {
					id := cmd.IntArg("id")
					if id <= 0 {
						return nil, fmt.Errorf("%w: genre id is required", shared.ErrMissingArgument)
					}
					return r.tmdb.ByGenre(ctx, id, page)
				}),
			},
			{
				Name:      "search",
				Usage:     "Search movies by title",
				Arguments: []cli.Argument{&cli.StringArg{Name: "query"}},
				Flags:     listingFlags(),
				Action: r.MoviesListing("Search Results", func(ctx context.Context, cmd *cli.Command, page int) (*models.MoviePage, error) {
					query := strings.TrimSpace(cmd.StringArg("query"))
					if query == "" {
						return nil, fmt.Errorf("%w: search query is required", shared.ErrMissingArgument)
					}
					return r.tmdb.Search(ctx, query, page)
				}),
			},
			{
				Name:      "similar",
				Usage:     "Movies similar to a movie",
				Arguments: []cli.Argument{&cli.IntArg{Name: "id"}},
				Flags:     listingFlags(),
				Action: r.MoviesListing("Similar", func(ctx context.Context, cmd *cli.Command, page int) (*models.MoviePage, error) {
					id, err := movieIDArg(cmd)
					if err != nil {
						return nil, err
					}
					return r.tmdb.Similar(ctx, id, page)
				}),
			},
			{
				Name:      "recommend",
				Usage:     "Recommendations based on a movie",
				Arguments: []cli.Argument{&cli.IntArg{Name: "id"}},
				Flags:     listingFlags(),
				Action: r.MoviesListing("Recommended", func(ctx context.Context, cmd *cli.Command, page int) (*models.MoviePage, error) {
					id, err := movieIDArg(cmd)
					if err != nil {
						return nil, err
					}
					return r.tmdb.Recommendations(ctx, id, page)
				}),
			},
			{
				Name:      "show",
				Usage:     "Show details, credits and your saved state for a movie",
				Arguments: []cli.Argument{&cli.IntArg{Name: "id"}},
				Flags:     outputFlags(),
				Action:    r.MoviesShow,
			},
			{
				Name:      "trailer",
				Usage:     "Print the YouTube trailer URL for a movie",
				Arguments: []cli.Argument{&cli.IntArg{Name: "id"}},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "open",
						Usage: "Open the trailer in the default browser",
					},
				},
				Action: r.MoviesTrailer,
			},
			{
				Name:   "genres",
				Usage:  "List genre ids",
				Flags:  outputFlags(),
				Action: r.MoviesGenres,
			},
		},
	}
}

package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/moviebox/internal/formatter"
	"github.com/desertthunder/moviebox/internal/models"
	"github.com/desertthunder/moviebox/internal/shared"
	"github.com/urfave/cli/v3"
)

// lookupMovie resolves a movie summary for id: the saved copy first, then TMDB.
// The returned details are nil unless TMDB was asked.
func (r *Runner) lookupMovie(ctx context.Context, id int) (models.Movie, *models.MovieDetails, error) {
	for _, s := range r.lib.GetSavedMovies(ctx, "") {
		if s.Movie.ID == id {
			return s.Movie, nil, nil
		}
	}

	if err := r.requireMetadata(); err != nil {
		return models.Movie{}, nil, err
	}
	details, err := r.tmdb.Details(ctx, id)
	if err != nil {
		return models.Movie{}, nil, fmt.Errorf("failed to fetch movie %d: %w", id, err)
	}
	return details.Movie, details, nil
}

// movieTitle returns a display title for id without calling TMDB.
func (r *Runner) movieTitle(ctx context.Context, id int) string {
	for _, s := range r.lib.GetSavedMovies(ctx, "") {
		if s.Movie.ID == id {
			return formatter.MovieLine(s.Movie)
		}
	}
	return fmt.Sprintf("Movie #%d", id)
}

// SavedAdd saves a movie into a category, moving it when already saved.
func (r *Runner) SavedAdd(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireAuth(); err != nil {
		return err
	}
	id, err := movieIDArg(cmd)
	if err != nil {
		return err
	}
	category, err := models.ParseCategory(cmd.String("category"))
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidFlag, err)
	}

	var movie models.Movie
	if title := strings.TrimSpace(cmd.String("title")); title != "" {
		movie = models.Movie{ID: id, Title: title}
	} else if movie, _, err = r.lookupMovie(ctx, id); err != nil {
		return err
	}

	previous, wasSaved := r.lib.GetMovieCategory(ctx, id)
	if err := r.lib.SaveMovie(ctx, movie, category); err != nil {
		return fmt.Errorf("failed to save movie: %w", err)
	}

	if wasSaved && previous != category {
		return r.writePlain("✓ Moved %s from %s to %s\n", formatter.MovieLine(movie), previous, category)
	}
	return r.writePlain("✓ Saved %s to %s\n", formatter.MovieLine(movie), category)
}

// SavedRemove deletes a movie from the collection.
func (r *Runner) SavedRemove(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireAuth(); err != nil {
		return err
	}
	id, err := movieIDArg(cmd)
	if err != nil {
		return err
	}

	if !r.lib.IsMovieSaved(ctx, id) {
		return r.writePlain("Movie %d is not saved\n", id)
	}

	title := r.movieTitle(ctx, id)
	if err := r.lib.RemoveMovie(ctx, id); err != nil {
		return fmt.Errorf("failed to remove movie: %w", err)
	}
	return r.writePlain("✓ Removed %s\n", title)
}

// SavedList prints saved movies, optionally limited to one category.
func (r *Runner) SavedList(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireAuth(); err != nil {
		return err
	}

	var category models.Category
	if c := cmd.String("category"); c != "" {
		parsed, err := models.ParseCategory(c)
		if err != nil {
			return fmt.Errorf("%w: %v", shared.ErrInvalidFlag, err)
		}
		category = parsed
	}

	saved := r.lib.GetSavedMovies(ctx, category)
	if cmd.Bool("json") {
		return r.writeJSON(saved, cmd.Bool("pretty"))
	}

	title := "Saved Movies"
	if category != "" {
		title = fmt.Sprintf("Saved Movies: %s", category)
	}
	return r.writeSaved(ctx, title, saved)
}

// SavedFind fuzzy-matches saved movie titles.
func (r *Runner) SavedFind(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireAuth(); err != nil {
		return err
	}
	query := strings.TrimSpace(cmd.StringArg("query"))
	if query == "" {
		return fmt.Errorf("%w: search query is required", shared.ErrMissingArgument)
	}

	matches := r.lib.FindSaved(ctx, query)
	if cmd.Bool("json") {
		return r.writeJSON(matches, cmd.Bool("pretty"))
	}
	return r.writeSaved(ctx, fmt.Sprintf("Matches for %q", query), matches)
}

// SavedCategory prints which category a movie is saved in.
func (r *Runner) SavedCategory(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireAuth(); err != nil {
		return err
	}
	id, err := movieIDArg(cmd)
	if err != nil {
		return err
	}

	category, ok := r.lib.GetMovieCategory(ctx, id)
	if !ok {
		return r.writePlain("Movie %d is not saved\n", id)
	}
	return r.writePlain("%s\n", category)
}

func (r *Runner) writeSaved(ctx context.Context, title string, saved []models.SavedMovie) error {
	r.writePlainHeader(title)
	if len(saved) == 0 {
		return r.writePlain("No saved movies\n")
	}

	for i, s := range saved {
		r.writePlain("%3d. %-40s  #%-7d %-9s  %s", i+1, formatter.MovieLine(s.Movie), s.Movie.ID,
			s.Category, s.SavedAt.Local().Format("Jan 2, 2006"))
		if rating := r.lib.GetMovieRating(ctx, s.Movie.ID); rating != nil {
			r.writePlain("  %s", strings.Repeat("★", rating.Rating))
		}
		if p := r.lib.GetMovieProgress(ctx, s.Movie.ID); p != nil && p.Progress > 0 {
			r.writePlain("  %.0f%%", p.Progress)
		}
		r.writePlain("\n")
	}
	return r.writePlain("\n%d movies\n", len(saved))
}

// savedCommand handles collection operations
func savedCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "saved",
		Aliases: []string{"s"},
		Usage:   "Manage favorites, watchlist and watched movies",
		Commands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "Save a movie (moves it if already saved)",
				Arguments: []cli.Argument{&cli.IntArg{Name: "id"}},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "category",
						Aliases: []string{"c"},
						Usage:   "favorites, watchlist or watched",
						Value:   string(models.Favorites),
					},
					&cli.StringFlag{
						Name:  "title",
						Usage: "Save with this title instead of looking the movie up on TMDB",
					},
				},
				Action: r.SavedAdd,
			},
			{
				Name:      "remove",
				Aliases:   []string{"rm"},
				Usage:     "Remove a saved movie",
				Arguments: []cli.Argument{&cli.IntArg{Name: "id"}},
				Action:    r.SavedRemove,
			},
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List saved movies",
				Flags: append(outputFlags(), &cli.StringFlag{
					Name:    "category",
					Aliases: []string{"c"},
					Usage:   "Only list one category",
				}),
				Action: r.SavedList,
			},
			{
				Name:      "find",
				Usage:     "Fuzzy search saved titles",
				Arguments: []cli.Argument{&cli.StringArg{Name: "query"}},
				Flags:     outputFlags(),
				Action:    r.SavedFind,
			},
			{
				Name:      "category",
				Usage:     "Show the category a movie is saved in",
				Arguments: []cli.Argument{&cli.IntArg{Name: "id"}},
				Action:    r.SavedCategory,
			},
		},
	}
}

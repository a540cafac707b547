package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/moviebox/internal/models"
	"github.com/urfave/cli/v3"
)

func stars(n int) string {
	return strings.Repeat("★", n) + strings.Repeat("☆", max(models.MaxRating-n, 0))
}

// RateSet rates a movie 1-5 stars with an optional review.
func (r *Runner) RateSet(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireAuth(); err != nil {
		return err
	}
	id, err := movieIDArg(cmd)
	if err != nil {
		return err
	}

	rating := cmd.Int("stars")
	if err := r.lib.RateMovie(ctx, id, rating, cmd.String("review")); err != nil {
		return err
	}
	return r.writePlain("✓ Rated %s %s\n", r.movieTitle(ctx, id), stars(rating))
}

// RateGet prints the user's rating for a movie.
func (r *Runner) RateGet(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireAuth(); err != nil {
		return err
	}
	id, err := movieIDArg(cmd)
	if err != nil {
		return err
	}

	rating := r.lib.GetMovieRating(ctx, id)
	if cmd.Bool("json") {
		return r.writeJSON(rating, cmd.Bool("pretty"))
	}
	if rating == nil {
		return r.writePlain("%s is not rated\n", r.movieTitle(ctx, id))
	}

	r.writePlain("%s %s\n", r.movieTitle(ctx, id), stars(rating.Rating))
	if rating.Review != "" {
		r.writePlain("%q\n", rating.Review)
	}
	return nil
}

// RateList prints every rating.
func (r *Runner) RateList(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireAuth(); err != nil {
		return err
	}

	ratings := r.lib.GetUserRatings(ctx)
	if cmd.Bool("json") {
		return r.writeJSON(ratings, cmd.Bool("pretty"))
	}

	r.writePlainHeader("Ratings")
	if len(ratings) == 0 {
		return r.writePlain("No ratings yet\n")
	}
	for _, rt := range ratings {
		r.writePlain("%s  %s", stars(rt.Rating), r.movieTitle(ctx, rt.MovieID))
		if rt.Review != "" {
			r.writePlain(" - %s", rt.Review)
		}
		r.writePlain("\n")
	}
	return nil
}

// rateCommand handles rating operations
func rateCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "rate",
		Usage: "Rate and review movies",
		Commands: []*cli.Command{
			{
				Name:      "set",
				Usage:     "Rate a movie",
				Arguments: []cli.Argument{&cli.IntArg{Name: "id"}},
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:     "stars",
						Aliases:  []string{"s"},
						Usage:    fmt.Sprintf("Rating from %d to %d", models.MinRating, models.MaxRating),
						Required: true,
					},
					&cli.StringFlag{
						Name:  "review",
						Usage: "Optional review text",
					},
				},
				Action: r.RateSet,
			},
			{
				Name:      "get",
				Usage:     "Show your rating for a movie",
				Arguments: []cli.Argument{&cli.IntArg{Name: "id"}},
				Flags:     outputFlags(),
				Action:    r.RateGet,
			},
			{
				Name:   "list",
				Usage:  "List your ratings",
				Flags:  outputFlags(),
				Action: r.RateList,
			},
		},
	}
}

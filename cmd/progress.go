package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/moviebox/internal/shared"
	"github.com/urfave/cli/v3"
)

// ProgressUpdate records a playback position by hand.
func (r *Runner) ProgressUpdate(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireAuth(); err != nil {
		return err
	}
	id, err := movieIDArg(cmd)
	if err != nil {
		return err
	}

	duration := cmd.Float("duration")
	if duration <= 0 {
		return fmt.Errorf("%w: --duration must be positive", shared.ErrInvalidFlag)
	}

	progress := cmd.Float("progress")
	if cmd.IsSet("position") {
		progress = cmd.Float("position") / duration * 100
	}

	if err := r.lib.UpdateWatchProgress(ctx, id, progress, duration); err != nil {
		return fmt.Errorf("failed to update progress: %w", err)
	}

	p := r.lib.GetMovieProgress(ctx, id)
	if p == nil {
		return r.writePlain("✓ Progress saved\n")
	}
	r.writePlain("✓ %s: %.0f%% (%s of %s)\n", r.movieTitle(ctx, id), p.Progress,
		shared.FormatDuration(p.Position()), shared.FormatDuration(p.Duration))
	if p.Completed {
		r.writePlain("Marked as watched\n")
	}
	return nil
}

// ProgressGet prints the saved position for a movie.
func (r *Runner) ProgressGet(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireAuth(); err != nil {
		return err
	}
	id, err := movieIDArg(cmd)
	if err != nil {
		return err
	}

	p := r.lib.GetMovieProgress(ctx, id)
	if cmd.Bool("json") {
		return r.writeJSON(p, cmd.Bool("pretty"))
	}
	if p == nil {
		return r.writePlain("No progress for %s\n", r.movieTitle(ctx, id))
	}

	r.writePlain("%s\n", r.movieTitle(ctx, id))
	r.writePlain("Progress:  %.1f%% (%s of %s)\n", p.Progress,
		shared.FormatDuration(p.Position()), shared.FormatDuration(p.Duration))
	r.writePlain("Completed: %t\n", p.Completed)
	return r.writePlain("Watched:   %s\n", p.WatchedAt.Local().Format("Jan 2, 2006 15:04"))
}

// ProgressContinue lists started, unfinished movies, most recent first.
func (r *Runner) ProgressContinue(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireAuth(); err != nil {
		return err
	}

	items := r.lib.GetContinueWatching(ctx)
	if cmd.Bool("json") {
		return r.writeJSON(items, cmd.Bool("pretty"))
	}

	r.writePlainHeader("Continue Watching")
	if len(items) == 0 {
		return r.writePlain("Nothing in progress\n")
	}
	for i, p := range items {
		r.writePlain("%3d. %-40s  %3.0f%%  %s left\n", i+1, r.movieTitle(ctx, p.MovieID), p.Progress,
			shared.FormatDuration(p.Duration-p.Position()))
	}
	return nil
}

// ProgressHistory lists completed movies, most recent first.
func (r *Runner) ProgressHistory(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireAuth(); err != nil {
		return err
	}

	history := r.lib.GetWatchHistory(ctx)
	if cmd.Bool("json") {
		return r.writeJSON(history, cmd.Bool("pretty"))
	}

	r.writePlainHeader("Watch History")
	if len(history) == 0 {
		return r.writePlain("No finished movies yet\n")
	}
	for i, id := range history {
		r.writePlain("%3d. %s\n", i+1, r.movieTitle(ctx, id))
	}
	return nil
}

// ProgressClearHistory deletes the watch history. Progress records are kept.
func (r *Runner) ProgressClearHistory(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireAuth(); err != nil {
		return err
	}
	if err := r.lib.ClearWatchHistory(ctx); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return r.writePlain("✓ Watch history cleared\n")
}

// progressCommand handles watch progress operations
func progressCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "progress",
		Aliases: []string{"p"},
		Usage:   "Track playback positions and watch history",
		Commands: []*cli.Command{
			{
				Name:      "update",
				Usage:     "Record a playback position",
				Arguments: []cli.Argument{&cli.IntArg{Name: "id"}},
				Flags: []cli.Flag{
					&cli.FloatFlag{
						Name:  "progress",
						Usage: "Percentage watched (0-100)",
					},
					&cli.FloatFlag{
						Name:  "position",
						Usage: "Position in seconds; overrides --progress",
					},
					&cli.FloatFlag{
						Name:     "duration",
						Usage:    "Total duration in seconds",
						Required: true,
					},
				},
				Action: r.ProgressUpdate,
			},
			{
				Name:      "get",
				Usage:     "Show the saved position for a movie",
				Arguments: []cli.Argument{&cli.IntArg{Name: "id"}},
				Flags:     outputFlags(),
				Action:    r.ProgressGet,
			},
			{
				Name:   "continue",
				Usage:  "List movies to continue watching",
				Flags:  outputFlags(),
				Action: r.ProgressContinue,
			},
			{
				Name:   "history",
				Usage:  "List finished movies",
				Flags:  outputFlags(),
				Action: r.ProgressHistory,
			},
			{
				Name:   "clear-history",
				Usage:  "Clear the watch history",
				Action: r.ProgressClearHistory,
			},
		},
	}
}

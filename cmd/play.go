package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/desertthunder/moviebox/internal/formatter"
	"github.com/desertthunder/moviebox/internal/models"
	"github.com/desertthunder/moviebox/internal/player"
	"github.com/desertthunder/moviebox/internal/shared"
	"github.com/urfave/cli/v3"
)

// defaultRuntime is used when neither TMDB nor saved progress knows how long a movie is.
const defaultRuntime = 2 * time.Hour

// Play simulates watching a movie: it resumes from saved progress, advances a clock-driven
// player, saves progress periodically and on exit, and records completion at the end.
func (r *Runner) Play(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireAuth(); err != nil {
		return err
	}
	id, err := movieIDArg(cmd)
	if err != nil {
		return err
	}

	quality, err := r.playbackQuality(cmd)
	if err != nil {
		return err
	}

	stopAt := cmd.Float("stop-at")
	if stopAt <= 0 || stopAt > 100 {
		return fmt.Errorf("%w: --stop-at must be in (0, 100]", shared.ErrInvalidFlag)
	}

	if cmd.Float("scale") <= 0 {
		return fmt.Errorf("%w: --scale must be positive", shared.ErrInvalidFlag)
	}

	tick := cmd.Duration("tick")
	if tick <= 0 {
		tick = 250 * time.Millisecond
	}
	interval := cmd.Duration("interval")
	if interval <= 0 {
		interval = 10 * time.Second
	}

	movie, duration := r.playbackTarget(ctx, id, cmd.Float("duration"))

	sim := player.NewSimulator(duration)
	session := player.NewSession(id, sim, r.lib, r.logger)

	finished := make(chan struct{}, 1)
	session.OnComplete = func(context.Context, int) {
		select {
		case finished <- struct{}{}:
		default:
		}
	}
	sim.Attach(func(st player.Status) { session.HandleStatus(ctx, st) })

	if err := session.SetQuality(quality); err != nil {
		return err
	}
	if speed := cmd.Float("speed"); speed != 1 {
		if err := session.SetSpeed(ctx, speed); err != nil {
			return err
		}
	}

	if p := r.lib.GetMovieProgress(ctx, id); p != nil && p.Completed {
		r.writePlain("Already watched, starting over\n")
	} else if !cmd.Bool("restart") {
		resumed, err := session.Resume(ctx)
		if err != nil {
			return fmt.Errorf("failed to resume: %w", err)
		}
		if resumed {
			r.writePlain("Resuming at %s\n", shared.FormatDuration(session.State().CurrentTime))
		}
	}

	if err := session.TogglePlay(ctx); err != nil {
		return fmt.Errorf("failed to start playback: %w", err)
	}

	r.logger.Info("playback started", "movie", id, "duration", duration, "quality", quality)
	r.writePlain("▶ %s [%s]\n", formatter.MovieLine(movie), quality)

	runCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()
	runCtx, cancel := context.WithCancel(runCtx)
	defer cancel()

	wait := startPlayback(runCtx, session, sim, interval, tick, cmd.Float("scale"))

	completed := r.watch(runCtx, session, tick, stopAt, finished)
	cancel()
	wait()

	if err := session.Close(ctx); err != nil {
		return fmt.Errorf("failed to save progress: %w", err)
	}

	st := session.State()
	r.writePlain("%s\n", st)

	if !completed {
		return r.writePlain("Stopped at %.0f%%. Run 'moviebox play %d' to resume\n", st.Progress(), id)
	}
	return r.finishPlayback(ctx, cmd, movie)
}

// startPlayback runs the session's progress ticker and the simulator clock until ctx is done.
// The returned wait blocks until both have exited, so no periodic save can land after Close.
func startPlayback(ctx context.Context, session *player.Session, sim *player.Simulator, interval, tick time.Duration, scale float64) (wait func()) {
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		session.Run(ctx, interval)
	}()
	go func() {
		defer wg.Done()
		sim.Run(ctx, tick, scale)
	}()
	return wg.Wait
}

// watch prints a status line at every tenth of the movie until playback finishes, reaches stopAt
// percent, or ctx is done. It reports whether the movie finished.
func (r *Runner) watch(ctx context.Context, session *player.Session, tick time.Duration, stopAt float64, finished <-chan struct{}) bool {
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	last := int(session.State().Progress() / 10)
	for {
		select {
		case <-ctx.Done():
			return false
		case <-finished:
			return true
		case <-ticker.C:
			st := session.State()
			if st.Err != "" {
				r.writePlain("Playback error: %s\n", st.Err)
				return false
			}
			if decile := int(st.Progress() / 10); decile > last {
				last = decile
				r.writePlain("%s\n", st)
			}
			if stopAt < 100 && st.Progress() >= stopAt {
				if err := session.TogglePlay(ctx); err != nil {
					r.logger.Warn("failed to pause", "error", err)
				}
				return false
			}
		}
	}
}

// finishPlayback applies --rate and --mark-watched after the end of the video was recorded.
func (r *Runner) finishPlayback(ctx context.Context, cmd *cli.Command, movie models.Movie) error {
	r.writePlain("🎬 Finished %s\n", formatter.MovieLine(movie))

	if cmd.Bool("mark-watched") {
		if err := r.lib.SaveMovie(ctx, movie, models.Watched); err != nil {
			return fmt.Errorf("failed to mark as watched: %w", err)
		}
		r.writePlain("✓ Moved to %s\n", models.Watched)
	}

	if cmd.IsSet("rate") {
		rating := cmd.Int("rate")
		if err := r.lib.RateMovie(ctx, movie.ID, rating, ""); err != nil {
			return err
		}
		return r.writePlain("✓ Rated %s\n", stars(rating))
	}

	return r.writePlain("How was it? Rate it with 'moviebox rate set %d --stars N'\n", movie.ID)
}

// playbackQuality resolves --quality, then the user's preference, then the configured default.
func (r *Runner) playbackQuality(cmd *cli.Command) (player.Quality, error) {
	if cmd.IsSet("quality") {
		return player.ParseQuality(cmd.String("quality"))
	}
	if u := r.auth.CurrentUser(); u != nil && u.Preferences().WatchQuality != "" {
		if q, err := player.ParseQuality(u.Preferences().WatchQuality); err == nil {
			return q, nil
		}
	}
	if r.config.Player.DefaultQuality != "" {
		return player.ParseQuality(r.config.Player.DefaultQuality)
	}
	return player.QualityAuto, nil
}

// playbackTarget resolves the movie and its duration in seconds. An explicit duration wins,
// then the TMDB runtime, then the duration stored with earlier progress.
func (r *Runner) playbackTarget(ctx context.Context, id int, duration float64) (models.Movie, float64) {
	movie, details, err := r.lookupMovie(ctx, id)
	if err != nil {
		r.logger.Warn("movie details unavailable", "movie", id, "error", err)
		movie = models.Movie{ID: id, Title: fmt.Sprintf("Movie #%d", id)}
	}

	if duration > 0 {
		return movie, duration
	}
	if details == nil && r.tmdb != nil {
		if d, err := r.tmdb.Details(ctx, id); err == nil {
			details = d
		}
	}
	if details != nil && details.Runtime > 0 {
		return movie, float64(details.Runtime * 60)
	}
	if p := r.lib.GetMovieProgress(ctx, id); p != nil && p.Duration > 0 {
		return movie, p.Duration
	}
	return movie, defaultRuntime.Seconds()
}

// playCommand simulates playback with progress tracking
func playCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "play",
		Usage:     "Simulate watching a movie, saving progress as it plays",
		Arguments: []cli.Argument{&cli.IntArg{Name: "id"}},
		Flags: []cli.Flag{
			&cli.FloatFlag{
				Name:  "duration",
				Usage: "Movie length in seconds (defaults to the TMDB runtime)",
			},
			&cli.StringFlag{
				Name:  "quality",
				Usage: "Stream quality: auto, 480p, 720p, 1080p or 4k",
			},
			&cli.FloatFlag{
				Name:  "speed",
				Usage: "Playback speed: 0.5, 0.75, 1, 1.25, 1.5 or 2",
				Value: 1,
			},
			&cli.FloatFlag{
				Name:  "scale",
				Usage: "Simulated seconds per real second",
				Value: 60,
			},
			&cli.DurationFlag{
				Name:  "tick",
				Usage: "Simulation step",
				Value: 250 * time.Millisecond,
			},
			&cli.DurationFlag{
				Name:  "interval",
				Usage: "How often progress is saved while playing",
				Value: r.config.Player.ProgressInterval.Duration,
			},
			&cli.FloatFlag{
				Name:  "stop-at",
				Usage: "Pause and exit at this percentage",
				Value: 100,
			},
			&cli.BoolFlag{
				Name:  "restart",
				Usage: "Ignore saved progress and start from the beginning",
			},
			&cli.BoolFlag{
				Name:  "mark-watched",
				Usage: "Move the movie to the watched category when it finishes",
			},
			&cli.IntFlag{
				Name:  "rate",
				Usage: "Rate the movie 1-5 when it finishes",
			},
		},
		Action: r.Play,
	}
}

package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/moviebox/internal/services"
	"github.com/desertthunder/moviebox/internal/shared"
	"github.com/desertthunder/moviebox/internal/tasks"
	"github.com/urfave/cli/v3"
)

// exportOpts builds export options from the command's flags.
func (r *Runner) exportOpts(cmd *cli.Command) tasks.BulkExportOpts {
	opts := tasks.BulkExportOpts{
		Format:     cmd.String("format"),
		OutputDir:  cmd.String("output"),
		NumWorkers: cmd.Int("workers"),
		RateLimit:  cmd.Float("rate-limit"),
		Enrich:     cmd.Bool("enrich"),
	}

	if cmd.Bool("posters") {
		if tmdb, ok := r.tmdb.(*services.TMDBService); ok {
			opts.PosterURL = func(path string) string { return tmdb.ImageURL(path, services.PosterMedium) }
		} else {
			r.logger.Warn("posters need TMDB credentials, skipping")
		}
	}
	return opts
}

// Export writes the library to disk, optionally enriching every saved movie with TMDB details.
func (r *Runner) Export(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireAuth(); err != nil {
		return err
	}

	opts := r.exportOpts(cmd)
	if opts.Enrich {
		if err := r.requireMetadata(); err != nil {
			return err
		}
	}

	r.logger.Info("starting export", "format", opts.Format, "enrich", opts.Enrich)

	progressCh := make(chan tasks.ProgressUpdate, 50)
	printed := make(chan struct{})
	go func() {
		defer close(printed)
		for update := range progressCh {
			switch update.Phase {
			case tasks.Snapshot:
				r.writePlain("📥 %s\n", update.Message)
			case tasks.Enrich:
				if update.Step == 0 {
					r.writePlain("\n🔍 %s\n", update.Message)
				} else {
					r.writePlain("   %s\n", update.Message)
				}
			case tasks.Write:
				r.writePlain("\n📝 %s\n", update.Message)
			}
		}
	}()

	result, err := r.engine.BulkExport(ctx, progressCh, opts)
	close(progressCh)
	<-printed

	if err != nil {
		return err
	}

	r.writePlain("\n")
	r.writePlainHeader("Export Complete!")
	r.writePlain("Directory: %s\n", result.OutputDirectory)
	r.writePlain("Movies:    %d\n", len(result.Export.Saved))
	if opts.Enrich {
		r.writePlain("Enriched:  %d/%d\n", result.Enriched, len(result.Export.Saved))
	}
	r.writePlain("Files:\n")
	for _, f := range result.Files {
		r.writePlain("  - %s\n", f)
	}
	if result.ManifestPath != "" {
		r.writePlain("Manifest:  %s\n", result.ManifestPath)
	}

	if len(result.Failed) > 0 {
		r.writePlain("\nFailed to enrich %d movies:\n", len(result.Failed))
		for _, f := range result.Failed {
			r.writePlain("  - %s (#%d): %v\n", f.Title, f.MovieID, f.Error)
		}
	}
	return nil
}

// Import merges a JSON export into the signed-in user's library.
func (r *Runner) Import(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireAuth(); err != nil {
		return err
	}

	path := strings.TrimSpace(cmd.StringArg("path"))
	if path == "" {
		return fmt.Errorf("%w: path to %s or an export directory is required", shared.ErrMissingArgument, tasks.ExportFile)
	}

	progressCh := make(chan tasks.ProgressUpdate, 10)
	printed := make(chan struct{})
	go func() {
		defer close(printed)
		for update := range progressCh {
			r.writePlain("📥 %s\n", update.Message)
		}
	}()

	result, err := r.engine.Import(ctx, progressCh, path)
	close(progressCh)
	<-printed

	if err != nil {
		return err
	}

	r.writePlain("\n✓ Imported %s\n", result.Path)
	r.writePlain("Saved movies: %d\n", result.Saved)
	r.writePlain("Progress:     %d\n", result.Progress)
	r.writePlain("Ratings:      %d\n", result.Ratings)
	r.writePlain("History:      %d\n", result.History)
	r.writePlain("Lists:        %d\n", result.Lists)
	return nil
}

// exportCommand writes the library to disk
func exportCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export the library as json, csv, markdown or txt",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Export format: " + strings.Join(tasks.Formats, ", "),
				Value:   r.config.Export.Format,
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output directory (default: moviebox_export_{timestamp})",
			},
			&cli.BoolFlag{
				Name:  "enrich",
				Usage: "Fetch TMDB details (runtime, genres, directors) for every saved movie",
			},
			&cli.BoolFlag{
				Name:  "posters",
				Usage: "Download poster images into markdown exports",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Concurrent TMDB requests when enriching (max 10)",
				Value: r.config.Export.Workers,
			},
			&cli.FloatFlag{
				Name:  "rate-limit",
				Usage: "TMDB requests per second when enriching",
				Value: r.config.Export.RateLimit,
			},
		},
		Action: r.Export,
	}
}

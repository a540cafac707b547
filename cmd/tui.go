package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/moviebox/internal/shared"
	"github.com/desertthunder/moviebox/internal/tasks"
	"github.com/desertthunder/moviebox/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive library browser.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireAuth(); err != nil {
		return err
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(cmd.String("log-file"))
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	opts := tasks.BulkExportOpts{
		Format:     r.config.Export.Format,
		NumWorkers: r.config.Export.Workers,
		RateLimit:  r.config.Export.RateLimit,
	}
	return ui.Run(ui.NewModel(ctx, r.lib, r.engine, opts))
}

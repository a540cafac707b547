package main

import (
	"context"

	"github.com/desertthunder/moviebox/internal/shared"
	"github.com/urfave/cli/v3"
)

// Stats prints the library statistics.
func (r *Runner) Stats(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireAuth(); err != nil {
		return err
	}

	st := r.lib.GetStats(ctx)
	if cmd.Bool("json") {
		return r.writeJSON(st, cmd.Bool("pretty"))
	}

	r.writePlainHeader("Library Stats")
	r.writePlain("Saved:           %d\n", st.TotalSaved)
	r.writePlain("  Favorites:     %d\n", st.Favorites)
	r.writePlain("  Watchlist:     %d\n", st.Watchlist)
	r.writePlain("  Watched:       %d\n", st.Watched)
	r.writePlain("Watch time:      %s\n", shared.FormatRuntime(st.TotalWatchTime))
	if st.AverageRating > 0 {
		r.writePlain("Average rating:  %.1f\n", st.AverageRating)
	} else {
		r.writePlain("Average rating:  -\n")
	}
	return nil
}

package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/moviebox/internal/models"
	"github.com/desertthunder/moviebox/internal/shared"
	"github.com/urfave/cli/v3"
)

// listRefArg reads the "list" argument, an id or a list name.
func listRefArg(cmd *cli.Command) (string, error) {
	ref := strings.TrimSpace(cmd.StringArg("list"))
	if ref == "" {
		return "", fmt.Errorf("%w: list id or name is required", shared.ErrMissingArgument)
	}
	return ref, nil
}

// ListsList prints the user's movie lists.
func (r *Runner) ListsList(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireAuth(); err != nil {
		return err
	}

	lists := r.lib.GetUserLists(ctx)
	if cmd.Bool("json") {
		return r.writeJSON(lists, cmd.Bool("pretty"))
	}

	r.writePlainHeader("My Lists")
	if len(lists) == 0 {
		return r.writePlain("No lists yet. Create one with 'moviebox lists create NAME'\n")
	}
	for _, l := range lists {
		r.writePlain("%-30s  %3d movies", l.Name, l.MoviesCount())
		if l.IsPublic {
			r.writePlain("  (public)")
		}
		r.writePlain("\n")
		if l.Description != "" {
			r.writePlain("    %s\n", l.Description)
		}
	}
	return nil
}

// ListsCreate makes an empty list.
func (r *Runner) ListsCreate(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireAuth(); err != nil {
		return err
	}

	name := strings.TrimSpace(cmd.StringArg("name"))
	if name == "" {
		return fmt.Errorf("%w: list name is required", shared.ErrMissingArgument)
	}

	list, err := r.lib.CreateList(ctx, name, cmd.String("description"), cmd.Bool("public"))
	if err != nil {
		return fmt.Errorf("failed to create list: %w", err)
	}

	r.logger.Debug("list created", "id", list.ID, "name", list.Name)
	return r.writePlain("✓ Created list %s\n", list.Name)
}

// ListsUpdate renames a list or changes its description or visibility. Only flags that were
// set are applied.
func (r *Runner) ListsUpdate(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireAuth(); err != nil {
		return err
	}
	ref, err := listRefArg(cmd)
	if err != nil {
		return err
	}

	var update models.ListUpdate
	if cmd.IsSet("name") {
		name := cmd.String("name")
		update.Name = &name
	}
	if cmd.IsSet("description") {
		desc := cmd.String("description")
		update.Description = &desc
	}
	if cmd.IsSet("public") {
		public := cmd.Bool("public")
		update.IsPublic = &public
	}
	if update == (models.ListUpdate{}) {
		return fmt.Errorf("%w: nothing to update (use --name, --description or --public)", shared.ErrMissingArgument)
	}

	if err := r.lib.UpdateList(ctx, ref, update); err != nil {
		return fmt.Errorf("failed to update list: %w", err)
	}

	if update.Name != nil {
		ref = *update.Name
	}
	return r.writePlain("✓ Updated list %s\n", strings.TrimSpace(ref))
}

// ListsDelete removes a list. The movies on it stay in the library.
func (r *Runner) ListsDelete(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireAuth(); err != nil {
		return err
	}
	ref, err := listRefArg(cmd)
	if err != nil {
		return err
	}

	list := r.lib.GetList(ctx, ref)
	if list == nil {
		return r.writePlain("No list named %s\n", ref)
	}
	if err := r.lib.DeleteList(ctx, list.ID); err != nil {
		return fmt.Errorf("failed to delete list: %w", err)
	}
	return r.writePlain("✓ Deleted list %s\n", list.Name)
}

// ListsShow prints the movies on a list in the order they were added.
func (r *Runner) ListsShow(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireAuth(); err != nil {
		return err
	}
	ref, err := listRefArg(cmd)
	if err != nil {
		return err
	}

	list := r.lib.GetList(ctx, ref)
	if list == nil {
		return fmt.Errorf("%w: %q", shared.ErrListNotFound, ref)
	}
	if cmd.Bool("json") {
		return r.writeJSON(list, cmd.Bool("pretty"))
	}

	r.writePlainHeader(list.Name)
	if list.Description != "" {
		r.writePlain("%s\n\n", list.Description)
	}
	if len(list.Movies) == 0 {
		return r.writePlain("No movies on this list\n")
	}
	for i, m := range list.Movies {
		r.writePlain("%3d. %-40s  #%d\n", i+1, m.Title, m.MovieID)
	}
	return r.writePlain("\n%d movies\n", list.MoviesCount())
}

// ListsAdd puts a movie on a list. --title skips the TMDB lookup.
func (r *Runner) ListsAdd(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireAuth(); err != nil {
		return err
	}
	ref, err := listRefArg(cmd)
	if err != nil {
		return err
	}
	id, err := movieIDArg(cmd)
	if err != nil {
		return err
	}

	list := r.lib.GetList(ctx, ref)
	if list == nil {
		return fmt.Errorf("%w: %q", shared.ErrListNotFound, ref)
	}

	var movie models.Movie
	if title := strings.TrimSpace(cmd.String("title")); title != "" {
		movie = models.Movie{ID: id, Title: title}
	} else if movie, _, err = r.lookupMovie(ctx, id); err != nil {
		return err
	}

	if err := r.lib.AddMovieToList(ctx, list.ID, movie); err != nil {
		return fmt.Errorf("failed to add movie: %w", err)
	}
	return r.writePlain("✓ Added %s to %s\n", movie.Title, list.Name)
}

// ListsRemove takes a movie off a list.
func (r *Runner) ListsRemove(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireAuth(); err != nil {
		return err
	}
	ref, err := listRefArg(cmd)
	if err != nil {
		return err
	}
	id, err := movieIDArg(cmd)
	if err != nil {
		return err
	}

	list := r.lib.GetList(ctx, ref)
	if list == nil {
		return fmt.Errorf("%w: %q", shared.ErrListNotFound, ref)
	}
	if !list.Contains(id) {
		return r.writePlain("Movie %d is not on %s\n", id, list.Name)
	}

	if err := r.lib.RemoveMovieFromList(ctx, list.ID, id); err != nil {
		return fmt.Errorf("failed to remove movie: %w", err)
	}
	return r.writePlain("✓ Removed movie %d from %s\n", id, list.Name)
}

// listsCommand manages custom movie lists
func listsCommand(r *Runner) *cli.Command {
	listArg := func() cli.Argument { return &cli.StringArg{Name: "list"} }

	return &cli.Command{
		Name:    "lists",
		Aliases: []string{"l"},
		Usage:   "Manage your own named movie lists",
		Commands: []*cli.Command{
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "Show your lists",
				Flags:   outputFlags(),
				Action:  r.ListsList,
			},
			{
				Name:      "create",
				Usage:     "Create an empty list",
				Arguments: []cli.Argument{&cli.StringArg{Name: "name"}},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "description",
						Aliases: []string{"d"},
						Usage:   "Short description",
					},
					&cli.BoolFlag{
						Name:  "public",
						Usage: "Mark the list as public",
					},
				},
				Action: r.ListsCreate,
			},
			{
				Name:      "update",
				Usage:     "Rename a list or change its description or visibility",
				Arguments: []cli.Argument{listArg()},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "name",
						Usage: "New name",
					},
					&cli.StringFlag{
						Name:    "description",
						Aliases: []string{"d"},
						Usage:   "New description",
					},
					&cli.BoolFlag{
						Name:  "public",
						Usage: "Public (--public) or private (--public=false)",
					},
				},
				Action: r.ListsUpdate,
			},
			{
				Name:      "delete",
				Usage:     "Delete a list",
				Arguments: []cli.Argument{listArg()},
				Action:    r.ListsDelete,
			},
			{
				Name:      "show",
				Usage:     "Show the movies on a list",
				Arguments: []cli.Argument{listArg()},
				Flags:     outputFlags(),
				Action:    r.ListsShow,
			},
			{
				Name:      "add",
				Usage:     "Add a movie to a list",
				Arguments: []cli.Argument{listArg(), &cli.IntArg{Name: "id"}},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "title",
						Usage: "Title to store without looking the movie up on TMDB",
					},
				},
				Action: r.ListsAdd,
			},
			{
				Name:      "remove",
				Aliases:   []string{"rm"},
				Usage:     "Remove a movie from a list",
				Arguments: []cli.Argument{listArg(), &cli.IntArg{Name: "id"}},
				Action:    r.ListsRemove,
			},
		},
	}
}

package main

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/desertthunder/moviebox/internal/models"
	"github.com/desertthunder/moviebox/internal/shared"
)

func TestListsCommands(t *testing.T) {
	ctx := context.Background()

	t.Run("create, add, show and remove", func(t *testing.T) {
		f := newFixture(t, testCatalog())
		f.signIn(t)

		out := f.mustRun(t, "lists", "list")
		if !strings.Contains(out, "No lists yet") {
			t.Errorf("expected empty message, got %q", out)
		}

		out = f.mustRun(t, "lists", "create", "--description", "capers", "Heists")
		if !strings.Contains(out, "✓ Created list Heists") {
			t.Errorf("unexpected output %q", out)
		}

		out = f.mustRun(t, "lists", "add", "--title", "Snatch", "Heists", "107")
		if !strings.Contains(out, "✓ Added Snatch to Heists") {
			t.Errorf("unexpected output %q", out)
		}
		out = f.mustRun(t, "lists", "add", "heists", "550")
		if !strings.Contains(out, "✓ Added Fight Club to Heists") {
			t.Errorf("expected the TMDB title, got %q", out)
		}
		if f.runner.lib.IsMovieSaved(ctx, 550) {
			t.Error("adding to a list should not save the movie")
		}

		out = f.mustRun(t, "lists", "show", "Heists")
		for _, want := range []string{"capers", "Snatch", "#107", "Fight Club", "2 movies"} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q\n%s", want, out)
			}
		}
		if strings.Index(out, "Snatch") > strings.Index(out, "Fight Club") {
			t.Errorf("expected insertion order\n%s", out)
		}

		out = f.mustRun(t, "lists", "rm", "Heists", "107")
		if !strings.Contains(out, "✓ Removed movie 107 from Heists") {
			t.Errorf("unexpected output %q", out)
		}
		out = f.mustRun(t, "lists", "remove", "Heists", "107")
		if !strings.Contains(out, "Movie 107 is not on Heists") {
			t.Errorf("unexpected output %q", out)
		}
		if movies := f.runner.lib.GetListMovies(ctx, "Heists"); len(movies) != 1 || movies[0].MovieID != 550 {
			t.Errorf("expected only Fight Club, got %+v", movies)
		}
	})

	t.Run("list and json output", func(t *testing.T) {
		f := newFixture(t, nil)
		f.signIn(t)
		f.mustRun(t, "lists", "create", "Heists")
		f.mustRun(t, "lists", "create", "--public", "Noir")
		f.mustRun(t, "lists", "add", "--title", "Snatch", "Heists", "107")

		out := f.mustRun(t, "lists", "ls")
		for _, want := range []string{"My Lists", "Heists", "1 movies", "Noir", "(public)"} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q\n%s", want, out)
			}
		}

		out = f.mustRun(t, "lists", "list", "--json")
		var lists []models.MovieList
		if err := json.Unmarshal([]byte(out), &lists); err != nil {
			t.Fatalf("invalid JSON: %v\n%s", err, out)
		}
		if len(lists) != 2 {
			t.Errorf("expected 2 lists, got %d", len(lists))
		}

		out = f.mustRun(t, "lists", "show", "--json", "Heists")
		var list models.MovieList
		if err := json.Unmarshal([]byte(out), &list); err != nil {
			t.Fatalf("invalid JSON: %v\n%s", err, out)
		}
		if list.Name != "Heists" || !list.Contains(107) {
			t.Errorf("unexpected list %+v", list)
		}
	})

	t.Run("update applies only set flags", func(t *testing.T) {
		f := newFixture(t, nil)
		f.signIn(t)
		f.mustRun(t, "lists", "create", "--description", "capers", "Heists")

		out := f.mustRun(t, "lists", "update", "--name", "Great Heists", "--public", "heists")
		if !strings.Contains(out, "✓ Updated list Great Heists") {
			t.Errorf("unexpected output %q", out)
		}

		list := f.runner.lib.GetList(ctx, "Great Heists")
		if list == nil || !list.IsPublic || list.Description != "capers" {
			t.Errorf("unexpected list %+v", list)
		}

		if err := f.run("lists", "update", "Great Heists"); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("delete", func(t *testing.T) {
		f := newFixture(t, nil)
		f.signIn(t)
		f.mustRun(t, "lists", "create", "Heists")

		out := f.mustRun(t, "lists", "delete", "heists")
		if !strings.Contains(out, "✓ Deleted list Heists") {
			t.Errorf("unexpected output %q", out)
		}
		out = f.mustRun(t, "lists", "delete", "heists")
		if !strings.Contains(out, "No list named heists") {
			t.Errorf("unexpected output %q", out)
		}
		if lists := f.runner.lib.GetUserLists(ctx); len(lists) != 0 {
			t.Errorf("expected no lists, got %+v", lists)
		}
	})

	t.Run("errors", func(t *testing.T) {
		f := newFixture(t, nil)

		if err := f.run("lists", "create", "Heists"); !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}

		f.signIn(t)
		f.mustRun(t, "lists", "create", "Heists")

		tests := []struct {
			name string
			args []string
			want error
		}{
			{"duplicate name", []string{"lists", "create", "HEISTS"}, shared.ErrInvalidInput},
			{"missing name", []string{"lists", "create"}, shared.ErrMissingArgument},
			{"missing list", []string{"lists", "show"}, shared.ErrMissingArgument},
			{"unknown list", []string{"lists", "show", "Noir"}, shared.ErrListNotFound},
			{"add to unknown list", []string{"lists", "add", "--title", "Snatch", "Noir", "107"}, shared.ErrListNotFound},
			{"missing id", []string{"lists", "add", "Heists"}, shared.ErrMissingArgument},
			{"lookup without TMDB", []string{"lists", "add", "Heists", "550"}, shared.ErrServiceUnavailable},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				if err := f.run(tt.args...); !errors.Is(err, tt.want) {
					t.Errorf("expected %v, got %v", tt.want, err)
				}
			})
		}
	})
}

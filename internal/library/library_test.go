package library

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/desertthunder/moviebox/internal/identity"
	"github.com/desertthunder/moviebox/internal/models"
	"github.com/desertthunder/moviebox/internal/shared"
	"github.com/desertthunder/moviebox/internal/storage"
	tu "github.com/desertthunder/moviebox/internal/testing"
)

func testUser(id string) *models.User {
	u := models.NewUser(1, id+"@example.com", id)
	u.SetID(id)
	return u
}

func newTestLibrary(t *testing.T, store storage.Store) *Library {
	t.Helper()
	return New(store, identity.StaticProvider{User: testUser("u1")}, shared.NewLogger(&bytes.Buffer{}))
}

// fixedClock returns a clock that advances one second per call.
func fixedClock() func() time.Time {
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	n := 0
	return func() time.Time {
		n++
		return base.Add(time.Duration(n) * time.Second)
	}
}

func movie(id int, title string) models.Movie {
	return models.Movie{ID: id, Title: title}
}

func TestCollection(t *testing.T) {
	ctx := context.Background()

	t.Run("SaveMovie", func(t *testing.T) {
		t.Run("Appends And Defaults To Favorites", func(t *testing.T) {
			lib := newTestLibrary(t, storage.NewMemoryStore())

			if err := lib.SaveMovie(ctx, movie(1, "Alien"), ""); err != nil {
				t.Fatalf("failed to save: %v", err)
			}
			if err := lib.SaveMovie(ctx, movie(2, "Aliens"), models.Watchlist); err != nil {
				t.Fatalf("failed to save: %v", err)
			}

			saved := lib.GetSavedMovies(ctx, "")
			if len(saved) != 2 {
				t.Fatalf("expected 2 saved movies, got %d", len(saved))
			}
			if saved[0].Category != models.Favorites {
				t.Errorf("expected favorites, got %s", saved[0].Category)
			}
			if saved[1].Movie.ID != 2 {
				t.Errorf("expected insertion order, got %d second", saved[1].Movie.ID)
			}
		})

		t.Run("Replaces Existing Record", func(t *testing.T) {
			lib := newTestLibrary(t, storage.NewMemoryStore())

			lib.SaveMovie(ctx, movie(1, "Alien"), models.Favorites)
			lib.SaveMovie(ctx, movie(2, "Aliens"), models.Favorites)
			if err := lib.SaveMovie(ctx, movie(1, "Alien"), models.Watched); err != nil {
				t.Fatalf("failed to re-save: %v", err)
			}

			saved := lib.GetSavedMovies(ctx, "")
			if len(saved) != 2 {
				t.Fatalf("expected at most one record per movie, got %d", len(saved))
			}
			if saved[0].Movie.ID != 1 || saved[0].Category != models.Watched {
				t.Errorf("expected movie 1 replaced in place as watched, got %+v", saved[0])
			}
		})

		t.Run("Invalid Category", func(t *testing.T) {
			store := tu.NewFailingStore()
			lib := newTestLibrary(t, store)

			err := lib.SaveMovie(ctx, movie(1, "Alien"), models.Category("queue"))
			if !errors.Is(err, shared.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
			if store.SetCalls != 0 {
				t.Error("invalid category must not write")
			}
		})

		t.Run("Not Authenticated", func(t *testing.T) {
			store := tu.NewFailingStore()
			lib := New(store, identity.StaticProvider{}, shared.NewLogger(&bytes.Buffer{}))

			if err := lib.SaveMovie(ctx, movie(1, "Alien"), ""); !errors.Is(err, shared.ErrNotAuthenticated) {
				t.Errorf("expected ErrNotAuthenticated, got %v", err)
			}
			if store.SetCalls != 0 {
				t.Error("unauthenticated save must not write")
			}
			if got := lib.GetSavedMovies(ctx, ""); len(got) != 0 {
				t.Errorf("expected empty list, got %d", len(got))
			}
		})

		t.Run("Storage Failure", func(t *testing.T) {
			store := tu.NewFailingStore()
			store.FailSet = true
			lib := newTestLibrary(t, store)

			if err := lib.SaveMovie(ctx, movie(1, "Alien"), ""); !errors.Is(err, shared.ErrStorage) {
				t.Errorf("expected ErrStorage, got %v", err)
			}
		})
	})

	t.Run("RemoveMovie", func(t *testing.T) {
		lib := newTestLibrary(t, storage.NewMemoryStore())
		lib.SaveMovie(ctx, movie(1, "Alien"), "")
		lib.SaveMovie(ctx, movie(2, "Aliens"), "")

		if err := lib.RemoveMovie(ctx, 1); err != nil {
			t.Fatalf("failed to remove: %v", err)
		}
		if lib.IsMovieSaved(ctx, 1) {
			t.Error("expected movie 1 to be removed")
		}
		if !lib.IsMovieSaved(ctx, 2) {
			t.Error("expected movie 2 to remain")
		}

		if err := lib.RemoveMovie(ctx, 99); err != nil {
			t.Errorf("removing an unsaved movie should succeed: %v", err)
		}
	})

	t.Run("GetSavedMovies By Category", func(t *testing.T) {
		lib := newTestLibrary(t, storage.NewMemoryStore())
		lib.SaveMovie(ctx, movie(1, "A"), models.Favorites)
		lib.SaveMovie(ctx, movie(2, "B"), models.Watchlist)
		lib.SaveMovie(ctx, movie(3, "C"), models.Watchlist)

		tests := []struct {
			category models.Category
			want     int
		}{
			{"", 3},
			{models.Favorites, 1},
			{models.Watchlist, 2},
			{models.Watched, 0},
		}

		for _, tt := range tests {
			t.Run(fmt.Sprintf("category=%q", tt.category), func(t *testing.T) {
				if got := lib.GetSavedMovies(ctx, tt.category); len(got) != tt.want {
					t.Errorf("expected %d, got %d", tt.want, len(got))
				}
			})
		}
	})

	t.Run("GetMovieCategory", func(t *testing.T) {
		lib := newTestLibrary(t, storage.NewMemoryStore())
		lib.SaveMovie(ctx, movie(7, "Heat"), models.Watched)

		if c, ok := lib.GetMovieCategory(ctx, 7); !ok || c != models.Watched {
			t.Errorf("expected watched, got %q (ok=%v)", c, ok)
		}
		if _, ok := lib.GetMovieCategory(ctx, 8); ok {
			t.Error("expected unsaved movie to have no category")
		}
	})

	t.Run("Read Failure Degrades", func(t *testing.T) {
		store := tu.NewFailingStore()
		lib := newTestLibrary(t, store)
		lib.SaveMovie(ctx, movie(1, "Alien"), "")
		store.FailGet = true

		if got := lib.GetSavedMovies(ctx, ""); len(got) != 0 {
			t.Errorf("expected empty list on read failure, got %d", len(got))
		}
		if lib.IsMovieSaved(ctx, 1) {
			t.Error("expected false on read failure")
		}
	})

	t.Run("FindSaved", func(t *testing.T) {
		lib := newTestLibrary(t, storage.NewMemoryStore())
		lib.SaveMovie(ctx, movie(1, "The Matrix"), "")
		lib.SaveMovie(ctx, movie(2, "Mad Max: Fury Road"), "")
		lib.SaveMovie(ctx, movie(3, "Inception"), "")

		got := lib.FindSaved(ctx, "matrix")
		if len(got) != 1 || got[0].Movie.ID != 1 {
			t.Errorf("expected The Matrix, got %+v", got)
		}

		if got := lib.FindSaved(ctx, ""); len(got) != 3 {
			t.Errorf("expected all movies for empty query, got %d", len(got))
		}
		if got := lib.FindSaved(ctx, "zzzz"); len(got) != 0 {
			t.Errorf("expected no matches, got %d", len(got))
		}
	})
}

func TestUserScoping(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	logger := shared.NewLogger(&bytes.Buffer{})

	alice := New(store, identity.StaticProvider{User: testUser("alice")}, logger)
	bob := New(store, identity.StaticProvider{User: testUser("bob")}, logger)

	alice.SaveMovie(ctx, movie(1, "Alien"), "")
	alice.RateMovie(ctx, 1, 5, "")

	if bob.IsMovieSaved(ctx, 1) {
		t.Error("bob should not see alice's saved movies")
	}
	if bob.GetMovieRating(ctx, 1) != nil {
		t.Error("bob should not see alice's ratings")
	}
	if _, ok, _ := store.Get(ctx, "saved_movies_alice"); !ok {
		t.Error("expected alice's list under saved_movies_alice")
	}
}

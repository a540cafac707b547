package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/desertthunder/moviebox/internal/shared"
)

func setupSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	return NewSQLiteStore(db)
}

// postgresDSN points the store tests at a disposable PostgreSQL database.
const postgresDSN = "MOVIEBOX_TEST_POSTGRES_DSN"

func setupPostgresStore(t *testing.T) *PostgresStore {
	t.Helper()

	dsn := os.Getenv(postgresDSN)
	if dsn == "" {
		t.Skipf("%s not set", postgresDSN)
	}

	s, err := NewPostgresStore(context.Background(), dsn)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	s.Remove(context.Background(), "k")
	return s
}

func TestKey(t *testing.T) {
	if got := Key(SavedMoviesPrefix, "u1"); got != "saved_movies_u1" {
		t.Errorf("expected saved_movies_u1, got %s", got)
	}
	if got := Key(WatchHistoryPrefix, "abc"); got != "watch_history_abc" {
		t.Errorf("expected watch_history_abc, got %s", got)
	}
}

func TestStores(t *testing.T) {
	ctx := context.Background()

	stores := map[string]func(t *testing.T) Store{
		"SQLite":   func(t *testing.T) Store { return setupSQLiteStore(t) },
		"Memory":   func(t *testing.T) Store { return NewMemoryStore() },
		"Postgres": func(t *testing.T) Store { return setupPostgresStore(t) },
	}

	for name, open := range stores {
		t.Run(name, func(t *testing.T) {
			t.Run("Get Missing", func(t *testing.T) {
				s := open(t)
				defer s.Close()

				v, ok, err := s.Get(ctx, "missing")
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if ok || v != "" {
					t.Errorf("expected absent key, got %q (ok=%v)", v, ok)
				}
			})

			t.Run("Set & Get", func(t *testing.T) {
				s := open(t)
				defer s.Close()

				if err := s.Set(ctx, "k", "one"); err != nil {
					t.Fatalf("failed to set: %v", err)
				}
				if err := s.Set(ctx, "k", "two"); err != nil {
					t.Fatalf("failed to overwrite: %v", err)
				}

				v, ok, err := s.Get(ctx, "k")
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if !ok || v != "two" {
					t.Errorf("expected two, got %q (ok=%v)", v, ok)
				}
			})

			t.Run("Remove", func(t *testing.T) {
				s := open(t)
				defer s.Close()

				if err := s.Set(ctx, "k", "v"); err != nil {
					t.Fatalf("failed to set: %v", err)
				}
				if err := s.Remove(ctx, "k"); err != nil {
					t.Fatalf("failed to remove: %v", err)
				}
				if err := s.Remove(ctx, "k"); err != nil {
					t.Fatalf("removing an absent key should not fail: %v", err)
				}

				if _, ok, _ := s.Get(ctx, "k"); ok {
					t.Error("expected key to be gone")
				}
			})
		})
	}
}

func TestJSONHelpers(t *testing.T) {
	ctx := context.Background()

	type item struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	}

	t.Run("Round Trip", func(t *testing.T) {
		s := NewMemoryStore()
		want := []item{{ID: 1, Name: "a"}, {ID: 2, Name: "b"}}

		if err := SetJSON(ctx, s, "items", want); err != nil {
			t.Fatalf("failed to set: %v", err)
		}

		got, err := GetJSON[[]item](ctx, s, "items")
		if err != nil {
			t.Fatalf("failed to get: %v", err)
		}
		if len(got) != 2 || got[1].Name != "b" {
			t.Errorf("unexpected value: %+v", got)
		}
		if s.Len() != 1 {
			t.Errorf("expected one key, got %d", s.Len())
		}
	})

	t.Run("Missing Key", func(t *testing.T) {
		s := NewMemoryStore()

		got, err := GetJSON[[]item](ctx, s, "nope")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != nil {
			t.Errorf("expected nil slice, got %+v", got)
		}
	})

	t.Run("Corrupt Value", func(t *testing.T) {
		s := NewMemoryStore()
		s.Set(ctx, "items", "{not json")

		_, err := GetJSON[[]item](ctx, s, "items")
		if !errors.Is(err, shared.ErrStorage) {
			t.Errorf("expected ErrStorage, got %v", err)
		}
	})
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	t.Run("SQLite File", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "moviebox.db")

		s, err := Open(ctx, shared.DatabaseConfig{Driver: "sqlite", Path: path, MaxOpenConns: 1})
		if err != nil {
			t.Fatalf("failed to open store: %v", err)
		}
		defer s.Close()

		if err := s.Set(ctx, "k", "v"); err != nil {
			t.Fatalf("failed to set: %v", err)
		}
		if _, ok := s.(*SQLiteStore); !ok {
			t.Errorf("expected *SQLiteStore, got %T", s)
		}
	})

	t.Run("Postgres Without DSN", func(t *testing.T) {
		_, err := Open(ctx, shared.DatabaseConfig{Driver: "postgres"})
		if !errors.Is(err, shared.ErrMissingConfig) {
			t.Errorf("expected ErrMissingConfig, got %v", err)
		}
	})

	t.Run("Unknown Driver", func(t *testing.T) {
		_, err := Open(ctx, shared.DatabaseConfig{Driver: "redis"})
		if !errors.Is(err, shared.ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})
}

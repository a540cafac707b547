package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/desertthunder/moviebox/internal/shared"
)

// Key prefixes for per-user lists and global entries.
const (
	SavedMoviesPrefix   = "saved_movies"
	WatchProgressPrefix = "watch_progress"
	UserRatingsPrefix   = "user_ratings"
	WatchHistoryPrefix  = "watch_history"
	MovieListsPrefix    = "movie_lists"
	SessionKey          = "auth_session"
)

// Store is a string key-value store.
type Store interface {
	// Get returns the value under key; ok is false when the key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	// Set writes value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error
	// Remove deletes key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error
	// Close releases the underlying connection.
	Close() error
}

// Key builds the per-user key "{prefix}_{userID}".
func Key(prefix, userID string) string {
	return prefix + "_" + userID
}

// GetJSON decodes the JSON value under key into a T. A missing key yields the zero T.
func GetJSON[T any](ctx context.Context, s Store, key string) (T, error) {
	var v T

	raw, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return v, err
	}

	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return v, fmt.Errorf("%w: corrupt value under %s: %v", shared.ErrStorage, key, err)
	}
	return v, nil
}

// SetJSON encodes v as JSON and writes it under key.
func SetJSON(ctx context.Context, s Store, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("%w: failed to encode %s: %v", shared.ErrStorage, key, err)
	}
	return s.Set(ctx, key, string(data))
}

// Open returns the [Store] selected by cfg.Driver ("sqlite" or "postgres").
func Open(ctx context.Context, cfg shared.DatabaseConfig) (Store, error) {
	switch cfg.Driver {
	case "", "sqlite", "sqlite3":
		db, err := shared.NewDatabase(cfg.Path)
		if err != nil {
			return nil, err
		}
		shared.ConfigureDatabase(db, cfg.MaxOpenConns, cfg.MaxIdleConns)
		if err := shared.RunMigrations(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		return NewSQLiteStore(db), nil
	case "postgres", "postgresql":
		return NewPostgresStore(ctx, cfg.DSN)
	default:
		return nil, fmt.Errorf("%w: unknown database driver %q", shared.ErrInvalidConfig, cfg.Driver)
	}
}

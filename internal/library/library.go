package library

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/moviebox/internal/identity"
	"github.com/desertthunder/moviebox/internal/shared"
	"github.com/desertthunder/moviebox/internal/storage"
)

// Limits applied to derived lists.
const (
	HistoryLimit          = 100
	ContinueWatchingLimit = 10
	ContinueWatchingMin   = 5.0
)

// Library implements the collection, progress, rating and stats operations for the current user.
type Library struct {
	store    storage.Store
	identity identity.Provider
	logger   *log.Logger
	now      func() time.Time
}

// New creates a Library over store for whoever id reports as signed in.
func New(store storage.Store, id identity.Provider, logger *log.Logger) *Library {
	return &Library{store: store, identity: id, logger: logger, now: time.Now}
}

func (l *Library) userID() (string, error) {
	user := l.identity.CurrentUser()
	if user == nil {
		return "", shared.ErrNotAuthenticated
	}
	return user.ID(), nil
}

// loadList reads the current user's list under prefix. A missing key yields an empty list.
func loadList[T any](ctx context.Context, l *Library, prefix string) ([]T, error) {
	uid, err := l.userID()
	if err != nil {
		return nil, err
	}

	items, err := storage.GetJSON[[]T](ctx, l.store, storage.Key(prefix, uid))
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// storeList replaces the current user's list under prefix.
func storeList[T any](ctx context.Context, l *Library, prefix string, items []T) error {
	uid, err := l.userID()
	if err != nil {
		return err
	}
	return storage.SetJSON(ctx, l.store, storage.Key(prefix, uid), items)
}

// readList is loadList for read paths: failures are logged and yield an empty list.
func readList[T any](ctx context.Context, l *Library, prefix string) []T {
	items, err := loadList[T](ctx, l, prefix)
	if err != nil {
		if !errors.Is(err, shared.ErrNotAuthenticated) {
			l.logger.Warn("failed to read list", "prefix", prefix, "err", err)
		}
		return []T{}
	}
	return items
}

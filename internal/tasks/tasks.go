package tasks

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/moviebox/internal/identity"
	"github.com/desertthunder/moviebox/internal/library"
	"github.com/desertthunder/moviebox/internal/models"
	"github.com/desertthunder/moviebox/internal/services"
)

// Library is the part of [library.Library] the engine needs.
type Library interface {
	Snapshot(ctx context.Context) (library.Snapshot, error)
	Restore(ctx context.Context, snap library.Snapshot) error
	GetStats(ctx context.Context) models.Stats
}

// LibraryEngine runs export and import for the signed-in user.
type LibraryEngine struct {
	lib      Library
	meta     services.MetadataService
	identity identity.Provider
	logger   *log.Logger
}

// NewLibraryEngine creates a LibraryEngine. meta may be nil when exports are never enriched.
func NewLibraryEngine(lib Library, meta services.MetadataService, id identity.Provider, logger *log.Logger) *LibraryEngine {
	return &LibraryEngine{
		lib:      lib,
		meta:     meta,
		identity: id,
		logger:   logger,
	}
}

// sendProgress sends a progress update through the channel without blocking.
func (e *LibraryEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

func (e *LibraryEngine) userName() string {
	if u := e.identity.CurrentUser(); u != nil {
		return u.Name()
	}
	return ""
}

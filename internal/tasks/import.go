package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/desertthunder/moviebox/internal/library"
	"github.com/desertthunder/moviebox/internal/models"
	"github.com/desertthunder/moviebox/internal/shared"
)

// ExportFile is the JSON document written by a json export and read by [LibraryEngine.Import].
const ExportFile = "library.json"

// ImportResult counts the records read from an export.
type ImportResult struct {
	Path     string
	Saved    int
	Progress int
	Ratings  int
	History  int
	Lists    int
}

// Import merges a JSON export into the signed-in user's library.
//
// path may name the export file or a directory containing library.json.
// Records from the file replace stored records for the same movie; everything else is kept.
func (e *LibraryEngine) Import(ctx context.Context, prog chan<- ProgressUpdate, path string) (*ImportResult, error) {
	if e.lib == nil {
		return nil, fmt.Errorf("%w: library not initialized", shared.ErrServiceUnavailable)
	}
	if !e.identity.IsAuthenticated() {
		return nil, shared.ErrNotAuthenticated
	}

	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, ExportFile)
	}

	e.sendProgress(prog, importUpdate(1, 3, fmt.Sprintf("Reading %s...", path)))
	export, err := ReadExport(path)
	if err != nil {
		return nil, err
	}

	e.sendProgress(prog, importUpdate(2, 3, fmt.Sprintf("Merging %d saved movies...", len(export.Saved))))
	snap := library.Snapshot{
		Saved:    export.Saved,
		Progress: export.Progress,
		Ratings:  export.Ratings,
		History:  export.History,
		Lists:    export.Lists,
	}
	if err := e.lib.Restore(ctx, snap); err != nil {
		return nil, fmt.Errorf("failed to restore library: %w", err)
	}

	result := &ImportResult{
		Path:     path,
		Saved:    len(export.Saved),
		Progress: len(export.Progress),
		Ratings:  len(export.Ratings),
		History:  len(export.History),
		Lists:    len(export.Lists),
	}
	e.sendProgress(prog, importUpdate(3, 3, "Import complete"))
	e.logger.Info("library imported", "path", path, "saved", result.Saved, "ratings", result.Ratings)
	return result, nil
}

// ReadExport reads and validates a JSON export document.
func ReadExport(path string) (*models.LibraryExport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read export: %w", err)
	}

	var export models.LibraryExport
	if err := json.Unmarshal(data, &export); err != nil {
		return nil, fmt.Errorf("%w: export is not valid JSON: %v", shared.ErrInvalidInput, err)
	}
	if export.Version > models.ExportVersion {
		return nil, fmt.Errorf("%w: export version %d is newer than supported version %d", shared.ErrInvalidInput, export.Version, models.ExportVersion)
	}
	return &export, nil
}

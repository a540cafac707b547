package formatter

import (
	"fmt"
	"os"
	"time"

	"github.com/desertthunder/moviebox/internal/shared"
)

// ManifestFile is the name of the manifest written at the root of an export directory.
const ManifestFile = "export_manifest.json"

// ExportManifest summarizes a library export run.
type ExportManifest struct {
	ID              string            `json:"id"`
	Format          string            `json:"format"`
	User            string            `json:"user"`
	ExportedAt      time.Time         `json:"exported_at"`
	TotalMovies     int               `json:"total_movies"`
	EnrichedMovies  int               `json:"enriched_movies"`
	FailedEnrich    int               `json:"failed_enrich"`
	OutputDirectory string            `json:"output_directory"`
	Files           []string          `json:"files"`
	Failures        []ManifestFailure `json:"failures,omitempty"`
}

// ManifestFailure records a movie whose metadata could not be fetched.
type ManifestFailure struct {
	MovieID int    `json:"movie_id"`
	Title   string `json:"title"`
	Error   string `json:"error"`
}

// WriteExportManifest writes m as indented JSON to path, assigning an ID when m has none.
func WriteExportManifest(m *ExportManifest, path string) error {
	if m.ID == "" {
		m.ID = shared.GenerateID()
	}
	if m.Files == nil {
		m.Files = []string{}
	}

	data, err := shared.MarshalJSON(m, true)
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}

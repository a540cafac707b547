package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/desertthunder/moviebox/internal/formatter"
	"github.com/desertthunder/moviebox/internal/models"
	"github.com/desertthunder/moviebox/internal/shared"
	"golang.org/x/time/rate"
)

// Export formats accepted by [LibraryEngine.BulkExport].
const (
	FormatJSON     = "json"
	FormatCSV      = "csv"
	FormatMarkdown = "markdown"
	FormatText     = "txt"
)

// Formats lists the supported export formats.
var Formats = []string{FormatJSON, FormatCSV, FormatMarkdown, FormatText}

// BulkExportOpts contains configuration for library exports.
type BulkExportOpts struct {
	Format     string                   // Export format: json, csv, markdown, txt (default: json)
	OutputDir  string                   // Output directory (default: moviebox_export_{epoch})
	NumWorkers int                      // Concurrent enrichment workers (default: 5, max: 10)
	RateLimit  float64                  // TMDB requests per second (default: 5)
	Enrich     bool                     // Fetch TMDB details for every saved movie
	PosterURL  func(path string) string // Builds poster URLs for markdown exports; nil skips posters
}

// EnrichResult is the outcome of fetching details for one saved movie.
type EnrichResult struct {
	MovieID int
	Title   string
	Details *models.MovieDetails
	Error   error
}

// BulkExportResult describes a finished export.
type BulkExportResult struct {
	Export          *models.LibraryExport
	OutputDirectory string
	Files           []string
	Enriched        int
	Failed          []EnrichResult
	ManifestPath    string
}

type enrichJob struct {
	movie models.Movie
}

// BulkExport writes the signed-in user's library to opts.OutputDir.
//
// With opts.Enrich set, saved movies are enriched concurrently by a bounded worker pool that shares one rate limiter.
// A failed lookup is recorded in the result and manifest and does not fail the export.
func (e *LibraryEngine) BulkExport(ctx context.Context, prog chan<- ProgressUpdate, opts BulkExportOpts) (*BulkExportResult, error) {
	if e.lib == nil {
		return nil, fmt.Errorf("%w: library not initialized", shared.ErrServiceUnavailable)
	}
	if !e.identity.IsAuthenticated() {
		return nil, shared.ErrNotAuthenticated
	}
	if opts.Enrich && e.meta == nil {
		return nil, fmt.Errorf("%w: metadata service not initialized", shared.ErrServiceUnavailable)
	}

	if opts.Format == "" {
		opts.Format = FormatJSON
	}
	if !slices.Contains(Formats, opts.Format) {
		return nil, fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidFlag, opts.Format)
	}
	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("moviebox_export_%d", time.Now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 5
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5.0
	}

	snap, err := e.lib.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read library: %w", err)
	}
	e.sendProgress(prog, snapshotUpdate(len(snap.Saved)))

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	export := &models.LibraryExport{
		Version:    models.ExportVersion,
		User:       e.userName(),
		ExportedAt: time.Now().UTC(),
		Saved:      snap.Saved,
		Progress:   snap.Progress,
		Ratings:    snap.Ratings,
		History:    snap.History,
		Lists:      snap.Lists,
		Stats:      e.lib.GetStats(ctx),
	}
	result := &BulkExportResult{
		Export:          export,
		OutputDirectory: opts.OutputDir,
	}

	if opts.Enrich && len(snap.Saved) > 0 {
		export.Details = make(map[int]*models.MovieDetails, len(snap.Saved))
		for _, res := range e.enrich(ctx, prog, snap.Saved, opts) {
			if res.Error != nil {
				result.Failed = append(result.Failed, res)
				continue
			}
			export.Details[res.MovieID] = res.Details
			result.Enriched++
		}
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("export cancelled: %w", err)
		}
	}

	files, err := e.writeExport(export, opts)
	if err != nil {
		return nil, err
	}
	result.Files = files
	e.sendProgress(prog, writeUpdate(opts.Format, len(files)))

	manifest := &formatter.ExportManifest{
		Format:          opts.Format,
		User:            export.User,
		ExportedAt:      export.ExportedAt,
		TotalMovies:     len(export.Saved),
		EnrichedMovies:  result.Enriched,
		FailedEnrich:    len(result.Failed),
		OutputDirectory: opts.OutputDir,
		Files:           files,
	}
	for _, f := range result.Failed {
		manifest.Failures = append(manifest.Failures, formatter.ManifestFailure{
			MovieID: f.MovieID,
			Title:   f.Title,
			Error:   f.Error.Error(),
		})
	}

	manifestPath := filepath.Join(opts.OutputDir, formatter.ManifestFile)
	if err := formatter.WriteExportManifest(manifest, manifestPath); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath

	e.logger.Info("library exported", "format", opts.Format, "dir", opts.OutputDir, "movies", len(export.Saved), "enriched", result.Enriched)
	return result, nil
}

// enrich fetches details for every saved movie and returns one result per movie that was attempted.
func (e *LibraryEngine) enrich(ctx context.Context, prog chan<- ProgressUpdate, saved []models.SavedMovie, opts BulkExportOpts) []EnrichResult {
	total := len(saved)
	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	jobs := make(chan enrichJob, total)
	results := make(chan EnrichResult, total)

	var wg sync.WaitGroup
	for range opts.NumWorkers {
		wg.Add(1)
		go e.enrichWorker(ctx, &wg, limiter, jobs, results)
	}

	e.sendProgress(prog, enrichStartUpdate(total))
	for _, s := range saved {
		jobs <- enrichJob{movie: s.Movie}
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	out := make([]EnrichResult, 0, total)
	completed := 0
	for res := range results {
		completed++
		out = append(out, res)

		if res.Error != nil {
			e.logger.Warn("failed to enrich movie", "movie", res.MovieID, "err", res.Error)
			e.sendProgress(prog, enrichFailedUpdate(completed, total, res.Title, res.Error))
		} else {
			e.sendProgress(prog, enrichCompletedUpdate(completed, total, res.Title, res.Details))
		}
	}
	return out
}

// enrichWorker fetches details for jobs until the channel closes or ctx is done.
func (e *LibraryEngine) enrichWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	limiter *rate.Limiter,
	jobs <-chan enrichJob,
	results chan<- EnrichResult,
) {
	defer wg.Done()

	for job := range jobs {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if err := limiter.Wait(ctx); err != nil {
			return
		}

		res := EnrichResult{MovieID: job.movie.ID, Title: job.movie.Title}
		details, err := e.meta.Details(ctx, job.movie.ID)
		if err != nil {
			res.Error = fmt.Errorf("failed to fetch details: %w", err)
		} else {
			res.Details = details
		}
		results <- res
	}
}

// writeExport renders export in opts.Format and returns the files written.
func (e *LibraryEngine) writeExport(export *models.LibraryExport, opts BulkExportOpts) ([]string, error) {
	switch opts.Format {
	case FormatCSV:
		res, err := formatter.WriteCSVExport(export, filepath.Join(opts.OutputDir, "library"))
		if err != nil {
			return nil, fmt.Errorf("CSV export failed: %w", err)
		}
		return []string{res.MoviesFile, res.MetadataFile}, nil

	case FormatMarkdown:
		var posters map[int]string
		if opts.PosterURL != nil {
			posters = make(map[int]string)
			for _, s := range export.Saved {
				if url := opts.PosterURL(s.Movie.PosterPath); url != "" {
					posters[s.Movie.ID] = url
				}
			}
		}

		res, err := formatter.WriteMarkdownExport(export, opts.OutputDir, posters)
		if err != nil {
			return nil, fmt.Errorf("markdown export failed: %w", err)
		}
		return res.Files, nil

	case FormatText:
		path, err := formatter.WriteTextExport(export, filepath.Join(opts.OutputDir, "library.txt"))
		if err != nil {
			return nil, fmt.Errorf("text export failed: %w", err)
		}
		return []string{path}, nil

	default:
		path, err := formatter.WriteJSONExport(export, filepath.Join(opts.OutputDir, ExportFile))
		if err != nil {
			return nil, fmt.Errorf("JSON export failed: %w", err)
		}
		return []string{path}, nil
	}
}

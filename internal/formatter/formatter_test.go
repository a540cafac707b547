package formatter

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/moviebox/internal/models"
	tu "github.com/desertthunder/moviebox/internal/testing"
)

func sampleExport() *models.LibraryExport {
	saved := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	return &models.LibraryExport{
		Version:    models.ExportVersion,
		User:       "Tyler",
		ExportedAt: time.Date(2025, 3, 2, 9, 0, 0, 0, time.UTC),
		Saved: []models.SavedMovie{
			{Movie: models.Movie{ID: 550, Title: "Fight Club", ReleaseDate: "1999-10-15", PosterPath: "/fc.jpg"}, SavedAt: saved, Category: models.Favorites},
			{Movie: models.Movie{ID: 603, Title: "The Matrix", ReleaseDate: "1999-03-30"}, SavedAt: saved, Category: models.Watchlist},
			{Movie: models.Movie{ID: 13, Title: "Forrest Gump, Part One"}, SavedAt: saved, Category: models.Watched},
		},
		Progress: []models.WatchProgress{
			{MovieID: 603, Progress: 50, Duration: 8160, WatchedAt: saved},
			{MovieID: 13, Progress: 100, Duration: 8520, WatchedAt: saved, Completed: true},
		},
		Ratings: []models.UserRating{
			{MovieID: 550, Rating: 5, RatedAt: saved},
		},
		History: []int{13, 999},
		Stats:   models.Stats{TotalSaved: 3, Favorites: 1, Watchlist: 1, Watched: 1, TotalWatchTime: 210, AverageRating: 5},
	}
}

func enrichedExport() *models.LibraryExport {
	export := sampleExport()
	export.Details = map[int]*models.MovieDetails{
		550: {
			Movie:   export.Saved[0].Movie,
			Runtime: 139,
			Genres:  []models.Genre{{ID: 18, Name: "Drama"}, {ID: 53, Name: "Thriller"}},
			Credits: &models.Credits{Crew: []models.CrewMember{{Name: "David Fincher", Job: "Director"}}},
		},
	}
	return export
}

func TestExporters(t *testing.T) {
	t.Run("MovieLine", func(t *testing.T) {
		if got := MovieLine(models.Movie{Title: "Fight Club", ReleaseDate: "1999-10-15"}); got != "Fight Club (1999)" {
			t.Errorf("MovieLine() = %q", got)
		}
		if got := MovieLine(models.Movie{Title: "Untitled"}); got != "Untitled" {
			t.Errorf("MovieLine() without year = %q", got)
		}
	})

	t.Run("ExportToCSV", func(t *testing.T) {
		data, err := ExportToCSV(sampleExport())
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}

		output := string(data)
		if !strings.Contains(output, "ID,Title,Year,Category,SavedAt,Rating,Progress,Runtime,Genres,Directors") {
			t.Errorf("CSV missing headers, got: %s", output)
		}
		if !strings.Contains(output, "550,Fight Club,1999,favorites,2025-03-01T12:00:00Z,5,,,,") {
			t.Errorf("CSV missing favorite row, got: %s", output)
		}
		if !strings.Contains(output, "603,The Matrix,1999,watchlist,2025-03-01T12:00:00Z,,50.0,,,") {
			t.Errorf("CSV missing progress column, got: %s", output)
		}
		if !strings.Contains(output, `"Forrest Gump, Part One"`) {
			t.Errorf("CSV should quote titles containing commas, got: %s", output)
		}

		lines := strings.Split(strings.TrimSpace(output), "\n")
		if len(lines) != 4 {
			t.Errorf("expected header plus 3 rows, got %d lines", len(lines))
		}
	})

	t.Run("ExportToCSV enriched", func(t *testing.T) {
		data, err := ExportToCSV(enrichedExport())
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}
		if !strings.Contains(string(data), ",139,Drama; Thriller,David Fincher") {
			t.Errorf("CSV missing enriched columns, got: %s", data)
		}
	})

	t.Run("ExportToMarkdown", func(t *testing.T) {
		t.Run("without posters", func(t *testing.T) {
			data, err := ExportToMarkdown(sampleExport(), nil)
			if err != nil {
				t.Fatalf("ExportToMarkdown failed: %v", err)
			}

			output := string(data)
			for _, want := range []string{
				"# Tyler's Library",
				"**Exported**: 2025-03-02",
				"- **Saved**: 3 (1 favorites, 1 watchlist, 1 watched)",
				"- **Watch time**: 3h 30m",
				"## Favorites",
				"1. Fight Club (1999) ★★★★★",
				"## Watchlist",
				"## Watched",
				"## In Progress",
				"- The Matrix: 50% (1:08:00 of 2:16:00)",
				"## Watch History",
				"1. Forrest Gump, Part One",
				"2. Movie #999",
			} {
				if !strings.Contains(output, want) {
					t.Errorf("Markdown missing %q\n%s", want, output)
				}
			}
			if strings.Contains(output, "![") {
				t.Error("Markdown should not reference images without posters")
			}
		})

		t.Run("with posters", func(t *testing.T) {
			data, err := ExportToMarkdown(enrichedExport(), map[int]string{550: "posters/550.jpg"})
			if err != nil {
				t.Fatalf("ExportToMarkdown failed: %v", err)
			}

			output := string(data)
			if !strings.Contains(output, "![Fight Club](posters/550.jpg)") {
				t.Errorf("Markdown missing poster reference\n%s", output)
			}
			if !strings.Contains(output, "[2h 19m]") {
				t.Errorf("Markdown missing runtime\n%s", output)
			}
		})

		t.Run("empty library", func(t *testing.T) {
			data, err := ExportToMarkdown(&models.LibraryExport{}, nil)
			if err != nil {
				t.Fatalf("ExportToMarkdown failed: %v", err)
			}
			output := string(data)
			if !strings.Contains(output, "# MovieBox Library") {
				t.Errorf("expected default title, got %s", output)
			}
			if strings.Contains(output, "## Favorites") || strings.Contains(output, "## Watch History") {
				t.Errorf("empty sections should be skipped, got %s", output)
			}
		})
	})

	t.Run("ExportToText", func(t *testing.T) {
		data, err := ExportToText(sampleExport())
		if err != nil {
			t.Fatalf("ExportToText failed: %v", err)
		}

		output := string(data)
		for _, want := range []string{"User: Tyler", "Saved: 3", "Favorites:", "1. Fight Club (1999)", "Watchlist:", "1. The Matrix (1999)"} {
			if !strings.Contains(output, want) {
				t.Errorf("Text missing %q\n%s", want, output)
			}
		}
		if strings.Contains(output, "List:") {
			t.Errorf("expected no list section without lists\n%s", output)
		}
	})

	t.Run("ExportToText With Lists", func(t *testing.T) {
		export := sampleExport()
		export.Lists = []models.MovieList{{
			ID:   "l1",
			Name: "Heists",
			Movies: []models.ListMovie{
				{MovieID: 107, Title: "Snatch"},
				{MovieID: 161, Title: "Ocean's Eleven"},
			},
		}}

		data, err := ExportToText(export)
		if err != nil {
			t.Fatalf("ExportToText failed: %v", err)
		}

		output := string(data)
		for _, want := range []string{"List: Heists (2)", "1. Snatch", "2. Ocean's Eleven"} {
			if !strings.Contains(output, want) {
				t.Errorf("Text missing %q\n%s", want, output)
			}
		}
	})

	t.Run("ToMetadataJSON", func(t *testing.T) {
		data, err := ToMetadataJSON(enrichedExport())
		if err != nil {
			t.Fatalf("ToMetadataJSON failed: %v", err)
		}

		var meta map[string]any
		if err := json.Unmarshal(data, &meta); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if meta["user"] != "Tyler" {
			t.Errorf("expected user Tyler, got %v", meta["user"])
		}
		if meta["enriched"] != true {
			t.Errorf("expected enriched true, got %v", meta["enriched"])
		}
		if _, ok := meta["saved"]; ok {
			t.Error("metadata should not include the saved list")
		}
	})

	t.Run("ExportToJSON", func(t *testing.T) {
		data, err := ExportToJSON(sampleExport())
		if err != nil {
			t.Fatalf("ExportToJSON failed: %v", err)
		}

		var got models.LibraryExport
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if len(got.Saved) != 3 || got.Saved[1].Category != models.Watchlist {
			t.Errorf("unexpected saved list: %+v", got.Saved)
		}
		if len(got.History) != 2 || got.History[0] != 13 {
			t.Errorf("unexpected history: %v", got.History)
		}
		if strings.Contains(string(data), `"details"`) {
			t.Error("details should be omitted when not enriched")
		}
	})
}

func TestDownloadImage(t *testing.T) {
	t.Run("EmptyURL", func(t *testing.T) {
		_, err := DownloadImage("")
		if err == nil {
			t.Error("DownloadImage with empty URL should return error")
		}
	})

	t.Run("Success", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("jpeg-bytes"))
		}))
		defer srv.Close()

		data, err := DownloadImage(srv.URL + "/w500/fc.jpg")
		if err != nil {
			t.Fatalf("DownloadImage failed: %v", err)
		}
		if string(data) != "jpeg-bytes" {
			t.Errorf("unexpected body %q", data)
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		defer srv.Close()

		if _, err := DownloadImage(srv.URL); err == nil {
			t.Error("expected error for 404")
		}
	})
}

func TestWriters(t *testing.T) {
	t.Run("WriteCSVExport", func(t *testing.T) {
		t.Run("WithDefaultPath", func(t *testing.T) {
			t.Chdir(t.TempDir())

			result, err := WriteCSVExport(sampleExport(), "")
			if err != nil {
				t.Fatalf("WriteCSVExport failed: %v", err)
			}

			if result.MoviesFile != "library_movies.csv" {
				t.Errorf("Expected movies file 'library_movies.csv', got '%s'", result.MoviesFile)
			}
			if result.MetadataFile != "library_metadata.json" {
				t.Errorf("Expected metadata file 'library_metadata.json', got '%s'", result.MetadataFile)
			}

			tu.AssertFileExists(t, result.MoviesFile)
			tu.AssertFileExists(t, result.MetadataFile)

			if !strings.Contains(tu.MustReadFile(t, result.MoviesFile), "Fight Club") {
				t.Errorf("CSV missing movie data")
			}
			if !strings.Contains(tu.MustReadFile(t, result.MetadataFile), `"totalSaved": 3`) {
				t.Errorf("Metadata JSON missing stats")
			}
		})

		t.Run("WithCustomPath", func(t *testing.T) {
			base := filepath.Join(t.TempDir(), "custom_export")

			result, err := WriteCSVExport(sampleExport(), base)
			if err != nil {
				t.Fatalf("WriteCSVExport failed: %v", err)
			}

			if result.MoviesFile != base+"_movies.csv" {
				t.Errorf("unexpected movies file %q", result.MoviesFile)
			}
			tu.AssertFileExists(t, result.MoviesFile)
			tu.AssertFileExists(t, result.MetadataFile)
		})

		t.Run("InvalidPath", func(t *testing.T) {
			base := filepath.Join(t.TempDir(), "missing", "dir", "export")
			if _, err := WriteCSVExport(sampleExport(), base); err == nil {
				t.Error("expected error writing into a missing directory")
			}
		})
	})

	t.Run("WriteMarkdownExport", func(t *testing.T) {
		t.Run("WithDefaultDirectory", func(t *testing.T) {
			t.Chdir(t.TempDir())

			result, err := WriteMarkdownExport(sampleExport(), "", nil)
			if err != nil {
				t.Fatalf("WriteMarkdownExport failed: %v", err)
			}

			if result.Directory != "library" {
				t.Errorf("Expected directory 'library', got '%s'", result.Directory)
			}
			tu.AssertDirExists(t, "library")
			tu.AssertFileExists(t, filepath.Join("library", "README.md"))
			if len(result.Files) != 1 {
				t.Errorf("expected only README.md, got %v", result.Files)
			}
		})

		t.Run("WithPosters", func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path == "/missing.jpg" {
					http.NotFound(w, r)
					return
				}
				w.Write([]byte("poster"))
			}))
			defer srv.Close()

			dir := filepath.Join(t.TempDir(), "md")
			result, err := WriteMarkdownExport(sampleExport(), dir, map[int]string{
				550: srv.URL + "/fc.jpg",
				603: srv.URL + "/missing.jpg",
			})
			if err != nil {
				t.Fatalf("WriteMarkdownExport failed: %v", err)
			}

			if len(result.Posters) != 1 {
				t.Fatalf("expected 1 poster, got %v", result.Posters)
			}
			tu.AssertFileExists(t, filepath.Join(dir, "posters", "550.jpg"))
			if _, err := os.Stat(filepath.Join(dir, "posters", "603.jpg")); !os.IsNotExist(err) {
				t.Error("failed poster should not be written")
			}

			readme := tu.MustReadFile(t, filepath.Join(dir, "README.md"))
			if !strings.Contains(readme, "![Fight Club](posters/550.jpg)") {
				t.Errorf("README missing poster link\n%s", readme)
			}
			if strings.Contains(readme, "603.jpg") {
				t.Error("README should not link a failed poster")
			}
		})
	})

	t.Run("WriteTextExport", func(t *testing.T) {
		t.Run("WithDefaultPath", func(t *testing.T) {
			t.Chdir(t.TempDir())

			path, err := WriteTextExport(sampleExport(), "")
			if err != nil {
				t.Fatalf("WriteTextExport failed: %v", err)
			}
			if path != "library.txt" {
				t.Errorf("Expected 'library.txt', got '%s'", path)
			}
			tu.AssertFileExists(t, path)
		})

		t.Run("WithCustomPath", func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "movies.txt")
			got, err := WriteTextExport(sampleExport(), path)
			if err != nil {
				t.Fatalf("WriteTextExport failed: %v", err)
			}
			if got != path {
				t.Errorf("Expected %q, got %q", path, got)
			}
			if !strings.Contains(tu.MustReadFile(t, path), "Fight Club") {
				t.Error("text file missing content")
			}
		})
	})

	t.Run("WriteJSONExport", func(t *testing.T) {
		t.Run("WithDefaultPath", func(t *testing.T) {
			t.Chdir(t.TempDir())

			path, err := WriteJSONExport(sampleExport(), "")
			if err != nil {
				t.Fatalf("WriteJSONExport failed: %v", err)
			}
			if path != "library.json" {
				t.Errorf("Expected 'library.json', got '%s'", path)
			}
			tu.AssertFileExists(t, path)
		})

		t.Run("WithCustomPath", func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "backup.json")
			if _, err := WriteJSONExport(enrichedExport(), path); err != nil {
				t.Fatalf("WriteJSONExport failed: %v", err)
			}

			var got models.LibraryExport
			if err := json.Unmarshal([]byte(tu.MustReadFile(t, path)), &got); err != nil {
				t.Fatalf("invalid JSON: %v", err)
			}
			if got.Details[550] == nil || got.Details[550].Runtime != 139 {
				t.Errorf("details not preserved: %+v", got.Details)
			}
		})
	})

	t.Run("WriteExportManifest", func(t *testing.T) {
		t.Run("SuccessfulExport", func(t *testing.T) {
			path := filepath.Join(t.TempDir(), ManifestFile)
			m := &ExportManifest{
				Format:          "csv",
				User:            "Tyler",
				TotalMovies:     3,
				EnrichedMovies:  3,
				OutputDirectory: "exports",
				Files:           []string{"exports/library_movies.csv", "exports/library_metadata.json"},
			}

			if err := WriteExportManifest(m, path); err != nil {
				t.Fatalf("WriteExportManifest failed: %v", err)
			}
			if m.ID == "" {
				t.Error("manifest ID should be assigned")
			}

			content := tu.MustReadFile(t, path)
			for _, want := range []string{`"format": "csv"`, `"total_movies": 3`, `"enriched_movies": 3`, "library_movies.csv"} {
				if !strings.Contains(content, want) {
					t.Errorf("Manifest missing %s\n%s", want, content)
				}
			}
			if strings.Contains(content, "failures") {
				t.Error("failures should be omitted when empty")
			}
		})

		t.Run("WithFailures", func(t *testing.T) {
			path := filepath.Join(t.TempDir(), ManifestFile)
			m := &ExportManifest{
				ID:           "fixed",
				Format:       "markdown",
				TotalMovies:  2,
				FailedEnrich: 1,
				Failures:     []ManifestFailure{{MovieID: 603, Title: "The Matrix", Error: "movie not found"}},
			}

			if err := WriteExportManifest(m, path); err != nil {
				t.Fatalf("WriteExportManifest failed: %v", err)
			}

			var got ExportManifest
			if err := json.Unmarshal([]byte(tu.MustReadFile(t, path)), &got); err != nil {
				t.Fatalf("invalid JSON: %v", err)
			}
			if got.ID != "fixed" {
				t.Errorf("existing ID should be kept, got %s", got.ID)
			}
			if got.FailedEnrich != 1 || len(got.Failures) != 1 || got.Failures[0].Error != "movie not found" {
				t.Errorf("unexpected failures: %+v", got)
			}
			if got.Files == nil {
				t.Error("files should encode as an empty list")
			}
		})
	})
}

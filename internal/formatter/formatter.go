// package formatter renders library exports to CSV, Markdown, plain text and JSON and writes them to disk
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/moviebox/internal/models"
	"github.com/desertthunder/moviebox/internal/shared"
)

const dateLayout = "2006-01-02"

// MovieLine renders a saved movie as "Title (Year)".
func MovieLine(m models.Movie) string {
	if y := m.Year(); y != "" {
		return fmt.Sprintf("%s (%s)", m.Title, y)
	}
	return m.Title
}

// ExportToCSV converts a LibraryExport to CSV with one row per saved movie.
//
// Columns: ID, Title, Year, Category, SavedAt, Rating, Progress, Runtime, Genres, Directors.
// Runtime, Genres and Directors are only filled for enriched exports.
func ExportToCSV(export *models.LibraryExport) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Title", "Year", "Category", "SavedAt", "Rating", "Progress", "Runtime", "Genres", "Directors"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, s := range export.Saved {
		rating := ""
		if r := export.Rating(s.Movie.ID); r > 0 {
			rating = strconv.Itoa(r)
		}
		progress := ""
		if p := export.ProgressFor(s.Movie.ID); p != nil {
			progress = strconv.FormatFloat(p.Progress, 'f', 1, 64)
		}

		var runtime, genres, directors string
		if d := export.Details[s.Movie.ID]; d != nil {
			if d.Runtime > 0 {
				runtime = strconv.Itoa(d.Runtime)
			}
			genres = strings.Join(d.GenreNames(), "; ")
			if d.Credits != nil {
				directors = strings.Join(d.Credits.Directors(), "; ")
			}
		}

		record := []string{
			strconv.Itoa(s.Movie.ID),
			s.Movie.Title,
			s.Movie.Year(),
			s.Category.String(),
			s.SavedAt.UTC().Format(time.RFC3339),
			rating,
			progress,
			runtime,
			genres,
			directors,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a LibraryExport to Markdown.
//
// posters maps movie ids to image paths relative to the document; movies without an entry get no image.
func ExportToMarkdown(export *models.LibraryExport, posters map[int]string) ([]byte, error) {
	var buf bytes.Buffer

	title := "MovieBox Library"
	if export.User != "" {
		title = fmt.Sprintf("%s's Library", export.User)
	}
	fmt.Fprintf(&buf, "# %s\n\n", title)
	fmt.Fprintf(&buf, "**Exported**: %s\n\n", export.ExportedAt.UTC().Format(dateLayout))

	st := export.Stats
	buf.WriteString("## Stats\n\n")
	fmt.Fprintf(&buf, "- **Saved**: %d (%d favorites, %d watchlist, %d watched)\n", st.TotalSaved, st.Favorites, st.Watchlist, st.Watched)
	fmt.Fprintf(&buf, "- **Watch time**: %s\n", shared.FormatRuntime(st.TotalWatchTime))
	fmt.Fprintf(&buf, "- **Average rating**: %.1f\n\n", st.AverageRating)

	for _, cat := range models.Categories {
		movies := savedIn(export.Saved, cat)
		if len(movies) == 0 {
			continue
		}
		fmt.Fprintf(&buf, "## %s\n\n", categoryTitle(cat))
		for i, s := range movies {
			fmt.Fprintf(&buf, "%d. %s", i+1, MovieLine(s.Movie))
			if r := export.Rating(s.Movie.ID); r > 0 {
				fmt.Fprintf(&buf, " %s", strings.Repeat("★", r))
			}
			if d := export.Details[s.Movie.ID]; d != nil && d.Runtime > 0 {
				fmt.Fprintf(&buf, " [%s]", shared.FormatRuntime(d.Runtime))
			}
			buf.WriteString("\n")
			if p, ok := posters[s.Movie.ID]; ok && p != "" {
				fmt.Fprintf(&buf, "\n   ![%s](%s)\n\n", s.Movie.Title, p)
			}
		}
		buf.WriteString("\n")
	}

	var inProgress []models.WatchProgress
	for _, p := range export.Progress {
		if !p.Completed && p.Progress > 0 {
			inProgress = append(inProgress, p)
		}
	}
	if len(inProgress) > 0 {
		buf.WriteString("## In Progress\n\n")
		for _, p := range inProgress {
			fmt.Fprintf(&buf, "- %s: %.0f%% (%s of %s)\n",
				movieName(export, p.MovieID), p.Progress,
				shared.FormatDuration(p.Position()), shared.FormatDuration(p.Duration))
		}
		buf.WriteString("\n")
	}

	if len(export.History) > 0 {
		buf.WriteString("## Watch History\n\n")
		for i, id := range export.History {
			fmt.Fprintf(&buf, "%d. %s\n", i+1, movieName(export, id))
		}
	}

	return buf.Bytes(), nil
}

// ExportToText converts a LibraryExport to plain text
func ExportToText(export *models.LibraryExport) ([]byte, error) {
	var buf bytes.Buffer

	if export.User != "" {
		fmt.Fprintf(&buf, "User: %s\n", export.User)
	}
	fmt.Fprintf(&buf, "Saved: %d\n\n", len(export.Saved))

	for _, cat := range models.Categories {
		movies := savedIn(export.Saved, cat)
		if len(movies) == 0 {
			continue
		}
		fmt.Fprintf(&buf, "%s:\n", categoryTitle(cat))
		for i, s := range movies {
			fmt.Fprintf(&buf, "%d. %s\n", i+1, MovieLine(s.Movie))
		}
		buf.WriteString("\n")
	}

	for _, list := range export.Lists {
		fmt.Fprintf(&buf, "List: %s (%d)\n", list.Name, list.MoviesCount())
		for i, m := range list.Movies {
			fmt.Fprintf(&buf, "%d. %s\n", i+1, m.Title)
		}
		buf.WriteString("\n")
	}

	return buf.Bytes(), nil
}

// ExportToJSON renders the full export document.
func ExportToJSON(export *models.LibraryExport) ([]byte, error) {
	return shared.MarshalJSON(export, true)
}

// ToMetadataJSON generates a JSON summary of the export (owner, date and stats, without lists)
func ToMetadataJSON(export *models.LibraryExport) ([]byte, error) {
	meta := struct {
		Version    int          `json:"version"`
		User       string       `json:"user"`
		ExportedAt time.Time    `json:"exportedAt"`
		Stats      models.Stats `json:"stats"`
		Enriched   bool         `json:"enriched"`
	}{export.Version, export.User, export.ExportedAt, export.Stats, len(export.Details) > 0}
	return shared.MarshalJSON(meta, true)
}

// DownloadImage downloads an image from the given URL and returns the raw bytes
func DownloadImage(url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("empty URL provided")
	}

	client := &http.Client{
		Timeout: 30 * time.Second,
	}

	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: status %d", resp.StatusCode)
	}

	imageData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}

	return imageData, nil
}

// CSVExportResult contains the paths of files created by WriteCSVExport
type CSVExportResult struct {
	MoviesFile   string
	MetadataFile string
}

// WriteCSVExport writes {base}_movies.csv and {base}_metadata.json.
//
// base defaults to "library".
func WriteCSVExport(export *models.LibraryExport, baseFilepath string) (*CSVExportResult, error) {
	if baseFilepath == "" {
		baseFilepath = "library"
	}

	csvData, err := ExportToCSV(export)
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSV: %w", err)
	}

	moviesFile := baseFilepath + "_movies.csv"
	if err := os.WriteFile(moviesFile, csvData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write CSV file: %w", err)
	}

	metadataJSON, err := ToMetadataJSON(export)
	if err != nil {
		return nil, fmt.Errorf("failed to generate metadata JSON: %w", err)
	}

	metadataFile := baseFilepath + "_metadata.json"
	if err := os.WriteFile(metadataFile, metadataJSON, 0644); err != nil {
		return nil, fmt.Errorf("failed to write metadata file: %w", err)
	}

	return &CSVExportResult{
		MoviesFile:   moviesFile,
		MetadataFile: metadataFile,
	}, nil
}

// MarkdownExportResult contains information about files created by WriteMarkdownExport
type MarkdownExportResult struct {
	Directory string
	Files     []string
	Posters   []string
}

// WriteMarkdownExport exports the library to Markdown in a dedicated directory.
//
// posterURLs is optional; each poster that downloads is stored as posters/{id}.jpg and linked from README.md.
// A failed download is logged and the movie is rendered without an image.
func WriteMarkdownExport(export *models.LibraryExport, outputDir string, posterURLs map[int]string) (*MarkdownExportResult, error) {
	if outputDir == "" {
		outputDir = "library"
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	result := &MarkdownExportResult{
		Directory: outputDir,
		Files:     []string{},
	}

	posters := make(map[int]string, len(posterURLs))
	if len(posterURLs) > 0 {
		posterDir := filepath.Join(outputDir, "posters")
		if err := os.MkdirAll(posterDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create poster directory: %w", err)
		}

		for id, url := range posterURLs {
			imageData, err := DownloadImage(url)
			if err != nil {
				log.Warn("failed to download poster", "movie", id, "err", err)
				continue
			}

			name := fmt.Sprintf("posters/%d.jpg", id)
			path := filepath.Join(outputDir, name)
			if err := os.WriteFile(path, imageData, 0644); err != nil {
				log.Warn("failed to save poster", "movie", id, "err", err)
				continue
			}
			posters[id] = name
			result.Posters = append(result.Posters, path)
			result.Files = append(result.Files, path)
		}
	}

	mdData, err := ExportToMarkdown(export, posters)
	if err != nil {
		return nil, fmt.Errorf("failed to generate Markdown: %w", err)
	}

	mdFile := filepath.Join(outputDir, "README.md")
	if err := os.WriteFile(mdFile, mdData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write Markdown file: %w", err)
	}

	result.Files = append(result.Files, mdFile)

	return result, nil
}

// WriteTextExport exports the library to plain text.
//
// Defaults to library.txt as the filename.
func WriteTextExport(export *models.LibraryExport, filepath string) (string, error) {
	if filepath == "" {
		filepath = "library.txt"
	}

	textData, err := ExportToText(export)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if err := os.WriteFile(filepath, textData, 0644); err != nil {
		return "", fmt.Errorf("failed to write text file: %w", err)
	}

	return filepath, nil
}

// WriteJSONExport writes the full export document, the format read back by import.
//
// Defaults to library.json as the filename.
func WriteJSONExport(export *models.LibraryExport, filepath string) (string, error) {
	if filepath == "" {
		filepath = "library.json"
	}

	data, err := ExportToJSON(export)
	if err != nil {
		return "", fmt.Errorf("failed to generate JSON: %w", err)
	}

	if err := os.WriteFile(filepath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write JSON file: %w", err)
	}

	return filepath, nil
}

func savedIn(saved []models.SavedMovie, cat models.Category) []models.SavedMovie {
	var out []models.SavedMovie
	for _, s := range saved {
		if s.Category == cat {
			out = append(out, s)
		}
	}
	return out
}

func categoryTitle(c models.Category) string {
	s := c.String()
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func movieName(export *models.LibraryExport, id int) string {
	if t := export.Title(id); t != "" {
		return t
	}
	return fmt.Sprintf("Movie #%d", id)
}

package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/moviebox/internal/formatter"
	"github.com/desertthunder/moviebox/internal/models"
	"github.com/desertthunder/moviebox/internal/shared"
)

var (
	_ list.Item = savedItem{}
	_ list.Item = progressItem{}
)

// savedItem wraps [models.SavedMovie] to implement [list.Item].
type savedItem struct {
	saved    models.SavedMovie
	rating   int
	progress *models.WatchProgress
}

func (i savedItem) FilterValue() string { return i.saved.Movie.Title }
func (i savedItem) Title() string       { return formatter.MovieLine(i.saved.Movie) }
func (i savedItem) Description() string {
	parts := []string{"saved " + i.saved.SavedAt.Format("Jan 2, 2006")}
	if i.rating > 0 {
		parts = append(parts, strings.Repeat("★", i.rating))
	}
	if i.progress != nil && i.progress.Progress > 0 {
		parts = append(parts, fmt.Sprintf("%.0f%% watched", i.progress.Progress))
	}
	return strings.Join(parts, " • ")
}

// progressItem wraps [models.WatchProgress] to implement [list.Item].
type progressItem struct {
	progress models.WatchProgress
	title    string
}

func (i progressItem) FilterValue() string { return i.title }
func (i progressItem) Title() string       { return i.title }
func (i progressItem) Description() string {
	return fmt.Sprintf("%.0f%% • %s of %s • %s",
		i.progress.Progress,
		shared.FormatDuration(i.progress.Position()),
		shared.FormatDuration(i.progress.Duration),
		i.progress.WatchedAt.Format("Jan 2 15:04"),
	)
}

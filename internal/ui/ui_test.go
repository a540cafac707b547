package ui

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/moviebox/internal/identity"
	"github.com/desertthunder/moviebox/internal/library"
	"github.com/desertthunder/moviebox/internal/models"
	"github.com/desertthunder/moviebox/internal/shared"
	"github.com/desertthunder/moviebox/internal/storage"
	"github.com/desertthunder/moviebox/internal/tasks"
)

type fakeExporter struct {
	result *tasks.BulkExportResult
	err    error
}

func (f *fakeExporter) BulkExport(ctx context.Context, prog chan<- tasks.ProgressUpdate, opts tasks.BulkExportOpts) (*tasks.BulkExportResult, error) {
	prog <- tasks.ProgressUpdate{Phase: tasks.Snapshot, Step: 1, Total: 1, Message: "Read library"}
	return f.result, f.err
}

func newTestLibrary(t *testing.T) *library.Library {
	t.Helper()
	ctx := context.Background()
	u := models.NewUser(1, "tyler@example.com", "Tyler")
	u.SetID("u1")
	lib := library.New(storage.NewMemoryStore(), identity.StaticProvider{User: u}, shared.NewLogger(&bytes.Buffer{}))

	seed := []struct {
		movie models.Movie
		cat   models.Category
	}{
		{models.Movie{ID: 550, Title: "Fight Club", ReleaseDate: "1999-10-15"}, models.Favorites},
		{models.Movie{ID: 603, Title: "The Matrix"}, models.Favorites},
		{models.Movie{ID: 13, Title: "Forrest Gump"}, models.Watchlist},
	}
	for _, s := range seed {
		if err := lib.SaveMovie(ctx, s.movie, s.cat); err != nil {
			t.Fatalf("SaveMovie() error = %v", err)
		}
	}
	if err := lib.UpdateWatchProgress(ctx, 603, 40, 8160); err != nil {
		t.Fatalf("UpdateWatchProgress() error = %v", err)
	}
	if err := lib.RateMovie(ctx, 550, 5, ""); err != nil {
		t.Fatalf("RateMovie() error = %v", err)
	}
	return lib
}

// send runs msg through Update and then every command it returns, depth first.
func send(t *testing.T, m *Model, msg tea.Msg) {
	t.Helper()
	_, cmd := m.Update(msg)
	for cmd != nil {
		next := cmd()
		if next == nil {
			return
		}
		if _, ok := next.(Msg); !ok {
			return
		}
		_, cmd = m.Update(next)
	}
}

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func newTestModel(t *testing.T, exporter Exporter) (*Model, *library.Library) {
	t.Helper()
	lib := newTestLibrary(t)
	m := NewModel(context.Background(), lib, exporter, tasks.BulkExportOpts{})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	send(t, m, m.Init()())
	return m, lib
}

func TestTabs(t *testing.T) {
	t.Run("initial tab lists favorites", func(t *testing.T) {
		m, _ := newTestModel(t, nil)
		if m.tab != FavoritesTab {
			t.Fatalf("tab = %s", m.tab)
		}
		items := m.movies.Items()
		if len(items) != 2 {
			t.Fatalf("expected 2 favorites, got %d", len(items))
		}
		first := items[0].(savedItem)
		if first.Title() != "Fight Club (1999)" {
			t.Errorf("Title() = %q", first.Title())
		}
		if !strings.Contains(first.Description(), "★★★★★") {
			t.Errorf("Description() = %q, want rating", first.Description())
		}
		if !strings.Contains(items[1].(savedItem).Description(), "40% watched") {
			t.Errorf("Description() = %q, want progress", items[1].(savedItem).Description())
		}
	})

	t.Run("tab cycles forward", func(t *testing.T) {
		m, _ := newTestModel(t, nil)
		send(t, m, keyPress("tab"))
		if m.tab != WatchlistTab {
			t.Fatalf("tab = %s, want Watchlist", m.tab)
		}
		if len(m.movies.Items()) != 1 {
			t.Errorf("expected 1 watchlist movie, got %d", len(m.movies.Items()))
		}
	})

	t.Run("shift+tab wraps around", func(t *testing.T) {
		m, _ := newTestModel(t, nil)
		send(t, m, keyPress("shift+tab"))
		if m.tab != StatsTab {
			t.Fatalf("tab = %s, want Stats", m.tab)
		}
		view := m.View()
		for _, want := range []string{"Library Stats", "Saved", "3", "Average rating", "5.0"} {
			if !strings.Contains(view, want) {
				t.Errorf("stats view missing %q\n%s", want, view)
			}
		}
	})

	t.Run("continue watching", func(t *testing.T) {
		m, _ := newTestModel(t, nil)
		for range 3 {
			send(t, m, keyPress("tab"))
		}
		if m.tab != ContinueTab {
			t.Fatalf("tab = %s, want Continue Watching", m.tab)
		}
		items := m.movies.Items()
		if len(items) != 1 {
			t.Fatalf("expected 1 item, got %d", len(items))
		}
		item := items[0].(progressItem)
		if item.Title() != "The Matrix" {
			t.Errorf("Title() = %q", item.Title())
		}
		if !strings.HasPrefix(item.Description(), "40% • 54:24 of 2:16:00") {
			t.Errorf("Description() = %q", item.Description())
		}
	})

	t.Run("tab names", func(t *testing.T) {
		want := []string{"Favorites", "Watchlist", "Watched", "Continue Watching", "Stats"}
		for i, tab := range Tabs {
			if tab.String() != want[i] {
				t.Errorf("Tabs[%d] = %q, want %q", i, tab, want[i])
			}
		}
		if _, ok := StatsTab.Category(); ok {
			t.Error("stats tab has no category")
		}
	})
}

func TestRemove(t *testing.T) {
	ctx := context.Background()

	t.Run("confirm removes", func(t *testing.T) {
		m, lib := newTestModel(t, nil)
		send(t, m, keyPress("d"))
		if m.view != ConfirmView {
			t.Fatalf("view = %d, want ConfirmView", m.view)
		}
		if !strings.Contains(m.View(), "Remove 'Fight Club'") {
			t.Errorf("confirm view = %q", m.View())
		}

		send(t, m, keyPress("y"))
		if m.view != LibraryView {
			t.Errorf("view = %d, want LibraryView", m.view)
		}
		if lib.IsMovieSaved(ctx, 550) {
			t.Error("movie should be removed")
		}
		if len(m.movies.Items()) != 1 {
			t.Errorf("list should reload, got %d items", len(m.movies.Items()))
		}
		if !strings.Contains(m.status, "Removed Fight Club") {
			t.Errorf("status = %q", m.status)
		}
	})

	t.Run("cancel keeps the movie", func(t *testing.T) {
		m, lib := newTestModel(t, nil)
		send(t, m, keyPress("d"))
		send(t, m, keyPress("n"))
		if m.view != LibraryView || m.pending != nil {
			t.Errorf("cancel should return to library view")
		}
		if !lib.IsMovieSaved(ctx, 550) {
			t.Error("movie should still be saved")
		}
	})

	t.Run("ignored on continue watching", func(t *testing.T) {
		m, _ := newTestModel(t, nil)
		for range 3 {
			send(t, m, keyPress("tab"))
		}
		send(t, m, keyPress("d"))
		if m.view != LibraryView {
			t.Errorf("d should not open a confirmation for progress items")
		}
	})
}

func TestExport(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		exporter := &fakeExporter{result: &tasks.BulkExportResult{
			Export:          &models.LibraryExport{Saved: make([]models.SavedMovie, 3)},
			OutputDirectory: "out",
			Files:           []string{"out/library.json"},
			ManifestPath:    "out/export_manifest.json",
			Failed:          []tasks.EnrichResult{{MovieID: 13, Title: "Forrest Gump", Error: shared.ErrMovieNotFound}},
		}}
		m, _ := newTestModel(t, exporter)

		send(t, m, keyPress("e"))
		if m.view != ResultView {
			t.Fatalf("view = %d, want ResultView", m.view)
		}
		if m.progress.Message != "Read library" {
			t.Errorf("progress = %+v", m.progress)
		}

		view := m.View()
		for _, want := range []string{"Export Complete", "Directory: out", "Movies: 3", "Forrest Gump"} {
			if !strings.Contains(view, want) {
				t.Errorf("result view missing %q\n%s", want, view)
			}
		}

		send(t, m, tea.KeyMsg{Type: tea.KeyEsc})
		if m.view != LibraryView {
			t.Errorf("esc should return to the library")
		}
	})

	t.Run("failure", func(t *testing.T) {
		m, _ := newTestModel(t, &fakeExporter{err: errors.New("disk full")})
		send(t, m, keyPress("e"))
		if !strings.Contains(m.View(), "Export failed: disk full") {
			t.Errorf("view = %q", m.View())
		}
	})

	t.Run("without exporter", func(t *testing.T) {
		m, _ := newTestModel(t, nil)
		send(t, m, keyPress("e"))
		if m.view != LibraryView {
			t.Errorf("export should be disabled")
		}
		if !strings.Contains(m.status, "not available") {
			t.Errorf("status = %q", m.status)
		}
	})
}

package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/moviebox/internal/formatter"
	"github.com/desertthunder/moviebox/internal/models"
	"github.com/desertthunder/moviebox/internal/shared"
	"github.com/desertthunder/moviebox/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	LibraryView ViewState = iota
	ConfirmView
	ExportView
	ResultView
)

// Tab is one page of the library view.
type Tab int

const (
	FavoritesTab Tab = iota
	WatchlistTab
	WatchedTab
	ContinueTab
	StatsTab
)

// Tabs lists the tabs in display order.
var Tabs = []Tab{FavoritesTab, WatchlistTab, WatchedTab, ContinueTab, StatsTab}

func (t Tab) String() string {
	switch t {
	case FavoritesTab:
		return "Favorites"
	case WatchlistTab:
		return "Watchlist"
	case WatchedTab:
		return "Watched"
	case ContinueTab:
		return "Continue Watching"
	case StatsTab:
		return "Stats"
	default:
		return ""
	}
}

// Category returns the saved-movie category a tab lists, if any.
func (t Tab) Category() (models.Category, bool) {
	switch t {
	case FavoritesTab:
		return models.Favorites, true
	case WatchlistTab:
		return models.Watchlist, true
	case WatchedTab:
		return models.Watched, true
	}
	return "", false
}

// Library is the part of library.Library the TUI reads and mutates.
type Library interface {
	GetSavedMovies(ctx context.Context, category models.Category) []models.SavedMovie
	GetContinueWatching(ctx context.Context) []models.WatchProgress
	GetMovieRating(ctx context.Context, movieID int) *models.UserRating
	GetMovieProgress(ctx context.Context, movieID int) *models.WatchProgress
	GetStats(ctx context.Context) models.Stats
	RemoveMovie(ctx context.Context, movieID int) error
}

// Exporter runs library exports.
type Exporter interface {
	BulkExport(ctx context.Context, prog chan<- tasks.ProgressUpdate, opts tasks.BulkExportOpts) (*tasks.BulkExportResult, error)
}

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	view         ViewState
	tab          Tab
	lib          Library
	exporter     Exporter
	exportOpts   tasks.BulkExportOpts
	width        int
	height       int
	movies       list.Model
	stats        models.Stats
	pending      *models.SavedMovie
	status       string
	progressChan chan tasks.ProgressUpdate
	exportDone   chan Msg
	progress     tasks.ProgressUpdate
	result       *tasks.BulkExportResult
	err          error
	help         help.Model
	keys         keyMap
}

// NewModel creates a new TUI model. exporter may be nil, which disables the export key.
func NewModel(ctx context.Context, lib Library, exporter Exporter, exportOpts tasks.BulkExportOpts) *Model {
	movies := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	movies.SetShowHelp(false)

	return &Model{
		ctx:        ctx,
		view:       LibraryView,
		tab:        FavoritesTab,
		lib:        lib,
		exporter:   exporter,
		exportOpts: exportOpts,
		movies:     movies,
		help:       help.New(),
		keys:       newKeyMap(),
	}
}

// Init loads the first tab.
func (m *Model) Init() tea.Cmd {
	return m.loadTab(m.tab)
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.movies.SetSize(msg.Width-4, msg.Height-8)
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case LibraryView:
			return m.handleLibraryKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		case ExportView:
			if key.Matches(msg, m.keys.quit) {
				return m, tea.Quit
			}
			return m, nil
		}

	case Msg:
		return m.handleMsg(msg)
	}

	var cmd tea.Cmd
	m.movies, cmd = m.movies.Update(msg)
	return m, cmd
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgTabLoaded:
		data := msg.data.(tabLoaded)
		if data.tab != m.tab {
			return m, nil
		}
		m.stats = data.stats
		m.movies.Title = data.tab.String()
		return m, m.movies.SetItems(data.items)

	case MsgMovieRemoved:
		data := msg.data.(movieRemoved)
		m.pending = nil
		m.view = LibraryView
		if data.err != nil {
			m.status = styles.err.Render(fmt.Sprintf("Failed to remove %s: %v", data.movie.Title, data.err))
			return m, nil
		}
		m.status = styles.ok.Render(fmt.Sprintf("Removed %s", data.movie.Title))
		return m, m.loadTab(m.tab)

	case MsgProgressUpdate:
		m.progress = msg.data.(tasks.ProgressUpdate)
		return m, m.waitForProgress()

	case MsgExportComplete:
		data := msg.data.(exportComplete)
		m.result = data.result
		m.err = data.err
		m.view = ResultView
		m.progressChan = nil
		m.exportDone = nil
		return m, nil
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case LibraryView:
		return m.renderLibrary()
	case ConfirmView:
		return m.renderConfirm()
	case ExportView:
		return m.renderExport()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handleLibraryKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.movies.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.movies, cmd = m.movies.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.next):
		return m, m.switchTab(1)
	case key.Matches(msg, m.keys.prev):
		return m, m.switchTab(-1)
	case key.Matches(msg, m.keys.remove):
		if item, ok := m.movies.SelectedItem().(savedItem); ok && m.tab != StatsTab {
			saved := item.saved
			m.pending = &saved
			m.view = ConfirmView
		}
		return m, nil
	case key.Matches(msg, m.keys.export):
		if m.exporter == nil {
			m.status = styles.warn.Render("Export is not available")
			return m, nil
		}
		m.view = ExportView
		m.progress = tasks.ProgressUpdate{}
		return m, m.startExport()
	}

	if m.tab == StatsTab {
		return m, nil
	}

	var cmd tea.Cmd
	m.movies, cmd = m.movies.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.yes):
		return m, m.removeMovie(*m.pending)
	case key.Matches(msg, m.keys.no), key.Matches(msg, m.keys.quit):
		m.pending = nil
		m.view = LibraryView
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.view = LibraryView
		m.result = nil
		m.err = nil
		return m, m.loadTab(m.tab)
	}
	return m, nil
}

func (m *Model) switchTab(delta int) tea.Cmd {
	n := len(Tabs)
	m.tab = Tabs[(int(m.tab)+delta+n)%n]
	m.status = ""
	m.movies.ResetFilter()
	m.movies.Select(0)
	return m.loadTab(m.tab)
}

// loadTab reads the list for tab from the library. Stats are refreshed on every load.
func (m *Model) loadTab(tab Tab) tea.Cmd {
	return func() tea.Msg {
		items := []list.Item{}

		if cat, ok := tab.Category(); ok {
			for _, s := range m.lib.GetSavedMovies(m.ctx, cat) {
				item := savedItem{saved: s, progress: m.lib.GetMovieProgress(m.ctx, s.Movie.ID)}
				if r := m.lib.GetMovieRating(m.ctx, s.Movie.ID); r != nil {
					item.rating = r.Rating
				}
				items = append(items, item)
			}
		} else if tab == ContinueTab {
			titles := make(map[int]string)
			for _, s := range m.lib.GetSavedMovies(m.ctx, "") {
				titles[s.Movie.ID] = formatter.MovieLine(s.Movie)
			}
			for _, p := range m.lib.GetContinueWatching(m.ctx) {
				title, ok := titles[p.MovieID]
				if !ok {
					title = fmt.Sprintf("Movie #%d", p.MovieID)
				}
				items = append(items, progressItem{progress: p, title: title})
			}
		}

		return tabLoadedMsg(tab, items, m.lib.GetStats(m.ctx))
	}
}

func (m *Model) removeMovie(saved models.SavedMovie) tea.Cmd {
	return func() tea.Msg {
		err := m.lib.RemoveMovie(m.ctx, saved.Movie.ID)
		return movieRemovedMsg(saved.Movie, err)
	}
}

func (m *Model) startExport() tea.Cmd {
	progress := make(chan tasks.ProgressUpdate, 50)
	done := make(chan Msg, 1)
	m.progressChan = progress
	m.exportDone = done

	go func() {
		result, err := m.exporter.BulkExport(m.ctx, progress, m.exportOpts)
		done <- exportCompleteMsg(result, err)
		close(progress)
	}()

	return m.waitForProgress()
}

// waitForProgress relays export progress until the channel closes, then delivers the completion message.
func (m *Model) waitForProgress() tea.Cmd {
	progress, done := m.progressChan, m.exportDone
	return func() tea.Msg {
		if update, ok := <-progress; ok {
			return progressUpdateMsg(update)
		}
		return <-done
	}
}

func (m *Model) renderTabs() string {
	tabs := make([]string, len(Tabs))
	for i, t := range Tabs {
		if t == m.tab {
			tabs[i] = styles.activeTab.Render(t.String())
		} else {
			tabs[i] = styles.tab.Render(t.String())
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m *Model) renderLibrary() string {
	var body string
	if m.tab == StatsTab {
		body = m.renderStats()
	} else {
		body = m.movies.View()
	}

	helpKeys := []key.Binding{m.keys.next, m.keys.prev}
	if _, ok := m.tab.Category(); ok {
		helpKeys = append(helpKeys, m.keys.remove)
	}
	if m.exporter != nil {
		helpKeys = append(helpKeys, m.keys.export)
	}
	helpKeys = append(helpKeys, m.keys.quit)

	out := fmt.Sprintf("%s\n\n%s\n", m.renderTabs(), body)
	if m.status != "" {
		out += "\n" + m.status + "\n"
	}
	return out + "\n" + m.help.ShortHelpView(helpKeys)
}

func (m *Model) renderStats() string {
	st := m.stats
	rows := [][2]string{
		{"Saved", fmt.Sprintf("%d", st.TotalSaved)},
		{"Favorites", fmt.Sprintf("%d", st.Favorites)},
		{"Watchlist", fmt.Sprintf("%d", st.Watchlist)},
		{"Watched", fmt.Sprintf("%d", st.Watched)},
		{"Watch time", shared.FormatRuntime(st.TotalWatchTime)},
		{"Average rating", fmt.Sprintf("%.1f", st.AverageRating)},
	}

	var b strings.Builder
	b.WriteString(styles.title.Render("Library Stats"))
	b.WriteString("\n")
	for _, row := range rows {
		b.WriteString(styles.label.Render(row[0]))
		b.WriteString(row[1])
		b.WriteString("\n")
	}
	return b.String()
}

func (m *Model) renderConfirm() string {
	if m.pending == nil {
		return ""
	}
	title := styles.title.Render(fmt.Sprintf("Remove '%s' from your library?", m.pending.Movie.Title))
	info := fmt.Sprintf("\nCategory: %s\nSaved: %s\n", m.pending.Category, m.pending.SavedAt.Format("Jan 2, 2006"))

	helpKeys := []key.Binding{m.keys.yes, m.keys.no}
	return fmt.Sprintf("%s\n%s\n%s", title, info, m.help.ShortHelpView(helpKeys))
}

func (m *Model) renderExport() string {
	title := styles.title.Render("Exporting Library")

	var phase string
	switch m.progress.Phase {
	case tasks.Snapshot:
		phase = "Reading library..."
	case tasks.Enrich:
		phase = fmt.Sprintf("Fetching details (%d/%d)", m.progress.Step, m.progress.Total)
	case tasks.Write:
		phase = "Writing files..."
	default:
		phase = "Processing..."
	}

	return fmt.Sprintf("%s\n\n%s\n%s", title, phase, m.progress.Message)
}

func (m *Model) renderResult() string {
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.back, m.keys.quit})

	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Export failed: %v", m.err)) + "\n\n" + helpView
	}
	if m.result == nil {
		return styles.err.Render("No result available") + "\n\n" + helpView
	}

	title := styles.ok.Render("✓ Export Complete!")
	info := fmt.Sprintf("\nDirectory: %s\nMovies: %d\nFiles: %d\nManifest: %s",
		m.result.OutputDirectory,
		len(m.result.Export.Saved),
		len(m.result.Files),
		m.result.ManifestPath,
	)

	var failed string
	if len(m.result.Failed) > 0 {
		failed = "\n\n" + styles.warn.Render(fmt.Sprintf("Failed to fetch details for %d movies:", len(m.result.Failed)))
		for _, f := range m.result.Failed {
			failed += fmt.Sprintf("\n  • %s", f.Title)
		}
	}

	return fmt.Sprintf("%s\n%s%s\n\n%s", title, info, failed, helpView)
}

// Run starts the TUI and blocks until it exits.
func Run(m *Model) error {
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}

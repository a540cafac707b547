package ui

import (
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/moviebox/internal/models"
	"github.com/desertthunder/moviebox/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgTabLoaded MsgKind = iota
	MsgMovieRemoved
	MsgProgressUpdate
	MsgExportComplete
)

type tabLoaded struct {
	tab   Tab
	items []list.Item
	stats models.Stats
}

type movieRemoved struct {
	movie models.Movie
	err   error
}

type exportComplete struct {
	result *tasks.BulkExportResult
	err    error
}

// tabLoadedMsg is the constructor for [MsgTabLoaded]
func tabLoadedMsg(tab Tab, items []list.Item, stats models.Stats) Msg {
	return Msg{kind: MsgTabLoaded, data: tabLoaded{tab, items, stats}}
}

// movieRemovedMsg is the constructor for [MsgMovieRemoved]
func movieRemovedMsg(movie models.Movie, err error) Msg {
	return Msg{kind: MsgMovieRemoved, data: movieRemoved{movie, err}}
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(update tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, data: update}
}

// exportCompleteMsg is the constructor for [MsgExportComplete]
func exportCompleteMsg(result *tasks.BulkExportResult, err error) Msg {
	return Msg{kind: MsgExportComplete, data: exportComplete{result, err}}
}

// Package ui implements an interactive terminal interface for the movie library using bubbletea's Elm architecture.
//
// The TUI shows the signed-in user's library as tabs:
//  1. Favorites, Watchlist, Watched : saved movies per category
//  2. Continue Watching : partially watched movies, most recent first
//  3. Stats : library counts, watch time and average rating
//
// From the library view a saved movie can be removed (after a y/n confirmation) and the
// library can be exported. Export progress flows through a channel from the tasks.LibraryEngine.
//
// The (view) [Model] implements bubbletea's Init/Update/View pattern, receiving messages via the Msg union type.
// Keys: tab/shift+tab switch tabs, d removes, e exports, q quits; list navigation and filtering come from bubbles/list.
package ui

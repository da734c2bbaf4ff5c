// Package ui implements an interactive genre browser using bubbletea's Elm architecture.
//
// The workflow moves through five views:
//  1. [GenreListView] : every genre of the saved library with its track count
//  2. [TrackListView] : the tracks grouped under one genre
//  3. [ConfirmView] : confirm creating or extending the playlist for one genre, or for all eligible genres
//  4. [ReconcileView] : progress while playlists are reconciled
//  5. [ResultView] : per-genre outcomes and the run log
//
// Progress updates flow through a channel from [tasks.Organizer.ReconcileGroups]; the final result arrives as a separate message.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, y/n, a, q) with contextual help from charmbracelet/bubbles/help.
package ui

package ui

import (
	"github.com/desertthunder/stylefy/internal/models"
	"github.com/desertthunder/stylefy/internal/tasks"
)

// groupsFetchedMsg carries the genre groups of the saved library.
type groupsFetchedMsg struct {
	groups models.GenreGroups
	err    error
}

// progressUpdateMsg carries one [tasks.ProgressUpdate] from a running reconcile.
type progressUpdateMsg tasks.ProgressUpdate

// reconcileCompleteMsg carries the outcome of a reconcile.
type reconcileCompleteMsg struct {
	result *tasks.ReconcileResult
	err    error
}

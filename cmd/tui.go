package main

import (
	"context"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/stylefy/internal/formatter"
	"github.com/desertthunder/stylefy/internal/tasks"
	"github.com/desertthunder/stylefy/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI starts the interactive genre browser and records a run when playlists were reconciled.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	minCount, err := r.minTrackCount(cmd)
	if err != nil {
		return err
	}

	library, err := r.spotifyLibrary(ctx)
	if err != nil {
		return err
	}

	// Log output would corrupt the alternate screen.
	engine := tasks.NewGenreEngine(library, log.New(io.Discard), r.config.Organizer.WorkerCount())
	model := ui.NewModel(ctx, engine, tasks.ReconcileOptions{
		MinTrackCount: minCount,
		Description:   r.config.Organizer.Description,
		Public:        r.config.Organizer.Public,
		DryRun:        cmd.Bool("dry-run"),
	})

	startedAt := r.now()
	if _, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	if model.Result() != nil || model.Err() != nil {
		r.recordRun("tui", startedAt, engine.Log().Lines(), model.Err())
	}
	if result := model.Result(); result != nil {
		return r.write(formatter.ReconcileToText(result, r.palette))
	}
	return model.Err()
}

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/stylefy/internal/formatter"
	"github.com/desertthunder/stylefy/internal/shared"
	"github.com/desertthunder/stylefy/internal/tasks"
	"github.com/urfave/cli/v3"
)

// minTrackCount returns --min when given, else the configured minimum.
func (r *Runner) minTrackCount(cmd *cli.Command) (int, error) {
	count := r.config.Organizer.MinTrackCount
	if cmd.IsSet("min") {
		count = cmd.Int("min")
	}
	if count < 0 {
		return 0, fmt.Errorf("%w: --min must not be negative", shared.ErrInvalidArgument)
	}
	return count, nil
}

// Genres prints every genre of the saved library with its track count.
func (r *Runner) Genres(ctx context.Context, cmd *cli.Command) error {
	minCount, err := r.minTrackCount(cmd)
	if err != nil {
		return err
	}

	engine, err := r.engine(ctx)
	if err != nil {
		return err
	}

	progress, stop := r.watchProgress()
	groups, runLog, err := engine.GenreGroups(ctx, progress)
	stop()
	if err != nil {
		return err
	}
	r.logger.Debug("grouped library", "genres", len(groups), "log", runLog.Len())

	if cmd.Bool("json") {
		return r.writeJSON(formatter.GenreSizes(groups, minCount), true)
	}
	return r.write(formatter.GroupsToText(groups, minCount, r.palette))
}

// Organize creates or extends one playlist per genre and records the run.
func (r *Runner) Organize(ctx context.Context, cmd *cli.Command) error {
	minCount, err := r.minTrackCount(cmd)
	if err != nil {
		return err
	}

	engine, err := r.engine(ctx)
	if err != nil {
		return err
	}

	opts := tasks.ReconcileOptions{
		MinTrackCount: minCount,
		Description:   r.config.Organizer.Description,
		Public:        r.config.Organizer.Public,
		DryRun:        cmd.Bool("dry-run"),
	}

	startedAt := r.now()
	progress, stop := r.watchProgress()
	result, err := engine.CreateGenrePlaylists(ctx, progress, opts)
	stop()
	r.recordRun("organize", startedAt, engine.Log().Lines(), err)
	if err != nil {
		if result != nil {
			r.writePartial(formatter.LogToText(result.Log.Lines()))
		}
		return err
	}

	if result.Failed > 0 {
		r.logger.Warn("some genres could not be reconciled", "failed", result.Failed)
	}

	if path := cmd.String("output"); path != "" {
		if err := os.WriteFile(path, formatter.ReconcileToMarkdown(result), 0644); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		r.logger.Info("report written", "path", path)
	}

	if cmd.Bool("json") {
		return r.writeJSON(result, true)
	}
	return r.write(formatter.ReconcileToText(result, r.palette))
}

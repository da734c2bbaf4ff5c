package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/stylefy/internal/formatter"
	"github.com/desertthunder/stylefy/internal/shared"
	"github.com/urfave/cli/v3"
)

// Dedupe removes repeated tracks from one playlist, or from every owned playlist with --all.
func (r *Runner) Dedupe(ctx context.Context, cmd *cli.Command) error {
	id, name, all := cmd.String("playlist"), cmd.String("name"), cmd.Bool("all")

	selected := 0
	for _, set := range []bool{id != "", name != "", all} {
		if set {
			selected++
		}
	}
	switch {
	case selected == 0:
		return fmt.Errorf("%w: one of --playlist, --name or --all is required", shared.ErrMissingArgument)
	case selected > 1:
		return fmt.Errorf("%w: --playlist, --name and --all are mutually exclusive", shared.ErrInvalidArgument)
	}

	engine, err := r.engine(ctx)
	if err != nil {
		return err
	}

	startedAt := r.now()
	if all {
		progress, stop := r.watchProgress()
		result, err := engine.RemoveAllDuplicateTracks(ctx, progress)
		stop()
		r.recordRun("dedupe", startedAt, engine.Log().Lines(), err)
		if err != nil {
			r.writePartial(formatter.LibraryDedupeToText(result, r.palette))
			return err
		}

		if cmd.Bool("json") {
			return r.writeJSON(result, true)
		}
		return r.write(formatter.LibraryDedupeToText(result, r.palette))
	}

	target := id
	if target == "" {
		target = name
	}
	playlist, err := engine.FindPlaylist(ctx, target)
	if err != nil {
		return err
	}

	result, err := engine.RemoveDuplicateTracks(ctx, *playlist)
	r.recordRun("dedupe", startedAt, engine.Log().Lines(), err)
	if err != nil {
		r.writePartial(formatter.LogToText(result.Log.Lines()))
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(result, true)
	}
	return r.write(formatter.DedupeToText(result, r.palette))
}

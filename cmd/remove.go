package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/stylefy/internal/formatter"
	"github.com/desertthunder/stylefy/internal/shared"
	"github.com/urfave/cli/v3"
)

// Remove deletes every occurrence of the given track URIs from one playlist.
func (r *Runner) Remove(ctx context.Context, cmd *cli.Command) error {
	id, name := cmd.String("playlist"), cmd.String("name")
	switch {
	case id == "" && name == "":
		return fmt.Errorf("%w: one of --playlist or --name is required", shared.ErrMissingArgument)
	case id != "" && name != "":
		return fmt.Errorf("%w: --playlist and --name are mutually exclusive", shared.ErrInvalidArgument)
	}

	uris := cmd.Args().Slice()
	if len(uris) == 0 {
		return fmt.Errorf("%w: at least one track URI is required", shared.ErrMissingArgument)
	}

	engine, err := r.engine(ctx)
	if err != nil {
		return err
	}

	target := id
	if target == "" {
		target = name
	}
	playlist, err := engine.FindPlaylist(ctx, target)
	if err != nil {
		return err
	}

	startedAt := r.now()
	result, err := engine.RemoveTracks(ctx, *playlist, uris)
	r.recordRun("remove", startedAt, engine.Log().Lines(), err)
	if err != nil {
		r.writePartial(formatter.LogToText(result.Log.Lines()))
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(result, true)
	}
	return r.write(formatter.RemovalToText(result, r.palette))
}

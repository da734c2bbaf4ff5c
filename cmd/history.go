package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/desertthunder/stylefy/internal/formatter"
	"github.com/desertthunder/stylefy/internal/models"
	"github.com/desertthunder/stylefy/internal/repositories"
	"github.com/desertthunder/stylefy/internal/shared"
	"github.com/urfave/cli/v3"
)

// History lists recent runs, shows one run with its log (--show) or removes one from the history (--delete).
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	db, release, err := r.database()
	if err != nil {
		return err
	}
	defer release()

	repo := repositories.NewRunRepository(db)
	asJSON := cmd.Bool("json")

	if id := cmd.String("delete"); id != "" {
		if err := repo.Delete(id); err != nil {
			return unknownRun(err, id)
		}
		r.logger.Info("run deleted", "id", id)
		return r.writePlain("✓ Deleted run %s\n", id)
	}

	if id := cmd.String("show"); id != "" {
		run, err := repo.Get(id)
		if err != nil {
			return unknownRun(err, id)
		}

		if asJSON {
			return r.writeRunsJSON([]*models.Run{run})
		}
		return r.write(formatter.RunToText(run, r.palette))
	}

	runs, err := repo.Recent(cmd.Int("limit"))
	if err != nil {
		return err
	}

	if asJSON {
		return r.writeRunsJSON(runs)
	}
	return r.write(formatter.RunsToText(runs, r.palette))
}

func unknownRun(err error, id string) error {
	if errors.Is(err, repositories.ErrRunNotFound) {
		return fmt.Errorf("%w: no run with ID %s", shared.ErrInvalidArgument, id)
	}
	return err
}

func (r *Runner) writeRunsJSON(runs []*models.Run) error {
	data, err := formatter.RunsToJSON(runs)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return r.write(append(data, '\n'))
}

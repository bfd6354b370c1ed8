package main

import (
	"context"
	"time"

	"github.com/desertthunder/ytid/internal/repositories"
	"github.com/urfave/cli/v3"
)

// History lists recorded runs, newest first.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	db, err := r.database()
	if err != nil {
		return err
	}

	runs, err := repositories.NewRunRepository(db).List(map[string]any{
		"status": cmd.String("status"),
		"limit":  cmd.Int("limit"),
	})
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(runs, cmd.Bool("pretty"))
	}

	if len(runs) == 0 {
		r.writePlain("No runs recorded\n")
		return nil
	}

	r.writePlainHeader("Run history")
	for _, run := range runs {
		r.writePlain("%s  %-6s  %s → %s\n",
			run.StartedAt.Local().Format(time.DateTime), run.Status, run.InputPath, run.OutputPath)
		r.writePlain("    %d songs: %d resolved, %d failed, %d skipped, %d retries (%s, %s)\n",
			run.Total, run.Resolved, run.Failed, run.Skipped, run.Retries, run.Strategy, run.Duration().Round(time.Second))
		if run.Error != "" {
			r.writePlain("    error: %s\n", run.Error)
		}
	}
	return nil
}

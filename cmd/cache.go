package main

import (
	"context"

	"github.com/desertthunder/ytid/internal/repositories"
	"github.com/urfave/cli/v3"
)

// CacheList prints cached query resolutions, most recently updated first.
func (r *Runner) CacheList(ctx context.Context, cmd *cli.Command) error {
	db, err := r.database()
	if err != nil {
		return err
	}

	repo := repositories.NewResolutionRepository(db)
	resolutions, err := repo.List(map[string]any{
		"strategy": cmd.String("strategy"),
		"limit":    cmd.Int("limit"),
	})
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		rows := make([]map[string]any, 0, len(resolutions))
		for _, res := range resolutions {
			rows = append(rows, map[string]any{
				"query":      res.Query(),
				"video_id":   res.VideoID(),
				"strategy":   res.Strategy(),
				"hits":       res.Hits(),
				"updated_at": res.UpdatedAt(),
			})
		}
		return r.writeJSON(rows, cmd.Bool("pretty"))
	}

	if len(resolutions) == 0 {
		r.writePlain("Cache is empty\n")
		return nil
	}

	total, err := repo.Count()
	if err != nil {
		return err
	}

	r.writePlainHeader("Cached resolutions")
	for _, res := range resolutions {
		r.writePlain("%-11s  %4d  %-6s  %s\n", res.VideoID(), res.Hits(), res.Strategy(), res.Query())
	}
	r.writePlainln("Showing %d of %d entries", len(resolutions), total)
	return nil
}

// CacheClear removes every cached resolution.
func (r *Runner) CacheClear(ctx context.Context, cmd *cli.Command) error {
	db, err := r.database()
	if err != nil {
		return err
	}

	n, err := repositories.NewResolutionRepository(db).Clear()
	if err != nil {
		return err
	}

	r.logger.Info("cache cleared", "entries", n)
	r.writePlain("✓ Removed %d cached resolutions\n", n)
	return nil
}

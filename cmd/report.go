package main

import (
	"context"

	"github.com/desertthunder/ytid/internal/formatter"
	"github.com/urfave/cli/v3"
)

// Report exports the songs an output file left without a video ID.
//
// Writes to stdout when --to is "-".
func (r *Runner) Report(ctx context.Context, cmd *cli.Command) error {
	r.applyOverrides(cmd)

	catalog, err := formatter.ReadCatalog(r.config.Paths.Output)
	if err != nil {
		return err
	}

	format := cmd.String("format")
	unresolved := len(formatter.Unresolved(catalog))

	if cmd.String("to") == "-" {
		data, err := formatter.Export(catalog, format)
		if err != nil {
			return err
		}
		return r.writePlain("%s", data)
	}

	path, err := formatter.WriteReport(catalog, format, cmd.String("to"))
	if err != nil {
		return err
	}

	r.logger.Info("report written", "path", path, "unresolved", unresolved)
	r.writePlain("✓ Report written to %s (%d of %d songs unresolved)\n", path, unresolved, len(catalog.Songs))
	return nil
}

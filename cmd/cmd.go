// submodule cmd contains command definitions
package main

import (
	"github.com/urfave/cli/v3"
)

// runFlags override the [resolver], [paths] and [checkpoint] config sections.
func runFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "input",
			Aliases: []string{"i"},
			Usage:   "Catalog JSON to resolve",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Where to write the resolved catalog",
		},
		&cli.StringFlag{
			Name:  "strategy",
			Usage: "Resolver strategy (scrape or proxy)",
		},
		&cli.IntFlag{
			Name:    "pool",
			Aliases: []string{"p"},
			Usage:   "Number of concurrent resolver sessions",
		},
		&cli.IntFlag{
			Name:  "retries",
			Usage: "Attempts per song before it is marked failed",
		},
		&cli.DurationFlag{
			Name:  "min-delay",
			Usage: "Lower bound of the jittered delay after each attempt",
		},
		&cli.DurationFlag{
			Name:  "max-delay",
			Usage: "Upper bound of the jittered delay after each attempt",
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "Per-attempt timeout (0 disables)",
		},
		&cli.FloatFlag{
			Name:  "rps",
			Usage: "Request cap shared by all sessions (0 disables)",
		},
		&cli.IntFlag{
			Name:  "checkpoint-every",
			Usage: "Write a checkpoint every N settled songs",
		},
		&cli.BoolFlag{
			Name:  "no-cache",
			Usage: "Skip the local resolution cache",
		},
	}
}

// resolveCommand handles batch resolution
func resolveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "resolve",
		Usage: "Resolve YouTube video IDs for a song catalog",
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Resolve every song without a video ID",
				Flags: append(runFlags(),
					&cli.BoolFlag{
						Name:  "resume",
						Usage: "Continue from the checkpoint of an interrupted run",
					},
					&cli.BoolFlag{
						Name:  "tui",
						Usage: "Show an interactive progress view",
					},
				),
				Action: r.ResolveRun,
			},
			{
				Name:  "status",
				Usage: "Show progress of the current checkpoint or output file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file whose checkpoint to inspect",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.ResolveStatus,
			},
		},
	}
}

// searchCommand resolves a single query
func searchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "search",
		Usage: "Resolve one query through the configured strategy",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "query",
			},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "strategy",
				Usage: "Resolver strategy (scrape or proxy)",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "Request timeout",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
				Value: true,
			},
		},
		Action: r.Search,
	}
}

// reportCommand exports unresolved songs
func reportCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "report",
		Usage: "Export songs left without a video ID",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Resolved catalog to report on",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Report format (csv, markdown or txt)",
				Value:   "markdown",
			},
			&cli.StringFlag{
				Name:  "to",
				Usage: "Report path (default: unresolved.<ext>, - for stdout)",
			},
		},
		Action: r.Report,
	}
}

// cacheCommand manages the local resolution cache
func cacheCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Manage the local resolution cache",
		Commands: []*cli.Command{
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List cached resolutions",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "strategy",
						Usage: "Only show entries resolved by this strategy",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of entries to show",
						Value: 50,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.CacheList,
			},
			{
				Name:   "clear",
				Usage:  "Remove every cached resolution",
				Action: r.CacheClear,
			},
		},
	}
}

// historyCommand lists recorded runs
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "List recorded runs",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of runs to show",
				Value: 10,
			},
			&cli.StringFlag{
				Name:  "status",
				Usage: "Only show runs with this status (done or failed)",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
				Value: true,
			},
		},
		Action: r.History,
	}
}

// setupCommand handles setup operations for configuration and database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "config",
				Usage:  "Write the example configuration file",
				Action: r.SetupConfig,
			},
			{
				Name:   "database",
				Usage:  "Initialize database and run migrations",
				Action: r.SetupDatabase,
			},
			{
				Name:   "rollback",
				Usage:  "Revert the latest database migration",
				Action: r.SetupRollback,
			},
		},
	}
}

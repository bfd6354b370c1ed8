package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/ytid/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupConfig writes the example configuration to --config.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	path := r.configPath
	if path == "" {
		path = "config.toml"
	}

	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}

	r.logger.Info("config file created", "path", path)
	r.writePlain("✓ Config written to %s\n", path)
	r.writePlain("Edit [paths] and [resolver], then run 'ytid resolve run'.\n")
	return nil
}

// SetupDatabase initializes the database and runs migrations.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	r.logger.Info("initializing database", "path", r.config.Database.Path)

	db, err := r.database()
	if err != nil {
		return fmt.Errorf("failed to set up database: %w", err)
	}

	statuses, err := shared.MigrationStatuses(db)
	if err != nil {
		return err
	}

	r.writePlainHeader("Migrations")
	for _, s := range statuses {
		mark := "✗"
		if s.Applied {
			mark = "✓"
		}
		r.writePlain("%s %04d %s\n", mark, s.Version, s.Name)
	}
	r.logger.Infof("setup complete for database: %v", r.config.Database.Path)
	return nil
}

// SetupRollback reverts the most recently applied migration.
func (r *Runner) SetupRollback(ctx context.Context, cmd *cli.Command) error {
	db, err := r.database()
	if err != nil {
		return err
	}

	if err := shared.RollbackMigration(db); err != nil {
		return fmt.Errorf("failed to roll back migration: %w", err)
	}
	r.writePlain("✓ Rolled back the latest migration\n")
	return nil
}

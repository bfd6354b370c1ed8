package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/ytid/internal/repositories"
	"github.com/desertthunder/ytid/internal/services"
	"github.com/desertthunder/ytid/internal/shared"
	"github.com/desertthunder/ytid/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
	factory    tasks.SessionFactory
	db         *sql.DB
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
	Factory    tasks.SessionFactory // overrides the configured strategy
	DB         *sql.DB
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		factory:    opts.Factory,
		db:         opts.DB,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, resolveCommand, searchCommand, reportCommand, cacheCommand, historyCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// Before loads the configuration named by --config and applies --verbose.
//
// A missing config file is not an error; the embedded defaults are used.
func (r *Runner) Before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.Bool("verbose") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}

	path := cmd.String("config")
	if path == "" {
		return ctx, nil
	}
	r.configPath = path

	if _, err := os.Stat(path); err != nil {
		r.logger.Debug("config file not found, using defaults", "path", path)
		return ctx, nil
	}

	config, err := shared.LoadConfig(path)
	if err != nil {
		return ctx, fmt.Errorf("%w: %v", shared.ErrInvalidConfig, err)
	}
	r.config = config
	r.logger.Debug("loaded config", "path", path)
	return ctx, nil
}

// Close releases the database handle, if one was opened.
func (r *Runner) Close(ctx context.Context, cmd *cli.Command) error {
	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db = nil
	return err
}

// database opens the configured SQLite database on first use and runs pending migrations.
func (r *Runner) database() (*sql.DB, error) {
	if r.db != nil {
		return r.db, nil
	}

	db, err := shared.OpenDatabase(r.config.Database)
	if err != nil {
		return nil, err
	}
	r.db = db
	return db, nil
}

// sessionFactory returns the factory for the configured strategy, wrapped with the resolution cache when enabled.
func (r *Runner) sessionFactory() (tasks.SessionFactory, error) {
	factory := r.factory
	if factory == nil {
		f, err := services.NewSessionFactory(r.config.Resolver, r.httpClient, r.logger)
		if err != nil {
			return nil, err
		}
		factory = f
	}

	if !r.config.Database.CacheEnabled {
		return factory, nil
	}

	db, err := r.database()
	if err != nil {
		return nil, err
	}
	cache := repositories.NewResolutionCacheAdapter(repositories.NewResolutionRepository(db), r.config.Resolver.Strategy, r.logger)
	return tasks.CachedFactory(factory, cache, r.logger), nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}

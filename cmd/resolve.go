package main

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/ytid/internal/formatter"
	"github.com/desertthunder/ytid/internal/repositories"
	"github.com/desertthunder/ytid/internal/shared"
	"github.com/desertthunder/ytid/internal/tasks"
	"github.com/desertthunder/ytid/internal/ui"
	"github.com/urfave/cli/v3"
)

var (
	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true)
	warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFA500"))
	errStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000")).Bold(true)
)

// applyOverrides copies explicitly set flags onto the loaded config. Flags win over the file.
func (r *Runner) applyOverrides(cmd *cli.Command) {
	cfg := r.config
	if cmd.IsSet("input") {
		cfg.Paths.Input = cmd.String("input")
	}
	if cmd.IsSet("output") {
		cfg.Paths.Output = cmd.String("output")
	}
	if cmd.IsSet("strategy") {
		cfg.Resolver.Strategy = cmd.String("strategy")
	}
	if cmd.IsSet("pool") {
		cfg.Resolver.PoolSize = cmd.Int("pool")
	}
	if cmd.IsSet("retries") {
		cfg.Resolver.MaxRetries = cmd.Int("retries")
	}
	if cmd.IsSet("min-delay") {
		cfg.Resolver.MinDelayMS = int(cmd.Duration("min-delay").Milliseconds())
	}
	if cmd.IsSet("max-delay") {
		cfg.Resolver.MaxDelayMS = int(cmd.Duration("max-delay").Milliseconds())
	}
	if cmd.IsSet("timeout") {
		cfg.Resolver.TimeoutMS = int(cmd.Duration("timeout").Milliseconds())
	}
	if cmd.IsSet("rps") {
		cfg.Resolver.RequestsPerSecond = cmd.Float("rps")
	}
	if cmd.IsSet("checkpoint-every") {
		cfg.Checkpoint.Every = cmd.Int("checkpoint-every")
	}
	if cmd.IsSet("no-cache") {
		cfg.Database.CacheEnabled = !cmd.Bool("no-cache")
	}
}

// ResolveRun resolves every song in the input catalog and writes the output file.
func (r *Runner) ResolveRun(ctx context.Context, cmd *cli.Command) error {
	r.applyOverrides(cmd)
	if err := r.config.Validate(); err != nil {
		return err
	}

	opts := tasks.OptionsFromConfig(r.config)
	opts.Resume = cmd.Bool("resume")

	if cmd.Bool("tui") {
		return r.resolveTUI(ctx, opts)
	}

	engine, err := r.engine()
	if err != nil {
		return err
	}

	opts.WaitForProgress = true
	progress := make(chan tasks.ProgressUpdate, 100)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for update := range progress {
			r.writePlain("%s\n", update.Message)
		}
	}()

	result, runErr := engine.Run(ctx, progress, opts)
	close(progress)
	wg.Wait()

	r.printSummary(result, runErr)
	return runErr
}

// resolveTUI runs the engine behind the interactive progress view.
//
// Logs go to a file so they don't tear the rendered view.
func (r *Runner) resolveTUI(ctx context.Context, opts tasks.Options) error {
	fileLogger, err := shared.NewFileLogger("./tmp/ytid-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	fileLogger.SetLevel(r.logger.GetLevel())
	r.logger = fileLogger

	engine, err := r.engine()
	if err != nil {
		return err
	}

	model := ui.NewModel(ctx, engine, opts)
	if _, err := tea.NewProgram(model).Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return model.Err()
}

// engine builds a [tasks.ResolveEngine] that records runs in the history table.
func (r *Runner) engine() (*tasks.ResolveEngine, error) {
	factory, err := r.sessionFactory()
	if err != nil {
		return nil, err
	}

	db, err := r.database()
	if err != nil {
		return nil, err
	}
	return tasks.NewResolveEngine(factory, repositories.NewRunRepository(db), r.logger), nil
}

func (r *Runner) printSummary(result *tasks.RunResult, runErr error) {
	if result == nil {
		return
	}
	stats := result.Stats

	r.writePlain("\n")
	r.writePlainHeader("Run summary")
	r.writePlain("Resolved:         %d\n", stats.Resolved)
	r.writePlain("Failed:           %d\n", stats.Failed)
	r.writePlain("Skipped:          %d\n", stats.Skipped)
	r.writePlain("Retries consumed: %d\n", stats.RetriesConsumed)
	r.writePlain("Duration:         %s\n", stats.Duration().Round(time.Millisecond))

	switch {
	case errors.Is(runErr, context.Canceled):
		r.writePlainln("%s checkpoint kept at %s; rerun with --resume to continue",
			warnStyle.Render("Interrupted:"), result.CheckpointPath)
	case runErr != nil:
		r.writePlainln("%s %v", errStyle.Render("✗ Run failed:"), runErr)
	default:
		r.writePlainln("%s results written to %s", okStyle.Render("✓ Done:"), result.OutputPath)
	}
}

// ResolveStatus reports progress of an unfinished or finished run from its checkpoint or output file.
func (r *Runner) ResolveStatus(ctx context.Context, cmd *cli.Command) error {
	r.applyOverrides(cmd)

	path := r.config.CheckpointPath()
	label := "checkpoint"
	checkpoint := &tasks.Checkpointer{Path: path}
	if !checkpoint.Exists() {
		path = r.config.Paths.Output
		label = "output"
	}

	catalog, err := formatter.ReadCatalog(path)
	if err != nil {
		return err
	}

	resolved, failed, pending := catalog.Counts()
	total := len(catalog.Songs)

	if cmd.Bool("json") {
		return r.writeJSON(map[string]any{
			"source":   label,
			"path":     path,
			"total":    total,
			"resolved": resolved,
			"failed":   failed,
			"pending":  pending,
		}, true)
	}

	r.writePlainHeader(fmt.Sprintf("Status (%s)", label))
	r.writePlain("File:     %s\n", path)
	r.writePlain("Songs:    %d\n", total)
	r.writePlain("Resolved: %d\n", resolved)
	r.writePlain("Failed:   %d\n", failed)
	r.writePlain("Pending:  %d\n", pending)
	if label == "checkpoint" {
		r.writePlainln("Run 'ytid resolve run --resume' to continue.")
	}
	return nil
}

// Search resolves a single query through the configured strategy.
//
// The cache is bypassed so the strategy itself is exercised.
func (r *Runner) Search(ctx context.Context, cmd *cli.Command) error {
	query := cmd.StringArg("query")
	if query == "" {
		return fmt.Errorf("%w: query", shared.ErrMissingArgument)
	}
	r.applyOverrides(cmd)
	r.config.Database.CacheEnabled = false

	factory, err := r.sessionFactory()
	if err != nil {
		return err
	}

	session, err := factory(ctx, 0)
	if err != nil {
		return fmt.Errorf("%w: %w", shared.ErrSessionOpen, err)
	}
	defer session.Close()

	session.Identify(tasks.NewIdentityRotator(r.config.Resolver.UserAgents, tasks.DefaultViewport).Next())

	if timeout := r.config.Resolver.Timeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	r.logger.Info("searching", "query", query, "strategy", r.config.Resolver.Strategy)
	id, err := session.Resolve(ctx, query)
	if err != nil {
		return err
	}
	if id == "" {
		return fmt.Errorf("%w: %q", shared.ErrNotFound, query)
	}

	if cmd.Bool("json") {
		return r.writeJSON(map[string]string{"query": query, "video_id": id}, cmd.Bool("pretty"))
	}

	r.writePlain("Query: %s\n", query)
	r.writePlain("ID:    %s\n", id)
	r.writePlain("URL:   https://www.youtube.com/watch?v=%s\n", id)
	return nil
}

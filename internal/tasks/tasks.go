package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/ytid/internal/formatter"
	"github.com/desertthunder/ytid/internal/models"
	"github.com/desertthunder/ytid/internal/shared"
	"golang.org/x/time/rate"
)

// State is the orchestrator lifecycle.
type State int

const (
	StateInit State = iota
	StateResolving
	StateFinalizing
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateResolving:
		return "resolving"
	case StateFinalizing:
		return "finalizing"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return ""
	}
}

// Options configures one run. It is fixed for the lifetime of the run.
type Options struct {
	InputPath         string
	OutputPath        string
	CheckpointPath    string  // defaults to OutputPath + ".partial"
	CheckpointEvery   int     // default: 10
	Resume            bool    // start from the checkpoint when one exists
	Strategy          string  // recorded with the run
	PoolSize          int     // default: 3
	MaxRetries        int     // default: 3
	MinDelay          time.Duration
	MaxDelay          time.Duration
	Timeout           time.Duration // per attempt; zero disables
	RequestsPerSecond float64       // global cap across slots; zero disables
	UserAgents        []string
	Viewport          Viewport
	WaitForProgress   bool // block on a full progress channel until ctx ends
}

// OptionsFromConfig builds run options from a loaded configuration.
func OptionsFromConfig(cfg *shared.Config) Options {
	return Options{
		InputPath:         cfg.Paths.Input,
		OutputPath:        cfg.Paths.Output,
		CheckpointPath:    cfg.CheckpointPath(),
		CheckpointEvery:   cfg.Checkpoint.Every,
		Strategy:          cfg.Resolver.Strategy,
		PoolSize:          cfg.Resolver.PoolSize,
		MaxRetries:        cfg.Resolver.MaxRetries,
		MinDelay:          cfg.Resolver.MinDelay(),
		MaxDelay:          cfg.Resolver.MaxDelay(),
		Timeout:           cfg.Resolver.Timeout(),
		RequestsPerSecond: cfg.Resolver.RequestsPerSecond,
		UserAgents:        cfg.Resolver.UserAgents,
		Viewport:          DefaultViewport,
	}
}

func (o Options) withDefaults() Options {
	if o.PoolSize <= 0 {
		o.PoolSize = 3
	}
	if o.MaxRetries <= 0 {
		o.MaxRetries = 3
	}
	if o.CheckpointEvery <= 0 {
		o.CheckpointEvery = DefaultCheckpointEvery
	}
	if o.CheckpointPath == "" && o.OutputPath != "" {
		o.CheckpointPath = o.OutputPath + ".partial"
	}
	if o.Viewport.Width <= 0 || o.Viewport.Height <= 0 {
		o.Viewport = DefaultViewport
	}
	return o
}

// RunResult describes a finished (or aborted) run.
type RunResult struct {
	RunID          string
	State          State
	Source         string // file the catalog was loaded from
	OutputPath     string
	CheckpointPath string
	Catalog        *models.Catalog
	Stats          RunStats
}

// ResolveEngine runs batch resolutions.
type ResolveEngine struct {
	factory  SessionFactory
	recorder RunRecorder
	logger   *log.Logger
}

// NewResolveEngine creates an engine that opens sessions through factory.
//
// recorder may be nil. A nil logger discards output.
func NewResolveEngine(factory SessionFactory, recorder RunRecorder, logger *log.Logger) *ResolveEngine {
	if logger == nil {
		logger = shared.NewDiscardLogger()
	}
	return &ResolveEngine{factory: factory, recorder: recorder, logger: logger}
}

// progressSender returns the function used to publish updates for one run.
//
// By default a full channel drops the update. With wait set the send blocks until the reader takes it or ctx
// ends, so a reader that drains the channel sees every update.
func (e *ResolveEngine) progressSender(ctx context.Context, progress chan<- ProgressUpdate, wait bool) func(ProgressUpdate) {
	return func(update ProgressUpdate) {
		if progress == nil {
			return
		}
		if wait {
			select {
			case progress <- update:
			case <-ctx.Done():
			}
			return
		}
		select {
		case progress <- update:
		default:
		}
	}
}

// Run resolves every unresolved song in the input catalog and writes the output file.
//
// The output is written once, after every task is terminal. On cancellation the last checkpoint is kept,
// no output is written and ctx's error is returned.
func (e *ResolveEngine) Run(ctx context.Context, progress chan<- ProgressUpdate, opts Options) (*RunResult, error) {
	opts = opts.withDefaults()
	result := &RunResult{
		RunID:          shared.GenerateID(),
		State:          StateInit,
		Source:         opts.InputPath,
		OutputPath:     opts.OutputPath,
		CheckpointPath: opts.CheckpointPath,
		Stats:          RunStats{StartedAt: time.Now()},
	}
	logger := shared.WithLogger(e.logger, "run_id", result.RunID)
	send := e.progressSender(ctx, progress, opts.WaitForProgress)

	if opts.OutputPath == "" {
		return e.fail(result, opts, logger, fmt.Errorf("%w: output path", shared.ErrMissingArgument))
	}
	if e.factory == nil {
		return e.fail(result, opts, logger, fmt.Errorf("%w: no resolver configured", shared.ErrServiceUnavailable))
	}

	checkpoint := &Checkpointer{Path: opts.CheckpointPath, Every: opts.CheckpointEvery}
	if opts.Resume && checkpoint.Exists() {
		result.Source = checkpoint.Path
		logger.Info("resuming from checkpoint", "path", checkpoint.Path)
	}

	send(loadingCatalogUpdate(result.Source))
	catalog, err := formatter.ReadCatalog(result.Source)
	if err != nil {
		return e.fail(result, opts, logger, err)
	}
	if len(catalog.Songs) == 0 {
		return e.fail(result, opts, logger, fmt.Errorf("%w: %s", shared.ErrEmptyCatalog, result.Source))
	}
	result.Catalog = catalog
	result.Stats.Total = len(catalog.Songs)
	send(loadedCatalogUpdate(result.Source, catalog))

	pool, err := NewPool(ctx, opts.PoolSize, e.factory, logger)
	if err != nil {
		return e.fail(result, opts, logger, err)
	}
	send(openPoolUpdate(pool.Size()))

	e.transition(result, logger, StateResolving)
	runErr := e.resolve(ctx, send, pool, catalog, checkpoint, opts, &result.Stats, logger)

	if err := pool.Close(); err != nil {
		logger.Warn("failed to close sessions", "error", err)
	}
	if runErr != nil {
		return e.fail(result, opts, logger, runErr)
	}

	e.transition(result, logger, StateFinalizing)
	send(writeOutputUpdate(opts.OutputPath))
	if err := formatter.WriteCatalog(opts.OutputPath, catalog); err != nil {
		return e.fail(result, opts, logger, err)
	}
	if err := checkpoint.Remove(); err != nil {
		logger.Warn("failed to remove checkpoint", "path", checkpoint.Path, "error", err)
	}

	result.Stats.FinishedAt = time.Now()
	e.transition(result, logger, StateDone)
	logger.Info("run complete",
		"resolved", result.Stats.Resolved,
		"failed", result.Stats.Failed,
		"skipped", result.Stats.Skipped,
		"retries", result.Stats.RetriesConsumed,
	)
	send(summaryUpdate(result.Stats))
	e.record(result, opts, logger, nil)
	return result, nil
}

// resolve fans the tasks out to the pool and applies results on the calling goroutine.
func (e *ResolveEngine) resolve(
	ctx context.Context,
	send func(ProgressUpdate),
	pool *Pool,
	catalog *models.Catalog,
	checkpoint *Checkpointer,
	opts Options,
	stats *RunStats,
	logger *log.Logger,
) error {
	n := len(catalog.Songs)
	jobs := make([]job, n)
	for i := range catalog.Songs {
		song := &catalog.Songs[i]
		jobs[i] = job{index: i, query: song.Query(), label: song.Label(), skip: song.Resolved()}
	}

	controller := &RetryController{
		MaxRetries: opts.MaxRetries,
		Timeout:    opts.Timeout,
		Jitter:     NewJitter(opts.MinDelay, opts.MaxDelay),
		Identities: NewIdentityRotator(opts.UserAgents, opts.Viewport),
	}
	if opts.RequestsPerSecond > 0 {
		controller.Limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}

	rctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make(chan TaskResult, n)
	done := make(chan error, 1)
	go func() {
		done <- pool.Run(rctx, n, func(ctx context.Context, slot *Slot, i int) error {
			results <- controller.Attempt(ctx, slot, jobs[i])
			return nil
		})
		close(results)
	}()

	marks := newWatermark(n, checkpoint.Every)
	var persistErr error
	for res := range results {
		if persistErr != nil || res.Status == StatusCanceled {
			continue
		}

		song := &catalog.Songs[res.Index]
		switch res.Status {
		case StatusResolved:
			song.MarkResolved(res.VideoID)
			logger.Info("resolved", "song", song.Label(), "video_id", res.VideoID, "attempts", res.Attempts)
		case StatusFailed:
			song.MarkFailed()
			logger.Warn("unresolved", "song", song.Label(), "attempts", res.Attempts, "error", res.Err)
		case StatusSkipped:
			logger.Debug("skipped", "song", song.Label(), "video_id", song.YoutubeID)
		}
		stats.record(res)
		send(songUpdate(stats.Settled(), n, song, res))

		if marks.settle(res.Index) {
			if err := checkpoint.Save(catalog); err != nil {
				persistErr = err
				cancel()
				continue
			}
			stats.Checkpoints++
			logger.Debug("checkpoint written", "path", checkpoint.Path, "settled", marks.level)
			send(checkpointUpdate(marks.level, n, checkpoint.Path))
		}
	}

	runErr := <-done
	switch {
	case persistErr != nil:
		return persistErr
	case ctx.Err() != nil:
		return ctx.Err()
	case runErr != nil:
		return runErr
	}
	if !stats.Complete() {
		return fmt.Errorf("run ended with %d of %d tasks settled", stats.Settled(), n)
	}
	return nil
}

func (e *ResolveEngine) transition(result *RunResult, logger *log.Logger, next State) {
	logger.Debug("state change", "from", result.State, "to", next)
	result.State = next
}

func (e *ResolveEngine) fail(result *RunResult, opts Options, logger *log.Logger, err error) (*RunResult, error) {
	result.Stats.FinishedAt = time.Now()
	e.transition(result, logger, StateFailed)
	if errors.Is(err, context.Canceled) {
		logger.Warn("run interrupted", "checkpoint", result.CheckpointPath)
	} else {
		logger.Error("run failed", "error", err)
	}
	e.record(result, opts, logger, err)
	return result, err
}

func (e *ResolveEngine) record(result *RunResult, opts Options, logger *log.Logger, runErr error) {
	if e.recorder == nil {
		return
	}

	rec := &models.RunRecord{
		RunID:      result.RunID,
		InputPath:  opts.InputPath,
		OutputPath: opts.OutputPath,
		Strategy:   opts.Strategy,
		PoolSize:   opts.PoolSize,
		MaxRetries: opts.MaxRetries,
		Total:      result.Stats.Total,
		Resolved:   result.Stats.Resolved,
		Failed:     result.Stats.Failed,
		Skipped:    result.Stats.Skipped,
		Retries:    result.Stats.RetriesConsumed,
		Status:     models.RunStatusDone,
		StartedAt:  result.Stats.StartedAt,
		FinishedAt: result.Stats.FinishedAt,
	}
	if runErr != nil {
		rec.Status = models.RunStatusFailed
		rec.Error = runErr.Error()
	}

	if err := e.recorder.RecordRun(rec); err != nil {
		logger.Warn("failed to record run", "error", err)
	}
}

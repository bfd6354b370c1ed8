package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/ytid/internal/shared"
	"golang.org/x/time/rate"
)

// Outcome classifies a single resolution attempt.
type Outcome int

const (
	OutcomeNotFound Outcome = iota
	OutcomeResolved
	OutcomeTransientError
)

func (o Outcome) String() string {
	switch o {
	case OutcomeResolved:
		return "resolved"
	case OutcomeTransientError:
		return "transient_error"
	default:
		return "not_found"
	}
}

// Status is the terminal state of a task.
type Status int

const (
	StatusPending Status = iota
	StatusSkipped
	StatusResolved
	StatusFailed
	StatusCanceled
)

func (s Status) String() string {
	switch s {
	case StatusSkipped:
		return "skipped"
	case StatusResolved:
		return "resolved"
	case StatusFailed:
		return "failed"
	case StatusCanceled:
		return "canceled"
	default:
		return "pending"
	}
}

// TaskResult is what a slot reports back for one task.
type TaskResult struct {
	Index    int
	Status   Status
	VideoID  string
	Attempts int
	Retries  int   // attempts that did not resolve
	Err      error // last transient error, if any
}

// job is the read-only view of a song handed to a slot.
type job struct {
	index int
	query string
	label string
	skip  bool
}

// RetryController drives the bounded attempts for one task.
type RetryController struct {
	MaxRetries int
	Timeout    time.Duration
	Jitter     *Jitter
	Limiter    *rate.Limiter // optional global request cap
	Identities *IdentityRotator
}

// Attempt resolves j on slot, retrying until a video ID is found or MaxRetries attempts are spent.
//
// Attempt errors never escape; only cancellation of ctx ends the loop early. An attempt cut short by
// cancellation reports StatusCanceled, even on the last attempt, so the task stays pending.
func (c *RetryController) Attempt(ctx context.Context, slot *Slot, j job) TaskResult {
	res := TaskResult{Index: j.index, Status: StatusSkipped}
	if j.skip {
		return res
	}

	res.Status = StatusFailed
	for attempt := 1; attempt <= c.MaxRetries; attempt++ {
		if ctx.Err() != nil {
			res.Status = StatusCanceled
			return res
		}

		res.Attempts++
		outcome, id, err := c.try(ctx, slot, j.query)
		logAttempt(slot.Logger, j, attempt, c.MaxRetries, outcome, err)
		if outcome != OutcomeResolved && ctx.Err() != nil {
			res.Status = StatusCanceled
			return res
		}

		if outcome == OutcomeResolved {
			res.Status = StatusResolved
			res.VideoID = id
			res.Err = nil
		} else {
			res.Retries++
			res.Err = err
		}

		if werr := c.Jitter.Wait(ctx); werr != nil && res.Status != StatusResolved && attempt < c.MaxRetries {
			res.Status = StatusCanceled
			return res
		}
		if res.Status == StatusResolved {
			return res
		}
	}
	return res
}

func (c *RetryController) try(ctx context.Context, slot *Slot, query string) (Outcome, string, error) {
	if c.Identities != nil {
		slot.Session.Identify(c.Identities.Next())
	}

	if c.Limiter != nil {
		if err := c.Limiter.Wait(ctx); err != nil {
			return OutcomeTransientError, "", err
		}
	}

	actx := ctx
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		actx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	id, err := slot.Session.Resolve(actx, query)
	switch {
	case err != nil:
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			err = fmt.Errorf("%w: no answer within %s: %w", shared.ErrTimeout, c.Timeout, err)
		}
		return OutcomeTransientError, "", err
	case id == "":
		return OutcomeNotFound, "", nil
	default:
		return OutcomeResolved, id, nil
	}
}

func logAttempt(logger *log.Logger, j job, attempt, max int, outcome Outcome, err error) {
	if logger == nil {
		return
	}
	kv := []any{"song", j.label, "attempt", attempt, "max", max, "outcome", outcome}
	if err != nil {
		kv = append(kv, "error", err)
		logger.Warn("resolve attempt failed", kv...)
		return
	}
	logger.Debug("resolve attempt", kv...)
}

package models

import (
	"fmt"
	"time"
)

// Run status values stored with each [RunRecord].
const (
	RunStatusDone   = "done"
	RunStatusFailed = "failed"
)

// RunRecord captures the configuration and outcome counters of one batch run.
type RunRecord struct {
	RunID      string
	InputPath  string
	OutputPath string
	Strategy   string
	PoolSize   int
	MaxRetries int
	Total      int
	Resolved   int
	Failed     int
	Skipped    int
	Retries    int
	Status     string
	Error      string
	StartedAt  time.Time
	FinishedAt time.Time
}

var _ Model = (*RunRecord)(nil)

func (r *RunRecord) ID() string           { return r.RunID }
func (r *RunRecord) CreatedAt() time.Time { return r.StartedAt }
func (r *RunRecord) UpdatedAt() time.Time { return r.FinishedAt }

// Duration returns the wall time of the run.
func (r *RunRecord) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Validate checks required fields and the outcome sum.
func (r *RunRecord) Validate() error {
	if r.InputPath == "" || r.OutputPath == "" {
		return fmt.Errorf("input and output paths are required")
	}
	if r.Status != RunStatusDone && r.Status != RunStatusFailed {
		return fmt.Errorf("invalid run status %q", r.Status)
	}
	if r.Status == RunStatusDone && r.Resolved+r.Failed+r.Skipped != r.Total {
		return fmt.Errorf("outcome counts (%d) do not sum to total (%d)", r.Resolved+r.Failed+r.Skipped, r.Total)
	}
	return nil
}

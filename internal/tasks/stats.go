package tasks

import (
	"fmt"
	"time"
)

// RunStats holds the outcome counters of a run.
//
// Only the coordinator goroutine updates it, one increment per event, never decremented.
type RunStats struct {
	Total           int
	Resolved        int
	Failed          int
	Skipped         int
	RetriesConsumed int
	Attempts        int
	Checkpoints     int
	StartedAt       time.Time
	FinishedAt      time.Time
}

func (s *RunStats) record(r TaskResult) {
	switch r.Status {
	case StatusResolved:
		s.Resolved++
	case StatusFailed:
		s.Failed++
	case StatusSkipped:
		s.Skipped++
	}
	s.Attempts += r.Attempts
	s.RetriesConsumed += r.Retries
}

// Settled is the number of tasks with a terminal outcome.
func (s RunStats) Settled() int {
	return s.Resolved + s.Failed + s.Skipped
}

// Complete reports whether every task has settled.
func (s RunStats) Complete() bool {
	return s.Settled() == s.Total
}

func (s RunStats) Duration() time.Duration {
	if s.FinishedAt.IsZero() {
		return time.Since(s.StartedAt)
	}
	return s.FinishedAt.Sub(s.StartedAt)
}

// Summary renders the counters as a single line.
func (s RunStats) Summary() string {
	return fmt.Sprintf("%d songs: %d resolved, %d failed, %d skipped, %d retries consumed (%s)",
		s.Total, s.Resolved, s.Failed, s.Skipped, s.RetriesConsumed, s.Duration().Round(time.Millisecond))
}

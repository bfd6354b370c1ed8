package tasks

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/desertthunder/ytid/internal/formatter"
	"github.com/desertthunder/ytid/internal/models"
	"github.com/desertthunder/ytid/internal/shared"
)

// DefaultCheckpointEvery is the checkpoint cadence in settled tasks.
const DefaultCheckpointEvery = 10

// Checkpointer snapshots the in-progress catalog so an interrupted run can resume.
type Checkpointer struct {
	Path  string
	Every int
}

// Save overwrites the checkpoint with the full catalog.
func (c *Checkpointer) Save(catalog *models.Catalog) error {
	if err := formatter.WriteCatalog(c.Path, catalog); err != nil {
		return fmt.Errorf("checkpoint %s: %w", c.Path, err)
	}
	return nil
}

// Remove deletes the checkpoint. A missing file is not an error.
func (c *Checkpointer) Remove() error {
	if err := os.Remove(c.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: failed to remove checkpoint: %w", shared.ErrPersistence, err)
	}
	return nil
}

// Exists reports whether a checkpoint file is present.
func (c *Checkpointer) Exists() bool {
	info, err := os.Stat(c.Path)
	return err == nil && !info.IsDir()
}

// watermark counts the leading task indices that have settled.
//
// A checkpoint is due each time the count crosses a multiple of every.
type watermark struct {
	settled []bool
	level   int
	every   int
	marks   int
}

func newWatermark(n, every int) *watermark {
	if every <= 0 {
		every = DefaultCheckpointEvery
	}
	return &watermark{settled: make([]bool, n), every: every}
}

// settle marks index i and reports whether a checkpoint is due.
func (w *watermark) settle(i int) bool {
	w.settled[i] = true
	for w.level < len(w.settled) && w.settled[w.level] {
		w.level++
	}
	if marks := w.level / w.every; marks > w.marks {
		w.marks = marks
		return true
	}
	return false
}

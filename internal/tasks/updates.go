package tasks

import (
	"fmt"

	"github.com/desertthunder/ytid/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	LoadCatalog Phase = iota
	OpenPool
	ResolveSongs
	SaveCheckpoint
	WriteOutput
	Summary
)

func (p Phase) String() string {
	switch p {
	case LoadCatalog:
		return "load_catalog"
	case OpenPool:
		return "open_pool"
	case ResolveSongs:
		return "resolve_songs"
	case SaveCheckpoint:
		return "save_checkpoint"
	case WriteOutput:
		return "write_output"
	case Summary:
		return "summary"
	default:
		return ""
	}
}

func loadingCatalogUpdate(path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   LoadCatalog,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Loading catalog from %s...", path),
	}
}

func loadedCatalogUpdate(path string, c *models.Catalog) ProgressUpdate {
	resolved, failed, pending := c.Counts()
	return ProgressUpdate{
		Phase: LoadCatalog,
		Step:  1,
		Total: 1,
		Message: fmt.Sprintf("Loaded %d songs from %s (%d resolved, %d failed, %d pending)",
			len(c.Songs), path, resolved, failed, pending),
	}
}

func openPoolUpdate(size int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   OpenPool,
		Step:    size,
		Total:   size,
		Message: fmt.Sprintf("Opened %d resolver sessions", size),
	}
}

// songUpdate reports a settled task. Data carries the [TaskResult].
func songUpdate(done, total int, song *models.Song, res TaskResult) ProgressUpdate {
	var msg string
	prefix := fmt.Sprintf("[%d/%d]", res.Index+1, total)
	switch res.Status {
	case StatusSkipped:
		msg = fmt.Sprintf("%s ↷ %s (already %s)", prefix, song.Label(), song.YoutubeID)
	case StatusResolved:
		msg = fmt.Sprintf("%s ✓ %s → %s", prefix, song.Label(), res.VideoID)
	case StatusFailed:
		msg = fmt.Sprintf("%s ✗ %s after %d attempts", prefix, song.Label(), res.Attempts)
	default:
		msg = fmt.Sprintf("%s … %s", prefix, song.Label())
	}
	return ProgressUpdate{
		Phase:   ResolveSongs,
		Step:    done,
		Total:   total,
		Message: msg,
		Data:    res,
	}
}

func checkpointUpdate(settled, total int, path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SaveCheckpoint,
		Step:    settled,
		Total:   total,
		Message: fmt.Sprintf("Checkpoint: %d/%d settled → %s", settled, total, path),
	}
}

func writeOutputUpdate(path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteOutput,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Writing results to %s...", path),
	}
}

func summaryUpdate(stats RunStats) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Summary,
		Step:    stats.Total,
		Total:   stats.Total,
		Message: stats.Summary(),
		Data:    stats,
	}
}

package tasks

import (
	"fmt"

	"github.com/desertthunder/moviebox/internal/models"
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
	Snapshot Phase = iota
	Enrich
	Write
	Import
)

func (p Phase) String() string {
	switch p {
	case Snapshot:
		return "snapshot"
	case Enrich:
		return "enrich"
	case Write:
		return "write"
	case Import:
		return "import"
	default:
		return ""
	}
}

func snapshotUpdate(saved int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Snapshot,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Read library (%d saved movies)", saved),
	}
}

func enrichStartUpdate(total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Enrich,
		Step:    0,
		Total:   total,
		Message: "Fetching movie details from TMDB...",
	}
}

func enrichCompletedUpdate(step, total int, title string, d *models.MovieDetails) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Enrich,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s", step, total, title),
		Data:    d,
	}
}

func enrichFailedUpdate(step, total int, title string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Enrich,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, title, err),
	}
}

func writeUpdate(format string, files int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Write,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Wrote %s export (%d files)", format, files),
	}
}

func importUpdate(step, total int, message string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Import,
		Step:    step,
		Total:   total,
		Message: message,
	}
}

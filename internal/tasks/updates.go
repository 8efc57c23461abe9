package tasks

import "fmt"

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
	Classify Phase = iota
	ApplyChanges
	Snapshot
	Assemble
	Persist
	ImportTracks
	PushPlaylist
)

func (p Phase) String() string {
	switch p {
	case Classify:
		return "classify"
	case ApplyChanges:
		return "apply_changes"
	case Snapshot:
		return "snapshot"
	case Assemble:
		return "assemble"
	case Persist:
		return "persist"
	case ImportTracks:
		return "import_tracks"
	case PushPlaylist:
		return "push_playlist"
	default:
		return ""
	}
}

func classifyUpdate(total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Classify,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Classifying %d catalog tracks...", total),
	}
}

func applyChangesUpdate(applied, proposed int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ApplyChanges,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Applied %d of %d category migrations", applied, proposed),
	}
}

func snapshotUpdate(total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Snapshot,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Snapshotted %d tracks for generation", total),
	}
}

func assembleUpdate(slots int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Assemble,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Filling %d playlist slots...", slots),
	}
}

func persistUpdate(name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Persist,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Saving playlist %q...", name),
	}
}

func importUpdate(step, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ImportTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Imported %d of %d tracks", step, total),
	}
}

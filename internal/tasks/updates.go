package tasks

import (
	"fmt"

	"github.com/desertthunder/stylefy/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data
}

// Operation phase enumeration
type Phase int

const (
	FetchSavedTracks Phase = iota
	FetchPlaylists
	FetchPlaylistTracks
	FetchArtists
	Grouping
	Reconcile
	Dedupe
)

func (p Phase) String() string {
	switch p {
	case FetchSavedTracks:
		return "fetch_saved_tracks"
	case FetchPlaylists:
		return "fetch_playlists"
	case FetchPlaylistTracks:
		return "fetch_playlist_tracks"
	case FetchArtists:
		return "fetch_artists"
	case Grouping:
		return "grouping"
	case Reconcile:
		return "reconcile"
	case Dedupe:
		return "dedupe"
	default:
		return ""
	}
}

func phaseUpdate(phase Phase, message string) ProgressUpdate {
	return ProgressUpdate{Phase: phase, Step: 1, Total: 1, Message: message}
}

func savedTracksUpdate(count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchSavedTracks,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Found %d saved tracks", count),
		Data:    count,
	}
}

func artistsUpdate(step, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchArtists,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Looking up artists...", step, total),
	}
}

func groupsUpdate(groups models.GenreGroups) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Grouping,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Grouped tracks into %d genres", len(groups)),
		Data:    len(groups),
	}
}

func reconcileUpdate(result *ReconcileResult) ProgressUpdate {
	return ProgressUpdate{
		Phase: Reconcile,
		Step:  1,
		Total: 1,
		Message: fmt.Sprintf("%d created, %d extended, %d unchanged, %d failed",
			result.Created, result.Extended, result.Unchanged, result.Failed),
		Data: result,
	}
}

func dedupeUpdate(step, total int, pl models.Playlist) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Dedupe,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s", step, total, displayName(pl)),
		Data:    pl,
	}
}

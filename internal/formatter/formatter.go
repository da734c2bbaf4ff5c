// package formatter renders genre groups, reconcile and dedupe results, and run history as text, Markdown or JSON
package formatter

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/stylefy/internal/models"
	"github.com/desertthunder/stylefy/internal/shared"
	"github.com/desertthunder/stylefy/internal/tasks"
)

// GenreSize is one row of a genre preview.
type GenreSize struct {
	Genre    string `json:"genre"`
	Tracks   int    `json:"tracks"`
	Eligible bool   `json:"eligible"` // more tracks than the minimum, so a playlist would be reconciled
}

// GenreSizes lists every genre in ascending order with its track count.
func GenreSizes(groups models.GenreGroups, minTrackCount int) []GenreSize {
	genres := groups.Genres()
	sizes := make([]GenreSize, 0, len(genres))
	for _, genre := range genres {
		n := len(groups[genre])
		sizes = append(sizes, GenreSize{Genre: genre, Tracks: n, Eligible: n > minTrackCount})
	}
	return sizes
}

// GroupsToText renders a genre preview, marking genres at or below the minimum as skipped.
func GroupsToText(groups models.GenreGroups, minTrackCount int, p *Palette) []byte {
	var buf bytes.Buffer
	sizes := GenreSizes(groups, minTrackCount)

	eligible := 0
	for _, s := range sizes {
		if s.Eligible {
			eligible++
		}
	}

	buf.WriteString(p.Title(fmt.Sprintf("Genres: %d (%d with more than %d tracks)", len(sizes), eligible, minTrackCount)))
	buf.WriteString("\n\n")

	for _, s := range sizes {
		line := fmt.Sprintf("%-40s %5d", s.Genre, s.Tracks)
		if !s.Eligible {
			line = p.Help(line + "  skipped")
		}
		buf.WriteString(line + "\n")
	}
	return buf.Bytes()
}

// GroupsToJSON renders the genre preview as indented JSON.
func GroupsToJSON(groups models.GenreGroups, minTrackCount int) ([]byte, error) {
	return shared.MarshalJSON(GenreSizes(groups, minTrackCount), true)
}

// LogToText renders run log lines one per line.
func LogToText(lines []string) []byte {
	var buf bytes.Buffer
	for _, line := range lines {
		buf.WriteString(line + "\n")
	}
	return buf.Bytes()
}

// ReconcileToText renders the run log followed by per-genre outcomes and totals.
func ReconcileToText(result *tasks.ReconcileResult, p *Palette) []byte {
	var buf bytes.Buffer
	buf.Write(LogToText(result.Log.Lines()))

	if len(result.Outcomes) > 0 {
		buf.WriteString("\n")
	}
	for _, o := range result.Outcomes {
		buf.WriteString(outcomeLine(o, result.DryRun, p) + "\n")
	}

	buf.WriteString("\n")
	if result.DryRun {
		buf.WriteString(p.Warn("Dry run, no playlists were changed.") + "\n")
	}
	buf.WriteString(fmt.Sprintf("Created: %d  Extended: %d  Unchanged: %d  Failed: %d  Tracks added: %d\n",
		result.Created, result.Extended, result.Unchanged, result.Failed, result.TracksAdded))
	return buf.Bytes()
}

func outcomeLine(o tasks.GroupOutcome, dryRun bool, p *Palette) string {
	switch o.Action {
	case tasks.ActionCreated:
		verb := "created"
		if dryRun {
			verb = "would create"
		}
		return p.OK(fmt.Sprintf("+ %s", o.Genre)) + fmt.Sprintf(" %s with %d tracks", verb, o.Added)
	case tasks.ActionExtended:
		verb := "added"
		if dryRun {
			verb = "would add"
		}
		return p.OK(fmt.Sprintf("~ %s", o.Genre)) + fmt.Sprintf(" %s %d tracks", verb, o.Added)
	case tasks.ActionFailed:
		return p.Err(fmt.Sprintf("! %s", o.Genre)) + fmt.Sprintf(" failed: %v", o.Err)
	default:
		return p.Help(fmt.Sprintf("= %s up to date", o.Genre))
	}
}

// ReconcileToMarkdown renders a reconcile result as a Markdown report.
func ReconcileToMarkdown(result *tasks.ReconcileResult) []byte {
	var buf bytes.Buffer

	buf.WriteString("# Genre playlists\n\n")
	if result.DryRun {
		buf.WriteString("_Dry run_\n\n")
	}
	buf.WriteString(fmt.Sprintf("**Created**: %d\n", result.Created))
	buf.WriteString(fmt.Sprintf("**Extended**: %d\n", result.Extended))
	buf.WriteString(fmt.Sprintf("**Unchanged**: %d\n", result.Unchanged))
	buf.WriteString(fmt.Sprintf("**Failed**: %d\n", result.Failed))
	buf.WriteString(fmt.Sprintf("**Tracks added**: %d\n\n", result.TracksAdded))

	if len(result.Outcomes) > 0 {
		buf.WriteString("| Genre | Action | Tracks | Playlist |\n|---|---|---|---|\n")
		for _, o := range result.Outcomes {
			buf.WriteString(fmt.Sprintf("| %s | %s | %d | %s |\n", escapeCell(o.Genre), o.Action, o.Added, o.PlaylistID))
		}
		buf.WriteString("\n")
	}

	if result.Log.Len() > 0 {
		buf.WriteString("## Log\n\n")
		for _, line := range result.Log.Lines() {
			buf.WriteString("- " + line + "\n")
		}
	}
	return buf.Bytes()
}

// DedupeToText renders the run log of a single playlist cleanup and a one-line summary.
func DedupeToText(result *tasks.DedupeResult, p *Palette) []byte {
	var buf bytes.Buffer
	buf.Write(LogToText(result.Log.Lines()))
	buf.WriteString(dedupeSummary(result.PlaylistName, len(result.Removed), p) + "\n")
	return buf.Bytes()
}

// RemovalToText renders the run log of a track removal and a one-line summary.
func RemovalToText(result *tasks.DedupeResult, p *Palette) []byte {
	var buf bytes.Buffer
	buf.Write(LogToText(result.Log.Lines()))
	if len(result.Removed) == 0 {
		buf.WriteString(p.Help(fmt.Sprintf("%s: no matching tracks", result.PlaylistName)) + "\n")
	} else {
		buf.WriteString(p.OK(fmt.Sprintf("%s: removed %d", result.PlaylistName, len(result.Removed))) + "\n")
	}
	return buf.Bytes()
}

// LibraryDedupeToText renders a library-wide cleanup: the run log, one line per playlist and the total.
func LibraryDedupeToText(result *tasks.LibraryDedupeResult, p *Palette) []byte {
	var buf bytes.Buffer
	buf.Write(LogToText(result.Log.Lines()))
	if len(result.Results) > 0 {
		buf.WriteString("\n")
	}
	for _, r := range result.Results {
		buf.WriteString(dedupeSummary(r.PlaylistName, len(r.Removed), p) + "\n")
	}
	buf.WriteString(fmt.Sprintf("\nRemoved %d duplicate tracks from %d playlists\n", result.Removed, len(result.Results)))
	return buf.Bytes()
}

func dedupeSummary(name string, removed int, p *Palette) string {
	if removed == 0 {
		return p.Help(fmt.Sprintf("%s: no duplicates", name))
	}
	return p.OK(fmt.Sprintf("%s: removed %d", name, removed))
}

// RunsToText renders run history as a table, newest first as given.
func RunsToText(runs []*models.Run, p *Palette) []byte {
	var buf bytes.Buffer
	if len(runs) == 0 {
		buf.WriteString(p.Help("No runs recorded") + "\n")
		return buf.Bytes()
	}

	buf.WriteString(p.Title(fmt.Sprintf("%-5s %-36s %-10s %-10s %-20s %s", "#", "ID", "COMMAND", "STATUS", "STARTED", "DURATION")))
	buf.WriteString("\n")
	for _, run := range runs {
		status := string(run.Status())
		if run.Status() == models.RunFailed {
			status = p.Err(fmt.Sprintf("%-10s", status))
		} else {
			status = p.OK(fmt.Sprintf("%-10s", status))
		}
		buf.WriteString(fmt.Sprintf("%-5d %-36s %-10s %s %-20s %s\n",
			run.Sequence(), run.ID(), run.Command(), status,
			run.StartedAt().Local().Format(time.DateTime), formatDuration(run.Duration())))
	}
	return buf.Bytes()
}

// RunToText renders one run with its full log.
func RunToText(run *models.Run, p *Palette) []byte {
	var buf bytes.Buffer

	buf.WriteString(p.Title(fmt.Sprintf("Run %d: %s", run.Sequence(), run.Command())) + "\n")
	buf.WriteString(fmt.Sprintf("ID: %s\n", run.ID()))
	buf.WriteString(fmt.Sprintf("Status: %s\n", run.Status()))
	if msg := run.ErrorMessage(); msg != "" {
		buf.WriteString(p.Err("Error: "+msg) + "\n")
	}
	buf.WriteString(fmt.Sprintf("Started: %s\n", run.StartedAt().Local().Format(time.DateTime)))
	if !run.FinishedAt().IsZero() {
		buf.WriteString(fmt.Sprintf("Duration: %s\n", formatDuration(run.Duration())))
	}

	if lines := run.Lines(); len(lines) > 0 {
		buf.WriteString("\n")
		buf.Write(LogToText(lines))
	}
	return buf.Bytes()
}

// runJSON is the serialized form of [models.Run], whose fields are private.
type runJSON struct {
	ID         string    `json:"id"`
	Sequence   int       `json:"sequence"`
	Command    string    `json:"command"`
	Status     string    `json:"status"`
	Error      string    `json:"error,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Log        []string  `json:"log"`
}

// RunsToJSON renders run history as indented JSON.
func RunsToJSON(runs []*models.Run) ([]byte, error) {
	out := make([]runJSON, 0, len(runs))
	for _, run := range runs {
		lines := run.Lines()
		if lines == nil {
			lines = []string{}
		}
		out = append(out, runJSON{
			ID:         run.ID(),
			Sequence:   run.Sequence(),
			Command:    run.Command(),
			Status:     string(run.Status()),
			Error:      run.ErrorMessage(),
			StartedAt:  run.StartedAt(),
			FinishedAt: run.FinishedAt(),
			Log:        lines,
		})
	}
	return shared.MarshalJSON(out, true)
}

func formatDuration(d time.Duration) string {
	if d <= 0 {
		return "-"
	}
	return d.Round(time.Millisecond).String()
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

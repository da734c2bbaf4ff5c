package formatter

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/stylefy/internal/models"
	"github.com/desertthunder/stylefy/internal/tasks"
)

func saved(id string) models.SavedTrack {
	return models.SavedTrack{Track: models.Track{ID: id, URI: "spotify:track:" + id}}
}

func sampleGroups() models.GenreGroups {
	return models.GenreGroups{
		"rock": {saved("a"), saved("b")},
		"jazz": {saved("c")},
		"folk": {},
	}
}

func TestGroups(t *testing.T) {
	t.Run("GenreSizes", func(t *testing.T) {
		sizes := GenreSizes(sampleGroups(), 1)
		if len(sizes) != 3 {
			t.Fatalf("expected 3 genres, got %d", len(sizes))
		}

		want := []GenreSize{
			{Genre: "folk", Tracks: 0, Eligible: false},
			{Genre: "jazz", Tracks: 1, Eligible: false},
			{Genre: "rock", Tracks: 2, Eligible: true},
		}
		for i, w := range want {
			if sizes[i] != w {
				t.Errorf("row %d: expected %+v, got %+v", i, w, sizes[i])
			}
		}
	})

	t.Run("GroupsToText", func(t *testing.T) {
		out := string(GroupsToText(sampleGroups(), 1, nil))

		if !strings.Contains(out, "Genres: 3 (1 with more than 1 tracks)") {
			t.Errorf("missing header, got: %s", out)
		}
		if !strings.Contains(out, "jazz") || !strings.Contains(out, "skipped") {
			t.Errorf("expected jazz to be marked skipped, got: %s", out)
		}
		if strings.Index(out, "jazz") > strings.Index(out, "rock") {
			t.Errorf("expected genres in ascending order, got: %s", out)
		}
	})

	t.Run("GroupsToJSON", func(t *testing.T) {
		data, err := GroupsToJSON(sampleGroups(), 0)
		if err != nil {
			t.Fatalf("GroupsToJSON failed: %v", err)
		}

		var rows []GenreSize
		if err := json.Unmarshal(data, &rows); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if len(rows) != 3 || rows[2].Genre != "rock" || rows[2].Tracks != 2 {
			t.Errorf("unexpected rows %+v", rows)
		}
	})
}

func sampleResult(dryRun bool) *tasks.ReconcileResult {
	return &tasks.ReconcileResult{
		Outcomes: []tasks.GroupOutcome{
			{Genre: "jazz", PlaylistID: "pl-1", Action: tasks.ActionExtended, Added: 1},
			{Genre: "metal", Action: tasks.ActionFailed, Err: errors.New("upstream error")},
			{Genre: "rock", PlaylistID: "pl-2", Action: tasks.ActionCreated, Added: 2},
		},
		Created:     1,
		Extended:    1,
		Failed:      1,
		TracksAdded: 3,
		DryRun:      dryRun,
		Log:         tasks.NewRunLog("Getting saved tracks.", "Creating rock playlist."),
	}
}

func TestReconcile(t *testing.T) {
	t.Run("ReconcileToText", func(t *testing.T) {
		out := string(ReconcileToText(sampleResult(false), nil))

		for _, want := range []string{
			"Getting saved tracks.\nCreating rock playlist.\n",
			"~ jazz added 1 tracks",
			"! metal failed: upstream error",
			"+ rock created with 2 tracks",
			"Created: 1  Extended: 1  Unchanged: 0  Failed: 1  Tracks added: 3",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("expected %q in output, got: %s", want, out)
			}
		}
		if strings.Contains(out, "Dry run") {
			t.Error("did not expect dry run notice")
		}
	})

	t.Run("dry run", func(t *testing.T) {
		out := string(ReconcileToText(sampleResult(true), nil))

		if !strings.Contains(out, "Dry run, no playlists were changed.") {
			t.Errorf("expected dry run notice, got: %s", out)
		}
		if !strings.Contains(out, "+ rock would create with 2 tracks") {
			t.Errorf("expected planned create, got: %s", out)
		}
	})

	t.Run("ReconcileToMarkdown", func(t *testing.T) {
		out := string(ReconcileToMarkdown(sampleResult(false)))

		if !strings.HasPrefix(out, "# Genre playlists\n") {
			t.Errorf("expected heading, got: %s", out)
		}
		if !strings.Contains(out, "| rock | created | 2 | pl-2 |") {
			t.Errorf("missing rock row, got: %s", out)
		}
		if !strings.Contains(out, "- Creating rock playlist.") {
			t.Errorf("missing log section, got: %s", out)
		}
	})
}

func TestDedupe(t *testing.T) {
	removed := []models.PlaylistItem{{Track: models.Track{ID: "a"}, Position: 3}}

	t.Run("DedupeToText", func(t *testing.T) {
		result := &tasks.DedupeResult{
			PlaylistID:   "pl-1",
			PlaylistName: "Mix",
			Removed:      removed,
			Log:          tasks.NewRunLog("Removing 1 duplicate tracks from Mix playlist."),
		}

		out := string(DedupeToText(result, nil))
		if !strings.Contains(out, "Removing 1 duplicate tracks from Mix playlist.\n") || !strings.Contains(out, "Mix: removed 1") {
			t.Errorf("unexpected output: %s", out)
		}
	})

	t.Run("RemovalToText", func(t *testing.T) {
		out := string(RemovalToText(&tasks.DedupeResult{PlaylistName: "Mix", Removed: removed}, nil))
		if !strings.Contains(out, "Mix: removed 1") {
			t.Errorf("unexpected output: %s", out)
		}

		out = string(RemovalToText(&tasks.DedupeResult{PlaylistName: "Mix"}, nil))
		if !strings.Contains(out, "Mix: no matching tracks") {
			t.Errorf("unexpected output: %s", out)
		}
	})

	t.Run("LibraryDedupeToText", func(t *testing.T) {
		result := &tasks.LibraryDedupeResult{
			Results: []tasks.DedupeResult{
				{PlaylistName: "Mix", Removed: removed},
				{PlaylistName: "Chill"},
			},
			Removed: 1,
		}

		out := string(LibraryDedupeToText(result, nil))
		for _, want := range []string{"Mix: removed 1", "Chill: no duplicates", "Removed 1 duplicate tracks from 2 playlists"} {
			if !strings.Contains(out, want) {
				t.Errorf("expected %q in output, got: %s", want, out)
			}
		}
	})
}

func sampleRun(t *testing.T) *models.Run {
	t.Helper()
	started := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	run := models.NewRun(7, "organize", started)
	run.SetID("run-7")
	run.SetLines([]string{"Getting saved tracks.", "Putting pieces together."})
	run.Finish(started.Add(1500*time.Millisecond), errors.New("token expired"))
	return run
}

func TestRuns(t *testing.T) {
	t.Run("RunsToText", func(t *testing.T) {
		out := string(RunsToText([]*models.Run{sampleRun(t)}, nil))

		for _, want := range []string{"COMMAND", "run-7", "organize", "failed", "1.5s"} {
			if !strings.Contains(out, want) {
				t.Errorf("expected %q in output, got: %s", want, out)
			}
		}
	})

	t.Run("empty history", func(t *testing.T) {
		if out := string(RunsToText(nil, nil)); !strings.Contains(out, "No runs recorded") {
			t.Errorf("unexpected output: %s", out)
		}
	})

	t.Run("RunToText", func(t *testing.T) {
		out := string(RunToText(sampleRun(t), nil))

		for _, want := range []string{"Run 7: organize", "Status: failed", "Error: token expired", "Getting saved tracks.\nPutting pieces together.\n"} {
			if !strings.Contains(out, want) {
				t.Errorf("expected %q in output, got: %s", want, out)
			}
		}
	})

	t.Run("RunsToJSON", func(t *testing.T) {
		data, err := RunsToJSON([]*models.Run{sampleRun(t)})
		if err != nil {
			t.Fatalf("RunsToJSON failed: %v", err)
		}

		var rows []map[string]any
		if err := json.Unmarshal(data, &rows); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if len(rows) != 1 || rows[0]["id"] != "run-7" || rows[0]["status"] != "failed" {
			t.Errorf("unexpected rows %v", rows)
		}
		if log, ok := rows[0]["log"].([]any); !ok || len(log) != 2 {
			t.Errorf("expected two log lines, got %v", rows[0]["log"])
		}
	})
}

func TestPalette(t *testing.T) {
	t.Run("nil palette is plain", func(t *testing.T) {
		var p *Palette
		for name, render := range map[string]func(string) string{
			"Title": p.Title, "OK": p.OK, "Err": p.Err, "Warn": p.Warn, "Help": p.Help,
		} {
			if got := render("text"); got != "text" {
				t.Errorf("%s: expected text unchanged, got %q", name, got)
			}
		}
	})

	t.Run("nil palette renders reports", func(t *testing.T) {
		groups := models.GenreGroups{"rock": {saved("t1"), saved("t2")}}
		if out := string(GroupsToText(groups, 1, nil)); !strings.Contains(out, "rock") {
			t.Errorf("expected plain genre report, got %q", out)
		}
	})

	t.Run("styled text keeps content", func(t *testing.T) {
		if out := Terminal.Title("Genres"); !strings.Contains(out, "Genres") {
			t.Errorf("expected styled text to contain input, got %q", out)
		}
	})
}

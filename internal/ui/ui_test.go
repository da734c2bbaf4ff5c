package ui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/stylefy/internal/shared"
	"github.com/desertthunder/stylefy/internal/tasks"
	tu "github.com/desertthunder/stylefy/internal/testing"
)

func rockJazzLibrary() *tu.MockLibrary {
	return tu.NewMockLibrary("me").
		Save(tu.NewTrack("t1", "a1"), tu.NewTrack("t2", "a1"), tu.NewTrack("t3", "a2")).
		AddArtist("a1", "rock").
		AddArtist("a2", "jazz")
}

func press(m *Model, keys ...string) tea.Cmd {
	var cmd tea.Cmd
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		_, cmd = m.Update(msg)
	}
	return cmd
}

func loaded(t *testing.T, lib *tu.MockLibrary, opts tasks.ReconcileOptions) *Model {
	t.Helper()
	m := NewModel(context.Background(), tasks.NewGenreEngine(lib, nil, 1), opts)
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 40})
	m.Update(m.fetchGroups()())
	if m.Err() != nil {
		t.Fatalf("expected no error, got %v", m.Err())
	}
	return m
}

// finish drains a running reconcile through Update until the result arrives.
func finish(t *testing.T, m *Model) {
	t.Helper()
	if m.view != ReconcileView {
		t.Fatalf("expected reconcile view, got %v", m.view)
	}
	cmd := waitForProgress(m.updates, m.done)
	for cmd != nil {
		_, cmd = m.Update(cmd())
	}
	if m.view != ResultView {
		t.Fatalf("expected result view, got %v", m.view)
	}
}

func TestModel(t *testing.T) {
	t.Run("loads genres", func(t *testing.T) {
		m := loaded(t, rockJazzLibrary(), tasks.ReconcileOptions{})

		if m.loading {
			t.Error("expected loading to finish")
		}
		items := m.genreList.Items()
		if len(items) != 2 {
			t.Fatalf("expected 2 genres, got %d", len(items))
		}
		if first := items[0].(genreItem); first.genre != "jazz" || first.tracks != 1 {
			t.Errorf("expected jazz with 1 track first, got %+v", first)
		}
	})

	t.Run("fetch failure", func(t *testing.T) {
		lib := rockJazzLibrary()
		lib.Fail("SavedTracksPage", "", shared.ErrUpstream)

		m := NewModel(context.Background(), tasks.NewGenreEngine(lib, nil, 1), tasks.ReconcileOptions{})
		m.Update(m.fetchGroups()())

		if !errors.Is(m.Err(), shared.ErrUpstream) {
			t.Errorf("expected ErrUpstream, got %v", m.Err())
		}
		if !strings.Contains(m.View(), "Error:") {
			t.Errorf("expected error view, got %q", m.View())
		}

		cmd := press(m, "q")
		if cmd == nil {
			t.Fatal("expected quit command")
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Error("expected tea.QuitMsg")
		}
	})

	t.Run("browse tracks and go back", func(t *testing.T) {
		m := loaded(t, rockJazzLibrary(), tasks.ReconcileOptions{})

		press(m, "j", "enter")
		if m.view != TrackListView {
			t.Fatalf("expected track list view, got %v", m.view)
		}
		if len(m.trackList.Items()) != 2 {
			t.Errorf("expected 2 rock tracks, got %d", len(m.trackList.Items()))
		}

		press(m, "esc")
		if m.view != GenreListView {
			t.Errorf("expected genre list view, got %v", m.view)
		}
	})

	t.Run("organize one genre", func(t *testing.T) {
		lib := rockJazzLibrary()
		m := loaded(t, lib, tasks.ReconcileOptions{MinTrackCount: 5})

		press(m, "enter", "enter")
		if m.view != ConfirmView {
			t.Fatalf("expected confirm view, got %v", m.view)
		}
		if !strings.Contains(m.View(), "'jazz'") {
			t.Errorf("expected jazz confirmation, got %q", m.View())
		}

		press(m, "y")
		finish(t, m)

		result := m.Result()
		if result == nil || result.Created != 1 {
			t.Fatalf("expected one playlist created, got %+v", result)
		}
		if pl := lib.Playlist("jazz"); pl == nil || len(pl.Tracks) != 1 {
			t.Errorf("expected jazz playlist with 1 track, got %+v", pl)
		}
		if lib.Playlist("rock") != nil {
			t.Error("rock playlist should not be created")
		}
		if !strings.Contains(m.View(), "Created: 1") {
			t.Errorf("expected summary in result view, got %q", m.View())
		}
	})

	t.Run("organize all eligible genres", func(t *testing.T) {
		lib := rockJazzLibrary()
		m := loaded(t, lib, tasks.ReconcileOptions{MinTrackCount: 1})

		press(m, "a")
		if m.view != ConfirmView {
			t.Fatalf("expected confirm view, got %v", m.view)
		}
		groups, _ := m.pending()
		if len(groups) != 1 || groups["rock"] == nil {
			t.Errorf("expected only rock pending, got %v", groups.Genres())
		}

		press(m, "y")
		finish(t, m)

		if pl := lib.Playlist("rock"); pl == nil || len(pl.Tracks) != 2 {
			t.Errorf("expected rock playlist with 2 tracks, got %+v", pl)
		}
		if lib.Playlist("jazz") != nil {
			t.Error("jazz playlist should not be created")
		}
	})

	t.Run("dry run", func(t *testing.T) {
		lib := rockJazzLibrary()
		m := loaded(t, lib, tasks.ReconcileOptions{DryRun: true})

		press(m, "a")
		if !strings.Contains(m.View(), "Dry run") {
			t.Errorf("expected dry run notice, got %q", m.View())
		}

		press(m, "y")
		finish(t, m)

		if !m.Result().DryRun {
			t.Error("expected dry run result")
		}
		if len(lib.Calls("CreatePlaylist")) != 0 {
			t.Errorf("expected no playlist creation, got %d calls", len(lib.Calls("CreatePlaylist")))
		}
	})

	t.Run("decline confirmation", func(t *testing.T) {
		m := loaded(t, rockJazzLibrary(), tasks.ReconcileOptions{})

		press(m, "enter", "enter", "n")
		if m.view != TrackListView {
			t.Errorf("expected track list view, got %v", m.view)
		}

		press(m, "esc", "a", "n")
		if m.view != GenreListView {
			t.Errorf("expected genre list view, got %v", m.view)
		}
	})

	t.Run("restart after result", func(t *testing.T) {
		m := loaded(t, rockJazzLibrary(), tasks.ReconcileOptions{})

		press(m, "a", "y")
		finish(t, m)

		press(m, "r")
		if m.view != GenreListView || m.selected != "" {
			t.Errorf("expected reset genre list, got view %v selected %q", m.view, m.selected)
		}
	})
}

func TestItems(t *testing.T) {
	t.Run("genre description", func(t *testing.T) {
		if got := (genreItem{genre: "rock", tracks: 3, eligible: true}).Description(); got != "3 tracks" {
			t.Errorf("unexpected description %q", got)
		}
		if got := (genreItem{genre: "jazz", tracks: 1}).Description(); !strings.Contains(got, "below minimum") {
			t.Errorf("expected below minimum marker, got %q", got)
		}
	})

	t.Run("track description", func(t *testing.T) {
		track := tu.NewTrack("t1", "a1", "a2")
		if got := (trackItem{track: track}).Description(); !strings.Contains(got, ",") {
			t.Errorf("expected joined artist names, got %q", got)
		}
	})
}

package tasks

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/desertthunder/stylefy/internal/models"
	"github.com/desertthunder/stylefy/internal/shared"
	tu "github.com/desertthunder/stylefy/internal/testing"
)

func positions(items []models.PlaylistItem) []int {
	out := make([]int, len(items))
	for i, item := range items {
		out[i] = item.Position
	}
	return out
}

func TestFindDuplicates(t *testing.T) {
	a, b, c := tu.NewTrack("A").Track, tu.NewTrack("B").Track, tu.NewTrack("C").Track
	local := models.Track{URI: "spotify:local:x"}

	tests := []struct {
		name   string
		tracks []models.Track
		want   []int
	}{
		{"later occurrences of a repeated track", []models.Track{a, b, a, c, a}, []int{2, 4}},
		{"no duplicates", []models.Track{a, b, c}, []int{}},
		{"empty playlist", nil, []int{}},
		{"items without an ID are kept", []models.Track{local, a, local, a}, []int{3}},
		{"several repeated tracks", []models.Track{b, a, b, a, c, c}, []int{2, 3, 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := positions(FindDuplicates(tt.tracks)); !slices.Equal(got, tt.want) {
				t.Errorf("expected positions %v, got %v", tt.want, got)
			}
		})
	}
}

func TestDeduplicator(t *testing.T) {
	ctx := context.Background()
	a, b, c := tu.NewTrack("A").Track, tu.NewTrack("B").Track, tu.NewTrack("C").Track

	t.Run("RemoveDuplicates issues a single removal", func(t *testing.T) {
		lib := tu.NewMockLibrary("me")
		pl := lib.AddPlaylist("me", "mix", a, b, a, c, a)

		result, err := NewDeduplicator(lib, nil).RemoveDuplicates(ctx, pl.Playlist)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if got := trackIDs(pl.Tracks); !slices.Equal(got, []string{"A", "B", "C"}) {
			t.Errorf("expected [A B C], got %v", got)
		}
		if got := positions(result.Removed); !slices.Equal(got, []int{2, 4}) {
			t.Errorf("expected removed positions [2 4], got %v", got)
		}
		if calls := lib.Calls("RemovePlaylistItems"); len(calls) != 1 || calls[0].Count != 2 {
			t.Errorf("expected one removal call of 2 items, got %+v", calls)
		}
		if result.Log.Len() != 1 {
			t.Errorf("expected one log line, got %v", result.Log.Lines())
		}
	})

	t.Run("RemoveDuplicates without duplicates makes no removal", func(t *testing.T) {
		lib := tu.NewMockLibrary("me")
		pl := lib.AddPlaylist("me", "mix", a, b, c)

		result, err := NewDeduplicator(lib, nil).RemoveDuplicates(ctx, pl.Playlist)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(lib.Calls("RemovePlaylistItems")) != 0 || len(result.Removed) != 0 {
			t.Error("expected no removal")
		}
	})

	t.Run("RemoveTracks removes every occurrence in one request", func(t *testing.T) {
		lib := tu.NewMockLibrary("me")
		pl := lib.AddPlaylist("me", "mix", a, b, a, c)

		result, err := NewDeduplicator(lib, nil).RemoveTracks(ctx, pl.Playlist, []string{a.URI, "spotify:track:missing"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if got := trackIDs(pl.Tracks); !slices.Equal(got, []string{"B", "C"}) {
			t.Errorf("expected [B C], got %v", got)
		}
		if got := positions(result.Removed); !slices.Equal(got, []int{0, 2}) {
			t.Errorf("expected removed positions [0 2], got %v", got)
		}
		if calls := lib.Calls("RemovePlaylistItems"); len(calls) != 1 || calls[0].Count != 2 {
			t.Errorf("expected one removal call of 2 items, got %+v", calls)
		}
		if got := result.Log.Lines(); !slices.Equal(got, []string{"Removing 2 tracks from mix playlist."}) {
			t.Errorf("unexpected log %v", got)
		}
	})

	t.Run("RemoveTracks without matches makes no removal", func(t *testing.T) {
		lib := tu.NewMockLibrary("me")
		pl := lib.AddPlaylist("me", "mix", a, b)

		result, err := NewDeduplicator(lib, nil).RemoveTracks(ctx, pl.Playlist, []string{c.URI})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(lib.Calls("RemovePlaylistItems")) != 0 || len(result.Removed) != 0 {
			t.Error("expected no removal")
		}
	})

	t.Run("RemoveTracks requires URIs", func(t *testing.T) {
		lib := tu.NewMockLibrary("me")
		pl := lib.AddPlaylist("me", "mix", a)

		if _, err := NewDeduplicator(lib, nil).RemoveTracks(ctx, pl.Playlist, nil); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("RemoveDuplicates surfaces removal failure", func(t *testing.T) {
		lib := tu.NewMockLibrary("me")
		pl := lib.AddPlaylist("me", "mix", a, a)
		lib.Fail("RemovePlaylistItems", "", shared.ErrUpstream)

		result, err := NewDeduplicator(lib, nil).RemoveDuplicates(ctx, pl.Playlist)
		if !errors.Is(err, shared.ErrUpstream) {
			t.Errorf("expected ErrUpstream, got %v", err)
		}
		if len(result.Removed) != 0 {
			t.Errorf("expected nothing reported as removed, got %v", result.Removed)
		}
	})

	t.Run("RemoveAll processes every playlist", func(t *testing.T) {
		lib := tu.NewMockLibrary("me")
		first := lib.AddPlaylist("me", "one", a, a)
		second := lib.AddPlaylist("me", "two", b, c, b)

		result, err := NewDeduplicator(lib, nil).RemoveAll(ctx, []models.Playlist{first.Playlist, second.Playlist}, nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if result.Removed != 2 || len(result.Results) != 2 {
			t.Errorf("unexpected result %+v", result)
		}
		if len(first.Tracks) != 1 || len(second.Tracks) != 2 {
			t.Error("expected both playlists deduplicated")
		}
	})

	t.Run("RemoveAll stops at the first failure", func(t *testing.T) {
		lib := tu.NewMockLibrary("me")
		first := lib.AddPlaylist("me", "one", a, a)
		second := lib.AddPlaylist("me", "two", b, b)
		third := lib.AddPlaylist("me", "three", c, c)
		lib.Fail("PlaylistTracksPage", second.ID, shared.ErrUpstream)

		progress := make(chan ProgressUpdate, 10)
		result, err := NewDeduplicator(lib, nil).RemoveAll(ctx, []models.Playlist{first.Playlist, second.Playlist, third.Playlist}, progress)
		if !errors.Is(err, shared.ErrUpstream) {
			t.Fatalf("expected ErrUpstream, got %v", err)
		}

		if len(result.Results) != 1 || len(first.Tracks) != 1 {
			t.Errorf("expected only the first playlist processed, got %+v", result.Results)
		}
		if len(third.Tracks) != 2 {
			t.Error("third playlist should not be touched after a failure")
		}
		if len(progress) != 2 {
			t.Errorf("expected 2 progress updates, got %d", len(progress))
		}
	})
}

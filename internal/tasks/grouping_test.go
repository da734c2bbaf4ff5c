package tasks

import (
	"context"
	"errors"
	"reflect"
	"slices"
	"testing"

	"github.com/desertthunder/stylefy/internal/models"
	tu "github.com/desertthunder/stylefy/internal/testing"
)

func ids(tracks []models.SavedTrack) []string {
	out := make([]string, len(tracks))
	for i, t := range tracks {
		out[i] = t.ID
	}
	return out
}

func TestGroupByGenre(t *testing.T) {
	ctx := context.Background()

	tracks := []models.SavedTrack{
		tu.NewTrack("t1", "x"),
		tu.NewTrack("t2", "y"),
		tu.NewTrack("t3", "x", "y"),
		tu.NewTrack("t4", "unknown"),
		tu.NewTrack("t5", "z"),
		tu.NewTrack("t1", "x"),
	}
	artists := []models.Artist{
		{ID: "x", Genres: []string{"rock"}},
		{ID: "y", Genres: []string{"rock", "jazz", ""}},
		{ID: "z"},
		{ID: "w", Genres: []string{"lo-fi"}},
	}

	t.Run("keys are the distinct non-empty genres", func(t *testing.T) {
		groups, err := GroupByGenre(ctx, tracks, artists, 4)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		want := []string{"jazz", "lo-fi", "rock"}
		if got := groups.Genres(); !slices.Equal(got, want) {
			t.Errorf("expected genres %v, got %v", want, got)
		}
		if len(groups["lo-fi"]) != 0 {
			t.Errorf("expected empty lo-fi group, got %v", ids(groups["lo-fi"]))
		}
	})

	t.Run("membership", func(t *testing.T) {
		groups, err := GroupByGenre(ctx, tracks, artists, 4)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		tests := []struct {
			genre string
			want  []string
		}{
			{"rock", []string{"t1", "t2", "t3"}},
			{"jazz", []string{"t2", "t3"}},
		}
		for _, tt := range tests {
			t.Run(tt.genre, func(t *testing.T) {
				if got := ids(groups[tt.genre]); !slices.Equal(got, tt.want) {
					t.Errorf("expected %v, got %v", tt.want, got)
				}
			})
		}
	})

	t.Run("tracks without genres appear in no group", func(t *testing.T) {
		groups, err := GroupByGenre(ctx, tracks, artists, 4)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		for genre, members := range groups {
			for _, m := range members {
				if m.ID == "t4" || m.ID == "t5" {
					t.Errorf("track %s should not be in %s", m.ID, genre)
				}
			}
		}
	})

	t.Run("no duplicates within a group", func(t *testing.T) {
		groups, err := GroupByGenre(ctx, tracks, artists, 4)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		for genre, members := range groups {
			seen := map[string]bool{}
			for _, m := range members {
				if seen[m.ID] {
					t.Errorf("track %s appears twice in %s", m.ID, genre)
				}
				seen[m.ID] = true
			}
		}
	})

	t.Run("pure regardless of worker count", func(t *testing.T) {
		first, err := GroupByGenre(ctx, tracks, artists, 1)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		for _, workers := range []int{0, 2, 16} {
			again, err := GroupByGenre(ctx, tracks, artists, workers)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if !reflect.DeepEqual(first, again) {
				t.Errorf("workers=%d: grouping differs", workers)
			}
		}
	})

	t.Run("genres compared exactly", func(t *testing.T) {
		groups, err := GroupByGenre(ctx,
			[]models.SavedTrack{tu.NewTrack("t1", "a"), tu.NewTrack("t2", "b")},
			[]models.Artist{{ID: "a", Genres: []string{"Rock"}}, {ID: "b", Genres: []string{"rock"}}},
			0)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(groups) != 2 || len(groups["Rock"]) != 1 || len(groups["rock"]) != 1 {
			t.Errorf("expected separate Rock and rock groups, got %v", groups)
		}
	})

	t.Run("empty input", func(t *testing.T) {
		groups, err := GroupByGenre(ctx, nil, nil, 0)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(groups) != 0 {
			t.Errorf("expected no groups, got %v", groups)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		_, err := GroupByGenre(cctx, tracks, artists, 1)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}

func TestRunLog(t *testing.T) {
	var l RunLog
	l.Printf("Creating %s playlist.", "rock")
	l.Append(NewRunLog("a", "b"))

	if l.Len() != 3 {
		t.Fatalf("expected 3 lines, got %d", l.Len())
	}
	if l.String() != "Creating rock playlist.\na\nb" {
		t.Errorf("unexpected log %q", l.String())
	}

	lines := l.Lines()
	lines[0] = "changed"
	if l.Lines()[0] != "Creating rock playlist." {
		t.Error("Lines should return a copy")
	}

	data, err := RunLog{}.MarshalJSON()
	if err != nil || string(data) != "[]" {
		t.Errorf("expected empty JSON array, got %s (%v)", data, err)
	}
}

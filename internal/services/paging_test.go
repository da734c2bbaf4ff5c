package services

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/desertthunder/stylefy/internal/shared"
)

func pagesOf(pages ...[]int) PageFunc[int] {
	return func(_ context.Context, cursor string) (Page[int], error) {
		i := 0
		if cursor != "" {
			i, _ = strconv.Atoi(cursor)
		}
		page := Page[int]{Items: pages[i]}
		if i+1 < len(pages) {
			page.Next = strconv.Itoa(i + 1)
		}
		return page, nil
	}
}

func TestCollect(t *testing.T) {
	ctx := context.Background()

	t.Run("concatenates pages in order", func(t *testing.T) {
		got, err := Collect(ctx, pagesOf([]int{1, 2}, []int{3}, []int{4, 5}))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		want := []int{1, 2, 3, 4, 5}
		if len(got) != len(want) {
			t.Fatalf("expected %v, got %v", want, got)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("index %d: expected %d, got %d", i, want[i], got[i])
			}
		}
	})

	t.Run("single empty page", func(t *testing.T) {
		got, err := Collect(ctx, pagesOf([]int{}))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(got) != 0 {
			t.Errorf("expected empty result, got %v", got)
		}
	})

	t.Run("empty intermediate page", func(t *testing.T) {
		got, err := Collect(ctx, pagesOf([]int{1}, []int{}, []int{2}))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(got) != 2 {
			t.Errorf("expected 2 items, got %v", got)
		}
	})

	t.Run("failure discards partial result", func(t *testing.T) {
		boom := errors.New("boom")
		calls := 0
		got, err := Collect(ctx, func(_ context.Context, cursor string) (Page[int], error) {
			calls++
			if cursor == "" {
				return Page[int]{Items: []int{1}, Next: "next"}, nil
			}
			return Page[int]{}, boom
		})

		if !errors.Is(err, boom) {
			t.Errorf("expected page error, got %v", err)
		}
		if got != nil {
			t.Errorf("expected no partial result, got %v", got)
		}
		if calls != 2 {
			t.Errorf("expected 2 calls, got %d", calls)
		}
	})

	t.Run("repeating cursor", func(t *testing.T) {
		_, err := Collect(ctx, func(_ context.Context, _ string) (Page[int], error) {
			return Page[int]{Items: []int{1}, Next: "same"}, nil
		})
		if !errors.Is(err, shared.ErrUpstream) {
			t.Errorf("expected ErrUpstream, got %v", err)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		_, err := Collect(cctx, pagesOf([]int{1}))
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}

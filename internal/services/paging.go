package services

import (
	"context"
	"fmt"

	"github.com/desertthunder/stylefy/internal/shared"
)

// PageFunc fetches the page that starts at cursor.
type PageFunc[T any] func(ctx context.Context, cursor string) (Page[T], error)

// Collect drains a paginated source into a single slice, preserving page order and the order within each page.
//
// A failed page fetch aborts the whole accumulation and its error is returned as is; no partial result is returned.
// A continuation cursor that repeats is reported as an upstream failure instead of looping forever.
func Collect[T any](ctx context.Context, fetch PageFunc[T]) ([]T, error) {
	var (
		items  []T
		cursor string
		seen   = map[string]struct{}{}
	)

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page, err := fetch(ctx, cursor)
		if err != nil {
			return nil, err
		}
		items = append(items, page.Items...)

		if page.Next == "" {
			return items, nil
		}
		if _, dup := seen[page.Next]; dup || page.Next == cursor {
			return nil, fmt.Errorf("%w: pagination cursor %q did not advance", shared.ErrUpstream, page.Next)
		}
		seen[page.Next] = struct{}{}
		cursor = page.Next
	}
}

package services

import (
	"context"
	"fmt"

	"github.com/desertthunder/stylefy/internal/shared"
)

// Chunk splits items into consecutive slices of at most size elements.
//
// The chunks share the backing array of items.
func Chunk[T any](items []T, size int) [][]T {
	if size <= 0 || len(items) == 0 {
		return nil
	}

	chunks := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		chunks = append(chunks, items[start:end:end])
	}
	return chunks
}

// Dispatch calls fn once per chunk of at most size items, sequentially, and concatenates the results in chunk order.
//
// The first failing chunk stops the dispatch and its error is returned unchanged; later chunks are never sent,
// so the caller must treat the whole batch as not fully applied.
func Dispatch[T, R any](ctx context.Context, items []T, size int, fn func(context.Context, []T) ([]R, error)) ([]R, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: batch size must be positive, got %d", shared.ErrInvalidArgument, size)
	}

	var results []R
	for _, chunk := range Chunk(items, size) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		out, err := fn(ctx, chunk)
		if err != nil {
			return nil, err
		}
		results = append(results, out...)
	}
	return results, nil
}

// DispatchEach is [Dispatch] for calls that only acknowledge. Zero items make no calls.
func DispatchEach[T any](ctx context.Context, items []T, size int, fn func(context.Context, []T) error) error {
	_, err := Dispatch(ctx, items, size, func(ctx context.Context, chunk []T) ([]struct{}, error) {
		return nil, fn(ctx, chunk)
	})
	return err
}

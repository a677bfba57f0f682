package pagination

import "context"

// CollectionFuncs adapts a pair of functions to Collection.
type CollectionFuncs[T any] struct {
	CountFunc func(ctx context.Context) (int, error)
	SliceFunc func(ctx context.Context, offset, limit int) ([]T, error)
}

// Count implements Collection.
func (c CollectionFuncs[T]) Count(ctx context.Context) (int, error) {
	return c.CountFunc(ctx)
}

// Slice implements Collection.
func (c CollectionFuncs[T]) Slice(ctx context.Context, offset, limit int) ([]T, error) {
	return c.SliceFunc(ctx, offset, limit)
}

// SliceCollection serves an in-memory slice.
type SliceCollection[T any] []T

// Count implements Collection.
func (s SliceCollection[T]) Count(context.Context) (int, error) {
	return len(s), nil
}

// Slice implements Collection.
func (s SliceCollection[T]) Slice(_ context.Context, offset, limit int) ([]T, error) {
	if offset >= len(s) {
		return []T{}, nil
	}
	end := offset + limit
	if end > len(s) {
		end = len(s)
	}
	return s[offset:end], nil
}

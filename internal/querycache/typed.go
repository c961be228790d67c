package querycache

import (
	"context"
	"fmt"
)

// Load is Fetch with a typed fetcher and result.
func Load[T any](ctx context.Context, c *Cache, key Key, fetch func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	v, err := c.Fetch(ctx, key, func(ctx context.Context) (any, error) {
		v, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		return v, nil
	})
	if err != nil {
		return zero, err
	}
	out, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("query %s: cached %T, want %T", key, v, zero)
	}
	return out, nil
}

// MutateValue is Mutate for writes that return the stored record.
func MutateValue[T any](ctx context.Context, c *Cache, fn func(ctx context.Context) (T, error), affected ...Key) (T, error) {
	out, err := fn(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	c.Invalidate(affected...)
	return out, nil
}

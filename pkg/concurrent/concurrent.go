package concurrent

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"
)

// Each runs action for every element of items, at most limit at a time
// (limit <= 0 means one goroutine per element). The first error cancels the
// context passed to the remaining actions and is returned.
func Each[T any](ctx context.Context, items []T, limit int, action func(context.Context, T) error) error {
	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for _, item := range items {
		item := item
		g.Go(func() error {
			return action(gctx, item)
		})
	}
	return g.Wait()
}

// Map applies mapFn to every element of items, at most limit at a time,
// preserving order. Unlike Each, an error does not stop the other elements:
// all errors are joined and returned along with every result.
func Map[T any, R any](ctx context.Context, items []T, limit int, mapFn func(context.Context, T) (R, error)) ([]R, error) {
	out := make([]R, len(items))
	errs := make([]error, len(items))

	g := errgroup.Group{}
	if limit > 0 {
		g.SetLimit(limit)
	}
	for idx, item := range items {
		idx, item := idx, item
		g.Go(func() error {
			out[idx], errs[idx] = mapFn(ctx, item)
			return nil
		})
	}
	_ = g.Wait()

	return out, errors.Join(errs...)
}

// Package fanout runs one sub-operation per item of a collection with a
// bounded number in flight. It exists for list enrichment: N per-item
// upstream calls issued concurrently without hammering the upstream.
package fanout

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Map applies fn to every item concurrently, with at most limit calls in
// flight, and returns the results in input order. fn handles its own
// failures (returning a zero or fallback value); Map never aborts early
// except on context cancellation, in which case unstarted items get the
// zero value of R.
func Map[T, R any](ctx context.Context, limit int, items []T, fn func(ctx context.Context, item T) R) []R {
	if limit < 1 {
		limit = 1
	}

	results := make([]R, len(items))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, item := range items {
		if gctx.Err() != nil {
			break
		}
		i, item := i, item
		g.Go(func() error {
			results[i] = fn(gctx, item)
			return nil
		})
	}

	_ = g.Wait()
	return results
}

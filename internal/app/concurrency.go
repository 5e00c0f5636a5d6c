package app

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Parallel2 runs fn1 and fn2 concurrently. Either error cancels the other and
// is returned with zero results.
//
//	stored, up, err := Parallel2(ctx, loadStored, probeAssistant)
func Parallel2[T1, T2 any](
	ctx context.Context,
	fn1 func(context.Context) (T1, error),
	fn2 func(context.Context) (T2, error),
) (T1, T2, error) {
	var (
		r1 T1
		r2 T2
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		r1, err = fn1(ctx)
		return err
	})
	g.Go(func() (err error) {
		r2, err = fn2(ctx)
		return err
	})

	if err := g.Wait(); err != nil {
		var (
			zero1 T1
			zero2 T2
		)

		return zero1, zero2, fmt.Errorf("parallel execution failed: %w", err)
	}

	return r1, r2, nil
}

// FanOut calls fn for each item with at most workers calls in flight. The
// first error cancels the context passed to the remaining calls and stops
// scheduling new ones.
func FanOut[T any](parent context.Context, workers int, items []T, fn func(context.Context, T) error) error {
	g, ctx := errgroup.WithContext(parent)
	g.SetLimit(max(workers, 1))

	for _, item := range items {
		if ctx.Err() != nil {
			break
		}

		g.Go(func() error { return fn(ctx, item) })
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("fan out failed: %w", err)
	}

	return parent.Err()
}

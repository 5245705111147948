package future

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// All waits for every future and returns their values in order.
// The first failure is returned and the remaining waits are abandoned.
func All[T any](ctx context.Context, futures ...*Future[T]) ([]T, error) {
	values := make([]T, len(futures))
	g, gctx := errgroup.WithContext(ctx)

	for i, f := range futures {
		g.Go(func() error {
			v, err := f.Await(gctx)
			if err != nil {
				return err
			}
			values[i] = v
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return values, nil
}

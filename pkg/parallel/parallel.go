// Package parallel provides small helpers for bounded fan-out over
// index ranges.
package parallel

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// FirstIndexed runs fn for every index in [from, to) using at most
// workers goroutines. If any call fails, the error from the lowest
// failing index is returned and later indices stop being scheduled.
// Indices are scheduled in ascending order, so every index below a
// failing one has already been scheduled and is allowed to finish;
// the lowest-index error therefore wins deterministically.
func FirstIndexed(from, to, workers int, fn func(i int) error) error {
	if workers < 1 {
		workers = 1
	}

	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(workers)

	var (
		mu       sync.Mutex
		firstIdx int
		firstErr error
	)

	for i := from; i < to; i++ {
		if ctx.Err() != nil {
			break
		}
		i := i
		g.Go(func() error {
			if err := fn(i); err != nil {
				mu.Lock()
				if firstErr == nil || i < firstIdx {
					firstIdx, firstErr = i, err
				}
				mu.Unlock()
				return err
			}
			return nil
		})
	}

	_ = g.Wait()
	return firstErr
}

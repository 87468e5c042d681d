package utils

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// MapInParallel calls fn for every item on its own goroutine and returns the results in input
// order. The first failure or panic cancels the context handed to the remaining calls;
// cancellation errors are only reported when nothing else failed.
func MapInParallel[T, R any](ctx context.Context, items []T, fn func(context.Context, T) (R, error)) ([]R, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make([]R, len(items))

	var (
		wg       sync.WaitGroup
		errMu    sync.Mutex
		combined error
	)
	fail := func(err error) {
		errMu.Lock()
		if combined == nil || !errors.Is(err, context.Canceled) {
			combined = multierr.Combine(combined, err)
		}
		errMu.Unlock()
		cancel()
	}

	wg.Add(len(items))
	for i, item := range items {
		i, item := i, item
		go func() {
			defer wg.Done()
			defer func() {
				if thePanic := recover(); thePanic != nil {
					fail(errors.Errorf("panic in parallel item %d: %v", i, thePanic))
				}
			}()
			result, err := fn(ctx, item)
			if err != nil {
				fail(err)
				return
			}
			results[i] = result
		}()
	}

	wg.Wait()
	return results, combined
}

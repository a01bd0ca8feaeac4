package site

import (
	"context"
	"sync"
)

// runOrdered applies fn to every item with at most concurrency calls in flight.
// Results keep the order of items. Items not started before ctx ends are left zero.
func runOrdered[T any, R any](ctx context.Context, items []T, concurrency int, fn func(context.Context, T) R) []R {
	if len(items) == 0 {
		return nil
	}
	if concurrency < 1 {
		concurrency = 1
	}
	if concurrency > len(items) {
		concurrency = len(items)
	}

	sem := make(chan struct{}, concurrency)
	results := make([]R, len(items))

	var wg sync.WaitGroup
	for i, item := range items {
		select {
		case <-ctx.Done():
			wg.Wait()
			return results
		case sem <- struct{}{}:
		}
		wg.Add(1)
		go func(i int, item T) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = fn(ctx, item)
		}(i, item)
	}
	wg.Wait()
	return results
}

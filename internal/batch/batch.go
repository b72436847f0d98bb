// Package batch provides a wave-paced concurrent executor. Work is split
// into consecutive waves of a fixed size; items within a wave run in
// parallel and a mandatory pause separates waves. This bounds both the
// in-flight concurrency and the sustained request rate against an upstream
// API, independent of catalog size.
package batch

import (
	"context"
	"sync"
	"time"
)

// sleep is swappable so tests can count inter-wave pauses without waiting
// on the wall clock.
var sleep = func(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

// Run applies op to every item, waveSize at a time, pausing interWaveDelay
// between waves (never after the last). Results are returned in input
// order. op must capture its own failures in R; a failing item never
// aborts its wave or subsequent waves.
func Run[T, R any](ctx context.Context, items []T, waveSize int, interWaveDelay time.Duration, op func(context.Context, T) R) []R {
	if waveSize < 1 {
		waveSize = 1
	}

	results := make([]R, len(items))
	for start := 0; start < len(items); start += waveSize {
		end := min(start+waveSize, len(items))

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				results[i] = op(ctx, items[i])
			}(i)
		}
		wg.Wait()

		if end < len(items) {
			sleep(ctx, interWaveDelay)
		}
	}
	return results
}

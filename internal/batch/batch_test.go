package batch

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countPauses(t *testing.T) *int32 {
	t.Helper()
	orig := sleep
	var pauses int32
	sleep = func(ctx context.Context, d time.Duration) {
		atomic.AddInt32(&pauses, 1)
	}
	t.Cleanup(func() { sleep = orig })
	return &pauses
}

func TestWaveSplitAndOrder(t *testing.T) {
	pauses := countPauses(t)

	items := make([]int, 12)
	for i := range items {
		items[i] = i
	}

	var inFlight, maxInFlight int32
	results := Run(context.Background(), items, 5, 500*time.Millisecond, func(ctx context.Context, n int) int {
		cur := atomic.AddInt32(&inFlight, 1)
		for {
			prev := atomic.LoadInt32(&maxInFlight)
			if cur <= prev || atomic.CompareAndSwapInt32(&maxInFlight, prev, cur) {
				break
			}
		}
		defer atomic.AddInt32(&inFlight, -1)
		return n * 2
	})

	require.Len(t, results, 12)
	for i, r := range results {
		assert.Equal(t, i*2, r, "output must preserve input order")
	}
	// 12 items at wave size 5 → waves of 5, 5, 2 with exactly 2 pauses.
	assert.Equal(t, int32(2), atomic.LoadInt32(pauses))
	assert.LessOrEqual(t, atomic.LoadInt32(&maxInFlight), int32(5))
}

func TestSingleWaveHasNoPause(t *testing.T) {
	pauses := countPauses(t)

	results := Run(context.Background(), []int{1, 2, 3}, 5, time.Second, func(ctx context.Context, n int) int {
		return n
	})

	assert.Equal(t, []int{1, 2, 3}, results)
	assert.Equal(t, int32(0), atomic.LoadInt32(pauses))
}

func TestItemFailureDoesNotAbortWave(t *testing.T) {
	countPauses(t)

	type result struct {
		ok bool
	}
	var ran int32
	results := Run(context.Background(), []int{0, 1, 2, 3, 4, 5}, 2, 0, func(ctx context.Context, n int) result {
		atomic.AddInt32(&ran, 1)
		return result{ok: n != 2}
	})

	assert.Equal(t, int32(6), atomic.LoadInt32(&ran))
	assert.False(t, results[2].ok)
	assert.True(t, results[5].ok)
}

func TestEmptyInput(t *testing.T) {
	results := Run(context.Background(), nil, 5, time.Second, func(ctx context.Context, n int) int { return n })
	assert.Empty(t, results)
}

func TestConcurrentWithinWave(t *testing.T) {
	countPauses(t)

	// All items of one wave must be in flight together; a barrier would
	// deadlock if the runner executed them sequentially.
	var mu sync.Mutex
	waiting := 0
	release := make(chan struct{})

	done := make(chan struct{})
	go func() {
		defer close(done)
		Run(context.Background(), []int{1, 2, 3}, 3, 0, func(ctx context.Context, n int) int {
			mu.Lock()
			waiting++
			if waiting == 3 {
				close(release)
			}
			mu.Unlock()
			<-release
			return n
		})
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("wave items did not run concurrently")
	}
}

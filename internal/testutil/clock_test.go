package testutil

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeterministicClock_NextAndReset(t *testing.T) {
	clock := NewDeterministicClock()
	assert.Equal(t, int64(0), clock.Current())

	assert.Equal(t, int64(1), clock.Next())
	assert.Equal(t, int64(2), clock.Next())
	assert.Equal(t, int64(2), clock.Current())

	clock.Reset()
	assert.Equal(t, int64(0), clock.Current())
	assert.Equal(t, int64(1), clock.Next())
}

func TestDeterministicClock_ConcurrentNextIsGapFree(t *testing.T) {
	clock := NewDeterministicClock()
	const workers, calls = 20, 50

	var mu sync.Mutex
	seen := make(map[int64]bool)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < calls; j++ {
				v := clock.Next()
				mu.Lock()
				seen[v] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Len(t, seen, workers*calls)
	for v := int64(1); v <= workers*calls; v++ {
		assert.True(t, seen[v], "missing %d", v)
	}
}

func TestManualTimer_FiresOnlyOnAdvance(t *testing.T) {
	timer := NewManualTimer()
	ch := timer.After(time.Second)
	assert.Equal(t, 1, timer.Waiting())

	select {
	case <-ch:
		t.Fatal("timer fired before Advance")
	default:
	}

	released := timer.Advance(100 * time.Millisecond)
	assert.Equal(t, 1, released)
	assert.Equal(t, 0, timer.Waiting())

	select {
	case at := <-ch:
		assert.Equal(t, time.Unix(0, 0).UTC().Add(100*time.Millisecond), at)
	default:
		t.Fatal("timer did not fire after Advance")
	}
}

func TestManualTimer_WaitForWaiters(t *testing.T) {
	timer := NewManualTimer()
	assert.False(t, timer.WaitForWaiters(10*time.Millisecond))

	go func() {
		<-timer.After(time.Second)
	}()
	require.True(t, timer.WaitForWaiters(time.Second))
	assert.Equal(t, 1, timer.Advance(time.Second))
}

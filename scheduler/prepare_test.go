package scheduler

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreparationTrackerDedup(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	gate := make(chan struct{})

	tracker := NewPreparationTracker(func(id string) (bool, error) {
		mu.Lock()
		calls++
		mu.Unlock()
		<-gate
		return true, nil
	}, nil)

	// Many call sites request the same composition while the first
	// preparation is still in flight.
	tracker.EnsurePrepared("comp-a")
	tracker.EnsurePrepared("comp-a")
	tracker.EnsurePrepared("comp-a")

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return calls == 1
	}, time.Second, time.Millisecond)
	assert.True(t, tracker.Preparing("comp-a"))
	assert.False(t, tracker.Prepared("comp-a"))

	close(gate)
	require.Eventually(t, func() bool { return tracker.Prepared("comp-a") }, time.Second, time.Millisecond)

	// Now that it settled successfully, further requests are no-ops.
	tracker.EnsurePrepared("comp-a")
	mu.Lock()
	assert.Equal(t, 1, calls)
	mu.Unlock()
}

func TestPreparationTrackerFailureAllowsRetry(t *testing.T) {
	var mu sync.Mutex
	calls := 0

	tracker := NewPreparationTracker(func(id string) (bool, error) {
		mu.Lock()
		defer mu.Unlock()
		calls++
		if calls == 1 {
			return false, errors.New("decoder spin-up failed")
		}
		return true, nil
	}, nil)

	tracker.EnsurePrepared("comp-a")
	require.Eventually(t, func() bool {
		return !tracker.Preparing("comp-a") && !tracker.Prepared("comp-a")
	}, time.Second, time.Millisecond, "failure must clear the preparing marker")

	// The id is eligible for retry by any future caller.
	tracker.EnsurePrepared("comp-a")
	require.Eventually(t, func() bool { return tracker.Prepared("comp-a") }, time.Second, time.Millisecond)
	mu.Lock()
	assert.Equal(t, 2, calls)
	mu.Unlock()
}

func TestPreparationTrackerNotReadyWithoutError(t *testing.T) {
	tracker := NewPreparationTracker(func(id string) (bool, error) {
		return false, nil
	}, nil)

	tracker.EnsurePrepared("comp-a")
	// Settling not-ready without an error is still terminal and retryable.
	assert.Eventually(t, func() bool {
		return !tracker.Preparing("comp-a") && !tracker.Prepared("comp-a")
	}, time.Second, time.Millisecond)
}

func TestPreparationTrackerEmptyID(t *testing.T) {
	calls := 0
	tracker := NewPreparationTracker(func(id string) (bool, error) {
		calls++
		return true, nil
	}, nil)

	tracker.EnsurePrepared("")
	assert.Equal(t, 0, calls)
}

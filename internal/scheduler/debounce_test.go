package scheduler

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/xkilldash9x/mediagrab-cli/internal/mocks"
)

const window = time.Second

func TestDebouncerFiresAfterQuietWindow(t *testing.T) {
	defer goleak.VerifyNone(t)

	clock := mocks.NewFakeClock()
	fired := make(chan struct{}, 4)
	d := NewDebouncer(window, clock, func() { fired <- struct{}{} })
	defer d.Stop()

	d.Trigger()
	require.Eventually(t, func() bool { return clock.ArmedTimers() == 1 },
		time.Second, time.Millisecond, "debouncer arms a timer")

	clock.Advance(window)
	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("callback did not fire after the quiet window")
	}
}

func TestDebouncerCoalescesBursts(t *testing.T) {
	defer goleak.VerifyNone(t)

	clock := mocks.NewFakeClock()
	var count atomic.Int64
	fired := make(chan struct{}, 8)
	d := NewDebouncer(window, clock, func() {
		count.Add(1)
		fired <- struct{}{}
	})
	defer d.Stop()

	for i := 0; i < 5; i++ {
		d.Trigger()
		want := i + 1
		require.Eventually(t, func() bool { return clock.TotalTimers() == want },
			time.Second, time.Millisecond, "trigger %d consumed", i)
	}

	clock.Advance(window)
	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("callback did not fire")
	}
	assert.Equal(t, int64(1), count.Load(), "burst coalesced into one emission")
}

func TestDebouncerCancelDropsPending(t *testing.T) {
	defer goleak.VerifyNone(t)

	clock := mocks.NewFakeClock()
	var count atomic.Int64
	d := NewDebouncer(window, clock, func() { count.Add(1) })
	defer d.Stop()

	d.Trigger()
	require.Eventually(t, func() bool { return clock.ArmedTimers() == 1 },
		time.Second, time.Millisecond)

	d.Cancel()
	require.Eventually(t, func() bool { return clock.ArmedTimers() == 0 },
		time.Second, time.Millisecond, "cancel disarms the timer")

	clock.Advance(2 * window)
	assert.Equal(t, int64(0), count.Load())
}

func TestDebouncerStopDiscardsPending(t *testing.T) {
	defer goleak.VerifyNone(t)

	clock := mocks.NewFakeClock()
	var count atomic.Int64
	d := NewDebouncer(window, clock, func() { count.Add(1) })

	d.Trigger()
	d.Stop()
	clock.Advance(2 * window)
	assert.Equal(t, int64(0), count.Load())
}

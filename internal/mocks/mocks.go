// Package mocks holds shared test doubles for the engine's collaborator
// interfaces.
package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/xkilldash9x/mediagrab-cli/api/schemas"
)

// -- DOM Querier Mock --

// MockDOMQuerier mocks schemas.DOMQuerier.
type MockDOMQuerier struct {
	mock.Mock
}

func (m *MockDOMQuerier) Query(ctx context.Context) ([]schemas.ElementDescriptor, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]schemas.ElementDescriptor), args.Error(1)
}

// -- Size Prober Mock --

// MockSizeProber mocks schemas.SizeProber.
type MockSizeProber struct {
	mock.Mock
}

func (m *MockSizeProber) ProbeSize(ctx context.Context, rawURL string) (int64, error) {
	args := m.Called(ctx, rawURL)
	return args.Get(0).(int64), args.Error(1)
}

// -- Snapshot Consumer Recorder --

// RecordingConsumer collects every emitted snapshot, in order. Unlike a
// strict mock it never fails on unexpected calls; emission timing is under
// test, not call shape.
type RecordingConsumer struct {
	mu        sync.Mutex
	snapshots []schemas.DetectionSnapshot
	err       error
	notify    chan struct{}
}

func NewRecordingConsumer() *RecordingConsumer {
	return &RecordingConsumer{notify: make(chan struct{}, 64)}
}

// FailWith makes subsequent Consume calls return err.
func (r *RecordingConsumer) FailWith(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

func (r *RecordingConsumer) Consume(_ context.Context, snap schemas.DetectionSnapshot) error {
	r.mu.Lock()
	err := r.err
	if err == nil {
		r.snapshots = append(r.snapshots, snap)
	}
	r.mu.Unlock()
	select {
	case r.notify <- struct{}{}:
	default:
	}
	return err
}

// Snapshots returns a copy of everything consumed so far.
func (r *RecordingConsumer) Snapshots() []schemas.DetectionSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]schemas.DetectionSnapshot, len(r.snapshots))
	copy(out, r.snapshots)
	return out
}

func (r *RecordingConsumer) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.snapshots)
}

// Notified returns a channel receiving one token per Consume call.
func (r *RecordingConsumer) Notified() <-chan struct{} { return r.notify }

// -- Fake Clock --

// FakeClock is a manually advanced schemas.Clock shared by timing tests.
type FakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

func NewFakeClock() *FakeClock {
	return &FakeClock{now: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
}

func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *FakeClock) NewTimer(d time.Duration) schemas.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, deadline: c.now.Add(d), ch: make(chan time.Time, 1)}
	c.timers = append(c.timers, t)
	return t
}

// Advance moves the clock forward and fires every due timer.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	now := c.now
	due := make([]*fakeTimer, 0, len(c.timers))
	for _, t := range c.timers {
		if !t.stopped && !t.fired && !t.deadline.After(now) {
			t.fired = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()

	for _, t := range due {
		select {
		case t.ch <- now:
		default:
		}
	}
}

// TotalTimers counts every timer ever created.
func (c *FakeClock) TotalTimers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.timers)
}

// ArmedTimers counts timers neither stopped nor fired yet.
func (c *FakeClock) ArmedTimers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

type fakeTimer struct {
	clock    *FakeClock
	deadline time.Time
	ch       chan time.Time
	stopped  bool
	fired    bool
}

func (t *fakeTimer) C() <-chan time.Time { return t.ch }

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

func (t *fakeTimer) Reset(d time.Duration) bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	active := !t.stopped && !t.fired
	t.deadline = t.clock.now.Add(d)
	t.stopped = false
	t.fired = false
	return active
}

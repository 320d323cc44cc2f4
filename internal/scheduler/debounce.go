package scheduler

import (
	"sync"
	"time"

	"github.com/xkilldash9x/mediagrab-cli/api/schemas"
)

// Debouncer coalesces bursts of change events into one callback invocation
// after a quiet window. Every trigger during the window pushes the deadline
// out; the callback runs on the debouncer's own goroutine.
type Debouncer struct {
	window time.Duration
	clock  schemas.Clock
	fn     func()

	trigger chan struct{}
	cancel  chan struct{}
	stop    chan struct{}
	done    chan struct{}

	stopOnce sync.Once
}

// NewDebouncer starts a debouncer invoking fn after window of quiet. Call
// Stop to release its goroutine.
func NewDebouncer(window time.Duration, clock schemas.Clock, fn func()) *Debouncer {
	if clock == nil {
		clock = schemas.RealClock{}
	}
	d := &Debouncer{
		window:  window,
		clock:   clock,
		fn:      fn,
		trigger: make(chan struct{}, 1),
		cancel:  make(chan struct{}, 1),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go d.loop()
	return d
}

// Trigger notes a change event. Never blocks.
func (d *Debouncer) Trigger() {
	select {
	case d.trigger <- struct{}{}:
	default:
	}
}

// Cancel drops any pending emission without firing it. Used on reset so a
// cleared store does not emit a stale snapshot.
func (d *Debouncer) Cancel() {
	select {
	case d.cancel <- struct{}{}:
	default:
	}
}

// Stop terminates the debouncer. A pending emission is discarded.
func (d *Debouncer) Stop() {
	d.stopOnce.Do(func() { close(d.stop) })
	<-d.done
}

func (d *Debouncer) loop() {
	defer close(d.done)

	var timer schemas.Timer
	var fires <-chan time.Time

	disarm := func() {
		if timer == nil {
			return
		}
		if !timer.Stop() {
			select {
			case <-fires:
			default:
			}
		}
		timer = nil
		fires = nil
	}

	for {
		select {
		case <-d.trigger:
			disarm()
			timer = d.clock.NewTimer(d.window)
			fires = timer.C()
		case <-fires:
			timer = nil
			fires = nil
			d.fn()
		case <-d.cancel:
			disarm()
		case <-d.stop:
			disarm()
			return
		}
	}
}

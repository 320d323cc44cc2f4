package schemas

import (
	"context"
	"time"
)

// DOMQuerier is the host's DOM query capability: return descriptors for every
// element on the page matching the media patterns (video elements, container
// sources with a whitelisted extension, frames pointing at a known embed host).
type DOMQuerier interface {
	Query(ctx context.Context) ([]ElementDescriptor, error)
}

// SizeProber performs a header-only fetch for a URL's content length.
// Implementations must degrade to an error on cross-origin or any other
// failure, never panic into the engine.
type SizeProber interface {
	ProbeSize(ctx context.Context, rawURL string) (int64, error)
}

// SnapshotConsumer receives debounced detection snapshots. The consumer owns
// download invocation, rendering and persistence; the engine only emits.
type SnapshotConsumer interface {
	Consume(ctx context.Context, snap DetectionSnapshot) error
}

// Clock abstracts wall-clock access so cooldown and debounce logic are
// testable without real delays.
type Clock interface {
	Now() time.Time
	NewTimer(d time.Duration) Timer
}

// Timer mirrors the subset of time.Timer the scheduler needs.
type Timer interface {
	C() <-chan time.Time
	Stop() bool
	Reset(d time.Duration) bool
}

// RealClock is the production Clock backed by the time package.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

func (RealClock) NewTimer(d time.Duration) Timer { return realTimer{time.NewTimer(d)} }

type realTimer struct{ t *time.Timer }

func (r realTimer) C() <-chan time.Time        { return r.t.C }
func (r realTimer) Stop() bool                 { return r.t.Stop() }
func (r realTimer) Reset(d time.Duration) bool { return r.t.Reset(d) }

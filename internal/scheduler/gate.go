// Package scheduler decides when detection work runs: whether a re-scan is
// allowed at all, how file-size enrichment is batched and cached, and how
// outbound notifications are debounced.
package scheduler

import (
	"fmt"
	"hash/fnv"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/mediagrab-cli/api/schemas"
	"github.com/xkilldash9x/mediagrab-cli/internal/config"
)

// Phase is the gate's coarse activity state.
type Phase string

const (
	PhaseIdle     Phase = "idle"
	PhaseScanning Phase = "scanning"
	PhaseCooldown Phase = "cooldown"
)

// Gate implements the re-scan decision. It is a total function over its
// inputs: it never errors, it only answers yes or no and keeps bookkeeping.
type Gate struct {
	log      *zap.Logger
	clock    schemas.Clock
	cooldown time.Duration

	phase       Phase
	called      bool
	lastScanAt  time.Time
	fingerprint string
}

// NewGate builds a gate with the cooldown window from cfg.
func NewGate(cfg config.Interface, log *zap.Logger, clock schemas.Clock) *Gate {
	if clock == nil {
		clock = schemas.RealClock{}
	}
	return &Gate{
		log:      log.Named("gate"),
		clock:    clock,
		cooldown: cfg.Detector().ScanCooldown,
		phase:    PhaseIdle,
	}
}

// ShouldScan reports whether a scan may run now, given the currently held
// candidates. Always true on the very first call, on force, or when the
// current set is empty; an empty result must never permanently block future
// scans. Within the cooldown window the answer is no; outside it, the answer
// depends on whether the candidate fingerprint changed.
func (g *Gate) ShouldScan(current []schemas.CandidateRecord, force bool) bool {
	now := g.clock.Now()

	if !g.called || force || len(current) == 0 {
		g.allow(now, current)
		return true
	}
	if now.Sub(g.lastScanAt) < g.cooldown {
		g.phase = PhaseCooldown
		return false
	}
	fp := Fingerprint(current)
	if fp == g.fingerprint {
		g.phase = PhaseIdle
		return false
	}
	g.allow(now, current)
	return true
}

func (g *Gate) allow(now time.Time, current []schemas.CandidateRecord) {
	g.called = true
	g.lastScanAt = now
	g.fingerprint = Fingerprint(current)
	g.phase = PhaseScanning
}

// ScanFinished moves the gate out of the scanning phase.
func (g *Gate) ScanFinished() { g.phase = PhaseCooldown }

// Phase returns the gate's current activity state.
func (g *Gate) Phase() Phase { return g.phase }

// Reset clears all gate bookkeeping; the next ShouldScan call is treated as
// the first.
func (g *Gate) Reset() {
	g.called = false
	g.lastScanAt = time.Time{}
	g.fingerprint = ""
	g.phase = PhaseIdle
}

// State exposes the gate's bookkeeping for diagnostics. The Generation field
// is owned by the candidate store; callers holding both fill it in.
func (g *Gate) State() schemas.ScanState {
	return schemas.ScanState{LastScanAt: g.lastScanAt, LastFingerprint: g.fingerprint}
}

// Fingerprint computes an order-independent digest over the url and
// first-seen timestamp of each candidate. Per-record FNV-1a hashes are
// combined by XOR so element order cannot change the result.
func Fingerprint(records []schemas.CandidateRecord) string {
	if len(records) == 0 {
		return ""
	}
	var acc uint64
	for i := range records {
		h := fnv.New64a()
		fmt.Fprintf(h, "%s:%d", records[i].SourceURL, records[i].FirstSeenAt.UnixMilli())
		acc ^= h.Sum64()
	}
	return fmt.Sprintf("%016x", acc)
}

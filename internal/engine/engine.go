// Package engine ties discovery together: it gates scans, runs extraction
// over DOM-supplied descriptors, merges results across passes, owns the
// candidate store and generation counter, and emits debounced snapshots to
// the downstream consumer.
package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xkilldash9x/mediagrab-cli/api/schemas"
	"github.com/xkilldash9x/mediagrab-cli/internal/config"
	"github.com/xkilldash9x/mediagrab-cli/internal/dedup"
	"github.com/xkilldash9x/mediagrab-cli/internal/extract"
	"github.com/xkilldash9x/mediagrab-cli/internal/scheduler"
)

// Options carries the engine's collaborators. Querier and Consumer are
// required; Prober may be nil when size enrichment is disabled; a nil Clock
// means wall time.
type Options struct {
	Config   config.Interface
	Logger   *zap.Logger
	Querier  schemas.DOMQuerier
	Consumer schemas.SnapshotConsumer
	Prober   schemas.SizeProber
	Clock    schemas.Clock
}

// Engine is one page context's discovery instance. Construct one per page
// context; there is no shared global state.
type Engine struct {
	log      *zap.Logger
	cfg      config.Interface
	clock    schemas.Clock
	querier  schemas.DOMQuerier
	consumer schemas.SnapshotConsumer

	builder   *extract.Builder
	crossPass *dedup.CrossPassDetector
	gate      *scheduler.Gate
	cache     *scheduler.SizeCache
	enricher  *scheduler.Enricher
	debouncer *scheduler.Debouncer

	store *candidateStore

	ctx    context.Context
	cancel context.CancelFunc

	passMu sync.Mutex
	passID string

	wg        sync.WaitGroup
	closeOnce sync.Once
}

// New constructs an engine. Call Close to release its goroutines.
func New(opts Options) (*Engine, error) {
	if opts.Querier == nil {
		return nil, fmt.Errorf("engine: querier is required")
	}
	if opts.Consumer == nil {
		return nil, fmt.Errorf("engine: consumer is required")
	}
	if opts.Config == nil {
		opts.Config = config.NewDefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	clock := opts.Clock
	if clock == nil {
		clock = schemas.RealClock{}
	}

	cache := scheduler.NewSizeCache(opts.Config.Detector().SizeCacheCapacity)

	e := &Engine{
		log:       opts.Logger.Named("engine"),
		cfg:       opts.Config,
		clock:     clock,
		querier:   opts.Querier,
		consumer:  opts.Consumer,
		builder:   extract.NewBuilder(opts.Logger, clock),
		crossPass: dedup.NewCrossPassDetector(opts.Config),
		gate:      scheduler.NewGate(opts.Config, opts.Logger, clock),
		cache:     cache,
		store:     newCandidateStore(),
	}
	if opts.Prober != nil && opts.Config.Probe().Enabled {
		e.enricher = scheduler.NewEnricher(opts.Config, opts.Logger, opts.Prober, cache)
	}
	e.ctx, e.cancel = context.WithCancel(context.Background())
	e.debouncer = scheduler.NewDebouncer(opts.Config.Detector().NotifyDebounce, clock, e.emit)
	return e, nil
}

// HandleMutation is the host's "matching elements changed" signal. The scan
// runs only if the gate allows it; a suppressed trigger is not an error.
func (e *Engine) HandleMutation(ctx context.Context) error {
	if !e.gate.ShouldScan(e.store.Records(), false) {
		e.log.Debug("scan suppressed by gate")
		return nil
	}
	return e.scan(ctx)
}

// Scan forces a detection pass regardless of cooldown or fingerprint.
func (e *Engine) Scan(ctx context.Context) error {
	e.gate.ShouldScan(e.store.Records(), true)
	return e.scan(ctx)
}

func (e *Engine) scan(ctx context.Context) error {
	defer e.gate.ScanFinished()

	gen := e.store.Generation()
	passID := uuid.NewString()
	e.setPassID(passID)

	descs, err := e.querier.Query(ctx)
	if err != nil {
		return fmt.Errorf("dom query: %w", err)
	}

	fresh := e.builder.ExtractAll(descs)
	merged := e.mergeWithPrevious(fresh)
	if !e.store.Replace(gen, merged) {
		e.log.Debug("pass discarded, generation changed mid-scan",
			zap.Uint64("generation", gen))
		return nil
	}
	e.log.Info("detection pass complete",
		zap.String("pass_id", passID),
		zap.Int("elements", len(descs)),
		zap.Int("accepted", len(merged)))

	e.debouncer.Trigger()
	e.enrichAsync(gen, merged)
	return nil
}

// mergeWithPrevious keeps the previous pass's record for any fresh candidate
// the cross-pass detector recognizes, preserving its first-seen time and any
// size already probed. Unmatched previous records drop out; their elements
// are gone from the page.
func (e *Engine) mergeWithPrevious(fresh []schemas.CandidateRecord) []schemas.CandidateRecord {
	previous := e.store.Records()
	merged := make([]schemas.CandidateRecord, 0, len(fresh))
	claimed := make([]bool, len(previous))

	for i := range fresh {
		kept := false
		for j := range previous {
			if claimed[j] {
				continue
			}
			if e.crossPass.IsDuplicateOf(&fresh[i], &previous[j]) {
				merged = append(merged, previous[j])
				claimed[j] = true
				kept = true
				break
			}
		}
		if !kept {
			merged = append(merged, fresh[i])
		}
	}
	return merged
}

func (e *Engine) enrichAsync(gen uint64, records []schemas.CandidateRecord) {
	if e.enricher == nil {
		return
	}
	urls := make([]string, 0, len(records))
	for i := range records {
		if !records[i].HasSize() {
			urls = append(urls, records[i].SourceURL)
		}
	}
	if len(urls) == 0 {
		return
	}

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		sizes := e.enricher.EnrichAll(e.ctx, urls)
		applied := false
		for url, bytes := range sizes {
			if e.store.ApplySize(gen, url, bytes) {
				applied = true
			}
		}
		if applied {
			e.debouncer.Trigger()
		}
	}()
}

// RunOnce performs one forced pass synchronously: scan, enrich inline, emit a
// single snapshot directly, and return it. This is the one-shot CLI path; the
// debounced machinery is bypassed.
func (e *Engine) RunOnce(ctx context.Context) (schemas.DetectionSnapshot, error) {
	e.gate.ShouldScan(e.store.Records(), true)
	defer e.gate.ScanFinished()

	gen := e.store.Generation()
	passID := uuid.NewString()
	e.setPassID(passID)

	descs, err := e.querier.Query(ctx)
	if err != nil {
		return schemas.DetectionSnapshot{}, fmt.Errorf("dom query: %w", err)
	}
	merged := e.mergeWithPrevious(e.builder.ExtractAll(descs))

	if e.enricher != nil {
		urls := make([]string, 0, len(merged))
		for i := range merged {
			if !merged[i].HasSize() {
				urls = append(urls, merged[i].SourceURL)
			}
		}
		sizes := e.enricher.EnrichAll(ctx, urls)
		for i := range merged {
			if bytes, ok := sizes[merged[i].SourceURL]; ok {
				merged[i].SetSize(bytes)
			}
		}
	}

	if !e.store.Replace(gen, merged) {
		return schemas.DetectionSnapshot{}, fmt.Errorf("pass discarded: context was reset")
	}
	snap := e.snapshot()
	if err := e.consumer.Consume(ctx, snap); err != nil {
		return snap, fmt.Errorf("consume snapshot: %w", err)
	}
	return snap, nil
}

// Reset is the host's page-context-change signal: the store is cleared, the
// generation bumped, gate history forgotten and any pending emission dropped.
func (e *Engine) Reset() {
	gen := e.store.Clear()
	e.gate.Reset()
	e.debouncer.Cancel()
	e.log.Info("engine reset", zap.Uint64("generation", gen))
}

// Records returns the currently accepted candidates.
func (e *Engine) Records() []schemas.CandidateRecord { return e.store.Records() }

// Generation returns the store's current generation.
func (e *Engine) Generation() uint64 { return e.store.Generation() }

// State reports the scheduler bookkeeping for this page context. The gate
// only tracks scan timing and fingerprint; the generation belongs to the
// candidate store and is filled in here.
func (e *Engine) State() schemas.ScanState {
	state := e.gate.State()
	state.Generation = e.store.Generation()
	return state
}

// Close stops the debouncer and waits for in-flight enrichment.
func (e *Engine) Close() {
	e.closeOnce.Do(func() {
		e.cancel()
		e.wg.Wait()
		e.debouncer.Stop()
	})
}

func (e *Engine) setPassID(id string) {
	e.passMu.Lock()
	e.passID = id
	e.passMu.Unlock()
}

func (e *Engine) currentPassID() string {
	e.passMu.Lock()
	defer e.passMu.Unlock()
	return e.passID
}

// snapshot builds an emission from the store's current contents. A later
// enrichment emission reuses the pass ID under a fresh snapshot ID, so
// consumers can tell "same pass, more data" from a new pass.
func (e *Engine) snapshot() schemas.DetectionSnapshot {
	return schemas.DetectionSnapshot{
		SnapshotID: uuid.NewString(),
		PassID:     e.currentPassID(),
		Generation: e.store.Generation(),
		EmittedAt:  e.clock.Now(),
		Records:    e.store.Records(),
	}
}

func (e *Engine) emit() {
	snap := e.snapshot()
	if err := e.consumer.Consume(e.ctx, snap); err != nil {
		e.log.Warn("snapshot consumer failed",
			zap.String("snapshot_id", snap.SnapshotID),
			zap.Error(err))
	}
}

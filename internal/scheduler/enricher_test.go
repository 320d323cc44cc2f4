package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/xkilldash9x/mediagrab-cli/api/schemas"
	"github.com/xkilldash9x/mediagrab-cli/internal/config"
)

type stubProber struct {
	mu    sync.Mutex
	sizes map[string]int64
	errs  map[string]error
	calls map[string]int
}

func newStubProber() *stubProber {
	return &stubProber{
		sizes: make(map[string]int64),
		errs:  make(map[string]error),
		calls: make(map[string]int),
	}
}

func (p *stubProber) ProbeSize(_ context.Context, rawURL string) (int64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls[rawURL]++
	if err, ok := p.errs[rawURL]; ok {
		return 0, err
	}
	return p.sizes[rawURL], nil
}

func (p *stubProber) callCount(rawURL string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls[rawURL]
}

func newTestEnricher(p *stubProber) (*Enricher, *SizeCache) {
	cache := NewSizeCache(100)
	return NewEnricher(config.NewDefaultConfig(), zap.NewNop(), p, cache), cache
}

func TestEnrichAllFillsSizes(t *testing.T) {
	p := newStubProber()
	p.sizes["https://a.example.com/v.mp4"] = 1000
	p.sizes["https://b.example.com/w.mp4"] = 2000
	e, _ := newTestEnricher(p)

	got := e.EnrichAll(context.Background(), []string{
		"https://a.example.com/v.mp4",
		"https://b.example.com/w.mp4",
	})
	assert.Equal(t, map[string]int64{
		"https://a.example.com/v.mp4": 1000,
		"https://b.example.com/w.mp4": 2000,
	}, got)
}

func TestEnrichAllFailureDegradesToAbsent(t *testing.T) {
	p := newStubProber()
	p.sizes["https://ok.example.com/v.mp4"] = 1000
	p.errs["https://bad.example.com/w.mp4"] = errors.New("cross origin")
	e, cache := newTestEnricher(p)

	got := e.EnrichAll(context.Background(), []string{
		"https://ok.example.com/v.mp4",
		"https://bad.example.com/w.mp4",
	})

	assert.Equal(t, map[string]int64{"https://ok.example.com/v.mp4": 1000}, got,
		"failed url simply absent from the result")
	_, known, cached := cache.Lookup("https://bad.example.com/w.mp4")
	assert.True(t, cached)
	assert.False(t, known)
}

func TestEnrichAllNeverRetriesFailures(t *testing.T) {
	p := newStubProber()
	p.errs["https://bad.example.com/w.mp4"] = errors.New("403")
	e, _ := newTestEnricher(p)

	e.EnrichAll(context.Background(), []string{"https://bad.example.com/w.mp4"})
	e.EnrichAll(context.Background(), []string{"https://bad.example.com/w.mp4"})
	assert.Equal(t, 1, p.callCount("https://bad.example.com/w.mp4"))
}

func TestEnrichAllCollapsesDuplicateURLs(t *testing.T) {
	p := newStubProber()
	p.sizes["https://a.example.com/v.mp4"] = 1000
	e, _ := newTestEnricher(p)

	got := e.EnrichAll(context.Background(), []string{
		"https://a.example.com/v.mp4",
		"https://a.example.com/v.mp4",
		"https://a.example.com/v.mp4",
	})
	assert.Equal(t, 1, p.callCount("https://a.example.com/v.mp4"))
	assert.Len(t, got, 1)
}

// trackingProber wraps a stub and records the peak number of in-flight
// probes, so tests can check the fan-out stays bounded.
type trackingProber struct {
	stub    *stubProber
	active  atomic.Int64
	maxSeen atomic.Int64
}

func (p *trackingProber) ProbeSize(ctx context.Context, rawURL string) (int64, error) {
	n := p.active.Add(1)
	defer p.active.Add(-1)
	for {
		m := p.maxSeen.Load()
		if n <= m || p.maxSeen.CompareAndSwap(m, n) {
			break
		}
	}
	return p.stub.ProbeSize(ctx, rawURL)
}

// newUncappedEnricher disables the rate limit so concurrency tests are not
// pacing-bound; the worker limit still applies.
func newUncappedEnricher(p schemas.SizeProber) (*Enricher, *SizeCache, int) {
	v := viper.New()
	config.SetDefaults(v)
	v.Set("probe.rate_limit", 0)
	cfg, err := config.NewConfigFromViper(v)
	if err != nil {
		panic(err)
	}
	cache := NewSizeCache(1000)
	return NewEnricher(cfg, zap.NewNop(), p, cache), cache, cfg.Probe().Concurrency
}

func TestEnrichAllOverlappingBatches(t *testing.T) {
	stub := newStubProber()
	urls := make([]string, 0, 64)
	for i := 0; i < 64; i++ {
		u := fmt.Sprintf("https://cdn.example.com/v/%03d.mp4", i)
		stub.sizes[u] = int64(1000 + i)
		urls = append(urls, u)
	}
	p := &trackingProber{stub: stub}
	e, cache, workers := newUncappedEnricher(p)

	const batches = 2
	var wg sync.WaitGroup
	results := make([]map[string]int64, batches)
	for b := 0; b < batches; b++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[b] = e.EnrichAll(context.Background(), urls)
		}()
	}
	wg.Wait()

	for b, got := range results {
		assert.Len(t, got, len(urls), "batch %d must report every url", b)
		assert.Equal(t, int64(1000), got[urls[0]])
		assert.Equal(t, int64(1063), got[urls[63]])
	}
	assert.Equal(t, len(urls), cache.Len())
	assert.LessOrEqual(t, p.maxSeen.Load(), int64(batches*workers),
		"each batch keeps its own worker bound")
}

func TestEnrichAllServesCachedResults(t *testing.T) {
	p := newStubProber()
	e, cache := newTestEnricher(p)
	cache.StoreSize("https://a.example.com/v.mp4", 555)

	got := e.EnrichAll(context.Background(), []string{"https://a.example.com/v.mp4"})
	assert.Equal(t, int64(555), got["https://a.example.com/v.mp4"])
	assert.Equal(t, 0, p.callCount("https://a.example.com/v.mp4"))
}

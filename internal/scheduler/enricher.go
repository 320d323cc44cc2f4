package scheduler

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/xkilldash9x/mediagrab-cli/api/schemas"
	"github.com/xkilldash9x/mediagrab-cli/internal/config"
)

// Enricher batches file-size probes. Results and failures both land in the
// size cache; failures are never retried automatically. Size is best-effort
// and a batch never fails as a whole.
type Enricher struct {
	log     *zap.Logger
	prober  schemas.SizeProber
	cache   *SizeCache
	limiter *rate.Limiter
	workers int
}

// NewEnricher wires a prober to the shared size cache with concurrency and
// rate limits from cfg.
func NewEnricher(cfg config.Interface, log *zap.Logger, prober schemas.SizeProber, cache *SizeCache) *Enricher {
	pc := cfg.Probe()
	workers := pc.Concurrency
	if workers < 1 {
		workers = 1
	}
	limit := rate.Limit(pc.RateLimit)
	if pc.RateLimit <= 0 {
		limit = rate.Inf
	}
	return &Enricher{
		log:     log.Named("enricher"),
		prober:  prober,
		cache:   cache,
		limiter: rate.NewLimiter(limit, workers),
		workers: workers,
	}
}

// EnrichAll probes every uncached URL in the batch and returns the sizes now
// known for the whole input, cached hits included. Duplicate URLs in the
// input collapse to a single probe.
func (e *Enricher) EnrichAll(ctx context.Context, urls []string) map[string]int64 {
	pending := make([]string, 0, len(urls))
	seen := make(map[string]struct{}, len(urls))
	for _, u := range urls {
		if _, dup := seen[u]; dup {
			continue
		}
		seen[u] = struct{}{}
		if _, _, cached := e.cache.Lookup(u); !cached {
			pending = append(pending, u)
		}
	}

	if len(pending) > 0 {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(e.workers)
		for _, u := range pending {
			g.Go(func() error {
				e.probeOne(gctx, u)
				return nil
			})
		}
		// Workers never return errors; probe failures degrade to absent.
		_ = g.Wait()
	}

	out := make(map[string]int64, len(seen))
	for u := range seen {
		if bytes, known, _ := e.cache.Lookup(u); known {
			out[u] = bytes
		}
	}
	return out
}

func (e *Enricher) probeOne(ctx context.Context, url string) {
	if err := e.limiter.Wait(ctx); err != nil {
		e.cache.StoreUnavailable(url)
		return
	}
	bytes, err := e.prober.ProbeSize(ctx, url)
	if err != nil {
		e.log.Debug("size probe failed", zap.String("url", url), zap.Error(err))
		e.cache.StoreUnavailable(url)
		return
	}
	e.cache.StoreSize(url, bytes)
}

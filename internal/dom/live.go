package dom

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/xkilldash9x/mediagrab-cli/api/schemas"
	"github.com/xkilldash9x/mediagrab-cli/internal/config"
)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// LiveQuerier renders a page in a headless browser and collects element
// descriptors from the live document, including dynamic state the static
// path cannot see (currentSrc, metadata dimensions, duration).
type LiveQuerier struct {
	log       *zap.Logger
	cfg       config.Interface
	targetURL string
}

// NewLiveQuerier builds a querier for one target URL.
func NewLiveQuerier(cfg config.Interface, log *zap.Logger, targetURL string) *LiveQuerier {
	return &LiveQuerier{
		log:       log.Named("dom.live"),
		cfg:       cfg,
		targetURL: targetURL,
	}
}

// Query implements schemas.DOMQuerier. Each call is a fresh browser target;
// the engine's scheduler already throttles how often this runs.
func (q *LiveQuerier) Query(ctx context.Context) ([]schemas.ElementDescriptor, error) {
	bc := q.cfg.Browser()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", bc.Headless),
		chromedp.Flag("mute-audio", true),
		chromedp.Flag("autoplay-policy", "no-user-gesture-required"),
	)
	for _, arg := range bc.Args {
		opts = append(opts, chromedp.Flag(arg, true))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	if bc.NavigationTimeout > 0 {
		var cancel context.CancelFunc
		browserCtx, cancel = context.WithTimeout(browserCtx, bc.NavigationTimeout)
		defer cancel()
	}

	var raw json.RawMessage
	tasks := chromedp.Tasks{
		chromedp.Navigate(q.targetURL),
	}
	if bc.PostLoadWait > 0 {
		tasks = append(tasks, chromedp.Sleep(bc.PostLoadWait))
	}
	tasks = append(tasks, chromedp.Evaluate(collectScript, &raw,
		func(p *runtime.EvaluateParams) *runtime.EvaluateParams {
			return p.WithReturnByValue(true)
		}))

	if err := chromedp.Run(browserCtx, tasks); err != nil {
		return nil, fmt.Errorf("browser query %s: %w", q.targetURL, err)
	}

	var descs []schemas.ElementDescriptor
	if err := jsonAPI.Unmarshal(raw, &descs); err != nil {
		return nil, fmt.Errorf("decode collected elements: %w", err)
	}
	q.log.Debug("live query complete",
		zap.String("url", q.targetURL),
		zap.Int("elements", len(descs)))
	return descs, nil
}

// collectScript mirrors the static walker inside the page: media elements,
// their nested sources, and embed frames, each with title and thumbnail
// context. Field names match ElementDescriptor's JSON tags.
const collectScript = `(() => {
	const pageImage = (() => {
		const m = document.querySelector('meta[property="og:image"], meta[name="twitter:image"]');
		return m ? (m.getAttribute('content') || '') : '';
	})();
	const docTitle = document.title || '';

	const nearbyHeading = (el) => {
		let node = el;
		while (node && node !== document.body) {
			let sib = node.previousElementSibling;
			while (sib) {
				if (/^H[1-4]$/.test(sib.tagName)) return sib.textContent.trim();
				const h = sib.querySelector && sib.querySelector('h1,h2,h3,h4');
				if (h) return h.textContent.trim();
				sib = sib.previousElementSibling;
			}
			node = node.parentElement;
		}
		return '';
	};

	const nearbyImage = (el) => {
		const scope = el.closest('article,section,figure,div') || el.parentElement;
		if (!scope) return '';
		const img = scope.querySelector('img[src]');
		return img ? img.src : '';
	};

	const base = (el, kind) => ({
		kind: kind,
		source_attr: el.getAttribute('src') || '',
		title_attr: el.getAttribute('title') || '',
		alt_attr: el.getAttribute('alt') || '',
		aria_label: el.getAttribute('aria-label') || '',
		nearby_heading: nearbyHeading(el),
		document_title: docTitle,
		nearby_image_url: nearbyImage(el),
		page_image_url: pageImage,
		width: el.videoWidth || el.width || 0,
		height: el.videoHeight || el.height || 0,
	});

	const out = [];
	for (const el of document.querySelectorAll('video, audio')) {
		const d = base(el, 'direct-media');
		d.current_src = el.currentSrc || '';
		d.poster_attr = el.getAttribute('poster') || '';
		d.duration_seconds = Number.isFinite(el.duration) ? el.duration : 0;
		if (d.source_attr || d.current_src) out.push(d);
		for (const s of el.querySelectorAll('source[src]')) {
			const c = base(s, 'container-source');
			c.media_type = s.getAttribute('type') || '';
			c.nearby_heading = d.nearby_heading;
			c.poster_attr = d.poster_attr;
			out.push(c);
		}
	}
	const embedHosts = ['youtube.com','youtube-nocookie.com','youtu.be','vimeo.com','player.vimeo.com','dailymotion.com'];
	for (const el of document.querySelectorAll('iframe[src]')) {
		let host = '';
		try { host = new URL(el.src, location.href).hostname.toLowerCase(); } catch (e) { continue; }
		if (!embedHosts.some(h => host === h || host.endsWith('.' + h))) continue;
		out.push(base(el, 'embedded-frame'));
	}
	return out;
})()`

package probe

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/xkilldash9x/mediagrab-cli/internal/config"
)

// ErrSizeUnavailable is returned when the origin answered but did not reveal
// a usable content length.
var ErrSizeUnavailable = errors.New("content length unavailable")

// Prober resolves file sizes with HEAD requests. It implements
// schemas.SizeProber.
type Prober struct {
	log    *zap.Logger
	client *http.Client
}

// New builds a prober from cfg.
func New(cfg config.Interface, log *zap.Logger) *Prober {
	pc := cfg.Probe()
	cc := NewDefaultClientConfig()
	cc.IgnoreTLSErrors = pc.IgnoreTLSErrors
	if pc.RequestTimeout > 0 {
		cc.RequestTimeout = pc.RequestTimeout
	}
	cc.Logger = log
	return &Prober{
		log:    log.Named("probe"),
		client: NewClient(cc),
	}
}

// NewWithClient builds a prober around an existing client.
func NewWithClient(client *http.Client, log *zap.Logger) *Prober {
	return &Prober{log: log.Named("probe"), client: client}
}

// ProbeSize issues a header-only request and returns the content length.
// data: and blob: URLs have no origin to ask and report unavailable.
func (p *Prober) ProbeSize(ctx context.Context, rawURL string) (int64, error) {
	scheme := strings.ToLower(rawURL)
	if strings.HasPrefix(scheme, "data:") || strings.HasPrefix(scheme, "blob:") {
		return 0, ErrSizeUnavailable
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return 0, fmt.Errorf("build probe request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("probe request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, fmt.Errorf("probe status %d: %w", resp.StatusCode, ErrSizeUnavailable)
	}
	if resp.ContentLength < 0 {
		return 0, ErrSizeUnavailable
	}
	return resp.ContentLength, nil
}

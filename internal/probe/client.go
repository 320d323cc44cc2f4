// Package probe implements best-effort file-size lookup over header-only
// HTTP requests. Failures degrade to "size unknown"; nothing here may fail a
// detection pass.
package probe

import (
	"context"
	"crypto/tls"
	"net"
	"net/http"
	"time"

	"golang.org/x/net/http2"
	"go.uber.org/zap"
)

const (
	defaultDialTimeout           = 5 * time.Second
	defaultKeepAliveInterval     = 15 * time.Second
	defaultTLSHandshakeTimeout   = 5 * time.Second
	defaultResponseHeaderTimeout = 10 * time.Second
	defaultRequestTimeout        = 15 * time.Second

	// Pool sizes sit above the standard library defaults: one page can carry
	// dozens of candidates on the same CDN host and probes run batched.
	defaultMaxIdleConns        = 64
	defaultMaxIdleConnsPerHost = 16
	defaultMaxConnsPerHost     = 32
	defaultIdleConnTimeout     = 30 * time.Second
)

// ClientConfig holds transport and timeout settings for the prober's HTTP
// client.
type ClientConfig struct {
	IgnoreTLSErrors bool

	RequestTimeout        time.Duration
	TLSHandshakeTimeout   time.Duration
	ResponseHeaderTimeout time.Duration

	MaxIdleConns        int
	MaxIdleConnsPerHost int
	MaxConnsPerHost     int
	IdleConnTimeout     time.Duration

	ForceHTTP2 bool

	Logger *zap.Logger
}

// NewDefaultClientConfig returns settings tuned for header-only probing of
// media CDNs.
func NewDefaultClientConfig() *ClientConfig {
	return &ClientConfig{
		RequestTimeout:        defaultRequestTimeout,
		TLSHandshakeTimeout:   defaultTLSHandshakeTimeout,
		ResponseHeaderTimeout: defaultResponseHeaderTimeout,
		MaxIdleConns:          defaultMaxIdleConns,
		MaxIdleConnsPerHost:   defaultMaxIdleConnsPerHost,
		MaxConnsPerHost:       defaultMaxConnsPerHost,
		IdleConnTimeout:       defaultIdleConnTimeout,
		ForceHTTP2:            true,
	}
}

// NewTransport builds an http.Transport from config.
func NewTransport(config *ClientConfig) *http.Transport {
	if config == nil {
		config = NewDefaultClientConfig()
	}
	log := config.Logger
	if log == nil {
		log = zap.NewNop()
	}

	dialer := &net.Dialer{
		Timeout:   defaultDialTimeout,
		KeepAlive: defaultKeepAliveInterval,
	}
	tlsConfig := &tls.Config{
		MinVersion:         tls.VersionTLS12,
		InsecureSkipVerify: config.IgnoreTLSErrors,
		ClientSessionCache: tls.NewLRUClientSessionCache(128),
	}

	transport := &http.Transport{
		DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			return dialer.DialContext(ctx, network, addr)
		},
		TLSClientConfig:       tlsConfig,
		TLSHandshakeTimeout:   config.TLSHandshakeTimeout,
		ResponseHeaderTimeout: config.ResponseHeaderTimeout,
		MaxIdleConns:          config.MaxIdleConns,
		MaxIdleConnsPerHost:   config.MaxIdleConnsPerHost,
		MaxConnsPerHost:       config.MaxConnsPerHost,
		IdleConnTimeout:       config.IdleConnTimeout,
		ForceAttemptHTTP2:     config.ForceHTTP2,
	}
	if config.ForceHTTP2 {
		if err := http2.ConfigureTransport(transport); err != nil {
			log.Warn("http2 transport configuration failed, using http/1.1", zap.Error(err))
		}
	}
	return transport
}

// NewClient builds the prober's HTTP client. Redirects are followed; CDNs
// routinely 302 media URLs to edge hosts and the size lives at the end of the
// chain.
func NewClient(config *ClientConfig) *http.Client {
	if config == nil {
		config = NewDefaultClientConfig()
	}
	return &http.Client{
		Transport: NewTransport(config),
		Timeout:   config.RequestTimeout,
	}
}

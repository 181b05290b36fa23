// Package httpclient builds the *http.Client used by the Fetcher, with
// pooling and timeout defaults matching the rest of the stack's HTTP
// client construction idiom.
package httpclient

import (
	"net"
	"net/http"
	"time"
)

// Default tuning values.
const (
	DefaultMaxIdleConns        = 100
	DefaultMaxIdleConnsPerHost = 10
	DefaultIdleConnTimeout     = 90 * time.Second
	DefaultTLSHandshakeTimeout = 10 * time.Second
)

// Config configures client construction. ConnectTimeout bounds the dial
// (the TLS handshake has its own fixed bound, DefaultTLSHandshakeTimeout);
// OverallTimeout bounds the whole round trip including redirects,
// matching the Fetcher's two distinct timeout knobs.
type Config struct {
	OverallTimeout time.Duration
	ConnectTimeout time.Duration
	CheckRedirect  func(req *http.Request, via []*http.Request) error
}

// New builds an *http.Client tuned for the Fetcher's one-GET-at-a-time
// usage pattern against arbitrary external hosts.
func New(cfg Config) *http.Client {
	transport := &http.Transport{
		MaxIdleConns:          DefaultMaxIdleConns,
		MaxIdleConnsPerHost:   DefaultMaxIdleConnsPerHost,
		IdleConnTimeout:       DefaultIdleConnTimeout,
		TLSHandshakeTimeout:   DefaultTLSHandshakeTimeout,
		ResponseHeaderTimeout: cfg.OverallTimeout,
		DialContext: (&net.Dialer{
			Timeout: cfg.ConnectTimeout,
		}).DialContext,
	}

	return &http.Client{
		Timeout:       cfg.OverallTimeout,
		Transport:     transport,
		CheckRedirect: cfg.CheckRedirect,
	}
}

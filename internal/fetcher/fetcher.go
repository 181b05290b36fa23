// Package fetcher performs one HTTP GET per call, with bounded redirects
// and timeouts, and classifies the result into success, permanent
// failure, or transient failure -- the classification the worker loop
// and the synchronous create path both act on identically.
package fetcher

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"

	"github.com/akshayg147/metadata-inventory-service/internal/platform/httpclient"
	"github.com/akshayg147/metadata-inventory-service/internal/platform/metrics"
)

// maxBodyBytes bounds how much of a response body is read into memory.
const maxBodyBytes = 20 * 1024 * 1024

// CollectedData is the successful result of a fetch.
type CollectedData struct {
	Headers    map[string]string
	Cookies    map[string]string
	PageSource string
	StatusCode int
}

// CollectionError carries the classified outcome alongside the
// underlying cause, so the worker loop can act on Outcome without
// re-deriving it.
type CollectionError struct {
	Outcome Outcome
	Reason  string
	Cause   error
}

func (e *CollectionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Reason, e.Cause)
	}
	return e.Reason
}

func (e *CollectionError) Unwrap() error { return e.Cause }

// Fetcher performs classified HTTP collection.
type Fetcher struct {
	client *http.Client
	cfg    Config
}

// New builds a Fetcher from cfg, constructing its own *http.Client tuned
// to cfg's timeouts and redirect policy.
func New(cfg Config) *Fetcher {
	cfg = cfg.WithDefaults()

	client := httpclient.New(httpclient.Config{
		OverallTimeout: cfg.OverallTimeout,
		ConnectTimeout: cfg.ConnectTimeout,
		CheckRedirect:  RedirectPolicy(cfg.MaxRedirects),
	})

	return &Fetcher{client: client, cfg: cfg}
}

// Fetch performs one GET against rawURL. On success it returns
// CollectedData. On failure it returns a *CollectionError whose Outcome
// field is always OutcomePermanent or OutcomeTransient -- Fetch never
// returns OutcomeSuccess in the error's Outcome field, since success is
// signalled by a nil error.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*CollectedData, error) {
	data, err := f.fetch(ctx, rawURL)
	if err != nil {
		var collErr *CollectionError
		if errors.As(err, &collErr) {
			metrics.CollectionOutcomes.WithLabelValues(collErr.Outcome.String()).Inc()
		}
		return nil, err
	}

	metrics.CollectionOutcomes.WithLabelValues(OutcomeSuccess.String()).Inc()
	return data, nil
}

func (f *Fetcher) fetch(ctx context.Context, rawURL string) (*CollectedData, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return nil, &CollectionError{Outcome: OutcomePermanent, Reason: "invalid request", Cause: err}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, classifyDoError(err)
	}
	defer resp.Body.Close()

	outcome := ClassifyStatusCode(resp.StatusCode)
	if outcome != OutcomeSuccess {
		return nil, &CollectionError{
			Outcome: outcome,
			Reason:  fmt.Sprintf("http %d", resp.StatusCode),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &CollectionError{Outcome: OutcomeTransient, Reason: "read response body", Cause: err}
	}

	return &CollectedData{
		Headers:    flattenHeaders(resp.Header),
		Cookies:    flattenCookies(resp.Cookies()),
		PageSource: string(body),
		StatusCode: resp.StatusCode,
	}, nil
}

// flattenHeaders collapses http.Header's []string values to the first
// value per key and lowercases names, so two fetches of the same URL via
// different HTTP libraries converge to the same upserted document (see
// the header-name-case clarification).
func flattenHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, vs := range h {
		if len(vs) == 0 {
			continue
		}
		out[strings.ToLower(k)] = vs[0]
	}
	return out
}

// flattenCookies collapses repeated same-name cookies to a flat map,
// last write wins.
func flattenCookies(cookies []*http.Cookie) map[string]string {
	out := make(map[string]string, len(cookies))
	for _, c := range cookies {
		out[c.Name] = c.Value
	}
	return out
}

// classifyDoError classifies the low-level error returned by
// http.Client.Do: redirect-limit, DNS, TLS, timeout, and connection
// errors each map to a specific outcome; anything else is transient per
// the "unclassified I/O error" rule.
func classifyDoError(err error) *CollectionError {
	if errors.Is(err, ErrTooManyRedirects) {
		return &CollectionError{Outcome: OutcomePermanent, Reason: "too many redirects", Cause: err}
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return &CollectionError{Outcome: OutcomePermanent, Reason: "dns resolution failed", Cause: err}
	}

	var tlsErr *tls.CertificateVerificationError
	if errors.As(err, &tlsErr) {
		return &CollectionError{Outcome: OutcomePermanent, Reason: "tls verification failed", Cause: err}
	}

	lowered := strings.ToLower(err.Error())

	for _, substr := range dnsFailureSubstrings {
		if strings.Contains(lowered, substr) {
			return &CollectionError{Outcome: OutcomePermanent, Reason: "dns resolution failed", Cause: err}
		}
	}

	if strings.Contains(lowered, "certificate") || strings.Contains(lowered, "x509") {
		return &CollectionError{Outcome: OutcomePermanent, Reason: "tls verification failed", Cause: err}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &CollectionError{Outcome: OutcomeTransient, Reason: "timeout", Cause: err}
	}

	if strings.Contains(lowered, "connection refused") || strings.Contains(lowered, "connection reset") {
		return &CollectionError{Outcome: OutcomeTransient, Reason: "connection failed", Cause: err}
	}

	return &CollectionError{Outcome: OutcomeTransient, Reason: "unclassified i/o error", Cause: err}
}

// Package canonical maps an arbitrary input URL string to the canonical
// key used everywhere else in the pipeline: the store's unique index, the
// queue payload, and the dedup check on the read path.
package canonical

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// defaultPorts maps a scheme to the port string that is redundant for it.
var defaultPorts = map[string]string{
	"http":  "80",
	"https": "443",
}

// ErrInvalidURL is returned when the input cannot be parsed into a URL
// with both a scheme and a host, even after the missing-scheme prefix is
// applied.
var ErrInvalidURL = errors.New("canonical: invalid url")

// Canonicalize applies, in order: scheme insertion, lowercasing,
// default-port stripping, path normalization, query sorting with
// first-value-wins collapse, and fragment removal. It is pure and
// idempotent: Canonicalize(Canonicalize(u)) always equals
// Canonicalize(u) for any u that parses successfully.
func Canonicalize(raw string) (string, error) {
	if raw == "" {
		return "", fmt.Errorf("%w: empty input", ErrInvalidURL)
	}

	withScheme := raw
	lower := strings.ToLower(raw)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		withScheme = "https://" + raw
	}

	parsed, err := url.Parse(withScheme)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}

	if parsed.Scheme == "" || parsed.Hostname() == "" {
		return "", fmt.Errorf("%w: missing scheme or host", ErrInvalidURL)
	}

	parsed.Scheme = strings.ToLower(parsed.Scheme)
	parsed.Host = normalizeHost(parsed)
	parsed.Path = normalizePath(parsed.Path)
	parsed.RawQuery = normalizeQuery(parsed.Query())
	parsed.Fragment = ""
	parsed.RawFragment = ""
	parsed.User = nil

	return parsed.String(), nil
}

// normalizeHost lowercases the host and strips the port if it is the
// default for the (already-lowercased) scheme. Any other explicit port is
// retained.
func normalizeHost(u *url.URL) string {
	hostname := strings.ToLower(u.Hostname())
	port := u.Port()

	if port == "" {
		return hostname
	}

	if defaultPort, ok := defaultPorts[u.Scheme]; ok && port == defaultPort {
		return hostname
	}

	return hostname + ":" + port
}

// normalizePath sets an empty path to "/" and strips trailing slashes
// from any other path, leaving case untouched.
func normalizePath(p string) string {
	if p == "" {
		return "/"
	}
	if p != "/" && strings.HasSuffix(p, "/") {
		if trimmed := strings.TrimRight(p, "/"); trimmed != "" {
			return trimmed
		}
		return "/"
	}
	return p
}

// normalizeQuery sorts query keys lexicographically and keeps only the
// first value for any repeated name.
func normalizeQuery(values url.Values) string {
	if len(values) == 0 {
		return ""
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		first := ""
		if vs := values[k]; len(vs) > 0 {
			first = vs[0]
		}
		b.WriteString(url.QueryEscape(k))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(first))
	}
	return b.String()
}

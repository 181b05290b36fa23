package fetcher

import "time"

// Default configuration values.
const (
	DefaultOverallTimeout = 30 * time.Second
	DefaultConnectTimeout = 10 * time.Second
	DefaultMaxRedirects   = 10
)

// Config holds fetcher tuning. Zero values are replaced by WithDefaults.
type Config struct {
	OverallTimeout time.Duration `env:"HTTP_TIMEOUT" yaml:"overall_timeout"`
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
	MaxRedirects   int           `yaml:"max_redirects"`
}

// WithDefaults returns a copy of c with zero fields replaced.
func (c Config) WithDefaults() Config {
	if c.OverallTimeout <= 0 {
		c.OverallTimeout = DefaultOverallTimeout
	}
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = DefaultConnectTimeout
	}
	if c.MaxRedirects <= 0 {
		c.MaxRedirects = DefaultMaxRedirects
	}
	return c
}

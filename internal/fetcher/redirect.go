package fetcher

import (
	"errors"
	"net/http"
)

// ErrTooManyRedirects is returned when the redirect hop limit is
// exceeded. Classified as a permanent failure.
var ErrTooManyRedirects = errors.New("fetcher: too many redirects")

// RedirectPolicy returns a CheckRedirect function that follows up to
// maxHops redirects and returns ErrTooManyRedirects on the next one.
func RedirectPolicy(maxHops int) func(*http.Request, []*http.Request) error {
	return func(_ *http.Request, via []*http.Request) error {
		if maxHops > 0 && len(via) > maxHops {
			return ErrTooManyRedirects
		}
		return nil
	}
}

package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetcher_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "abc"})
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("<html>Hello</html>"))
	}))
	defer srv.Close()

	f := New(Config{})
	data, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, 200, data.StatusCode)
	assert.Equal(t, "<html>Hello</html>", data.PageSource)
	assert.Equal(t, "abc", data.Cookies["session"])
	assert.Equal(t, "text/html", data.Headers["content-type"])
}

func TestFetcher_PermanentStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	f := New(Config{})
	_, err := f.Fetch(context.Background(), srv.URL)
	require.Error(t, err)

	var collErr *CollectionError
	require.ErrorAs(t, err, &collErr)
	assert.Equal(t, OutcomePermanent, collErr.Outcome)
}

func TestFetcher_TransientStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	f := New(Config{})
	_, err := f.Fetch(context.Background(), srv.URL)
	require.Error(t, err)

	var collErr *CollectionError
	require.ErrorAs(t, err, &collErr)
	assert.Equal(t, OutcomeTransient, collErr.Outcome)
}

func TestFetcher_TooManyRedirects(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, srv.URL+"/next", http.StatusFound)
	}))
	defer srv.Close()

	f := New(Config{MaxRedirects: 2})
	_, err := f.Fetch(context.Background(), srv.URL)
	require.Error(t, err)

	var collErr *CollectionError
	require.ErrorAs(t, err, &collErr)
	assert.Equal(t, OutcomePermanent, collErr.Outcome)
}

func TestClassifyStatusCode(t *testing.T) {
	assert.Equal(t, OutcomeSuccess, ClassifyStatusCode(200))
	assert.Equal(t, OutcomeSuccess, ClassifyStatusCode(301))
	assert.Equal(t, OutcomePermanent, ClassifyStatusCode(404))
	assert.Equal(t, OutcomePermanent, ClassifyStatusCode(451))
	assert.Equal(t, OutcomeTransient, ClassifyStatusCode(503))
	assert.Equal(t, OutcomeTransient, ClassifyStatusCode(429))
}

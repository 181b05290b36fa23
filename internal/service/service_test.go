package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akshayg147/metadata-inventory-service/internal/domain"
	"github.com/akshayg147/metadata-inventory-service/internal/fetcher"
	"github.com/akshayg147/metadata-inventory-service/internal/platform/logger"
	"github.com/akshayg147/metadata-inventory-service/internal/store"
)

// fakeStore is an in-memory store.Store for exercising Service without a
// live MongoDB instance.
type fakeStore struct {
	records map[string]*domain.Record
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: make(map[string]*domain.Record)}
}

func (f *fakeStore) FindByURL(_ context.Context, url string) (*domain.Record, error) {
	r, ok := f.records[url]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (f *fakeStore) Upsert(_ context.Context, url string, fields domain.Fields) (string, error) {
	now := time.Now().UTC()
	r, ok := f.records[url]
	if !ok {
		r = &domain.Record{ID: "generated-id", CanonicalURL: url, CreatedAt: now}
		f.records[url] = r
	}
	r.Status = domain.StatusCompleted
	r.Headers = fields.Headers
	r.Cookies = fields.Cookies
	r.PageSource = fields.PageSource
	r.StatusCode = fields.StatusCode
	r.UpdatedAt = now
	return r.ID, nil
}

func (f *fakeStore) MarkPending(_ context.Context, url string) (bool, error) {
	r, ok := f.records[url]
	if !ok {
		f.records[url] = &domain.Record{CanonicalURL: url, Status: domain.StatusPending}
		return true, nil
	}
	if r.Status == domain.StatusCompleted || r.Status == domain.StatusPending {
		return false, nil
	}
	r.Status = domain.StatusPending
	return true, nil
}

func (f *fakeStore) MarkFailed(_ context.Context, url string, reason string) error {
	if r, ok := f.records[url]; ok {
		r.Status = domain.StatusFailed
		r.Error = reason
	}
	return nil
}

func (f *fakeStore) EnsureIndexes(_ context.Context) error { return nil }
func (f *fakeStore) Close(_ context.Context) error         { return nil }

func TestCreateMetadata_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("hello"))
	}))
	defer srv.Close()

	st := newFakeStore()
	svc := New(st, fetcher.New(fetcher.Config{}), nil, logger.NewNop())

	record, err := svc.CreateMetadata(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, record.Status)
	assert.Equal(t, 200, record.StatusCode)
	assert.NotEmpty(t, record.CollectedAt)
}

func TestCreateMetadata_InvalidURL(t *testing.T) {
	st := newFakeStore()
	svc := New(st, fetcher.New(fetcher.Config{}), nil, logger.NewNop())

	_, err := svc.CreateMetadata(context.Background(), "not a url \x7f")
	assert.Error(t, err)
}

func TestGetMetadata_Completed(t *testing.T) {
	st := newFakeStore()
	st.records["https://example.com/"] = &domain.Record{
		CanonicalURL: "https://example.com/",
		Status:       domain.StatusCompleted,
	}
	svc := New(st, fetcher.New(fetcher.Config{}), nil, logger.NewNop())

	record, found, err := svc.GetMetadata(context.Background(), "https://example.com/")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, domain.StatusCompleted, record.Status)
}

func TestGetMetadata_NoneSchedulesPending(t *testing.T) {
	st := newFakeStore()
	svc := New(st, fetcher.New(fetcher.Config{}), nil, logger.NewNop())

	record, found, err := svc.GetMetadata(context.Background(), "https://example.com/")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, record)
	assert.Equal(t, domain.StatusPending, st.records["https://example.com/"].Status)
}

func TestGetMetadata_AlreadyPendingNoOp(t *testing.T) {
	st := newFakeStore()
	st.records["https://example.com/"] = &domain.Record{
		CanonicalURL: "https://example.com/",
		Status:       domain.StatusPending,
	}
	svc := New(st, fetcher.New(fetcher.Config{}), nil, logger.NewNop())

	record, found, err := svc.GetMetadata(context.Background(), "https://example.com/")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, record)
}

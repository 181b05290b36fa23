package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akshayg147/metadata-inventory-service/internal/domain"
	"github.com/akshayg147/metadata-inventory-service/internal/fetcher"
	"github.com/akshayg147/metadata-inventory-service/internal/platform/logger"
	"github.com/akshayg147/metadata-inventory-service/internal/service"
	"github.com/akshayg147/metadata-inventory-service/internal/store"
)

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
	r := &domain.Record{ID: "id-1", CanonicalURL: url, Status: domain.StatusCompleted,
		Headers: fields.Headers, Cookies: fields.Cookies, PageSource: fields.PageSource, StatusCode: fields.StatusCode}
	f.records[url] = r
	return r.ID, nil
}

func (f *fakeStore) MarkPending(_ context.Context, url string) (bool, error) {
	if _, ok := f.records[url]; ok {
		return false, nil
	}
	f.records[url] = &domain.Record{CanonicalURL: url, Status: domain.StatusPending}
	return true, nil
}

func (f *fakeStore) MarkFailed(_ context.Context, url string, reason string) error { return nil }
func (f *fakeStore) EnsureIndexes(_ context.Context) error                         { return nil }
func (f *fakeStore) Close(_ context.Context) error                                 { return nil }

func newTestRouter(svc *service.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewHandler(svc, logger.NewNop()).Register(router.Group("/api/v1"))
	return router
}

func TestCreateMetadata_ReturnsCreated(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}))
	defer upstream.Close()

	svc := service.New(newFakeStore(), fetcher.New(fetcher.Config{}), nil, logger.NewNop())
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/metadata", strings.NewReader(`{"url":"`+upstream.URL+`"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
}

func TestCreateMetadata_MissingURLBadRequest(t *testing.T) {
	svc := service.New(newFakeStore(), fetcher.New(fetcher.Config{}), nil, logger.NewNop())
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/metadata", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "detail")
}

func TestGetMetadata_MissingQueryBadRequest(t *testing.T) {
	svc := service.New(newFakeStore(), fetcher.New(fetcher.Config{}), nil, logger.NewNop())
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/metadata", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetMetadata_NotYetAvailableReturnsAccepted(t *testing.T) {
	svc := service.New(newFakeStore(), fetcher.New(fetcher.Config{}), nil, logger.NewNop())
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/metadata?url=https://example.com/", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Contains(t, rec.Body.String(), "pending")
	assert.Contains(t, rec.Body.String(), `"url":"https://example.com/"`)
}

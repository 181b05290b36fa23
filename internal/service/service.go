// Package service implements the two operations the HTTP API exposes:
// synchronous creation (canonicalize, fetch, upsert) and the read path
// that either returns a completed record or schedules collection and
// reports not-yet-available.
package service

import (
	"context"
	"errors"

	"github.com/akshayg147/metadata-inventory-service/internal/canonical"
	"github.com/akshayg147/metadata-inventory-service/internal/domain"
	"github.com/akshayg147/metadata-inventory-service/internal/fetcher"
	"github.com/akshayg147/metadata-inventory-service/internal/platform/logger"
	"github.com/akshayg147/metadata-inventory-service/internal/queue"
	"github.com/akshayg147/metadata-inventory-service/internal/store"
)

// Service wires the canonicalizer, fetcher, store, and producer into the
// two operations the HTTP layer calls.
type Service struct {
	store    store.Store
	fetcher  *fetcher.Fetcher
	producer *queue.Producer
	log      logger.Logger
}

// New builds a Service. producer may be nil in deployments that only
// serve the synchronous create path, though the full service always
// wires one so GetMetadata can schedule collection.
func New(st store.Store, f *fetcher.Fetcher, producer *queue.Producer, log logger.Logger) *Service {
	return &Service{store: st, fetcher: f, producer: producer, log: log}
}

// CreateMetadata canonicalizes rawURL, fetches it synchronously, and
// upserts the result. Canonicalization and fetch errors propagate to the
// caller unchanged, so the HTTP layer can map them to the right status
// code.
func (s *Service) CreateMetadata(ctx context.Context, rawURL string) (*domain.Record, error) {
	canonicalURL, err := canonical.Canonicalize(rawURL)
	if err != nil {
		return nil, err
	}

	data, err := s.fetcher.Fetch(ctx, canonicalURL)
	if err != nil {
		return nil, err
	}

	id, err := s.store.Upsert(ctx, canonicalURL, domain.Fields{
		Headers:    data.Headers,
		Cookies:    data.Cookies,
		PageSource: data.PageSource,
		StatusCode: data.StatusCode,
	})
	if err != nil {
		return nil, err
	}

	record, err := s.store.FindByURL(ctx, canonicalURL)
	if err != nil {
		return nil, err
	}
	record.ID = id
	stamped := record.WithCollectedAt()

	return &stamped, nil
}

// GetMetadata canonicalizes rawURL and looks it up. If the stored record
// is completed, it is returned with found true. Otherwise the record is
// (re)marked pending and, only on a fresh none->pending or failed->pending
// transition, collection is scheduled by enqueuing a task -- a publish
// failure is logged but does not fail the call, since the record is
// already marked pending and a later read can retry scheduling. Callers
// always receive (nil, false) on this branch, whether the record was
// already pending, just failed, or never existed.
func (s *Service) GetMetadata(ctx context.Context, rawURL string) (*domain.Record, bool, error) {
	canonicalURL, err := canonical.Canonicalize(rawURL)
	if err != nil {
		return nil, false, err
	}

	record, err := s.store.FindByURL(ctx, canonicalURL)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, false, err
	}
	if err == nil && record.Status == domain.StatusCompleted {
		stamped := record.WithCollectedAt()
		return &stamped, true, nil
	}
	// Record is missing, pending, or failed: ensure it's scheduled.

	scheduled, err := s.store.MarkPending(ctx, canonicalURL)
	if err != nil {
		return nil, false, err
	}

	if scheduled && s.producer != nil {
		if pubErr := s.producer.Enqueue(ctx, canonicalURL); pubErr != nil {
			s.log.Warn("enqueue after mark pending failed",
				logger.String("url", canonicalURL), logger.Error(pubErr))
		}
	}

	return nil, false, nil
}

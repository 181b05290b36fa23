// Package worker runs the consumer loop that turns queued tasks into
// collected records: poll, fetch, classify, and either upsert, republish
// with an incremented retry count, or dead-letter the task -- committing
// the offset only once that disposition is final.
package worker

import (
	"context"
	"errors"

	"github.com/segmentio/kafka-go"

	"github.com/akshayg147/metadata-inventory-service/internal/domain"
	"github.com/akshayg147/metadata-inventory-service/internal/fetcher"
	"github.com/akshayg147/metadata-inventory-service/internal/platform/apierr"
	"github.com/akshayg147/metadata-inventory-service/internal/platform/logger"
	"github.com/akshayg147/metadata-inventory-service/internal/platform/metrics"
	"github.com/akshayg147/metadata-inventory-service/internal/queue"
	"github.com/akshayg147/metadata-inventory-service/internal/store"
)

// taskConsumer is the subset of *queue.Consumer the worker loop needs,
// narrowed to an interface so the loop can be exercised against a fake in
// tests without a live broker.
type taskConsumer interface {
	Poll(ctx context.Context) (domain.Task, kafka.Message, error)
	Commit(ctx context.Context, msg kafka.Message) error
}

// taskProducer is the subset of *queue.Producer the worker loop needs.
type taskProducer interface {
	PublishWithRetry(ctx context.Context, canonicalURL string, retryCount int) error
	PublishToDLQ(ctx context.Context, canonicalURL string, retryCount int, reason string) error
}

// Worker drives the poll/fetch/classify/dispatch loop for one consumer.
type Worker struct {
	consumer   taskConsumer
	producer   taskProducer
	store      store.Store
	fetcher    *fetcher.Fetcher
	log        logger.Logger
	maxRetries int
}

// New builds a Worker. maxRetries bounds retry_count before a task is
// dead-lettered (default 3).
func New(consumer taskConsumer, producer taskProducer, st store.Store, f *fetcher.Fetcher, log logger.Logger, maxRetries int) *Worker {
	if maxRetries <= 0 {
		maxRetries = queue.DefaultMaxRetries
	}
	return &Worker{consumer: consumer, producer: producer, store: st, fetcher: f, log: log, maxRetries: maxRetries}
}

// Run polls until ctx is cancelled, dispatching one task per iteration.
// Each poll is bounded to queue.PollTimeout so the loop notices
// cancellation promptly even with no traffic.
func (w *Worker) Run(ctx context.Context) {
	for ctx.Err() == nil {
		pollCtx, cancel := context.WithTimeout(ctx, queue.PollTimeout)
		task, msg, err := w.consumer.Poll(pollCtx)
		cancel()

		switch {
		case errors.Is(err, queue.ErrNoMessage):
			continue
		case errors.Is(err, queue.ErrDecodeFailed):
			// Malformed payload or missing url: skip without committing.
			w.log.Warn("skipping malformed task message", logger.Error(err))
			continue
		case err != nil:
			w.log.Error("poll failed", logger.Error(apierr.WrapWithContext(err, "consumer poll")))
			continue
		}

		// Bound a single dispatch to queue.MaxPollInterval, the same
		// liveness budget a consumer group allows between poll calls --
		// a dispatch that runs longer than this would otherwise risk
		// the group considering this consumer dead.
		dispatchCtx, dispatchCancel := context.WithTimeout(ctx, queue.MaxPollInterval)
		w.dispatch(dispatchCtx, task, msg)
		dispatchCancel()
	}
}

// dispatch fetches task.URL, classifies the outcome, and applies the
// terminal disposition: upsert+commit on success, DLQ+markFailed+commit
// on a permanent failure, and either republish-with-incremented-retry or
// DLQ+markFailed on a transient failure depending on the retry budget.
// The offset is committed in every branch, since each branch represents
// a final disposition for this delivery of the message.
func (w *Worker) dispatch(ctx context.Context, task domain.Task, msg kafka.Message) {
	data, err := w.fetcher.Fetch(ctx, task.URL)
	if err == nil {
		w.complete(ctx, task, data, msg)
		return
	}

	var collErr *fetcher.CollectionError
	if !errors.As(err, &collErr) {
		w.retryOrDeadLetter(ctx, task, err.Error(), msg)
		return
	}

	switch collErr.Outcome {
	case fetcher.OutcomePermanent:
		w.deadLetter(ctx, task, collErr.Error(), msg)
	default:
		w.retryOrDeadLetter(ctx, task, collErr.Error(), msg)
	}
}

// complete upserts the collected data. A store failure here is treated
// like a transient collection failure: the fetch result is discarded and
// the task re-enters the retry budget rather than being committed as
// done with nothing persisted.
func (w *Worker) complete(ctx context.Context, task domain.Task, data *fetcher.CollectedData, msg kafka.Message) {
	_, err := w.store.Upsert(ctx, task.URL, domain.Fields{
		Headers:    data.Headers,
		Cookies:    data.Cookies,
		PageSource: data.PageSource,
		StatusCode: data.StatusCode,
	})
	if err != nil {
		w.log.Error("upsert after successful fetch failed", logger.String("url", task.URL),
			logger.Error(apierr.WrapWithContextf(err, "upsert %s", task.URL)))
		w.retryOrDeadLetter(ctx, task, err.Error(), msg)
		return
	}

	metrics.WorkerDispatches.WithLabelValues("success").Inc()
	w.commit(ctx, msg)
}

// retryOrDeadLetter increments the retry count and either republishes
// the task or, once the incremented count reaches maxRetries,
// dead-letters it instead, carrying that final count on the DLQ message.
func (w *Worker) retryOrDeadLetter(ctx context.Context, task domain.Task, reason string, msg kafka.Message) {
	n := task.RetryCount + 1
	if n < w.maxRetries {
		if err := w.producer.PublishWithRetry(ctx, task.URL, n); err != nil {
			w.log.Error("republish with incremented retry count failed", logger.String("url", task.URL),
				logger.Error(apierr.WrapWithContextf(err, "publish retry %s", task.URL)))
		}
		metrics.WorkerDispatches.WithLabelValues("retry").Inc()
		w.commit(ctx, msg)
		return
	}

	w.deadLetterWithRetryCount(ctx, task.URL, n, reason, msg)
}

// deadLetter routes a permanent-failure task straight to the dead letter
// queue, carrying the retry count as delivered (permanent failures never
// increment it).
func (w *Worker) deadLetter(ctx context.Context, task domain.Task, reason string, msg kafka.Message) {
	w.deadLetterWithRetryCount(ctx, task.URL, task.RetryCount, reason, msg)
}

func (w *Worker) deadLetterWithRetryCount(ctx context.Context, url string, retryCount int, reason string, msg kafka.Message) {
	if err := w.producer.PublishToDLQ(ctx, url, retryCount, reason); err != nil {
		w.log.Error("publish to dlq failed", logger.String("url", url),
			logger.Error(apierr.WrapWithContextf(err, "publish dlq %s", url)))
	}
	if err := w.store.MarkFailed(ctx, url, reason); err != nil {
		w.log.Error("mark failed failed", logger.String("url", url),
			logger.Error(apierr.WrapWithContextf(err, "mark failed %s", url)))
	}

	metrics.WorkerDispatches.WithLabelValues("dlq").Inc()
	w.commit(ctx, msg)
}

func (w *Worker) commit(ctx context.Context, msg kafka.Message) {
	if err := w.consumer.Commit(ctx, msg); err != nil {
		w.log.Error("commit failed", logger.Error(apierr.WrapWithContext(err, "commit offset")))
	}
}

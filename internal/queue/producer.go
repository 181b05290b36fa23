package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/akshayg147/metadata-inventory-service/internal/domain"
	"github.com/akshayg147/metadata-inventory-service/internal/platform/logger"
	"github.com/akshayg147/metadata-inventory-service/internal/platform/metrics"
)

// ErrBufferFull is returned when a publish could not be handed to the
// broker within its deadline because the writer's in-flight batches are
// saturated, distinct from other publish failures so callers can apply
// backpressure instead of treating the message as poisoned.
var ErrBufferFull = errors.New("queue: producer buffer full")

// Producer publishes task messages to the main topic and dead-letter
// messages to the DLQ topic, both with acks=all and a bounded number of
// broker-side retries.
type Producer struct {
	writer    *kafka.Writer
	dlqWriter *kafka.Writer
	log       logger.Logger
}

// NewProducer builds a Producer against cfg's bootstrap servers. Topic
// creation is handled separately by EnsureTopics; the writers here only
// publish.
func NewProducer(cfg Config, log logger.Logger) *Producer {
	cfg = cfg.WithDefaults()

	newWriter := func(topic string) *kafka.Writer {
		return &kafka.Writer{
			Addr:         kafka.TCP(cfg.BootstrapServers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			MaxAttempts:  3,
			BatchTimeout: ProducerLinger,
			Compression:  kafka.Snappy,
			Async:        false,
		}
	}

	return &Producer{
		writer:    newWriter(cfg.Topic),
		dlqWriter: newWriter(cfg.DLQTopic),
		log:       log,
	}
}

// Enqueue publishes a fresh task with retry_count: 0.
func (p *Producer) Enqueue(ctx context.Context, canonicalURL string) error {
	return p.publishTask(ctx, p.writer, domain.Task{URL: canonicalURL, RetryCount: 0})
}

// PublishWithRetry republishes a task carrying an incremented retry_count,
// used by the worker loop when a transient failure has not yet exhausted
// its retry budget.
func (p *Producer) PublishWithRetry(ctx context.Context, canonicalURL string, retryCount int) error {
	return p.publishTask(ctx, p.writer, domain.Task{URL: canonicalURL, RetryCount: retryCount})
}

// PublishToDLQ moves an exhausted or permanently-failed task to the
// dead-letter topic, annotated with the reason.
func (p *Producer) PublishToDLQ(ctx context.Context, canonicalURL string, retryCount int, reason string) error {
	body, err := encodeDeadLetter(domain.DeadLetterTask{URL: canonicalURL, RetryCount: retryCount, Error: reason})
	if err != nil {
		return fmt.Errorf("queue: encode dlq message: %w", err)
	}

	if err := p.dlqWriter.WriteMessages(ctx, kafka.Message{Key: []byte(canonicalURL), Value: body}); err != nil {
		metrics.QueuePublishes.WithLabelValues("dlq", "error").Inc()
		return classifyWriteError(err)
	}

	metrics.QueuePublishes.WithLabelValues("dlq", "success").Inc()
	return nil
}

func (p *Producer) publishTask(ctx context.Context, w *kafka.Writer, t domain.Task) error {
	body, err := encodeTask(t)
	if err != nil {
		return fmt.Errorf("queue: encode task: %w", err)
	}

	if err := w.WriteMessages(ctx, kafka.Message{Key: []byte(t.URL), Value: body}); err != nil {
		metrics.QueuePublishes.WithLabelValues(w.Topic, "error").Inc()
		return classifyWriteError(err)
	}

	metrics.QueuePublishes.WithLabelValues(w.Topic, "success").Inc()
	return nil
}

// classifyWriteError distinguishes a saturated writer from other publish
// failures. A synchronous kafka writer has no queue-full error of its
// own; saturation surfaces as the write missing its deadline, either
// locally (context deadline) or broker-side (request timed out).
func classifyWriteError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, kafka.RequestTimedOut) {
		return ErrBufferFull
	}
	return fmt.Errorf("queue: publish: %w", err)
}

// Close flushes pending writes, waiting up to ShutdownFlushDelay. Messages
// still unflushed after the deadline are logged and dropped rather than
// blocking shutdown indefinitely.
func (p *Producer) Close() error {
	done := make(chan error, 2)
	go func() { done <- p.writer.Close() }()
	go func() { done <- p.dlqWriter.Close() }()

	timeout := time.After(ShutdownFlushDelay)
	var firstErr error
	for i := 0; i < 2; i++ {
		select {
		case err := <-done:
			if err != nil && firstErr == nil {
				firstErr = err
			}
		case <-timeout:
			p.log.Warn("producer close timed out, messages may remain unflushed")
			return firstErr
		}
	}
	return firstErr
}

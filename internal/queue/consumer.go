package queue

import (
	"context"
	"errors"
	"fmt"

	"github.com/segmentio/kafka-go"

	"github.com/akshayg147/metadata-inventory-service/internal/domain"
	"github.com/akshayg147/metadata-inventory-service/internal/platform/logger"
)

// ErrNoMessage is returned by Poll when no message arrived within
// PollTimeout, distinct from a real read error so the worker loop can
// treat it as "nothing to do this tick" rather than a fault.
var ErrNoMessage = errors.New("queue: no message within poll timeout")

// ErrDecodeFailed wraps a malformed or incomplete task payload. The
// message is still returned so the caller can log it, but must not be
// committed.
var ErrDecodeFailed = errors.New("queue: malformed task payload")

// Consumer wraps a kafka.Reader bound to the main topic and consumer
// group, reading from the earliest uncommitted offset and committing
// manually only after a message's disposition is final.
type Consumer struct {
	reader *kafka.Reader
	log    logger.Logger
}

// NewConsumer builds a Consumer against cfg's bootstrap servers, topic,
// and consumer group.
func NewConsumer(cfg Config, log logger.Logger) *Consumer {
	cfg = cfg.WithDefaults()

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:               cfg.BootstrapServers,
		Topic:                 cfg.Topic,
		GroupID:               cfg.ConsumerGroup,
		StartOffset:           kafka.FirstOffset,
		SessionTimeout:        SessionTimeout,
		MaxWait:               PollTimeout,
		WatchPartitionChanges: true,
	})

	return &Consumer{reader: reader, log: log}
}

// Poll reads the next message, decodes it into a Task, and returns both
// the decoded task and the raw kafka.Message (needed for CommitMessages).
// A decode failure is returned alongside the raw message so the caller
// can skip it without committing, per the consumer protocol's "malformed
// message" step. ErrNoMessage is returned if ctx is cancelled or its
// deadline passes with nothing delivered.
func (c *Consumer) Poll(ctx context.Context) (domain.Task, kafka.Message, error) {
	msg, err := c.reader.FetchMessage(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return domain.Task{}, kafka.Message{}, ErrNoMessage
		}
		return domain.Task{}, kafka.Message{}, err
	}

	task, decodeErr := decodeTask(msg.Value)
	if decodeErr != nil {
		return domain.Task{}, msg, fmt.Errorf("%w: %v", ErrDecodeFailed, decodeErr)
	}
	return task, msg, nil
}

// Commit advances the consumer group's offset past msg, marking it (and
// everything before it on its partition) as processed.
func (c *Consumer) Commit(ctx context.Context, msg kafka.Message) error {
	return c.reader.CommitMessages(ctx, msg)
}

// Close releases the reader's connections.
func (c *Consumer) Close() error {
	return c.reader.Close()
}

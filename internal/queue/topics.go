package queue

import (
	"context"
	"errors"
	"fmt"

	"github.com/segmentio/kafka-go"
)

// EnsureTopics idempotently creates the main topic (3 partitions) and the
// DLQ topic (1 partition), both with replication factor 1. An
// "already exists" response from the broker is not an error.
func EnsureTopics(ctx context.Context, cfg Config) error {
	cfg = cfg.WithDefaults()
	if len(cfg.BootstrapServers) == 0 {
		return fmt.Errorf("queue: no bootstrap servers configured")
	}

	conn, err := kafka.DialContext(ctx, "tcp", cfg.BootstrapServers[0])
	if err != nil {
		return fmt.Errorf("queue: dial broker: %w", err)
	}
	defer conn.Close()

	controller, err := conn.Controller()
	if err != nil {
		return fmt.Errorf("queue: find controller: %w", err)
	}

	controllerConn, err := kafka.DialContext(ctx, "tcp", fmt.Sprintf("%s:%d", controller.Host, controller.Port))
	if err != nil {
		return fmt.Errorf("queue: dial controller: %w", err)
	}
	defer controllerConn.Close()

	topics := []kafka.TopicConfig{
		{Topic: cfg.Topic, NumPartitions: mainTopicPartitions, ReplicationFactor: replicationFactor},
		{Topic: cfg.DLQTopic, NumPartitions: dlqTopicPartitions, ReplicationFactor: replicationFactor},
	}

	if err := controllerConn.CreateTopics(topics...); err != nil && !errors.Is(err, kafka.TopicAlreadyExists) {
		return fmt.Errorf("queue: create topics: %w", err)
	}

	return nil
}

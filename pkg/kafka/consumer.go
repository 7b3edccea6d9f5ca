// Package kafka provides the Kafka consumer used to ingest documents, backed
// by segmentio/kafka-go. Messages are decoded through a MessageHandler.
package kafka

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/oarkflow/json"
	"github.com/segmentio/kafka-go"

	"github.com/Adithya-Monish-Kumar-K/docsearch/pkg/config"
)

// MessageHandler is a callback invoked for each Kafka message.
type MessageHandler func(ctx context.Context, key []byte, value []byte) error

// Consumer reads messages from a Kafka topic and dispatches them to a
// MessageHandler.
type Consumer struct {
	reader  *kafka.Reader
	logger  *slog.Logger
	handler MessageHandler
}

// NewConsumer creates a Consumer for the configured topic. Index builds read
// the topic from its beginning.
func NewConsumer(cfg config.KafkaConfig, handler MessageHandler) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		Topic:       cfg.Topic,
		GroupID:     cfg.ConsumerGroup,
		MinBytes:    1e3,
		MaxBytes:    10e6,
		StartOffset: kafka.FirstOffset,
	})

	return &Consumer{
		reader:  r,
		logger:  slog.Default().With("component", "kafka-consumer", "topic", cfg.Topic),
		handler: handler,
	}
}

// Drain fetches and handles messages until no message arrives for idle, or
// until ctx is cancelled. A handler error stops the drain; messages are only
// committed after the handler accepted them.
func (c *Consumer) Drain(ctx context.Context, idle time.Duration) (int, error) {
	c.logger.Info("consumer draining", "idle_timeout", idle)
	handled := 0
	for {
		fetchCtx, cancel := context.WithTimeout(ctx, idle)
		msg, err := c.reader.FetchMessage(fetchCtx)
		cancel()
		if err != nil {
			if ctx.Err() != nil {
				return handled, ctx.Err()
			}
			if errors.Is(err, context.DeadlineExceeded) {
				c.logger.Info("topic idle, drain complete", "messages", handled)
				return handled, nil
			}
			return handled, fmt.Errorf("fetching message: %w", err)
		}
		c.logger.Debug("message received",
			"partition", msg.Partition,
			"offset", msg.Offset,
			"value_size", len(msg.Value),
		)
		if err := c.handler(ctx, msg.Key, msg.Value); err != nil {
			return handled, fmt.Errorf("handling message at partition %d offset %d: %w",
				msg.Partition, msg.Offset, err)
		}
		handled++
		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			c.logger.Error("failed to commit message",
				"partition", msg.Partition,
				"offset", msg.Offset,
				"error", err,
			)
		}
	}
}

// Close closes the underlying Kafka reader.
func (c *Consumer) Close() error {
	return c.reader.Close()
}

// DecodeJSON is a generic helper that unmarshals a Kafka message value into T.
func DecodeJSON[T any](value []byte) (T, error) {
	var result T
	if err := json.Unmarshal(value, &result); err != nil {
		return result, fmt.Errorf("decoding kafka message: %w", err)
	}
	return result, nil
}

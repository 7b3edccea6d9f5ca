package ingest

import (
	"context"
	"log/slog"
	"time"

	"github.com/Adithya-Monish-Kumar-K/docsearch/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/docsearch/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/docsearch/pkg/kafka"
)

// DocumentEvent is the JSON payload of a document message.
type DocumentEvent struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// KafkaSource consumes document events from a topic until it has been idle
// for the configured timeout. Each Each call opens its own consumer.
type KafkaSource struct {
	cfg  config.KafkaConfig
	idle time.Duration
}

func NewKafkaSource(cfg config.KafkaConfig) *KafkaSource {
	idle := cfg.IdleTimeout
	if idle <= 0 {
		idle = 10 * time.Second
	}
	return &KafkaSource{cfg: cfg, idle: idle}
}

func (s *KafkaSource) Each(ctx context.Context, fn func(index.Document) error) error {
	consumer := kafka.NewConsumer(s.cfg, HandleMessage(fn))
	defer consumer.Close()
	_, err := consumer.Drain(ctx, s.idle)
	return err
}

// HandleMessage decodes document events and passes them to fn. Undecodable
// messages are logged and skipped so one bad producer cannot stall a build.
func HandleMessage(fn func(index.Document) error) kafka.MessageHandler {
	logger := slog.Default().With("component", "document-consumer")
	return func(ctx context.Context, key []byte, value []byte) error {
		event, err := kafka.DecodeJSON[DocumentEvent](value)
		if err != nil {
			logger.Error("failed to decode document event",
				"error", err,
				"key", string(key),
			)
			return nil
		}
		return fn(index.Document{Title: event.Title, Content: event.Content})
	}
}

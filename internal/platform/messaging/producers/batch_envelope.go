package producers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/segmentio/kafka-go"

	"github.com/Luckka/accounting-orchestrator/internal/config"
)

// BatchEnvelopeProducer publishes ingestion envelopes to the batch topic.
// Messages are keyed by batch ID so redeliveries of one batch land on the
// same partition.
type BatchEnvelopeProducer struct {
	logger *slog.Logger
	writer KafkaWriter // Interface for testability
	topic  string
}

// NewBatchEnvelopeProducer creates the ingest-side producer and ensures the
// batch topic exists.
func NewBatchEnvelopeProducer(ctx context.Context, logger *slog.Logger, cfg *config.KafkaConfig) (*BatchEnvelopeProducer, error) {
	if cfg.BatchTopic == "" {
		return nil, fmt.Errorf("kafka batch topic is not configured")
	}

	conn, err := kafka.Dial("tcp", cfg.Brokers)
	if err != nil {
		return nil, fmt.Errorf("failed to dial kafka for batch envelope producer: %w", err)
	}
	defer conn.Close()

	err = createKafkaTopicIfNotExists(conn, cfg.BatchTopic, cfg.NumPartitions, cfg.ReplicationFactor, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure batch topic %s exists for envelope producer: %w", cfg.BatchTopic, err)
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers),
		Topic:        cfg.BatchTopic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
		Async:        true, // Using async for high throughput
		WriteTimeout: cfg.MaxWait,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				logger.Error("Failed to write messages asynchronously", "topic", cfg.BatchTopic, "error", err, "count", len(messages))
			} else {
				logger.Debug("Successfully wrote messages asynchronously", "topic", cfg.BatchTopic, "count", len(messages))
			}
		},
	}

	return &BatchEnvelopeProducer{
		logger: logger,
		writer: writer,
		topic:  cfg.BatchTopic,
	}, nil
}

func (p *BatchEnvelopeProducer) Publish(ctx context.Context, key string, value interface{}) error {
	jsonValue, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal envelope for batch producer: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: jsonValue,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish envelope",
			"topic", p.topic,
			"key", key,
			"error", err,
		)
		return fmt.Errorf("failed to publish envelope to %s: %w", p.topic, err)
	}

	p.logger.Debug("Published ingestion envelope",
		"topic", p.topic,
		"key", key,
	)
	return nil
}

func (p *BatchEnvelopeProducer) Close() error {
	p.logger.Info("Closing batch envelope Kafka producer", "topic", p.topic)
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka writer for topic %s: %w", p.topic, err)
	}
	return nil
}

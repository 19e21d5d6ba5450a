package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/Luckka/accounting-orchestrator/internal/config"
	"github.com/Luckka/accounting-orchestrator/internal/domain/batch"
	"github.com/Luckka/accounting-orchestrator/internal/domain/shared"
	"github.com/Luckka/accounting-orchestrator/internal/platform/messaging/producers"
)

// IngestServiceImpl implements the IngestService interface
type IngestServiceImpl struct {
	producer  producers.MessagePublisher
	offloader PayloadOffloader
	registry  batch.Registry
	bucket    string
	threshold int
	logger    *slog.Logger
}

// NewIngestService creates a new ingest service
func NewIngestService(
	logger *slog.Logger,
	producer producers.MessagePublisher,
	offloader PayloadOffloader,
	registry batch.Registry,
	cfg *config.PayloadStoreConfig,
) IngestService {
	return &IngestServiceImpl{
		producer:  producer,
		offloader: offloader,
		registry:  registry,
		bucket:    cfg.Bucket,
		threshold: cfg.OffloadThreshold,
		logger:    logger,
	}
}

// IngestBatch validates the payload envelope, offloads oversized payloads to
// the payload store, registers the batch as accepted, and publishes the
// envelope to the batch topic keyed by batch ID.
func (s *IngestServiceImpl) IngestBatch(ctx context.Context, batchID string, payload json.RawMessage, correlationID string) (string, error) {
	if batchID == "" {
		batchID = uuid.New().String()
	}

	envelope := &shared.IngestEnvelope{
		BatchID:       batchID,
		Payload:       payload,
		CorrelationID: correlationID,
	}
	if err := envelope.Validate(); err != nil {
		return "", err
	}

	if len(payload) > s.threshold {
		key := fmt.Sprintf("batches/%s.json", batchID)
		if err := s.offloader.Put(ctx, s.bucket, key, payload); err != nil {
			s.logger.Error("Failed to offload oversized payload",
				"batch_id", batchID,
				"payload_size", len(payload),
				"error", err,
			)
			return "", err
		}
		s.logger.Info("Offloaded oversized payload to payload store",
			"batch_id", batchID,
			"payload_size", len(payload),
			"bucket", s.bucket,
			"key", key,
		)
		envelope.Payload = nil
		envelope.S3Bucket = s.bucket
		envelope.S3Key = key
	}

	// Best effort: a registry outage must not reject the ingestion.
	if err := s.registry.RecordAccepted(ctx, batchID); err != nil {
		s.logger.Error("Failed to register accepted batch",
			"batch_id", batchID,
			"error", err,
		)
	}

	if err := s.producer.Publish(ctx, batchID, envelope); err != nil {
		s.logger.Error("Failed to publish ingestion envelope",
			"batch_id", batchID,
			"error", err,
		)
		return "", err
	}

	s.logger.Info("Ingestion envelope published",
		"batch_id", batchID,
		"deferred", envelope.Deferred(),
	)
	return batchID, nil
}

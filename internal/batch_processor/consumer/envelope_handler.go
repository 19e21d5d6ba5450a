package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Luckka/accounting-orchestrator/internal/accounting"
	"github.com/Luckka/accounting-orchestrator/internal/batch_processor/service"
	"github.com/Luckka/accounting-orchestrator/internal/domain/shared"
	"github.com/Luckka/accounting-orchestrator/internal/platform/messaging/producers"
)

// EnvelopeHandler handles incoming ingestion envelopes from Kafka
type EnvelopeHandler struct {
	processingService service.ProcessingService
	resolver          service.PayloadResolver
	producer          producers.DeadLetterPublisher
	logger            *slog.Logger
}

// NewEnvelopeHandler creates a new handler
func NewEnvelopeHandler(
	logger *slog.Logger,
	processingService service.ProcessingService,
	resolver service.PayloadResolver,
	producer producers.DeadLetterPublisher,
) *EnvelopeHandler {
	return &EnvelopeHandler{
		processingService: processingService,
		resolver:          resolver,
		producer:          producer,
		logger:            logger,
	}
}

// HandleMessage processes Kafka messages
func (h *EnvelopeHandler) HandleMessage(ctx context.Context, key []byte, value []byte) error {
	var envelope shared.IngestEnvelope
	if err := json.Unmarshal(value, &envelope); err != nil {
		return h.deadLetter(ctx, key, value, "Failed to unmarshal ingestion envelope from Kafka message", err)
	}

	logger := h.logger
	if envelope.CorrelationID != "" {
		logger = h.logger.With("correlation_id", envelope.CorrelationID)
	}

	logger.Info("Received ingestion envelope for processing",
		"batch_id", envelope.BatchID,
		"deferred", envelope.Deferred(),
	)

	payload, err := h.resolver.Resolve(ctx, &envelope)
	if err != nil {
		// Offloaded payload fetch failures are transient, let Kafka redeliver.
		logger.Error("Failed to resolve envelope payload",
			"batch_id", envelope.BatchID,
			"error", err,
		)
		return fmt.Errorf("resolving payload for batch %s failed: %w", envelope.BatchID, err)
	}

	request := &shared.BatchRequest{
		BatchID:       envelope.BatchID,
		Payload:       payload,
		CorrelationID: envelope.CorrelationID,
	}

	if err := h.processingService.ProcessBatch(ctx, request); err != nil {
		var unbalanced *accounting.UnbalancedInvoiceError
		if errors.As(err, &unbalanced) {
			// Redelivery cannot rebalance an invoice, park it instead.
			return h.deadLetter(ctx, key, value, "Unbalanced invoice", err)
		}
		logger.Error("Failed to process batch",
			"batch_id", envelope.BatchID,
			"error", err,
		)
		return fmt.Errorf("processing batch %s failed: %w", envelope.BatchID, err)
	}

	logger.Info("Successfully processed batch", "batch_id", envelope.BatchID)
	return nil // Success, commit offset
}

// deadLetter routes an unprocessable message to the DLQ. Returns nil when the
// message was parked (commit offset) and the original error when the DLQ is
// unavailable so Kafka retries the delivery.
func (h *EnvelopeHandler) deadLetter(ctx context.Context, key []byte, value []byte, msg string, cause error) error {
	h.logger.Error(msg,
		"error", cause,
		"message_key", string(key),
	)

	if h.producer != nil {
		dlqReason := fmt.Sprintf("%s: %s", msg, cause.Error())
		if dlqErr := h.producer.PublishToDLQ(ctx, string(key), value, dlqReason); dlqErr != nil {
			h.logger.Error("Failed to publish message to DLQ",
				"dlq_error", dlqErr,
				"original_error", cause,
				"message_key", string(key),
			)
			// Return original error if DLQ fails
		} else {
			h.logger.Info("Successfully published unprocessable message to DLQ", "message_key", string(key), "reason", dlqReason)
			// Message handled, commit offset
			return nil
		}
	}
	// Allow Kafka retries
	return fmt.Errorf("%s: %w", msg, cause)
}

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Luckka/accounting-orchestrator/internal/accounting"
	"github.com/Luckka/accounting-orchestrator/internal/domain/batch"
	"github.com/Luckka/accounting-orchestrator/internal/domain/entry"
	"github.com/Luckka/accounting-orchestrator/internal/domain/shared"
)

type ProcessingServiceImpl struct {
	exploder  EntryExploder
	entryRepo entry.Repository
	recorder  RegistryRecorder
	logger    *slog.Logger
}

func NewProcessingService(
	exploder EntryExploder,
	entryRepo entry.Repository,
	recorder RegistryRecorder,
	logger *slog.Logger,
) ProcessingService {
	return &ProcessingServiceImpl{
		exploder:  exploder,
		entryRepo: entryRepo,
		recorder:  recorder,
		logger:    logger,
	}
}

// ProcessBatch runs the core pipeline for one ingestion unit: explode the
// payload into entries, persist them idempotently, record the outcome.
//
// Error contract: an *accounting.UnbalancedInvoiceError propagates to the
// caller for dead-letter routing; a store failure propagates so the message
// is redelivered; everything else — including unclassifiable payloads —
// resolves to nil with zero store writes.
func (s *ProcessingServiceImpl) ProcessBatch(ctx context.Context, request *shared.BatchRequest) error {
	logger := s.logger
	if request.CorrelationID != "" {
		logger = s.logger.With("correlation_id", request.CorrelationID)
	}

	logger.Info("Processing batch", "batch_id", request.BatchID)

	result, err := s.exploder.Explode(request.Payload, request.BatchID)
	if err != nil {
		var unbalanced *accounting.UnbalancedInvoiceError
		if errors.As(err, &unbalanced) {
			logger.Error("Invoice explosion produced an unbalanced entry set",
				"batch_id", request.BatchID,
				"invoice_id", unbalanced.InvoiceID,
				"debit", unbalanced.Debit.String(),
				"credit", unbalanced.Credit.String(),
			)
			s.recorder.Record(ctx, request.BatchID, batch.StatusUnbalanced, unbalanced.Error())
		}
		return err
	}

	if len(result.Entries) == 0 {
		// Deliberate silent-drop policy: a payload that classifies to
		// nothing produces no entries and no error. The drop reason is
		// kept visible through the log and the registry.
		detail := "payload yielded no entries"
		if result.DropReason != nil {
			detail = result.DropReason.Error()
		}
		logger.Warn("Batch produced no entries, skipping store write",
			"batch_id", request.BatchID,
			"detail", detail,
		)
		s.recorder.Record(ctx, request.BatchID, batch.StatusEmpty, detail)
		return nil
	}

	if err := s.entryRepo.SaveEntries(ctx, result.Entries); err != nil {
		if errors.Is(err, entry.ErrDuplicateBatch{}) {
			logger.Info("Batch already persisted by an earlier delivery",
				"batch_id", request.BatchID,
			)
			s.recorder.Record(ctx, request.BatchID, batch.StatusDuplicate, "")
			return nil
		}
		logger.Error("Failed to persist batch entries",
			"batch_id", request.BatchID,
			"entry_count", len(result.Entries),
			"error", err,
		)
		return fmt.Errorf("failed to persist batch %s: %w", request.BatchID, err)
	}

	s.recorder.Record(ctx, request.BatchID, batch.StatusProcessed,
		fmt.Sprintf("%d entries persisted", len(result.Entries)))

	logger.Info("Batch persisted",
		"batch_id", request.BatchID,
		"entry_count", len(result.Entries),
	)
	return nil
}

package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/Luckka/accounting-orchestrator/internal/domain/batch"
	"github.com/Luckka/accounting-orchestrator/internal/domain/entry"
)

// QueryServiceImpl implements the QueryService interface
type QueryServiceImpl struct {
	entryRepo entry.Repository
	registry  batch.Registry
	logger    *slog.Logger
}

// NewQueryService creates a new query service
func NewQueryService(logger *slog.Logger, entryRepo entry.Repository, registry batch.Registry) QueryService {
	return &QueryServiceImpl{
		entryRepo: entryRepo,
		registry:  registry,
		logger:    logger,
	}
}

// GetEntriesByBatchID retrieves the persisted entry set of a batch. Returns nil if not found
func (s *QueryServiceImpl) GetEntriesByBatchID(ctx context.Context, batchID string) ([]entry.Entry, error) {
	entries, err := s.entryRepo.QueryByBatch(ctx, batchID)
	if err != nil {
		if errors.Is(err, entry.ErrBatchNotFound{}) {
			s.logger.Info("Batch has no persisted entries", "batch_id", batchID)
			return nil, nil
		}
		s.logger.Error("Failed to query entries by batch", "batch_id", batchID, "error", err)
		return nil, err
	}
	return entries, nil
}

// GetBatchStatus retrieves the ingestion registry record of a batch. Returns nil if not found
func (s *QueryServiceImpl) GetBatchStatus(ctx context.Context, batchID string) (*batch.Record, error) {
	record, err := s.registry.GetByBatchID(ctx, batchID)
	if err != nil {
		if errors.Is(err, batch.ErrRecordNotFound{}) {
			s.logger.Info("Batch not found in ingestion registry", "batch_id", batchID)
			return nil, nil
		}
		s.logger.Error("Failed to get batch status", "batch_id", batchID, "error", err)
		return nil, err
	}
	return record, nil
}

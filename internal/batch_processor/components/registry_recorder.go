package components

import (
	"context"
	"log/slog"

	"github.com/Luckka/accounting-orchestrator/internal/domain/batch"
)

// RegistryRecorderImpl writes batch outcomes to the ingestion registry.
// Failures are logged and swallowed so the registry never blocks the
// persistence pipeline.
type RegistryRecorderImpl struct {
	registry batch.Registry
	logger   *slog.Logger
}

func NewRegistryRecorder(registry batch.Registry, logger *slog.Logger) *RegistryRecorderImpl {
	return &RegistryRecorderImpl{
		registry: registry,
		logger:   logger,
	}
}

func (r *RegistryRecorderImpl) Record(ctx context.Context, batchID string, status batch.Status, detail string) {
	if err := r.registry.MarkProcessed(ctx, batchID, status, detail); err != nil {
		r.logger.Error("Failed to record batch outcome in ingestion registry",
			"batch_id", batchID,
			"status", string(status),
			"error", err,
		)
	}
}

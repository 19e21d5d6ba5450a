package components

import (
	"log/slog"

	"github.com/Luckka/accounting-orchestrator/internal/accounting"
	"github.com/Luckka/accounting-orchestrator/internal/batch_processor/service"
	"github.com/Luckka/accounting-orchestrator/internal/config"
	"github.com/Luckka/accounting-orchestrator/internal/domain/batch"
	"github.com/Luckka/accounting-orchestrator/internal/domain/entry"
)

// CreateProcessingService creates a new ProcessingService with all its dependencies.
func CreateProcessingService(
	entryRepo entry.Repository,
	registry batch.Registry,
	logger *slog.Logger,
	cfg *config.Config,
) service.ProcessingService {
	exploder := accounting.NewExploder(logger)
	recorder := NewRegistryRecorder(registry, logger)

	baseService := service.NewProcessingService(
		exploder,
		entryRepo,
		recorder,
		logger,
	)

	workerPoolService, err := service.NewWorkerPoolProcessingService(
		baseService,
		service.WorkerPoolConfig{
			Size: cfg.WorkerPool.Size,
		},
		logger.With("component", "worker_pool"),
	)

	if err != nil {
		logger.Error("Failed to create worker pool service, falling back to base service", "error", err)
		return baseService
	}

	logger.Info("Created worker pool processing service", "pool_size", cfg.WorkerPool.Size)
	return workerPoolService
}

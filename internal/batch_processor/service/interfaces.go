package service

import (
	"context"

	"github.com/Luckka/accounting-orchestrator/internal/accounting"
	"github.com/Luckka/accounting-orchestrator/internal/domain/batch"
	"github.com/Luckka/accounting-orchestrator/internal/domain/shared"
)

// ProcessingService defines the interface for processing ingestion batches.
type ProcessingService interface {
	ProcessBatch(ctx context.Context, request *shared.BatchRequest) error
}

// EntryExploder turns one raw payload into its candidate entry set.
type EntryExploder interface {
	Explode(payload, batchID string) (accounting.Result, error)
}

// PayloadResolver produces the raw payload string for an envelope,
// dereferencing the payload store when the envelope carries an object
// reference instead of an inline payload.
type PayloadResolver interface {
	Resolve(ctx context.Context, envelope *shared.IngestEnvelope) (string, error)
}

// RegistryRecorder records batch lifecycle outcomes in the ingestion
// registry. Recording is best-effort: implementations must not let a
// registry failure fail the processing pipeline.
type RegistryRecorder interface {
	Record(ctx context.Context, batchID string, status batch.Status, detail string)
}

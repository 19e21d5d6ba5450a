package service

import (
	"context"
	"encoding/json"

	"github.com/Luckka/accounting-orchestrator/internal/domain/batch"
	"github.com/Luckka/accounting-orchestrator/internal/domain/entry"
)

// IngestService defines the interface for batch ingestion
type IngestService interface {
	// IngestBatch accepts one raw business-event payload and queues it for
	// asynchronous processing. A blank batchID gets a generated identifier.
	// Returns the effective batch ID.
	IngestBatch(ctx context.Context, batchID string, payload json.RawMessage, correlationID string) (string, error)
}

// QueryService defines the interface for reading processed batches
type QueryService interface {
	// GetEntriesByBatchID retrieves the persisted entry set of a batch.
	// Returns nil if no entries exist for the batch
	GetEntriesByBatchID(ctx context.Context, batchID string) ([]entry.Entry, error)

	// GetBatchStatus retrieves the ingestion registry record of a batch.
	// Returns nil if the batch was never accepted
	GetBatchStatus(ctx context.Context, batchID string) (*batch.Record, error)
}

// PayloadOffloader writes oversized payloads to the payload store so the
// envelope on the bus carries only a reference.
type PayloadOffloader interface {
	Put(ctx context.Context, bucket, key string, payload []byte) error
}

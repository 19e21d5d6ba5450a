// Package postgres provides the PostgreSQL implementation of the ingestion
// registry, the audit trail recording the fate of every accepted batch.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Luckka/accounting-orchestrator/internal/domain/batch"
	"github.com/Luckka/accounting-orchestrator/internal/platform/persistence"
)

// BatchRegistry implements the batch.Registry interface for PostgreSQL
type BatchRegistry struct {
	querier persistence.Querier // Can be *pgxpool.Pool or pgx.Tx
	logger  *slog.Logger
}

// NewBatchRegistry creates a new PostgreSQL ingestion registry.
func NewBatchRegistry(logger *slog.Logger, db *persistence.PostgresDB) batch.Registry {
	return &BatchRegistry{
		querier: db.Pool(),
		logger:  logger,
	}
}

// RecordAccepted inserts a PENDING record for a newly accepted batch.
// A batch ID the registry has already seen is left untouched, so redelivered
// envelopes never reset an existing record.
func (r *BatchRegistry) RecordAccepted(ctx context.Context, batchID string) error {
	query := `
		INSERT INTO ingestion_batches (batch_id, status, detail, received_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (batch_id) DO NOTHING
	`

	_, err := r.querier.Exec(ctx, query, batchID, batch.StatusPending, "", time.Now().UTC())
	if err != nil {
		r.logger.Error("Failed to record accepted batch", "batch_id", batchID, "error", err)
		return fmt.Errorf("failed to record accepted batch: %w", err)
	}

	return nil
}

// MarkProcessed moves a batch to a terminal status. A batch ID the registry
// has never seen is inserted outright, which covers envelopes that reached
// the processor without passing through the API gateway.
func (r *BatchRegistry) MarkProcessed(ctx context.Context, batchID string, status batch.Status, detail string) error {
	query := `
		INSERT INTO ingestion_batches (batch_id, status, detail, received_at, processed_at)
		VALUES ($1, $2, $3, $4, $4)
		ON CONFLICT (batch_id) DO UPDATE
		SET status = EXCLUDED.status, detail = EXCLUDED.detail, processed_at = EXCLUDED.processed_at
	`

	_, err := r.querier.Exec(ctx, query, batchID, status, detail, time.Now().UTC())
	if err != nil {
		r.logger.Error("Failed to mark batch processed",
			"batch_id", batchID,
			"status", string(status),
			"error", err)
		return fmt.Errorf("failed to mark batch %s as %s: %w", batchID, status, err)
	}

	return nil
}

// GetByBatchID retrieves the ingestion record for a batch
func (r *BatchRegistry) GetByBatchID(ctx context.Context, batchID string) (*batch.Record, error) {
	query := `
		SELECT batch_id, status, detail, received_at, processed_at
		FROM ingestion_batches
		WHERE batch_id = $1
	`

	var rec batch.Record
	err := r.querier.QueryRow(ctx, query, batchID).Scan(
		&rec.BatchID,
		&rec.Status,
		&rec.Detail,
		&rec.ReceivedAt,
		&rec.ProcessedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, batch.ErrRecordNotFound{BatchID: batchID}
		}
		r.logger.Error("Failed to get ingestion record", "batch_id", batchID, "error", err)
		return nil, fmt.Errorf("failed to get ingestion record: %w", err)
	}

	return &rec, nil
}

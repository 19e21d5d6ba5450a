package batch

import (
	"context"
	"time"
)

// Status describes where a batch sits in the ingestion lifecycle.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusProcessed  Status = "PROCESSED"
	StatusDuplicate  Status = "DUPLICATE"
	StatusEmpty      Status = "EMPTY"
	StatusUnbalanced Status = "UNBALANCED"
)

// Record is one row of the ingestion registry. It tracks the fate of a
// batch independently of the ledger store, so a payload that classified to
// nothing still leaves a trace.
type Record struct {
	BatchID     string     `json:"batch_id"`
	Status      Status     `json:"status"`
	Detail      string     `json:"detail,omitempty"`
	ReceivedAt  time.Time  `json:"received_at"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`
}

// Registry stores ingestion lifecycle records.
type Registry interface {
	// RecordAccepted inserts a PENDING record for a freshly accepted batch.
	// Re-accepting a known batch ID leaves the existing record untouched.
	RecordAccepted(ctx context.Context, batchID string) error

	// MarkProcessed moves a batch to a terminal status with an optional
	// human-readable detail.
	MarkProcessed(ctx context.Context, batchID string, status Status, detail string) error

	// GetByBatchID returns the record for a batch, or ErrRecordNotFound.
	GetByBatchID(ctx context.Context, batchID string) (*Record, error)
}

// ErrRecordNotFound indicates the registry has never seen the batch.
type ErrRecordNotFound struct {
	BatchID string
}

func (e ErrRecordNotFound) Error() string {
	return "ingestion record not found: " + e.BatchID
}

// Is matches any ErrRecordNotFound when the target carries an empty BatchID.
func (e ErrRecordNotFound) Is(target error) bool {
	t, ok := target.(ErrRecordNotFound)
	if !ok {
		return false
	}
	return t.BatchID == "" || t.BatchID == e.BatchID
}

package entry

import "context"

// Repository persists ledger entries and answers batch-level queries.
type Repository interface {
	// SaveEntry upserts a single entry with no idempotency guard.
	SaveEntry(ctx context.Context, e *Entry) error

	// SaveEntries persists all entries of one batch at most once. An empty
	// slice is a no-op. A redelivered batch returns ErrDuplicateBatch, which
	// callers treat as success.
	SaveEntries(ctx context.Context, entries []Entry) error

	// QueryByBatch returns every entry carrying the given batch ID, in no
	// particular order. Returns ErrBatchNotFound when none exist.
	QueryByBatch(ctx context.Context, batchID string) ([]Entry, error)
}

// ErrBatchNotFound indicates no entries exist for a batch.
type ErrBatchNotFound struct {
	BatchID string
}

func (e ErrBatchNotFound) Error() string {
	return "batch not found: " + e.BatchID
}

// Is matches any ErrBatchNotFound when the target carries an empty BatchID.
func (e ErrBatchNotFound) Is(target error) bool {
	t, ok := target.(ErrBatchNotFound)
	if !ok {
		return false
	}
	return t.BatchID == "" || t.BatchID == e.BatchID
}

// ErrDuplicateBatch indicates the batch was already persisted by an earlier
// delivery. The write was skipped entirely.
type ErrDuplicateBatch struct {
	BatchID string
}

func (e ErrDuplicateBatch) Error() string {
	return "batch already persisted: " + e.BatchID
}

// Is matches any ErrDuplicateBatch when the target carries an empty BatchID.
func (e ErrDuplicateBatch) Is(target error) bool {
	t, ok := target.(ErrDuplicateBatch)
	if !ok {
		return false
	}
	return t.BatchID == "" || t.BatchID == e.BatchID
}

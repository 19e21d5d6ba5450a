// Package memory provides an in-memory entry repository with the same
// idempotency semantics as the MongoDB implementation. It backs unit tests
// that exercise the processing pipeline without a database.
package memory

import (
	"context"
	"sync"

	"github.com/Luckka/accounting-orchestrator/internal/domain/entry"
)

type EntryRepository struct {
	mu      sync.RWMutex
	entries map[string]entry.Entry // keyed by entry ID
	batches map[string][]string    // batch ID -> entry IDs, insertion order
}

func NewEntryRepository() *EntryRepository {
	return &EntryRepository{
		entries: make(map[string]entry.Entry),
		batches: make(map[string][]string),
	}
}

func (r *EntryRepository) SaveEntry(ctx context.Context, e *entry.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[e.EntryID]; !ok {
		r.batches[e.BatchID] = append(r.batches[e.BatchID], e.EntryID)
	}
	r.entries[e.EntryID] = *e
	return nil
}

func (r *EntryRepository) SaveEntries(ctx context.Context, entries []entry.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	batchID := entries[0].BatchID
	if _, ok := r.batches[batchID]; ok {
		return entry.ErrDuplicateBatch{BatchID: batchID}
	}

	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		r.entries[e.EntryID] = e
		ids = append(ids, e.EntryID)
	}
	r.batches[batchID] = ids
	return nil
}

func (r *EntryRepository) QueryByBatch(ctx context.Context, batchID string) ([]entry.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids, ok := r.batches[batchID]
	if !ok || len(ids) == 0 {
		return nil, entry.ErrBatchNotFound{BatchID: batchID}
	}

	result := make([]entry.Entry, 0, len(ids))
	for _, id := range ids {
		result = append(result, r.entries[id])
	}
	return result, nil
}

var _ entry.Repository = (*EntryRepository)(nil)

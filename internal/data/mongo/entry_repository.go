// Package mongo provides the MongoDB implementation of the entry store and
// the GridFS-backed payload store.
package mongo

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Luckka/accounting-orchestrator/internal/domain/entry"
)

const (
	// EntriesCollectionName holds the persisted ledger entries, with a
	// secondary index on batch_id for batch lookups.
	EntriesCollectionName = "accounting_entries"
	// BatchMarkersCollectionName holds one marker document per persisted
	// batch, keyed by batch ID. The unique _id constraint is what makes
	// SaveEntries an atomic conditional write: claiming the marker and
	// probing for prior deliveries are the same operation.
	BatchMarkersCollectionName = "batch_markers"
)

// entryDocument is the stored shape of an entry. Amounts travel as decimal
// strings so no precision is lost to BSON floating point.
type entryDocument struct {
	EntryID     string    `bson:"entry_id"`
	Account     string    `bson:"account"`
	Amount      string    `bson:"amount"`
	Date        time.Time `bson:"date"`
	Description string    `bson:"description"`
	BatchID     string    `bson:"batch_id"`
}

// EntryRepository implements entry.Repository on MongoDB.
type EntryRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewEntryRepository creates a MongoDB entry repository.
func NewEntryRepository(logger *slog.Logger, db *mongo.Database) *EntryRepository {
	return &EntryRepository{
		db:     db,
		logger: logger,
	}
}

// EnsureIndexes creates the batch_id secondary index on the entries
// collection. Safe to call on every startup.
func (r *EntryRepository) EnsureIndexes(ctx context.Context) error {
	collection := r.db.Collection(EntriesCollectionName)
	_, err := collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "batch_id", Value: 1}}},
		{Keys: bson.D{{Key: "entry_id", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
	if err != nil {
		return fmt.Errorf("failed to create entry indexes: %w", err)
	}
	return nil
}

// SaveEntry upserts a single entry keyed by entry ID. There is no
// idempotency guard; this path sits outside the batch flow.
func (r *EntryRepository) SaveEntry(ctx context.Context, e *entry.Entry) error {
	collection := r.db.Collection(EntriesCollectionName)

	filter := bson.M{"entry_id": e.EntryID}
	opts := options.Replace().SetUpsert(true)
	if _, err := collection.ReplaceOne(ctx, filter, toDocument(*e), opts); err != nil {
		r.logger.Error("Failed to save ledger entry",
			"entry_id", e.EntryID,
			"batch_id", e.BatchID,
			"error", err)
		return fmt.Errorf("failed to save ledger entry: %w", err)
	}

	return nil
}

// SaveEntries persists a batch at most once. The batch is claimed by
// inserting a marker document whose _id is the batch ID; a duplicate key
// means an earlier delivery already wrote the batch and the call returns
// ErrDuplicateBatch without touching the entries collection. The entry
// insert itself is not transactional across documents, so an aborted call
// can leave a batch partially persisted behind a claimed marker.
func (r *EntryRepository) SaveEntries(ctx context.Context, entries []entry.Entry) error {
	if len(entries) == 0 {
		return nil
	}
	batchID := entries[0].BatchID

	markers := r.db.Collection(BatchMarkersCollectionName)
	_, err := markers.InsertOne(ctx, bson.M{
		"_id":         batchID,
		"entry_count": len(entries),
		"created_at":  time.Now().UTC(),
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			r.logger.Info("Batch already persisted, skipping write",
				"batch_id", batchID)
			return entry.ErrDuplicateBatch{BatchID: batchID}
		}
		r.logger.Error("Failed to claim batch marker",
			"batch_id", batchID,
			"error", err)
		return fmt.Errorf("failed to claim batch %s: %w", batchID, err)
	}

	docs := make([]interface{}, len(entries))
	for i, e := range entries {
		docs[i] = toDocument(e)
	}

	collection := r.db.Collection(EntriesCollectionName)
	if _, err := collection.InsertMany(ctx, docs); err != nil {
		r.logger.Error("Failed to persist batch entries",
			"batch_id", batchID,
			"entry_count", len(entries),
			"error", err)
		return fmt.Errorf("failed to persist entries for batch %s: %w", batchID, err)
	}

	return nil
}

// QueryByBatch returns all entries carrying the given batch ID. Returns
// ErrBatchNotFound when none exist. No ordering is guaranteed.
func (r *EntryRepository) QueryByBatch(ctx context.Context, batchID string) ([]entry.Entry, error) {
	collection := r.db.Collection(EntriesCollectionName)

	cursor, err := collection.Find(ctx, bson.M{"batch_id": batchID})
	if err != nil {
		r.logger.Error("Failed to query entries by batch",
			"batch_id", batchID,
			"error", err)
		return nil, fmt.Errorf("failed to query entries for batch %s: %w", batchID, err)
	}
	defer cursor.Close(ctx)

	var docs []entryDocument
	if err := cursor.All(ctx, &docs); err != nil {
		r.logger.Error("Failed to decode entries",
			"batch_id", batchID,
			"error", err)
		return nil, fmt.Errorf("failed to decode entries for batch %s: %w", batchID, err)
	}

	if len(docs) == 0 {
		return nil, entry.ErrBatchNotFound{BatchID: batchID}
	}

	entries := make([]entry.Entry, 0, len(docs))
	for _, doc := range docs {
		e, err := fromDocument(doc)
		if err != nil {
			return nil, fmt.Errorf("corrupt entry %s in batch %s: %w", doc.EntryID, batchID, err)
		}
		entries = append(entries, e)
	}

	return entries, nil
}

func toDocument(e entry.Entry) entryDocument {
	return entryDocument{
		EntryID:     e.EntryID,
		Account:     e.Account,
		Amount:      e.Amount.String(),
		Date:        e.Date,
		Description: e.Description,
		BatchID:     e.BatchID,
	}
}

func fromDocument(doc entryDocument) (entry.Entry, error) {
	amount, err := decimal.NewFromString(doc.Amount)
	if err != nil {
		return entry.Entry{}, fmt.Errorf("invalid stored amount %q: %w", doc.Amount, err)
	}
	return entry.Entry{
		EntryID:     doc.EntryID,
		Account:     doc.Account,
		Amount:      amount,
		Date:        doc.Date,
		Description: doc.Description,
		BatchID:     doc.BatchID,
	}, nil
}

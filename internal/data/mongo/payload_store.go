package mongo

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PayloadStore keeps oversized ingestion payloads out of the message bus.
// Payloads are stored as GridFS files; the envelope then carries only the
// bucket/key reference. Wire-wise the reference keeps the s3Bucket/s3Key
// field names of the original protocol.
type PayloadStore struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewPayloadStore creates a GridFS-backed payload store.
func NewPayloadStore(logger *slog.Logger, db *mongo.Database) *PayloadStore {
	return &PayloadStore{
		db:     db,
		logger: logger,
	}
}

// Put uploads a payload under the given bucket and key. An existing file
// with the same key is shadowed, not replaced; Get always reads the most
// recent revision.
func (s *PayloadStore) Put(ctx context.Context, bucket, key string, payload []byte) error {
	b, err := s.bucket(ctx, bucket, false)
	if err != nil {
		return err
	}

	if _, err := b.UploadFromStream(key, bytes.NewReader(payload)); err != nil {
		s.logger.Error("Failed to upload payload",
			"bucket", bucket,
			"key", key,
			"error", err)
		return fmt.Errorf("failed to upload payload %s/%s: %w", bucket, key, err)
	}

	s.logger.Debug("Uploaded offloaded payload",
		"bucket", bucket,
		"key", key,
		"size", len(payload),
	)
	return nil
}

// Get downloads the payload stored under the given bucket and key and
// returns it as the raw payload string handed to the classifier.
func (s *PayloadStore) Get(ctx context.Context, bucket, key string) (string, error) {
	b, err := s.bucket(ctx, bucket, true)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if _, err := b.DownloadToStreamByName(key, &buf); err != nil {
		s.logger.Error("Failed to download payload",
			"bucket", bucket,
			"key", key,
			"error", err)
		return "", fmt.Errorf("failed to download payload %s/%s: %w", bucket, key, err)
	}

	return buf.String(), nil
}

// bucket opens the named GridFS bucket and propagates the caller's context
// deadline, since the v1 GridFS API works with deadlines rather than
// contexts.
func (s *PayloadStore) bucket(ctx context.Context, name string, read bool) (*gridfs.Bucket, error) {
	b, err := gridfs.NewBucket(s.db, options.GridFSBucket().SetName(name))
	if err != nil {
		return nil, fmt.Errorf("failed to open payload bucket %s: %w", name, err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		if read {
			err = b.SetReadDeadline(deadline)
		} else {
			err = b.SetWriteDeadline(deadline)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to set deadline on payload bucket %s: %w", name, err)
		}
	}
	return b, nil
}

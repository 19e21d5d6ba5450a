package components

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/Luckka/accounting-orchestrator/internal/domain/shared"
)

// ObjectStore reads offloaded payloads written by the ingest side.
type ObjectStore interface {
	Get(ctx context.Context, bucket, key string) (string, error)
}

// PayloadResolverImpl resolves the raw payload for an envelope, either
// inline or by dereferencing the object store.
type PayloadResolverImpl struct {
	store  ObjectStore
	logger *slog.Logger
}

func NewPayloadResolver(store ObjectStore, logger *slog.Logger) *PayloadResolverImpl {
	return &PayloadResolverImpl{
		store:  store,
		logger: logger,
	}
}

func (r *PayloadResolverImpl) Resolve(ctx context.Context, envelope *shared.IngestEnvelope) (string, error) {
	if envelope.Deferred() {
		r.logger.Debug("Dereferencing offloaded payload",
			"batch_id", envelope.BatchID,
			"bucket", envelope.S3Bucket,
			"key", envelope.S3Key,
		)
		payload, err := r.store.Get(ctx, envelope.S3Bucket, envelope.S3Key)
		if err != nil {
			return "", fmt.Errorf("failed to fetch offloaded payload %s/%s: %w", envelope.S3Bucket, envelope.S3Key, err)
		}
		return payload, nil
	}
	return inlinePayload(envelope.Payload), nil
}

// inlinePayload returns the classifier input for an inline payload. A JSON
// string is unwrapped so its content is classified, not its quoting; any
// other JSON value passes through verbatim.
func inlinePayload(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

package components

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/Luckka/accounting-orchestrator/internal/domain/shared"
)

type MockObjectStore struct {
	mock.Mock
}

func (m *MockObjectStore) Get(ctx context.Context, bucket, key string) (string, error) {
	args := m.Called(ctx, bucket, key)
	return args.String(0), args.Error(1)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestResolve_InlineJSONValue(t *testing.T) {
	store := new(MockObjectStore)
	r := NewPayloadResolver(store, testLogger())

	envelope := &shared.IngestEnvelope{
		BatchID: "B-1",
		Payload: json.RawMessage(`[{"amount": 1.00}]`),
	}

	payload, err := r.Resolve(context.Background(), envelope)

	assert.NoError(t, err)
	assert.JSONEq(t, `[{"amount": 1.00}]`, payload)
	store.AssertNotCalled(t, "Get", mock.Anything, mock.Anything, mock.Anything)
}

func TestResolve_InlineJSONStringIsUnwrapped(t *testing.T) {
	store := new(MockObjectStore)
	r := NewPayloadResolver(store, testLogger())

	envelope := &shared.IngestEnvelope{
		BatchID: "B-1",
		Payload: json.RawMessage(`"[{\"amount\": 1.00}]"`),
	}

	payload, err := r.Resolve(context.Background(), envelope)

	assert.NoError(t, err)
	assert.Equal(t, `[{"amount": 1.00}]`, payload)
}

func TestResolve_DeferredPayload(t *testing.T) {
	store := new(MockObjectStore)
	r := NewPayloadResolver(store, testLogger())

	envelope := &shared.IngestEnvelope{
		BatchID:  "B-1",
		S3Bucket: "accounting_payloads",
		S3Key:    "batches/B-1.json",
	}
	store.On("Get", mock.Anything, "accounting_payloads", "batches/B-1.json").
		Return(`[{"amount": 1.00}]`, nil)

	payload, err := r.Resolve(context.Background(), envelope)

	assert.NoError(t, err)
	assert.Equal(t, `[{"amount": 1.00}]`, payload)
	store.AssertExpectations(t)
}

func TestResolve_DeferredPayloadStoreFailure(t *testing.T) {
	store := new(MockObjectStore)
	r := NewPayloadResolver(store, testLogger())

	envelope := &shared.IngestEnvelope{
		BatchID:  "B-1",
		S3Bucket: "accounting_payloads",
		S3Key:    "batches/B-1.json",
	}
	store.On("Get", mock.Anything, "accounting_payloads", "batches/B-1.json").
		Return("", errors.New("store unavailable"))

	_, err := r.Resolve(context.Background(), envelope)

	assert.Error(t, err)
}

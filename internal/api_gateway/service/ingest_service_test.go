package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Luckka/accounting-orchestrator/internal/config"
	"github.com/Luckka/accounting-orchestrator/internal/domain/batch"
	"github.com/Luckka/accounting-orchestrator/internal/domain/shared"
)

// Mock implementations of the dependencies

type MockMessagePublisher struct {
	mock.Mock
}

func (m *MockMessagePublisher) Publish(ctx context.Context, key string, value interface{}) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *MockMessagePublisher) Close() error {
	return nil
}

type MockPayloadOffloader struct {
	mock.Mock
}

func (m *MockPayloadOffloader) Put(ctx context.Context, bucket, key string, payload []byte) error {
	args := m.Called(ctx, bucket, key, payload)
	return args.Error(0)
}

type MockBatchRegistry struct {
	mock.Mock
}

func (m *MockBatchRegistry) RecordAccepted(ctx context.Context, batchID string) error {
	args := m.Called(ctx, batchID)
	return args.Error(0)
}

func (m *MockBatchRegistry) MarkProcessed(ctx context.Context, batchID string, status batch.Status, detail string) error {
	args := m.Called(ctx, batchID, status, detail)
	return args.Error(0)
}

func (m *MockBatchRegistry) GetByBatchID(ctx context.Context, batchID string) (*batch.Record, error) {
	args := m.Called(ctx, batchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*batch.Record), args.Error(1)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testPayloadStoreConfig() *config.PayloadStoreConfig {
	return &config.PayloadStoreConfig{
		Bucket:           "accounting_payloads",
		OffloadThreshold: 1024,
	}
}

func TestIngestBatch_PublishesInlineEnvelope(t *testing.T) {
	producer := new(MockMessagePublisher)
	offloader := new(MockPayloadOffloader)
	registry := new(MockBatchRegistry)
	svc := NewIngestService(testLogger(), producer, offloader, registry, testPayloadStoreConfig())

	registry.On("RecordAccepted", mock.Anything, "B-1").Return(nil)
	producer.On("Publish", mock.Anything, "B-1", mock.MatchedBy(func(v interface{}) bool {
		env, ok := v.(*shared.IngestEnvelope)
		return ok && env.BatchID == "B-1" && !env.Deferred() && len(env.Payload) > 0
	})).Return(nil)

	batchID, err := svc.IngestBatch(context.Background(), "B-1", json.RawMessage(`[{"amount": 1.00}]`), "corr1")

	require.NoError(t, err)
	assert.Equal(t, "B-1", batchID)
	offloader.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	producer.AssertExpectations(t)
	registry.AssertExpectations(t)
}

func TestIngestBatch_GeneratesBatchID(t *testing.T) {
	producer := new(MockMessagePublisher)
	offloader := new(MockPayloadOffloader)
	registry := new(MockBatchRegistry)
	svc := NewIngestService(testLogger(), producer, offloader, registry, testPayloadStoreConfig())

	registry.On("RecordAccepted", mock.Anything, mock.Anything).Return(nil)
	producer.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	batchID, err := svc.IngestBatch(context.Background(), "", json.RawMessage(`[{"amount": 1.00}]`), "")

	require.NoError(t, err)
	assert.NotEmpty(t, batchID)
}

func TestIngestBatch_RejectsEmptyEnvelope(t *testing.T) {
	producer := new(MockMessagePublisher)
	offloader := new(MockPayloadOffloader)
	registry := new(MockBatchRegistry)
	svc := NewIngestService(testLogger(), producer, offloader, registry, testPayloadStoreConfig())

	_, err := svc.IngestBatch(context.Background(), "B-1", nil, "")

	assert.ErrorIs(t, err, shared.ErrEmptyEnvelope)
	producer.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
}

func TestIngestBatch_OffloadsOversizedPayload(t *testing.T) {
	producer := new(MockMessagePublisher)
	offloader := new(MockPayloadOffloader)
	registry := new(MockBatchRegistry)
	svc := NewIngestService(testLogger(), producer, offloader, registry, testPayloadStoreConfig())

	big := json.RawMessage(`"` + strings.Repeat("x", 2048) + `"`)
	offloader.On("Put", mock.Anything, "accounting_payloads", "batches/B-1.json", []byte(big)).Return(nil)
	registry.On("RecordAccepted", mock.Anything, "B-1").Return(nil)
	producer.On("Publish", mock.Anything, "B-1", mock.MatchedBy(func(v interface{}) bool {
		env, ok := v.(*shared.IngestEnvelope)
		return ok && env.Deferred() && len(env.Payload) == 0 &&
			env.S3Bucket == "accounting_payloads" && env.S3Key == "batches/B-1.json"
	})).Return(nil)

	batchID, err := svc.IngestBatch(context.Background(), "B-1", big, "")

	require.NoError(t, err)
	assert.Equal(t, "B-1", batchID)
	offloader.AssertExpectations(t)
	producer.AssertExpectations(t)
}

func TestIngestBatch_OffloadFailure(t *testing.T) {
	producer := new(MockMessagePublisher)
	offloader := new(MockPayloadOffloader)
	registry := new(MockBatchRegistry)
	svc := NewIngestService(testLogger(), producer, offloader, registry, testPayloadStoreConfig())

	big := json.RawMessage(`"` + strings.Repeat("x", 2048) + `"`)
	offloader.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("store unavailable"))

	_, err := svc.IngestBatch(context.Background(), "B-1", big, "")

	assert.Error(t, err)
	producer.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
}

func TestIngestBatch_RegistryFailureIsBestEffort(t *testing.T) {
	producer := new(MockMessagePublisher)
	offloader := new(MockPayloadOffloader)
	registry := new(MockBatchRegistry)
	svc := NewIngestService(testLogger(), producer, offloader, registry, testPayloadStoreConfig())

	registry.On("RecordAccepted", mock.Anything, "B-1").Return(errors.New("postgres down"))
	producer.On("Publish", mock.Anything, "B-1", mock.Anything).Return(nil)

	batchID, err := svc.IngestBatch(context.Background(), "B-1", json.RawMessage(`[{"amount": 1.00}]`), "")

	assert.NoError(t, err, "a registry outage must not reject the ingestion")
	assert.Equal(t, "B-1", batchID)
}

func TestIngestBatch_PublishFailure(t *testing.T) {
	producer := new(MockMessagePublisher)
	offloader := new(MockPayloadOffloader)
	registry := new(MockBatchRegistry)
	svc := NewIngestService(testLogger(), producer, offloader, registry, testPayloadStoreConfig())

	registry.On("RecordAccepted", mock.Anything, "B-1").Return(nil)
	producer.On("Publish", mock.Anything, "B-1", mock.Anything).Return(errors.New("kafka unavailable"))

	_, err := svc.IngestBatch(context.Background(), "B-1", json.RawMessage(`[{"amount": 1.00}]`), "")

	assert.Error(t, err)
}

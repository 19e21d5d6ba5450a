package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Luckka/accounting-orchestrator/internal/domain/batch"
	"github.com/Luckka/accounting-orchestrator/internal/domain/entry"
)

type MockQueryService struct {
	mock.Mock
}

func (m *MockQueryService) GetEntriesByBatchID(ctx context.Context, batchID string) ([]entry.Entry, error) {
	args := m.Called(ctx, batchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entry.Entry), args.Error(1)
}

func (m *MockQueryService) GetBatchStatus(ctx context.Context, batchID string) (*batch.Record, error) {
	args := m.Called(ctx, batchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*batch.Record), args.Error(1)
}

func TestBatchHandler_GetByID(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	gin.SetMode(gin.TestMode)

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockQueryService)
		handler := NewBatchHandler(logger, mockService)

		date := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
		entries := []entry.Entry{
			entry.New("1100-AR", decimal.RequireFromString("118.00"), date, "Invoice INV-1", "B-1"),
			entry.New("4000-Revenue", decimal.RequireFromString("100.00"), date, "Line of INV-1", "B-1"),
			entry.New("2100-Tax", decimal.RequireFromString("18.00"), date, "Tax/Adjustment for INV-1", "B-1"),
		}
		mockService.On("GetEntriesByBatchID", mock.Anything, "B-1").Return(entries, nil)

		router := gin.Default()
		router.GET("/batches/:batchId", handler.GetByID)

		req, _ := http.NewRequest(http.MethodGet, "/batches/B-1", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Data BatchEntriesResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "B-1", resp.Data.BatchID)
		require.Len(t, resp.Data.Entries, 3)
		assert.Equal(t, "1100-AR", resp.Data.Entries[0].Account)
		assert.Equal(t, "118.00", resp.Data.Entries[0].Amount)
		assert.Equal(t, "2025-03-01", resp.Data.Entries[0].Date)
		assert.Equal(t, "Invoice INV-1", resp.Data.Entries[0].Description)
	})

	t.Run("NotFound", func(t *testing.T) {
		mockService := new(MockQueryService)
		handler := NewBatchHandler(logger, mockService)

		mockService.On("GetEntriesByBatchID", mock.Anything, "B-404").Return(nil, nil)

		router := gin.Default()
		router.GET("/batches/:batchId", handler.GetByID)

		req, _ := http.NewRequest(http.MethodGet, "/batches/B-404", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("ServiceError", func(t *testing.T) {
		mockService := new(MockQueryService)
		handler := NewBatchHandler(logger, mockService)

		mockService.On("GetEntriesByBatchID", mock.Anything, "B-1").Return(nil, errors.New("mongo down"))

		router := gin.Default()
		router.GET("/batches/:batchId", handler.GetByID)

		req, _ := http.NewRequest(http.MethodGet, "/batches/B-1", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestBatchHandler_GetStatus(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	gin.SetMode(gin.TestMode)

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockQueryService)
		handler := NewBatchHandler(logger, mockService)

		processedAt := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
		mockService.On("GetBatchStatus", mock.Anything, "B-1").Return(&batch.Record{
			BatchID:     "B-1",
			Status:      batch.StatusProcessed,
			Detail:      "3 entries persisted",
			ReceivedAt:  time.Date(2025, 3, 1, 9, 59, 0, 0, time.UTC),
			ProcessedAt: &processedAt,
		}, nil)

		router := gin.Default()
		router.GET("/batches/:batchId/status", handler.GetStatus)

		req, _ := http.NewRequest(http.MethodGet, "/batches/B-1/status", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Data BatchStatusResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "B-1", resp.Data.BatchID)
		assert.Equal(t, "PROCESSED", resp.Data.Status)
		assert.Equal(t, "2025-03-01T10:00:00Z", resp.Data.ProcessedAt)
	})

	t.Run("NotFound", func(t *testing.T) {
		mockService := new(MockQueryService)
		handler := NewBatchHandler(logger, mockService)

		mockService.On("GetBatchStatus", mock.Anything, "B-404").Return(nil, nil)

		router := gin.Default()
		router.GET("/batches/:batchId/status", handler.GetStatus)

		req, _ := http.NewRequest(http.MethodGet, "/batches/B-404/status", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

package handler

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Luckka/accounting-orchestrator/internal/api_gateway/service"
	"github.com/Luckka/accounting-orchestrator/internal/domain/entry"
)

// entryDateLayout is the date projection of the query API. Entries keep
// full timestamps internally; the API exposes calendar dates only.
const entryDateLayout = "2006-01-02"

// BatchHandler handles HTTP requests for batch queries
type BatchHandler struct {
	queryService service.QueryService
	logger       *slog.Logger
}

// NewBatchHandler creates a new batch query handler
func NewBatchHandler(logger *slog.Logger, queryService service.QueryService) *BatchHandler {
	return &BatchHandler{
		queryService: queryService,
		logger:       logger,
	}
}

// GetByID retrieves the persisted entry set of a batch, returns 404 if the
// batch has no entries
func (h *BatchHandler) GetByID(c *gin.Context) {
	batchID := c.Param("batchId")
	if batchID == "" {
		RespondBadRequest(c, "Missing batch ID")
		return
	}

	entries, err := h.queryService.GetEntriesByBatchID(c.Request.Context(), batchID)
	if err != nil {
		h.logger.Error("Failed to get batch entries", "batch_id", batchID, "error", err)
		RespondInternalError(c)
		return
	}

	if len(entries) == 0 {
		RespondNotFound(c, "Batch not found")
		return
	}

	RespondOK(c, mapEntriesToResponse(batchID, entries))
}

// GetStatus retrieves the ingestion lifecycle record of a batch, returns 404
// if the batch was never accepted
func (h *BatchHandler) GetStatus(c *gin.Context) {
	batchID := c.Param("batchId")
	if batchID == "" {
		RespondBadRequest(c, "Missing batch ID")
		return
	}

	record, err := h.queryService.GetBatchStatus(c.Request.Context(), batchID)
	if err != nil {
		h.logger.Error("Failed to get batch status", "batch_id", batchID, "error", err)
		RespondInternalError(c)
		return
	}

	if record == nil {
		RespondNotFound(c, "Batch not found")
		return
	}

	response := BatchStatusResponse{
		BatchID:    record.BatchID,
		Status:     string(record.Status),
		Detail:     record.Detail,
		ReceivedAt: record.ReceivedAt.Format(time.RFC3339),
	}
	if record.ProcessedAt != nil {
		response.ProcessedAt = record.ProcessedAt.Format(time.RFC3339)
	}

	RespondOK(c, response)
}

// mapEntriesToResponse maps persisted entries to the batch query projection
func mapEntriesToResponse(batchID string, entries []entry.Entry) BatchEntriesResponse {
	response := BatchEntriesResponse{
		BatchID: batchID,
		Entries: make([]EntryResponse, 0, len(entries)),
	}
	for _, e := range entries {
		response.Entries = append(response.Entries, EntryResponse{
			Account:     e.Account,
			Amount:      e.Amount.StringFixed(2),
			Description: e.Description,
			Date:        e.Date.Format(entryDateLayout),
		})
	}
	return response
}

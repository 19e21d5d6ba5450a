package handler

import (
	"errors"
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/Luckka/accounting-orchestrator/internal/api_gateway/middleware"
	"github.com/Luckka/accounting-orchestrator/internal/api_gateway/service"
	"github.com/Luckka/accounting-orchestrator/internal/domain/shared"
)

// IngestHandler handles HTTP requests for batch ingestion
type IngestHandler struct {
	ingestService service.IngestService
	logger        *slog.Logger
}

// NewIngestHandler creates a new ingest handler
func NewIngestHandler(logger *slog.Logger, ingestService service.IngestService) *IngestHandler {
	return &IngestHandler{
		ingestService: ingestService,
		logger:        logger,
	}
}

// Create accepts one business-event payload for asynchronous processing
func (h *IngestHandler) Create(c *gin.Context) {
	var req IngestBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	batchID, err := h.ingestService.IngestBatch(
		c.Request.Context(),
		req.BatchID,
		req.Payload,
		middleware.GetCorrelationID(c),
	)
	if err != nil {
		if errors.Is(err, shared.ErrEmptyEnvelope) {
			h.logger.Error("Rejected envelope without payload", "batch_id", req.BatchID)
			RespondBadRequest(c, "Request carries no payload")
			return
		}
		h.logger.Error("Failed to ingest batch", "batch_id", req.BatchID, "error", err)
		RespondInternalError(c)
		return
	}

	RespondAccepted(c, IngestBatchResponse{
		BatchID: batchID,
		Status:  "PENDING",
	})
}

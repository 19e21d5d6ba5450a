package handler

import "encoding/json"

// IngestBatchRequest represents a request to ingest one business-event payload.
// The batch ID is optional; a blank one gets generated server-side.
type IngestBatchRequest struct {
	BatchID string          `json:"batchId"`
	Payload json.RawMessage `json:"payload"`
}

// IngestBatchResponse acknowledges an accepted ingestion
type IngestBatchResponse struct {
	BatchID string `json:"batchId"`
	Status  string `json:"status"`
}

// EntryResponse represents one ledger entry in API responses
type EntryResponse struct {
	Account     string `json:"account"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
	Date        string `json:"date"`
}

// BatchEntriesResponse represents the persisted entry set of a batch
type BatchEntriesResponse struct {
	BatchID string          `json:"batchId"`
	Entries []EntryResponse `json:"entries"`
}

// BatchStatusResponse represents the ingestion lifecycle state of a batch
type BatchStatusResponse struct {
	BatchID     string `json:"batchId"`
	Status      string `json:"status"`
	Detail      string `json:"detail,omitempty"`
	ReceivedAt  string `json:"receivedAt"`
	ProcessedAt string `json:"processedAt,omitempty"`
}

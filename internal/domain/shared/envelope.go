package shared

import (
	"encoding/json"
	"errors"
)

var ErrEmptyEnvelope = errors.New("envelope carries neither payload nor object reference")

// IngestEnvelope is the Kafka message wrapping one ingestion unit. The
// payload travels inline as raw JSON, or — when it was offloaded to the
// payload store — as an object reference in the s3Bucket/s3Key pair. The
// field names are fixed by the wire protocol.
type IngestEnvelope struct {
	BatchID       string          `json:"batchId"`
	Payload       json.RawMessage `json:"payload,omitempty"`
	S3Bucket      string          `json:"s3Bucket,omitempty"`
	S3Key         string          `json:"s3Key,omitempty"`
	CorrelationID string          `json:"correlationId,omitempty"`
}

// Deferred reports whether the payload must be fetched from the object
// store before classification.
func (e *IngestEnvelope) Deferred() bool {
	return e.S3Bucket != "" && e.S3Key != ""
}

// Validate checks that the envelope is processable at all. It does not
// inspect the payload content; malformed payloads are the classifier's
// concern and degrade to an empty entry set downstream.
func (e *IngestEnvelope) Validate() error {
	if len(e.Payload) == 0 && !e.Deferred() {
		return ErrEmptyEnvelope
	}
	return nil
}

// BatchRequest is the resolved unit of work handed to the processing
// pipeline: the raw payload string plus its batch identifier.
type BatchRequest struct {
	BatchID       string
	Payload       string
	CorrelationID string
}

package model

import "time"

// Claim is an attributed statement ingested for analysis. The text is stored
// as-is; no truth judgment is attached at this layer.
type Claim struct {
	ID           string      `json:"id,omitempty"`
	Text         string      `json:"text"`
	AttributedTo string      `json:"attributed_to"`
	SourceURL    string      `json:"source_url,omitempty"`
	ObservedAt   *time.Time  `json:"observed_at,omitempty"`
	BatchID      string      `json:"batch_id,omitempty"`
	Status       ClaimStatus `json:"status"`
	CreatedAt    time.Time   `json:"created_at"`
}

// ClaimStatus tracks processing progress. Transitions are monotonic:
// PENDING -> PROCESSING -> COMPLETED, never reversed.
type ClaimStatus string

const (
	ClaimPending    ClaimStatus = "PENDING"
	ClaimProcessing ClaimStatus = "PROCESSING"
	ClaimCompleted  ClaimStatus = "COMPLETED"
)

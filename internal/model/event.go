package model

import "time"

// ActionType classifies a verified real-world action.
type ActionType string

const (
	ActionResourceDeployment ActionType = "resource_deployment" // military, personnel movement
	ActionLegalDocument      ActionType = "legal_document"      // executive orders, memos
	ActionPersonnelChange    ActionType = "personnel_change"    // appointments, firings
	ActionDiplomaticAction   ActionType = "diplomatic_action"   // official statements, sanctions
	ActionIrreversibleEvent  ActionType = "irreversible_event"  // arrests, strikes
)

// EventStatus tracks an event through the grounding pipeline.
type EventStatus string

const (
	EventRaw      EventStatus = "RAW"      // from a proactive sweep, unverified
	EventVerified EventStatus = "VERIFIED" // confirmed against a specific claim
	EventStale    EventStatus = "STALE"    // no longer relevant or refuted
)

// SourceReference points at where an event was reported.
type SourceReference struct {
	SourceID    string  `json:"source_id"`
	URL         string  `json:"url,omitempty"`
	Quote       string  `json:"quote,omitempty"`
	Reliability float64 `json:"reliability_rating"`
}

// Event is a verified real-world action. The events table is append-only:
// corrections are inserted as retraction records, never written in place.
type Event struct {
	ID         string            `json:"id,omitempty"`
	Statement  string            `json:"statement"`
	OccurredAt *time.Time        `json:"occurred_at,omitempty"`
	Sources    []SourceReference `json:"sources,omitempty"`
	Entities   []string          `json:"entities,omitempty"`
	Tags       []string          `json:"tags,omitempty"`
	ActionType ActionType        `json:"action_type,omitempty"`
	Status     EventStatus       `json:"status"`
	CreatedAt  time.Time         `json:"created_at"`
	Retracted  bool              `json:"retracted"`
}

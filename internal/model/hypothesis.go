package model

import "time"

// HypothesisStatus is the lifecycle state of a hypothesis.
//
// PROPOSED -> STRENGTHENED/WEAKENED (repeatable) -> VERIFIED/REFUTED/EXPIRED
type HypothesisStatus string

const (
	HypothesisProposed     HypothesisStatus = "PROPOSED"
	HypothesisStrengthened HypothesisStatus = "STRENGTHENED"
	HypothesisWeakened     HypothesisStatus = "WEAKENED"
	HypothesisVerified     HypothesisStatus = "VERIFIED"
	HypothesisRefuted      HypothesisStatus = "REFUTED"
	HypothesisExpired      HypothesisStatus = "EXPIRED"
)

// Terminal reports whether the status ends the lifecycle.
func (s HypothesisStatus) Terminal() bool {
	switch s {
	case HypothesisVerified, HypothesisRefuted, HypothesisExpired:
		return true
	}
	return false
}

// Hypothesis is a system-generated inference. A hypothesis is only persisted
// when it carries a falsifiable condition and a verification deadline.
type Hypothesis struct {
	ID                   string           `json:"id,omitempty"`
	Statement            string           `json:"statement"`
	FalsifiableCondition string           `json:"falsifiable_condition"`
	VerificationDeadline *time.Time       `json:"verification_deadline,omitempty"`
	Status               HypothesisStatus `json:"status"`
	SupportCount         int              `json:"support_count"`
	RefuteCount          int              `json:"refute_count"`
	Confidence           float64          `json:"confidence"` // in [0,1]
	CreatedAt            time.Time        `json:"created_at"`
	ResolvedAt           *time.Time       `json:"resolved_at,omitempty"`
}

package model

import "time"

// Pillar is one independent strategic theme identified by the analysis.
// A pillar is never emitted without a competing explanation; the structure
// makes single-hypothesis overconfidence impossible to represent.
type Pillar struct {
	Title                string     `json:"title"`
	Summary              string     `json:"summary"`
	StrategicContext     string     `json:"strategic_context,omitempty"`
	CausalReasoning      string     `json:"causal_reasoning,omitempty"`
	Confidence           float64    `json:"confidence"`
	Evidence             []string   `json:"evidence,omitempty"`
	CompetingExplanation string     `json:"competing_explanation"`
	FalsifiableCondition string     `json:"falsifiable_condition,omitempty"`
	Deadline             *time.Time `json:"deadline,omitempty"`
	WhatIfTriggered      string     `json:"what_if_triggered,omitempty"`
}

// RedTeamNote is one challenge raised by the adversarial critic.
type RedTeamNote struct {
	Challenge string `json:"challenge"`
	Severity  string `json:"severity"` // "low", "medium", "high"
}

// Briefing is the single output of a batch run.
type Briefing struct {
	GeneratedAt  time.Time `json:"generated_at"`
	AnalysisDate string    `json:"analysis_date"` // YYYY-MM-DD

	SourceSummary string `json:"source_summary"`
	SourceQuote   string `json:"source_quote,omitempty"`

	Judgment0         string `json:"judgment_0"`
	Judgment1         string `json:"judgment_1"`
	JudgmentReasoning string `json:"judgment_reasoning,omitempty"`

	Pillars      []Pillar      `json:"pillars,omitempty"`
	RedTeamNotes []RedTeamNote `json:"red_team_notes,omitempty"`

	// Populated only on a give-up outcome.
	GiveUpMessage   string   `json:"give_up_message,omitempty"`
	PartialEvidence []string `json:"partial_evidence,omitempty"`

	SearchCount int    `json:"search_count"`
	LoopCount   int    `json:"loop_count"`
	StopReason  string `json:"stop_reason,omitempty"`
}

// GaveUp reports whether the run ended without an accepted thesis.
func (b *Briefing) GaveUp() bool {
	return len(b.Pillars) == 0
}

package agent

import (
	"reflect"
	"testing"
)

func TestChallenge_DeepReasoning(t *testing.T) {
	a := NewAdvocate()

	// Third-order reasoning over a single source: the high-severity
	// challenge dominates the adjustment.
	result := a.Challenge("Trump wants to pressure Korea", 1, 3)

	hasHigh := false
	for _, c := range result.Challenges {
		if c.Severity == SeverityHigh {
			hasHigh = true
		}
	}
	if !hasHigh {
		t.Error("Expected a high-severity challenge for depth 3")
	}
	if result.ConfidenceAdjustment != -0.2 {
		t.Errorf("Expected adjustment -0.2, got %v", result.ConfidenceAdjustment)
	}
}

func TestChallenge_SingleSourceAndMotive(t *testing.T) {
	a := NewAdvocate()

	result := a.Challenge("The administration intends to escalate", 1, 1)

	medium := 0
	for _, c := range result.Challenges {
		if c.Severity == SeverityMedium {
			medium++
		}
	}
	if medium != 2 {
		t.Fatalf("Expected 2 medium challenges (single source + motive), got %d", medium)
	}
	if result.ConfidenceAdjustment != -0.1 {
		t.Errorf("Expected adjustment -0.1, got %v", result.ConfidenceAdjustment)
	}
}

func TestChallenge_BaselinePenalty(t *testing.T) {
	a := NewAdvocate()

	// Well-sourced, shallow, no motive language: critique still costs.
	result := a.Challenge("Tariffs on imports took effect this week", 4, 1)

	if len(result.Challenges) != 0 {
		t.Errorf("Expected no challenges, got %d", len(result.Challenges))
	}
	if result.ConfidenceAdjustment != -0.05 {
		t.Errorf("Expected baseline adjustment -0.05, got %v", result.ConfidenceAdjustment)
	}
	if result.ConfidenceAdjustment >= 0 {
		t.Error("Adjustment must always be negative")
	}
}

func TestChallenge_AlwaysProposesAlternatives(t *testing.T) {
	a := NewAdvocate()

	result := a.Challenge("anything", 5, 1)
	if len(result.Alternatives) == 0 {
		t.Error("Expected alternative explanations on every critique")
	}
}

func TestChallenge_Idempotent(t *testing.T) {
	a := NewAdvocate()

	first := a.Challenge("Trump wants to pressure Korea", 1, 3)
	second := a.Challenge("Trump wants to pressure Korea", 1, 3)

	if !reflect.DeepEqual(first, second) {
		t.Error("Challenge must be a pure function of its inputs")
	}
}

func TestApplyAdjustment_Clamping(t *testing.T) {
	tests := []struct {
		confidence float64
		adjustment float64
		want       float64
	}{
		{0.8, -0.2, 0.6},
		{0.15, -0.2, 0.1},  // floor
		{0.05, -0.05, 0.1}, // floor from below
		{1.2, -0.05, 0.95}, // ceiling
	}
	for _, tt := range tests {
		got := ApplyAdjustment(tt.confidence, RedTeamResult{ConfidenceAdjustment: tt.adjustment})
		if got != tt.want {
			t.Errorf("ApplyAdjustment(%v, %v) = %v, want %v", tt.confidence, tt.adjustment, got, tt.want)
		}
	}
}

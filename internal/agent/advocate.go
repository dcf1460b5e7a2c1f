package agent

import (
	"fmt"
	"strings"
)

// ChallengeSeverity grades one red-team challenge.
type ChallengeSeverity string

const (
	SeverityLow    ChallengeSeverity = "low"
	SeverityMedium ChallengeSeverity = "medium"
	SeverityHigh   ChallengeSeverity = "high"
)

// Challenge is a single objection raised against a thesis.
type Challenge struct {
	Text     string
	Severity ChallengeSeverity
}

// RedTeamResult bundles the challenges against one thesis with the
// confidence penalty they imply. ConfidenceAdjustment is always negative:
// no thesis survives critique at its original confidence.
type RedTeamResult struct {
	Challenges           []Challenge
	Alternatives         []string
	ConfidenceAdjustment float64
}

// motiveMarkers are phrases that attribute intent rather than report action.
var motiveMarkers = []string{
	"wants",
	"intends",
	"hoping",
	"trying to",
	"believes",
}

// Advocate is the deterministic devil's advocate. It is a pure rule layer:
// the same thesis, evidence and depth always yield the same result.
type Advocate struct{}

// NewAdvocate returns the rule-based critic.
func NewAdvocate() *Advocate {
	return &Advocate{}
}

// Challenge inspects a thesis and returns the objections plus a strictly
// negative confidence adjustment.
func (a *Advocate) Challenge(thesis string, evidenceCount, reasoningDepth int) RedTeamResult {
	var challenges []Challenge

	if reasoningDepth >= 3 {
		challenges = append(challenges, Challenge{
			Text: fmt.Sprintf(
				"reasoning depth %d predicts reactions to predicted reactions; third-order claims are unverifiable",
				reasoningDepth),
			Severity: SeverityHigh,
		})
	}

	if evidenceCount <= 1 {
		challenges = append(challenges, Challenge{
			Text:     "thesis rests on a single evidence source; independent corroboration is missing",
			Severity: SeverityMedium,
		})
	}

	lower := strings.ToLower(thesis)
	for _, marker := range motiveMarkers {
		if strings.Contains(lower, marker) {
			challenges = append(challenges, Challenge{
				Text:     fmt.Sprintf("thesis attributes motive (%q) that no observable action can confirm", marker),
				Severity: SeverityMedium,
			})
			break
		}
	}

	alternatives := []string{
		"the observed events are coincidental rather than coordinated",
		"the signal is a trial balloon, not a commitment to act",
	}

	return RedTeamResult{
		Challenges:           challenges,
		Alternatives:         alternatives,
		ConfidenceAdjustment: adjustment(challenges),
	}
}

// adjustment computes the confidence penalty. There is deliberately no
// zero-penalty path: surviving critique still costs the baseline.
func adjustment(challenges []Challenge) float64 {
	medium := 0
	for _, c := range challenges {
		switch c.Severity {
		case SeverityHigh:
			return -0.2
		case SeverityMedium:
			medium++
		}
	}
	if medium >= 2 {
		return -0.1
	}
	return -0.05
}

// ApplyAdjustment folds the critique penalty into a confidence value and
// re-clamps it. Critiqued confidence never reaches 0 or 1.
func ApplyAdjustment(confidence float64, result RedTeamResult) float64 {
	c := confidence + result.ConfidenceAdjustment
	if c < 0.1 {
		return 0.1
	}
	if c > 0.95 {
		return 0.95
	}
	return c
}

package refine

import (
	"context"

	"go.uber.org/zap"

	"github.com/avoropai/argus/internal/llm"
)

// Severity grades a draft defect.
type Severity string

const (
	SeverityMinor    Severity = "minor"
	SeverityModerate Severity = "moderate"
	SeverityCritical Severity = "critical"
)

// Critique is one defect the gatekeeper found in a draft.
type Critique struct {
	PillarTitle       string   `json:"pillar_title"`
	Weakness          string   `json:"weakness"`
	DeepDiveQuestions []string `json:"deep_dive_questions"`
	Severity          Severity `json:"severity"`
}

// Review is the gatekeeper's full verdict on a draft.
type Review struct {
	OverallAssessment string     `json:"overall_assessment"`
	Critiques         []Critique `json:"critiques"`
}

// Gatekeeper critiques a rendered draft before release: unsupported
// claims, sections that just restate the news, omitted context, non
// sequitur conclusions.
type Gatekeeper struct {
	reasoner llm.Reasoner
	logger   *zap.Logger
}

// NewGatekeeper builds the reviewer.
func NewGatekeeper(reasoner llm.Reasoner, logger *zap.Logger) *Gatekeeper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gatekeeper{reasoner: reasoner, logger: logger}
}

// Review critiques the draft. Refinement is opportunistic: any model
// failure or unparseable response yields an empty review, never an error,
// so the caller falls through to releasing the draft as-is.
func (g *Gatekeeper) Review(ctx context.Context, draft string) *Review {
	if g.reasoner == nil {
		return &Review{}
	}

	raw, err := g.reasoner.Complete(ctx, llm.CompleteRequest{
		System: llm.SystemAnalyst,
		Prompt: llm.BuildGatekeeperPrompt(draft),
	})
	if err != nil {
		g.logger.Warn("gatekeeper review failed, releasing draft unrefined", zap.Error(err))
		return &Review{}
	}

	var review Review
	if err := llm.Decode(raw, &review); err != nil {
		g.logger.Warn("gatekeeper response unparseable, releasing draft unrefined", zap.Error(err))
		return &Review{}
	}

	// Unknown severities degrade to minor rather than being dropped.
	for i := range review.Critiques {
		switch review.Critiques[i].Severity {
		case SeverityMinor, SeverityModerate, SeverityCritical:
		default:
			review.Critiques[i].Severity = SeverityMinor
		}
	}

	return &review
}

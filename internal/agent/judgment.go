package agent

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/avoropai/argus/internal/llm"
	"github.com/avoropai/argus/internal/model"
	"github.com/avoropai/argus/internal/search"
	"github.com/avoropai/argus/internal/store"
)

// ActionClass is the outcome of the J0 action-detection gate.
type ActionClass string

const (
	ActionPresent ActionClass = "ACTION_PRESENT"
	LanguageOnly  ActionClass = "LANGUAGE_ONLY"
)

// Verdict is the outcome of the J1 thesis-readiness gate.
type Verdict string

const (
	VerdictYes       Verdict = "YES"
	VerdictNo        Verdict = "NO"
	VerdictUncertain Verdict = "UNCERTAIN"
)

// Judgment0 records whether the accumulated evidence contains a verified
// real-world action, as opposed to rhetoric about one.
type Judgment0 struct {
	Class   ActionClass
	Actions []string // matched action phrases and recorded event statements
}

// Judgment1 is the thesis-readiness decision.
type Judgment1 struct {
	Verdict    Verdict
	Confidence float64
	Reasoning  string
}

// Judgment3 is the falsifiability synthesis for one pillar.
type Judgment3 struct {
	FalsifiableCondition string `json:"falsifiable_condition"`
	DeadlineDays         int    `json:"deadline_days"`
	WhatIfTriggered      string `json:"what_if_triggered"`
}

// actionLexicon holds the verb and noun phrases that mark a concrete action
// rather than talk about one. Matching is case-insensitive substring.
var actionLexicon = []string{
	"signed",
	"deployed",
	"arrested",
	"fired",
	"appointed",
	"executive order",
	"military",
	"sanctions",
	"troops",
	"aircraft carrier",
	"strike",
	"raid",
}

// Pipeline runs the staged judgment gates. J0 and J1 are deterministic;
// J2 and J3 call the reasoner and defensively parse its output.
type Pipeline struct {
	reasoner llm.Reasoner
	events   store.EventStore
	logger   *zap.Logger

	confidenceThreshold float64
	actionWindow        time.Duration
}

// NewPipeline builds a judgment pipeline. The events store may be nil, in
// which case J0 relies on lexicon scanning alone.
func NewPipeline(reasoner llm.Reasoner, events store.EventStore, cfg model.AgentConfig, logger *zap.Logger) *Pipeline {
	threshold := cfg.ConfidenceThreshold
	if threshold <= 0 {
		threshold = 0.6
	}
	windowHours := cfg.ActionWindowHours
	if windowHours <= 0 {
		windowHours = 24
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		reasoner:            reasoner,
		events:              events,
		logger:              logger,
		confidenceThreshold: threshold,
		actionWindow:        time.Duration(windowHours) * time.Hour,
	}
}

// Judge0 classifies the accumulated evidence as ACTION_PRESENT or
// LANGUAGE_ONLY. Two sources count: actions already recorded in the event
// store within the trailing window, and action phrases in fresh evidence.
func (p *Pipeline) Judge0(ctx context.Context, evidence []search.Result) Judgment0 {
	var actions []string

	if p.events != nil {
		now := time.Now().UTC()
		recorded, err := p.events.GetActionsInWindow(ctx, now.Add(-p.actionWindow), now)
		if err != nil {
			p.logger.Warn("event store window query failed", zap.Error(err))
		} else {
			for _, ev := range recorded {
				actions = append(actions, ev.Statement)
			}
		}
	}

	for _, item := range evidence {
		text := strings.ToLower(item.Title + " " + item.Content)
		for _, verb := range actionLexicon {
			if strings.Contains(text, verb) {
				actions = append(actions, matchContext(item, verb))
				break
			}
		}
	}

	if len(actions) == 0 {
		return Judgment0{Class: LanguageOnly}
	}
	return Judgment0{Class: ActionPresent, Actions: actions}
}

// matchContext describes one lexicon hit for the judgment record.
func matchContext(item search.Result, verb string) string {
	title := strings.TrimSpace(item.Title)
	if title == "" {
		title = item.Content
		if len(title) > 80 {
			title = title[:80]
		}
	}
	return verb + ": " + title
}

// EvidenceConfidence maps the accumulated search-result count to a
// confidence score. Grows with volume, capped well short of certainty.
func EvidenceConfidence(resultCount int) float64 {
	c := 0.4 + 0.05*float64(resultCount)
	if c > 0.9 {
		return 0.9
	}
	return c
}

// Judge1 gates thesis generation on J0's outcome and the evidence
// confidence. A LANGUAGE_ONLY classification can never produce YES: rhetoric
// alone caps the verdict at UNCERTAIN.
func (p *Pipeline) Judge1(j0 Judgment0, confidence float64) Judgment1 {
	if j0.Class == LanguageOnly {
		if confidence > 0.5 {
			return Judgment1{
				Verdict:    VerdictUncertain,
				Confidence: confidence,
				Reasoning:  "no verified real-world action; language alone cannot confirm a thesis",
			}
		}
		return Judgment1{
			Verdict:    VerdictNo,
			Confidence: confidence,
			Reasoning:  "no verified real-world action and insufficient evidence",
		}
	}

	switch {
	case confidence >= p.confidenceThreshold:
		return Judgment1{
			Verdict:    VerdictYes,
			Confidence: confidence,
			Reasoning:  "verified action present with sufficient evidence",
		}
	case confidence >= 0.4:
		return Judgment1{
			Verdict:    VerdictUncertain,
			Confidence: confidence,
			Reasoning:  "verified action present but evidence is thin",
		}
	default:
		return Judgment1{
			Verdict:    VerdictNo,
			Confidence: confidence,
			Reasoning:  "evidence too sparse to support a thesis",
		}
	}
}

// pillarPayload mirrors the JSON shape the model is asked to emit. The
// confidence field is untyped because models answer with numbers, strings
// and percentages interchangeably.
type pillarPayload struct {
	Title                string      `json:"title"`
	Summary              string      `json:"summary"`
	StrategicContext     string      `json:"strategic_context"`
	CausalReasoning      string      `json:"causal_reasoning"`
	Confidence           interface{} `json:"confidence"`
	Evidence             []string    `json:"evidence"`
	CompetingExplanation string      `json:"competing_explanation"`
	FalsifiableCondition string      `json:"falsifiable_condition"`
}

// Judge2 synthesizes independent strategic pillars from the evidence. Only
// invoked when J1 = YES. Provider faults and malformed output degrade to an
// empty pillar list; the run then ends in a give-up briefing rather than an
// error.
func (p *Pipeline) Judge2(ctx context.Context, batchText string, evidence []search.Result) []model.Pillar {
	if p.reasoner == nil {
		return nil
	}

	raw, err := p.reasoner.Complete(ctx, llm.CompleteRequest{
		System: llm.SystemAnalyst,
		Prompt: llm.BuildPillarsPrompt(batchText, toEvidenceItems(evidence)),
	})
	if err != nil {
		p.logger.Warn("pillar synthesis failed", zap.Error(err))
		return nil
	}

	var payloads []pillarPayload
	if err := llm.Decode(raw, &payloads); err != nil {
		p.logger.Warn("pillar response unparseable, proceeding without pillars", zap.Error(err))
		return nil
	}

	var pillars []model.Pillar
	for _, pl := range payloads {
		if pl.Title == "" {
			continue
		}
		// A pillar without a competing explanation is structurally invalid.
		if strings.TrimSpace(pl.CompetingExplanation) == "" {
			p.logger.Warn("dropping pillar without competing explanation", zap.String("title", pl.Title))
			continue
		}
		pillars = append(pillars, model.Pillar{
			Title:                pl.Title,
			Summary:              pl.Summary,
			StrategicContext:     pl.StrategicContext,
			CausalReasoning:      pl.CausalReasoning,
			Confidence:           llm.ParseConfidence(pl.Confidence),
			Evidence:             pl.Evidence,
			CompetingExplanation: pl.CompetingExplanation,
			FalsifiableCondition: pl.FalsifiableCondition,
		})
	}
	return pillars
}

// Judge3 produces the falsifiable condition for one pillar. A failed call
// returns a zero-value result; the orchestrator then skips persistence for
// that pillar instead of failing the run.
func (p *Pipeline) Judge3(ctx context.Context, pillar model.Pillar) Judgment3 {
	if p.reasoner == nil {
		return Judgment3{}
	}

	raw, err := p.reasoner.Complete(ctx, llm.CompleteRequest{
		System: llm.SystemAnalyst,
		Prompt: llm.BuildFalsifiablePrompt(pillar.Title, pillar.Summary),
	})
	if err != nil {
		p.logger.Warn("falsifiability synthesis failed", zap.String("pillar", pillar.Title), zap.Error(err))
		return Judgment3{}
	}

	var j3 Judgment3
	if err := llm.Decode(raw, &j3); err != nil {
		p.logger.Warn("falsifiability response unparseable", zap.String("pillar", pillar.Title), zap.Error(err))
		return Judgment3{}
	}

	// Verification windows outside 1-14 days are clamped, not rejected.
	if j3.DeadlineDays < 1 || j3.DeadlineDays > 14 {
		j3.DeadlineDays = 7
	}
	return j3
}

func toEvidenceItems(results []search.Result) []llm.EvidenceItem {
	items := make([]llm.EvidenceItem, 0, len(results))
	for _, r := range results {
		items = append(items, llm.EvidenceItem{Title: r.Title, URL: r.URL, Content: r.Content})
	}
	return items
}

package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/avoropai/argus/internal/llm"
	"github.com/avoropai/argus/internal/model"
	"github.com/avoropai/argus/internal/refine"
	"github.com/avoropai/argus/internal/report"
	"github.com/avoropai/argus/internal/search"
	"github.com/avoropai/argus/internal/store"
)

// Orchestrator composes the research loop, judgment pipeline, critic and
// refinement cycle into one pass over a claim batch. All collaborators are
// injected; the orchestrator owns no global state and its lifetime belongs
// to the caller. A single instance must own the store: concurrent
// orchestrators against the same database are not supported.
type Orchestrator struct {
	reasoner llm.Reasoner
	provider search.Provider
	store    store.Store
	cfg      *model.Config
	logger   *zap.Logger

	pipeline *Pipeline
	loop     *ResearchLoop
	advocate *Advocate
	renderer *report.Renderer
	refiner  *refine.Loop
}

// NewOrchestrator wires the full analysis pass. The store may be nil for
// ephemeral runs; persistence steps are then skipped.
func NewOrchestrator(reasoner llm.Reasoner, provider search.Provider, st store.Store, cfg *model.Config, logger *zap.Logger) *Orchestrator {
	if cfg == nil {
		cfg = model.DefaultConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	var events store.EventStore
	if st != nil {
		events = st
	}

	pipeline := NewPipeline(reasoner, events, cfg.Agent, logger)
	stops := NewStopEngine(cfg.Agent.MaxLoops, cfg.Agent.MaxReasoningDepth, cfg.Agent.SufficientResults, cfg.Agent.RepeatRateLimit)
	loop := NewResearchLoop(provider, pipeline, stops, cfg.Agent, cfg.Search, logger)

	gatekeeper := refine.NewGatekeeper(reasoner, logger)
	editor := refine.NewEditor(reasoner, logger)
	refiner := refine.NewLoop(gatekeeper, editor, provider, cfg.Search.MaxResults, cfg.Search.MaxConcurrent, logger)

	return &Orchestrator{
		reasoner: reasoner,
		provider: provider,
		store:    st,
		cfg:      cfg,
		logger:   logger,
		pipeline: pipeline,
		loop:     loop,
		advocate: NewAdvocate(),
		renderer: report.NewRenderer(cfg.Output.IncludeFooter),
		refiner:  refiner,
	}
}

// RunBatch analyzes one batch of claims and returns the briefing. Returns
// (nil, nil) for an empty batch without touching any provider. Provider
// faults degrade inside the run; the only errors that propagate are store
// failures on the claim status bookkeeping.
func (o *Orchestrator) RunBatch(ctx context.Context, claims []model.Claim) (*model.Briefing, error) {
	if len(claims) == 0 {
		return nil, nil
	}

	if err := o.markClaims(ctx, claims, model.ClaimProcessing); err != nil {
		return nil, err
	}

	batchText := joinClaims(claims)
	o.logger.Info("starting batch run",
		zap.Int("claims", len(claims)),
		zap.String("attributed_to", claims[0].AttributedTo))

	result := o.loop.Run(ctx, batchText)

	now := time.Now().UTC()
	briefing := &model.Briefing{
		GeneratedAt:       now,
		AnalysisDate:      now.Format("2006-01-02"),
		SourceSummary:     summarizeBatch(claims),
		SourceQuote:       claims[0].Text,
		Judgment0:         string(result.J0.Class),
		Judgment1:         string(result.J1.Verdict),
		JudgmentReasoning: result.J1.Reasoning,
		SearchCount:       result.State.SearchCount,
		LoopCount:         result.State.LoopCount,
		StopReason:        string(result.State.StopReason),
	}

	o.persistActions(ctx, result.J0)

	if result.J1.Verdict == VerdictYes {
		o.buildThesis(ctx, batchText, result, briefing)
	}

	if briefing.GaveUp() {
		briefing.GiveUpMessage = giveUpMessage(result)
		briefing.PartialEvidence = partialEvidence(result.Evidence, 5)
	}

	if err := o.markClaims(ctx, claims, model.ClaimCompleted); err != nil {
		return nil, err
	}

	return briefing, nil
}

// Render produces the released document for a briefing: markdown draft,
// then one critique/patch cycle over the rendered text.
func (o *Orchestrator) Render(ctx context.Context, briefing *model.Briefing) string {
	draft := o.renderer.RenderMarkdown(briefing)
	if briefing.GaveUp() {
		// Nothing to refine in a give-up briefing.
		return draft
	}
	return o.refiner.Refine(ctx, draft)
}

// buildThesis runs J2/J3 and the adversarial critic, then persists the
// surviving hypotheses.
func (o *Orchestrator) buildThesis(ctx context.Context, batchText string, result LoopResult, briefing *model.Briefing) {
	pillars := o.pipeline.Judge2(ctx, batchText, result.Evidence)
	if len(pillars) == 0 {
		o.logger.Warn("thesis accepted by J1 but no pillars survived synthesis")
		return
	}

	for i := range pillars {
		pillar := &pillars[i]
		depth := estimateDepth(pillar.CausalReasoning)

		red := o.advocate.Challenge(pillar.Summary, len(pillar.Evidence), depth)
		pillar.Confidence = ApplyAdjustment(pillar.Confidence, red)
		for _, ch := range red.Challenges {
			briefing.RedTeamNotes = append(briefing.RedTeamNotes, model.RedTeamNote{
				Challenge: ch.Text,
				Severity:  string(ch.Severity),
			})
		}

		j3 := o.pipeline.Judge3(ctx, *pillar)
		if j3.FalsifiableCondition != "" {
			pillar.FalsifiableCondition = j3.FalsifiableCondition
			pillar.WhatIfTriggered = j3.WhatIfTriggered
			deadline := time.Now().UTC().AddDate(0, 0, j3.DeadlineDays)
			pillar.Deadline = &deadline
		}

		o.persistHypothesis(ctx, *pillar)
	}

	briefing.Pillars = pillars
}

// persistActions records the verified actions J0 observed and consolidates
// them against pending hypotheses.
func (o *Orchestrator) persistActions(ctx context.Context, j0 Judgment0) {
	if o.store == nil || j0.Class != ActionPresent {
		return
	}

	now := time.Now().UTC()
	for _, action := range j0.Actions {
		event := model.Event{
			Statement:  action,
			OccurredAt: &now,
			ActionType: classifyAction(action),
			Status:     model.EventVerified,
		}
		if _, err := o.store.InsertEvent(ctx, event); err != nil {
			o.logger.Warn("event persistence failed", zap.Error(err))
			continue
		}
		o.consolidate(ctx, action)
	}
}

// consolidate strengthens pending hypotheses that a new verified action
// supports. Support is judged by word overlap between the action statement
// and the hypothesis statement.
func (o *Orchestrator) consolidate(ctx context.Context, action string) {
	pending, err := o.store.GetPendingHypotheses(ctx)
	if err != nil {
		o.logger.Warn("pending hypothesis fetch failed", zap.Error(err))
		return
	}

	for _, h := range pending {
		if wordOverlap(action, h.Statement) > 3 {
			if err := o.store.UpdateHypothesisStatus(ctx, h.ID, model.HypothesisStrengthened, 1, 0); err != nil {
				o.logger.Warn("hypothesis consolidation failed",
					zap.String("hypothesis", h.ID), zap.Error(err))
			} else {
				o.logger.Info("hypothesis strengthened by new action",
					zap.String("hypothesis", h.ID),
					zap.String("action", action))
			}
		}
	}
}

// persistHypothesis stores one pillar as a trackable hypothesis. Pillars
// without a falsifiable condition are not persisted.
func (o *Orchestrator) persistHypothesis(ctx context.Context, pillar model.Pillar) {
	if o.store == nil || pillar.FalsifiableCondition == "" {
		return
	}

	h := model.Hypothesis{
		Statement:            pillar.Title + ": " + pillar.Summary,
		FalsifiableCondition: pillar.FalsifiableCondition,
		VerificationDeadline: pillar.Deadline,
		Status:               model.HypothesisProposed,
		Confidence:           pillar.Confidence,
	}
	if _, err := o.store.InsertHypothesis(ctx, h); err != nil {
		o.logger.Warn("hypothesis persistence failed",
			zap.String("pillar", pillar.Title), zap.Error(err))
	}
}

func (o *Orchestrator) markClaims(ctx context.Context, claims []model.Claim, status model.ClaimStatus) error {
	if o.store == nil {
		return nil
	}
	for _, c := range claims {
		if c.ID == "" {
			continue
		}
		if err := o.store.UpdateClaimStatus(ctx, c.ID, status); err != nil {
			return fmt.Errorf("update claim %s to %s: %w", c.ID, status, err)
		}
	}
	return nil
}

// estimateDepth counts the chained-consequence markers in a causal
// explanation. Depth 1 is direct cause and effect; each marker predicting a
// reaction to a predicted reaction adds an order.
func estimateDepth(causalReasoning string) int {
	lower := strings.ToLower(causalReasoning)
	depth := 1
	for _, marker := range []string{"will react", "will respond", "in turn", "which will lead", "anticipat", "expects that"} {
		depth += strings.Count(lower, marker)
	}
	return depth
}

// classifyAction maps a matched action phrase onto the event taxonomy.
func classifyAction(action string) model.ActionType {
	lower := strings.ToLower(action)
	switch {
	case strings.Contains(lower, "executive order"), strings.Contains(lower, "signed"):
		return model.ActionLegalDocument
	case strings.Contains(lower, "arrested"), strings.Contains(lower, "strike"), strings.Contains(lower, "raid"):
		return model.ActionIrreversibleEvent
	case strings.Contains(lower, "fired"), strings.Contains(lower, "appointed"):
		return model.ActionPersonnelChange
	case strings.Contains(lower, "sanctions"):
		return model.ActionDiplomaticAction
	default:
		return model.ActionResourceDeployment
	}
}

func wordOverlap(a, b string) int {
	wordsA := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(a)) {
		if len(w) > 3 {
			wordsA[w] = true
		}
	}
	count := 0
	for _, w := range strings.Fields(strings.ToLower(b)) {
		if len(w) > 3 && wordsA[w] {
			count++
			wordsA[w] = false
		}
	}
	return count
}

func joinClaims(claims []model.Claim) string {
	var b strings.Builder
	for i, c := range claims {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(c.Text)
	}
	return b.String()
}

func summarizeBatch(claims []model.Claim) string {
	if len(claims) == 1 {
		return fmt.Sprintf("1 statement attributed to %s", claims[0].AttributedTo)
	}
	return fmt.Sprintf("%d statements attributed to %s", len(claims), claims[0].AttributedTo)
}

func giveUpMessage(result LoopResult) string {
	switch result.State.StopReason {
	case StopLoopExhausted:
		return "Search budget exhausted before the evidence cleared the thesis gate."
	case StopInfoRepeating:
		return "Searches kept returning the same material; more searching would not add signal."
	case StopSearchSufficient:
		return "Enough evidence was gathered, but it does not support a confirmed thesis."
	default:
		if result.J0.Class == LanguageOnly {
			return "Only rhetoric was found; no verified real-world action supports a thesis."
		}
		return "The evidence gathered did not support a confirmed thesis."
	}
}

func partialEvidence(evidence []search.Result, limit int) []string {
	var out []string
	for _, r := range evidence {
		if len(out) >= limit {
			break
		}
		line := r.Title
		if r.URL != "" {
			line += " (" + r.URL + ")"
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		out = append(out, line)
	}
	return out
}

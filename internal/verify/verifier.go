package verify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/avoropai/argus/internal/model"
	"github.com/avoropai/argus/internal/search"
	"github.com/avoropai/argus/internal/store"
)

// SweepResult summarizes one verification pass over pending hypotheses.
type SweepResult struct {
	Checked      int
	Strengthened int
	Weakened     int
	Expired      int
}

// Verifier checks pending hypotheses against fresh evidence. Each pending
// hypothesis is either expired (deadline passed), weakened (its falsifiable
// condition appears to have fired) or strengthened (the disproving event
// has not materialized).
type Verifier struct {
	store      store.HypothesisStore
	provider   search.Provider
	logger     *zap.Logger
	maxResults int
}

// NewVerifier builds a sweep runner.
func NewVerifier(st store.HypothesisStore, provider search.Provider, maxResults int, logger *zap.Logger) *Verifier {
	if maxResults <= 0 {
		maxResults = 5
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Verifier{store: st, provider: provider, logger: logger, maxResults: maxResults}
}

// Sweep processes every pending hypothesis once. Individual failures are
// logged and skipped; the sweep itself only fails when the store cannot be
// read at all.
func (v *Verifier) Sweep(ctx context.Context) (*SweepResult, error) {
	pending, err := v.store.GetPendingHypotheses(ctx)
	if err != nil {
		return nil, fmt.Errorf("load pending hypotheses: %w", err)
	}

	result := &SweepResult{}
	now := time.Now().UTC()

	for _, h := range pending {
		result.Checked++

		if h.VerificationDeadline != nil && now.After(*h.VerificationDeadline) {
			if err := v.store.UpdateHypothesisStatus(ctx, h.ID, model.HypothesisExpired, 0, 0); err != nil {
				v.logger.Warn("expire failed", zap.String("hypothesis", h.ID), zap.Error(err))
				continue
			}
			result.Expired++
			v.logger.Info("hypothesis expired",
				zap.String("hypothesis", h.ID),
				zap.Time("deadline", *h.VerificationDeadline))
			continue
		}

		triggered, err := v.conditionTriggered(ctx, h)
		if err != nil {
			v.logger.Warn("condition check failed", zap.String("hypothesis", h.ID), zap.Error(err))
			continue
		}

		if triggered {
			if err := v.store.UpdateHypothesisStatus(ctx, h.ID, model.HypothesisWeakened, 0, 1); err != nil {
				v.logger.Warn("weaken failed", zap.String("hypothesis", h.ID), zap.Error(err))
				continue
			}
			result.Weakened++
		} else {
			if err := v.store.UpdateHypothesisStatus(ctx, h.ID, model.HypothesisStrengthened, 1, 0); err != nil {
				v.logger.Warn("strengthen failed", zap.String("hypothesis", h.ID), zap.Error(err))
				continue
			}
			result.Strengthened++
		}
	}

	return result, nil
}

// conditionTriggered searches for the falsifiable condition and checks
// whether the results report it happening. Matching is keyword overlap
// between the condition and each result, the same conservative heuristic
// used for event consolidation.
func (v *Verifier) conditionTriggered(ctx context.Context, h model.Hypothesis) (bool, error) {
	resp, err := v.provider.Search(ctx, h.FalsifiableCondition, v.maxResults, false)
	if err != nil {
		return false, err
	}

	keywords := conditionKeywords(h.FalsifiableCondition)
	if len(keywords) == 0 {
		return false, nil
	}

	for _, r := range resp.Results {
		text := strings.ToLower(r.Title + " " + r.Content)
		matched := 0
		for _, kw := range keywords {
			if strings.Contains(text, kw) {
				matched++
			}
		}
		// More than half the condition keywords in one result is a hit.
		if matched*2 > len(keywords) {
			v.logger.Info("falsifiable condition matched",
				zap.String("hypothesis", h.ID),
				zap.String("url", r.URL))
			return true, nil
		}
	}
	return false, nil
}

func conditionKeywords(condition string) []string {
	var keywords []string
	for _, w := range strings.Fields(strings.ToLower(condition)) {
		w = strings.Trim(w, ".,;:!?\"'()")
		if len(w) > 3 {
			keywords = append(keywords, w)
		}
	}
	return keywords
}

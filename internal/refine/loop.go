package refine

import (
	"context"

	"go.uber.org/zap"

	"github.com/avoropai/argus/internal/llm"
	"github.com/avoropai/argus/internal/search"
)

// maxDeepDiveQueries caps the pooled deep-dive budget per draft.
const maxDeepDiveQueries = 6

// Loop runs the release-gate cycle: critique the rendered draft, execute
// the pooled deep-dive searches, rewrite. Exactly one pass per draft.
type Loop struct {
	gatekeeper *Gatekeeper
	editor     *Editor
	provider   search.Provider
	logger     *zap.Logger

	maxResults    int
	maxConcurrent int
}

// NewLoop assembles the refinement cycle.
func NewLoop(gatekeeper *Gatekeeper, editor *Editor, provider search.Provider, maxResults, maxConcurrent int, logger *zap.Logger) *Loop {
	if maxResults <= 0 {
		maxResults = 3
	}
	if maxConcurrent <= 0 {
		maxConcurrent = 10
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loop{
		gatekeeper:    gatekeeper,
		editor:        editor,
		provider:      provider,
		logger:        logger,
		maxResults:    maxResults,
		maxConcurrent: maxConcurrent,
	}
}

// Refine applies one critique/patch cycle to the draft. Refinement is
// best-effort and non-fatal: every exit path returns a usable document,
// falling back to the unrefined draft on any failure.
func (l *Loop) Refine(ctx context.Context, draft string) string {
	review := l.gatekeeper.Review(ctx, draft)
	if len(review.Critiques) == 0 {
		l.logger.Debug("gatekeeper found no defects, releasing draft")
		return draft
	}

	l.logger.Info("gatekeeper flagged draft",
		zap.Int("critiques", len(review.Critiques)),
		zap.String("assessment", review.OverallAssessment))

	queries := poolQueries(review.Critiques, maxDeepDiveQueries)
	findings := l.deepDive(ctx, queries)

	revised, err := l.editor.Rewrite(ctx, draft, review.Critiques, findings)
	if err != nil {
		l.logger.Warn("refinement failed, releasing unrefined draft", zap.Error(err))
		return draft
	}
	return revised
}

// poolQueries collects deep-dive queries across all critiques, deduplicated
// and capped.
func poolQueries(critiques []Critique, limit int) []string {
	seen := make(map[string]bool)
	var queries []string
	for _, c := range critiques {
		for _, q := range c.DeepDiveQuestions {
			if q == "" || seen[q] {
				continue
			}
			seen[q] = true
			queries = append(queries, q)
			if len(queries) >= limit {
				return queries
			}
		}
	}
	return queries
}

// deepDive executes the pooled queries and flattens the results.
func (l *Loop) deepDive(ctx context.Context, queries []string) []llm.EvidenceItem {
	if l.provider == nil || len(queries) == 0 {
		return nil
	}

	responses := search.Parallel(ctx, l.provider, queries, l.maxResults, l.maxConcurrent, l.logger)

	var findings []llm.EvidenceItem
	for _, resp := range responses {
		for _, r := range resp.Results {
			findings = append(findings, llm.EvidenceItem{Title: r.Title, URL: r.URL, Content: r.Content})
		}
	}
	return findings
}

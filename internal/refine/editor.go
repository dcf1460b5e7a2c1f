package refine

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/avoropai/argus/internal/llm"
)

// Editor rewrites a draft to address gatekeeper critiques, integrating the
// deep-dive evidence into the flagged sections only.
type Editor struct {
	reasoner llm.Reasoner
	logger   *zap.Logger
}

// NewEditor builds the rewriter.
func NewEditor(reasoner llm.Reasoner, logger *zap.Logger) *Editor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Editor{reasoner: reasoner, logger: logger}
}

// Rewrite returns the revised draft. On any failure the original draft is
// returned with an error; the caller decides whether to surface it, but
// always has a usable document.
func (e *Editor) Rewrite(ctx context.Context, draft string, critiques []Critique, findings []llm.EvidenceItem) (string, error) {
	if e.reasoner == nil {
		return draft, fmt.Errorf("no reasoner configured")
	}

	lines := make([]string, 0, len(critiques))
	for _, c := range critiques {
		lines = append(lines, fmt.Sprintf("[%s] %s: %s", c.Severity, c.PillarTitle, c.Weakness))
	}

	revised, err := e.reasoner.Complete(ctx, llm.CompleteRequest{
		System: llm.SystemAnalyst,
		Prompt: llm.BuildEditorPrompt(draft, lines, findings),
	})
	if err != nil {
		return draft, fmt.Errorf("editor rewrite: %w", err)
	}

	revised = strings.TrimSpace(llm.StripFences(revised))
	if revised == "" {
		return draft, fmt.Errorf("editor returned empty revision")
	}

	return revised, nil
}

package report

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/avoropai/argus/internal/model"
)

// Renderer turns a briefing into its output formats.
type Renderer struct {
	includeFooter bool
}

// NewRenderer creates a renderer. The footer can be disabled for briefings
// embedded in other documents.
func NewRenderer(includeFooter bool) *Renderer {
	return &Renderer{includeFooter: includeFooter}
}

// RenderMarkdown produces the briefing document. The same renderer output
// is used as the draft fed to the refinement loop.
func (r *Renderer) RenderMarkdown(b *model.Briefing) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# Strategic Briefing — %s\n\n", b.AnalysisDate))

	if b.SourceSummary != "" {
		sb.WriteString("## Source\n\n")
		sb.WriteString(b.SourceSummary + "\n\n")
		if b.SourceQuote != "" {
			sb.WriteString(fmt.Sprintf("> %s\n\n", b.SourceQuote))
		}
	}

	sb.WriteString("## Judgments\n\n")
	sb.WriteString("| Gate | Outcome |\n")
	sb.WriteString("|------|---------|\n")
	sb.WriteString(fmt.Sprintf("| Action detection | %s |\n", b.Judgment0))
	sb.WriteString(fmt.Sprintf("| Thesis readiness | %s |\n", b.Judgment1))
	sb.WriteString("\n")
	if b.JudgmentReasoning != "" {
		sb.WriteString(b.JudgmentReasoning + "\n\n")
	}

	if b.GaveUp() {
		sb.WriteString("## No Thesis\n\n")
		if b.GiveUpMessage != "" {
			sb.WriteString(b.GiveUpMessage + "\n\n")
		} else {
			sb.WriteString("The evidence gathered did not clear the thesis-readiness gate.\n\n")
		}
		if len(b.PartialEvidence) > 0 {
			sb.WriteString("Partial evidence collected:\n\n")
			for _, e := range b.PartialEvidence {
				sb.WriteString(fmt.Sprintf("- %s\n", e))
			}
			sb.WriteString("\n")
		}
	}

	for i, pillar := range b.Pillars {
		sb.WriteString(fmt.Sprintf("## Pillar %d: %s\n\n", i+1, pillar.Title))
		sb.WriteString(pillar.Summary + "\n\n")

		if pillar.StrategicContext != "" {
			sb.WriteString("**Strategic context.** " + pillar.StrategicContext + "\n\n")
		}
		if pillar.CausalReasoning != "" {
			sb.WriteString("**Causal chain.** " + pillar.CausalReasoning + "\n\n")
		}

		sb.WriteString(fmt.Sprintf("**Confidence:** %.2f\n\n", pillar.Confidence))

		if len(pillar.Evidence) > 0 {
			sb.WriteString("**Evidence:**\n\n")
			for _, e := range pillar.Evidence {
				sb.WriteString(fmt.Sprintf("- %s\n", e))
			}
			sb.WriteString("\n")
		}

		sb.WriteString("**Competing explanation.** " + pillar.CompetingExplanation + "\n\n")

		if pillar.FalsifiableCondition != "" {
			sb.WriteString("**Falsifiable condition.** " + pillar.FalsifiableCondition)
			if pillar.Deadline != nil {
				sb.WriteString(fmt.Sprintf(" (check by %s)", pillar.Deadline.Format("2006-01-02")))
			}
			sb.WriteString("\n\n")
			if pillar.WhatIfTriggered != "" {
				sb.WriteString("If triggered: " + pillar.WhatIfTriggered + "\n\n")
			}
		}
	}

	if len(b.RedTeamNotes) > 0 {
		sb.WriteString("## Red Team Notes\n\n")
		for _, note := range b.RedTeamNotes {
			sb.WriteString(fmt.Sprintf("- [%s] %s\n", note.Severity, note.Challenge))
		}
		sb.WriteString("\n")
	}

	if r.includeFooter {
		sb.WriteString("---\n\n")
		sb.WriteString(fmt.Sprintf("_Generated %s · %d searches · %d loops",
			b.GeneratedAt.UTC().Format("2006-01-02 15:04 UTC"), b.SearchCount, b.LoopCount))
		if b.StopReason != "" {
			sb.WriteString(fmt.Sprintf(" · stop: %s", b.StopReason))
		}
		sb.WriteString("_\n")
	}

	return sb.String()
}

// WriteMarkdown renders the briefing and writes it to path.
func (r *Renderer) WriteMarkdown(b *model.Briefing, path string) error {
	content := r.RenderMarkdown(b)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write markdown: %w", err)
	}
	return nil
}

// WriteJSON writes the briefing as indented JSON.
func (r *Renderer) WriteJSON(b *model.Briefing, path string) error {
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal briefing: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	return nil
}

// RenderSummary prints a short run summary to stdout.
func (r *Renderer) RenderSummary(b *model.Briefing) {
	fmt.Printf("Briefing %s: J0=%s J1=%s pillars=%d searches=%d loops=%d\n",
		b.AnalysisDate, b.Judgment0, b.Judgment1, len(b.Pillars), b.SearchCount, b.LoopCount)
	if b.GaveUp() && b.StopReason != "" {
		fmt.Printf("  no thesis (stop: %s)\n", b.StopReason)
	}
}

package llm

import (
	"fmt"
	"strings"
)

// EvidenceItem is one piece of gathered evidence presented to the model.
type EvidenceItem struct {
	Title   string
	URL     string
	Content string
}

// SystemAnalyst is the role instruction shared by the analysis prompts.
const SystemAnalyst = "You are a strategic intelligence analyst. You reason strictly from the evidence provided, " +
	"separate observation from interpretation, and always state what would prove you wrong."

// BuildPillarsPrompt constructs the deep-analysis prompt that asks the model
// to decompose the evidence into independent strategic pillars.
func BuildPillarsPrompt(batchText string, evidence []EvidenceItem) string {
	prompt := fmt.Sprintf(`Analyze the following claim batch against the gathered evidence and identify 1-4 INDEPENDENT strategic pillars (distinct themes, not restatements of each other).

CRITICAL RULES:
1. Every statement must trace to the evidence below. Do not invent facts.
2. Every pillar MUST include a competing explanation - a plausible mundane reading of the same evidence.
3. Confidence is a number between 0 and 1. Be conservative: absence of evidence lowers confidence.
4. If the evidence supports no pillar at all, return an empty array.

Claim batch:
%s

Evidence:
%s

Respond with ONLY a JSON array. Each element:
{
  "title": "short pillar title",
  "summary": "2-3 sentence summary of the pillar",
  "strategic_context": "why this matters strategically",
  "causal_reasoning": "the causal chain from evidence to conclusion",
  "confidence": 0.0,
  "evidence": ["URL or quote supporting this pillar"],
  "competing_explanation": "the most plausible alternative reading",
  "falsifiable_condition": "observable event that would disprove this pillar"
}`, batchText, FormatEvidence(evidence))

	return prompt
}

// BuildFalsifiablePrompt constructs the prompt that turns a pillar into a
// concrete testable prediction with a deadline.
func BuildFalsifiablePrompt(pillarTitle, summary string) string {
	return fmt.Sprintf(`For the following analytical conclusion, state the single most informative falsifiable condition: a concrete, observable event that would DISPROVE the conclusion if it occurs (or fails to occur) within a deadline.

Conclusion: %s
Summary: %s

Respond with ONLY a JSON object:
{
  "falsifiable_condition": "concrete observable event",
  "deadline_days": 7,
  "what_if_triggered": "what it would mean for the conclusion if the condition fires"
}

deadline_days must be between 1 and 14.`, pillarTitle, summary)
}

// BuildGatekeeperPrompt constructs the adversarial-review prompt used to
// critique a draft briefing before release.
func BuildGatekeeperPrompt(draft string) string {
	return fmt.Sprintf(`You are a skeptical senior reviewer. Attack the following draft briefing: find unsupported leaps, single-source conclusions, missing competing explanations, and motive attribution presented as fact.

Draft:
%s

Respond with ONLY a JSON object:
{
  "overall_assessment": "1-2 sentence verdict",
  "critiques": [
    {
      "pillar_title": "title of the pillar being critiqued",
      "weakness": "the specific analytical weakness",
      "deep_dive_questions": ["search query that would resolve the weakness"],
      "severity": "minor|moderate|critical"
    }
  ]
}

If the draft has no substantive weaknesses, return an empty critiques array.`, draft)
}

// BuildEditorPrompt constructs the refinement prompt that merges deep-dive
// findings back into the draft.
func BuildEditorPrompt(draft string, critiques []string, findings []EvidenceItem) string {
	prompt := fmt.Sprintf(`Revise the following draft briefing to address the reviewer critiques, using ONLY the additional evidence below. Keep the structure and tone of the draft. Do not add conclusions the evidence cannot carry; weaken or remove claims the critiques undermine and the new evidence does not rescue.

Draft:
%s

Critiques:
%s

Additional evidence:
%s

Respond with the complete revised briefing in the same markdown format as the draft. No preamble.`,
		draft, formatList(critiques), FormatEvidence(findings))

	return prompt
}

// BuildEntityPrompt constructs the prompt for extracting named entities and
// follow-up search angles from raw claim text.
func BuildEntityPrompt(text string) string {
	return fmt.Sprintf(`Extract the named entities and search angles from the text below.

Text:
%s

Respond with ONLY a JSON object:
{
  "entities": ["person, organization, or place names"],
  "keywords": ["topical keywords"],
  "queries": ["2-4 search queries that would surface recent verifiable actions by these entities"]
}`, text)
}

// FormatEvidence renders evidence items as a numbered block for prompts.
func FormatEvidence(items []EvidenceItem) string {
	if len(items) == 0 {
		return "(no evidence gathered)"
	}

	var b strings.Builder
	for i, item := range items {
		fmt.Fprintf(&b, "[%d] %s\n", i+1, item.Title)
		if item.URL != "" {
			fmt.Fprintf(&b, "    %s\n", item.URL)
		}
		content := item.Content
		if len(content) > 800 {
			content = content[:800] + "..."
		}
		if content != "" {
			fmt.Fprintf(&b, "    %s\n", content)
		}
	}
	return b.String()
}

func formatList(items []string) string {
	if len(items) == 0 {
		return "(none)"
	}
	var b strings.Builder
	for _, item := range items {
		fmt.Fprintf(&b, "- %s\n", item)
	}
	return b.String()
}

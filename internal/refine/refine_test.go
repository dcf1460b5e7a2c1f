package refine

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/avoropai/argus/internal/llm"
	"github.com/avoropai/argus/internal/search"
)

// routedReasoner answers by prompt substring; unknown prompts get "{}".
type routedReasoner struct {
	routes map[string]string
	err    error
	calls  int
}

func (r *routedReasoner) Name() string                       { return "routed" }
func (r *routedReasoner) IsAvailable(_ context.Context) bool { return true }

func (r *routedReasoner) Complete(_ context.Context, req llm.CompleteRequest) (string, error) {
	r.calls++
	if r.err != nil {
		return "", r.err
	}
	for key, resp := range r.routes {
		if strings.Contains(req.Prompt, key) {
			return resp, nil
		}
	}
	return "{}", nil
}

type countingProvider struct {
	results []search.Result
	queries []string
}

func (p *countingProvider) Search(_ context.Context, query string, _ int, _ bool) (*search.Response, error) {
	p.queries = append(p.queries, query)
	return &search.Response{Query: query, Results: p.results}, nil
}

const reviewWithCritiques = `{
	"overall_assessment": "draft leans on one source",
	"critiques": [
		{"pillar_title": "A", "weakness": "single source", "deep_dive_questions": ["corroborate A", "background on A"], "severity": "moderate"},
		{"pillar_title": "B", "weakness": "restates the news", "deep_dive_questions": ["corroborate A", "analysis of B"], "severity": "minor"}
	]
}`

func TestRefine_NoDefectsShortCircuits(t *testing.T) {
	reasoner := &routedReasoner{routes: map[string]string{
		"skeptical senior reviewer": `{"overall_assessment": "solid", "critiques": []}`,
	}}
	provider := &countingProvider{}

	loop := NewLoop(NewGatekeeper(reasoner, nil), NewEditor(reasoner, nil), provider, 3, 4, nil)

	draft := "# Draft\n\nContent."
	got := loop.Refine(context.Background(), draft)

	if got != draft {
		t.Error("Clean review must return the draft unchanged")
	}
	if len(provider.queries) != 0 {
		t.Errorf("No deep-dive searches expected, got %d", len(provider.queries))
	}
	if reasoner.calls != 1 {
		t.Errorf("Expected only the gatekeeper call, got %d", reasoner.calls)
	}
}

func TestRefine_CritiquesTriggerDeepDiveAndRewrite(t *testing.T) {
	reasoner := &routedReasoner{routes: map[string]string{
		"skeptical senior reviewer":  reviewWithCritiques,
		"Revise the following draft": "# Draft (revised)\n\nStronger content.",
	}}
	provider := &countingProvider{results: []search.Result{
		{Title: "Corroboration", URL: "https://n.example/1", Content: "confirmed"},
	}}

	loop := NewLoop(NewGatekeeper(reasoner, nil), NewEditor(reasoner, nil), provider, 3, 4, nil)

	got := loop.Refine(context.Background(), "# Draft\n\nContent.")

	if !strings.Contains(got, "revised") {
		t.Errorf("Expected rewritten draft, got %q", got)
	}
	// Duplicate query pooled once: 3 distinct queries across 4 listed.
	if len(provider.queries) != 3 {
		t.Errorf("Expected 3 deduplicated deep-dive queries, got %d: %v", len(provider.queries), provider.queries)
	}
}

func TestRefine_EditorFailureFallsBackToDraft(t *testing.T) {
	gatekeeperReasoner := &routedReasoner{routes: map[string]string{
		"skeptical senior reviewer": reviewWithCritiques,
	}}
	editorReasoner := &routedReasoner{err: errors.New("model unavailable")}
	provider := &countingProvider{}

	loop := NewLoop(NewGatekeeper(gatekeeperReasoner, nil), NewEditor(editorReasoner, nil), provider, 3, 4, nil)

	draft := "# Draft\n\nContent."
	if got := loop.Refine(context.Background(), draft); got != draft {
		t.Error("Editor failure must fall back to the unrefined draft")
	}
}

func TestRefine_GatekeeperFailureReleasesDraft(t *testing.T) {
	reasoner := &routedReasoner{err: errors.New("quota exceeded")}
	loop := NewLoop(NewGatekeeper(reasoner, nil), NewEditor(reasoner, nil), &countingProvider{}, 3, 4, nil)

	draft := "# Draft"
	if got := loop.Refine(context.Background(), draft); got != draft {
		t.Error("Gatekeeper failure must release the draft unrefined")
	}
}

func TestGatekeeper_UnparseableReviewIsEmpty(t *testing.T) {
	reasoner := &routedReasoner{routes: map[string]string{
		"skeptical senior reviewer": "the draft seems fine to me",
	}}
	g := NewGatekeeper(reasoner, nil)

	review := g.Review(context.Background(), "# Draft")
	if len(review.Critiques) != 0 {
		t.Errorf("Unparseable review must yield no critiques, got %d", len(review.Critiques))
	}
}

func TestGatekeeper_NormalizesUnknownSeverity(t *testing.T) {
	reasoner := &routedReasoner{routes: map[string]string{
		"skeptical senior reviewer": `{"critiques": [{"pillar_title": "A", "weakness": "w", "severity": "catastrophic"}]}`,
	}}
	g := NewGatekeeper(reasoner, nil)

	review := g.Review(context.Background(), "# Draft")
	if len(review.Critiques) != 1 {
		t.Fatalf("Expected 1 critique, got %d", len(review.Critiques))
	}
	if review.Critiques[0].Severity != SeverityMinor {
		t.Errorf("Unknown severity must degrade to minor, got %s", review.Critiques[0].Severity)
	}
}

func TestPoolQueries_Cap(t *testing.T) {
	critiques := []Critique{
		{DeepDiveQuestions: []string{"q1", "q2", "q3"}},
		{DeepDiveQuestions: []string{"q4", "q5", "q6", "q7"}},
	}
	queries := poolQueries(critiques, 4)
	if len(queries) != 4 {
		t.Errorf("Expected pool capped at 4, got %d", len(queries))
	}
}

func TestRefine_EmptyRevisionFallsBack(t *testing.T) {
	reasoner := &routedReasoner{routes: map[string]string{
		"skeptical senior reviewer":  reviewWithCritiques,
		"Revise the following draft": "   ",
	}}
	loop := NewLoop(NewGatekeeper(reasoner, nil), NewEditor(reasoner, nil), &countingProvider{}, 3, 4, nil)

	draft := "# Draft"
	if got := loop.Refine(context.Background(), draft); got != draft {
		t.Error("Empty revision must fall back to the draft")
	}
}

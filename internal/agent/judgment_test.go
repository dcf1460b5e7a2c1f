package agent

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/avoropai/argus/internal/llm"
	"github.com/avoropai/argus/internal/model"
	"github.com/avoropai/argus/internal/search"
)

// fakeEvents is an in-memory event store for J0 tests.
type fakeEvents struct {
	actions []model.Event
	err     error
}

func (f *fakeEvents) InsertEvent(_ context.Context, e model.Event) (string, error) {
	f.actions = append(f.actions, e)
	return "id", nil
}

func (f *fakeEvents) GetRecentEvents(_ context.Context, _ int) ([]model.Event, error) {
	return f.actions, f.err
}

func (f *fakeEvents) GetActionsInWindow(_ context.Context, _, _ time.Time) ([]model.Event, error) {
	return f.actions, f.err
}

func (f *fakeEvents) MarkEventRetracted(_ context.Context, _ string) error { return nil }

func testAgentConfig() model.AgentConfig {
	return model.AgentConfig{
		MaxLoops:            3,
		MaxReasoningDepth:   2,
		MaxParallelQueries:  5,
		ConfidenceThreshold: 0.6,
		SufficientResults:   3,
		RepeatRateLimit:     0.7,
		ActionWindowHours:   24,
	}
}

func TestJudge0_ActionLexicon(t *testing.T) {
	p := NewPipeline(nil, nil, testAgentConfig(), nil)

	evidence := []search.Result{
		{Title: "President signed an executive order on tariffs", Content: "The order takes effect Monday."},
	}

	j0 := p.Judge0(context.Background(), evidence)
	if j0.Class != ActionPresent {
		t.Errorf("Expected ACTION_PRESENT, got %s", j0.Class)
	}
	if len(j0.Actions) == 0 {
		t.Fatal("Expected at least one extracted action")
	}
}

func TestJudge0_RhetoricOnly(t *testing.T) {
	p := NewPipeline(nil, nil, testAgentConfig(), nil)

	evidence := []search.Result{
		{Title: "Senator hints at possible policy shift", Content: "Sources say a change could be considered."},
	}

	j0 := p.Judge0(context.Background(), evidence)
	if j0.Class != LanguageOnly {
		t.Errorf("Expected LANGUAGE_ONLY for rhetoric, got %s", j0.Class)
	}
}

func TestJudge0_EventStoreWindow(t *testing.T) {
	events := &fakeEvents{actions: []model.Event{
		{Statement: "carrier group repositioned to the region", Status: model.EventVerified},
	}}
	p := NewPipeline(nil, events, testAgentConfig(), nil)

	// No lexicon hits in the fresh evidence; the recorded action decides.
	evidence := []search.Result{
		{Title: "Tensions rise amid diplomatic talks", Content: "Observers expect negotiations to continue."},
	}

	j0 := p.Judge0(context.Background(), evidence)
	if j0.Class != ActionPresent {
		t.Errorf("Expected ACTION_PRESENT from recorded events, got %s", j0.Class)
	}
}

func TestJudge0_EmptyEvidence(t *testing.T) {
	p := NewPipeline(nil, nil, testAgentConfig(), nil)
	j0 := p.Judge0(context.Background(), nil)
	if j0.Class != LanguageOnly {
		t.Errorf("Expected LANGUAGE_ONLY for empty evidence, got %s", j0.Class)
	}
}

func TestEvidenceConfidence(t *testing.T) {
	tests := []struct {
		count int
		want  float64
	}{
		{0, 0.4},
		{2, 0.5},
		{4, 0.6},
		{10, 0.9},
		{100, 0.9}, // capped
	}
	for _, tt := range tests {
		if got := EvidenceConfidence(tt.count); got != tt.want {
			t.Errorf("EvidenceConfidence(%d) = %v, want %v", tt.count, got, tt.want)
		}
	}
}

func TestJudge1_LanguageOnlyNeverYes(t *testing.T) {
	p := NewPipeline(nil, nil, testAgentConfig(), nil)
	j0 := Judgment0{Class: LanguageOnly}

	for conf := 0.0; conf <= 1.0; conf += 0.05 {
		j1 := p.Judge1(j0, conf)
		if j1.Verdict == VerdictYes {
			t.Fatalf("LANGUAGE_ONLY produced YES at confidence %v", conf)
		}
	}

	if v := p.Judge1(j0, 0.9).Verdict; v != VerdictUncertain {
		t.Errorf("Expected UNCERTAIN ceiling at high confidence, got %s", v)
	}
	if v := p.Judge1(j0, 0.4).Verdict; v != VerdictNo {
		t.Errorf("Expected NO at low confidence, got %s", v)
	}
}

func TestJudge1_ActionPresent(t *testing.T) {
	p := NewPipeline(nil, nil, testAgentConfig(), nil)
	j0 := Judgment0{Class: ActionPresent, Actions: []string{"signed: order"}}

	tests := []struct {
		confidence float64
		want       Verdict
	}{
		{0.9, VerdictYes},
		{0.6, VerdictYes},
		{0.59, VerdictUncertain},
		{0.4, VerdictUncertain},
		{0.39, VerdictNo},
		{0.1, VerdictNo},
	}
	for _, tt := range tests {
		if got := p.Judge1(j0, tt.confidence).Verdict; got != tt.want {
			t.Errorf("Judge1(ACTION_PRESENT, %v) = %s, want %s", tt.confidence, got, tt.want)
		}
	}
}

func TestJudge3_DeadlineClamped(t *testing.T) {
	reasoner := &stubReasoner{response: `{"falsifiable_condition": "no order signed", "deadline_days": 60, "what_if_triggered": "thesis fails"}`}
	p := NewPipeline(reasoner, nil, testAgentConfig(), nil)

	j3 := p.Judge3(context.Background(), model.Pillar{Title: "t", Summary: "s"})
	if j3.FalsifiableCondition != "no order signed" {
		t.Errorf("Unexpected condition %q", j3.FalsifiableCondition)
	}
	if j3.DeadlineDays != 7 {
		t.Errorf("Expected out-of-range deadline clamped to 7, got %d", j3.DeadlineDays)
	}
}

func TestJudge3_ProviderFailure(t *testing.T) {
	reasoner := &stubReasoner{response: "I cannot answer that."}
	p := NewPipeline(reasoner, nil, testAgentConfig(), nil)

	j3 := p.Judge3(context.Background(), model.Pillar{Title: "t"})
	if j3.FalsifiableCondition != "" {
		t.Errorf("Expected empty fallback, got %q", j3.FalsifiableCondition)
	}
}

func TestJudge2_MalformedResponseFallsBack(t *testing.T) {
	reasoner := &stubReasoner{response: "Sorry, I had trouble with that request."}
	p := NewPipeline(reasoner, nil, testAgentConfig(), nil)

	pillars := p.Judge2(context.Background(), "batch", nil)
	if len(pillars) != 0 {
		t.Errorf("Expected empty pillar fallback, got %d pillars", len(pillars))
	}
}

func TestJudge2_RequiresCompetingExplanation(t *testing.T) {
	reasoner := &stubReasoner{response: `[
		{"title": "A", "summary": "s", "confidence": 0.8, "competing_explanation": "coincidence"},
		{"title": "B", "summary": "s", "confidence": 0.9, "competing_explanation": ""}
	]`}
	p := NewPipeline(reasoner, nil, testAgentConfig(), nil)

	pillars := p.Judge2(context.Background(), "batch", nil)
	if len(pillars) != 1 {
		t.Fatalf("Expected 1 pillar (the one with a competing explanation), got %d", len(pillars))
	}
	if pillars[0].Title != "A" {
		t.Errorf("Wrong pillar survived: %s", pillars[0].Title)
	}
}

func TestJudge2_ConfidenceParsing(t *testing.T) {
	reasoner := &stubReasoner{response: `[
		{"title": "A", "summary": "s", "confidence": "high", "competing_explanation": "alt"},
		{"title": "B", "summary": "s", "confidence": 1.7, "competing_explanation": "alt"}
	]`}
	p := NewPipeline(reasoner, nil, testAgentConfig(), nil)

	pillars := p.Judge2(context.Background(), "batch", nil)
	if len(pillars) != 2 {
		t.Fatalf("Expected 2 pillars, got %d", len(pillars))
	}
	if pillars[0].Confidence != 0.8 {
		t.Errorf("Expected qualitative confidence mapped to 0.8, got %v", pillars[0].Confidence)
	}
	if pillars[1].Confidence != 1.0 {
		t.Errorf("Expected out-of-range confidence clamped to 1.0, got %v", pillars[1].Confidence)
	}
}

func TestJudge2_FencedResponse(t *testing.T) {
	reasoner := &stubReasoner{response: "```json\n[{\"title\": \"A\", \"summary\": \"s\", \"confidence\": 0.7, \"competing_explanation\": \"alt\"}]\n```"}
	p := NewPipeline(reasoner, nil, testAgentConfig(), nil)

	pillars := p.Judge2(context.Background(), "batch", nil)
	if len(pillars) != 1 {
		t.Fatalf("Expected fenced JSON to parse, got %d pillars", len(pillars))
	}
}

func TestClassifyAction(t *testing.T) {
	tests := []struct {
		action string
		want   model.ActionType
	}{
		{"executive order: tariff order signed", model.ActionLegalDocument},
		{"arrested: opposition figure detained", model.ActionIrreversibleEvent},
		{"appointed: new defense chief", model.ActionPersonnelChange},
		{"sanctions: new package announced", model.ActionDiplomaticAction},
		{"troops: brigade moved to border", model.ActionResourceDeployment},
	}
	for _, tt := range tests {
		if got := classifyAction(tt.action); got != tt.want {
			t.Errorf("classifyAction(%q) = %s, want %s", tt.action, got, tt.want)
		}
	}
}

// stubReasoner returns one canned response for every Complete call.
type stubReasoner struct {
	response string
	err      error
	calls    int
	prompts  []string
}

func (r *stubReasoner) Name() string                       { return "stub" }
func (r *stubReasoner) IsAvailable(_ context.Context) bool { return true }

func (r *stubReasoner) Complete(_ context.Context, req llm.CompleteRequest) (string, error) {
	r.calls++
	r.prompts = append(r.prompts, req.Prompt)
	if r.err != nil {
		return "", r.err
	}
	return r.response, nil
}

// routedReasoner picks responses by prompt substring, for orchestrator
// tests that drive J2, J3 and the refinement stages in one run.
type routedReasoner struct {
	routes  map[string]string
	calls   int
	prompts []string
}

func (r *routedReasoner) Name() string                       { return "routed" }
func (r *routedReasoner) IsAvailable(_ context.Context) bool { return true }

func (r *routedReasoner) Complete(_ context.Context, req llm.CompleteRequest) (string, error) {
	r.calls++
	r.prompts = append(r.prompts, req.Prompt)
	for key, resp := range r.routes {
		if strings.Contains(req.Prompt, key) {
			return resp, nil
		}
	}
	return "{}", nil
}

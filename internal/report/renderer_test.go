package report

import (
	"strings"
	"testing"
	"time"

	"github.com/avoropai/argus/internal/model"
)

func sampleBriefing() *model.Briefing {
	deadline := time.Date(2026, 9, 6, 0, 0, 0, 0, time.UTC)
	return &model.Briefing{
		GeneratedAt:   time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
		AnalysisDate:  "2026-08-30",
		SourceSummary: "3 statements attributed to newswire",
		Judgment0:     "ACTION_PRESENT",
		Judgment1:     "YES",
		Pillars: []model.Pillar{{
			Title:                "Tariff escalation",
			Summary:              "The order opens a broader trade confrontation.",
			StrategicContext:     "Follows a breakdown in talks.",
			Confidence:           0.62,
			Evidence:             []string{"https://n.example/1"},
			CompetingExplanation: "A negotiating tactic.",
			FalsifiableCondition: "Tariffs suspended within a week",
			Deadline:             &deadline,
			WhatIfTriggered:      "The escalation reading was wrong.",
		}},
		RedTeamNotes: []model.RedTeamNote{
			{Challenge: "single source", Severity: "medium"},
		},
		SearchCount: 6,
		LoopCount:   2,
		StopReason:  "J1_COMPLETE",
	}
}

func TestRenderMarkdown_AcceptedBriefing(t *testing.T) {
	r := NewRenderer(true)
	md := r.RenderMarkdown(sampleBriefing())

	for _, want := range []string{
		"# Strategic Briefing — 2026-08-30",
		"| Action detection | ACTION_PRESENT |",
		"| Thesis readiness | YES |",
		"## Pillar 1: Tariff escalation",
		"**Confidence:** 0.62",
		"**Competing explanation.** A negotiating tactic.",
		"**Falsifiable condition.** Tariffs suspended within a week (check by 2026-09-06)",
		"## Red Team Notes",
		"- [medium] single source",
		"stop: J1_COMPLETE",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("Markdown missing %q", want)
		}
	}
}

func TestRenderMarkdown_GiveUp(t *testing.T) {
	b := &model.Briefing{
		GeneratedAt:     time.Now().UTC(),
		AnalysisDate:    "2026-08-30",
		Judgment0:       "LANGUAGE_ONLY",
		Judgment1:       "NO",
		GiveUpMessage:   "Only rhetoric was found.",
		PartialEvidence: []string{"Analyst commentary (https://n.example/a)"},
		StopReason:      "SEARCH_SUFFICIENT",
	}

	md := NewRenderer(true).RenderMarkdown(b)

	if !strings.Contains(md, "## No Thesis") {
		t.Error("Give-up briefing must render a no-thesis section")
	}
	if !strings.Contains(md, "Only rhetoric was found.") {
		t.Error("Give-up message missing")
	}
	if !strings.Contains(md, "Analyst commentary") {
		t.Error("Partial evidence missing")
	}
	if strings.Contains(md, "## Pillar") {
		t.Error("Give-up briefing must not render pillars")
	}
}

func TestRenderMarkdown_FooterToggle(t *testing.T) {
	b := sampleBriefing()

	with := NewRenderer(true).RenderMarkdown(b)
	without := NewRenderer(false).RenderMarkdown(b)

	if !strings.Contains(with, "_Generated") {
		t.Error("Expected footer when enabled")
	}
	if strings.Contains(without, "_Generated") {
		t.Error("Expected no footer when disabled")
	}
}

func TestWriteMarkdownAndJSON(t *testing.T) {
	dir := t.TempDir()
	r := NewRenderer(true)
	b := sampleBriefing()

	mdPath := dir + "/briefing.md"
	if err := r.WriteMarkdown(b, mdPath); err != nil {
		t.Fatalf("WriteMarkdown failed: %v", err)
	}
	jsonPath := dir + "/briefing.json"
	if err := r.WriteJSON(b, jsonPath); err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}
}

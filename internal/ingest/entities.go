package ingest

import (
	"context"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/avoropai/argus/internal/llm"
)

// Entities is what the extractor found in a block of claim text.
type Entities struct {
	Names    []string `json:"entities"`
	Keywords []string `json:"keywords"`
	Queries  []string `json:"queries"`
}

// knownActors are names matched case-insensitively as whole phrases. The
// list covers the actors that recur in the monitored feeds; anything else
// falls through to the capitalization heuristic.
var knownActors = []string{
	"Trump", "Biden", "Putin", "Xi Jinping", "Zelensky", "Netanyahu",
	"White House", "Pentagon", "State Department", "Kremlin", "Congress",
	"Federal Reserve", "Supreme Court", "NATO", "European Union", "United Nations",
	"China", "Russia", "Ukraine", "Israel", "Iran", "North Korea", "South Korea", "Taiwan",
}

// topicKeywords mark the subject areas worth following up on.
var topicKeywords = []string{
	"tariffs", "sanctions", "ceasefire", "election", "nuclear",
	"immigration", "trade deal", "interest rates", "oil", "semiconductor",
	"military aid", "peace talks", "missile", "border",
}

// stopwords excluded from the capitalized-phrase heuristic.
var stopwords = map[string]bool{
	"the": true, "a": true, "an": true, "in": true, "on": true, "at": true,
	"and": true, "or": true, "but": true, "of": true, "for": true, "to": true,
	"is": true, "was": true, "are": true, "were": true, "it": true, "its": true,
	"he": true, "she": true, "they": true, "this": true, "that": true,
}

// ExtractEntities scans claim or evidence text for actors and topics and
// proposes follow-up search queries. Pure lexicon matching; deterministic.
func ExtractEntities(text string) Entities {
	var result Entities
	lower := strings.ToLower(text)

	seen := make(map[string]bool)
	for _, actor := range knownActors {
		if strings.Contains(lower, strings.ToLower(actor)) && !seen[actor] {
			seen[actor] = true
			result.Names = append(result.Names, actor)
		}
	}

	for _, kw := range topicKeywords {
		if strings.Contains(lower, kw) {
			result.Keywords = append(result.Keywords, kw)
		}
	}

	// Capitalized runs not already matched are probably names we don't know.
	for _, phrase := range capitalizedPhrases(text) {
		if seen[phrase] {
			continue
		}
		if len(result.Names) >= 10 {
			break
		}
		seen[phrase] = true
		result.Names = append(result.Names, phrase)
	}

	for i, name := range result.Names {
		if i >= 3 {
			break
		}
		topic := ""
		if len(result.Keywords) > 0 {
			topic = " " + result.Keywords[0]
		}
		result.Queries = append(result.Queries, name+topic+" recent actions")
	}

	return result
}

// capitalizedPhrases returns runs of capitalized words (at least two words
// or one word of 4+ letters) that look like proper names.
func capitalizedPhrases(text string) []string {
	words := strings.Fields(text)
	var phrases []string
	var run []string

	flush := func() {
		if len(run) == 0 {
			return
		}
		phrase := strings.Join(run, " ")
		if len(run) >= 2 || len(phrase) >= 4 {
			phrases = append(phrases, phrase)
		}
		run = nil
	}

	for i, w := range words {
		trimmed := strings.TrimFunc(w, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		if trimmed == "" {
			flush()
			continue
		}
		first := []rune(trimmed)[0]
		// Sentence-initial capitals are ambiguous, skip them.
		if unicode.IsUpper(first) && i > 0 && !stopwords[strings.ToLower(trimmed)] {
			run = append(run, trimmed)
			continue
		}
		flush()
	}
	flush()

	return phrases
}

// LLMExtractor augments lexicon extraction with a model call. It degrades
// to the deterministic extractor when the model is unavailable or returns
// garbage, so extraction never fails.
type LLMExtractor struct {
	reasoner llm.Reasoner
	logger   *zap.Logger
}

// NewLLMExtractor wraps a reasoner for entity extraction.
func NewLLMExtractor(reasoner llm.Reasoner, logger *zap.Logger) *LLMExtractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LLMExtractor{reasoner: reasoner, logger: logger}
}

// Extract asks the model for entities and search angles, falling back to
// the lexicon scan on any failure.
func (e *LLMExtractor) Extract(ctx context.Context, text string) Entities {
	if e.reasoner == nil {
		return ExtractEntities(text)
	}

	raw, err := e.reasoner.Complete(ctx, llm.CompleteRequest{
		Prompt:    llm.BuildEntityPrompt(text),
		MaxTokens: 500,
	})
	if err != nil {
		e.logger.Debug("entity extraction model call failed, using lexicon", zap.Error(err))
		return ExtractEntities(text)
	}

	var entities Entities
	if err := llm.Decode(raw, &entities); err != nil {
		e.logger.Debug("entity extraction response unparseable, using lexicon", zap.Error(err))
		return ExtractEntities(text)
	}
	if len(entities.Names) == 0 {
		return ExtractEntities(text)
	}
	return entities
}

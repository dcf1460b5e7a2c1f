package agent

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/avoropai/argus/internal/ingest"
	"github.com/avoropai/argus/internal/model"
	"github.com/avoropai/argus/internal/search"
)

// LoopResult is everything the research loop hands back to the
// orchestrator: final counters, the last judgments, and the cumulative
// evidence set.
type LoopResult struct {
	State    State
	J0       Judgment0
	J1       Judgment1
	Evidence []search.Result
}

// ResearchLoop gathers evidence until the thesis-readiness gate accepts or
// a stop rule fires. Each invocation owns its State exclusively.
type ResearchLoop struct {
	provider search.Provider
	pipeline *Pipeline
	stops    *StopEngine
	logger   *zap.Logger

	maxLoops      int
	maxQueries    int
	maxResults    int
	maxConcurrent int
}

// NewResearchLoop builds a loop from the agent and search configuration.
func NewResearchLoop(provider search.Provider, pipeline *Pipeline, stops *StopEngine, agentCfg model.AgentConfig, searchCfg model.SearchConfig, logger *zap.Logger) *ResearchLoop {
	maxLoops := agentCfg.MaxLoops
	if maxLoops <= 0 {
		maxLoops = 3
	}
	maxQueries := agentCfg.MaxParallelQueries
	if maxQueries <= 0 {
		maxQueries = 5
	}
	maxResults := searchCfg.MaxResults
	if maxResults <= 0 {
		maxResults = 5
	}
	maxConcurrent := searchCfg.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = 10
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResearchLoop{
		provider:      provider,
		pipeline:      pipeline,
		stops:         stops,
		logger:        logger,
		maxLoops:      maxLoops,
		maxQueries:    maxQueries,
		maxResults:    maxResults,
		maxConcurrent: maxConcurrent,
	}
}

// Run executes the evidence-gathering loop over one claim batch. Judgments
// are recomputed against the whole accumulated evidence set each iteration,
// never just the new increment. Termination is guaranteed by the loop bound
// even when the provider always returns nothing.
func (l *ResearchLoop) Run(ctx context.Context, batchText string) LoopResult {
	var (
		state    State
		evidence []search.Result
		j0       Judgment0
		j1       Judgment1
	)

	seenURLs := make(map[string]bool)

	seed := ingest.ExtractEntities(batchText)
	queriedEntities := append([]string{}, seed.Names...)
	queries := search.SeedQueries(batchText, seed.Names, l.maxQueries)

	for state.LoopCount < l.maxLoops {
		responses := search.Parallel(ctx, l.provider, queries, l.maxResults, l.maxConcurrent, l.logger)

		newResults := 0
		repeats := 0
		total := 0
		for _, resp := range responses {
			state.SearchCount++
			for _, r := range resp.Results {
				total++
				if r.URL != "" && seenURLs[r.URL] {
					repeats++
					continue
				}
				if r.URL != "" {
					seenURLs[r.URL] = true
				}
				evidence = append(evidence, r)
				newResults++
			}
		}

		state.LoopCount++
		state.SearchResultCount = len(evidence)
		if total > 0 {
			state.InfoRepeatRate = float64(repeats) / float64(total)
		}

		j0 = l.pipeline.Judge0(ctx, evidence)
		j1 = l.pipeline.Judge1(j0, EvidenceConfidence(state.SearchResultCount))

		l.logger.Info("research loop iteration",
			zap.Int("loop", state.LoopCount),
			zap.Int("evidence", state.SearchResultCount),
			zap.Int("new_results", newResults),
			zap.Float64("repeat_rate", state.InfoRepeatRate),
			zap.String("j0", string(j0.Class)),
			zap.String("j1", string(j1.Verdict)))

		if j1.Verdict == VerdictYes {
			state.StopReason = StopJ1Complete
			break
		}

		if signal := l.stops.Evaluate(state); signal != nil {
			state.StopReason = signal.Reason
			l.logger.Info("stop rule fired",
				zap.String("reason", string(signal.Reason)),
				zap.String("class", string(signal.Class)),
				zap.String("message", signal.Message))
			break
		}

		next, updated := l.nextQueries(evidence, queriedEntities)
		queriedEntities = updated
		if len(next) > 0 {
			queries = next
		}
		// When no new entities surfaced, the previous queries are re-run;
		// the repeat-rate rule then ends the loop if nothing fresh comes back.
	}

	if state.LoopCount >= l.maxLoops && state.StopReason == StopNone {
		state.StopReason = StopLoopExhausted
	}

	return LoopResult{State: state, J0: j0, J1: j1, Evidence: evidence}
}

// nextQueries widens the search using entities first observed in the
// gathered evidence. Returns the new queries and the updated queried set.
func (l *ResearchLoop) nextQueries(evidence []search.Result, queriedEntities []string) ([]string, []string) {
	var b strings.Builder
	for _, r := range evidence {
		b.WriteString(r.Title)
		b.WriteString(" ")
	}

	found := ingest.ExtractEntities(b.String())
	queries := search.FollowUpQueries(found.Names, queriedEntities, l.maxQueries)
	return queries, append(queriedEntities, found.Names...)
}

package agent

import "fmt"

// StopClass distinguishes signals that force termination from advisory ones.
type StopClass string

const (
	StopHard StopClass = "hard" // must stop immediately
	StopSoft StopClass = "soft" // advisory, consulted by the orchestrator
)

// StopReason identifies which rule fired.
type StopReason string

const (
	StopNone StopReason = ""

	// Hard stops.
	StopTimeLock      StopReason = "TIME_LOCK" // reserved, never emitted
	StopJ0Complete    StopReason = "J0_COMPLETE"
	StopJ1Complete    StopReason = "J1_COMPLETE"
	StopDepthExceeded StopReason = "DEPTH_EXCEEDED"
	StopLoopExhausted StopReason = "LOOP_EXHAUSTED"

	// Soft stops.
	StopCompetingExists  StopReason = "COMPETING_EXISTS"
	StopFalsifiableSet   StopReason = "FALSIFIABLE_SET"
	StopSearchSufficient StopReason = "SEARCH_SUFFICIENT"
	StopInfoRepeating    StopReason = "INFO_REPEATING"
	StopWindowCovered    StopReason = "WINDOW_COVERED" // reserved, never emitted
)

// stopPriorities is the total order over stop reasons. Lower is more urgent.
// Hard stops always outrank soft stops; ties never occur because the order
// is fixed here rather than derived per call.
var stopPriorities = map[StopReason]int{
	StopTimeLock:         0,
	StopJ0Complete:       1,
	StopJ1Complete:       2,
	StopDepthExceeded:    3,
	StopLoopExhausted:    3,
	StopCompetingExists:  4,
	StopFalsifiableSet:   5,
	StopSearchSufficient: 6,
	StopInfoRepeating:    7,
	StopWindowCovered:    8,
}

// StopSignal is the outcome of one stop-rule evaluation. It is computed
// fresh each loop iteration and never stored.
type StopSignal struct {
	Reason   StopReason
	Class    StopClass
	Priority int
	Message  string
}

// StopEngine evaluates the stop rules against a run state.
type StopEngine struct {
	maxLoops          int
	maxReasoningDepth int
	sufficientResults int
	repeatRateLimit   float64
}

// NewStopEngine builds an evaluator with the given bounds.
func NewStopEngine(maxLoops, maxReasoningDepth, sufficientResults int, repeatRateLimit float64) *StopEngine {
	if maxLoops <= 0 {
		maxLoops = 3
	}
	if maxReasoningDepth <= 0 {
		maxReasoningDepth = 2
	}
	if sufficientResults <= 0 {
		sufficientResults = 3
	}
	if repeatRateLimit <= 0 {
		repeatRateLimit = 0.7
	}
	return &StopEngine{
		maxLoops:          maxLoops,
		maxReasoningDepth: maxReasoningDepth,
		sufficientResults: sufficientResults,
		repeatRateLimit:   repeatRateLimit,
	}
}

// Evaluate checks every rule and returns the highest-priority triggered
// signal, or nil when nothing fired. It is pure: the state is never mutated.
func (e *StopEngine) Evaluate(state State) *StopSignal {
	var best *StopSignal

	consider := func(s StopSignal) {
		if best == nil || s.Priority < best.Priority {
			c := s
			best = &c
		}
	}

	// Hard stops: unconditional safety rails against runaway cost.
	if state.LoopCount >= e.maxLoops {
		consider(StopSignal{
			Reason:   StopLoopExhausted,
			Class:    StopHard,
			Priority: stopPriorities[StopLoopExhausted],
			Message:  fmt.Sprintf("search loop limit reached (%d)", e.maxLoops),
		})
	}
	if state.ReasoningDepth > e.maxReasoningDepth {
		consider(StopSignal{
			Reason:   StopDepthExceeded,
			Class:    StopHard,
			Priority: stopPriorities[StopDepthExceeded],
			Message:  fmt.Sprintf("reasoning depth exceeded (%d > %d)", state.ReasoningDepth, e.maxReasoningDepth),
		})
	}

	// Soft stops: advisory, the orchestrator treats them as early exits.
	if state.HasCompetingExplanation {
		consider(StopSignal{
			Reason:   StopCompetingExists,
			Class:    StopSoft,
			Priority: stopPriorities[StopCompetingExists],
			Message:  "competing explanation already generated",
		})
	}
	if state.HasFalsifiableCondition {
		consider(StopSignal{
			Reason:   StopFalsifiableSet,
			Class:    StopSoft,
			Priority: stopPriorities[StopFalsifiableSet],
			Message:  "falsifiable condition already set",
		})
	}
	if state.SearchResultCount >= e.sufficientResults {
		consider(StopSignal{
			Reason:   StopSearchSufficient,
			Class:    StopSoft,
			Priority: stopPriorities[StopSearchSufficient],
			Message:  fmt.Sprintf("sufficient search results (%d >= %d)", state.SearchResultCount, e.sufficientResults),
		})
	}
	if state.InfoRepeatRate > e.repeatRateLimit {
		consider(StopSignal{
			Reason:   StopInfoRepeating,
			Class:    StopSoft,
			Priority: stopPriorities[StopInfoRepeating],
			Message:  fmt.Sprintf("information repeating (%.0f%% > %.0f%%)", state.InfoRepeatRate*100, e.repeatRateLimit*100),
		})
	}

	return best
}

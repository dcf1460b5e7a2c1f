package agent

// State carries the per-run counters consulted by the stop rules. It is
// owned by exactly one in-flight batch run and is never shared across
// goroutines, so no locking is required.
type State struct {
	LoopCount               int
	SearchCount             int
	SearchResultCount       int
	ReasoningDepth          int
	HasCompetingExplanation bool
	HasFalsifiableCondition bool
	InfoRepeatRate          float64
	StopReason              StopReason
}

package agent

import "testing"

func TestStopEngine_NoSignal(t *testing.T) {
	engine := NewStopEngine(3, 2, 3, 0.7)

	signal := engine.Evaluate(State{LoopCount: 1, SearchResultCount: 1})
	if signal != nil {
		t.Errorf("Expected no signal, got %s", signal.Reason)
	}
}

func TestStopEngine_LoopExhausted(t *testing.T) {
	engine := NewStopEngine(3, 2, 3, 0.7)

	signal := engine.Evaluate(State{LoopCount: 3})
	if signal == nil {
		t.Fatal("Expected a stop signal")
	}
	if signal.Reason != StopLoopExhausted {
		t.Errorf("Expected LOOP_EXHAUSTED, got %s", signal.Reason)
	}
	if signal.Class != StopHard {
		t.Errorf("Expected hard stop, got %s", signal.Class)
	}
}

func TestStopEngine_DepthExceeded(t *testing.T) {
	engine := NewStopEngine(3, 2, 3, 0.7)

	signal := engine.Evaluate(State{ReasoningDepth: 3})
	if signal == nil {
		t.Fatal("Expected a stop signal")
	}
	if signal.Reason != StopDepthExceeded {
		t.Errorf("Expected DEPTH_EXCEEDED, got %s", signal.Reason)
	}
}

func TestStopEngine_DepthAtLimitDoesNotFire(t *testing.T) {
	engine := NewStopEngine(3, 2, 3, 0.7)

	signal := engine.Evaluate(State{ReasoningDepth: 2})
	if signal != nil {
		t.Errorf("Depth at the limit should not fire, got %s", signal.Reason)
	}
}

func TestStopEngine_HardOutranksSoft(t *testing.T) {
	engine := NewStopEngine(3, 2, 3, 0.7)

	// Both a hard stop (loop exhausted) and several soft stops hold.
	signal := engine.Evaluate(State{
		LoopCount:               3,
		SearchResultCount:       10,
		HasCompetingExplanation: true,
		HasFalsifiableCondition: true,
		InfoRepeatRate:          0.9,
	})
	if signal == nil {
		t.Fatal("Expected a stop signal")
	}
	if signal.Class != StopHard {
		t.Errorf("Expected hard stop to win, got %s (%s)", signal.Class, signal.Reason)
	}
	if signal.Reason != StopLoopExhausted {
		t.Errorf("Expected LOOP_EXHAUSTED, got %s", signal.Reason)
	}
}

func TestStopEngine_SoftStopOrdering(t *testing.T) {
	engine := NewStopEngine(3, 2, 3, 0.7)

	tests := []struct {
		name  string
		state State
		want  StopReason
	}{
		{
			name: "competing outranks everything soft",
			state: State{
				HasCompetingExplanation: true,
				HasFalsifiableCondition: true,
				SearchResultCount:       5,
				InfoRepeatRate:          0.9,
			},
			want: StopCompetingExists,
		},
		{
			name: "falsifiable outranks search sufficiency",
			state: State{
				HasFalsifiableCondition: true,
				SearchResultCount:       5,
				InfoRepeatRate:          0.9,
			},
			want: StopFalsifiableSet,
		},
		{
			name: "search sufficiency outranks repetition",
			state: State{
				SearchResultCount: 3,
				InfoRepeatRate:    0.9,
			},
			want: StopSearchSufficient,
		},
		{
			name:  "repetition alone",
			state: State{InfoRepeatRate: 0.71},
			want:  StopInfoRepeating,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			signal := engine.Evaluate(tt.state)
			if signal == nil {
				t.Fatal("Expected a stop signal")
			}
			if signal.Reason != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, signal.Reason)
			}
			if signal.Class != StopSoft {
				t.Errorf("Expected soft stop, got %s", signal.Class)
			}
		})
	}
}

func TestStopEngine_RepeatRateAtLimitDoesNotFire(t *testing.T) {
	engine := NewStopEngine(3, 2, 3, 0.7)

	signal := engine.Evaluate(State{InfoRepeatRate: 0.7})
	if signal != nil {
		t.Errorf("Repeat rate at the limit should not fire, got %s", signal.Reason)
	}
}

func TestStopEngine_EvaluateIsPure(t *testing.T) {
	engine := NewStopEngine(3, 2, 3, 0.7)
	state := State{LoopCount: 3, SearchResultCount: 5}

	first := engine.Evaluate(state)
	second := engine.Evaluate(state)

	if first == nil || second == nil {
		t.Fatal("Expected signals from both evaluations")
	}
	if first.Reason != second.Reason || first.Priority != second.Priority {
		t.Errorf("Evaluate is not deterministic: %v vs %v", first, second)
	}
	if state.StopReason != StopNone {
		t.Errorf("Evaluate mutated the state: %s", state.StopReason)
	}
}

func TestStopEngine_DefaultBounds(t *testing.T) {
	engine := NewStopEngine(0, 0, 0, 0)

	if signal := engine.Evaluate(State{LoopCount: 2}); signal != nil {
		t.Errorf("Default max loops should be 3, got signal %s at loop 2", signal.Reason)
	}
	if signal := engine.Evaluate(State{LoopCount: 3}); signal == nil || signal.Reason != StopLoopExhausted {
		t.Error("Default max loops should fire at 3")
	}
}

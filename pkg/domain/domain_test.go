package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCombineHooks(t *testing.T) {
	var calls []string

	a := Hooks{
		OnCommand:     func(cmd Command) { calls = append(calls, "a:"+CommandName(cmd)) },
		OnStateChange: func(from, to SessionState) { calls = append(calls, fmt.Sprintf("a:%s->%s", from, to)) },
	}
	b := Hooks{
		OnCommand: func(cmd Command) { calls = append(calls, "b:"+CommandName(cmd)) },
		OnMessage: func(msg Message) { calls = append(calls, "b:"+MessageKind(msg)) },
	}

	h := CombineHooks(a, Hooks{}, b)
	h.OnCommand(Stop{})
	h.OnMessage(ReadyOk{})
	h.OnStateChange(StateAnalyzing, StateStopping)

	assert.Equal(t, []string{"a:stop", "b:stop", "b:readyok", "a:analyzing->stopping"}, calls)
}

func TestTransitionError(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", &TransitionError{Op: "stop", State: StateIdle})

	assert.True(t, errors.Is(err, ErrInvalidTransition))
	assert.False(t, errors.Is(err, ErrTerminated))
	assert.Contains(t, err.Error(), "stop not allowed while idle")

	terminated := &TransitionError{Op: "analyze", State: StateTerminated}
	assert.ErrorIs(t, terminated, ErrTerminated)
	assert.ErrorIs(t, terminated, ErrInvalidTransition)
}

func TestEngineError(t *testing.T) {
	err := &EngineError{Op: "write", Err: ErrEngineLost}

	assert.ErrorIs(t, err, ErrEngineLost)
	assert.Equal(t, "engine write: engine lost", err.Error())
}

func TestSnapshot(t *testing.T) {
	var empty Snapshot
	_, ok := empty.Best()
	assert.False(t, ok)
	assert.Equal(t, 0, empty.Depth())

	s := Snapshot{Lines: []AnalysisLine{
		{Index: 1, Depth: 18, PV: []string{"e2e4"}},
		{Index: 2, Depth: 20, PV: []string{"d2d4"}},
	}}
	best, ok := s.Best()
	assert.True(t, ok)
	assert.Equal(t, 1, best.Index)
	assert.Equal(t, 20, s.Depth())
}

func TestAnalysisLine_Clone(t *testing.T) {
	line := AnalysisLine{Index: 1, PV: []string{"e2e4", "e7e5"}}
	clone := line.Clone()
	clone.PV[0] = "d2d4"

	assert.Equal(t, "e2e4", line.PV[0])
}

func TestSessionState_MarshalText(t *testing.T) {
	for _, s := range AllStates {
		text, err := s.MarshalText()
		assert.NoError(t, err)
		assert.Equal(t, s.String(), string(text))
	}
	assert.Equal(t, "unknown", SessionState(42).String())
}

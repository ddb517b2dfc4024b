package domain

import (
	"errors"
	"fmt"
)

// ErrSpawn is returned when the engine executable is missing or cannot be started.
var ErrSpawn = errors.New("engine spawn failed")

// ErrEngineLost is returned when the engine pipes break or the process exits.
var ErrEngineLost = errors.New("engine lost")

// ErrInvalidTransition is returned when an operation is not allowed in the current session state.
// No command reaches the engine in that case.
var ErrInvalidTransition = errors.New("invalid session transition")

// ErrTerminated is returned by operations on a session that has already terminated.
var ErrTerminated = errors.New("session terminated")

// ErrHandshakeTimeout is returned when the engine does not answer readyok in time.
var ErrHandshakeTimeout = errors.New("engine handshake timeout")

// ErrInvalidPosition is returned when a FEN or move list is rejected by the rules provider.
var ErrInvalidPosition = errors.New("invalid position")

// EngineError records the operation that failed while talking to the engine.
type EngineError struct {
	Op  string
	Err error
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("engine %s: %v", e.Op, e.Err)
}

func (e *EngineError) Unwrap() error {
	return e.Err
}

// TransitionError explains which operation was rejected in which state.
// It matches ErrInvalidTransition, and also ErrTerminated when the state is StateTerminated.
type TransitionError struct {
	Op    string
	State SessionState
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s not allowed while %s", e.Op, e.State)
}

func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition || (target == ErrTerminated && e.State == StateTerminated)
}

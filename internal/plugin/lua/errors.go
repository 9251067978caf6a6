package lua

import (
	"errors"
	"fmt"
)

// Errors for Lua state operations.
var (
	// ErrStateClosed is returned when operating on a closed state.
	ErrStateClosed = errors.New("lua: state is closed")

	// ErrExecutionTimeout is returned when execution times out.
	ErrExecutionTimeout = errors.New("lua: execution timeout")

	// ErrInstructionLimit is returned when a script calls into the host too often.
	ErrInstructionLimit = errors.New("lua: instruction limit exceeded")

	// ErrActionNotFound is returned when no script registered the action.
	ErrActionNotFound = errors.New("lua: action not found")

	// ErrInvalidReturn is returned when an action function returns something
	// other than a string or a result table.
	ErrInvalidReturn = errors.New("lua: invalid action return value")
)

// ScriptError wraps a failure raised while running a scripted action.
type ScriptError struct {
	Action string
	Err    error
}

func (e *ScriptError) Error() string {
	return fmt.Sprintf("lua: action %q: %v", e.Action, e.Err)
}

func (e *ScriptError) Unwrap() error {
	return e.Err
}

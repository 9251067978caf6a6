// Package handler provides the handler interface and types for action dispatch.
package handler

import (
	"github.com/dshills/markstorm/internal/dispatcher/execctx"
	"github.com/dshills/markstorm/internal/input"
)

// Handler processes a specific action or set of actions.
type Handler interface {
	// Handle executes the action and returns a result.
	Handle(action input.Action, ctx *execctx.ExecutionContext) Result

	// CanHandle returns true if this handler can process the action.
	CanHandle(actionName string) bool

	// Priority returns the handler priority (higher = checked first).
	Priority() int
}

// HandlerFunc is a function adapter for Handler interface.
// It allows using a simple function as a Handler.
type HandlerFunc struct {
	fn   func(action input.Action, ctx *execctx.ExecutionContext) Result
	prio int
}

// NewHandlerFunc creates a HandlerFunc from a function.
func NewHandlerFunc(fn func(action input.Action, ctx *execctx.ExecutionContext) Result) *HandlerFunc {
	return &HandlerFunc{fn: fn}
}

// NewHandlerFuncWithPriority creates a HandlerFunc with a specified priority.
func NewHandlerFuncWithPriority(fn func(action input.Action, ctx *execctx.ExecutionContext) Result, priority int) *HandlerFunc {
	return &HandlerFunc{fn: fn, prio: priority}
}

// Handle implements Handler.Handle.
func (f *HandlerFunc) Handle(action input.Action, ctx *execctx.ExecutionContext) Result {
	if f.fn == nil {
		return Errorf("handler function is nil")
	}
	return f.fn(action, ctx)
}

// CanHandle implements Handler.CanHandle.
// HandlerFunc always returns true; the registry decides routing.
func (f *HandlerFunc) CanHandle(actionName string) bool {
	return true
}

// Priority implements Handler.Priority.
func (f *HandlerFunc) Priority() int {
	return f.prio
}

// SimpleHandler wraps a function with an explicit action name.
type SimpleHandler struct {
	// ActionName is the name of the action this handler processes.
	ActionName string

	// Fn is the handler function.
	Fn func(action input.Action, ctx *execctx.ExecutionContext) Result

	// Prio is the handler priority.
	Prio int
}

// Handle implements Handler.Handle.
func (h *SimpleHandler) Handle(action input.Action, ctx *execctx.ExecutionContext) Result {
	if h.Fn == nil {
		return Errorf("handler function is nil")
	}
	return h.Fn(action, ctx)
}

// CanHandle implements Handler.CanHandle.
func (h *SimpleHandler) CanHandle(actionName string) bool {
	return actionName == h.ActionName
}

// Priority implements Handler.Priority.
func (h *SimpleHandler) Priority() int {
	return h.Prio
}

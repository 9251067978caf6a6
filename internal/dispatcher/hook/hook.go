package hook

import (
	"github.com/dshills/markstorm/internal/dispatcher/execctx"
	"github.com/dshills/markstorm/internal/dispatcher/handler"
	"github.com/dshills/markstorm/internal/input"
)

// Hook is implemented by every dispatch hook.
//
// Name identifies the hook; registering a second hook under the same name
// replaces the first. Priority orders hooks, see the Priority constants.
// Script-provided hooks should stay between 100 and 499.
type Hook interface {
	Name() string
	Priority() int
}

// PreDispatchHook runs before the handler. It may adjust the action or the
// selection in ctx, and returns false to cancel the action.
type PreDispatchHook interface {
	Hook
	PreDispatch(action *input.Action, ctx *execctx.ExecutionContext) bool
}

// PostDispatchHook runs after the handler, whatever its status, and may
// rewrite the result.
type PostDispatchHook interface {
	Hook
	PostDispatch(action *input.Action, ctx *execctx.ExecutionContext, result *handler.Result)
}

type named struct {
	name     string
	priority int
}

func (n named) Name() string  { return n.name }
func (n named) Priority() int { return n.priority }

// PreDispatchFunc adapts a function to PreDispatchHook. A nil function lets
// every action through.
type PreDispatchFunc struct {
	named
	fn func(action *input.Action, ctx *execctx.ExecutionContext) bool
}

// NewPreDispatchFunc creates a pre-dispatch hook from fn.
func NewPreDispatchFunc(name string, priority int, fn func(action *input.Action, ctx *execctx.ExecutionContext) bool) *PreDispatchFunc {
	return &PreDispatchFunc{named: named{name, priority}, fn: fn}
}

// PreDispatch implements PreDispatchHook.
func (f *PreDispatchFunc) PreDispatch(action *input.Action, ctx *execctx.ExecutionContext) bool {
	return f.fn == nil || f.fn(action, ctx)
}

// PostDispatchFunc adapts a function to PostDispatchHook.
type PostDispatchFunc struct {
	named
	fn func(action *input.Action, ctx *execctx.ExecutionContext, result *handler.Result)
}

// NewPostDispatchFunc creates a post-dispatch hook from fn.
func NewPostDispatchFunc(name string, priority int, fn func(action *input.Action, ctx *execctx.ExecutionContext, result *handler.Result)) *PostDispatchFunc {
	return &PostDispatchFunc{named: named{name, priority}, fn: fn}
}

// PostDispatch implements PostDispatchHook.
func (f *PostDispatchFunc) PostDispatch(action *input.Action, ctx *execctx.ExecutionContext, result *handler.Result) {
	if f.fn != nil {
		f.fn(action, ctx, result)
	}
}

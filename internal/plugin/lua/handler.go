package lua

import (
	"context"

	"github.com/dshills/markstorm/internal/dispatcher/execctx"
	"github.com/dshills/markstorm/internal/dispatcher/handler"
	"github.com/dshills/markstorm/internal/input"
)

// Registrar accepts handlers for action names.
type Registrar interface {
	RegisterHandler(actionName string, h handler.Handler)
}

// Handler dispatches scripted actions.
type Handler struct {
	runtime *Runtime
}

// NewHandler creates a handler backed by rt.
func NewHandler(rt *Runtime) *Handler {
	return &Handler{runtime: rt}
}

// Register binds every scripted action to reg. Registering after the
// built-in handlers lets a script override a built-in action.
func (h *Handler) Register(reg Registrar) []string {
	names := h.runtime.Actions()
	for _, name := range names {
		reg.RegisterHandler(name, h)
	}
	return names
}

// Handle implements handler.Handler.
func (h *Handler) Handle(action input.Action, ctx *execctx.ExecutionContext) handler.Result {
	st, err := ctx.State()
	if err != nil {
		return handler.Error(err)
	}

	c, ok, err := h.runtime.Run(context.Background(), action.Name, st, action.Args.Extra)
	if err != nil {
		return handler.Error(err)
	}
	if !ok {
		return handler.NoOpWithMessage("script made no change")
	}

	c.Apply(ctx.Selection)

	return handler.SuccessWithEdit(handler.Edit{
		Range:     c.Range,
		NewText:   c.Text,
		OldText:   st.Selected(),
		Selection: c.Selection,
	})
}

// CanHandle implements handler.Handler.
func (h *Handler) CanHandle(actionName string) bool {
	return h.runtime.Has(actionName)
}

// Priority implements handler.Handler.
func (h *Handler) Priority() int {
	return 0
}

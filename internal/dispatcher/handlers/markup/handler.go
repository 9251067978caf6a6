package markup

import (
	"fmt"

	"github.com/dshills/markstorm/internal/dispatcher/execctx"
	"github.com/dshills/markstorm/internal/dispatcher/handler"
	"github.com/dshills/markstorm/internal/engine/selection"
	"github.com/dshills/markstorm/internal/input"
	"github.com/dshills/markstorm/internal/markup"
)

// Handler handles every built-in markup action.
type Handler struct {
	pending *pendingTable
}

// NewHandler creates a markup handler.
func NewHandler() *Handler {
	return &Handler{pending: newPendingTable()}
}

// Actions returns the action names this handler serves.
func (h *Handler) Actions() []string {
	return markup.Names()
}

// CanHandle returns true for built-in markup actions.
func (h *Handler) CanHandle(actionName string) bool {
	_, ok := markup.Lookup(actionName)
	return ok
}

// Priority implements handler.Handler.
func (h *Handler) Priority() int {
	return 0
}

// Handle runs the markup action against the context's selection.
func (h *Handler) Handle(action input.Action, ctx *execctx.ExecutionContext) handler.Result {
	a, ok := markup.Lookup(action.Name)
	if !ok {
		return handler.Error(&markup.UnknownActionError{Name: action.Name})
	}
	if a.IsPrompt() {
		return h.prompt(a, action, ctx)
	}
	return h.transform(a, ctx)
}

func (h *Handler) transform(a markup.Action, ctx *execctx.ExecutionContext) handler.Result {
	if err := ctx.Validate(); err != nil {
		return handler.Error(err)
	}

	out := a.Run(markup.StateOf(ctx.Selection), ctx.Options)
	return handler.SuccessWithEdit(applyChange(ctx.Selection, out.Change))
}

func (h *Handler) prompt(a markup.Action, action input.Action, ctx *execctx.ExecutionContext) handler.Result {
	if err := ctx.ValidateForPrompt(); err != nil {
		return handler.Error(err)
	}

	stored := ctx.Selection.Store()
	out := a.Run(markup.NewState(ctx.Selection.Value(), stored), ctx.Options)
	req := out.Request
	if action.Args.Title != "" {
		req.Seed.Title = action.Args.Title
	}
	if action.Args.URL != "" {
		req.Seed.URL = action.Args.URL
	}

	p := h.pending.open(a.Name, req, ctx.Selection, ctx.Previewer)
	ctx.Collector.Collect(req, func(meta markup.Metadata) error {
		return h.pending.resolve(p, meta)
	})

	state, edit := h.pending.settle(p)
	switch state {
	case settledResolved:
		return handler.SuccessWithEdit(edit).WithData(handler.DataRequestID, p.id)
	case settledCancelled:
		return handler.CancelledWithMessage(fmt.Sprintf("%s cancelled", a.Name))
	default:
		return handler.AsyncWithMessage(fmt.Sprintf("%s waiting for metadata", a.Name)).
			WithData(handler.DataRequestID, p.id).
			WithData(handler.DataRequestKind, req.Kind.String())
	}
}

// Resume completes the pending request id with meta.
// Incomplete metadata returns a *markup.MetadataError and leaves the request
// pending.
func (h *Handler) Resume(id string, meta markup.Metadata) (handler.Edit, error) {
	p, ok := h.pending.get(id)
	if !ok {
		return handler.Edit{}, fmt.Errorf("%w: %s", ErrRequestNotFound, id)
	}
	if err := h.pending.resolve(p, meta); err != nil {
		return handler.Edit{}, err
	}
	_, edit := h.pending.settle(p)
	return edit, nil
}

// Cancel drops the pending request id without touching the buffer.
func (h *Handler) Cancel(id string) error {
	if !h.pending.cancel(id) {
		return fmt.Errorf("%w: %s", ErrRequestNotFound, id)
	}
	return nil
}

// Pending returns the open request with the given id.
func (h *Handler) Pending(id string) (*markup.Request, bool) {
	p, ok := h.pending.get(id)
	if !ok {
		return nil, false
	}
	return p.req, true
}

// PendingIDs returns the ids of all open requests, sorted.
func (h *Handler) PendingIDs() []string {
	return h.pending.ids()
}

// applyChange performs c through sel and records it as an edit. The buffer
// may have changed since c was computed, so the recorded ranges are the
// clamped ones the host actually received.
func applyChange(sel *selection.Selection, c markup.Change) handler.Edit {
	before := markup.NewState(sel.Value(), c.Range)
	c.Apply(sel)
	return handler.Edit{
		Range:     before.Selection,
		NewText:   c.Text,
		OldText:   before.Selected(),
		Selection: sel.Get(),
	}
}

package hook

import (
	"time"

	"github.com/dshills/markstorm/internal/dispatcher/execctx"
	"github.com/dshills/markstorm/internal/dispatcher/handler"
	"github.com/dshills/markstorm/internal/input"
)

// Standard hook priorities.
const (
	PriorityAudit      = 1000 // Runs first (pre) / last (post)
	PriorityFilter     = 900  // Reject disabled actions early
	PriorityValidation = 800  // Validate before processing
	PriorityTrim       = 600  // Adjust the selection before the action reads it
	PriorityPreview    = 100  // Refresh the preview after edits
)

// Logger is the interface for logging hooks.
// Messages are printf-style format strings.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}

// AuditHook logs all dispatched actions for debugging and audit trails.
type AuditHook struct {
	logger Logger
}

// NewAuditHook creates an audit hook with the given logger.
func NewAuditHook(logger Logger) *AuditHook {
	return &AuditHook{logger: logger}
}

// Name implements Hook.
func (h *AuditHook) Name() string { return "audit" }

// Priority implements Hook.
func (h *AuditHook) Priority() int { return PriorityAudit }

// PreDispatch logs the action being dispatched.
func (h *AuditHook) PreDispatch(action *input.Action, ctx *execctx.ExecutionContext) bool {
	if h.logger == nil {
		return true
	}
	sel := "none"
	if ctx.Selection != nil {
		sel = ctx.Selection.Get().String()
	}
	h.logger.Debug("dispatch start: action=%s source=%s selection=%s", action.Name, action.Source, sel)
	return true
}

// PostDispatch logs the dispatch result.
func (h *AuditHook) PostDispatch(action *input.Action, ctx *execctx.ExecutionContext, result *handler.Result) {
	if h.logger == nil {
		return
	}

	switch result.Status {
	case handler.StatusError:
		h.logger.Error("dispatch failed: action=%s error=%v", action.Name, result.Error)
	case handler.StatusAsync:
		h.logger.Info("dispatch waiting for metadata: action=%s request=%s",
			action.Name, result.GetDataString(handler.DataRequestID))
	default:
		h.logger.Debug("dispatch complete: action=%s status=%s edits=%d",
			action.Name, result.Status, len(result.Edits))
	}
}

// TrimSelectionHook drops a single trailing space from the selection before
// every action, so double-click word selections wrap cleanly.
type TrimSelectionHook struct{}

// NewTrimSelectionHook creates a trailing-space trim hook.
func NewTrimSelectionHook() *TrimSelectionHook {
	return &TrimSelectionHook{}
}

// Name implements Hook.
func (h *TrimSelectionHook) Name() string { return "trim-selection" }

// Priority implements Hook.
func (h *TrimSelectionHook) Priority() int { return PriorityTrim }

// PreDispatch trims the selection.
func (h *TrimSelectionHook) PreDispatch(action *input.Action, ctx *execctx.ExecutionContext) bool {
	if ctx.Selection != nil {
		ctx.Selection.TrimTrailingSpace()
	}
	return true
}

// PreviewHook refreshes the preview after every action that edited the buffer.
type PreviewHook struct{}

// NewPreviewHook creates a preview refresh hook.
func NewPreviewHook() *PreviewHook {
	return &PreviewHook{}
}

// Name implements Hook.
func (h *PreviewHook) Name() string { return "preview" }

// Priority implements Hook.
func (h *PreviewHook) Priority() int { return PriorityPreview }

// PostDispatch signals "content changed" to the previewer.
func (h *PreviewHook) PostDispatch(action *input.Action, ctx *execctx.ExecutionContext, result *handler.Result) {
	if result.IsOK() && result.Changed() {
		ctx.Refresh()
	}
}

// ValidationHook validates actions before dispatch using a custom function.
// The rejection reason is kept in the context under ValidationErrorKey.
type ValidationHook struct {
	name     string
	priority int
	validate func(action *input.Action, ctx *execctx.ExecutionContext) error
}

// ValidationErrorKey is the context data key holding a validation failure.
const ValidationErrorKey = "validation_error"

// NewValidationHook creates a validation hook.
func NewValidationHook(name string, priority int, validate func(*input.Action, *execctx.ExecutionContext) error) *ValidationHook {
	return &ValidationHook{
		name:     name,
		priority: priority,
		validate: validate,
	}
}

// Name implements Hook.
func (h *ValidationHook) Name() string { return h.name }

// Priority implements Hook.
func (h *ValidationHook) Priority() int { return h.priority }

// PreDispatch validates the action and cancels if invalid.
func (h *ValidationHook) PreDispatch(action *input.Action, ctx *execctx.ExecutionContext) bool {
	if h.validate == nil {
		return true
	}
	if err := h.validate(action, ctx); err != nil {
		ctx.SetData(ValidationErrorKey, err)
		return false
	}
	return true
}

// ActionFilterHook blocks a fixed set of action names.
type ActionFilterHook struct {
	blocked map[string]struct{}
}

// NewActionFilterHook creates a hook that cancels the named actions.
func NewActionFilterHook(blocked ...string) *ActionFilterHook {
	h := &ActionFilterHook{blocked: make(map[string]struct{}, len(blocked))}
	for _, name := range blocked {
		h.blocked[name] = struct{}{}
	}
	return h
}

// Name implements Hook.
func (h *ActionFilterHook) Name() string { return "action-filter" }

// Priority implements Hook.
func (h *ActionFilterHook) Priority() int { return PriorityFilter }

// PreDispatch cancels blocked actions.
func (h *ActionFilterHook) PreDispatch(action *input.Action, ctx *execctx.ExecutionContext) bool {
	_, blocked := h.blocked[action.Name]
	return !blocked
}

// TimingHook measures action execution time.
// Start times are stored on the ExecutionContext so cancelled dispatches
// leave nothing behind.
type TimingHook struct {
	callback func(action string, duration time.Duration)
}

// timingStartKey is the context data key for timing start time.
const timingStartKey = "_timing_start"

// NewTimingHook creates a timing hook.
func NewTimingHook(callback func(action string, duration time.Duration)) *TimingHook {
	return &TimingHook{callback: callback}
}

// Name implements Hook.
func (h *TimingHook) Name() string { return "timing" }

// Priority implements Hook.
func (h *TimingHook) Priority() int { return PriorityAudit }

// PreDispatch records the start time on the context.
func (h *TimingHook) PreDispatch(action *input.Action, ctx *execctx.ExecutionContext) bool {
	ctx.SetData(timingStartKey, time.Now())
	return true
}

// PostDispatch calculates and reports the duration.
func (h *TimingHook) PostDispatch(action *input.Action, ctx *execctx.ExecutionContext, result *handler.Result) {
	startVal, ok := ctx.GetData(timingStartKey)
	if !ok {
		return
	}
	start, ok := startVal.(time.Time)
	if ok && h.callback != nil {
		h.callback(action.Name, time.Since(start))
	}
}

// Package execctx provides the execution context for action handlers.
package execctx

import (
	"github.com/dshills/markstorm/internal/engine/selection"
	"github.com/dshills/markstorm/internal/markup"
)

// MetadataCollector obtains title and url for image and link actions.
//
// Collect may call done synchronously, later, or never (cancellation).
// A non-nil error from done means the metadata was rejected and the
// collector may prompt again with the same request.
type MetadataCollector interface {
	Collect(req *markup.Request, done func(meta markup.Metadata) error)
}

// MetadataCollectorFunc adapts a function to MetadataCollector.
type MetadataCollectorFunc func(req *markup.Request, done func(meta markup.Metadata) error)

// Collect implements MetadataCollector.
func (f MetadataCollectorFunc) Collect(req *markup.Request, done func(meta markup.Metadata) error) {
	f(req, done)
}

// PreviewRenderer is notified with the full buffer after content changes.
type PreviewRenderer interface {
	Refresh(content string)
}

// PreviewRendererFunc adapts a function to PreviewRenderer.
type PreviewRendererFunc func(content string)

// Refresh implements PreviewRenderer.
func (f PreviewRendererFunc) Refresh(content string) {
	f(content)
}

// ExecutionContext provides context for action execution.
// It carries the collaborators injected into the dispatcher.
type ExecutionContext struct {
	// Selection is the selection adapter over the host buffer.
	Selection *selection.Selection

	// Collector supplies metadata for prompt actions.
	Collector MetadataCollector

	// Previewer receives "content changed" notifications.
	Previewer PreviewRenderer

	// Options configures the markup actions.
	Options markup.Options

	// Data holds handler-specific context data.
	Data map[string]interface{}
}

// New creates a new execution context with default markup options.
func New() *ExecutionContext {
	return &ExecutionContext{
		Options: markup.DefaultOptions(),
		Data:    make(map[string]interface{}),
	}
}

// WithSelection returns the context with the selection set.
func (ctx *ExecutionContext) WithSelection(sel *selection.Selection) *ExecutionContext {
	ctx.Selection = sel
	return ctx
}

// WithCollector returns the context with the metadata collector set.
func (ctx *ExecutionContext) WithCollector(c MetadataCollector) *ExecutionContext {
	ctx.Collector = c
	return ctx
}

// WithPreviewer returns the context with the preview renderer set.
func (ctx *ExecutionContext) WithPreviewer(p PreviewRenderer) *ExecutionContext {
	ctx.Previewer = p
	return ctx
}

// WithOptions returns the context with markup options set.
func (ctx *ExecutionContext) WithOptions(opts markup.Options) *ExecutionContext {
	ctx.Options = opts
	return ctx
}

// State returns the markup state of the current selection.
func (ctx *ExecutionContext) State() (markup.State, error) {
	if ctx.Selection == nil {
		return markup.State{}, ErrMissingSelection
	}
	return markup.StateOf(ctx.Selection), nil
}

// HasSelection returns true if a non-empty range is selected.
func (ctx *ExecutionContext) HasSelection() bool {
	return ctx.Selection != nil && ctx.Selection.IsSelected()
}

// Refresh signals that the buffer content changed.
func (ctx *ExecutionContext) Refresh() {
	if ctx.Previewer == nil || ctx.Selection == nil {
		return
	}
	ctx.Previewer.Refresh(ctx.Selection.Value())
}

// SetData sets a context data value.
func (ctx *ExecutionContext) SetData(key string, value interface{}) {
	if ctx.Data == nil {
		ctx.Data = make(map[string]interface{})
	}
	ctx.Data[key] = value
}

// GetData retrieves a context data value.
func (ctx *ExecutionContext) GetData(key string) (interface{}, bool) {
	if ctx.Data == nil {
		return nil, false
	}
	v, ok := ctx.Data[key]
	return v, ok
}

// GetDataString retrieves a string value from context data.
func (ctx *ExecutionContext) GetDataString(key string) string {
	if v, ok := ctx.GetData(key); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// GetDataBool retrieves a bool value from context data.
func (ctx *ExecutionContext) GetDataBool(key string) bool {
	if v, ok := ctx.GetData(key); ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return false
}

// Validate checks that the context can run an edit.
func (ctx *ExecutionContext) Validate() error {
	if ctx.Selection == nil {
		return ErrMissingSelection
	}
	return nil
}

// ValidateForPrompt checks that the context can run a prompt action.
func (ctx *ExecutionContext) ValidateForPrompt() error {
	if err := ctx.Validate(); err != nil {
		return err
	}
	if ctx.Collector == nil {
		return ErrMissingCollector
	}
	return nil
}

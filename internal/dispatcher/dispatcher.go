package dispatcher

import (
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/dshills/markstorm/internal/dispatcher/execctx"
	"github.com/dshills/markstorm/internal/dispatcher/handler"
	"github.com/dshills/markstorm/internal/dispatcher/hook"
	"github.com/dshills/markstorm/internal/engine/selection"
	"github.com/dshills/markstorm/internal/input"
	"github.com/dshills/markstorm/internal/markup"
)

// Dispatcher routes actions to handlers and coordinates execution.
type Dispatcher struct {
	mu sync.RWMutex

	registry *Registry

	// Injected collaborators
	collector execctx.MetadataCollector
	previewer execctx.PreviewRenderer
	options   markup.Options

	config  Config
	metrics *Metrics

	hookManager *hook.Manager
}

// New creates a new dispatcher with the given configuration.
func New(config Config) *Dispatcher {
	d := &Dispatcher{
		registry: NewRegistry(),
		options:  markup.DefaultOptions(),
		config:   config,
	}

	if config.EnableMetrics {
		d.metrics = NewMetrics()
	}

	return d
}

// NewWithDefaults creates a new dispatcher with default configuration.
func NewWithDefaults() *Dispatcher {
	return New(DefaultConfig())
}

// SetCollector sets the metadata collector used by image and link.
func (d *Dispatcher) SetCollector(c execctx.MetadataCollector) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.collector = c
}

// SetPreviewer sets the renderer notified when content changes.
func (d *Dispatcher) SetPreviewer(p execctx.PreviewRenderer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.previewer = p
}

// SetOptions sets the markup options passed to handlers.
func (d *Dispatcher) SetOptions(opts markup.Options) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.options = opts
}

// Collector returns the metadata collector.
func (d *Dispatcher) Collector() execctx.MetadataCollector {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.collector
}

// Previewer returns the preview renderer.
func (d *Dispatcher) Previewer() execctx.PreviewRenderer {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.previewer
}

// Options returns the markup options.
func (d *Dispatcher) Options() markup.Options {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.options
}

// Dispatch executes action against sel.
//
// The handler is looked up before any hook runs: an unknown action returns
// an error result wrapping *UnknownActionError and leaves the buffer and
// selection untouched.
func (d *Dispatcher) Dispatch(action input.Action, sel *selection.Selection) handler.Result {
	startTime := time.Now()

	if action.Name == "" {
		return handler.Error(ErrInvalidAction)
	}

	h := d.registry.Get(action.Name)
	if h == nil {
		result := handler.Error(&UnknownActionError{Name: action.Name})
		d.record(action.Name, startTime, result.Status)
		return result
	}

	ctx := d.buildContext(sel)

	if name, ok := d.runPreHooks(&action, ctx); !ok {
		result := handler.CancelledWithMessage(fmt.Sprintf("%s cancelled by hook %q", action.Name, name))
		if v, ok := ctx.GetData(hook.ValidationErrorKey); ok {
			if err, ok := v.(error); ok {
				result.Error = err
			}
		}
		if result.Error == nil {
			result.Error = ErrActionCancelled
		}
		d.record(action.Name, startTime, result.Status)
		return result
	}

	var result handler.Result
	if d.config.RecoverFromPanic {
		result = d.executeWithRecovery(h, action, ctx)
	} else {
		result = h.Handle(action, ctx)
	}

	d.runPostHooks(&action, ctx, &result)
	d.record(action.Name, startTime, result.Status)

	return result
}

// executeWithRecovery executes a handler with panic recovery.
func (d *Dispatcher) executeWithRecovery(h handler.Handler, action input.Action, ctx *execctx.ExecutionContext) (result handler.Result) {
	defer func() {
		if r := recover(); r != nil {
			stack := make([]byte, 4096)
			n := runtime.Stack(stack, false)

			result = handler.Error(fmt.Errorf("%w for %s: %v\n%s", ErrPanic, action.Name, r, string(stack[:n])))

			if d.metrics != nil {
				d.metrics.RecordPanic(action.Name)
			}
		}
	}()

	return h.Handle(action, ctx)
}

// buildContext builds an execution context from current state.
func (d *Dispatcher) buildContext(sel *selection.Selection) *execctx.ExecutionContext {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return execctx.New().
		WithSelection(sel).
		WithCollector(d.collector).
		WithPreviewer(d.previewer).
		WithOptions(d.options)
}

func (d *Dispatcher) record(actionName string, start time.Time, status handler.ResultStatus) {
	if d.metrics != nil {
		d.metrics.RecordDispatch(actionName, time.Since(start), status)
	}
}

// RegisterHandler registers a handler for an exact action name.
func (d *Dispatcher) RegisterHandler(actionName string, h handler.Handler) {
	d.registry.Register(actionName, h)
}

// RegisterHandlerFunc registers a handler function for an action name.
func (d *Dispatcher) RegisterHandlerFunc(actionName string, fn func(input.Action, *execctx.ExecutionContext) handler.Result) {
	d.registry.Register(actionName, handler.NewHandlerFunc(fn))
}

// UnregisterHandler removes a handler for an action name.
func (d *Dispatcher) UnregisterHandler(actionName string) {
	d.registry.Unregister(actionName)
}

// runPreHooks runs all pre-dispatch hooks and reports the hook that
// cancelled the action, if any.
func (d *Dispatcher) runPreHooks(action *input.Action, ctx *execctx.ExecutionContext) (string, bool) {
	manager := d.HookManager()
	if manager == nil {
		return "", true
	}
	return manager.RunPreDispatch(action, ctx)
}

// runPostHooks runs all post-dispatch hooks.
func (d *Dispatcher) runPostHooks(action *input.Action, ctx *execctx.ExecutionContext, result *handler.Result) {
	if manager := d.HookManager(); manager != nil {
		manager.RunPostDispatch(action, ctx, result)
	}
}

// Registry returns the handler registry.
func (d *Dispatcher) Registry() *Registry {
	return d.registry
}

// Metrics returns the metrics collector (may be nil if disabled).
func (d *Dispatcher) Metrics() *Metrics {
	return d.metrics
}

// Config returns the dispatcher configuration.
func (d *Dispatcher) Config() Config {
	return d.config
}

// HookManager returns the hook manager (may be nil).
func (d *Dispatcher) HookManager() *hook.Manager {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.hookManager
}

// SetHookManager sets the hook manager.
func (d *Dispatcher) SetHookManager(manager *hook.Manager) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.hookManager = manager
}

// EnableHookManager creates and sets a new hook manager if not already set.
// Returns the hook manager.
func (d *Dispatcher) EnableHookManager() *hook.Manager {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.hookManager == nil {
		d.hookManager = hook.NewManager()
	}
	return d.hookManager
}

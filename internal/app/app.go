// Package app wires the markstorm components into an Editor.
//
// An Editor owns the configuration, the dispatcher system with the built-in
// markup actions, the optional HTML preview and the optional Lua script
// runtime. Documents are passed to Dispatch; the editor itself holds no text.
package app

import (
	"context"
	"io"
	"sync"

	"github.com/dshills/markstorm/internal/config"
	"github.com/dshills/markstorm/internal/config/notify"
	"github.com/dshills/markstorm/internal/dispatcher"
	"github.com/dshills/markstorm/internal/dispatcher/execctx"
	"github.com/dshills/markstorm/internal/dispatcher/handler"
	"github.com/dshills/markstorm/internal/input"
	"github.com/dshills/markstorm/internal/input/fuzzy"
	"github.com/dshills/markstorm/internal/markup"
	"github.com/dshills/markstorm/internal/plugin/lua"
	"github.com/dshills/markstorm/internal/preview"
)

// Editor is the central coordinator for all markstorm components.
type Editor struct {
	mu sync.RWMutex

	logger  *Logger
	config  *config.Config
	system  *dispatcher.System
	preview *preview.Renderer
	scripts *lua.Runtime
	subs    []*notify.Subscription

	cancelWatch context.CancelFunc
	closed      bool

	opts Options
}

// Options configures the editor.
type Options struct {
	// ConfigPath is the configuration file. When empty, markstorm.toml,
	// markstorm.yaml and markstorm.yml are searched for in the working
	// directory and the user configuration directory.
	ConfigPath string

	// SkipConfigSearch disables the search when ConfigPath is empty.
	SkipConfigSearch bool

	// DisableEnv ignores MARKSTORM_* environment variables.
	DisableEnv bool

	// Watch reloads the configuration when its file changes.
	Watch bool

	// LogLevel overrides logging.level.
	LogLevel string

	// LogOutput receives log lines. Defaults to os.Stderr.
	LogOutput io.Writer

	// Preview enables the HTML preview regardless of preview.enabled.
	Preview bool

	// Metrics enables dispatch statistics regardless of dispatcher.metrics.
	Metrics bool

	// Scripts are Lua files loaded after plugins.scripts.
	Scripts []string

	// Collector answers image and link prompts. Defaults to SeedCollector.
	Collector execctx.MetadataCollector
}

// New creates an editor and initializes its components.
func New(ctx context.Context, opts Options) (*Editor, error) {
	ed := &Editor{opts: opts}

	if err := newBootstrapper(ed, opts).bootstrap(ctx); err != nil {
		return nil, err
	}

	if opts.Watch && ed.config.Path() != "" {
		watchCtx, cancel := context.WithCancel(context.Background())
		if err := ed.config.Watch(watchCtx); err != nil {
			cancel()
			_ = ed.Close()
			return nil, &InitError{Component: "config watch", Err: err}
		}
		ed.cancelWatch = cancel
	}

	ed.logger.Debug("editor ready with %d actions", len(ed.system.ListActions()))
	return ed, nil
}

// Dispatch runs action against doc's current selection.
func (ed *Editor) Dispatch(doc *Document, action input.Action) handler.Result {
	if doc == nil {
		return handler.Error(ErrNoDocument)
	}

	ed.mu.RLock()
	defer ed.mu.RUnlock()
	if ed.closed {
		return handler.Error(ErrClosed)
	}
	return ed.system.Dispatch(action, doc.Selection())
}

// DispatchAll runs actions in order on doc, each one reading the selection
// the previous one left. It stops after the first action that fails, is
// cancelled or waits for metadata.
func (ed *Editor) DispatchAll(doc *Document, actions []input.Action) []handler.Result {
	if doc == nil {
		return []handler.Result{handler.Error(ErrNoDocument)}
	}

	ed.mu.RLock()
	defer ed.mu.RUnlock()
	if ed.closed {
		return []handler.Result{handler.Error(ErrClosed)}
	}
	return ed.system.DispatchBatch(actions, doc.Selection(), true)
}

// Apply selects [start, end) in doc and runs the named action.
func (ed *Editor) Apply(doc *Document, name string, start, end int, args input.ActionArgs) handler.Result {
	if doc == nil {
		return handler.Error(ErrNoDocument)
	}
	doc.Select(start, end)

	action := input.NewAction(name, input.SourceAPI)
	action.Args = args
	return ed.Dispatch(doc, action)
}

// Resume completes a pending image or link request.
func (ed *Editor) Resume(id string, meta markup.Metadata) (handler.Edit, error) {
	ed.mu.RLock()
	defer ed.mu.RUnlock()
	if ed.closed {
		return handler.Edit{}, ErrClosed
	}
	return ed.system.Resume(id, meta)
}

// Cancel drops a pending request without touching the document.
func (ed *Editor) Cancel(id string) error {
	ed.mu.RLock()
	defer ed.mu.RUnlock()
	if ed.closed {
		return ErrClosed
	}
	return ed.system.Cancel(id)
}

// PendingRequests returns the ids of open image and link requests.
func (ed *Editor) PendingRequests() []string {
	return ed.system.PendingRequests()
}

// Actions returns every dispatchable action name, sorted.
func (ed *Editor) Actions() []string {
	return ed.system.ListActions()
}

// Suggest returns up to three action names close to name, best first.
func (ed *Editor) Suggest(name string) []string {
	return fuzzy.NewMatcher(fuzzy.DefaultOptions()).Suggest(name, ed.Actions(), 3)
}

// ScriptActions returns the actions defined by Lua scripts, sorted.
func (ed *Editor) ScriptActions() []string {
	if ed.scripts == nil {
		return nil
	}
	return ed.scripts.Actions()
}

// Logger returns the editor logger.
func (ed *Editor) Logger() *Logger {
	return ed.logger
}

// Config returns the editor configuration.
func (ed *Editor) Config() *config.Config {
	return ed.config
}

// System returns the dispatcher system.
func (ed *Editor) System() *dispatcher.System {
	return ed.system
}

// Metrics returns dispatch statistics. It is nil unless dispatcher.metrics
// or Options.Metrics is enabled.
func (ed *Editor) Metrics() *dispatcher.Metrics {
	return ed.system.Metrics()
}

// Preview returns the HTML preview, or nil when it is disabled.
func (ed *Editor) Preview() *preview.Renderer {
	return ed.preview
}

// Close stops watching the configuration and releases the script runtime.
func (ed *Editor) Close() error {
	ed.mu.Lock()
	if ed.closed {
		ed.mu.Unlock()
		return nil
	}
	ed.closed = true
	ed.mu.Unlock()

	errs := NewErrorList()
	if ed.cancelWatch != nil {
		ed.cancelWatch()
	}
	for _, sub := range ed.subs {
		sub.Unsubscribe()
	}
	if ed.scripts != nil {
		errs.Add(ed.scripts.Close())
	}
	if ed.config != nil {
		ed.config.Close()
	}
	return errs.AsError()
}

package dispatcher

import (
	"fmt"
	"strings"
	"time"

	"github.com/dshills/markstorm/internal/dispatcher/execctx"
	"github.com/dshills/markstorm/internal/dispatcher/handler"
	"github.com/dshills/markstorm/internal/dispatcher/handlers/markup"
	"github.com/dshills/markstorm/internal/dispatcher/hook"
	"github.com/dshills/markstorm/internal/engine/selection"
	"github.com/dshills/markstorm/internal/input"
	mk "github.com/dshills/markstorm/internal/markup"
)

// System provides a unified facade for the dispatcher subsystem.
// It wires the markup handler and the standard hooks into a dispatcher.
type System struct {
	dispatcher  *Dispatcher
	hookManager *hook.Manager

	markupHandler *markup.Handler
	auditHook     *hook.AuditHook

	config SystemConfig
}

// SystemConfig holds configuration for the dispatcher system.
type SystemConfig struct {
	// DispatcherConfig is the underlying dispatcher configuration.
	DispatcherConfig Config

	// Options configures the markup actions.
	Options mk.Options

	// TrimTrailingSpace drops a trailing space from the selection before
	// every action.
	TrimTrailingSpace bool

	// DisabledActions are cancelled before dispatch.
	DisabledActions []string

	// Logger receives audit logging and, with metrics enabled, per-action
	// timings. Nil disables both hooks.
	Logger hook.Logger
}

// DefaultSystemConfig returns a configuration with sensible defaults.
func DefaultSystemConfig() SystemConfig {
	return SystemConfig{
		DispatcherConfig:  DefaultConfig(),
		Options:           mk.DefaultOptions(),
		TrimTrailingSpace: true,
	}
}

// NewSystem creates a new dispatcher system with the given configuration.
func NewSystem(config SystemConfig) *System {
	s := &System{
		config:        config,
		dispatcher:    New(config.DispatcherConfig),
		markupHandler: markup.NewHandler(),
	}
	s.dispatcher.SetOptions(config.Options)

	s.registerHandlers()
	s.initializeHooks(config)

	return s
}

// NewSystemWithDefaults creates a system with default configuration.
func NewSystemWithDefaults() *System {
	return NewSystem(DefaultSystemConfig())
}

// registerHandlers registers the markup handler for every built-in action.
func (s *System) registerHandlers() {
	for _, name := range s.markupHandler.Actions() {
		s.dispatcher.RegisterHandler(name, s.markupHandler)
	}
}

// initializeHooks sets up the hook system.
func (s *System) initializeHooks(config SystemConfig) {
	s.hookManager = hook.NewManager()
	s.dispatcher.SetHookManager(s.hookManager)

	if config.Logger != nil {
		s.auditHook = hook.NewAuditHook(config.Logger)
		s.hookManager.Register(s.auditHook)

		if config.DispatcherConfig.EnableMetrics {
			logger := config.Logger
			s.hookManager.Register(hook.NewTimingHook(func(action string, d time.Duration) {
				logger.Debug("action %s took %s", action, d)
			}))
		}
	}

	s.hookManager.RegisterPre(hook.NewValidationHook("fence-language", hook.PriorityValidation, validateFenceLanguage))

	if len(config.DisabledActions) > 0 {
		s.hookManager.RegisterPre(hook.NewActionFilterHook(config.DisabledActions...))
	}

	if config.TrimTrailingSpace {
		s.hookManager.RegisterPre(hook.NewTrimSelectionHook())
	}

	s.hookManager.RegisterPost(hook.NewPreviewHook())
}

// validateFenceLanguage rejects sourcecode when the fence language would
// not fit on the opening fence line.
func validateFenceLanguage(action *input.Action, ctx *execctx.ExecutionContext) error {
	if action.Name != mk.ActionSourcecode {
		return nil
	}
	if lang := ctx.Options.FenceLanguage; strings.ContainsAny(lang, " \t\r\n`") {
		return fmt.Errorf("%w: %q", ErrInvalidFenceLanguage, lang)
	}
	return nil
}

// SetCollector sets the metadata collector used by image and link.
func (s *System) SetCollector(c execctx.MetadataCollector) {
	s.dispatcher.SetCollector(c)
}

// SetPreviewer sets the renderer notified when content changes.
func (s *System) SetPreviewer(p execctx.PreviewRenderer) {
	s.dispatcher.SetPreviewer(p)
}

// SetOptions replaces the markup options.
func (s *System) SetOptions(opts mk.Options) {
	s.dispatcher.SetOptions(opts)
}

// Dispatch executes an action against sel.
func (s *System) Dispatch(action input.Action, sel *selection.Selection) handler.Result {
	return s.dispatcher.Dispatch(action, sel)
}

// DispatchBatch executes actions in sequence against sel, each reading the
// selection the previous one left. With stopOnFailure set it stops after
// the first result that is neither ok nor no-op.
func (s *System) DispatchBatch(actions []input.Action, sel *selection.Selection, stopOnFailure bool) []handler.Result {
	results := make([]handler.Result, 0, len(actions))
	for _, action := range actions {
		result := s.Dispatch(action, sel)
		results = append(results, result)
		if stopOnFailure && result.Status != handler.StatusOK && result.Status != handler.StatusNoOp {
			break
		}
	}
	return results
}

// Resume completes a pending image or link request.
func (s *System) Resume(id string, meta mk.Metadata) (handler.Edit, error) {
	return s.markupHandler.Resume(id, meta)
}

// Cancel drops a pending image or link request.
func (s *System) Cancel(id string) error {
	return s.markupHandler.Cancel(id)
}

// PendingRequests returns the ids of open image and link requests.
func (s *System) PendingRequests() []string {
	return s.markupHandler.PendingIDs()
}

// Dispatcher returns the underlying dispatcher.
func (s *System) Dispatcher() *Dispatcher {
	return s.dispatcher
}

// HookManager returns the hook manager.
func (s *System) HookManager() *hook.Manager {
	return s.hookManager
}

// MarkupHandler returns the built-in markup handler.
func (s *System) MarkupHandler() *markup.Handler {
	return s.markupHandler
}

// Metrics returns the metrics collector (may be nil if disabled).
func (s *System) Metrics() *Metrics {
	return s.dispatcher.Metrics()
}

// RegisterHook registers a hook with the hook manager.
func (s *System) RegisterHook(h hook.Hook) {
	s.hookManager.Register(h)
}

// UnregisterHook removes a hook by name.
func (s *System) UnregisterHook(name string) bool {
	return s.hookManager.Unregister(name)
}

// RegisterHandler registers a handler for a specific action.
func (s *System) RegisterHandler(actionName string, h handler.Handler) {
	s.dispatcher.RegisterHandler(actionName, h)
}

// RegisterHandlerFunc registers a handler function for an action.
func (s *System) RegisterHandlerFunc(actionName string, fn func(input.Action, *execctx.ExecutionContext) handler.Result) {
	s.dispatcher.RegisterHandlerFunc(actionName, fn)
}

// CanHandle returns true if the system can handle the action.
func (s *System) CanHandle(actionName string) bool {
	return s.dispatcher.Registry().Has(actionName)
}

// ListActions returns all registered action names.
func (s *System) ListActions() []string {
	return s.dispatcher.Registry().List()
}

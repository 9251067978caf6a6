package app

import (
	"context"
	"time"

	"github.com/dshills/markstorm/internal/config"
	"github.com/dshills/markstorm/internal/config/notify"
	"github.com/dshills/markstorm/internal/dispatcher"
	"github.com/dshills/markstorm/internal/plugin/lua"
	"github.com/dshills/markstorm/internal/preview"
)

// bootstrapper handles component initialization with proper cleanup on failure.
type bootstrapper struct {
	ed        *Editor
	opts      Options
	initOrder []string
}

// newBootstrapper creates a new bootstrapper for the editor.
func newBootstrapper(ed *Editor, opts Options) *bootstrapper {
	return &bootstrapper{
		ed:        ed,
		opts:      opts,
		initOrder: make([]string, 0, 6),
	}
}

// bootstrap initializes all components in dependency order.
// On failure, it cleans up already-initialized components.
func (b *bootstrapper) bootstrap(ctx context.Context) error {
	steps := []func(context.Context) error{
		b.initLogger,
		b.initConfig,
		b.initDispatcher,
		b.initPreview,
		b.initScripts,
		b.initSubscriptions,
	}
	for _, step := range steps {
		if err := step(ctx); err != nil {
			b.cleanup()
			return err
		}
	}
	return nil
}

// initLogger creates the editor logger. The level is refined once the
// configuration is loaded.
func (b *bootstrapper) initLogger(context.Context) error {
	cfg := DefaultLoggerConfig()
	if b.opts.LogOutput != nil {
		cfg.Output = b.opts.LogOutput
	}
	if b.opts.LogLevel != "" {
		level, err := ParseLogLevel(b.opts.LogLevel)
		if err != nil {
			return &InitError{Component: "logger", Err: err}
		}
		cfg.Level = level
	}
	b.ed.logger = NewLogger(cfg)
	b.initOrder = append(b.initOrder, "logger")
	return nil
}

// initConfig loads the layered configuration.
func (b *bootstrapper) initConfig(ctx context.Context) error {
	path := b.opts.ConfigPath
	if path == "" && !b.opts.SkipConfigSearch {
		path = config.FindFile(config.SearchDirs()...)
	}

	configOpts := []config.Option{
		config.WithErrorHandler(func(err error) {
			b.ed.logger.WithComponent("config").Error("reload failed: %v", err)
		}),
	}
	if path != "" {
		configOpts = append(configOpts, config.WithFile(path))
	}
	if b.opts.DisableEnv {
		configOpts = append(configOpts, config.WithoutEnv())
	}

	cfg, err := config.Load(ctx, configOpts...)
	if err != nil {
		return &InitError{Component: "config", Err: err}
	}
	b.ed.config = cfg

	if b.opts.LogLevel == "" {
		b.ed.setLevel(cfg.Settings().Logging.Level)
	}
	if path != "" {
		b.ed.logger.Debug("config loaded from %s", path)
	}

	b.initOrder = append(b.initOrder, "config")
	return nil
}

// initDispatcher builds the dispatcher system from the settings.
func (b *bootstrapper) initDispatcher(context.Context) error {
	s := b.ed.config.Settings()

	sysConfig := dispatcher.DefaultSystemConfig()
	sysConfig.DispatcherConfig.EnableMetrics = s.Dispatcher.Metrics || b.opts.Metrics
	sysConfig.DispatcherConfig.RecoverFromPanic = s.Dispatcher.RecoverFromPanic
	sysConfig.Options = s.MarkupOptions()
	sysConfig.TrimTrailingSpace = s.Markup.TrimTrailingSpace
	sysConfig.DisabledActions = s.Dispatcher.DisabledActions
	sysConfig.Logger = b.ed.logger.WithComponent("dispatcher")

	b.ed.system = dispatcher.NewSystem(sysConfig)

	collector := b.opts.Collector
	if collector == nil {
		collector = SeedCollector{}
	}
	b.ed.system.SetCollector(collector)

	b.initOrder = append(b.initOrder, "dispatcher")
	return nil
}

// initPreview attaches the HTML preview when enabled.
func (b *bootstrapper) initPreview(context.Context) error {
	s := b.ed.config.Settings()
	if !s.Preview.Enabled && !b.opts.Preview {
		return nil
	}

	previewOpts := []preview.Option{preview.WithLogger(b.ed.logger.WithComponent("preview"))}
	if s.Preview.Highlight {
		previewOpts = append(previewOpts, preview.WithHighlight(s.Preview.Style))
	}
	b.ed.preview = preview.New(previewOpts...)
	b.ed.system.SetPreviewer(b.ed.preview)

	b.initOrder = append(b.initOrder, "preview")
	return nil
}

// initScripts loads the configured Lua scripts and registers their actions.
// Script actions are registered after the built-ins so they can override
// them.
func (b *bootstrapper) initScripts(ctx context.Context) error {
	s := b.ed.config.Settings()
	scripts := append(append([]string(nil), s.Plugins.Scripts...), b.opts.Scripts...)
	if len(scripts) == 0 {
		return nil
	}

	luaOpts := []lua.StateOption{
		lua.WithInstructionLimit(s.Plugins.InstructionLimit),
		lua.WithLogger(b.ed.logger.WithComponent("lua")),
	}
	if s.Plugins.TimeoutMS > 0 {
		luaOpts = append(luaOpts, lua.WithExecutionTimeout(time.Duration(s.Plugins.TimeoutMS)*time.Millisecond))
	}

	rt, err := lua.NewRuntime(luaOpts...)
	if err != nil {
		return &InitError{Component: "lua", Err: err}
	}
	b.ed.scripts = rt
	b.initOrder = append(b.initOrder, "scripts")

	rt.SetOptions(s.MarkupOptions())
	for _, path := range scripts {
		if err := rt.LoadFile(ctx, path); err != nil {
			return &InitError{Component: "lua", Err: err}
		}
	}

	names := lua.NewHandler(rt).Register(b.ed.system)
	b.ed.logger.Debug("registered %d script actions", len(names))
	return nil
}

// initSubscriptions applies configuration reloads to running components.
func (b *bootstrapper) initSubscriptions(context.Context) error {
	ed := b.ed
	ed.subs = append(ed.subs,
		ed.config.SubscribePath("markup", func(c notify.Change) {
			if c.Type != notify.ChangeReload {
				return
			}
			opts := ed.config.Settings().MarkupOptions()
			ed.system.SetOptions(opts)
			if ed.scripts != nil {
				ed.scripts.SetOptions(opts)
			}
		}),
		ed.config.SubscribePath("logging.level", func(c notify.Change) {
			if c.Type == notify.ChangeSet && b.opts.LogLevel == "" {
				ed.setLevel(ed.config.Settings().Logging.Level)
			}
		}),
	)
	b.initOrder = append(b.initOrder, "subscriptions")
	return nil
}

// cleanup releases components in reverse initialization order.
func (b *bootstrapper) cleanup() {
	for i := len(b.initOrder) - 1; i >= 0; i-- {
		b.cleanupComponent(b.initOrder[i])
	}
	b.initOrder = b.initOrder[:0]
}

func (b *bootstrapper) cleanupComponent(name string) {
	switch name {
	case "subscriptions":
		for _, sub := range b.ed.subs {
			sub.Unsubscribe()
		}
		b.ed.subs = nil
	case "scripts":
		if b.ed.scripts != nil {
			_ = b.ed.scripts.Close()
			b.ed.scripts = nil
		}
	case "preview":
		b.ed.preview = nil
	case "dispatcher":
		b.ed.system = nil
	case "config":
		if b.ed.config != nil {
			b.ed.config.Close()
			b.ed.config = nil
		}
	}
}

// setLevel applies a configured level name. Names are checked by
// config validation, so an unknown one leaves the level unchanged.
func (ed *Editor) setLevel(name string) {
	if level, err := ParseLogLevel(name); err == nil {
		ed.logger.SetLevel(level)
	}
}

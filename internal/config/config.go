package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sync"

	"github.com/dshills/markstorm/internal/config/loader"
	"github.com/dshills/markstorm/internal/config/notify"
	"github.com/dshills/markstorm/internal/config/watcher"
)

// FileNames are the configuration file names FindFile looks for, in order.
var FileNames = []string{"markstorm.toml", "markstorm.yaml", "markstorm.yml"}

// Config holds the merged configuration and notifies observers when a
// reload changes it.
//
// Config is safe for concurrent use.
type Config struct {
	mu sync.RWMutex

	path      string
	fs        loader.FileSystem
	envPrefix string
	environ   bool

	data     map[string]any
	settings Settings
	loaded   bool
	closed   bool

	notifier *notify.Notifier
	watcher  *watcher.Watcher
	onError  func(error)
}

// Option configures a Config.
type Option func(*Config)

// WithFile sets the configuration file. The format is chosen by extension.
// A missing file is not an error.
func WithFile(path string) Option {
	return func(c *Config) {
		c.path = path
	}
}

// WithFileSystem sets the filesystem used to read the configuration file.
func WithFileSystem(fsys loader.FileSystem) Option {
	return func(c *Config) {
		c.fs = fsys
	}
}

// WithEnvPrefix sets the environment variable prefix.
func WithEnvPrefix(prefix string) Option {
	return func(c *Config) {
		c.envPrefix = prefix
	}
}

// WithoutEnv disables the environment layer.
func WithoutEnv() Option {
	return func(c *Config) {
		c.environ = false
	}
}

// WithErrorHandler sets the handler for reload failures during Watch.
func WithErrorHandler(h func(error)) Option {
	return func(c *Config) {
		c.onError = h
	}
}

// New creates an unloaded configuration holding the built-in defaults.
func New(opts ...Option) *Config {
	c := &Config{
		fs:        loader.DefaultFS(),
		envPrefix: loader.DefaultEnvPrefix,
		environ:   true,
		settings:  Defaults(),
		notifier:  notify.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load creates a configuration and loads it.
func Load(ctx context.Context, opts ...Option) (*Config, error) {
	c := New(opts...)
	if err := c.Load(ctx); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

// Load reads every layer and replaces the current settings. Layers apply in
// order: built-in defaults, the configuration file, environment variables.
//
// On a reload, observers receive one set event per changed setting followed
// by a reload event. On failure the previous settings stay in effect.
func (c *Config) Load(ctx context.Context) error {
	data, settings, err := c.read(ctx)
	if err != nil {
		return err
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	old, wasLoaded := c.data, c.loaded
	c.data = data
	c.settings = settings
	c.loaded = true
	c.mu.Unlock()

	if wasLoaded {
		c.notifyDiff(old, data)
	}
	return nil
}

func (c *Config) read(ctx context.Context) (map[string]any, Settings, error) {
	if err := ctx.Err(); err != nil {
		return nil, Settings{}, err
	}

	data, err := Defaults().toMap()
	if err != nil {
		return nil, Settings{}, err
	}
	known := loader.Paths(data)

	if c.path != "" {
		fl, err := loader.ForPath(c.fs, c.path)
		if err != nil {
			return nil, Settings{}, fmt.Errorf("config: %w", err)
		}
		fileData, err := fl.Load()
		if err != nil {
			return nil, Settings{}, err
		}
		data = loader.DeepMerge(data, fileData)
	}

	if c.environ {
		mapping := make(map[string]string, len(known))
		for _, path := range known {
			mapping[loader.EnvName(c.envPrefix, path)] = path
		}
		envData, err := loader.NewEnvLoaderWithMapping(c.envPrefix, mapping).Load()
		if err != nil {
			return nil, Settings{}, err
		}
		data = loader.DeepMerge(data, envData)
	}

	settings, err := decodeSettings(data)
	if err != nil {
		return nil, Settings{}, err
	}
	if err := settings.Validate(); err != nil {
		return nil, Settings{}, err
	}
	return data, settings, nil
}

func (c *Config) notifyDiff(old, current map[string]any) {
	seen := make(map[string]bool)
	paths := append(loader.Paths(old), loader.Paths(current)...)
	for _, path := range paths {
		if seen[path] {
			continue
		}
		seen[path] = true

		oldValue, _ := loader.GetByPath(old, path)
		newValue, _ := loader.GetByPath(current, path)
		if !reflect.DeepEqual(oldValue, newValue) {
			c.notifier.NotifySet(path, oldValue, newValue, c.path)
		}
	}
	c.notifier.NotifyReload(c.path)
}

// Path returns the configuration file path, if any.
func (c *Config) Path() string {
	return c.path
}

// Settings returns the current typed settings.
func (c *Config) Settings() Settings {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.settings
}

// Get returns the raw value at a dot-separated path.
func (c *Config) Get(path string) (any, error) {
	c.mu.RLock()
	data := c.data
	c.mu.RUnlock()

	if data == nil {
		var err error
		if data, err = Defaults().toMap(); err != nil {
			return nil, err
		}
	}
	v, ok := loader.GetByPath(data, path)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSettingNotFound, path)
	}
	return v, nil
}

// GetString returns a string setting.
func (c *Config) GetString(path string) (string, error) {
	v, err := c.Get(path)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", &TypeError{Path: path, Expected: "string", Actual: typeName(v)}
	}
	return s, nil
}

// GetBool returns a boolean setting.
func (c *Config) GetBool(path string) (bool, error) {
	v, err := c.Get(path)
	if err != nil {
		return false, err
	}
	b, ok := v.(bool)
	if !ok {
		return false, &TypeError{Path: path, Expected: "bool", Actual: typeName(v)}
	}
	return b, nil
}

// GetInt returns an integer setting.
func (c *Config) GetInt(path string) (int64, error) {
	v, err := c.Get(path)
	if err != nil {
		return 0, err
	}
	switch n := v.(type) {
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	default:
		return 0, &TypeError{Path: path, Expected: "int", Actual: typeName(v)}
	}
}

// GetStringSlice returns a list-of-strings setting.
func (c *Config) GetStringSlice(path string) ([]string, error) {
	v, err := c.Get(path)
	if err != nil {
		return nil, err
	}
	switch list := v.(type) {
	case []string:
		return append([]string(nil), list...), nil
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, &TypeError{Path: path, Expected: "[]string", Actual: "[]" + typeName(item)}
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, &TypeError{Path: path, Expected: "[]string", Actual: typeName(v)}
	}
}

func typeName(v any) string {
	if v == nil {
		return "nil"
	}
	return reflect.TypeOf(v).String()
}

// Subscribe registers an observer for every change.
func (c *Config) Subscribe(observer notify.Observer) *notify.Subscription {
	return c.notifier.Subscribe(observer)
}

// SubscribePath registers an observer for changes at or below path.
func (c *Config) SubscribePath(path string, observer notify.Observer) *notify.Subscription {
	return c.notifier.SubscribePath(path, observer)
}

// Watch reloads the configuration whenever its file changes, until ctx is
// done or the configuration is closed. Reload failures go to the error
// handler and leave the previous settings in effect.
func (c *Config) Watch(ctx context.Context, opts ...watcher.Option) error {
	if c.path == "" {
		return ErrNoConfigFile
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	if c.watcher != nil {
		return nil
	}

	opts = append([]watcher.Option{watcher.WithErrorHandler(c.reportError)}, opts...)
	w, err := watcher.New(opts...)
	if err != nil {
		return fmt.Errorf("config: watch: %w", err)
	}
	w.OnChange(func(watcher.Event) {
		if err := c.Load(ctx); err != nil {
			c.reportError(err)
		}
	})
	if err := w.Watch(c.path); err != nil {
		_ = w.Close()
		return fmt.Errorf("config: watch %s: %w", c.path, err)
	}
	c.watcher = w

	go func() {
		<-ctx.Done()
		c.stopWatching(w)
	}()
	return nil
}

func (c *Config) stopWatching(w *watcher.Watcher) {
	c.mu.Lock()
	if c.watcher == w {
		c.watcher = nil
	}
	c.mu.Unlock()
	_ = w.Close()
}

func (c *Config) reportError(err error) {
	if c.onError != nil {
		c.onError(err)
	}
}

// Close stops watching and releases observers.
func (c *Config) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	w := c.watcher
	c.watcher = nil
	c.mu.Unlock()

	if w != nil {
		_ = w.Close()
	}
	c.notifier.Close()
}

// FindFile returns the first configuration file found in dirs, or "".
func FindFile(dirs ...string) string {
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		for _, name := range FileNames {
			path := filepath.Join(dir, name)
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				return path
			}
		}
	}
	return ""
}

// SearchDirs returns the directories searched for a configuration file when
// none is given: the working directory, then the user configuration
// directory.
func SearchDirs() []string {
	dirs := []string{"."}
	if dir, err := os.UserConfigDir(); err == nil {
		dirs = append(dirs, filepath.Join(dir, "markstorm"))
	}
	return dirs
}

// Package config provides the configuration system for markstorm.
//
// Configuration is organized in layers with higher layers overriding lower:
//
//	┌─────────────────────────────┐
//	│  3. Environment Variables   │  ← MARKSTORM_SECTION_KEY
//	├─────────────────────────────┤
//	│  2. Configuration File      │  ← markstorm.toml / markstorm.yaml
//	├─────────────────────────────┤
//	│  1. Built-in Defaults       │  ← Lowest priority
//	└─────────────────────────────┘
//
// The merged layers are decoded into a typed Settings value and validated.
// Unknown keys and values of the wrong type are rejected.
//
// # Sub-packages
//
//   - loader: file and environment loading, map merging
//   - notify: change notification to subscribers
//   - watcher: file watching for live reload
//
// # Usage
//
//	cfg, err := config.Load(ctx, config.WithFile("markstorm.toml"))
//	if err != nil {
//	    return err
//	}
//	defer cfg.Close()
//
//	opts := cfg.Settings().MarkupOptions()
//
//	cfg.SubscribePath("markup", func(c notify.Change) {
//	    system.SetOptions(cfg.Settings().MarkupOptions())
//	})
//	_ = cfg.Watch(ctx)
//
// # Environment Variables
//
// Every setting can be overridden from the environment. The variable name is
// the prefix followed by the upper-cased setting path with dots replaced by
// underscores:
//
//	MARKSTORM_MARKUP_FENCE_LANGUAGE=go
//	MARKSTORM_MARKUP_IMAGE_EXTENSIONS='[".png", ".svg"]'
//	MARKSTORM_PREVIEW_HIGHLIGHT=true
//
// Values that look like JSON arrays or objects are decoded as such.
//
// # Thread Safety
//
// Config is safe for concurrent use. Observers run synchronously on the
// goroutine that performed the reload.
package config

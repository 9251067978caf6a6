package config

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/dshills/markstorm/internal/markup"
)

// DefaultPreviewStyle is the chroma style used for highlighted code blocks.
const DefaultPreviewStyle = "monokai"

// Settings is the typed view of the merged configuration.
type Settings struct {
	Markup     MarkupSettings     `toml:"markup"`
	Dispatcher DispatcherSettings `toml:"dispatcher"`
	Preview    PreviewSettings    `toml:"preview"`
	Plugins    PluginSettings     `toml:"plugins"`
	Logging    LoggingSettings    `toml:"logging"`
}

// MarkupSettings configures the markup actions.
type MarkupSettings struct {
	FenceLanguage     string   `toml:"fence_language"`
	TrimTrailingSpace bool     `toml:"trim_trailing_space"`
	ImageExtensions   []string `toml:"image_extensions"`
	LinkPrefixes      []string `toml:"link_prefixes"`
}

// DispatcherSettings configures action dispatch.
type DispatcherSettings struct {
	RecoverFromPanic bool     `toml:"recover_from_panic"`
	Metrics          bool     `toml:"metrics"`
	DisabledActions  []string `toml:"disabled_actions"`
}

// PreviewSettings configures the HTML preview.
type PreviewSettings struct {
	Enabled   bool   `toml:"enabled"`
	Highlight bool   `toml:"highlight"`
	Style     string `toml:"style"`
}

// PluginSettings configures scripted actions.
type PluginSettings struct {
	// Scripts are Lua files loaded at startup, in order.
	Scripts []string `toml:"scripts"`
	// InstructionLimit bounds host calls per script invocation. Zero means
	// unlimited.
	InstructionLimit int64 `toml:"instruction_limit"`
	// TimeoutMS bounds the wall time of a script invocation.
	TimeoutMS int64 `toml:"timeout_ms"`
}

// LoggingSettings configures the application logger.
type LoggingSettings struct {
	Level string `toml:"level"`
}

// Defaults returns the built-in settings.
func Defaults() Settings {
	opts := markup.DefaultOptions()
	return Settings{
		Markup: MarkupSettings{
			FenceLanguage:     opts.FenceLanguage,
			TrimTrailingSpace: true,
			ImageExtensions:   opts.ImageExtensions,
			LinkPrefixes:      opts.LinkPrefixes,
		},
		Dispatcher: DispatcherSettings{
			RecoverFromPanic: true,
			DisabledActions:  []string{},
		},
		Preview: PreviewSettings{
			Style: DefaultPreviewStyle,
		},
		Plugins: PluginSettings{
			Scripts:          []string{},
			InstructionLimit: 100_000,
			TimeoutMS:        2000,
		},
		Logging: LoggingSettings{
			Level: "info",
		},
	}
}

// MarkupOptions converts the markup section into action options.
func (s Settings) MarkupOptions() markup.Options {
	return markup.Options{
		FenceLanguage:   s.Markup.FenceLanguage,
		ImageExtensions: append([]string(nil), s.Markup.ImageExtensions...),
		LinkPrefixes:    append([]string(nil), s.Markup.LinkPrefixes...),
	}
}

var logLevels = []string{"debug", "info", "warn", "warning", "error"}

// Validate checks setting values. All failures are joined into one error;
// each is a *ValidationError.
func (s Settings) Validate() error {
	var errs []error
	add := func(path, msg string, value any, code ValidationErrorCode) {
		errs = append(errs, &ValidationError{Path: path, Message: msg, Value: value, Code: code})
	}

	if strings.ContainsAny(s.Markup.FenceLanguage, " \t\r\n`") {
		add("markup.fence_language", "must be a single word", s.Markup.FenceLanguage, ErrCodePatternMismatch)
	}
	for _, ext := range s.Markup.ImageExtensions {
		if ext == "" {
			add("markup.image_extensions", "must not contain empty entries", s.Markup.ImageExtensions, ErrCodePatternMismatch)
			break
		}
	}
	for _, p := range s.Markup.LinkPrefixes {
		if p == "" {
			add("markup.link_prefixes", "must not contain empty entries", s.Markup.LinkPrefixes, ErrCodePatternMismatch)
			break
		}
	}
	if s.Preview.Highlight && s.Preview.Style == "" {
		add("preview.style", "is required when highlighting", s.Preview.Style, ErrCodeRequiredMissing)
	}
	if s.Plugins.InstructionLimit < 0 {
		add("plugins.instruction_limit", "must not be negative", s.Plugins.InstructionLimit, ErrCodeOutOfRange)
	}
	if s.Plugins.TimeoutMS < 0 {
		add("plugins.timeout_ms", "must not be negative", s.Plugins.TimeoutMS, ErrCodeOutOfRange)
	}
	if !validLevel(s.Logging.Level) {
		add("logging.level", "must be one of "+strings.Join(logLevels, ", "), s.Logging.Level, ErrCodeInvalidEnum)
	}

	return errors.Join(errs...)
}

func validLevel(level string) bool {
	for _, l := range logLevels {
		if strings.EqualFold(level, l) {
			return true
		}
	}
	return false
}

// toMap flattens settings into the generic map the loaders produce.
func (s Settings) toMap() (map[string]any, error) {
	data, err := toml.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("config: encode settings: %w", err)
	}
	m := make(map[string]any)
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("config: encode settings: %w", err)
	}
	return m, nil
}

// decodeSettings converts a merged map into Settings. Keys that name no
// setting are rejected.
func decodeSettings(data map[string]any) (Settings, error) {
	raw, err := toml.Marshal(data)
	if err != nil {
		return Settings{}, fmt.Errorf("config: encode merged settings: %w", err)
	}

	var s Settings
	dec := toml.NewDecoder(bytes.NewReader(raw)).DisallowUnknownFields()
	if err := dec.Decode(&s); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			errs := make([]error, 0, len(strict.Errors))
			for i := range strict.Errors {
				key := strings.Join(strict.Errors[i].Key(), ".")
				errs = append(errs, &ValidationError{
					Path:    key,
					Message: "unknown setting",
					Code:    ErrCodeUnknownSetting,
				})
			}
			return Settings{}, errors.Join(errs...)
		}
		return Settings{}, &ValidationError{
			Path:    "settings",
			Message: err.Error(),
			Code:    ErrCodeTypeMismatch,
		}
	}
	return s, nil
}

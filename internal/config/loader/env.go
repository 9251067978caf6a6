package loader

import (
	"os"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// DefaultEnvPrefix is the prefix of markstorm environment variables.
const DefaultEnvPrefix = "MARKSTORM_"

// EnvLoader loads configuration from environment variables.
//
// MARKSTORM_SECTION_KEY maps to section.key, with the remaining words of the
// name joined by underscores: MARKSTORM_MARKUP_FENCE_LANGUAGE sets
// markup.fence_language.
type EnvLoader struct {
	prefix  string            // Environment variable prefix, e.g. "MARKSTORM_"
	mapping map[string]string // Env var -> config path
	environ func() []string
}

// NewEnvLoader creates a new environment variable loader.
// The prefix should include the trailing underscore (e.g., "MARKSTORM_").
func NewEnvLoader(prefix string) *EnvLoader {
	return &EnvLoader{
		prefix:  prefix,
		environ: os.Environ,
	}
}

// NewEnvLoaderWithMapping creates a loader that only reads the mapped
// variables.
func NewEnvLoaderWithMapping(prefix string, mapping map[string]string) *EnvLoader {
	l := NewEnvLoader(prefix)
	l.mapping = mapping
	return l
}

// Load reads environment variables and returns a configuration map.
// Note: Empty string values are treated as valid values, not as unset.
func (l *EnvLoader) Load() (map[string]any, error) {
	config := make(map[string]any)

	for _, env := range l.environ() {
		name, value, ok := strings.Cut(env, "=")
		if !ok || !strings.HasPrefix(name, l.prefix) {
			continue
		}

		path, ok := l.pathFor(name)
		if !ok {
			continue
		}
		SetByPath(config, path, ParseValue(value))
	}

	return config, nil
}

// pathFor returns the setting path for an environment variable.
func (l *EnvLoader) pathFor(name string) (string, bool) {
	if l.mapping != nil {
		path, ok := l.mapping[name]
		return path, ok
	}
	path := l.envToPath(name)
	return path, strings.Contains(path, ".")
}

// envToPath converts MARKSTORM_MARKUP_FENCE_LANGUAGE to markup.fence_language.
func (l *EnvLoader) envToPath(env string) string {
	name := strings.ToLower(strings.TrimPrefix(env, l.prefix))
	section, key, ok := strings.Cut(name, "_")
	if !ok {
		return section
	}
	return section + "." + key
}

// EnvName returns the variable that sets path under prefix.
func EnvName(prefix, path string) string {
	return prefix + strings.ToUpper(strings.ReplaceAll(path, ".", "_"))
}

// ParseValue converts an environment string into a typed value.
// JSON arrays and objects are decoded with gjson.
func ParseValue(s string) any {
	if s == "" {
		return s
	}

	switch strings.ToLower(s) {
	case "true", "yes", "on":
		return true
	case "false", "no", "off":
		return false
	}

	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}

	if strings.Contains(s, ".") {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}

	trimmed := strings.TrimSpace(s)
	if (strings.HasPrefix(trimmed, "[") || strings.HasPrefix(trimmed, "{")) && gjson.Valid(trimmed) {
		return fromJSON(gjson.Parse(trimmed))
	}

	return s
}

// fromJSON converts a gjson result keeping integral numbers as int64.
func fromJSON(r gjson.Result) any {
	switch {
	case r.IsArray():
		items := r.Array()
		out := make([]any, 0, len(items))
		for _, item := range items {
			out = append(out, fromJSON(item))
		}
		return out
	case r.IsObject():
		out := make(map[string]any)
		r.ForEach(func(k, v gjson.Result) bool {
			out[k.String()] = fromJSON(v)
			return true
		})
		return out
	case r.Type == gjson.Number:
		if f := r.Float(); f == float64(int64(f)) {
			return r.Int()
		}
		return r.Float()
	default:
		return r.Value()
	}
}

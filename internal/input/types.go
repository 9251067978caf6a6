package input

// ActionSource indicates the origin of an action.
type ActionSource uint8

const (
	// SourceToolbar indicates the action originated from a toolbar button.
	SourceToolbar ActionSource = iota
	// SourceKeyboard indicates the action originated from a key binding.
	SourceKeyboard
	// SourcePlugin indicates the action originated from a plugin.
	SourcePlugin
	// SourceCLI indicates the action originated from the command line.
	SourceCLI
	// SourceAPI indicates the action originated from an API call.
	SourceAPI
)

// String returns a string representation of the action source.
func (s ActionSource) String() string {
	switch s {
	case SourceToolbar:
		return "toolbar"
	case SourceKeyboard:
		return "keyboard"
	case SourcePlugin:
		return "plugin"
	case SourceCLI:
		return "cli"
	case SourceAPI:
		return "api"
	default:
		return "unknown"
	}
}

// ActionArgs holds arguments for an action.
type ActionArgs struct {
	// Title pre-fills the title of a metadata prompt.
	Title string

	// URL pre-fills the url of a metadata prompt.
	URL string

	// Extra holds additional key-value pairs for extensibility.
	Extra map[string]interface{}
}

// Get retrieves a value from Extra.
func (a ActionArgs) Get(key string) (interface{}, bool) {
	if a.Extra == nil {
		return nil, false
	}
	v, ok := a.Extra[key]
	return v, ok
}

// GetString retrieves a string value from Extra.
func (a ActionArgs) GetString(key string) string {
	if v, ok := a.Get(key); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// GetBool retrieves a bool value from Extra.
func (a ActionArgs) GetBool(key string) bool {
	if v, ok := a.Get(key); ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return false
}

// Action represents a markup command to be executed by the dispatcher.
type Action struct {
	// Name is the action identifier (e.g., "bold", "h2", "link").
	Name string

	// Args contains action-specific arguments.
	Args ActionArgs

	// Source indicates where this action originated.
	Source ActionSource
}

// NewAction creates an action with the given name and source.
func NewAction(name string, source ActionSource) Action {
	return Action{Name: name, Source: source}
}

// WithSeed returns a copy of the action with prompt pre-fill values.
func (a Action) WithSeed(title, url string) Action {
	a.Args.Title = title
	a.Args.URL = url
	return a
}

// WithExtra returns a copy of the action with an extra argument set.
func (a Action) WithExtra(key string, value interface{}) Action {
	extra := make(map[string]interface{}, len(a.Args.Extra)+1)
	for k, v := range a.Args.Extra {
		extra[k] = v
	}
	extra[key] = value
	a.Args.Extra = extra
	return a
}

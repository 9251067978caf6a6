package markup

import "sort"

// Action names.
const (
	ActionBold       = "bold"
	ActionItalic     = "italic"
	ActionH1         = "h1"
	ActionH2         = "h2"
	ActionH3         = "h3"
	ActionH4         = "h4"
	ActionH5         = "h5"
	ActionH6         = "h6"
	ActionBullets    = "bullets"
	ActionNumbers    = "numbers"
	ActionSourcecode = "sourcecode"
	ActionQuote      = "quote"
	ActionImage      = "image"
	ActionLink       = "link"
)

// Transform computes the edit of a synchronous action.
type Transform func(st State, opts Options) Change

// Prompt opens a metadata request for an interactive action.
type Prompt func(st State, opts Options) *Request

// Action is a named markup action. Exactly one of Transform and Prompt is set.
type Action struct {
	Name      string
	Transform Transform
	Prompt    Prompt
}

// IsPrompt returns true if the action needs metadata before it can edit.
func (a Action) IsPrompt() bool {
	return a.Prompt != nil
}

// Outcome is the result of running an action: a Change for transforms,
// a Request for prompts.
type Outcome struct {
	Change  Change
	Request *Request
}

// Run executes the action against st.
func (a Action) Run(st State, opts Options) Outcome {
	st = NewState(st.Text, st.Selection)
	opts = opts.withDefaults()
	if a.Prompt != nil {
		return Outcome{Request: a.Prompt(st, opts)}
	}
	return Outcome{Change: a.Transform(st, opts)}
}

var actions = map[string]Action{
	ActionBold:       {Name: ActionBold, Transform: bold},
	ActionItalic:     {Name: ActionItalic, Transform: italic},
	ActionH1:         {Name: ActionH1, Transform: heading(1)},
	ActionH2:         {Name: ActionH2, Transform: heading(2)},
	ActionH3:         {Name: ActionH3, Transform: heading(3)},
	ActionH4:         {Name: ActionH4, Transform: heading(4)},
	ActionH5:         {Name: ActionH5, Transform: heading(5)},
	ActionH6:         {Name: ActionH6, Transform: heading(6)},
	ActionBullets:    {Name: ActionBullets, Transform: bullets},
	ActionNumbers:    {Name: ActionNumbers, Transform: numbers},
	ActionSourcecode: {Name: ActionSourcecode, Transform: sourcecode},
	ActionQuote:      {Name: ActionQuote, Transform: quote},
	ActionImage:      {Name: ActionImage, Prompt: image},
	ActionLink:       {Name: ActionLink, Prompt: link},
}

// Lookup returns the built-in action registered under name.
func Lookup(name string) (Action, bool) {
	a, ok := actions[name]
	return a, ok
}

// Names returns the names of all built-in actions, sorted.
func Names() []string {
	names := make([]string, 0, len(actions))
	for name := range actions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Apply runs the built-in action name against st.
func Apply(name string, st State, opts Options) (Outcome, error) {
	a, ok := Lookup(name)
	if !ok {
		return Outcome{}, &UnknownActionError{Name: name}
	}
	return a.Run(st, opts), nil
}

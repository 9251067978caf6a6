package markup

import (
	"strings"

	"github.com/dshills/markstorm/internal/engine/selection"
)

// State is the input of an action: the buffer and its selection.
type State struct {
	Text      string
	Selection selection.Range
}

// NewState creates a State with the selection clamped to text.
func NewState(text string, sel selection.Range) State {
	return State{Text: text, Selection: sel.Clamp(runeLen(text))}
}

// StateOf reads the State of a live selection.
func StateOf(sel *selection.Selection) State {
	return NewState(sel.Value(), sel.Get())
}

// Selected returns the selected text.
func (s State) Selected() string {
	runes := []rune(s.Text)
	r := s.Selection.Clamp(len(runes))
	return string(runes[r.Start:r.End])
}

// Change describes one edit: replace Range with Text, then select Selection.
type Change struct {
	// Range is the replaced range, in offsets of the buffer before the edit.
	Range selection.Range

	// Text is the replacement.
	Text string

	// Selection is the selection after the edit, in offsets of the new buffer.
	Selection selection.Range
}

// ApplyTo returns text with the change applied.
func (c Change) ApplyTo(text string) string {
	runes := []rune(text)
	r := c.Range.Clamp(len(runes))

	var b strings.Builder
	b.Grow(len(text) + len(c.Text))
	b.WriteString(string(runes[:r.Start]))
	b.WriteString(c.Text)
	b.WriteString(string(runes[r.End:]))
	return b.String()
}

// Apply performs the change through a live selection: the replaced range is
// selected, replaced, and the resulting selection established.
func (c Change) Apply(sel *selection.Selection) {
	sel.Select(c.Range)
	sel.Replace(c.Text)
	sel.Select(c.Selection)
}

func runeLen(s string) int {
	return len([]rune(s))
}

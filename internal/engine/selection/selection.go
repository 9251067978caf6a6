package selection

import "strings"

// Host is the text control a Selection operates on.
// Offsets exchanged with the host are character offsets.
type Host interface {
	// CaretRange returns the current selection bounds.
	CaretRange() (start, end int)

	// SetCaretRange moves the caret/selection.
	SetCaretRange(start, end int)

	// Value returns the full buffer content.
	Value() string

	// SetValue replaces the full buffer content.
	// Caret placement after SetValue is host-specific.
	SetValue(value string)
}

// Selection reads and writes the caret/selection of a single Host.
// It is not safe for concurrent use; it belongs to the goroutine that owns the host.
type Selection struct {
	host   Host
	stored *Range
}

// New creates a Selection bound to host.
func New(host Host) *Selection {
	return &Selection{host: host}
}

// Host returns the underlying host.
func (s *Selection) Host() Host {
	return s.host
}

// Value returns the host buffer content.
func (s *Selection) Value() string {
	if s.host == nil {
		return ""
	}
	return s.host.Value()
}

// Len returns the buffer length in characters.
func (s *Selection) Len() int {
	return len([]rune(s.Value()))
}

// Get returns the current selection, normalized and clamped to the buffer.
func (s *Selection) Get() Range {
	if s.host == nil {
		return Range{}
	}
	start, end := s.host.CaretRange()
	return NewRange(start, end).Clamp(s.Len())
}

// Text returns the selected text, or "" for a caret.
func (s *Selection) Text() string {
	r := s.Get()
	if r.IsEmpty() {
		return ""
	}
	runes := []rune(s.Value())
	return string(runes[r.Start:r.End])
}

// IsSelected returns true if any text is selected.
func (s *Selection) IsSelected() bool {
	return s.Get().Len() != 0
}

// Select moves the selection to r, clamped to the buffer.
func (s *Selection) Select(r Range) *Selection {
	if s.host == nil {
		return s
	}
	r = r.Clamp(s.Len())
	s.host.SetCaretRange(r.Start, r.End)
	return s
}

// SelectOffsets moves the selection to [start, end), clamped to the buffer.
func (s *Selection) SelectOffsets(start, end int) *Selection {
	return s.Select(Range{Start: start, End: end})
}

// Replace replaces the selected text with text.
// The resulting caret position is left to the host.
func (s *Selection) Replace(text string) *Selection {
	if s.host == nil {
		return s
	}
	r := s.Get()
	runes := []rune(s.Value())

	var b strings.Builder
	b.Grow(len(s.Value()) + len(text))
	b.WriteString(string(runes[:r.Start]))
	b.WriteString(text)
	b.WriteString(string(runes[r.End:]))

	s.host.SetValue(b.String())
	return s
}

// Store saves the current selection and returns it.
// Only one selection is kept; a later Store overwrites an earlier one.
func (s *Selection) Store() Range {
	r := s.Get()
	s.stored = &r
	return r
}

// Stored returns the stored selection, if any.
func (s *Selection) Stored() (Range, bool) {
	if s.stored == nil {
		return Range{}, false
	}
	return *s.stored, true
}

// Load restores the stored selection.
// Before any Store it does nothing and returns ErrNoStoredSelection.
func (s *Selection) Load() error {
	if s.stored == nil {
		return ErrNoStoredSelection
	}
	s.Select(*s.stored)
	return nil
}

// TrimTrailingSpace shrinks the selection by one character if the selected
// text ends in a space. Reports whether the selection changed.
func (s *Selection) TrimTrailingSpace() bool {
	text := s.Text()
	if !strings.HasSuffix(text, " ") {
		return false
	}
	r := s.Get()
	s.Select(Range{Start: r.Start, End: r.End - 1})
	return true
}

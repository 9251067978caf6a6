package buffer

// LineEnding specifies the line ending style.
type LineEnding uint8

const (
	LineEndingLF   LineEnding = iota // Unix: \n
	LineEndingCRLF                   // Windows: \r\n
)

// String returns the string representation of the line ending.
func (le LineEnding) String() string {
	switch le {
	case LineEndingCRLF:
		return "\\r\\n"
	default:
		return "\\n"
	}
}

// Option configures a Buffer.
type Option func(*Buffer)

// WithLineEnding sets the line ending used when normalizing loaded text.
func WithLineEnding(le LineEnding) Option {
	return func(b *Buffer) {
		b.lineEnding = le
	}
}

// WithCaret sets the initial caret range.
func WithCaret(start, end int) Option {
	return func(b *Buffer) {
		b.start, b.end = start, end
	}
}

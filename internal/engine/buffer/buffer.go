package buffer

import (
	"io"
	"strings"
	"sync"
	"unicode/utf8"
)

// Buffer is an in-memory text control.
// All methods are thread-safe.
type Buffer struct {
	mu         sync.RWMutex
	text       string
	length     int
	start, end int
	revision   uint64
	lineEnding LineEnding
}

// New creates a buffer with initial content and the caret at offset 0.
func New(text string, opts ...Option) *Buffer {
	b := &Buffer{lineEnding: LineEndingLF}
	for _, opt := range opts {
		opt(b)
	}
	b.text = b.normalizeLineEndings(text)
	b.length = utf8.RuneCountInString(b.text)
	b.start, b.end = b.clampRange(b.start, b.end)
	return b
}

// NewFromReader creates a buffer from an io.Reader.
func NewFromReader(r io.Reader, opts ...Option) (*Buffer, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return New(string(data), opts...), nil
}

// normalizeLineEndings converts all line endings to the buffer's style.
func (b *Buffer) normalizeLineEndings(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	if b.lineEnding == LineEndingCRLF {
		s = strings.ReplaceAll(s, "\n", "\r\n")
	}
	return s
}

// Value returns the buffer content.
func (b *Buffer) Value() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.text
}

// SetValue replaces the content and moves the caret to the end.
func (b *Buffer) SetValue(value string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.text = value
	b.length = utf8.RuneCountInString(value)
	b.start, b.end = b.length, b.length
	b.revision++
}

// CaretRange returns the current caret/selection range.
func (b *Buffer) CaretRange() (start, end int) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.start, b.end
}

// SetCaretRange moves the caret/selection, clamped to the content.
func (b *Buffer) SetCaretRange(start, end int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.start, b.end = b.clampRange(start, end)
}

// Len returns the content length in characters.
func (b *Buffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.length
}

// Revision returns a counter incremented by every SetValue.
func (b *Buffer) Revision() uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.revision
}

// LineEnding returns the buffer's line ending style.
func (b *Buffer) LineEnding() LineEnding {
	return b.lineEnding
}

func (b *Buffer) clampRange(start, end int) (int, int) {
	if end < start {
		start, end = end, start
	}
	return clamp(start, b.length), clamp(end, b.length)
}

func clamp(v, max int) int {
	if v < 0 {
		return 0
	}
	if v > max {
		return max
	}
	return v
}

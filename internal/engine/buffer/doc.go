// Package buffer provides an in-memory text control: a character buffer with
// a caret/selection range.
//
// Buffer implements selection.Host, so it can stand in for a browser textarea
// or a terminal widget. It is used by the command-line tool, by scripted
// actions and throughout the tests.
//
// The buffer package provides:
//
//   - Thread-safe read/write access via sync.RWMutex
//   - Character (rune) offsets for the caret range
//   - Line ending normalization on load
//   - Revision tracking for change detection
//
// Basic usage:
//
//	buf := buffer.New("Hello, World!")
//	buf.SetCaretRange(0, 5)
//	start, end := buf.CaretRange() // 0, 5
//
// After SetValue the caret is placed at the end of the new content, the way
// an HTML textarea behaves when its value is assigned.
package buffer

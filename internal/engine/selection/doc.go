// Package selection provides the caret/selection adapter that markup actions
// operate through.
//
// A Selection is bound to one Host, the text control that owns the buffer.
// The host exposes a caret range and a value; the adapter derives the
// selected text from them and performs range replacement.
//
// Offsets:
//
// All offsets are character (rune) offsets into the host value, never byte
// offsets. A Range with Start == End is a caret with no selected text.
//
// Bounds policy:
//
// Select never fails. Out-of-range offsets are clamped to [0, Len()] and
// reversed bounds are swapped, matching forgiving text-control behavior.
//
// Stored selection:
//
// Store and Load form a single-slot register: a second Store overwrites the
// first. Callers that need to survive interleaved requests should keep the
// Range returned by Store instead of relying on Load.
//
// Basic usage:
//
//	buf := buffer.New("hello world")
//	sel := selection.New(buf)
//
//	sel.Select(selection.NewRange(0, 5))
//	sel.Text()            // "hello"
//	sel.Replace("**hello**")
//	sel.Select(selection.NewRange(0, 9))
package selection

// Package markup implements the markdown markup actions applied to a text
// selection.
//
// Every action is a pure function of a State (buffer text plus selection)
// that returns a Change: the range to replace, the replacement text and the
// selection to establish afterwards. Nothing in this package touches a text
// control; callers apply the Change through a selection.Selection.
//
// # Actions
//
//	bold, italic          wrap the selection, or unwrap it when already wrapped
//	h1 .. h6              prefix the selection with a heading marker
//	bullets, numbers      prefix the selection with a list marker
//	sourcecode            fence a caret or a single line, indent multiple lines
//	quote                 prefix every selected line with "> "
//	image, link           ask for title/url, then insert the markdown
//
// Image and link are prompt actions. Instead of a Change they return a
// Request that records the selection at the time of the prompt. Once the
// caller has collected metadata, Request.Complete produces the Change.
//
// # Offsets
//
// All offsets are character offsets. A Change's Range refers to the buffer
// before the edit; its Selection refers to the buffer after the edit.
package markup

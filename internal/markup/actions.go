package markup

import (
	"strings"

	"github.com/dshills/markstorm/internal/engine/selection"
)

// Markers used by the built-in actions.
const (
	boldMarker   = "**"
	italicMarker = "_"
	bulletMarker = "* "
	numberMarker = "1. "
	quoteMarker  = "> "
	codeIndent   = "    "
	codeFence    = "```"
)

func bold(st State, _ Options) Change {
	return wrap(st, boldMarker)
}

func italic(st State, _ Options) Change {
	return wrap(st, italicMarker)
}

// heading returns the transform for a heading of the given level (1-6).
func heading(level int) Transform {
	marker := strings.Repeat("#", level) + " "
	return func(st State, _ Options) Change {
		return prefix(st, marker)
	}
}

func bullets(st State, _ Options) Change {
	return prefix(st, bulletMarker)
}

func numbers(st State, _ Options) Change {
	return prefix(st, numberMarker)
}

// prefix inserts marker before the selection and puts the caret after it.
func prefix(st State, marker string) Change {
	r := st.Selection
	return Change{
		Range:     r,
		Text:      marker + st.Selected(),
		Selection: selection.Caret(r.End + runeLen(marker)),
	}
}

func sourcecode(st State, opts Options) Change {
	r := st.Selection
	open := codeFence + opts.FenceLanguage + "\n"
	closing := "\n" + codeFence

	if r.IsEmpty() {
		return Change{
			Range:     r,
			Text:      open + closing,
			Selection: selection.Caret(r.Start + runeLen(open)),
		}
	}

	text := st.Selected()
	if !strings.Contains(text, "\n") {
		return Change{
			Range:     r,
			Text:      open + text + closing,
			Selection: selection.Caret(r.End + runeLen(open)),
		}
	}

	return prefixLines(st, codeIndent)
}

func quote(st State, _ Options) Change {
	r := st.Selection
	if r.IsEmpty() {
		return Change{
			Range:     r,
			Text:      quoteMarker,
			Selection: selection.Caret(r.Start + runeLen(quoteMarker)),
		}
	}
	return prefixLines(st, quoteMarker)
}

// prefixLines puts linePrefix in front of every selected line and the caret
// after the result. When the selection ends with a newline, no prefix is left
// dangling after it.
func prefixLines(st State, linePrefix string) Change {
	selected := st.Selected()
	text := linePrefix + strings.ReplaceAll(selected, "\n", "\n"+linePrefix)
	if strings.HasSuffix(selected, "\n") {
		text = strings.TrimSuffix(text, linePrefix)
	}

	r := st.Selection
	return Change{
		Range:     r,
		Text:      text,
		Selection: selection.Caret(r.Start + runeLen(text)),
	}
}

package markup

import (
	"strings"

	"github.com/dshills/markstorm/internal/engine/selection"
)

// unwrap removes a symmetric marker around the selection.
//
// If the selection sits just inside a pair of markers it is grown to include
// them first. The markers are removed when the (possibly grown) selection
// starts and ends with marker; the result selects the inner text.
func unwrap(st State, marker string) (Change, bool) {
	runes := []rune(st.Text)
	ml := runeLen(marker)
	r := st.Selection.Clamp(len(runes))

	if r.Start >= ml && r.End+ml <= len(runes) &&
		string(runes[r.Start-ml:r.Start]) == marker &&
		string(runes[r.End:r.End+ml]) == marker {
		r = selection.Range{Start: r.Start - ml, End: r.End + ml}
	}

	text := string(runes[r.Start:r.End])
	if r.Len() < 2*ml || !strings.HasPrefix(text, marker) || !strings.HasSuffix(text, marker) {
		return Change{}, false
	}

	return Change{
		Range:     r,
		Text:      string(runes[r.Start+ml : r.End-ml]),
		Selection: selection.Range{Start: r.Start, End: r.End - 2*ml},
	}, true
}

// wrap surrounds the selection with marker, or unwraps it if already wrapped.
// A selection stays selected including the markers; a caret lands between them.
func wrap(st State, marker string) Change {
	if c, ok := unwrap(st, marker); ok {
		return c
	}

	r := st.Selection
	ml := runeLen(marker)
	c := Change{
		Range: r,
		Text:  marker + st.Selected() + marker,
	}
	if r.IsEmpty() {
		c.Selection = selection.Caret(r.Start + ml)
	} else {
		c.Selection = selection.Range{Start: r.Start, End: r.End + 2*ml}
	}
	return c
}

package selection

import "fmt"

// Range is a character range in a host buffer.
// Start is inclusive, End is exclusive: [Start, End).
type Range struct {
	Start int
	End   int
}

// NewRange creates a Range from start and end offsets.
// Reversed bounds are swapped.
func NewRange(start, end int) Range {
	if end < start {
		start, end = end, start
	}
	return Range{Start: start, End: end}
}

// Caret creates an empty Range at offset.
func Caret(offset int) Range {
	return Range{Start: offset, End: offset}
}

// Len returns the number of characters in the range.
func (r Range) Len() int {
	return r.End - r.Start
}

// IsEmpty returns true if the range is a caret.
func (r Range) IsEmpty() bool {
	return r.Start == r.End
}

// IsValid returns true if 0 <= Start <= End <= max.
func (r Range) IsValid(max int) bool {
	return r.Start >= 0 && r.Start <= r.End && r.End <= max
}

// Shift returns the range moved by delta characters.
func (r Range) Shift(delta int) Range {
	return Range{Start: r.Start + delta, End: r.End + delta}
}

// Clamp returns the range normalized and clamped to [0, max].
func (r Range) Clamp(max int) Range {
	if max < 0 {
		max = 0
	}
	r = NewRange(r.Start, r.End)
	r.Start = clampInt(r.Start, 0, max)
	r.End = clampInt(r.End, 0, max)
	return r
}

// String returns a human-readable representation of the range.
func (r Range) String() string {
	if r.IsEmpty() {
		return fmt.Sprintf("Caret(%d)", r.Start)
	}
	return fmt.Sprintf("[%d:%d)", r.Start, r.End)
}

func clampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

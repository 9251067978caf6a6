package fuzzy

import "unicode"

// Scorer calculates match scores.
type Scorer interface {
	// Score rates a match; higher is better.
	//
	// queryRunes is the normalized query, originalRunes the candidate in its
	// original case, textRunes the normalized candidate and matches the rune
	// indices of matched characters in the candidate.
	Score(queryRunes, originalRunes, textRunes []rune, matches []int) int
}

// WeightedScorer scores matches with configurable weights.
type WeightedScorer struct {
	// BaseScore is the starting score for any match.
	BaseScore int

	// ConsecutiveBonus is added for each consecutive character match.
	ConsecutiveBonus int

	// WordBoundaryBonus is added for matches at word boundaries.
	WordBoundaryBonus int

	// PrefixBonus is added when the first match is at position 0.
	PrefixBonus int

	// ExactPrefixBonus is added when the query is a prefix of the candidate.
	ExactPrefixBonus int

	// GapPenalty is subtracted for each gap character between matches.
	GapPenalty int

	// LeadingPenalty is subtracted for each character before first match.
	LeadingPenalty int

	// LengthBonusThreshold rewards candidates shorter than this many runes.
	LengthBonusThreshold int
}

// DefaultWeights returns the default scoring weights.
func DefaultWeights() WeightedScorer {
	return WeightedScorer{
		BaseScore:            100,
		ConsecutiveBonus:     20,
		WordBoundaryBonus:    15,
		PrefixBonus:          25,
		ExactPrefixBonus:     50,
		GapPenalty:           2,
		LeadingPenalty:       1,
		LengthBonusThreshold: 20,
	}
}

// Score implements the Scorer interface.
func (s WeightedScorer) Score(queryRunes, originalRunes, textRunes []rune, matches []int) int {
	if len(matches) == 0 {
		return 0
	}

	score := s.BaseScore

	for i := 1; i < len(matches); i++ {
		if matches[i] == matches[i-1]+1 {
			score += s.ConsecutiveBonus
		}
	}

	for _, idx := range matches {
		if isWordBoundary(originalRunes, idx) {
			score += s.WordBoundaryBonus
		}
	}

	if matches[0] == 0 {
		score += s.PrefixBonus
	} else {
		score -= matches[0] * s.LeadingPenalty
	}

	if len(matches) > 1 {
		if gap := matches[len(matches)-1] - matches[0] - len(matches) + 1; gap > 0 {
			score -= gap * s.GapPenalty
		}
	}

	if n := len(textRunes); n < s.LengthBonusThreshold {
		score += s.LengthBonusThreshold - n
	}

	if hasPrefix(textRunes, queryRunes) {
		score += s.ExactPrefixBonus
	}

	// Any match scores at least 1
	if score < 1 {
		score = 1
	}
	return score
}

// DefaultScorer scores with DefaultWeights.
type DefaultScorer struct{}

// Score implements the Scorer interface.
func (DefaultScorer) Score(queryRunes, originalRunes, textRunes []rune, matches []int) int {
	return DefaultWeights().Score(queryRunes, originalRunes, textRunes, matches)
}

func hasPrefix(text, prefix []rune) bool {
	if len(text) < len(prefix) {
		return false
	}
	for i, r := range prefix {
		if text[i] != r {
			return false
		}
	}
	return true
}

// isWordBoundary checks if the rune at idx starts a word: the first rune,
// a rune after a space or punctuation, or an upper-case rune after a
// lower-case one.
func isWordBoundary(runes []rune, idx int) bool {
	if idx == 0 {
		return true
	}
	if idx >= len(runes) {
		return false
	}

	prev, curr := runes[idx-1], runes[idx]
	if unicode.IsSpace(prev) || unicode.IsPunct(prev) {
		return true
	}
	return unicode.IsLower(prev) && unicode.IsUpper(curr)
}

// Package fuzzy ranks action names against a partial or misspelled query.
//
// A candidate matches when every rune of the query appears in it in order.
// Matches are scored by the scorer; consecutive runs, word boundaries and
// prefixes rank higher, gaps and leading skips rank lower.
//
//	m := fuzzy.NewMatcher(fuzzy.DefaultOptions())
//	for _, r := range m.Match("code", markup.Names(), 3) {
//	    fmt.Println(r.Text, r.Score)
//	}
//
// The Matcher is safe for concurrent use.
package fuzzy

import (
	"sort"
	"strings"
	"sync"
)

// Result is a matched candidate.
type Result struct {
	// Text is the matched candidate.
	Text string

	// Score is the match score (higher is better).
	Score int

	// Matches contains the rune indices of matched characters.
	Matches []int
}

// Options configures the matcher behavior.
type Options struct {
	// MinScore is the minimum score for a match to be included.
	MinScore int

	// CaseSensitive enables case-sensitive matching.
	CaseSensitive bool
}

// DefaultOptions returns case-insensitive matching with no minimum score.
func DefaultOptions() Options {
	return Options{}
}

// Matcher performs fuzzy string matching.
type Matcher struct {
	mu      sync.RWMutex
	scorer  Scorer
	options Options
}

// NewMatcher creates a new fuzzy matcher with the given options.
func NewMatcher(opts Options) *Matcher {
	return &Matcher{
		scorer:  DefaultScorer{},
		options: opts,
	}
}

// SetScorer sets a custom scoring algorithm.
func (m *Matcher) SetScorer(scorer Scorer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scorer = scorer
}

// Match finds candidates containing query and returns them sorted by score,
// then by text. A limit of zero or less returns every match.
func (m *Matcher) Match(query string, candidates []string, limit int) []Result {
	query = strings.TrimSpace(query)
	if !m.options.CaseSensitive {
		query = strings.ToLower(query)
	}
	if query == "" {
		return nil
	}
	queryRunes := []rune(query)

	results := make([]Result, 0, len(candidates))
	for _, text := range candidates {
		score, matches := m.matchItem(queryRunes, text)
		if score > m.options.MinScore {
			results = append(results, Result{Text: text, Score: score, Matches: matches})
		}
	}
	sortResults(results)

	if limit > 0 && limit < len(results) {
		results = results[:limit]
	}
	return results
}

// Suggest returns up to limit candidates close to query. Candidates that
// contain the query rank first; when none does, candidates contained in the
// query are returned, so "bolded" suggests "bold".
func (m *Matcher) Suggest(query string, candidates []string, limit int) []string {
	results := m.Match(query, candidates, limit)
	if len(results) == 0 {
		for _, c := range candidates {
			if r := m.Match(c, []string{query}, 1); len(r) > 0 {
				results = append(results, Result{Text: c, Score: r[0].Score})
			}
		}
		sortResults(results)
		if limit > 0 && limit < len(results) {
			results = results[:limit]
		}
	}

	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Text
	}
	return out
}

func sortResults(results []Result) {
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Text < results[j].Text
	})
}

// matchItem scores a single candidate against the query.
// Returns score and matched character indices (rune indices).
func (m *Matcher) matchItem(queryRunes []rune, text string) (int, []int) {
	if text == "" || len(queryRunes) == 0 {
		return 0, nil
	}

	var textRunes []rune
	if m.options.CaseSensitive {
		textRunes = []rune(text)
	} else {
		textRunes = []rune(strings.ToLower(text))
	}
	originalRunes := []rune(text)

	// Greedy left-to-right scan
	matches := make([]int, 0, len(queryRunes))
	queryIdx := 0
	for i := 0; i < len(textRunes) && queryIdx < len(queryRunes); i++ {
		if textRunes[i] == queryRunes[queryIdx] {
			matches = append(matches, i)
			queryIdx++
		}
	}
	if queryIdx != len(queryRunes) {
		return 0, nil
	}

	m.mu.RLock()
	scorer := m.scorer
	m.mu.RUnlock()

	return scorer.Score(queryRunes, originalRunes, textRunes, matches), matches
}

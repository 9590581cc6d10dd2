// Package fuzzy scores approximate string matches for card lookup and
// OCR token correction.
package fuzzy

import (
	"sort"
	"strings"
)

// SearchResult is one scored match.
type SearchResult struct {
	Item  string
	Score int
	Index int
}

// SearchOptions configures fuzzy search behavior.
type SearchOptions struct {
	// CaseSensitive enables case-sensitive matching
	CaseSensitive bool
	// MaxResults limits the number of results returned (0 = unlimited)
	MaxResults int
	// MinScore sets minimum score threshold (0-100)
	MinScore int
}

// DefaultSearchOptions returns the options used by the card search endpoint.
func DefaultSearchOptions() SearchOptions {
	return SearchOptions{
		MaxResults: 25,
		MinScore:   40,
	}
}

// Search scores every item against query and returns the matches sorted by
// score (highest first), then by original position.
func Search(query string, items []string, options SearchOptions) []SearchResult {
	if !options.CaseSensitive {
		query = strings.ToLower(query)
	}

	results := make([]SearchResult, 0, len(items))
	for i, item := range items {
		compareItem := item
		if !options.CaseSensitive {
			compareItem = strings.ToLower(item)
		}

		score := Score(query, compareItem)
		if score >= options.MinScore {
			results = append(results, SearchResult{Item: item, Score: score, Index: i})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Index < results[j].Index
	})

	if options.MaxResults > 0 && len(results) > options.MaxResults {
		results = results[:options.MaxResults]
	}
	return results
}

// Score rates the similarity of query and target from 0 to 100.
// Exact matches score 100, substrings score 80 and up, everything else is
// derived from the edit distance.
func Score(query, target string) int {
	if query == target {
		return 100
	}

	q, t := []rune(query), []rune(target)
	if len(q) == 0 || len(t) == 0 {
		return 0
	}

	if strings.Contains(target, query) {
		return 80 + (len(q) * 19 / len(t))
	}

	distance := Distance(query, target)
	return 100 - (distance * 100 / max(len(q), len(t)))
}

// Distance is the Levenshtein edit distance between a and b counted in
// runes: the minimum number of single-rune insertions, deletions and
// substitutions turning one into the other.
func Distance(a, b string) int {
	s1, s2 := []rune(a), []rune(b)
	if len(s1) == 0 {
		return len(s2)
	}
	if len(s2) == 0 {
		return len(s1)
	}

	// Two rolling rows are enough.
	prev := make([]int, len(s2)+1)
	curr := make([]int, len(s2)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(s1); i++ {
		curr[0] = i
		for j := 1; j <= len(s2); j++ {
			cost := 0
			if s1[i-1] != s2[j-1] {
				cost = 1
			}
			curr[j] = min(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[len(s2)]
}

// Closest returns the dictionary word with the smallest edit distance to
// word. Ties go to the lexicographically smallest word. ok is false when
// the dictionary is empty.
func Closest(word string, dictionary []string) (best string, distance int, ok bool) {
	for _, candidate := range dictionary {
		d := Distance(word, candidate)
		if !ok || d < distance || (d == distance && candidate < best) {
			best, distance, ok = candidate, d, true
		}
	}
	return best, distance, ok
}

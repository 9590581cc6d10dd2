package resolver

import (
	"sort"
	"strings"
)

type entry struct {
	name   string
	key    string
	tokens []string
}

// Index is an in-memory full-text index over canonical names. It is
// read-only after NewIndex returns.
type Index struct {
	entries  []entry
	postings map[string][]int
	byKey    map[string]int
}

// NewIndex indexes names in the given order. Results are always reported
// in that order. Names that fold to the same key as an earlier name are
// skipped.
func NewIndex(names []string) *Index {
	idx := &Index{
		entries:  make([]entry, 0, len(names)),
		postings: make(map[string][]int),
		byKey:    make(map[string]int, len(names)),
	}
	for _, name := range names {
		tokens := Tokens(name)
		if len(tokens) == 0 {
			continue
		}
		e := entry{name: name, key: strings.Join(tokens, " "), tokens: tokens}
		if _, dup := idx.byKey[e.key]; dup {
			continue
		}
		pos := len(idx.entries)
		idx.entries = append(idx.entries, e)
		idx.byKey[e.key] = pos

		seen := make(map[string]bool, len(tokens))
		for _, tok := range tokens {
			if seen[tok] {
				continue
			}
			seen[tok] = true
			idx.postings[tok] = append(idx.postings[tok], pos)
		}
	}
	return idx
}

// Len returns the number of indexed names.
func (idx *Index) Len() int {
	return len(idx.entries)
}

// HasToken reports whether tok (already folded) appears in any name.
func (idx *Index) HasToken(tok string) bool {
	_, ok := idx.postings[tok]
	return ok
}

// Vocabulary returns every distinct name token in sorted order.
func (idx *Index) Vocabulary() []string {
	vocab := make([]string, 0, len(idx.postings))
	for tok := range idx.postings {
		vocab = append(vocab, tok)
	}
	sort.Strings(vocab)
	return vocab
}

// Search returns the names matching query.
//
// A name whose key equals the query key is returned alone. Otherwise every
// name containing all query tokens is a hit. When nothing contains all of
// them, names whose full token sequence occurs contiguously inside the
// query are returned instead, which handles card names surrounded by
// recognition filler.
func (idx *Index) Search(query string) []string {
	tokens := Tokens(query)
	if len(tokens) == 0 {
		return nil
	}

	if pos, ok := idx.byKey[strings.Join(tokens, " ")]; ok {
		return []string{idx.entries[pos].name}
	}

	if hits := idx.keywordHits(tokens); len(hits) > 0 {
		return idx.names(hits)
	}
	return idx.names(idx.containedHits(tokens))
}

func (idx *Index) keywordHits(tokens []string) []int {
	var hits []int
	for i, tok := range tokens {
		posting, ok := idx.postings[tok]
		if !ok {
			return nil
		}
		if i == 0 {
			hits = append([]int(nil), posting...)
			continue
		}
		hits = intersect(hits, posting)
		if len(hits) == 0 {
			return nil
		}
	}
	return hits
}

func (idx *Index) containedHits(query []string) []int {
	var hits []int
	for pos, e := range idx.entries {
		if containsRun(query, e.tokens) {
			hits = append(hits, pos)
		}
	}
	return hits
}

func (idx *Index) names(positions []int) []string {
	if len(positions) == 0 {
		return nil
	}
	out := make([]string, len(positions))
	for i, pos := range positions {
		out[i] = idx.entries[pos].name
	}
	return out
}

// intersect merges two ascending position lists.
func intersect(a, b []int) []int {
	out := a[:0]
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] == b[j]:
			out = append(out, a[i])
			i++
			j++
		case a[i] < b[j]:
			i++
		default:
			j++
		}
	}
	return out
}

// containsRun reports whether needle occurs as a contiguous run in haystack.
func containsRun(haystack, needle []string) bool {
	if len(needle) == 0 || len(needle) > len(haystack) {
		return false
	}
outer:
	for start := 0; start+len(needle) <= len(haystack); start++ {
		for k := range needle {
			if haystack[start+k] != needle[k] {
				continue outer
			}
		}
		return true
	}
	return false
}

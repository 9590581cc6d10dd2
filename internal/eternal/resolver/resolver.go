// Package resolver turns noisy recognized text into canonical card names.
package resolver

import (
	"strings"

	"github.com/ramonehamilton/draft-claw/internal/eternal/cards"
	"github.com/ramonehamilton/draft-claw/internal/eternal/cards/fuzzy"
)

// Resolver matches text fragments against a fixed set of names. It holds
// no mutable state and is safe for concurrent use.
type Resolver struct {
	index      *Index
	dictionary []string
}

// New builds a resolver over every card in the catalog. The correction
// dictionary is the catalog's name vocabulary.
func New(catalog *cards.Catalog) *Resolver {
	return NewFromNames(catalog.Names(), nil)
}

// NewFromNames builds a resolver over names. When dictionary is nil the
// tokens of the names themselves are used for spelling correction.
func NewFromNames(names []string, dictionary []string) *Resolver {
	idx := NewIndex(names)
	if dictionary == nil {
		dictionary = idx.Vocabulary()
	} else {
		folded := make([]string, 0, len(dictionary))
		for _, word := range dictionary {
			folded = append(folded, Tokens(word)...)
		}
		dictionary = folded
	}
	return &Resolver{
		index:      idx,
		dictionary: dictionary,
	}
}

// Resolve returns the single canonical name matching fragment.
//
// The normalized fragment is searched first. Unless that yields exactly
// one name, every token outside the name vocabulary is replaced by its
// closest dictionary word and the search is retried once. Failures are
// reported as *MatchError wrapping ErrAmbiguousMatch or ErrNoMatch.
func (r *Resolver) Resolve(fragment string) (string, error) {
	hits := r.index.Search(fragment)
	if len(hits) == 1 {
		return hits[0], nil
	}

	corrected := r.Correct(fragment)
	hits = r.index.Search(corrected)
	switch len(hits) {
	case 1:
		return hits[0], nil
	case 0:
		return "", &MatchError{Fragment: fragment, Corrected: corrected, Err: ErrNoMatch}
	default:
		return "", &MatchError{Fragment: fragment, Corrected: corrected, Candidates: hits, Err: ErrAmbiguousMatch}
	}
}

// Correct rewrites each unknown token of fragment to the dictionary word
// with the smallest edit distance. Ties go to the lexicographically
// smallest word so the result is reproducible.
func (r *Resolver) Correct(fragment string) string {
	tokens := Tokens(fragment)
	for i, tok := range tokens {
		if r.index.HasToken(tok) {
			continue
		}
		if best, _, ok := fuzzy.Closest(tok, r.dictionary); ok {
			tokens[i] = best
		}
	}
	return strings.Join(tokens, " ")
}

// ResolveMany resolves each fragment and returns the successes in input
// order. Fragments that fail are omitted.
func (r *Resolver) ResolveMany(fragments []string) []string {
	out := make([]string, 0, len(fragments))
	for _, fragment := range fragments {
		if name, err := r.Resolve(fragment); err == nil {
			out = append(out, name)
		}
	}
	return out
}

// Result is the outcome of resolving one fragment.
type Result struct {
	Fragment string
	Name     string
	Err      error
}

// ResolveEach resolves every fragment and reports each outcome, including
// failures, in input order.
func (r *Resolver) ResolveEach(fragments []string) []Result {
	out := make([]Result, len(fragments))
	for i, fragment := range fragments {
		name, err := r.Resolve(fragment)
		out[i] = Result{Fragment: fragment, Name: name, Err: err}
	}
	return out
}

// ResolveAll scans text for every name that occurs verbatim (after
// normalization) and returns them in order of appearance. Overlapping
// occurrences prefer the longest name starting at a position.
func (r *Resolver) ResolveAll(text string) []string {
	tokens := Tokens(text)
	var out []string
	for start := 0; start < len(tokens); {
		best := -1
		for pos, e := range r.index.entries {
			if len(e.tokens) > len(tokens)-start {
				continue
			}
			if best >= 0 && len(e.tokens) <= len(r.index.entries[best].tokens) {
				continue
			}
			if containsRun(tokens[start:start+len(e.tokens)], e.tokens) {
				best = pos
			}
		}
		if best < 0 {
			start++
			continue
		}
		out = append(out, r.index.entries[best].name)
		start += len(r.index.entries[best].tokens)
	}
	return out
}

// Suggest returns up to limit names that look like text, best first.
func (r *Resolver) Suggest(text string, limit int) []string {
	opts := fuzzy.DefaultSearchOptions()
	opts.MaxResults = limit
	results := fuzzy.Search(Key(text), r.keys(), opts)
	out := make([]string, len(results))
	for i, res := range results {
		out[i] = r.index.entries[res.Index].name
	}
	return out
}

func (r *Resolver) keys() []string {
	keys := make([]string, len(r.index.entries))
	for i, e := range r.index.entries {
		keys[i] = e.key
	}
	return keys
}

// FindInList resolves text against list and returns the position of the
// match. Duplicate names in list resolve to their first position.
func FindInList(list []string, text string) (int, error) {
	name, err := NewFromNames(list, nil).Resolve(text)
	if err != nil {
		return -1, err
	}
	for i, candidate := range list {
		if candidate == name {
			return i, nil
		}
	}
	return -1, &MatchError{Fragment: text, Err: ErrNoMatch}
}

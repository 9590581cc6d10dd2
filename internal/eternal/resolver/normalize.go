package resolver

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize strips OCR noise from a fragment. Letters, digits, whitespace,
// commas and apostrophes are kept; every other rune is dropped. Runs of
// whitespace collapse to a single space.
func Normalize(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == ',', r == '\'':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// fold lowercases text and strips combining marks so "Éclat" and "eclat"
// compare equal. A new transformer is built per call because x/text
// transformers carry state.
func fold(text string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, text)
	if err != nil {
		stripped = text
	}
	return cases.Fold().String(stripped)
}

// Tokens splits normalized, folded text into search tokens. Commas act as
// separators; apostrophes stay inside tokens.
func Tokens(text string) []string {
	return strings.FieldsFunc(fold(Normalize(text)), func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
}

// Key is the comparison form of a name: its tokens joined by single spaces.
func Key(text string) string {
	return strings.Join(Tokens(text), " ")
}

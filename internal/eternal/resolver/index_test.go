package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIndexSearch(t *testing.T) {
	idx := NewIndex([]string{"card alpha", "card beta", "card omega", "Torch", "Torch of Ages"})

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"exact", "card beta", []string{"card beta"}},
		{"case folded", "CARD BETA", []string{"card beta"}},
		{"single keyword", "omega", []string{"card omega"}},
		{"shared keyword", "card", []string{"card alpha", "card beta", "card omega"}},
		{"exact name beats longer name", "torch", []string{"Torch"}},
		{"keyword subset", "ages", []string{"Torch of Ages"}},
		{"unknown token", "caru alpha", nil},
		{"filler around name", "xx card alpha yy", []string{"card alpha"}},
		{"two names", "card alpha card beta", []string{"card alpha", "card beta"}},
		{"empty", "!!", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, idx.Search(tt.query))
		})
	}
}

func TestIndexSkipsDuplicateKeys(t *testing.T) {
	idx := NewIndex([]string{"Torch", "torch", "", "Torch!"})
	assert.Equal(t, 1, idx.Len())
	assert.Equal(t, []string{"Torch"}, idx.Search("torch"))
}

func TestIndexVocabulary(t *testing.T) {
	idx := NewIndex([]string{"card beta", "card alpha"})
	assert.Equal(t, []string{"alpha", "beta", "card"}, idx.Vocabulary())
	assert.True(t, idx.HasToken("card"))
	assert.False(t, idx.HasToken("caru"))
}

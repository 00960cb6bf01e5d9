package analyze

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize(t *testing.T) {
	t.Run("lowercases and trims punctuation", func(t *testing.T) {
		tokens := Tokenize("Hello, World!")
		assert.Equal(t, []string{"hello", "world"}, tokens)
	})

	t.Run("filters stop words", func(t *testing.T) {
		tokens := Tokenize("the cat sat on the mat")
		assert.Equal(t, []string{"cat", "sat", "mat"}, tokens)
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, Tokenize(""))
		assert.Empty(t, Tokenize("   "))
	})

	t.Run("only stop words", func(t *testing.T) {
		assert.Empty(t, Tokenize("the a an of"))
	})
}

func TestTermCounts(t *testing.T) {
	counts := TermCounts("tiger tiger burning bright")
	assert.Equal(t, 2, counts["tiger"])
	assert.Equal(t, 1, counts["burning"])
	assert.Equal(t, 1, counts["bright"])
}

func TestContainsAllQueryWords(t *testing.T) {
	tests := []struct {
		name     string
		document string
		query    string
		want     bool
	}{
		{
			name:     "all words present",
			document: "The quick brown fox jumps over the lazy dog",
			query:    "quick fox",
			want:     true,
		},
		{
			name:     "missing word",
			document: "The quick brown fox",
			query:    "quick elephant",
			want:     false,
		},
		{
			name:     "stop words ignored",
			document: "quick fox",
			query:    "the quick fox",
			want:     true,
		},
		{
			name:     "query of only stop words",
			document: "quick fox",
			query:    "the a an",
			want:     false,
		},
		{
			name:     "case insensitive",
			document: "Quick Fox",
			query:    "quick fox",
			want:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ContainsAllQueryWords(tt.document, tt.query))
		})
	}
}

package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssociate(t *testing.T) {
	label := tok("Name", 10, 100, 60, 20, 0.9)

	tests := []struct {
		name      string
		tokens    []Token
		wantText  string
		wantFound bool
	}{
		{
			name:      "same row to the right",
			tokens:    []Token{label, tok("Ali Khan", 200, 100, 120, 20, 0.8)},
			wantText:  "Ali Khan",
			wantFound: true,
		},
		{
			name: "distant token on the row beats near token off the row",
			tokens: []Token{
				label,
				tok("Other", 80, 140, 40, 20, 0.9),
				tok("Ali Khan", 900, 102, 120, 20, 0.8),
			},
			wantText:  "Ali Khan",
			wantFound: true,
		},
		{
			name:   "token to the left is ignored",
			tokens: []Token{tok("Ali Khan", 0, 100, 5, 20, 0.9), label},
		},
		{
			name:   "overlapping the label edge is ignored",
			tokens: []Token{label, tok("Ali Khan", 70, 100, 80, 20, 0.9)},
		},
		{
			name:   "confidence at threshold is ignored",
			tokens: []Token{label, tok("Ali Khan", 200, 100, 80, 20, 0.3)},
		},
		{
			name: "low confidence on row loses to confident token off row",
			tokens: []Token{
				label,
				tok("noise", 200, 100, 80, 20, 0.1),
				tok("Ali Khan", 200, 130, 80, 20, 0.7),
			},
			wantText:  "Ali Khan",
			wantFound: true,
		},
		{
			name: "ties keep the first token",
			tokens: []Token{
				label,
				tok("Above", 200, 90, 80, 20, 0.9),
				tok("Below", 200, 110, 80, 20, 0.9),
			},
			wantText:  "Above",
			wantFound: true,
		},
		{
			name: "out of reading order",
			tokens: []Token{
				tok("Ali Khan", 200, 101, 120, 20, 0.8),
				tok("Footer", 200, 400, 120, 20, 0.9),
				label,
			},
			wantText:  "Ali Khan",
			wantFound: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed := parse(tt.tokens...)
			l, ok := Locate(parsed, NameLabel)
			require.True(t, ok)

			got, found := Associate(l, parsed, DefaultMinConfidence)
			assert.Equal(t, tt.wantFound, found)
			if tt.wantFound {
				assert.Equal(t, tt.wantText, got.Clean)
			}
		})
	}
}

func TestAssociate_EmptyPool(t *testing.T) {
	parsed := parse(tok("Name", 0, 0, 40, 10, 0.9))
	_, found := Associate(parsed[0], parsed, DefaultMinConfidence)
	assert.False(t, found)
}

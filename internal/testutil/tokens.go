package testutil

import (
	"os"
	"testing"

	"github.com/MeKo-Tech/credex/internal/extract"
	"github.com/MeKo-Tech/credex/internal/geometry"
	"github.com/MeKo-Tech/credex/internal/ocrinput"
	"github.com/stretchr/testify/require"
)

// Token builds an axis-aligned token whose polygon spans (x,y)-(x+w,y+h).
func Token(text string, x, y, w, h, confidence float64) extract.Token {
	return extract.Token{
		Polygon: []geometry.Point{
			{X: x, Y: y},
			{X: x + w, Y: y},
			{X: x + w, Y: y + h},
			{X: x, Y: y + h},
		},
		Text:       text,
		Confidence: confidence,
	}
}

// SampleCard is a small but complete card scan. It matches
// testdata/fixtures/card.json.
func SampleCard() []extract.Token {
	return []extract.Token{
		Token("PAKISTAN MEDICAL C0UNCIL", 10, 0, 290, 8, 0.97),
		Token("Reg. N0.", 10, 10, 80, 20, 0.95),
		Token("PMD-12O45-D", 120, 12, 140, 18, 0.90),
		Token("Name", 10, 50, 50, 20, 0.96),
		Token("Muhammad Ali", 120, 50, 140, 20, 0.93),
		Token("Father Name", 10, 90, 90, 20, 0.94),
		Token("Ahmed Ali", 120, 92, 120, 18, 0.91),
	}
}

// ReadFixture returns the raw bytes of a fixture file.
func ReadFixture(t testing.TB, name string) []byte {
	t.Helper()

	data, err := os.ReadFile(FixturePath(t, name)) //nolint:gosec // G304: fixture paths are controlled by tests
	require.NoError(t, err)
	return data
}

// LoadTokens decodes a fixture file, picking the format from its extension.
func LoadTokens(t testing.TB, name string) []extract.Token {
	t.Helper()

	tokens, err := ocrinput.DecodeBytes(ReadFixture(t, name), ocrinput.FormatForPath(name))
	require.NoError(t, err, "decode fixture %s", name)
	return tokens
}

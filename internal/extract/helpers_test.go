package extract

import "github.com/MeKo-Tech/credex/internal/geometry"

// tok builds an axis-aligned token with its top-left corner at (x, y).
func tok(text string, x, y, w, h, conf float64) Token {
	return Token{
		Polygon: []geometry.Point{
			{X: x, Y: y}, {X: x + w, Y: y}, {X: x + w, Y: y + h}, {X: x, Y: y + h},
		},
		Text:       text,
		Confidence: conf,
	}
}

func parse(tokens ...Token) []ParsedToken {
	parsed, _ := Parse(tokens, DefaultOptions().Text)
	return parsed
}

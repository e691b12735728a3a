package extract

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// genToken generates an axis-aligned token somewhere on a page.
func genToken() gopter.Gen {
	return gopter.CombineGens(
		gen.Float64Range(0, 1000),
		gen.Float64Range(0, 1000),
		gen.Float64Range(1, 300),
		gen.Float64Range(1, 60),
		gen.Float64Range(0, 1),
	).Map(func(vals []interface{}) Token {
		return tok("value",
			vals[0].(float64), vals[1].(float64),
			vals[2].(float64), vals[3].(float64),
			vals[4].(float64))
	})
}

// TestAssociate_NeverPicksDisqualified verifies the chosen candidate is right of
// the label and above the confidence threshold.
func TestAssociate_NeverPicksDisqualified(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("chosen candidate passes both filters", prop.ForAll(
		func(label Token, others []Token) bool {
			label.Text = "Name"
			parsed := parse(append([]Token{label}, others...)...)
			l := parsed[0]
			got, ok := Associate(l, parsed, DefaultMinConfidence)
			if !ok {
				return true
			}
			return got.Stats.XMin > l.Stats.XMax && got.Confidence > DefaultMinConfidence
		},
		genToken(),
		gen.SliceOfN(12, genToken()),
	))

	properties.TestingRun(t)
}

// TestAssociate_AbsentWhenNoneQualify verifies an empty pool yields absence.
func TestAssociate_AbsentWhenNoneQualify(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("no qualifying candidate means absent", prop.ForAll(
		func(label Token, others []Token) bool {
			parsed := parse(append([]Token{label}, others...)...)
			l := parsed[0]
			qualifying := 0
			for _, c := range parsed {
				if c.Stats.XMin > l.Stats.XMax && c.Confidence > DefaultMinConfidence {
					qualifying++
				}
			}
			_, ok := Associate(l, parsed, DefaultMinConfidence)
			return ok == (qualifying > 0)
		},
		genToken(),
		gen.SliceOfN(6, genToken()),
	))

	properties.TestingRun(t)
}

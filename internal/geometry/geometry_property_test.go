package geometry

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// genPoint generates a random point.
func genPoint() gopter.Gen {
	return gopter.CombineGens(
		gen.Float64Range(-5000, 5000),
		gen.Float64Range(-5000, 5000),
	).Map(func(vals []interface{}) Point {
		return Point{X: vals[0].(float64), Y: vals[1].(float64)}
	})
}

// TestSummarize_CenterWithinBounds verifies the centroid never leaves the bounding box.
func TestSummarize_CenterWithinBounds(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("center lies within extents", prop.ForAll(
		func(points []Point) bool {
			if len(points) == 0 {
				return true
			}
			s, err := Summarize(points)
			if err != nil {
				return false
			}
			return s.XMin <= s.XCenter && s.XCenter <= s.XMax &&
				s.YMin <= s.YCenter && s.YCenter <= s.YMax
		},
		gen.SliceOfN(4, genPoint()),
	))

	properties.TestingRun(t)
}

// TestSummarize_OrderIndependent verifies reversing the vertex order yields the same stats.
func TestSummarize_OrderIndependent(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("vertex order does not change bounds", prop.ForAll(
		func(points []Point) bool {
			reversed := make([]Point, len(points))
			for i, p := range points {
				reversed[len(points)-1-i] = p
			}
			a, errA := Summarize(points)
			b, errB := Summarize(reversed)
			if errA != nil || errB != nil {
				return false
			}
			return a.XMin == b.XMin && a.XMax == b.XMax && a.YMin == b.YMin && a.YMax == b.YMax
		},
		gen.SliceOfN(4, genPoint()),
	))

	properties.TestingRun(t)
}

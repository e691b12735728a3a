package extract

import "math"

// DefaultMinConfidence is the confidence a candidate must exceed.
const DefaultMinConfidence = 0.3

// Associate picks the value token for label: among tokens lying strictly to
// the right of the label's right edge with confidence above minConfidence,
// the one whose vertical center is closest to the label's. Horizontal
// distance is not considered. Ties keep the earlier token.
func Associate(label ParsedToken, tokens []ParsedToken, minConfidence float64) (ParsedToken, bool) {
	var best ParsedToken
	bestDist := math.Inf(1)
	found := false

	for _, c := range tokens {
		if !(c.Stats.XMin > label.Stats.XMax) || !(c.Confidence > minConfidence) {
			continue
		}
		d := math.Abs(c.Stats.YCenter - label.Stats.YCenter)
		if !found || d < bestDist {
			best, bestDist, found = c, d, true
		}
	}
	return best, found
}

// Package visualize renders a debug overlay of a token layout and the
// tokens an extraction picked.
package visualize

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/MeKo-Tech/credex/internal/extract"
	"github.com/MeKo-Tech/credex/internal/geometry"
	"github.com/disintegration/imaging"
)

// Style controls overlay colours and layout.
type Style struct {
	Background color.Color
	Token      color.Color
	Label      color.Color
	Value      color.Color
	Caption    color.Color
	Thickness  int
	Margin     int
	Captions   bool
}

// DefaultStyle returns the overlay style used by the CLI.
func DefaultStyle() Style {
	return Style{
		Background: color.White,
		Token:      color.NRGBA{R: 160, G: 160, B: 160, A: 255},
		Label:      color.NRGBA{R: 30, G: 90, B: 220, A: 255},
		Value:      color.NRGBA{R: 220, G: 40, B: 40, A: 255},
		Caption:    color.Black,
		Thickness:  1,
		Margin:     16,
		Captions:   true,
	}
}

// maxCanvas bounds the overlay size in either dimension.
const maxCanvas = 8192

type role int

const (
	roleToken role = iota
	roleLabel
	roleValue
)

// RenderOverlay draws every token polygon on a blank canvas sized to the
// layout. Tokens used as labels or values by res are highlighted and, when
// captions are on, tagged with their field. Tokens with empty polygons are
// skipped.
func RenderOverlay(tokens []extract.Token, res *extract.Result, style Style) *image.NRGBA {
	extent := layoutExtent(tokens)
	off := image.Pt(style.Margin-int(math.Floor(extent.MinX)), style.Margin-int(math.Floor(extent.MinY)))
	w := clampDim(int(math.Ceil(extent.Width())) + 2*style.Margin)
	h := clampDim(int(math.Ceil(extent.Height())) + 2*style.Margin)

	dst := imaging.New(w, h, style.Background)

	roles, captions := tokenRoles(res)

	// Highlights go last so they are not overdrawn by plain tokens.
	for _, pass := range []role{roleToken, roleLabel, roleValue} {
		for i, t := range tokens {
			if roles[i] != pass || len(t.Polygon) == 0 {
				continue
			}
			col, thick := style.Token, style.Thickness
			switch pass {
			case roleLabel:
				col, thick = style.Label, style.Thickness+1
			case roleValue:
				col, thick = style.Value, style.Thickness+1
			}
			drawPolygon(dst, t.Polygon, off, col, thick)
			if style.Captions && captions[i] != "" {
				box := geometry.BoundingBox(t.Polygon)
				x := int(math.Round(box.MinX)) + off.X
				y := int(math.Round(box.MinY)) + off.Y - 2
				if y < captionHeight() {
					y = int(math.Round(box.MaxY)) + off.Y + captionHeight()
				}
				drawCaption(dst, x, y, captions[i], style.Caption)
			}
		}
	}
	return dst
}

// SavePNG writes img to path. The format follows the file extension.
func SavePNG(img image.Image, path string) error {
	if err := imaging.Save(img, path); err != nil {
		return fmt.Errorf("failed to save overlay %s: %w", path, err)
	}
	return nil
}

func tokenRoles(res *extract.Result) (map[int]role, map[int]string) {
	roles := map[int]role{}
	captions := map[int]string{}
	if res == nil {
		return roles, captions
	}
	for _, m := range res.Matches {
		if m.LabelIndex >= 0 {
			roles[m.LabelIndex] = roleLabel
			captions[m.LabelIndex] = string(m.Field) + " label"
		}
		if m.ValueIndex >= 0 {
			roles[m.ValueIndex] = roleValue
			captions[m.ValueIndex] = string(m.Field)
		}
	}
	return roles, captions
}

func layoutExtent(tokens []extract.Token) geometry.Box {
	var pts []geometry.Point
	for _, t := range tokens {
		pts = append(pts, t.Polygon...)
	}
	if len(pts) == 0 {
		return geometry.Box{}
	}
	return geometry.BoundingBox(pts)
}

func clampDim(v int) int {
	if v < 1 {
		return 1
	}
	if v > maxCanvas {
		return maxCanvas
	}
	return v
}

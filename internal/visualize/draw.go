package visualize

import (
	"image"
	"image/color"
	"math"

	"github.com/MeKo-Tech/credex/internal/geometry"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// drawPolygon outlines pts, closing the ring. Vertices are shifted by off.
func drawPolygon(dst *image.NRGBA, pts []geometry.Point, off image.Point, col color.Color, thickness int) {
	switch len(pts) {
	case 0:
		return
	case 1:
		p := toPixel(pts[0], off)
		drawThickPoint(dst, p.X, p.Y, col, thickness+2)
		return
	}
	for i := range pts {
		a := toPixel(pts[i], off)
		b := toPixel(pts[(i+1)%len(pts)], off)
		drawLine(dst, a, b, col, thickness)
	}
}

func toPixel(p geometry.Point, off image.Point) image.Point {
	return image.Pt(int(math.Round(p.X))+off.X, int(math.Round(p.Y))+off.Y)
}

// drawLine is Bresenham with a square brush.
func drawLine(dst *image.NRGBA, a, b image.Point, col color.Color, thickness int) {
	x0, y0 := a.X, a.Y
	dx := abs(b.X - x0)
	dy := -abs(b.Y - y0)
	sx, sy := 1, 1
	if x0 > b.X {
		sx = -1
	}
	if y0 > b.Y {
		sy = -1
	}
	err := dx + dy
	for {
		drawThickPoint(dst, x0, y0, col, thickness)
		if x0 == b.X && y0 == b.Y {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func drawThickPoint(dst *image.NRGBA, x, y int, col color.Color, thickness int) {
	if thickness < 1 {
		thickness = 1
	}
	r := (thickness - 1) / 2
	bounds := dst.Bounds()
	for yy := y - r; yy <= y+r; yy++ {
		for xx := x - r; xx <= x+r; xx++ {
			if image.Pt(xx, yy).In(bounds) {
				dst.Set(xx, yy, col)
			}
		}
	}
}

// drawCaption writes s with its baseline at (x, y).
func drawCaption(dst *image.NRGBA, x, y int, s string, col color.Color) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(col),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

func captionHeight() int {
	return basicfont.Face7x13.Metrics().Height.Ceil()
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

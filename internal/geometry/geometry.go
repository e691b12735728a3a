// Package geometry summarises OCR token polygons into axis-aligned bounds
// and centroids.
package geometry

import (
	"errors"
	"fmt"
)

// ErrInvalidGeometry is returned when a polygon has no vertices.
var ErrInvalidGeometry = errors.New("invalid geometry")

// Point represents a 2D coordinate in float space.
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Box represents an axis-aligned bounding box in float coordinates.
type Box struct {
	MinX float64
	MinY float64
	MaxX float64
	MaxY float64
}

// Width returns the box width.
func (b Box) Width() float64 { return b.MaxX - b.MinX }

// Height returns the box height.
func (b Box) Height() float64 { return b.MaxY - b.MinY }

// Stats is the derived, read-only view of a token polygon.
// XMin <= XCenter <= XMax and YMin <= YCenter <= YMax always hold.
type Stats struct {
	XMin    float64 `json:"x_min"`
	XMax    float64 `json:"x_max"`
	YMin    float64 `json:"y_min"`
	YMax    float64 `json:"y_max"`
	XCenter float64 `json:"x_center"`
	YCenter float64 `json:"y_center"`
}

// Box returns the bounding extents as a Box.
func (s Stats) Box() Box {
	return Box{MinX: s.XMin, MinY: s.YMin, MaxX: s.XMax, MaxY: s.YMax}
}

// BoundingBox returns the axis-aligned bounding box for a set of points.
func BoundingBox(pts []Point) Box {
	if len(pts) == 0 {
		return Box{}
	}
	minX, minY := pts[0].X, pts[0].Y
	maxX, maxY := pts[0].X, pts[0].Y
	for _, p := range pts[1:] {
		if p.X < minX {
			minX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}
	return Box{MinX: minX, MinY: minY, MaxX: maxX, MaxY: maxY}
}

// Summarize reduces a polygon to its bounds and the arithmetic mean of its
// vertices. Vertex order does not matter.
func Summarize(pts []Point) (Stats, error) {
	if len(pts) == 0 {
		return Stats{}, fmt.Errorf("%w: polygon has no vertices", ErrInvalidGeometry)
	}
	box := BoundingBox(pts)

	var sx, sy float64
	for _, p := range pts {
		sx += p.X
		sy += p.Y
	}
	n := float64(len(pts))

	return Stats{
		XMin:    box.MinX,
		XMax:    box.MaxX,
		YMin:    box.MinY,
		YMax:    box.MaxY,
		XCenter: clamp(sx/n, box.MinX, box.MaxX),
		YCenter: clamp(sy/n, box.MinY, box.MaxY),
	}, nil
}

// clamp keeps float rounding in the mean from escaping the bounds.
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

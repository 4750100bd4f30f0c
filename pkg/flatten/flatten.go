// Package flatten converts a polygon document into plain line
// segments for consumers that cannot draw curves directly: the
// rasterizer backends and the extrusion exporter. Straight edges map
// to a single segment; Bezier edges are subdivided adaptively until
// every piece is flat within a tolerance.
package flatten

import (
	"math"

	"contour/pkg/polygon"
)

// DefaultTolerance is the flatness tolerance (maximum distance of a
// curve piece from its chord) used by the app, in editor units.
const DefaultTolerance = 0.25

// maxDepth bounds the recursive subdivision so a pathological curve
// cannot blow the stack; 2^16 pieces is far below visual tolerance.
const maxDepth = 16

// Segment is one straight piece of the flattened outline.
type Segment struct {
	A polygon.Point `json:"a"`
	B polygon.Point `json:"b"`
}

// Outline flattens every edge of the polygon into segments, in ring
// order.
func Outline(p *polygon.Polygon, tolerance float64) []Segment {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	var segs []Segment
	for i := 0; i < p.Len(); i++ {
		a := p.VertexAt(i).Pos
		b := p.VertexAt(i + 1).Pos
		if bez, ok := p.EdgeAt(i).BezierShape(); ok {
			prev := a
			for _, pt := range flattenCubic(a, bez.Ctrl1, bez.Ctrl2, b, tolerance) {
				segs = append(segs, Segment{A: prev, B: pt})
				prev = pt
			}
		} else {
			segs = append(segs, Segment{A: a, B: b})
		}
	}
	return segs
}

// Ring returns the flattened closed outline as an ordered point list.
// The first point is not repeated at the end.
func Ring(p *polygon.Polygon, tolerance float64) []polygon.Point {
	segs := Outline(p, tolerance)
	pts := make([]polygon.Point, 0, len(segs))
	for _, s := range segs {
		pts = append(pts, s.A)
	}
	return pts
}

// flattenCubic returns the polyline points after p0 (inclusive of p3)
// approximating the cubic within the tolerance, using de Casteljau
// midpoint subdivision.
func flattenCubic(p0, p1, p2, p3 polygon.Point, tolerance float64) []polygon.Point {
	var out []polygon.Point
	var rec func(a, b, c, d polygon.Point, depth int)
	rec = func(a, b, c, d polygon.Point, depth int) {
		if depth >= maxDepth || cubicFlat(a, b, c, d, tolerance) {
			out = append(out, d)
			return
		}
		// de Casteljau split at t = 1/2.
		ab := a.Midpoint(b)
		bc := b.Midpoint(c)
		cd := c.Midpoint(d)
		abc := ab.Midpoint(bc)
		bcd := bc.Midpoint(cd)
		mid := abc.Midpoint(bcd)
		rec(a, ab, abc, mid, depth+1)
		rec(mid, bcd, cd, d, depth+1)
	}
	rec(p0, p1, p2, p3, 0)
	return out
}

// cubicFlat reports whether both control points lie within tolerance
// of the chord.
func cubicFlat(p0, p1, p2, p3 polygon.Point, tolerance float64) bool {
	chord := p3.Sub(p0)
	length := chord.Hypot()
	if length <= polygon.Epsilon {
		// Degenerate chord: fall back to control point offsets.
		return p1.Distance(p0) <= tolerance && p2.Distance(p0) <= tolerance
	}
	d1 := math.Abs(chord.Cross(p1.Sub(p0))) / length
	d2 := math.Abs(chord.Cross(p2.Sub(p0))) / length
	return d1 <= tolerance && d2 <= tolerance
}

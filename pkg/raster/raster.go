// Package raster defines the abstract line rasterizer interface.
// Implementations (bresenham, painter) draw segments onto an RGBA
// image behind this interface. The rasterizer abstraction lets the
// app swap drawing strategies without touching the geometry core;
// the choice has no bearing on constraint correctness.
package raster

import (
	"image"
	"image/color"

	"contour/pkg/flatten"
	"contour/pkg/polygon"
)

// Rasterizer draws a single line segment onto an image.
type Rasterizer interface {
	Line(img *image.RGBA, a, b polygon.Point, c color.Color)
}

// Outline draws a flattened outline with the given rasterizer.
func Outline(r Rasterizer, img *image.RGBA, segs []flatten.Segment, c color.Color) {
	for _, s := range segs {
		r.Line(img, s.A, s.B, c)
	}
}

// Markers draws small filled squares at the given points, used for
// vertex and control point handles.
func Markers(img *image.RGBA, pts []polygon.Point, radius int, c color.Color) {
	for _, p := range pts {
		cx, cy := int(p.X+0.5), int(p.Y+0.5)
		for y := cy - radius; y <= cy+radius; y++ {
			for x := cx - radius; x <= cx+radius; x++ {
				if image.Pt(x, y).In(img.Bounds()) {
					img.Set(x, y, c)
				}
			}
		}
	}
}

// Package bresenham implements the raster.Rasterizer interface with
// integer-only pixel stepping. No floating point is used past the
// initial coordinate rounding, so the output is identical across
// platforms.
package bresenham

import (
	"image"
	"image/color"

	"contour/pkg/polygon"
	"contour/pkg/raster"
)

// Compile-time interface check.
var _ raster.Rasterizer = (*Bresenham)(nil)

// Bresenham draws lines by stepping the major axis one pixel at a
// time and accumulating the minor-axis error term.
type Bresenham struct{}

// New returns a new Bresenham rasterizer.
func New() *Bresenham {
	return &Bresenham{}
}

// Line draws the segment from a to b.
func (r *Bresenham) Line(img *image.RGBA, a, b polygon.Point, c color.Color) {
	x1, y1 := int(a.X+0.5), int(a.Y+0.5)
	x2, y2 := int(b.X+0.5), int(b.Y+0.5)

	dx := x2 - x1
	dy := y2 - y1
	absDX := abs(dx)
	absDY := abs(dy)

	x, y := x1, y1
	setPixel(img, x, y, c)

	if absDX > absDY {
		d := 2*absDY - absDX
		for i := 0; i < absDX; i++ {
			x = step(x, dx)
			if d < 0 {
				d += 2 * absDY
			} else {
				y = step(y, dy)
				d += 2*absDY - 2*absDX
			}
			setPixel(img, x, y, c)
		}
	} else {
		d := 2*absDX - absDY
		for i := 0; i < absDY; i++ {
			y = step(y, dy)
			if d < 0 {
				d += 2 * absDX
			} else {
				x = step(x, dx)
				d += 2*absDX - 2*absDY
			}
			setPixel(img, x, y, c)
		}
	}
}

func setPixel(img *image.RGBA, x, y int, c color.Color) {
	if image.Pt(x, y).In(img.Bounds()) {
		img.Set(x, y, c)
	}
}

func step(v, delta int) int {
	if delta < 0 {
		return v - 1
	}
	return v + 1
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

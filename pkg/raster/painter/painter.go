// Package painter implements the raster.Rasterizer interface using
// the github.com/llgcode/draw2d vector graphics library. Lines are
// stroked with antialiasing, unlike the bresenham backend's hard
// pixel stepping.
package painter

import (
	"image"
	"image/color"

	"github.com/llgcode/draw2d/draw2dimg"

	"contour/pkg/polygon"
	"contour/pkg/raster"
)

// Compile-time interface check.
var _ raster.Rasterizer = (*Painter)(nil)

// Painter strokes lines through a draw2d graphic context.
type Painter struct {
	// LineWidth is the stroke width in pixels; zero means 1.
	LineWidth float64
}

// New returns a new Painter with a 1px stroke.
func New() *Painter {
	return &Painter{LineWidth: 1}
}

// Line draws the segment from a to b.
func (r *Painter) Line(img *image.RGBA, a, b polygon.Point, c color.Color) {
	gc := draw2dimg.NewGraphicContext(img)
	gc.SetStrokeColor(c)
	width := r.LineWidth
	if width <= 0 {
		width = 1
	}
	gc.SetLineWidth(width)
	gc.BeginPath()
	gc.MoveTo(a.X, a.Y)
	gc.LineTo(b.X, b.Y)
	gc.Stroke()
}

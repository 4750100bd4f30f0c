package painter

import (
	"image"
	"image/color"
	"testing"

	"contour/pkg/polygon"
)

func TestLineTouchesCanvas(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 40, 40))
	New().Line(img, polygon.Pt(5, 20), polygon.Pt(35, 20), color.RGBA{R: 255, A: 255})

	touched := 0
	for i := 3; i < len(img.Pix); i += 4 {
		if img.Pix[i] != 0 {
			touched++
		}
	}
	if touched == 0 {
		t.Fatal("stroke left the canvas blank")
	}

	// The stroke runs along y=20; a far corner stays clean.
	if _, _, _, a := img.At(2, 2).RGBA(); a != 0 {
		t.Error("stroke leaked into an untouched corner")
	}
}

func TestLineWidth(t *testing.T) {
	thin := image.NewRGBA(image.Rect(0, 0, 40, 40))
	thick := image.NewRGBA(image.Rect(0, 0, 40, 40))

	(&Painter{LineWidth: 1}).Line(thin, polygon.Pt(5, 20), polygon.Pt(35, 20), color.White)
	(&Painter{LineWidth: 5}).Line(thick, polygon.Pt(5, 20), polygon.Pt(35, 20), color.White)

	count := func(img *image.RGBA) int {
		n := 0
		for i := 3; i < len(img.Pix); i += 4 {
			if img.Pix[i] != 0 {
				n++
			}
		}
		return n
	}
	if count(thick) <= count(thin) {
		t.Errorf("5px stroke covered %d pixels, 1px covered %d", count(thick), count(thin))
	}
}

func TestZeroWidthDefaultsToOne(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 20, 20))
	(&Painter{}).Line(img, polygon.Pt(2, 10), polygon.Pt(18, 10), color.White)

	blank := true
	for i := 3; i < len(img.Pix); i += 4 {
		if img.Pix[i] != 0 {
			blank = false
			break
		}
	}
	if blank {
		t.Error("zero LineWidth should fall back to a 1px stroke")
	}
}

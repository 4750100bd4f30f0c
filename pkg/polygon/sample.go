package polygon

import "fmt"

// Sample returns the starter document shown when the editor opens: a
// rectangle with a horizontal bottom edge, a vertical right edge, and
// a curved top edge, so every feature is visible immediately.
func Sample() *Polygon {
	p, err := New(
		Pt(120, 360),
		Pt(320, 360),
		Pt(320, 160),
		Pt(120, 160),
	)
	if err != nil {
		panic(fmt.Sprintf("polygon: building sample: %v", err))
	}
	must := func(err error) {
		if err != nil {
			panic(fmt.Sprintf("polygon: building sample: %v", err))
		}
	}
	must(p.SetConstraint(p.EdgeAt(0).ID, Horizontal{}))
	must(p.SetConstraint(p.EdgeAt(1).ID, Vertical{}))
	must(p.ConvertToBezier(p.EdgeAt(2).ID))
	return p
}
